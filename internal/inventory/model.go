package inventory

import (
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
)

const (
	DefaultName     = "Unknown Item"
	DefaultQuantity = "1"
)

// Column widths of inventory_items, in characters.
const (
	MaxNameLen      = 255
	MaxQuantityLen  = 100
	MaxCategoryLen  = 100
	MaxRawExpiryLen = 100
)

// RawItem is one item as extracted from a photo or typed by a user.
type RawItem struct {
	Name        string `json:"raw_name"`
	Quantity    string `json:"raw_quantity"`
	Expiry      string `json:"raw_expiry"`
	ContextHint string `json:"context_hint,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Item is a stored inventory entry annotated against a reference date.
// DaysLeft, Status and Badge are recomputed on every read.
type Item struct {
	ID        string           `json:"id"`
	UserID    string           `json:"-"`
	Name      string           `json:"item_name"`
	Quantity  string           `json:"quantity"`
	Category  string           `json:"category"`
	RawExpiry string           `json:"raw_expiry,omitempty"`
	Expiry    expiry.Date      `json:"expiry_date"`
	DaysLeft  expiry.Offset    `json:"days_left"`
	Status    expiry.Status    `json:"status"`
	Badge     expiry.BadgeInfo `json:"badge"`
	AddedAt   time.Time        `json:"added_at"`
}

// Annotate runs raw through normalize -> days left -> classify.
func Annotate(raw RawItem, ref civil.Date) Item {
	item := Item{
		Name:      truncate(firstNonEmpty(raw.Name, DefaultName), MaxNameLen),
		Quantity:  truncate(firstNonEmpty(raw.Quantity, DefaultQuantity), MaxQuantityLen),
		Category:  truncate(firstNonEmpty(raw.Category, "unknown"), MaxCategoryLen),
		RawExpiry: truncate(strings.TrimSpace(raw.Expiry), MaxRawExpiryLen),
		Expiry:    expiry.NormalizeWithHint(raw.Expiry, raw.ContextHint),
	}
	item.refresh(ref)
	return item
}

// refresh recomputes the derived fields from Expiry.
func (i *Item) refresh(ref civil.Date) {
	i.DaysLeft = expiry.DaysLeft(i.Expiry, ref)
	i.Status = expiry.Classify(i.DaysLeft)
	i.Badge = expiry.Badge(i.DaysLeft)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func firstNonEmpty(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}

// SortKey orders a listing.
type SortKey string

const (
	SortByExpiry   SortKey = "expiry"
	SortByName     SortKey = "name"
	SortByCategory SortKey = "category"
)

// Query narrows and orders List results.
type Query struct {
	Search string
	Filter expiry.Filter
	Sort   SortKey
}

// Patch is a partial update; nil fields are left alone.
type Patch struct {
	Name        *string `json:"item_name"`
	Quantity    *string `json:"quantity"`
	Category    *string `json:"category"`
	Expiry      *string `json:"raw_expiry"`
	ContextHint string  `json:"context_hint"`
}

// Stats are the dashboard counters.
type Stats struct {
	Total    int `json:"total"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
	Unknown  int `json:"unknown"`
}

// ScanResult is what a receipt upload produced.
type ScanResult struct {
	ImageURL string  `json:"image_url,omitempty"`
	Items    []*Item `json:"items"`
}
