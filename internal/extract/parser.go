package extract

import (
	"encoding/json"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
)

// DefaultShelfLifeDays is used for items missing from ShelfLife.
const DefaultShelfLifeDays = 7

// ShelfLife is the typical number of days an item keeps, by lower-cased name.
var ShelfLife = map[string]int{
	"bread":    3,
	"milk":     5,
	"eggs":     21,
	"yogurt":   7,
	"cheese":   14,
	"chicken":  3,
	"beef":     3,
	"fish":     2,
	"bananas":  5,
	"apples":   14,
	"lettuce":  7,
	"tomatoes": 5,
	"carrots":  14,
	"onions":   30,
	"potatoes": 30,
}

// EstimateExpiry guesses an expiry date from the item name.
func EstimateExpiry(name string, today civil.Date) expiry.Date {
	days, ok := ShelfLife[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		days = DefaultShelfLifeDays
	}
	return expiry.DateOf(today.AddDays(days))
}

type modelItem struct {
	ItemName   flexString `json:"item_name"`
	Name       flexString `json:"name"`
	Quantity   flexString `json:"quantity"`
	ExpiryDate flexString `json:"expiry_date"`
	ExpiryAlt  flexString `json:"expiryDate"`
	Expiry     flexString `json:"expiry"`
	Context    flexString `json:"context"`
}

// flexString takes a JSON string or number. Anything else reads as empty.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

// ParseResponse turns the model's text into raw items. It never returns an
// empty slice: unusable output yields one placeholder item.
func ParseResponse(text string, today civil.Date) []inventory.RawItem {
	text = strings.TrimSpace(text)
	if text == "" {
		return placeholder()
	}

	entries, err := decodeEntries(text)
	if err != nil {
		return fromLines(text)
	}
	if len(entries) == 0 {
		return placeholder()
	}

	items := make([]inventory.RawItem, 0, len(entries))
	for _, e := range entries {
		name := firstOf(string(e.ItemName), string(e.Name))
		raw := firstOf(string(e.ExpiryDate), string(e.ExpiryAlt), string(e.Expiry))
		if raw == "" {
			raw = EstimateExpiry(name, today).String()
		}
		items = append(items, inventory.RawItem{
			Name:        firstOf(name, inventory.DefaultName),
			Quantity:    firstOf(string(e.Quantity), inventory.DefaultQuantity),
			Expiry:      raw,
			ContextHint: string(e.Context),
		})
	}
	return items
}

// decodeEntries takes the outermost [...] span when present, and otherwise
// tries the whole text as a single object. Array elements that are not
// objects are skipped.
func decodeEntries(text string) ([]modelItem, error) {
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
			return nil, err
		}
		entries := make([]modelItem, 0, len(raw))
		for _, r := range raw {
			var e modelItem
			if err := json.Unmarshal(r, &e); err != nil {
				continue
			}
			entries = append(entries, e)
		}
		return entries, nil
	}

	var one modelItem
	if err := json.Unmarshal([]byte(text), &one); err != nil {
		return nil, err
	}
	return []modelItem{one}, nil
}

// fromLines picks "name: X" / "item: X" lines out of prose.
func fromLines(text string) []inventory.RawItem {
	var items []inventory.RawItem
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "name:") && !strings.Contains(line, "item:") {
			continue
		}
		name := ""
		if parts := strings.SplitN(line, ":", 3); len(parts) > 1 {
			name = strings.TrimSpace(parts[1])
		}
		items = append(items, inventory.RawItem{
			Name:     firstOf(name, inventory.DefaultName),
			Quantity: inventory.DefaultQuantity,
			Expiry:   expiry.UnknownToken,
		})
	}
	if len(items) == 0 {
		return placeholder()
	}
	return items
}

func placeholder() []inventory.RawItem {
	return []inventory.RawItem{{
		Name:     inventory.DefaultName,
		Quantity: inventory.DefaultQuantity,
		Expiry:   expiry.UnknownToken,
	}}
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
