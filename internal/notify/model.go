// Package notify builds in-app expiry notifications from a user's inventory
// and keeps each user's inbox and notification settings in a kv.Store.
package notify

import (
	"time"
)

// Type groups notifications for display.
type Type string

const (
	TypeExpiring         Type = "expiring"
	TypeExpired          Type = "expired"
	TypeRecipeSuggestion Type = "recipe_suggestion"
)

const (
	ActionInventory = "#inventory"
	ActionRecipes   = "#recipes"
)

type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Kind      string    `json:"kind,omitempty"`
	Priority  string    `json:"priority,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ItemID    string    `json:"itemId,omitempty"`
	ItemName  string    `json:"itemName,omitempty"`
	DaysLeft  *int      `json:"daysLeft,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	ActionURL string    `json:"actionUrl,omitempty"`
}

func inboxKey(userID string) string    { return "notifications:" + userID }
func settingsKey(userID string) string { return "settings:" + userID }
