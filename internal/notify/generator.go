package notify

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/metrics"
)

// ItemSource lists a user's items annotated against today.
type ItemSource interface {
	ListAnnotated(ctx context.Context, userID string) ([]*inventory.Item, error)
}

// Build returns the notifications items deserve today under s. It has no
// side effects; ids are stable for a given kind, item and day.
func Build(items []*inventory.Item, s Settings, today civil.Date, now time.Time) []Notification {
	var out []Notification
	for _, it := range items {
		t := expiry.Trigger(it.DaysLeft, s.ReminderDays)
		if !t.Fired() {
			continue
		}

		typ := TypeExpiring
		action := ActionInventory
		if t.Kind == expiry.TriggerExpired {
			if !s.ExpiredAlerts {
				continue
			}
			typ = TypeExpired
		} else {
			if !s.ExpiringAlerts {
				continue
			}
			if s.RecipeSuggestions {
				action = ActionRecipes
			}
		}

		out = append(out, Notification{
			ID:        notificationID(t.Kind, it.ID, today),
			Type:      typ,
			Kind:      string(t.Kind),
			Priority:  t.Priority.String(),
			Title:     t.Title,
			Message:   t.Message(it.Name, it.DaysLeft),
			ItemID:    it.ID,
			ItemName:  it.Name,
			DaysLeft:  it.DaysLeft.Ptr(),
			Timestamp: now,
			ActionURL: action,
		})
	}
	return out
}

func notificationID(kind expiry.TriggerKind, itemID string, day civil.Date) string {
	return fmt.Sprintf("%s_%s_%04d%02d%02d", kind, itemID, day.Year, int(day.Month), day.Day)
}

// Generator refreshes a user's inbox from their inventory.
type Generator struct {
	items    ItemSource
	settings *SettingsStore
	inbox    *Inbox

	now     func() time.Time
	loc     *time.Location
	log     logging.Logger
	metrics *metrics.Metrics
}

type GeneratorOption func(*Generator)

func WithClock(now func() time.Time) GeneratorOption { return func(g *Generator) { g.now = now } }

func WithLocation(loc *time.Location) GeneratorOption { return func(g *Generator) { g.loc = loc } }

func WithLogger(l logging.Logger) GeneratorOption { return func(g *Generator) { g.log = l } }

func WithMetrics(m *metrics.Metrics) GeneratorOption { return func(g *Generator) { g.metrics = m } }

func NewGenerator(items ItemSource, settings *SettingsStore, inbox *Inbox, opts ...GeneratorOption) *Generator {
	g := &Generator{
		items:    items,
		settings: settings,
		inbox:    inbox,
		now:      time.Now,
		loc:      time.UTC,
		log:      logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Refresh regenerates notifications for every item of userID and returns
// the ones that were not already in the inbox.
//
// For each item seen, older notifications about it are dropped. A
// notification with the same id as a fresh one is kept as-is so its read
// flag survives repeated refreshes within a day. Notifications for items no
// longer in the inventory are left alone.
func (g *Generator) Refresh(ctx context.Context, userID string) ([]Notification, error) {
	items, err := g.items.ListAnnotated(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	st, err := g.settings.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	now := g.now()
	fresh := Build(items, st, expiry.Today(now, g.loc), now.UTC())

	seenItems := make(map[string]bool, len(items))
	for _, it := range items {
		seenItems[it.ID] = true
	}
	freshIDs := make(map[string]bool, len(fresh))
	for _, n := range fresh {
		freshIDs[n.ID] = true
	}

	var added []Notification
	err = g.inbox.update(ctx, userID, func(list []Notification) ([]Notification, error) {
		added = nil
		kept := make([]Notification, 0, len(list)+len(fresh))
		existing := make(map[string]bool, len(list))
		for _, n := range list {
			if n.ItemID != "" && seenItems[n.ItemID] && !freshIDs[n.ID] {
				continue
			}
			kept = append(kept, n)
			existing[n.ID] = true
		}
		for _, n := range fresh {
			if existing[n.ID] {
				continue
			}
			kept = append(kept, n)
			added = append(added, n)
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range added {
		g.metrics.NotificationCreated(n.Kind)
	}
	if len(added) > 0 {
		g.log.Info("notifications generated",
			logging.String("user_id", userID),
			logging.Int("count", len(added)),
		)
	}
	return added, nil
}
