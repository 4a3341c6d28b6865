// Package reminder runs the periodic sweep for items about to expire.
package reminder

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/notify"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/metrics"
)

const DefaultDaysAhead = 1

// ItemFinder returns every user's items expiring on a date.
type ItemFinder interface {
	ExpiringOn(ctx context.Context, date civil.Date) ([]*inventory.Item, error)
}

// Notifier regenerates a user's inbox.
type Notifier interface {
	Refresh(ctx context.Context, userID string) ([]notify.Notification, error)
}

type Reminder struct {
	ItemID     string `json:"itemId"`
	UserID     string `json:"userId"`
	ItemName   string `json:"itemName"`
	Quantity   string `json:"quantity"`
	ExpiryDate string `json:"expiryDate"`
	Message    string `json:"message"`
}

type Summary struct {
	CheckDate civil.Date `json:"checkDate"`
	DaysAhead int        `json:"daysAhead"`
	Count     int        `json:"expiringItemsCount"`
	Items     []Reminder `json:"expiringItems"`
}

type Sweeper struct {
	finder    ItemFinder
	notifier  Notifier
	daysAhead int
	interval  time.Duration

	now     func() time.Time
	loc     *time.Location
	log     logging.Logger
	metrics *metrics.Metrics
}

type Option func(*Sweeper)

// WithDaysAhead sets how far ahead the sweep looks. Values below 1 mean 1.
func WithDaysAhead(n int) Option { return func(s *Sweeper) { s.daysAhead = n } }

func WithInterval(d time.Duration) Option { return func(s *Sweeper) { s.interval = d } }

// WithNotifier refreshes the inbox of every user with a matching item.
func WithNotifier(n Notifier) Option { return func(s *Sweeper) { s.notifier = n } }

func WithClock(now func() time.Time) Option { return func(s *Sweeper) { s.now = now } }

func WithLocation(loc *time.Location) Option { return func(s *Sweeper) { s.loc = loc } }

func WithLogger(l logging.Logger) Option { return func(s *Sweeper) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Sweeper) { s.metrics = m } }

func NewSweeper(finder ItemFinder, opts ...Option) *Sweeper {
	s := &Sweeper{
		finder:    finder,
		daysAhead: DefaultDaysAhead,
		interval:  24 * time.Hour,
		now:       time.Now,
		loc:       time.UTC,
		log:       logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.daysAhead < 1 {
		s.daysAhead = DefaultDaysAhead
	}
	return s
}

// RunOnce finds items expiring daysAhead days after the calendar date of
// now and logs one reminder per item.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) (Summary, error) {
	target := expiry.Today(now, s.loc).AddDays(s.daysAhead)
	sum := Summary{CheckDate: target, DaysAhead: s.daysAhead, Items: []Reminder{}}

	s.log.Info("checking for expiring items", logging.String("check_date", target.String()))

	items, err := s.finder.ExpiringOn(ctx, target)
	if err != nil {
		s.metrics.Sweep("error", 0)
		return sum, fmt.Errorf("find expiring items: %w", err)
	}

	users := make(map[string]bool)
	for _, it := range items {
		r := Reminder{
			ItemID:     it.ID,
			UserID:     it.UserID,
			ItemName:   it.Name,
			Quantity:   it.Quantity,
			ExpiryDate: it.Expiry.String(),
			Message:    Message(it.Name, s.daysAhead),
		}
		sum.Items = append(sum.Items, r)
		users[it.UserID] = true

		s.log.Info(r.Message,
			logging.String("user_id", r.UserID),
			logging.String("item_id", r.ItemID),
			logging.String("quantity", r.Quantity),
		)
	}
	sum.Count = len(sum.Items)

	if s.notifier != nil {
		for userID := range users {
			if _, err := s.notifier.Refresh(ctx, userID); err != nil {
				s.log.Warn("inbox refresh failed", logging.String("user_id", userID), logging.Err(err))
			}
		}
	}

	s.metrics.Sweep("ok", sum.Count)
	s.log.Info("expiry check complete",
		logging.String("check_date", target.String()),
		logging.Int("count", sum.Count),
	)
	return sum, nil
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("expiry sweeper started", logging.Duration("interval", s.interval))
	for {
		if _, err := s.RunOnce(ctx, s.now()); err != nil {
			s.log.Error("expiry sweep failed", logging.Err(err))
		}

		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Message is the reminder line for one item.
func Message(itemName string, daysAhead int) string {
	switch daysAhead {
	case 0:
		return fmt.Sprintf("Reminder: %s expires today", itemName)
	case 1:
		return fmt.Sprintf("Reminder: %s expires tomorrow", itemName)
	default:
		return fmt.Sprintf("Reminder: %s expires in %d days", itemName, daysAhead)
	}
}
