package inventory

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
)

var ErrNotFound = errors.New("inventory item not found")

// Repository persists items. Derived fields (DaysLeft, Status, Badge) are
// never stored; the service recomputes them on read.
type Repository interface {
	Create(ctx context.Context, items []*Item) error
	ListByUser(ctx context.Context, userID string) ([]*Item, error)
	Get(ctx context.Context, userID, id string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, userID, id string) error

	// ListExpiringOn returns items of every user whose expiry is exactly date.
	ListExpiringOn(ctx context.Context, date civil.Date) ([]*Item, error)
}
