package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rshashank20/foodexpiry-tracker/internal/kv"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
)

var ErrNotFound = errors.New("notification not found")

// Inbox is a user's list of notifications. Every mutation is an atomic
// read-modify-write of one kv document, so the API and the worker can share
// an inbox without losing each other's changes.
type Inbox struct {
	kv  kv.Store
	now func() time.Time
	log logging.Logger
}

type InboxOption func(*Inbox)

func WithInboxClock(now func() time.Time) InboxOption { return func(i *Inbox) { i.now = now } }

func WithInboxLogger(l logging.Logger) InboxOption { return func(i *Inbox) { i.log = l } }

func NewInbox(store kv.Store, opts ...InboxOption) *Inbox {
	i := &Inbox{
		kv:  store,
		now: time.Now,
		log: logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

func (i *Inbox) List(ctx context.Context, userID string) ([]Notification, error) {
	return i.load(ctx, userID)
}

func (i *Inbox) UnreadCount(ctx context.Context, userID string) (int, error) {
	list, err := i.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, x := range list {
		if !x.Read {
			n++
		}
	}
	return n, nil
}

func (i *Inbox) MarkRead(ctx context.Context, userID, id string) error {
	return i.update(ctx, userID, func(list []Notification) ([]Notification, error) {
		for k := range list {
			if list[k].ID == id {
				list[k].Read = true
				return list, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (i *Inbox) MarkAllRead(ctx context.Context, userID string) error {
	return i.update(ctx, userID, func(list []Notification) ([]Notification, error) {
		for k := range list {
			list[k].Read = true
		}
		return list, nil
	})
}

func (i *Inbox) Remove(ctx context.Context, userID, id string) error {
	return i.update(ctx, userID, func(list []Notification) ([]Notification, error) {
		for k := range list {
			if list[k].ID == id {
				return append(list[:k], list[k+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func (i *Inbox) Clear(ctx context.Context, userID string) error {
	return i.kv.Delete(ctx, inboxKey(userID))
}

// Add puts a custom notification at the head of the inbox. ID, Timestamp
// and Read are assigned here.
func (i *Inbox) Add(ctx context.Context, userID string, n Notification) (Notification, error) {
	now := i.now().UTC()
	n.ID = fmt.Sprintf("custom_%d_%s", now.UnixMilli(), uuid.New().String()[:8])
	n.Timestamp = now
	n.Read = false

	err := i.update(ctx, userID, func(list []Notification) ([]Notification, error) {
		return append([]Notification{n}, list...), nil
	})
	if err != nil {
		return Notification{}, err
	}
	return n, nil
}

// update runs fn on the stored list and saves the result in one atomic
// store update. fn may run again if another writer got in first, so it must
// not have side effects beyond its return value. An error from fn aborts
// without saving.
func (i *Inbox) update(ctx context.Context, userID string, fn func([]Notification) ([]Notification, error)) error {
	return i.kv.Update(ctx, inboxKey(userID), func(cur []byte) ([]byte, error) {
		list, err := fn(i.decode(userID, cur))
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []Notification{}
		}
		return json.Marshal(list)
	})
}

func (i *Inbox) load(ctx context.Context, userID string) ([]Notification, error) {
	b, err := i.kv.Get(ctx, inboxKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return []Notification{}, nil
	}
	if err != nil {
		return nil, err
	}
	return i.decode(userID, b), nil
}

func (i *Inbox) decode(userID string, b []byte) []Notification {
	if b == nil {
		return []Notification{}
	}
	var list []Notification
	if err := json.Unmarshal(b, &list); err != nil {
		// A corrupt inbox is dropped rather than wedging the user.
		i.log.Warn("discarding unreadable inbox", logging.String("user_id", userID), logging.Err(err))
		return []Notification{}
	}
	if list == nil {
		list = []Notification{}
	}
	return list
}
