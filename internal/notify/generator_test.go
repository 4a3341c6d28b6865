package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/kv"
)

var (
	testNow   = time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)
	testToday = civil.Date{Year: 2025, Month: time.January, Day: 10}
)

func item(id, name string, daysLeft int) *inventory.Item {
	return &inventory.Item{ID: id, Name: name, DaysLeft: expiry.Days(daysLeft)}
}

func TestBuild_Precedence(t *testing.T) {
	items := []*inventory.Item{
		item("a", "Milk", -2),
		item("b", "Yogurt", -1),
		item("c", "Bread", 0),
		item("d", "Eggs", 1),
		item("e", "Cheese", 3),
		item("f", "Rice", 4),
		{ID: "g", Name: "Mystery", DaysLeft: expiry.UnknownOffset},
	}

	got := Build(items, DefaultSettings(), testToday, testNow)
	require.Len(t, got, 5)

	assert.Equal(t, "expired_a_20250110", got[0].ID)
	assert.Equal(t, TypeExpired, got[0].Type)
	assert.Equal(t, "Milk has expired 2 days ago", got[0].Message)
	assert.Equal(t, ActionInventory, got[0].ActionURL)
	assert.Equal(t, "critical", got[0].Priority)

	assert.Equal(t, "Yogurt has expired 1 day ago", got[1].Message)

	assert.Equal(t, "expiring_today_c_20250110", got[2].ID)
	assert.Equal(t, "Expires Today", got[2].Title)
	assert.Equal(t, ActionRecipes, got[2].ActionURL)

	assert.Equal(t, "expiring_tomorrow_d_20250110", got[3].ID)
	assert.Equal(t, "Eggs expires tomorrow. Check out recipe suggestions!", got[3].Message)

	assert.Equal(t, "expiring_soon_e_20250110", got[4].ID)
	assert.Equal(t, "Cheese expires in 3 days. Time to plan a meal!", got[4].Message)
	require.NotNil(t, got[4].DaysLeft)
	assert.Equal(t, 3, *got[4].DaysLeft)
}

func TestBuild_RespectsSettings(t *testing.T) {
	items := []*inventory.Item{item("a", "Milk", -1), item("b", "Eggs", 1), item("c", "Rice", 5)}

	s := DefaultSettings()
	s.ExpiredAlerts = false
	got := Build(items, s, testToday, testNow)
	// An expired item must not fall through to a "soon" reminder.
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ItemID)

	s = DefaultSettings()
	s.ExpiringAlerts = false
	got = Build(items, s, testToday, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, TypeExpired, got[0].Type)

	s = DefaultSettings()
	s.ReminderDays = 5
	s.RecipeSuggestions = false
	got = Build(items, s, testToday, testNow)
	require.Len(t, got, 3)
	assert.Equal(t, ActionInventory, got[1].ActionURL)
	assert.Equal(t, string(expiry.TriggerSoon), got[2].Kind)
}

// --------------------------------------------------
// Refresh
// --------------------------------------------------

type fixture struct {
	repo     *inventory.MemoryRepository
	items    *inventory.Service
	store    *kv.MemoryStore
	inbox    *Inbox
	settings *SettingsStore
	gen      *Generator
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: inventory.NewMemoryRepository(), store: kv.NewMemoryStore(), now: testNow}
	clock := func() time.Time { return f.now }

	f.items = inventory.NewService(f.repo, nil, nil, inventory.WithClock(clock))
	f.inbox = NewInbox(f.store, WithInboxClock(clock))
	f.settings = NewSettingsStore(f.store)
	f.gen = NewGenerator(f.items, f.settings, f.inbox, WithClock(clock))
	return f
}

func (f *fixture) add(t *testing.T, userID string, raws ...inventory.RawItem) []*inventory.Item {
	t.Helper()
	items, err := f.items.AddRaw(context.Background(), userID, raws)
	require.NoError(t, err)
	return items
}

func TestRefresh_IdempotentWithinADay(t *testing.T) {
	f := newFixture(t)
	f.add(t, "u1",
		inventory.RawItem{Name: "Milk", Expiry: "2025-01-11"},
		inventory.RawItem{Name: "Rice", Expiry: "2025-06-01"},
	)
	ctx := context.Background()

	added, err := f.gen.Refresh(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.NoError(t, f.inbox.MarkRead(ctx, "u1", added[0].ID))

	again, err := f.gen.Refresh(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, again)

	list, err := f.inbox.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read, "read flag survives refresh")
}

func TestRefresh_ReplacesOlderNotificationsForSameItem(t *testing.T) {
	f := newFixture(t)
	f.add(t, "u1", inventory.RawItem{Name: "Milk", Expiry: "2025-01-11"})
	ctx := context.Background()

	_, err := f.gen.Refresh(ctx, "u1")
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	added, err := f.gen.Refresh(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, string(expiry.TriggerToday), added[0].Kind)

	list, err := f.inbox.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, added[0].ID, list[0].ID)
}

func TestRefresh_KeepsCustomAndOrphanedNotifications(t *testing.T) {
	f := newFixture(t)
	items := f.add(t, "u1", inventory.RawItem{Name: "Milk", Expiry: "2025-01-10"})
	ctx := context.Background()

	_, err := f.gen.Refresh(ctx, "u1")
	require.NoError(t, err)
	_, err = f.inbox.Add(ctx, "u1", Notification{Type: TypeRecipeSuggestion, Title: "Try this", Message: "Pancakes"})
	require.NoError(t, err)

	require.NoError(t, f.items.Delete(ctx, "u1", items[0].ID))
	_, err = f.gen.Refresh(ctx, "u1")
	require.NoError(t, err)

	list, err := f.inbox.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRefresh_UsesStoredSettings(t *testing.T) {
	f := newFixture(t)
	f.add(t, "u1", inventory.RawItem{Name: "Cheese", Expiry: "2025-01-15"})
	ctx := context.Background()

	added, err := f.gen.Refresh(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, added)

	_, err = f.settings.Update(ctx, "u1", []byte(`{"reminderDays":5}`))
	require.NoError(t, err)

	added, err = f.gen.Refresh(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "Cheese expires in 5 days. Time to plan a meal!", added[0].Message)
}

func TestRefresh_ConcurrentCallsDoNotDuplicate(t *testing.T) {
	f := newFixture(t)
	f.add(t, "u1",
		inventory.RawItem{Name: "Milk", Expiry: "2025-01-09"},
		inventory.RawItem{Name: "Eggs", Expiry: "2025-01-11"},
	)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gen.Refresh(ctx, "u1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := f.inbox.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// interleavedStore runs hook once, between Update's read and its write.
type interleavedStore struct {
	kv.Store
	once sync.Once
	hook func()
}

func (s *interleavedStore) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	return s.Store.Update(ctx, key, func(cur []byte) ([]byte, error) {
		s.once.Do(s.hook)
		return fn(cur)
	})
}

func TestRefresh_WorkerAndAPIShareRedisInbox(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	ctx := context.Background()
	connect := func() *kv.RedisStore {
		s, err := kv.NewRedisStore(ctx, "redis://"+mr.Addr(), kv.WithPrefix("pantry:"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	f := newFixture(t)
	f.add(t, "u1",
		inventory.RawItem{Name: "Milk", Expiry: "2025-01-09"},
		inventory.RawItem{Name: "Eggs", Expiry: "2025-01-11"},
	)

	api := NewInbox(connect())
	custom, err := api.Add(ctx, "u1", Notification{Type: TypeRecipeSuggestion, Title: "Try soup"})
	require.NoError(t, err)

	workerStore := &interleavedStore{Store: connect()}
	workerStore.hook = func() {
		require.NoError(t, api.MarkRead(ctx, "u1", custom.ID))
	}
	worker := NewGenerator(f.items, NewSettingsStore(workerStore), NewInbox(workerStore), WithClock(func() time.Time { return testNow }))

	added, err := worker.Refresh(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, added, 2, "a retried update reports each notification once")

	list, err := api.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)

	var found bool
	for _, n := range list {
		if n.ID == custom.ID {
			found = true
			assert.True(t, n.Read, "read flag written mid-refresh is kept")
		}
	}
	assert.True(t, found)
}
