package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/notify"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/metrics"
)

var sweepNow = time.Date(2025, time.January, 10, 6, 0, 0, 0, time.UTC)

func newInventory(t *testing.T) *inventory.Service {
	t.Helper()
	svc := inventory.NewService(inventory.NewMemoryRepository(), nil, nil,
		inventory.WithClock(func() time.Time { return sweepNow }))
	ctx := context.Background()

	_, err := svc.AddRaw(ctx, "u1", []inventory.RawItem{
		{Name: "Milk", Quantity: "1 liter", Expiry: "2025-01-11"},
		{Name: "Rice", Expiry: "2025-03-01"},
		{Name: "Cheese", Expiry: "2025-01-13"},
	})
	require.NoError(t, err)
	_, err = svc.AddRaw(ctx, "u2", []inventory.RawItem{
		{Name: "Eggs", Expiry: "11/01/2025"},
		{Name: "Flour", Expiry: "unknown"},
	})
	require.NoError(t, err)
	return svc
}

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingNotifier) Refresh(_ context.Context, userID string) ([]notify.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return nil, nil
}

func TestRunOnce_Tomorrow(t *testing.T) {
	n := &recordingNotifier{}
	s := NewSweeper(newInventory(t), WithNotifier(n))

	sum, err := s.RunOnce(context.Background(), sweepNow)
	require.NoError(t, err)

	assert.Equal(t, civil.Date{Year: 2025, Month: time.January, Day: 11}, sum.CheckDate)
	assert.Equal(t, 1, sum.DaysAhead)
	assert.Equal(t, 2, sum.Count)

	msgs := []string{sum.Items[0].Message, sum.Items[1].Message}
	assert.ElementsMatch(t, []string{"Reminder: Milk expires tomorrow", "Reminder: Eggs expires tomorrow"}, msgs)
	for _, r := range sum.Items {
		assert.Equal(t, "2025-01-11", r.ExpiryDate)
	}
	assert.ElementsMatch(t, []string{"u1", "u2"}, n.users)
}

func TestRunOnce_DaysAhead(t *testing.T) {
	s := NewSweeper(newInventory(t), WithDaysAhead(3))

	sum, err := s.RunOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	require.Equal(t, 1, sum.Count)
	assert.Equal(t, "Cheese", sum.Items[0].ItemName)
	assert.Equal(t, "Reminder: Cheese expires in 3 days", sum.Items[0].Message)
}

func TestRunOnce_NothingDue(t *testing.T) {
	s := NewSweeper(newInventory(t), WithDaysAhead(30))

	sum, err := s.RunOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
	assert.NotNil(t, sum.Items)
}

func TestNewSweeper_ClampsDaysAhead(t *testing.T) {
	s := NewSweeper(newInventory(t), WithDaysAhead(0))
	assert.Equal(t, DefaultDaysAhead, s.daysAhead)
}

func TestRunOnce_UsesLocation(t *testing.T) {
	// 20:00 UTC on the 10th is already the 11th in Tokyo.
	s := NewSweeper(newInventory(t), WithLocation(time.FixedZone("JST", 9*3600)), WithDaysAhead(2))

	sum, err := s.RunOnce(context.Background(), time.Date(2025, time.January, 10, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.January, Day: 13}, sum.CheckDate)
	assert.Equal(t, 1, sum.Count)
}

type failingFinder struct{}

func (failingFinder) ExpiringOn(context.Context, civil.Date) ([]*inventory.Item, error) {
	return nil, errors.New("db down")
}

func TestRunOnce_ErrorRecordsMetric(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	s := NewSweeper(failingFinder{}, WithMetrics(m))

	_, err := s.RunOnce(context.Background(), sweepNow)
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepRuns.WithLabelValues("error")))
}

func TestRun_StopsOnCancel(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	s := NewSweeper(newInventory(t),
		WithInterval(10*time.Millisecond),
		WithClock(func() time.Time { return sweepNow }),
		WithMetrics(m),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.SweepRuns.WithLabelValues("ok")) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SweepItems))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Reminder: Milk expires today", Message("Milk", 0))
	assert.Equal(t, "Reminder: Milk expires tomorrow", Message("Milk", 1))
	assert.Equal(t, "Reminder: Milk expires in 2 days", Message("Milk", 2))
}
