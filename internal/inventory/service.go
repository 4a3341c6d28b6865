package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/metrics"
)

var (
	ErrMissingUser          = errors.New("missing user id")
	ErrNoItems              = errors.New("no items to add")
	ErrEmptyImage           = errors.New("empty image")
	ErrExtractorUnavailable = errors.New("extraction is not configured")
)

// Storage keeps the original receipt image.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Extractor reads items off a receipt or label image.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) ([]RawItem, error)
}

type Service struct {
	repo      Repository
	storage   Storage
	extractor Extractor

	now     func() time.Time
	loc     *time.Location
	log     logging.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

// WithClock injects the source of "today". Tests pin it.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation sets the timezone used to turn the clock into a calendar date.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func WithLogger(l logging.Logger) Option { return func(s *Service) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(repo Repository, storage Storage, extractor Extractor, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		now:       time.Now,
		loc:       time.UTC,
		log:       logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today is the reference date for every annotation the service makes.
func (s *Service) Today() civil.Date {
	return expiry.Today(s.now(), s.loc)
}

// --------------------------------------------------
// Add items (manual entry or extraction output)
// --------------------------------------------------
func (s *Service) AddRaw(ctx context.Context, userID string, raws []RawItem) ([]*Item, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if len(raws) == 0 {
		return nil, ErrNoItems
	}

	today := s.Today()
	now := s.now().UTC()

	items := make([]*Item, 0, len(raws))
	for _, raw := range raws {
		it := Annotate(raw, today)
		it.ID = uuid.New().String()
		it.UserID = userID
		it.AddedAt = now
		items = append(items, &it)

		if it.Expiry.IsUnknown() && it.RawExpiry != "" {
			s.log.Debug("expiry not resolved",
				logging.String("user_id", userID),
				logging.String("raw_expiry", it.RawExpiry),
			)
		}
		s.metrics.ItemAnnotated(string(it.Status))
	}

	if err := s.repo.Create(ctx, items); err != nil {
		return nil, fmt.Errorf("save items: %w", err)
	}

	s.log.Info("items added", logging.String("user_id", userID), logging.Int("count", len(items)))
	return items, nil
}

// --------------------------------------------------
// List / stats
// --------------------------------------------------
func (s *Service) List(ctx context.Context, userID string, q Query) ([]*Item, error) {
	items, err := s.annotated(ctx, userID)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := items[:0]
	for _, it := range items {
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		if !q.Filter.Matches(it.DaysLeft) {
			continue
		}
		out = append(out, it)
	}

	sortItems(out, q.Sort)
	return out, nil
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	items, err := s.annotated(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Total: len(items)}
	for _, it := range items {
		switch {
		case it.DaysLeft.IsUnknown():
			st.Unknown++
		case expiry.FilterExpired.Matches(it.DaysLeft):
			st.Expired++
		case expiry.FilterExpiring.Matches(it.DaysLeft):
			st.Expiring++
		}
	}
	return st, nil
}

// ListAnnotated returns every item of a user annotated against today.
func (s *Service) ListAnnotated(ctx context.Context, userID string) ([]*Item, error) {
	return s.annotated(ctx, userID)
}

func (s *Service) annotated(ctx context.Context, userID string) ([]*Item, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	today := s.Today()
	for _, it := range items {
		it.refresh(today)
	}
	return items, nil
}

// --------------------------------------------------
// Update / delete
// --------------------------------------------------
func (s *Service) Update(ctx context.Context, userID, id string, p Patch) (*Item, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	it, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		it.Name = truncate(firstNonEmpty(*p.Name, DefaultName), MaxNameLen)
	}
	if p.Quantity != nil {
		it.Quantity = truncate(firstNonEmpty(*p.Quantity, DefaultQuantity), MaxQuantityLen)
	}
	if p.Category != nil {
		it.Category = truncate(firstNonEmpty(*p.Category, "unknown"), MaxCategoryLen)
	}
	if p.Expiry != nil {
		it.RawExpiry = truncate(strings.TrimSpace(*p.Expiry), MaxRawExpiryLen)
		it.Expiry = expiry.NormalizeWithHint(*p.Expiry, p.ContextHint)
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	it.refresh(s.Today())
	return it, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrMissingUser
	}
	return s.repo.Delete(ctx, userID, id)
}

// ExpiringOn returns items of all users expiring exactly on date, annotated
// against today.
func (s *Service) ExpiringOn(ctx context.Context, date civil.Date) ([]*Item, error) {
	items, err := s.repo.ListExpiringOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list expiring: %w", err)
	}
	today := s.Today()
	for _, it := range items {
		it.refresh(today)
	}
	return items, nil
}

// --------------------------------------------------
// Scan a receipt / label photo
// --------------------------------------------------
func (s *Service) Scan(ctx context.Context, userID string, image []byte, filename, mimeType string) (*ScanResult, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if s.extractor == nil {
		return nil, ErrExtractorUnavailable
	}

	res := &ScanResult{}
	if s.storage != nil {
		key := fmt.Sprintf("receipts/%s/%s%s", userID, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
		url, err := s.storage.Upload(ctx, key, bytes.NewReader(image), mimeType)
		if err != nil {
			// The photo is a convenience copy; extraction still proceeds.
			s.log.Warn("receipt upload failed", logging.String("user_id", userID), logging.Err(err))
		} else {
			res.ImageURL = url
		}
	}

	raws, err := s.extractor.Extract(ctx, image, mimeType)
	if err != nil {
		s.metrics.Extraction("error")
		return nil, fmt.Errorf("extract items: %w", err)
	}
	s.metrics.Extraction("ok")

	items, err := s.AddRaw(ctx, userID, raws)
	if err != nil {
		return nil, err
	}
	res.Items = items
	return res, nil
}
