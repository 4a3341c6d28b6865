package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/rshashank20/foodexpiry-tracker/internal/kv"
)

var ErrInvalidSettings = errors.New("invalid notification settings")

// ReminderDayChoices are the lead times a user may pick.
var ReminderDayChoices = []int{1, 2, 3, 5, 7}

type Settings struct {
	ExpiringAlerts     bool   `json:"expiringAlerts"`
	ExpiredAlerts      bool   `json:"expiredAlerts"`
	RecipeSuggestions  bool   `json:"recipeSuggestions"`
	EmailNotifications bool   `json:"emailNotifications"`
	PushNotifications  bool   `json:"pushNotifications"`
	ReminderDays       int    `json:"reminderDays"`
	QuietHours         bool   `json:"quietHours"`
	QuietStart         string `json:"quietStart"`
	QuietEnd           string `json:"quietEnd"`
}

func DefaultSettings() Settings {
	return Settings{
		ExpiringAlerts:     true,
		ExpiredAlerts:      true,
		RecipeSuggestions:  true,
		EmailNotifications: false,
		PushNotifications:  true,
		ReminderDays:       3,
		QuietHours:         false,
		QuietStart:         "22:00",
		QuietEnd:           "08:00",
	}
}

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (s Settings) Validate() error {
	valid := false
	for _, d := range ReminderDayChoices {
		if s.ReminderDays == d {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: reminderDays must be one of %v", ErrInvalidSettings, ReminderDayChoices)
	}
	if !clockRe.MatchString(s.QuietStart) || !clockRe.MatchString(s.QuietEnd) {
		return fmt.Errorf("%w: quiet hours must be HH:MM", ErrInvalidSettings)
	}
	return nil
}

// SettingsStore persists Settings as one JSON document per user.
type SettingsStore struct {
	kv kv.Store
}

func NewSettingsStore(store kv.Store) *SettingsStore {
	return &SettingsStore{kv: store}
}

// Load returns the user's settings. Missing documents and missing fields
// fall back to DefaultSettings.
func (s *SettingsStore) Load(ctx context.Context, userID string) (Settings, error) {
	out := DefaultSettings()

	b, err := s.kv.Get(ctx, settingsKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return Settings{}, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

func (s *SettingsStore) Save(ctx context.Context, userID string, st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, settingsKey(userID), b)
}

// Update applies a partial JSON document on top of the stored settings as
// one atomic store update.
func (s *SettingsStore) Update(ctx context.Context, userID string, patch []byte) (Settings, error) {
	var out Settings
	err := s.kv.Update(ctx, settingsKey(userID), func(b []byte) ([]byte, error) {
		cur := DefaultSettings()
		if b != nil {
			if err := json.Unmarshal(b, &cur); err != nil {
				return nil, fmt.Errorf("decode settings: %w", err)
			}
		}
		if err := json.Unmarshal(patch, &cur); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		if err := cur.Validate(); err != nil {
			return nil, err
		}
		out = cur
		return json.Marshal(cur)
	})
	if err != nil {
		return Settings{}, err
	}
	return out, nil
}

// Reset drops stored settings so the defaults apply again.
func (s *SettingsStore) Reset(ctx context.Context, userID string) (Settings, error) {
	if err := s.kv.Delete(ctx, settingsKey(userID)); err != nil {
		return Settings{}, err
	}
	return DefaultSettings(), nil
}
