package expiry

import "fmt"

const (
	// SoonWindowDays bounds ExpiringSoon. Badges, status and notifications use it.
	SoonWindowDays = 3

	// FilterWindowDays bounds the "expiring" list filter and dashboard counter.
	// Independent of SoonWindowDays.
	FilterWindowDays = 7
)

// Status is the expiry classification of an item.
type Status string

const (
	StatusUnknown       Status = "unknown"
	StatusExpired       Status = "expired"
	StatusExpiringToday Status = "expiring-today"
	StatusExpiringSoon  Status = "expiring-soon"
	StatusFresh         Status = "fresh"
)

// Classify maps an offset to its Status.
func Classify(o Offset) Status {
	days, ok := o.Value()
	switch {
	case !ok:
		return StatusUnknown
	case days < 0:
		return StatusExpired
	case days == 0:
		return StatusExpiringToday
	case days <= SoonWindowDays:
		return StatusExpiringSoon
	default:
		return StatusFresh
	}
}

// Tone is the colour family a UI should use for a status.
type Tone string

const (
	ToneRed    Tone = "red"
	ToneOrange Tone = "orange"
	ToneYellow Tone = "yellow"
	ToneGreen  Tone = "green"
	ToneGray   Tone = "gray"
)

// Tone returns the colour family for s.
func (s Status) Tone() Tone {
	switch s {
	case StatusExpired:
		return ToneRed
	case StatusExpiringToday:
		return ToneOrange
	case StatusExpiringSoon:
		return ToneYellow
	case StatusFresh:
		return ToneGreen
	default:
		return ToneGray
	}
}

// BadgeInfo is what an inventory row shows next to the item name.
type BadgeInfo struct {
	Label  string `json:"label"`
	Tone   Tone   `json:"tone"`
	Status Status `json:"status"`
}

// Badge renders the short label for an offset.
func Badge(o Offset) BadgeInfo {
	s := Classify(o)
	b := BadgeInfo{Tone: s.Tone(), Status: s}

	days, _ := o.Value()
	switch s {
	case StatusUnknown:
		b.Label = "Unknown"
	case StatusExpired:
		b.Label = "Expired"
	case StatusExpiringToday:
		b.Label = "Today"
	default:
		b.Label = fmt.Sprintf("%dd left", days)
	}
	return b
}
