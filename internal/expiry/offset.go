package expiry

import (
	"encoding/json"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

// Offset is a signed number of calendar days between an expiry date and a
// reference date, or Unknown. The zero value is Unknown, not "today".
type Offset struct {
	days int
	ok   bool
}

// UnknownOffset is the offset of an Unknown date.
var UnknownOffset = Offset{}

// Days builds a known offset.
func Days(n int) Offset { return Offset{days: n, ok: true} }

// Value returns the day count; ok is false for UnknownOffset.
func (o Offset) Value() (days int, ok bool) { return o.days, o.ok }

func (o Offset) IsUnknown() bool { return !o.ok }

// Ptr returns nil for Unknown. Convenient for nullable columns and JSON.
func (o Offset) Ptr() *int {
	if !o.ok {
		return nil
	}
	d := o.days
	return &d
}

func (o Offset) String() string {
	if !o.ok {
		return UnknownToken
	}
	return strconv.Itoa(o.days)
}

// MarshalJSON renders Unknown as null.
func (o Offset) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.days)
}

func (o *Offset) UnmarshalJSON(b []byte) error {
	var p *int
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p == nil {
		*o = UnknownOffset
		return nil
	}
	*o = Days(*p)
	return nil
}

// DaysLeft is date minus ref in whole calendar days. Unknown propagates.
func DaysLeft(date Date, ref civil.Date) Offset {
	d, ok := date.Civil()
	if !ok {
		return UnknownOffset
	}
	return Days(d.DaysSince(ref))
}

// Today truncates an instant to its calendar date in loc (UTC when nil).
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}
