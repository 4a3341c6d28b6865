// Package expiry normalizes free-form expiry dates and classifies how close
// an item is to expiring. Everything here is pure: no I/O, no shared state,
// safe for concurrent use.
package expiry

import (
	"encoding/json"
	"time"

	"cloud.google.com/go/civil"
)

// UnknownToken is the wire form of an unresolved date.
const UnknownToken = "unknown"

// Date is a canonical calendar date, or Unknown when the source could not be
// resolved. The zero value is Unknown.
type Date struct {
	d  civil.Date
	ok bool
}

// Unknown is the sentinel for dates that failed to parse or validate.
var Unknown = Date{}

// MaxYear is the last year with a four-digit YYYY-MM-DD form.
const MaxYear = 9999

// DateOf wraps a civil date. Invalid dates (Feb 30 and friends) and years
// past MaxYear yield Unknown.
func DateOf(d civil.Date) Date {
	if !d.IsValid() || d.Year > MaxYear {
		return Unknown
	}
	return Date{d: d, ok: true}
}

// NewDate builds a Date from its parts, validating the calendar round-trip.
func NewDate(year, month, day int) Date {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Unknown
	}
	return DateOf(civil.Date{Year: year, Month: time.Month(month), Day: day})
}

// IsUnknown reports whether d is the Unknown sentinel.
func (d Date) IsUnknown() bool { return !d.ok }

// Civil returns the underlying calendar date.
func (d Date) Civil() (civil.Date, bool) { return d.d, d.ok }

// String renders YYYY-MM-DD, or "unknown".
func (d Date) String() string {
	if !d.ok {
		return UnknownToken
	}
	return d.d.String()
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts anything Normalize accepts.
func (d *Date) UnmarshalText(b []byte) error {
	*d = Normalize(string(b))
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = Unknown
		return nil
	}
	*d = Normalize(s)
	return nil
}
