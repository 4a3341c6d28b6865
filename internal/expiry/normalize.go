package expiry

import (
	"strconv"
	"strings"
)

// Label is an expiry keyword found near a date on a package or receipt.
type Label string

const (
	LabelNone       Label = ""
	LabelUseBy      Label = "use by"
	LabelExpires    Label = "expires"
	LabelBestBefore Label = "best before"
	LabelExpDate    Label = "exp date"
)

var knownLabels = []Label{LabelUseBy, LabelExpires, LabelBestBefore, LabelExpDate}

// DetectLabel returns the first expiry keyword contained in hint.
func DetectLabel(hint string) Label {
	h := strings.ToLower(hint)
	for _, l := range knownLabels {
		if strings.Contains(h, string(l)) {
			return l
		}
	}
	return LabelNone
}

// TieBreak decides the field order when both leading parts are <= 12.
// It returns true when the first part is the day.
type TieBreak func(first, second int, label Label) bool

// TieBreakLargerFirstIsDay reads the larger leading part as the day, and
// MM/DD otherwise. It is a guess: "03/09/25" becomes 9 March.
func TieBreakLargerFirstIsDay(first, second int, _ Label) bool {
	return first > second
}

// TieBreakDayFirst always reads ambiguous input as DD/MM.
func TieBreakDayFirst(int, int, Label) bool { return true }

// TieBreakMonthFirst always reads ambiguous input as MM/DD.
func TieBreakMonthFirst(int, int, Label) bool { return false }

// Normalizer turns raw date strings into canonical dates.
// The zero value uses TieBreakLargerFirstIsDay.
type Normalizer struct {
	TieBreak TieBreak
}

var defaultNormalizer Normalizer

// Normalize resolves raw with the default tie-break.
func Normalize(raw string) Date {
	return defaultNormalizer.Normalize(raw)
}

// NormalizeWithHint resolves raw, passing any label found in hint to the
// default tie-break (which ignores it).
func NormalizeWithHint(raw, hint string) Date {
	return defaultNormalizer.NormalizeWithHint(raw, hint)
}

func (n Normalizer) Normalize(raw string) Date {
	return n.NormalizeWithHint(raw, "")
}

func (n Normalizer) NormalizeWithHint(raw, hint string) Date {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, UnknownToken) {
		return Unknown
	}

	parts, ok := splitDate(stripNoise(raw))
	if !ok {
		return Unknown
	}

	nums := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Unknown
		}
		nums[i] = v
	}

	// Already year-first (the canonical form and its separator variants).
	if len(parts[0]) == 4 {
		return NewDate(nums[0], nums[1], nums[2])
	}

	first, second := nums[0], nums[1]
	year := expandYear(nums[2])

	tie := n.TieBreak
	if tie == nil {
		tie = TieBreakLargerFirstIsDay
	}

	var dayFirst bool
	switch {
	case first > 12 && second <= 12:
		dayFirst = true
	case first <= 12 && second > 12:
		dayFirst = false
	case first <= 12 && second <= 12:
		dayFirst = tie(first, second, DetectLabel(hint))
	default:
		dayFirst = true
	}

	if dayFirst {
		return NewDate(year, second, first)
	}
	return NewDate(year, first, second)
}

func stripNoise(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || isSeparator(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSeparator(r rune) bool {
	return r == '/' || r == '-' || r == '.'
}

// splitDate splits on the first separator present, checked in the order
// '/', '-', '.', and requires exactly three all-digit parts.
func splitDate(s string) ([]string, bool) {
	for _, sep := range []string{"/", "-", "."} {
		if !strings.Contains(s, sep) {
			continue
		}
		parts := strings.Split(s, sep)
		if len(parts) != 3 {
			return nil, false
		}
		for _, p := range parts {
			if !allDigits(p) {
				return nil, false
			}
		}
		return parts, true
	}
	return nil, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// expandYear maps two-digit years: 0-29 to 20xx, 30-99 to 19xx.
func expandYear(y int) int {
	switch {
	case y >= 100:
		return y
	case y <= 29:
		return 2000 + y
	default:
		return 1900 + y
	}
}
