package expiry

import "fmt"

// TriggerKind identifies which reminder rule an offset hit.
type TriggerKind string

const (
	TriggerNone     TriggerKind = ""
	TriggerExpired  TriggerKind = "expired"
	TriggerToday    TriggerKind = "expiring_today"
	TriggerTomorrow TriggerKind = "expiring_tomorrow"
	TriggerSoon     TriggerKind = "expiring_soon"
)

// Priority orders triggers; lower is more urgent.
type Priority int

const (
	PriorityCritical Priority = iota + 1
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "none"
	}
}

// TriggerResult is a matched reminder rule.
type TriggerResult struct {
	Kind     TriggerKind
	Priority Priority
	Title    string
	// Format takes the item name, then for expired/soon the day count.
	Format string
}

// Fired reports whether any rule matched.
func (t TriggerResult) Fired() bool { return t.Kind != TriggerNone }

// Message fills the template for one item.
func (t TriggerResult) Message(itemName string, o Offset) string {
	days, _ := o.Value()
	switch t.Kind {
	case TriggerExpired:
		n := -days
		plural := "s"
		if n == 1 {
			plural = ""
		}
		return fmt.Sprintf(t.Format, itemName, n, plural)
	case TriggerSoon:
		return fmt.Sprintf(t.Format, itemName, days)
	case TriggerNone:
		return ""
	default:
		return fmt.Sprintf(t.Format, itemName)
	}
}

var (
	ruleExpired = TriggerResult{
		Kind: TriggerExpired, Priority: PriorityCritical,
		Title: "Item Expired", Format: "%s has expired %d day%s ago",
	}
	ruleToday = TriggerResult{
		Kind: TriggerToday, Priority: PriorityHigh,
		Title: "Expires Today", Format: "%s expires today! Use it soon or consider making a recipe.",
	}
	ruleTomorrow = TriggerResult{
		Kind: TriggerTomorrow, Priority: PriorityMedium,
		Title: "Expires Tomorrow", Format: "%s expires tomorrow. Check out recipe suggestions!",
	}
	ruleSoon = TriggerResult{
		Kind: TriggerSoon, Priority: PriorityLow,
		Title: "Expires Soon", Format: "%s expires in %d days. Time to plan a meal!",
	}
)

// Trigger picks the most specific reminder rule for o:
// expired > today > tomorrow > within reminderDays.
func Trigger(o Offset, reminderDays int) TriggerResult {
	days, ok := o.Value()
	switch {
	case !ok:
		return TriggerResult{}
	case days < 0:
		return ruleExpired
	case days == 0:
		return ruleToday
	case days == 1:
		return ruleTomorrow
	case days <= reminderDays:
		return ruleSoon
	default:
		return TriggerResult{}
	}
}
