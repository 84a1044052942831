package domain

import "time"

// WindowState classifies "now" against the schedule. Weekday covers
// Monday through Thursday; Friday, Saturday and Sunday run in weekend mode
// and are governed by the single primary weekend rule.
type WindowState int

const (
	StateWeekday WindowState = iota
	StateFridayBeforeOpen
	StateFridayEvening
	StateSaturday
	StateSundayBeforeCutoff
	StateSundayAfterCutoff
	StateNoRule
)

func (s WindowState) String() string {
	switch s {
	case StateWeekday:
		return "weekday"
	case StateFridayBeforeOpen:
		return "friday-before-open"
	case StateFridayEvening:
		return "friday-evening"
	case StateSaturday:
		return "saturday"
	case StateSundayBeforeCutoff:
		return "sunday-before-cutoff"
	case StateSundayAfterCutoff:
		return "sunday-after-cutoff"
	}
	return "no-rule"
}

// RuleSet is a snapshot of the schedule, rebuilt from the store on every
// eligibility check so that admin edits take effect immediately.
type RuleSet struct {
	weekday map[int]ScheduleRule
	weekend *ScheduleRule
}

// NewRuleSet indexes rules by day. The first weekend-flagged rule becomes the
// primary weekend rule; any further weekend-flagged rows (the Sunday-evening
// reopening boundary) are stored reference data the engine does not consult.
func NewRuleSet(rules []ScheduleRule) RuleSet {
	rs := RuleSet{weekday: make(map[int]ScheduleRule)}
	for _, r := range rules {
		if r.IsWeekendRule {
			if rs.weekend == nil {
				rule := r
				rs.weekend = &rule
			}
			continue
		}
		rs.weekday[r.DayOfWeek] = r
	}
	return rs
}

// StateAt returns the window state for the instant "now", which must already
// be in the organization's timezone.
func StateAt(now time.Time, rules RuleSet) WindowState {
	dow := mondayWeekday(now)
	if dow < Friday {
		if _, ok := rules.weekday[dow]; !ok {
			return StateNoRule
		}
		return StateWeekday
	}

	if rules.weekend == nil {
		return StateNoRule
	}
	nowM := MinuteOf(now)
	switch dow {
	case Friday:
		if nowM >= rules.weekend.OpenM {
			return StateFridayEvening
		}
		return StateFridayBeforeOpen
	case Saturday:
		return StateSaturday
	default: // Sunday
		if nowM < rules.weekend.CloseM {
			return StateSundayBeforeCutoff
		}
		return StateSundayAfterCutoff
	}
}

// OptInOpen reports whether opt-in changes for target are permitted at "now".
// It is pure: the clock and the schedule snapshot are both injected.
//
// In weekend mode the target date is irrelevant: from the Friday-evening open
// through the Sunday-afternoon cutoff every date is writable. In weekday mode
// the band spans midnight (evening of today through the next morning) and the
// target must be exactly tomorrow; the close time only bounds the band, never
// which date is eligible.
func OptInOpen(target Date, now time.Time, rules RuleSet) bool {
	switch StateAt(now, rules) {
	case StateFridayEvening, StateSaturday, StateSundayBeforeCutoff:
		return true
	case StateWeekday:
		rule := rules.weekday[mondayWeekday(now)]
		if !bandOpen(MinuteOf(now), rule.OpenM, rule.CloseM) {
			return false
		}
		return target == Tomorrow(now)
	default:
		return false
	}
}

// bandOpen reports whether nowM lies in the midnight-spanning band
// [openM..24:00) U [00:00..closeM).
func bandOpen(nowM, openM, closeM int) bool {
	return nowM >= openM || nowM < closeM
}
