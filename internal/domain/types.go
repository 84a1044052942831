package domain

import "time"

// Day-of-week constants, Monday=0 .. Sunday=6.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// ScheduleRule is one row of the opt-in schedule. OpenM/CloseM are minutes
// since midnight. Weekday rules (IsWeekendRule=false) describe the
// evening-through-next-morning band for opting into tomorrow; the primary
// weekend rule describes the Friday-evening-through-Sunday-afternoon window.
type ScheduleRule struct {
	ID            int64
	DayOfWeek     int // Monday=0 .. Sunday=6
	OpenM         int
	CloseM        int
	IsWeekendRule bool
}

// MealType is static reference data (breakfast, lunch, dinner).
type MealType struct {
	ID   int64
	Name string
}

// OptInRecord is the sole source of truth for "did user U request meal M on
// date D". Unique per (UserID, MealTypeID, Date); mutated on every decision,
// never deleted.
type OptInRecord struct {
	UserID     int64
	MealTypeID int64
	Date       Date
	OptedIn    bool
	UpdatedAt  time.Time
}

// WeeklyPreference is a standing weekday intent per (user, meal type). It is
// realized into OptInRecord rows only while the opt-in window is open for the
// corresponding date.
type WeeklyPreference struct {
	UserID     int64
	MealTypeID int64
	Monday     bool
	Tuesday    bool
	Wednesday  bool
	Thursday   bool
	Friday     bool
	UpdatedAt  time.Time
}

// Day returns the flag for a Monday=0..Friday=4 weekday.
func (p WeeklyPreference) Day(dow int) bool {
	switch dow {
	case Monday:
		return p.Monday
	case Tuesday:
		return p.Tuesday
	case Wednesday:
		return p.Wednesday
	case Thursday:
		return p.Thursday
	case Friday:
		return p.Friday
	}
	return false
}

// DayPatch is a partial update of a WeeklyPreference: nil means "leave the
// stored value unchanged", not false.
type DayPatch struct {
	Monday    *bool
	Tuesday   *bool
	Wednesday *bool
	Thursday  *bool
	Friday    *bool
}

// Apply overlays the patch onto p.
func (dp DayPatch) Apply(p *WeeklyPreference) {
	if dp.Monday != nil {
		p.Monday = *dp.Monday
	}
	if dp.Tuesday != nil {
		p.Tuesday = *dp.Tuesday
	}
	if dp.Wednesday != nil {
		p.Wednesday = *dp.Wednesday
	}
	if dp.Thursday != nil {
		p.Thursday = *dp.Thursday
	}
	if dp.Friday != nil {
		p.Friday = *dp.Friday
	}
}

// VerificationToken is the per-date opaque token encoded into the daily QR
// code. One live row per date.
type VerificationToken struct {
	Date      Date
	Token     string
	CreatedAt time.Time
}

// MealStatus pairs a meal type with a user's opt-in decision for some date.
// An absent ledger record reads as OptedIn=false.
type MealStatus struct {
	MealType MealType
	OptedIn  bool
}

// DailyCount is an aggregate of opted-in records for one meal on one date.
type DailyCount struct {
	Date       Date
	MealTypeID int64
	MealName   string
	Count      int
}
