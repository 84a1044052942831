package optin

import (
	"context"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

// Schedules lists every schedule rule for the admin surface.
func (s *Service) Schedules(ctx context.Context) ([]domain.ScheduleRule, error) {
	return s.repo.ScheduleRules(ctx)
}

// UpdateSchedule changes a rule's open/close times, given as HH:MM strings.
// The rule's day and weekend flag are immutable.
func (s *Service) UpdateSchedule(ctx context.Context, id int64, openHHMM, closeHHMM string) (*domain.ScheduleRule, error) {
	openM, err := domain.ParseHHMM(openHHMM)
	if err != nil {
		return nil, err
	}
	closeM, err := domain.ParseHHMM(closeHHMM)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateScheduleRule(ctx, id, openM, closeM)
}

// Roster returns all opted-in records for a date, optionally narrowed to one
// meal type (mealTypeID > 0).
func (s *Service) Roster(ctx context.Context, date domain.Date, mealTypeID int64) ([]domain.OptInRecord, error) {
	return s.repo.OptedInForDate(ctx, date, mealTypeID)
}

// History aggregates opted-in counts per meal per date over the trailing
// two months.
func (s *Service) History(ctx context.Context) ([]domain.DailyCount, error) {
	end := domain.DateOf(s.now())
	start := end.AddDays(-60)
	return s.repo.OptedInCounts(ctx, start, end)
}
