package store

import (
	"context"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

// Repo defines storage operations for the schedule, the opt-in ledger,
// weekly preferences and verification tokens.
//
// Absent rows surface as domain.ErrNotFound; any other database failure is
// wrapped into domain.ErrStorage so callers can retry without inspecting
// driver errors.
type Repo interface {
	ScheduleRules(ctx context.Context) ([]domain.ScheduleRule, error)
	UpdateScheduleRule(ctx context.Context, id int64, openM, closeM int) (*domain.ScheduleRule, error)

	MealTypes(ctx context.Context) ([]domain.MealType, error)
	MealType(ctx context.Context, id int64) (*domain.MealType, error)

	UpsertOptIn(ctx context.Context, rec *domain.OptInRecord) error
	GetOptIn(ctx context.Context, userID, mealTypeID int64, date domain.Date) (*domain.OptInRecord, error)
	OptInsForUserDate(ctx context.Context, userID int64, date domain.Date) ([]domain.OptInRecord, error)
	OptedInForDate(ctx context.Context, date domain.Date, mealTypeID int64) ([]domain.OptInRecord, error)
	OptedInCounts(ctx context.Context, from, to domain.Date) ([]domain.DailyCount, error)

	UpsertWeeklyPreference(ctx context.Context, p *domain.WeeklyPreference) error
	GetWeeklyPreference(ctx context.Context, userID, mealTypeID int64) (*domain.WeeklyPreference, error)
	ListWeeklyPreferences(ctx context.Context) ([]domain.WeeklyPreference, error)

	GetToken(ctx context.Context, date domain.Date) (*domain.VerificationToken, error)
	InsertToken(ctx context.Context, t *domain.VerificationToken) error
	ReplaceToken(ctx context.Context, t *domain.VerificationToken) error

	Close() error
}
