// Package optin implements the opt-in ledger and the weekly preference
// propagator on top of the store and the eligibility engine.
package optin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
	"github.com/Sakethsreeram7/food-tracker/internal/store"
)

// Service executes opt-in state changes gated by the schedule. The clock is
// injectable so the window logic stays deterministic under test; production
// uses the organization's timezone.
type Service struct {
	repo store.Repo
	log  *zap.Logger
	loc  *time.Location
	now  func() time.Time
}

// New creates a Service reading "now" from the wall clock in loc.
func New(repo store.Repo, log *zap.Logger, loc *time.Location) *Service {
	return &Service{
		repo: repo,
		log:  log,
		loc:  loc,
		now:  func() time.Time { return time.Now().In(loc) },
	}
}

// StatusReport is the answer to "what is user U's standing for date D".
type StatusReport struct {
	Date       domain.Date
	WindowOpen bool
	Meals      []domain.MealStatus
}

// DefaultTarget is the date used when the caller names none: tomorrow.
func (s *Service) DefaultTarget() domain.Date {
	return domain.Tomorrow(s.now())
}

// rules loads a fresh schedule snapshot. Called per eligibility check, never
// cached, so admin edits to the schedule apply to the very next decision.
func (s *Service) rules(ctx context.Context) (domain.RuleSet, error) {
	list, err := s.repo.ScheduleRules(ctx)
	if err != nil {
		return domain.RuleSet{}, err
	}
	return domain.NewRuleSet(list), nil
}

// WindowOpen reports whether opt-in changes for date are currently permitted.
func (s *Service) WindowOpen(ctx context.Context, date domain.Date) (bool, error) {
	rules, err := s.rules(ctx)
	if err != nil {
		return false, err
	}
	return domain.OptInOpen(date, s.now(), rules), nil
}

// SetOptIn records a user's decision for one meal on one date. The window
// must be open for the date; otherwise nothing is written and ErrWindowClosed
// is returned. The write is an idempotent upsert.
func (s *Service) SetOptIn(ctx context.Context, userID, mealTypeID int64, date domain.Date, optedIn bool) (*domain.OptInRecord, error) {
	if _, err := s.repo.MealType(ctx, mealTypeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrInvalidMealType, mealTypeID)
		}
		return nil, err
	}

	open, err := s.WindowOpen(ctx, date)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("%w: %s", domain.ErrWindowClosed, date)
	}

	rec := &domain.OptInRecord{
		UserID:     userID,
		MealTypeID: mealTypeID,
		Date:       date,
		OptedIn:    optedIn,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.repo.UpsertOptIn(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info("opt-in recorded",
		zap.Int64("user", userID),
		zap.Int64("meal", mealTypeID),
		zap.String("date", date.String()),
		zap.Bool("opted_in", optedIn),
	)
	return rec, nil
}

// Status reports, for every meal type, whether the user is opted in for the
// date. Missing ledger rows read as opted-out; they are never an error.
func (s *Service) Status(ctx context.Context, userID int64, date domain.Date) (*StatusReport, error) {
	meals, err := s.repo.MealTypes(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.OptInsForUserDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	byMeal := make(map[int64]bool, len(recs))
	for _, r := range recs {
		byMeal[r.MealTypeID] = r.OptedIn
	}

	open, err := s.WindowOpen(ctx, date)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{Date: date, WindowOpen: open}
	for _, m := range meals {
		report.Meals = append(report.Meals, domain.MealStatus{
			MealType: m,
			OptedIn:  byMeal[m.ID],
		})
	}
	return report, nil
}

// MealsFor is Status without the window check, for verification lookups.
func (s *Service) MealsFor(ctx context.Context, userID int64, date domain.Date) ([]domain.MealStatus, error) {
	meals, err := s.repo.MealTypes(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.OptInsForUserDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	byMeal := make(map[int64]bool, len(recs))
	for _, r := range recs {
		byMeal[r.MealTypeID] = r.OptedIn
	}

	var res []domain.MealStatus
	for _, m := range meals {
		res = append(res, domain.MealStatus{MealType: m, OptedIn: byMeal[m.ID]})
	}
	return res, nil
}

// MealTypes lists the meal reference data.
func (s *Service) MealTypes(ctx context.Context) ([]domain.MealType, error) {
	return s.repo.MealTypes(ctx)
}

// MealTypeByName resolves a meal type by case-insensitive name.
func (s *Service) MealTypeByName(ctx context.Context, name string) (*domain.MealType, error) {
	meals, err := s.repo.MealTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range meals {
		if strings.EqualFold(m.Name, name) {
			meal := m
			return &meal, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMealType, name)
}
