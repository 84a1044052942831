package optin

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

// SetWeeklyPreference upserts a user's standing weekday pattern for one meal
// type. Days absent from the patch keep their stored value.
func (s *Service) SetWeeklyPreference(ctx context.Context, userID, mealTypeID int64, patch domain.DayPatch) (*domain.WeeklyPreference, error) {
	if _, err := s.repo.MealType(ctx, mealTypeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrInvalidMealType, mealTypeID)
		}
		return nil, err
	}

	pref, err := s.repo.GetWeeklyPreference(ctx, userID, mealTypeID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		pref = &domain.WeeklyPreference{UserID: userID, MealTypeID: mealTypeID}
	case err != nil:
		return nil, err
	}

	patch.Apply(pref)
	pref.UpdatedAt = s.now().UTC()
	if err := s.repo.UpsertWeeklyPreference(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// WeeklyStatus returns the stored pattern for every meal type; meals without
// a row read as an all-false pattern.
func (s *Service) WeeklyStatus(ctx context.Context, userID int64) ([]domain.WeeklyPreference, error) {
	meals, err := s.repo.MealTypes(ctx)
	if err != nil {
		return nil, err
	}

	var res []domain.WeeklyPreference
	for _, m := range meals {
		pref, err := s.repo.GetWeeklyPreference(ctx, userID, m.ID)
		if errors.Is(err, domain.ErrNotFound) {
			res = append(res, domain.WeeklyPreference{UserID: userID, MealTypeID: m.ID})
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, *pref)
	}
	return res, nil
}

// Propagate realizes a weekly preference into concrete ledger rows over the
// next five calendar days, skipping weekends. A day is applied only when its
// flag is set and the opt-in window is currently open for it; closed days are
// skipped silently (a later Propagate call picks them up once their window
// opens). Propagation only ever opts in: an existing explicit opt-out is
// never overridden. Returns the dates actually written.
func (s *Service) Propagate(ctx context.Context, userID, mealTypeID int64) ([]domain.Date, error) {
	pref, err := s.repo.GetWeeklyPreference(ctx, userID, mealTypeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := domain.DateOf(now)

	var applied []domain.Date
	for i := 1; i <= 5; i++ {
		date := today.AddDays(i)
		dow := date.Weekday()
		if dow > domain.Friday {
			continue
		}
		if !pref.Day(dow) {
			continue
		}

		// Fresh schedule read per check; an admin edit mid-walk counts.
		rules, err := s.rules(ctx)
		if err != nil {
			return applied, err
		}
		if !domain.OptInOpen(date, now, rules) {
			continue
		}

		existing, err := s.repo.GetOptIn(ctx, userID, mealTypeID, date)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return applied, err
		}
		if existing != nil && !existing.OptedIn {
			// Explicit opt-out wins over the standing preference.
			continue
		}

		rec := &domain.OptInRecord{
			UserID:     userID,
			MealTypeID: mealTypeID,
			Date:       date,
			OptedIn:    true,
			UpdatedAt:  now.UTC(),
		}
		if err := s.repo.UpsertOptIn(ctx, rec); err != nil {
			return applied, err
		}
		applied = append(applied, date)
	}

	if len(applied) > 0 {
		s.log.Info("weekly preference propagated",
			zap.Int64("user", userID),
			zap.Int64("meal", mealTypeID),
			zap.Int("days", len(applied)),
		)
	}
	return applied, nil
}

// PropagateAll walks every stored weekly preference. This is the entry point
// the periodic trigger calls; failures on one preference do not stop the rest.
func (s *Service) PropagateAll(ctx context.Context) error {
	prefs, err := s.repo.ListWeeklyPreferences(ctx)
	if err != nil {
		return err
	}
	for _, p := range prefs {
		if _, err := s.Propagate(ctx, p.UserID, p.MealTypeID); err != nil {
			s.log.Error("propagate failed",
				zap.Error(err),
				zap.Int64("user", p.UserID),
				zap.Int64("meal", p.MealTypeID),
			)
		}
	}
	return nil
}
