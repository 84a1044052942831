package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestMigrations_SeedData(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	meals, err := repo.MealTypes(ctx)
	require.NoError(t, err)
	require.Len(t, meals, 3)
	assert.Equal(t, "Breakfast", meals[0].Name)
	assert.Equal(t, "Dinner", meals[2].Name)

	rules, err := repo.ScheduleRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 7)

	var weekend int
	for _, r := range rules {
		if r.IsWeekendRule {
			weekend++
		} else {
			assert.Equal(t, 1200, r.OpenM)
			assert.Equal(t, 540, r.CloseM)
		}
	}
	assert.Equal(t, 2, weekend)
}

func TestUpdateScheduleRule(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	rule, err := repo.UpdateScheduleRule(ctx, 1, 19*60, 8*60)
	require.NoError(t, err)
	assert.Equal(t, 19*60, rule.OpenM)
	assert.Equal(t, 8*60, rule.CloseM)
	assert.Equal(t, domain.Monday, rule.DayOfWeek)

	_, err = repo.UpdateScheduleRule(ctx, 999, 0, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertOptIn_Idempotent(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	date := domain.Date{Year: 2025, Month: time.June, Day: 3}

	rec := &domain.OptInRecord{
		UserID: 42, MealTypeID: 2, Date: date,
		OptedIn: true, UpdatedAt: time.Unix(1_748_900_000, 0),
	}
	require.NoError(t, repo.UpsertOptIn(ctx, rec))
	require.NoError(t, repo.UpsertOptIn(ctx, rec))

	got, err := repo.GetOptIn(ctx, 42, 2, date)
	require.NoError(t, err)
	assert.True(t, got.OptedIn)
	assert.Equal(t, date, got.Date)

	// Overwrite flips the flag in place; still one row.
	rec.OptedIn = false
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.UpsertOptIn(ctx, rec))

	got, err = repo.GetOptIn(ctx, 42, 2, date)
	require.NoError(t, err)
	assert.False(t, got.OptedIn)

	all, err := repo.OptInsForUserDate(ctx, 42, date)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetOptIn_NotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.GetOptIn(context.Background(), 1, 1, domain.Date{Year: 2025, Month: time.June, Day: 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, errors.Is(err, domain.ErrStorage))
}

func TestOptedInForDate_FilterAndRoster(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	date := domain.Date{Year: 2025, Month: time.June, Day: 4}
	now := time.Now()

	for _, rec := range []domain.OptInRecord{
		{UserID: 1, MealTypeID: 1, Date: date, OptedIn: true, UpdatedAt: now},
		{UserID: 1, MealTypeID: 2, Date: date, OptedIn: true, UpdatedAt: now},
		{UserID: 2, MealTypeID: 2, Date: date, OptedIn: true, UpdatedAt: now},
		{UserID: 3, MealTypeID: 2, Date: date, OptedIn: false, UpdatedAt: now}, // opted out
	} {
		rec := rec
		require.NoError(t, repo.UpsertOptIn(ctx, &rec))
	}

	all, err := repo.OptedInForDate(ctx, date, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "opted-out rows must not appear")

	lunches, err := repo.OptedInForDate(ctx, date, 2)
	require.NoError(t, err)
	require.Len(t, lunches, 2)
	assert.Equal(t, int64(1), lunches[0].UserID)
	assert.Equal(t, int64(2), lunches[1].UserID)
}

func TestOptedInCounts(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	d1 := domain.Date{Year: 2025, Month: time.June, Day: 4}
	d2 := d1.AddDays(1)
	now := time.Now()

	for _, rec := range []domain.OptInRecord{
		{UserID: 1, MealTypeID: 1, Date: d1, OptedIn: true, UpdatedAt: now},
		{UserID: 2, MealTypeID: 1, Date: d1, OptedIn: true, UpdatedAt: now},
		{UserID: 1, MealTypeID: 3, Date: d2, OptedIn: true, UpdatedAt: now},
		{UserID: 9, MealTypeID: 1, Date: d1, OptedIn: false, UpdatedAt: now},
	} {
		rec := rec
		require.NoError(t, repo.UpsertOptIn(ctx, &rec))
	}

	counts, err := repo.OptedInCounts(ctx, d1, d2)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, domain.DailyCount{Date: d1, MealTypeID: 1, MealName: "Breakfast", Count: 2}, counts[0])
	assert.Equal(t, domain.DailyCount{Date: d2, MealTypeID: 3, MealName: "Dinner", Count: 1}, counts[1])
}

func TestWeeklyPreference_UpsertAndList(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	p := &domain.WeeklyPreference{
		UserID: 7, MealTypeID: 2,
		Monday: true, Wednesday: true,
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.UpsertWeeklyPreference(ctx, p))

	p.Wednesday = false
	p.Friday = true
	require.NoError(t, repo.UpsertWeeklyPreference(ctx, p))

	got, err := repo.GetWeeklyPreference(ctx, 7, 2)
	require.NoError(t, err)
	assert.True(t, got.Monday)
	assert.False(t, got.Wednesday)
	assert.True(t, got.Friday)

	_, err = repo.GetWeeklyPreference(ctx, 7, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.UpsertWeeklyPreference(ctx, &domain.WeeklyPreference{
		UserID: 8, MealTypeID: 1, Tuesday: true, UpdatedAt: time.Now(),
	}))
	all, err := repo.ListWeeklyPreferences(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplaceToken_Swaps(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	date := domain.Date{Year: 2025, Month: time.June, Day: 5}

	old := &domain.VerificationToken{Date: date, Token: "old-token", CreatedAt: time.Now()}
	require.NoError(t, repo.InsertToken(ctx, old))

	got, err := repo.GetToken(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, "old-token", got.Token)

	fresh := &domain.VerificationToken{Date: date, Token: "new-token", CreatedAt: time.Now()}
	require.NoError(t, repo.ReplaceToken(ctx, fresh))

	got, err = repo.GetToken(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, "new-token", got.Token)

	// ReplaceToken also works when no token exists yet.
	other := date.AddDays(1)
	require.NoError(t, repo.ReplaceToken(ctx, &domain.VerificationToken{
		Date: other, Token: "first", CreatedAt: time.Now(),
	}))
	got, err = repo.GetToken(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Token)
}
