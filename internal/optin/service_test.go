package optin

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
	"github.com/Sakethsreeram7/food-tracker/internal/store"
)

// The seeded schedule applies: weekday bands 20:00-09:00, weekend window
// Friday 20:00 through Sunday 16:00. 2025-06-02 is a Monday.

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo, zap.NewNop(), time.UTC)
}

func setClock(s *Service, dow, hh, mm int) time.Time {
	now := time.Date(2025, time.June, 2+dow, hh, mm, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return now
}

func ptr(b bool) *bool { return &b }

func TestSetOptIn_ReadYourWrite(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0)
	tuesday := s.DefaultTarget()

	rec, err := s.SetOptIn(ctx, 1, 2, tuesday, true)
	require.NoError(t, err)
	assert.True(t, rec.OptedIn)

	report, err := s.Status(ctx, 1, tuesday)
	require.NoError(t, err)
	assert.True(t, report.WindowOpen)
	require.Len(t, report.Meals, 3)
	for _, m := range report.Meals {
		if m.MealType.ID == 2 {
			assert.True(t, m.OptedIn, "just-written value must be visible")
		} else {
			assert.False(t, m.OptedIn, "absent rows read as opted-out")
		}
	}
}

func TestSetOptIn_Idempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0)
	tuesday := s.DefaultTarget()

	first, err := s.SetOptIn(ctx, 1, 2, tuesday, true)
	require.NoError(t, err)
	second, err := s.SetOptIn(ctx, 1, 2, tuesday, true)
	require.NoError(t, err)
	assert.Equal(t, first.OptedIn, second.OptedIn)

	report, err := s.Status(ctx, 1, tuesday)
	require.NoError(t, err)
	var optedIn int
	for _, m := range report.Meals {
		if m.OptedIn {
			optedIn++
		}
	}
	assert.Equal(t, 1, optedIn)
}

func TestSetOptIn_WindowClosed(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 12, 0) // midday: band closed
	tuesday := s.DefaultTarget()

	_, err := s.SetOptIn(ctx, 1, 2, tuesday, true)
	assert.ErrorIs(t, err, domain.ErrWindowClosed)

	// Nothing was written.
	report, err := s.Status(ctx, 1, tuesday)
	require.NoError(t, err)
	for _, m := range report.Meals {
		assert.False(t, m.OptedIn)
	}
}

func TestSetOptIn_TargetBeyondTomorrowClosed(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0)

	_, err := s.SetOptIn(ctx, 1, 2, s.DefaultTarget().AddDays(1), true)
	assert.ErrorIs(t, err, domain.ErrWindowClosed)
}

func TestSetOptIn_InvalidMealType(t *testing.T) {
	s := newTestService(t)
	setClock(s, domain.Monday, 21, 0)

	_, err := s.SetOptIn(context.Background(), 1, 99, s.DefaultTarget(), true)
	assert.ErrorIs(t, err, domain.ErrInvalidMealType)
}

func TestSetOptIn_ScheduleEditAppliesImmediately(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 19, 30) // before the 20:00 open

	_, err := s.SetOptIn(ctx, 1, 2, s.DefaultTarget(), true)
	require.ErrorIs(t, err, domain.ErrWindowClosed)

	// Admin moves Monday's open earlier; no restart, next check sees it.
	_, err = s.UpdateSchedule(ctx, 1, "19:00", "09:00")
	require.NoError(t, err)

	_, err = s.SetOptIn(ctx, 1, 2, s.DefaultTarget(), true)
	assert.NoError(t, err)
}

func TestMealTypeByName(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	m, err := s.MealTypeByName(ctx, "lunch")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.ID)

	_, err = s.MealTypeByName(ctx, "brunch")
	assert.ErrorIs(t, err, domain.ErrInvalidMealType)
}

func TestSetWeeklyPreference_PartialUpdate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0)

	_, err := s.SetWeeklyPreference(ctx, 1, 2, domain.DayPatch{
		Monday: ptr(true), Wednesday: ptr(true),
	})
	require.NoError(t, err)

	// A later patch that only touches Friday leaves Monday and Wednesday.
	pref, err := s.SetWeeklyPreference(ctx, 1, 2, domain.DayPatch{Friday: ptr(true)})
	require.NoError(t, err)
	assert.True(t, pref.Monday)
	assert.True(t, pref.Wednesday)
	assert.True(t, pref.Friday)
	assert.False(t, pref.Tuesday)

	_, err = s.SetWeeklyPreference(ctx, 1, 99, domain.DayPatch{Monday: ptr(true)})
	assert.ErrorIs(t, err, domain.ErrInvalidMealType)
}

func TestWeeklyStatus_AbsentReadsAllFalse(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0)

	_, err := s.SetWeeklyPreference(ctx, 1, 1, domain.DayPatch{Tuesday: ptr(true)})
	require.NoError(t, err)

	prefs, err := s.WeeklyStatus(ctx, 1)
	require.NoError(t, err)
	require.Len(t, prefs, 3)
	assert.True(t, prefs[0].Tuesday)
	assert.False(t, prefs[1].Tuesday)
	assert.False(t, prefs[2].Monday)
}

func TestPropagate_OnlyOpenDays(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0) // weekday band: only tomorrow is open

	_, err := s.SetWeeklyPreference(ctx, 1, 2, domain.DayPatch{
		Tuesday: ptr(true), Wednesday: ptr(true),
	})
	require.NoError(t, err)

	applied, err := s.Propagate(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, applied, 1, "only tomorrow's window is open on a Monday evening")
	assert.Equal(t, s.DefaultTarget(), applied[0])

	report, err := s.Status(ctx, 1, applied[0])
	require.NoError(t, err)
	assert.True(t, report.Meals[1].OptedIn)
}

func TestPropagate_SaturdayCoversWholeHorizon(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Saturday, 12, 0) // weekend mode: every date writable

	_, err := s.SetWeeklyPreference(ctx, 1, 2, domain.DayPatch{
		Monday: ptr(true), Tuesday: ptr(true), Wednesday: ptr(true),
		Thursday: ptr(true), Friday: ptr(true),
	})
	require.NoError(t, err)

	applied, err := s.Propagate(ctx, 1, 2)
	require.NoError(t, err)
	// Horizon Sun..Thu; Sunday is skipped as a non-weekday.
	assert.Len(t, applied, 4)
}

func TestPropagate_NeverOverridesOptOut(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0)
	tuesday := s.DefaultTarget()

	// Explicit opt-out first.
	_, err := s.SetOptIn(ctx, 1, 2, tuesday, false)
	require.NoError(t, err)

	_, err = s.SetWeeklyPreference(ctx, 1, 2, domain.DayPatch{Tuesday: ptr(true)})
	require.NoError(t, err)

	applied, err := s.Propagate(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, applied, "opt-out must not be flipped")

	report, err := s.Status(ctx, 1, tuesday)
	require.NoError(t, err)
	assert.False(t, report.Meals[1].OptedIn)
}

func TestPropagate_SundayEveningIntoMonday(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// Stretch the weekend cutoff to 21:00 so the Sunday-evening gate is
	// still open when the preference lands.
	_, err := s.UpdateSchedule(ctx, 6, "20:00", "21:00")
	require.NoError(t, err)

	setClock(s, domain.Sunday, 20, 30)
	_, err = s.SetWeeklyPreference(ctx, 1, 3, domain.DayPatch{Monday: ptr(true)})
	require.NoError(t, err)

	applied, err := s.Propagate(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, domain.Monday, applied[0].Weekday())

	report, err := s.Status(ctx, 1, applied[0])
	require.NoError(t, err)
	assert.True(t, report.Meals[2].OptedIn)
}

func TestPropagate_NoPreference(t *testing.T) {
	s := newTestService(t)
	setClock(s, domain.Monday, 21, 0)

	_, err := s.Propagate(context.Background(), 1, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPropagateAll(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0)

	_, err := s.SetWeeklyPreference(ctx, 1, 1, domain.DayPatch{Tuesday: ptr(true)})
	require.NoError(t, err)
	_, err = s.SetWeeklyPreference(ctx, 2, 3, domain.DayPatch{Tuesday: ptr(true)})
	require.NoError(t, err)

	require.NoError(t, s.PropagateAll(ctx))

	tuesday := s.DefaultTarget()
	r1, err := s.Status(ctx, 1, tuesday)
	require.NoError(t, err)
	assert.True(t, r1.Meals[0].OptedIn)

	r2, err := s.Status(ctx, 2, tuesday)
	require.NoError(t, err)
	assert.True(t, r2.Meals[2].OptedIn)
}

func TestHistory_CountsWindow(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	setClock(s, domain.Monday, 21, 0)
	tuesday := s.DefaultTarget()

	_, err := s.SetOptIn(ctx, 1, 1, tuesday, true)
	require.NoError(t, err)
	_, err = s.SetOptIn(ctx, 2, 1, tuesday, true)
	require.NoError(t, err)

	// Move the clock past the date so it falls inside the trailing window.
	setClock(s, domain.Wednesday, 10, 0)
	counts, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, tuesday, counts[0].Date)
}
