package store

import (
	"database/sql"
	"time"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

// scan helpers shared by QueryRow and Query paths.

func scanOptIn(scan func(...any) error) (*domain.OptInRecord, error) {
	var (
		rec     domain.OptInRecord
		dateStr string
		optedIn int
		updated int64
	)
	if err := scan(&rec.UserID, &rec.MealTypeID, &dateStr, &optedIn, &updated); err != nil {
		return nil, err
	}
	d, err := domain.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	rec.Date = d
	rec.OptedIn = optedIn != 0
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return &rec, nil
}

func collectOptIns(rows *sql.Rows) ([]domain.OptInRecord, error) {
	var res []domain.OptInRecord
	for rows.Next() {
		rec, err := scanOptIn(rows.Scan)
		if err != nil {
			return nil, storageErr("scan opt-in", err)
		}
		res = append(res, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("opt-in rows", err)
	}
	return res, nil
}

func scanWeekly(scan func(...any) error) (*domain.WeeklyPreference, error) {
	var (
		p                       domain.WeeklyPreference
		mon, tue, wed, thu, fri int
		updated                 int64
	)
	if err := scan(&p.UserID, &p.MealTypeID, &mon, &tue, &wed, &thu, &fri, &updated); err != nil {
		return nil, err
	}
	p.Monday = mon != 0
	p.Tuesday = tue != 0
	p.Wednesday = wed != 0
	p.Thursday = thu != 0
	p.Friday = fri != 0
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return &p, nil
}

func scanToken(scan func(...any) error) (*domain.VerificationToken, error) {
	var (
		t       domain.VerificationToken
		dateStr string
		created int64
	)
	if err := scan(&dateStr, &t.Token, &created); err != nil {
		return nil, err
	}
	d, err := domain.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	t.Date = d
	t.CreatedAt = time.Unix(created, 0).UTC()
	return &t, nil
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
