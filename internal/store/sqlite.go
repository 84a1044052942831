package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// storageErr maps sql errors onto the domain error kinds.
func storageErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
}

// ScheduleRules returns every schedule row, weekday rules first.
func (r *SQLiteRepo) ScheduleRules(ctx context.Context) ([]domain.ScheduleRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, day_of_week, open_m, close_m, is_weekend_rule
		FROM schedule_rules
		ORDER BY is_weekend_rule, day_of_week`)
	if err != nil {
		return nil, storageErr("schedule rules", err)
	}
	defer rows.Close()

	var res []domain.ScheduleRule
	for rows.Next() {
		var (
			rule    domain.ScheduleRule
			weekend int
		)
		if err := rows.Scan(&rule.ID, &rule.DayOfWeek, &rule.OpenM, &rule.CloseM, &weekend); err != nil {
			return nil, storageErr("scan schedule rule", err)
		}
		rule.IsWeekendRule = weekend != 0
		res = append(res, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("schedule rules", err)
	}
	return res, nil
}

// UpdateScheduleRule changes a rule's open/close times. Day identity is
// immutable. Returns the updated rule, or ErrNotFound for an unknown id.
func (r *SQLiteRepo) UpdateScheduleRule(ctx context.Context, id int64, openM, closeM int) (*domain.ScheduleRule, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE schedule_rules
		SET open_m = ?, close_m = ?
		WHERE id = ?`,
		openM, closeM, id,
	)
	if err != nil {
		return nil, storageErr("update schedule rule", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storageErr("update schedule rule", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: schedule rule %d", domain.ErrNotFound, id)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, day_of_week, open_m, close_m, is_weekend_rule
		FROM schedule_rules
		WHERE id = ?`, id)
	var (
		rule    domain.ScheduleRule
		weekend int
	)
	if err := row.Scan(&rule.ID, &rule.DayOfWeek, &rule.OpenM, &rule.CloseM, &weekend); err != nil {
		return nil, storageErr("reread schedule rule", err)
	}
	rule.IsWeekendRule = weekend != 0
	return &rule, nil
}

// MealTypes lists the static meal reference data.
func (r *SQLiteRepo) MealTypes(ctx context.Context) ([]domain.MealType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM meal_types ORDER BY id`)
	if err != nil {
		return nil, storageErr("meal types", err)
	}
	defer rows.Close()

	var res []domain.MealType
	for rows.Next() {
		var m domain.MealType
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, storageErr("scan meal type", err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("meal types", err)
	}
	return res, nil
}

// MealType returns one meal type by id or ErrNotFound.
func (r *SQLiteRepo) MealType(ctx context.Context, id int64) (*domain.MealType, error) {
	var m domain.MealType
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM meal_types WHERE id = ?`, id).
		Scan(&m.ID, &m.Name)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("meal type %d", id), err)
	}
	return &m, nil
}

// UpsertOptIn inserts or overwrites the ledger row for the record's
// (user, meal, date) key. Rows are never deleted.
func (r *SQLiteRepo) UpsertOptIn(ctx context.Context, rec *domain.OptInRecord) error {
	if rec == nil {
		return errors.New("nil opt-in record")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO opt_ins (user_id, meal_type_id, date, opted_in, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, meal_type_id, date) DO UPDATE SET
			opted_in   = excluded.opted_in,
			updated_at = excluded.updated_at`,
		rec.UserID, rec.MealTypeID, rec.Date.String(),
		boolToInt(rec.OptedIn), rec.UpdatedAt.UTC().Unix(),
	)
	if err != nil {
		return storageErr("upsert opt-in", err)
	}
	return nil
}

// GetOptIn returns the ledger row for one key or ErrNotFound.
func (r *SQLiteRepo) GetOptIn(ctx context.Context, userID, mealTypeID int64, date domain.Date) (*domain.OptInRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, meal_type_id, date, opted_in, updated_at
		FROM opt_ins
		WHERE user_id = ? AND meal_type_id = ? AND date = ?`,
		userID, mealTypeID, date.String(),
	)
	rec, err := scanOptIn(row.Scan)
	if err != nil {
		return nil, storageErr("get opt-in", err)
	}
	return rec, nil
}

// OptInsForUserDate returns every ledger row a user has for one date.
func (r *SQLiteRepo) OptInsForUserDate(ctx context.Context, userID int64, date domain.Date) ([]domain.OptInRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, meal_type_id, date, opted_in, updated_at
		FROM opt_ins
		WHERE user_id = ? AND date = ?
		ORDER BY meal_type_id`,
		userID, date.String(),
	)
	if err != nil {
		return nil, storageErr("opt-ins for user/date", err)
	}
	defer rows.Close()
	return collectOptIns(rows)
}

// OptedInForDate returns all opted-in rows for a date across users,
// optionally filtered by meal type (mealTypeID > 0).
func (r *SQLiteRepo) OptedInForDate(ctx context.Context, date domain.Date, mealTypeID int64) ([]domain.OptInRecord, error) {
	q := `
		SELECT user_id, meal_type_id, date, opted_in, updated_at
		FROM opt_ins
		WHERE date = ? AND opted_in = 1`
	args := []any{date.String()}
	if mealTypeID > 0 {
		q += ` AND meal_type_id = ?`
		args = append(args, mealTypeID)
	}
	q += ` ORDER BY meal_type_id, user_id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storageErr("opted-in for date", err)
	}
	defer rows.Close()
	return collectOptIns(rows)
}

// OptedInCounts aggregates opted-in rows per date and meal over [from, to].
func (r *SQLiteRepo) OptedInCounts(ctx context.Context, from, to domain.Date) ([]domain.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.date, m.id, m.name, COUNT(*)
		FROM opt_ins o
		JOIN meal_types m ON m.id = o.meal_type_id
		WHERE o.date BETWEEN ? AND ? AND o.opted_in = 1
		GROUP BY o.date, m.id, m.name
		ORDER BY o.date, m.id`,
		from.String(), to.String(),
	)
	if err != nil {
		return nil, storageErr("opted-in counts", err)
	}
	defer rows.Close()

	var res []domain.DailyCount
	for rows.Next() {
		var (
			c       domain.DailyCount
			dateStr string
		)
		if err := rows.Scan(&dateStr, &c.MealTypeID, &c.MealName, &c.Count); err != nil {
			return nil, storageErr("scan count", err)
		}
		d, err := domain.ParseDate(dateStr)
		if err != nil {
			return nil, storageErr("parse count date", err)
		}
		c.Date = d
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("opted-in counts", err)
	}
	return res, nil
}

// UpsertWeeklyPreference inserts or overwrites the preference row for the
// record's (user, meal) key.
func (r *SQLiteRepo) UpsertWeeklyPreference(ctx context.Context, p *domain.WeeklyPreference) error {
	if p == nil {
		return errors.New("nil weekly preference")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO weekly_preferences (
			user_id, meal_type_id, monday, tuesday, wednesday, thursday, friday, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, meal_type_id) DO UPDATE SET
			monday     = excluded.monday,
			tuesday    = excluded.tuesday,
			wednesday  = excluded.wednesday,
			thursday   = excluded.thursday,
			friday     = excluded.friday,
			updated_at = excluded.updated_at`,
		p.UserID, p.MealTypeID,
		boolToInt(p.Monday), boolToInt(p.Tuesday), boolToInt(p.Wednesday),
		boolToInt(p.Thursday), boolToInt(p.Friday),
		p.UpdatedAt.UTC().Unix(),
	)
	if err != nil {
		return storageErr("upsert weekly preference", err)
	}
	return nil
}

// GetWeeklyPreference returns the preference row for one key or ErrNotFound.
func (r *SQLiteRepo) GetWeeklyPreference(ctx context.Context, userID, mealTypeID int64) (*domain.WeeklyPreference, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, meal_type_id, monday, tuesday, wednesday, thursday, friday, updated_at
		FROM weekly_preferences
		WHERE user_id = ? AND meal_type_id = ?`,
		userID, mealTypeID,
	)
	p, err := scanWeekly(row.Scan)
	if err != nil {
		return nil, storageErr("get weekly preference", err)
	}
	return p, nil
}

// ListWeeklyPreferences returns every stored preference row.
func (r *SQLiteRepo) ListWeeklyPreferences(ctx context.Context) ([]domain.WeeklyPreference, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, meal_type_id, monday, tuesday, wednesday, thursday, friday, updated_at
		FROM weekly_preferences
		ORDER BY user_id, meal_type_id`)
	if err != nil {
		return nil, storageErr("list weekly preferences", err)
	}
	defer rows.Close()

	var res []domain.WeeklyPreference
	for rows.Next() {
		p, err := scanWeekly(rows.Scan)
		if err != nil {
			return nil, storageErr("scan weekly preference", err)
		}
		res = append(res, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list weekly preferences", err)
	}
	return res, nil
}

// GetToken returns the verification token for a date or ErrNotFound.
func (r *SQLiteRepo) GetToken(ctx context.Context, date domain.Date) (*domain.VerificationToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT date, token, created_at
		FROM verification_tokens
		WHERE date = ?`,
		date.String(),
	)
	t, err := scanToken(row.Scan)
	if err != nil {
		return nil, storageErr("get token", err)
	}
	return t, nil
}

// InsertToken stores a freshly minted token for a date.
func (r *SQLiteRepo) InsertToken(ctx context.Context, t *domain.VerificationToken) error {
	if t == nil {
		return errors.New("nil token")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verification_tokens (date, token, created_at)
		VALUES (?, ?, ?)`,
		t.Date.String(), t.Token, t.CreatedAt.UTC().Unix(),
	)
	if err != nil {
		return storageErr("insert token", err)
	}
	return nil
}

// ReplaceToken atomically swaps the token for a date in one transaction:
// concurrent resolves see either the old or the new token, never neither
// and never both.
func (r *SQLiteRepo) ReplaceToken(ctx context.Context, t *domain.VerificationToken) error {
	if t == nil {
		return errors.New("nil token")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("replace token", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE date = ?`, t.Date.String()); err != nil {
		_ = tx.Rollback()
		return storageErr("replace token: delete", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO verification_tokens (date, token, created_at)
		VALUES (?, ?, ?)`,
		t.Date.String(), t.Token, t.CreatedAt.UTC().Unix()); err != nil {
		_ = tx.Rollback()
		return storageErr("replace token: insert", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("replace token: commit", err)
	}
	return nil
}
