package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	settingsKeyCurrency = "currency"
	settingsKeyDarkMode = "dark_mode"
	settingsKeyPINHash  = "pin_hash"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

// withTx runs fn inside a database transaction, rolling back on error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", core.ErrStoreUnavailable, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertTransactions(ctx context.Context, tx *sql.Tx, txs []core.Transaction, keepIDs bool) ([]core.Transaction, error) {
	const insertNew = `INSERT INTO transactions (kind, amount_cents, category, occurred_at, notes) VALUES (?, ?, ?, ?, ?)`
	const insertWithID = `INSERT INTO transactions (id, kind, amount_cents, category, occurred_at, notes) VALUES (?, ?, ?, ?, ?, ?)`

	out := make([]core.Transaction, len(txs))
	for i, t := range txs {
		var (
			res sql.Result
			err error
		)
		if keepIDs && t.ID > 0 {
			res, err = tx.ExecContext(ctx, insertWithID, t.ID, string(t.Kind), t.Amount.Cents, t.Category, formatTime(t.Date), t.Notes)
		} else {
			res, err = tx.ExecContext(ctx, insertNew, string(t.Kind), t.Amount.Cents, t.Category, formatTime(t.Date), t.Notes)
		}
		if err != nil {
			return nil, fmt.Errorf("insert transaction %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		t.ID = id
		out[i] = t
	}
	return out, nil
}

func (r *SQLiteRepository) CreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	var created []core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = insertTransactions(ctx, tx, txs, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", len(created))
	return created, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		kind, when string
	)
	if err := row.Scan(&t.ID, &kind, &t.Amount.Cents, &t.Category, &when, &t.Notes); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.Kind(kind)
	date, err := parseTime(when)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = date
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount_cents, category, occurred_at, notes FROM transactions ORDER BY occurred_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, amount_cents, category, occurred_at, notes FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET kind = ?, amount_cents = ?, category = ?, occurred_at = ?, notes = ? WHERE id = ?`,
		string(t.Kind), t.Amount.Cents, t.Category, formatTime(t.Date), t.Notes, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return expectOneRow(res, "transaction", t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return expectOneRow(res, "transaction", id)
}

func (r *SQLiteRepository) ClearTransactions(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, txs []core.Transaction) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		_, err := insertTransactions(ctx, tx, txs, true)
		return err
	})
	if err != nil {
		return fmt.Errorf("replace transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions replaced", "count", len(txs))
	return nil
}

func expectOneRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, core.ErrNotFound)
	}
	return nil
}

func nullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func scanRecurring(row rowScanner) (core.RecurringDefinition, error) {
	var (
		d           core.RecurringDefinition
		start, freq string
		last        sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Amount.Cents, &start, &freq, &last); err != nil {
		return core.RecurringDefinition{}, err
	}
	d.Frequency = core.Frequency(freq)
	var err error
	if d.StartDate, err = parseTime(start); err != nil {
		return core.RecurringDefinition{}, err
	}
	if last.Valid {
		if d.LastPosted, err = parseTime(last.String); err != nil {
			return core.RecurringDefinition{}, err
		}
	}
	return d, nil
}

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, d core.RecurringDefinition) (core.RecurringDefinition, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_definitions (name, amount_cents, start_date, frequency, last_posted) VALUES (?, ?, ?, ?, ?)`,
		d.Name, d.Amount.Cents, formatTime(d.StartDate), string(d.Frequency), nullableTime(d.LastPosted))
	if err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("create recurring definition: %w", err)
	}
	if d.ID, err = res.LastInsertId(); err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Recurring definition saved to SQLite",
		"id", d.ID,
		"name", d.Name,
		"amount_cents", d.Amount.Cents,
		"frequency", d.Frequency)
	return d, nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringDefinition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount_cents, start_date, frequency, last_posted FROM recurring_definitions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring definitions: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringDefinition
	for rows.Next() {
		d, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring definition: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring definitions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, id int64) (core.RecurringDefinition, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, amount_cents, start_date, frequency, last_posted FROM recurring_definitions WHERE id = ?`, id)
	d, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringDefinition{}, fmt.Errorf("recurring definition %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("get recurring definition %d: %w", id, err)
	}
	return d, nil
}

func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, d core.RecurringDefinition) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_definitions
		 SET name = ?, amount_cents = ?, start_date = ?, frequency = ?, last_posted = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		d.Name, d.Amount.Cents, formatTime(d.StartDate), string(d.Frequency), nullableTime(d.LastPosted), d.ID)
	if err != nil {
		return fmt.Errorf("update recurring definition %d: %w", d.ID, err)
	}
	return expectOneRow(res, "recurring definition", d.ID)
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring definition %d: %w", id, err)
	}
	return expectOneRow(res, "recurring definition", id)
}

func (r *SQLiteRepository) PostRecurring(ctx context.Context, id int64, expectedLastPosted time.Time, postings []core.Transaction, newLastPosted time.Time) ([]core.Transaction, error) {
	var created []core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var res sql.Result
		var err error
		// The optimistic check rides on the UPDATE so it holds the write lock
		// before any posting is inserted.
		if expectedLastPosted.IsZero() {
			res, err = tx.ExecContext(ctx,
				`UPDATE recurring_definitions SET last_posted = ?, updated_at = CURRENT_TIMESTAMP
				 WHERE id = ? AND last_posted IS NULL`,
				nullableTime(newLastPosted), id)
		} else {
			res, err = tx.ExecContext(ctx,
				`UPDATE recurring_definitions SET last_posted = ?, updated_at = CURRENT_TIMESTAMP
				 WHERE id = ? AND last_posted = ?`,
				nullableTime(newLastPosted), id, formatTime(expectedLastPosted))
		}
		if err != nil {
			return fmt.Errorf("update last posted: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			var exists int
			if err := tx.QueryRowContext(ctx, `SELECT 1 FROM recurring_definitions WHERE id = ?`, id).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("recurring definition %d: %w", id, core.ErrNotFound)
			}
			return fmt.Errorf("recurring definition %d: %w", id, core.ErrConflict)
		}
		created, err = insertTransactions(ctx, tx, postings, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("post recurring: %w", err)
	}
	return created, nil
}

func (r *SQLiteRepository) LoadSettings(ctx context.Context) (core.Settings, error) {
	s := core.DefaultSettings()

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return s, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return s, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case settingsKeyCurrency:
			s.Currency = value
		case settingsKeyDarkMode:
			s.DarkMode, _ = strconv.ParseBool(value)
		case settingsKeyPINHash:
			s.PINHash = value
		}
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("iterate settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	values := map[string]string{
		settingsKeyCurrency: s.Currency,
		settingsKeyDarkMode: strconv.FormatBool(s.DarkMode),
		settingsKeyPINHash:  s.PINHash,
	}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for k, v := range values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
				k, v); err != nil {
				return fmt.Errorf("save setting %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
