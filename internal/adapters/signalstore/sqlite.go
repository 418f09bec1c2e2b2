package signalstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite persists the signal log in a SQLite database. The log is
// append-only; the schema carries no update path.
type SQLite struct {
	sqlDB *sql.DB
}

const signalSchema = `
CREATE TABLE IF NOT EXISTS signals (
  id           TEXT PRIMARY KEY,
  venue_id     TEXT NOT NULL,
  user_id      TEXT NOT NULL,
  type         TEXT NOT NULL,
  ts_ms        INTEGER NOT NULL,
  verification TEXT
);
CREATE INDEX IF NOT EXISTS idx_signals_user_type_ts ON signals (user_id, type, ts_ms DESC);
CREATE INDEX IF NOT EXISTS idx_signals_venue_ts ON signals (venue_id, ts_ms DESC);
`

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens a SQLite signal log and creates the schema if needed.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(signalSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append writes one signal inside a transaction.
func (s *SQLite) Append(ctx context.Context, sig model.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sig.ID == "" || sig.VenueID == "" || sig.UserID == "" || !sig.Type.Valid() {
		return ErrInvalidSignal
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var verification sql.NullString
	if sig.Verification != "" {
		verification = sql.NullString{String: string(sig.Verification), Valid: true}
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO signals (id, venue_id, user_id, type, ts_ms, verification)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sig.ID,
		sig.VenueID,
		sig.UserID,
		string(sig.Type),
		toMillis(sig.Timestamp),
		verification,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateSignal
		}
		return fmt.Errorf("insert signal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// RecentByUser returns the user's most recent signal of type t, or nil.
func (s *SQLite) RecentByUser(ctx context.Context, userID string, t model.SignalType) (*model.Signal, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, venue_id, user_id, type, ts_ms, verification
		 FROM signals
		 WHERE user_id = ? AND type = ?
		 ORDER BY ts_ms DESC
		 LIMIT 1`,
		userID, string(t),
	)
	return scanSignal(row)
}

// RecentByUserAndVenue returns the user's most recent signal of type t at
// venueID, or nil.
func (s *SQLite) RecentByUserAndVenue(ctx context.Context, userID, venueID string, t model.SignalType) (*model.Signal, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, venue_id, user_id, type, ts_ms, verification
		 FROM signals
		 WHERE user_id = ? AND venue_id = ? AND type = ?
		 ORDER BY ts_ms DESC
		 LIMIT 1`,
		userID, venueID, string(t),
	)
	return scanSignal(row)
}

// CountByUserSince counts the user's signals of type t at or after since.
func (s *SQLite) CountByUserSince(ctx context.Context, userID string, t model.SignalType, since time.Time) (int, error) {
	var count int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM signals WHERE user_id = ? AND type = ? AND ts_ms >= ?`,
		userID, string(t), toMillis(since),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count signals: %w", err)
	}
	return count, nil
}

// ByVenue returns all signals for a venue ordered by timestamp.
func (s *SQLite) ByVenue(ctx context.Context, venueID string) ([]model.Signal, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, venue_id, user_id, type, ts_ms, verification
		 FROM signals
		 WHERE venue_id = ?
		 ORDER BY ts_ms ASC`,
		venueID,
	)
	if err != nil {
		return nil, fmt.Errorf("query venue signals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Signal
	for rows.Next() {
		var (
			sig          model.Signal
			typ          string
			tsMs         int64
			verification sql.NullString
		)
		if err := rows.Scan(&sig.ID, &sig.VenueID, &sig.UserID, &typ, &tsMs, &verification); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Type = model.SignalType(typ)
		sig.Timestamp = fromMillis(tsMs)
		if verification.Valid {
			sig.Verification = model.VerificationMethod(verification.String)
		}
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return out, nil
}

func scanSignal(row *sql.Row) (*model.Signal, error) {
	var (
		sig          model.Signal
		typ          string
		tsMs         int64
		verification sql.NullString
	)
	err := row.Scan(&sig.ID, &sig.VenueID, &sig.UserID, &typ, &tsMs, &verification)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan signal: %w", err)
	}
	sig.Type = model.SignalType(typ)
	sig.Timestamp = fromMillis(tsMs)
	if verification.Valid {
		sig.Verification = model.VerificationMethod(verification.String)
	}
	return &sig, nil
}
