package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names registered with database/sql.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverCgo     = "sqlite3" // github.com/mattn/go-sqlite3, requires cgo
)

// SQLiteStorage implements ledger.Storage on SQLite through either driver.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, applies PRAGMAs and creates the
// schema if needed.
func NewSQLiteStorage(cfg config.SQLiteConfig) (*SQLiteStorage, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.Driver != DriverModernc && cfg.Driver != DriverCgo {
		return nil, ledger.NewStorageError("sqlite", "open", fmt.Errorf("unknown driver %q", cfg.Driver))
	}

	logger := slog.Default().With("component", "ledger.storage.sqlite")

	if dir := filepath.Dir(cfg.Path); cfg.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ledger.NewStorageError("sqlite", "mkdir", err)
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "open", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return ledger.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return ledger.NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return ledger.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return ledger.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ledger.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return ledger.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	s.logger.Debug("schema version verified", "version", version.Int64)
	return nil
}

// Store inserts a record.
func (s *SQLiteStorage) Store(ctx context.Context, r *ledger.Record) error {
	_, err := s.db.ExecContext(ctx, insertRecord,
		r.ID, r.RequestID,
		r.RequestTime.UnixNano(), r.RecordedTime.UnixNano(),
		r.Route, r.Method, r.RemoteAddr, r.ClientID, r.MessageID,
		r.RangeStart, r.RangeEnd, r.TotalSize,
		r.Status, r.BytesSent, r.Strategy, r.Outcome, r.Duration.Milliseconds(), r.Error,
	)
	if err != nil {
		return ledger.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns matching records.
func (s *SQLiteStorage) Query(ctx context.Context, query *ledger.Query) ([]*ledger.Record, error) {
	stmt := selectColumns
	where, args := buildWhereClause(query)
	if where != "" {
		stmt += " WHERE " + where
	}

	sortBy := "request_time"
	switch query.SortBy {
	case "bytes_sent":
		sortBy = "bytes_sent"
	case "duration":
		sortBy = "duration_ms"
	}
	sortOrder := "DESC"
	if query.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	stmt += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	// SQLite requires LIMIT when OFFSET is present; -1 means no limit.
	limit := query.Limit
	if limit <= 0 {
		limit = -1
	}
	stmt += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		stmt += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := make([]*ledger.Record, 0)
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, ledger.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *ledger.Query) (int64, error) {
	stmt := "SELECT COUNT(*) FROM playback"
	where, args := buildWhereClause(query)
	if where != "" {
		stmt += " WHERE " + where
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, ledger.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// Delete removes matching records.
func (s *SQLiteStorage) Delete(ctx context.Context, query *ledger.Query) (int64, error) {
	stmt := "DELETE FROM playback"
	where, args := buildWhereClause(query)
	if where != "" {
		stmt += " WHERE " + where
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "delete", err)
	}

	s.logger.Debug("records deleted", "count", n)
	return n, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return ledger.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause returns the WHERE clause (without the keyword) and its
// arguments.
func buildWhereClause(query *ledger.Query) (string, []any) {
	var conds []string
	var args []any

	if query.StartTime != nil {
		conds = append(conds, "request_time >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conds = append(conds, "request_time <= ?")
		args = append(args, query.EndTime.UnixNano())
	}
	if query.Route != "" {
		conds = append(conds, "route = ?")
		args = append(args, query.Route)
	}
	if query.ClientID != nil {
		conds = append(conds, "client_id = ?")
		args = append(args, *query.ClientID)
	}
	if query.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, query.Outcome)
	}
	if query.Status != 0 {
		conds = append(conds, "status = ?")
		args = append(args, query.Status)
	}

	return strings.Join(conds, " AND "), args
}

func scanRow(rows *sql.Rows) (*ledger.Record, error) {
	var (
		r                         ledger.Record
		requestTime, recordedTime int64
		remoteAddr, strategy, msg sql.NullString
		durationMs                int64
	)

	err := rows.Scan(
		&r.ID, &r.RequestID, &requestTime, &recordedTime,
		&r.Route, &r.Method, &remoteAddr, &r.ClientID, &r.MessageID,
		&r.RangeStart, &r.RangeEnd, &r.TotalSize,
		&r.Status, &r.BytesSent, &strategy, &r.Outcome, &durationMs, &msg,
	)
	if err != nil {
		return nil, err
	}

	r.RequestTime = time.Unix(0, requestTime)
	r.RecordedTime = time.Unix(0, recordedTime)
	r.RemoteAddr = remoteAddr.String
	r.Strategy = strategy.String
	r.Error = msg.String
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return &r, nil
}
