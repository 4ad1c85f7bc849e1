// Package sqlstore is the database/sql record store used for SQLite and MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"mdconv/internal/domain"
	models "mdconv/internal/domain/models/conversion"
)

// Store implements the RecordRepository interface on database/sql.
type Store struct {
	db      *sql.DB
	table   string
	dialect Dialect
	logger  *slog.Logger
}

// Open connects to dsn with the dialect's driver and verifies the connection.
// The caller owns the returned store and must Close it.
func Open(ctx context.Context, dialect Dialect, dsn, table string, logger *slog.Logger) (*Store, error) {
	normalized, err := dialect.DSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Driver, normalized)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Driver, err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Driver, err)
	}

	return New(db, dialect, table, logger), nil
}

// New wraps an already opened database.
func New(db *sql.DB, dialect Dialect, table string, logger *slog.Logger) *Store {
	return &Store{db: db, table: table, dialect: dialect, logger: logger}
}

// EnsureSchema creates the table and index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	s.logger.Debug("schema ensured", "driver", s.dialect.Driver, "table", s.table)
	return nil
}

// Append inserts a record and fills in its ID and CreatedAt.
func (s *Store) Append(ctx context.Context, record *models.ConversionRecord) error {
	createdAt := time.Now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (filename, original_path, converted_content, status, file_size, conversion_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.table)

	res, err := s.db.ExecContext(ctx, query,
		record.Filename,
		record.OriginalPath,
		record.ConvertedContent,
		string(record.Status),
		record.FileSize,
		record.ConversionTime,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("append conversion record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted id: %w", err)
	}

	record.ID = id
	record.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a record by ID.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.ConversionRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, original_path, converted_content, status, file_size, conversion_time, created_at
		FROM %s
		WHERE id = ?
	`, s.table)

	var record models.ConversionRecord
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Filename,
		&record.OriginalPath,
		&record.ConvertedContent,
		&status,
		&record.FileSize,
		&record.ConversionTime,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversion %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get conversion record: %w", err)
	}

	record.Status = models.Status(status)
	return &record, nil
}

// List returns summaries ordered by created_at DESC, id DESC.
func (s *Store) List(ctx context.Context, offset, limit int) ([]models.ConversionSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, status, file_size, conversion_time, created_at
		FROM %s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list conversion records: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ConversionSummary, 0, limit)
	for rows.Next() {
		var summary models.ConversionSummary
		var status string
		if err := rows.Scan(
			&summary.ID,
			&summary.Filename,
			&status,
			&summary.FileSize,
			&summary.ConversionTime,
			&summary.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversion record: %w", err)
		}
		summary.Status = models.Status(status)
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversion records: %w", err)
	}
	return summaries, nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
