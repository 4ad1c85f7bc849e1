package conversion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"mdconv/internal/domain"
	models "mdconv/internal/domain/models/conversion"
	conversionRepo "mdconv/internal/domain/repositories/conversion"
	"mdconv/internal/repository/postgres"
)

// PostgresRecordRepository implements the RecordRepository interface
type PostgresRecordRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRecordRepository creates a new conversion record repository
func NewRecordRepository(config *postgres.RepositoryConfig) conversionRepo.RecordRepository {
	return &PostgresRecordRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append inserts a record; id and created_at come from the database
func (r *PostgresRecordRepository) Append(ctx context.Context, record *models.ConversionRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (filename, original_path, converted_content, status, file_size, conversion_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Conversions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		record.Filename,
		record.OriginalPath,
		record.ConvertedContent,
		record.Status,
		record.FileSize,
		record.ConversionTime,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		if postgres.IsPgUndefinedTableError(err) {
			r.logger.Error("conversions table missing", "table", r.tables.Conversions)
		}
		return fmt.Errorf("append conversion record: %w", err)
	}

	return nil
}

// GetByID retrieves a record by ID
func (r *PostgresRecordRepository) GetByID(ctx context.Context, id int64) (*models.ConversionRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, original_path, converted_content, status, file_size, conversion_time, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Conversions)

	var record models.ConversionRecord
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.Filename,
		&record.OriginalPath,
		&record.ConvertedContent,
		&record.Status,
		&record.FileSize,
		&record.ConversionTime,
		&record.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("conversion %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get conversion record: %w", err)
	}

	return &record, nil
}

// List retrieves record summaries ordered by created_at DESC
func (r *PostgresRecordRepository) List(ctx context.Context, offset, limit int) ([]models.ConversionSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, status, file_size, conversion_time, created_at
		FROM %s
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`, r.tables.Conversions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversion records: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ConversionSummary, 0, limit)
	for rows.Next() {
		var s models.ConversionSummary
		err := rows.Scan(
			&s.ID,
			&s.Filename,
			&s.Status,
			&s.FileSize,
			&s.ConversionTime,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conversion record: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversion records: %w", err)
	}

	return summaries, nil
}

// Ping checks the pool can reach the database
func (r *PostgresRecordRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
