package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"golf-fortune-engine/internal/models"
)

// Schema creates the fortune_records table.
const Schema = `
CREATE TABLE IF NOT EXISTS fortune_records (
	id            BIGSERIAL PRIMARY KEY,
	request_id    UUID        NOT NULL UNIQUE,
	name          TEXT        NOT NULL,
	phone_number  TEXT        NOT NULL DEFAULT '',
	email         TEXT        NOT NULL DEFAULT '',
	birth_date    TEXT        NOT NULL,
	birth_time    TEXT        NOT NULL,
	gender        TEXT        NOT NULL,
	handicap      INTEGER     NOT NULL,
	country_club  TEXT        NOT NULL DEFAULT '',
	element       TEXT        NOT NULL,
	source        TEXT        NOT NULL,
	user_input    JSONB       NOT NULL,
	analysis      JSONB       NOT NULL,
	fortune       JSONB       NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fortune_records_created_at ON fortune_records (created_at);
CREATE INDEX IF NOT EXISTS idx_fortune_records_source ON fortune_records (source);
`

// ErrRecordNotFound is returned when no record matches a request ID.
var ErrRecordNotFound = errors.New("fortune record not found")

// RecordRepository handles fortune_records operations.
type RecordRepository struct {
	db *DB
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Name identifies the sink in logs.
func (r *RecordRepository) Name() string {
	return "postgres"
}

// EnsureSchema creates the table and indexes if they do not exist.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const insertRecord = `
	INSERT INTO fortune_records (
		request_id, name, phone_number, email, birth_date, birth_time, gender,
		handicap, country_club, element, source, user_input, analysis, fortune, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (request_id) DO NOTHING`

func recordArgs(record *models.FortuneRecord) ([]any, error) {
	userJSON, err := json.Marshal(record.User)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}
	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	fortuneJSON, err := json.Marshal(record.Fortune)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fortune: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	u := record.User
	return []any{
		record.RequestID,
		u.Name,
		u.PhoneNumber,
		u.Email,
		u.BirthDate,
		u.BirthTime,
		u.Gender,
		u.Handicap,
		u.CountryClub,
		string(record.Analysis.Element),
		string(record.Fortune.Source),
		userJSON,
		analysisJSON,
		fortuneJSON,
		createdAt.UTC(),
	}, nil
}

// Insert stores a record. Inserting the same request ID twice is a no-op.
func (r *RecordRepository) Insert(ctx context.Context, record *models.FortuneRecord) error {
	args, err := recordArgs(record)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, insertRecord, args...); err != nil {
		return fmt.Errorf("failed to insert fortune record: %w", err)
	}
	return nil
}

// Save implements the recorder sink interface.
func (r *RecordRepository) Save(ctx context.Context, record *models.FortuneRecord) error {
	if err := r.Insert(ctx, record); err != nil {
		return fmt.Errorf("%w: %w", models.ErrPersistence, err)
	}
	return nil
}

// BulkInsert stores records in one transaction using a pgx batch.
func (r *RecordRepository) BulkInsert(ctx context.Context, records []*models.FortuneRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, record := range records {
			args, err := recordArgs(record)
			if err != nil {
				return err
			}
			batch.Queue(insertRecord, args...)
		}

		results := tx.SendBatch(ctx, batch)
		for range records {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("failed to insert fortune record: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// GetByRequestID loads a record by its request ID.
func (r *RecordRepository) GetByRequestID(ctx context.Context, requestID string) (*models.FortuneRecord, error) {
	query := `
		SELECT request_id::text, user_input, analysis, fortune, created_at
		FROM fortune_records
		WHERE request_id = $1`

	var (
		record                 models.FortuneRecord
		userJSON, analysisJSON []byte
		fortuneJSON            []byte
	)
	err := r.db.QueryRowContext(ctx, query, requestID).Scan(
		&record.RequestID, &userJSON, &analysisJSON, &fortuneJSON, &record.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fortune record: %w", err)
	}

	if err := json.Unmarshal(userJSON, &record.User); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if err := json.Unmarshal(analysisJSON, &record.Analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	if err := json.Unmarshal(fortuneJSON, &record.Fortune); err != nil {
		return nil, fmt.Errorf("failed to decode fortune: %w", err)
	}

	return &record, nil
}

// CountBySource returns the number of records per fortune source.
func (r *RecordRepository) CountBySource(ctx context.Context) (map[models.FortuneSource]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM fortune_records GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.FortuneSource]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.FortuneSource(source)] = count
	}

	return counts, rows.Err()
}
