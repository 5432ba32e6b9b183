// internal/store/assessments.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"venture-risk-workers/internal/models"
)

var (
	ErrInsertFailed = errors.New("ASSESSMENT_INSERT_FAILED")
	ErrQueryFailed  = errors.New("ASSESSMENT_QUERY_FAILED")
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id           UUID PRIMARY KEY,
	user_id      TEXT        NOT NULL,
	industry     TEXT        NOT NULL DEFAULT '',
	answers      JSONB       NOT NULL,
	risk_profile JSONB       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_user_created ON assessments (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_industry ON assessments (industry);`

const selectColumns = `id, user_id, answers, risk_profile, created_at`

// AssessmentStore is the append-only Postgres record store. Records are
// never updated or deleted here.
type AssessmentStore struct {
	db *sql.DB
}

func NewAssessmentStore(db *sql.DB) *AssessmentStore {
	return &AssessmentStore{db: db}
}

func (s *AssessmentStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create assessments schema: %w", err)
	}
	return nil
}

// Append inserts a single record. ID and CreatedAt are assigned when empty.
func (s *AssessmentStore) Append(ctx context.Context, rec *models.AssessmentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("%w: marshal answers: %v", ErrInsertFailed, err)
	}
	profileJSON, err := json.Marshal(rec.RiskProfile)
	if err != nil {
		return fmt.Errorf("%w: marshal risk profile: %v", ErrInsertFailed, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, user_id, industry, answers, risk_profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID,
		rec.UserID,
		rec.Answers.Industry(),
		answersJSON,
		profileJSON,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return nil
}

// Latest returns the user's most recent record, or nil when there is none.
func (s *AssessmentStore) Latest(ctx context.Context, userID string) (*models.AssessmentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, userID)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: latest for user: %v", ErrQueryFailed, err)
	}
	return rec, nil
}

// ListByUser returns the user's records newest first. limit <= 0 means all.
func (s *AssessmentStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.AssessmentRecord, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM assessments
		WHERE user_id = $1
		ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list for user: %v", ErrQueryFailed, err)
	}
	return collect(rows)
}

// ByIndustry returns every record tagged with the industry.
func (s *AssessmentStore) ByIndustry(ctx context.Context, industry string) ([]models.AssessmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM assessments
		WHERE industry = $1`, industry)
	if err != nil {
		return nil, fmt.Errorf("%w: records by industry: %v", ErrQueryFailed, err)
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner) (*models.AssessmentRecord, error) {
	var (
		rec                    models.AssessmentRecord
		answersRaw, profileRaw []byte
	)
	if err := sc.Scan(&rec.ID, &rec.UserID, &answersRaw, &profileRaw, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersRaw, &rec.Answers); err != nil {
		return nil, fmt.Errorf("decode answers of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(profileRaw, &rec.RiskProfile); err != nil {
		return nil, fmt.Errorf("decode risk profile of %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func collect(rows *sql.Rows) ([]models.AssessmentRecord, error) {
	defer rows.Close()

	var out []models.AssessmentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return out, nil
}
