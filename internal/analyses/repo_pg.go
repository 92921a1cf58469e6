package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectAnalysisColumns = `id, resume_text, job_description, overall_score, feedback, created_at`

// Create inserts a new analysis and returns it with the database-assigned creation time.
func (r *PGRepo) Create(ctx context.Context, in NewAnalysis) (Analysis, error) {
	const query = `
INSERT INTO resume_analyses (id, resume_text, job_description, overall_score, feedback)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`

	feedback := in.Feedback.normalized()
	payload, err := json.Marshal(feedback)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal feedback: %w", err)
	}

	analysis := Analysis{
		ID:             uuid.NewString(),
		ResumeText:     in.ResumeText,
		JobDescription: cloneStringPtr(in.JobDescription),
		OverallScore:   clampInt(in.OverallScore),
		Feedback:       feedback,
	}
	err = r.DB.QueryRowContext(ctx, query,
		analysis.ID,
		analysis.ResumeText,
		nullableString(analysis.JobDescription),
		analysis.OverallScore,
		payload,
	).Scan(&analysis.CreatedAt)
	if err != nil {
		return Analysis{}, fmt.Errorf("insert analysis: %w", err)
	}
	analysis.CreatedAt = analysis.CreatedAt.UTC()
	return analysis, nil
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	// Non-UUID ids cannot exist; skip the cast error Postgres would raise.
	if _, err := uuid.Parse(analysisID); err != nil {
		return Analysis{}, ErrNotFound
	}
	query := `SELECT ` + selectAnalysisColumns + `
FROM resume_analyses
WHERE id = $1
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListRecent lists analyses newest-first.
func (r *PGRepo) ListRecent(ctx context.Context, limit int) ([]Analysis, error) {
	query := `SELECT ` + selectAnalysisColumns + `
FROM resume_analyses
ORDER BY created_at DESC, seq DESC
LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, ClampRecentLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var jobDescription sql.NullString
	var feedback []byte
	if err := row.Scan(&a.ID, &a.ResumeText, &jobDescription, &a.OverallScore, &feedback, &a.CreatedAt); err != nil {
		return Analysis{}, err
	}
	if jobDescription.Valid {
		jd := jobDescription.String
		a.JobDescription = &jd
	}
	if len(feedback) > 0 {
		if err := json.Unmarshal(feedback, &a.Feedback); err != nil {
			return Analysis{}, fmt.Errorf("decode feedback for %s: %w", a.ID, err)
		}
	}
	a.Feedback = a.Feedback.normalized()
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
