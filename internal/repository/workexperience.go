package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpilot/backend/internal/domain"
)

// WorkExperienceRepository handles database operations for work history.
type WorkExperienceRepository struct {
	db *pgxpool.Pool
}

// NewWorkExperienceRepository creates a new WorkExperienceRepository.
func NewWorkExperienceRepository(db *pgxpool.Pool) *WorkExperienceRepository {
	return &WorkExperienceRepository{db: db}
}

const workColumns = `id, user_id, company, title, start_date, end_date, description, created_at, updated_at`

func scanWork(row pgx.Row) (*domain.WorkExperience, error) {
	var w domain.WorkExperience
	err := row.Scan(&w.ID, &w.UserID, &w.Company, &w.Title, &w.StartDate,
		&w.EndDate, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan work experience: %w", err)
	}
	return &w, nil
}

// Create inserts a new work entry.
func (r *WorkExperienceRepository) Create(ctx context.Context, w *domain.WorkExperience) error {
	query := `
		INSERT INTO work_experiences (id, user_id, company, title, start_date, end_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, w.ID, w.UserID, w.Company, w.Title, w.StartDate, w.EndDate, w.Description)
	if err != nil {
		return fmt.Errorf("failed to create work experience: %w", err)
	}
	return nil
}

// FindByID returns a work entry owned by the given user, or nil.
func (r *WorkExperienceRepository) FindByID(ctx context.Context, userID, id string) (*domain.WorkExperience, error) {
	query := `SELECT ` + workColumns + ` FROM work_experiences WHERE id = $1 AND user_id = $2`
	return scanWork(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUser returns work entries for a user, most recent start first.
func (r *WorkExperienceRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.WorkExperience, error) {
	query := `SELECT ` + workColumns + ` FROM work_experiences WHERE user_id = $1 ORDER BY start_date DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work experiences: %w", err)
	}
	defer rows.Close()

	entries := []*domain.WorkExperience{}
	for rows.Next() {
		w, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, w)
	}
	return entries, nil
}

// Update rewrites a work entry's mutable fields, scoped to its owner.
func (r *WorkExperienceRepository) Update(ctx context.Context, w *domain.WorkExperience) (bool, error) {
	query := `
		UPDATE work_experiences SET company = $3, title = $4, start_date = $5, end_date = $6, description = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query, w.ID, w.UserID, w.Company, w.Title, w.StartDate, w.EndDate, w.Description)
	if err != nil {
		return false, fmt.Errorf("failed to update work experience: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a work entry, scoped to its owner.
func (r *WorkExperienceRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM work_experiences WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete work experience: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
