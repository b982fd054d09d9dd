package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpilot/backend/internal/domain"
)

// ApplicationRepository handles database operations for job applications.
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, user_id, company, position, status, applied_at, notes, created_at, updated_at`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Position, &a.Status,
		&a.AppliedAt, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &a, nil
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	query := `
		INSERT INTO applications (id, user_id, company, position, status, applied_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.UserID, a.Company, a.Position, a.Status, a.AppliedAt, a.Notes)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// FindByID returns an application owned by the given user, or nil.
func (r *ApplicationRepository) FindByID(ctx context.Context, userID, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 AND user_id = $2`
	return scanApplication(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUser returns applications for a user, newest first, optionally limited.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []*domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, nil
}

// Update rewrites an application's mutable fields, scoped to its owner.
func (r *ApplicationRepository) Update(ctx context.Context, a *domain.Application) (bool, error) {
	query := `
		UPDATE applications SET company = $3, position = $4, status = $5, applied_at = $6, notes = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query, a.ID, a.UserID, a.Company, a.Position, a.Status, a.AppliedAt, a.Notes)
	if err != nil {
		return false, fmt.Errorf("failed to update application: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes an application, scoped to its owner.
func (r *ApplicationRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
