package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpilot/backend/internal/domain"
)

// UniversityRepository handles database operations for universities.
type UniversityRepository struct {
	db *pgxpool.Pool
}

// NewUniversityRepository creates a new UniversityRepository.
func NewUniversityRepository(db *pgxpool.Pool) *UniversityRepository {
	return &UniversityRepository{db: db}
}

const universityColumns = `id, name, domain, license_plan, license_seats, license_start, license_end, created_at, updated_at`

func scanUniversity(row pgx.Row) (*domain.University, error) {
	var u domain.University
	err := row.Scan(&u.ID, &u.Name, &u.Domain, &u.LicensePlan, &u.LicenseSeats,
		&u.LicenseStart, &u.LicenseEnd, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan university: %w", err)
	}
	return &u, nil
}

// Create inserts a new university and fills in its generated ID.
func (r *UniversityRepository) Create(ctx context.Context, u *domain.University) error {
	query := `
		INSERT INTO universities (name, domain, license_plan, license_seats, license_start, license_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, u.Name, u.Domain, u.LicensePlan, u.LicenseSeats,
		u.LicenseStart, u.LicenseEnd).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create university: %w", err)
	}
	return nil
}

// FindByID returns a university by ID, or nil.
func (r *UniversityRepository) FindByID(ctx context.Context, id int64) (*domain.University, error) {
	query := `SELECT ` + universityColumns + ` FROM universities WHERE id = $1`
	return scanUniversity(r.db.QueryRow(ctx, query, id))
}

// ListAll returns all universities ordered by name.
func (r *UniversityRepository) ListAll(ctx context.Context) ([]*domain.University, error) {
	query := `SELECT ` + universityColumns + ` FROM universities ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list universities: %w", err)
	}
	defer rows.Close()

	out := []*domain.University{}
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Update rewrites a university's mutable fields.
func (r *UniversityRepository) Update(ctx context.Context, u *domain.University) (bool, error) {
	query := `
		UPDATE universities SET name = $2, domain = $3, license_plan = $4,
			license_seats = $5, license_start = $6, license_end = $7, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, u.ID, u.Name, u.Domain, u.LicensePlan,
		u.LicenseSeats, u.LicenseStart, u.LicenseEnd)
	if err != nil {
		return false, fmt.Errorf("failed to update university: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a university.
func (r *UniversityRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM universities WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete university: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
