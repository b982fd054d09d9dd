package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpilot/backend/internal/domain"
)

// ContactRepository handles database operations for networking contacts.
type ContactRepository struct {
	db *pgxpool.Pool
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, user_id, name, company, title, email, notes, created_at, updated_at`

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Company, &c.Title,
		&c.Email, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	return &c, nil
}

// Create inserts a new contact.
func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := `
		INSERT INTO contacts (id, user_id, name, company, title, email, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.UserID, c.Name, c.Company, c.Title, c.Email, c.Notes)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// FindByID returns a contact owned by the given user, or nil.
func (r *ContactRepository) FindByID(ctx context.Context, userID, id string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`
	return scanContact(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUser returns contacts for a user, newest first, optionally limited.
func (r *ContactRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*domain.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// Update rewrites a contact's mutable fields, scoped to its owner.
func (r *ContactRepository) Update(ctx context.Context, c *domain.Contact) (bool, error) {
	query := `
		UPDATE contacts SET name = $3, company = $4, title = $5, email = $6, notes = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query, c.ID, c.UserID, c.Name, c.Company, c.Title, c.Email, c.Notes)
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a contact, scoped to its owner.
func (r *ContactRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
