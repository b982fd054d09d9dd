package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpilot/backend/internal/domain"
)

// GoalRepository handles database operations for goals.
type GoalRepository struct {
	db *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, user_id, title, description, status, target_date, created_at, updated_at`

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var g domain.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Status,
		&g.TargetDate, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}
	return &g, nil
}

// Create inserts a new goal.
func (r *GoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, title, description, status, target_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, g.ID, g.UserID, g.Title, g.Description, g.Status, g.TargetDate)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// FindByID returns a goal owned by the given user, or nil.
func (r *GoalRepository) FindByID(ctx context.Context, userID, id string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`
	return scanGoal(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUser returns all goals for a user, newest first.
func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []*domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// ListOpenByUser returns the user's open goals (recommendation context).
func (r *GoalRepository) ListOpenByUser(ctx context.Context, userID string, limit int) ([]*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals
		WHERE user_id = $1 AND status = 'open' ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list open goals: %w", err)
	}
	defer rows.Close()

	goals := []*domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// Update rewrites a goal's mutable fields, scoped to its owner.
func (r *GoalRepository) Update(ctx context.Context, g *domain.Goal) (bool, error) {
	query := `
		UPDATE goals SET title = $3, description = $4, status = $5, target_date = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query, g.ID, g.UserID, g.Title, g.Description, g.Status, g.TargetDate)
	if err != nil {
		return false, fmt.Errorf("failed to update goal: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a goal, scoped to its owner.
func (r *GoalRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete goal: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
