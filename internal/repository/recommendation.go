package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpilot/backend/internal/domain"
)

// ErrMissingRelation reports that the recommendations table does not exist
// yet. The generator treats this as a soft failure and serves from memory.
var ErrMissingRelation = errors.New("relation does not exist")

// RecommendationRepository handles database operations for recommendations.
type RecommendationRepository struct {
	db *pgxpool.Pool
}

// NewRecommendationRepository creates a new RecommendationRepository.
func NewRecommendationRepository(db *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

const recommendationColumns = `id, user_id, text, rec_type, completed, priority, created_at`

func scanRecommendation(row pgx.Row) (*domain.Recommendation, error) {
	var rec domain.Recommendation
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Text, &rec.Type, &rec.Completed,
		&rec.Priority, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan recommendation: %w", err)
	}
	return &rec, nil
}

func wrapRecErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" { // undefined_table
		return ErrMissingRelation
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// ListSince returns recommendations created at or after the cutoff, by priority.
func (r *RecommendationRepository) ListSince(ctx context.Context, userID string, cutoff time.Time) ([]*domain.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations
		WHERE user_id = $1 AND created_at >= $2 ORDER BY priority, created_at`
	rows, err := r.db.Query(ctx, query, userID, cutoff)
	if err != nil {
		return nil, wrapRecErr("list recommendations", err)
	}
	defer rows.Close()

	recs := []*domain.Recommendation{}
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// CreateBatch persists a generated set.
func (r *RecommendationRepository) CreateBatch(ctx context.Context, recs []*domain.Recommendation) error {
	for _, rec := range recs {
		query := `
			INSERT INTO recommendations (id, user_id, text, rec_type, completed, priority, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := r.db.Exec(ctx, query, rec.ID, rec.UserID, rec.Text, rec.Type,
			rec.Completed, rec.Priority, rec.CreatedAt)
		if err != nil {
			return wrapRecErr("create recommendation", err)
		}
	}
	return nil
}

// SetCompleted toggles the completion flag, scoped to the owner.
func (r *RecommendationRepository) SetCompleted(ctx context.Context, userID, id string, completed bool) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE recommendations SET completed = $3 WHERE id = $1 AND user_id = $2`,
		id, userID, completed)
	if err != nil {
		return false, wrapRecErr("complete recommendation", err)
	}
	return tag.RowsAffected() > 0, nil
}
