package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WebhookEventRepository is the idempotency ledger for provider deliveries.
type WebhookEventRepository struct {
	db *pgxpool.Pool
}

// NewWebhookEventRepository creates a new WebhookEventRepository.
func NewWebhookEventRepository(db *pgxpool.Pool) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Seen reports whether an event id has already been recorded. Deliveries of
// a seen event are replays and must not be re-applied.
func (r *WebhookEventRepository) Seen(ctx context.Context, provider, eventID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM webhook_events WHERE provider = $1 AND event_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, provider, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}
	return exists, nil
}

// Record marks an event id as processed. Called only after the event has
// been applied, so a failed delivery stays retryable. Concurrent duplicate
// deliveries land on the conflict clause and are harmless.
func (r *WebhookEventRepository) Record(ctx context.Context, provider, eventID, eventType string) error {
	query := `
		INSERT INTO webhook_events (provider, event_id, event_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, event_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, provider, eventID, eventType); err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}
