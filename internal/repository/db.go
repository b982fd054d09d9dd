package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id                     TEXT PRIMARY KEY,
			subject                TEXT NOT NULL UNIQUE,
			email                  TEXT NOT NULL,
			name                   TEXT NOT NULL DEFAULT '',
			username               TEXT NOT NULL UNIQUE,
			role                   TEXT NOT NULL DEFAULT 'regular',
			onboarding_completed   BOOLEAN NOT NULL DEFAULT FALSE,
			university_id          BIGINT,
			plan                   TEXT NOT NULL DEFAULT 'free',
			subscription_status    TEXT NOT NULL DEFAULT 'inactive',
			billing_cycle          TEXT NOT NULL DEFAULT '',
			stripe_customer_id     TEXT NOT NULL DEFAULT '',
			stripe_subscription_id TEXT NOT NULL DEFAULT '',
			created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_stripe_subscription ON users(stripe_subscription_id);
		CREATE INDEX IF NOT EXISTS idx_users_stripe_customer ON users(stripe_customer_id);

		CREATE TABLE IF NOT EXISTS goals (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'open',
			target_date DATE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);

		CREATE TABLE IF NOT EXISTS applications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			company    TEXT NOT NULL,
			position   TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'saved',
			applied_at DATE,
			notes      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_applications_user_id ON applications(user_id);

		CREATE TABLE IF NOT EXISTS work_experiences (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			company     TEXT NOT NULL,
			title       TEXT NOT NULL,
			start_date  DATE NOT NULL,
			end_date    DATE,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_work_experiences_user_id ON work_experiences(user_id);

		CREATE TABLE IF NOT EXISTS contacts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			name       TEXT NOT NULL,
			company    TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			notes      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_contacts_user_id ON contacts(user_id);

		CREATE TABLE IF NOT EXISTS universities (
			id            BIGSERIAL PRIMARY KEY,
			name          TEXT NOT NULL,
			domain        TEXT NOT NULL DEFAULT '',
			license_plan  TEXT NOT NULL DEFAULT 'trial',
			license_seats INT NOT NULL DEFAULT 0,
			license_start DATE,
			license_end   DATE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS recommendations (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			text       TEXT NOT NULL,
			rec_type   TEXT NOT NULL DEFAULT 'generated',
			completed  BOOLEAN NOT NULL DEFAULT FALSE,
			priority   INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_recommendations_user_created ON recommendations(user_id, created_at);

		CREATE TABLE IF NOT EXISTS webhook_events (
			provider    TEXT NOT NULL,
			event_id    TEXT NOT NULL,
			event_type  TEXT NOT NULL,
			received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (provider, event_id)
		);

		CREATE TABLE IF NOT EXISTS app_settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
