package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpilot/backend/internal/domain"
)

// ErrDuplicate reports a unique-constraint violation. Concurrent first
// requests for a never-seen subject race to provision; the loser sees this
// and must re-read instead of failing.
var ErrDuplicate = errors.New("duplicate row")

const userColumns = `id, subject, email, name, username, role, onboarding_completed,
	university_id, plan, subscription_status, billing_cycle,
	stripe_customer_id, stripe_subscription_id, created_at, updated_at`

// UserRepository handles database operations for users.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Subject, &u.Email, &u.Name, &u.Username, &u.Role,
		&u.OnboardingCompleted, &u.UniversityID, &u.Plan, &u.SubscriptionStatus,
		&u.BillingCycle, &u.StripeCustomerID, &u.StripeSubscriptionID,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user. Returns ErrDuplicate on a unique violation
// (subject or username already taken).
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, subject, email, name, username, role, onboarding_completed, plan, subscription_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Subject, u.Email, u.Name, u.Username, u.Role,
		u.OnboardingCompleted, u.Plan, u.SubscriptionStatus,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindBySubject returns the user for an identity-provider subject, or nil.
func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE subject = $1`
	return scanUser(r.db.QueryRow(ctx, query, subject))
}

// FindByID returns a user by ID, or nil.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// FindByStripeSubscription returns the user owning a provider subscription, or nil.
func (r *UserRepository) FindByStripeSubscription(ctx context.Context, subID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_subscription_id = $1`
	return scanUser(r.db.QueryRow(ctx, query, subID))
}

// FindByStripeCustomer returns the user owning a provider customer, or nil.
func (r *UserRepository) FindByStripeCustomer(ctx context.Context, customerID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`
	return scanUser(r.db.QueryRow(ctx, query, customerID))
}

// UpdateProfile updates mutable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, username string) error {
	query := `
		UPDATE users SET name = COALESCE(NULLIF($2, ''), name),
			username = COALESCE(NULLIF($3, ''), username),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, name, username)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// CompleteOnboarding marks the user's onboarding as done.
func (r *UserRepository) CompleteOnboarding(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET onboarding_completed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}

// SetStripeCustomer stores the provider customer reference for a user.
func (r *UserRepository) SetStripeCustomer(ctx context.Context, id, customerID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE id = $1`, id, customerID)
	if err != nil {
		return fmt.Errorf("failed to set stripe customer: %w", err)
	}
	return nil
}

// UpdateSubscription overwrites the billing subset of a user row.
func (r *UserRepository) UpdateSubscription(ctx context.Context, userID string, s domain.SubscriptionState) error {
	query := `
		UPDATE users SET plan = $2, subscription_status = $3, billing_cycle = $4,
			stripe_subscription_id = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, s.Plan, s.Status, s.BillingCycle, s.StripeSubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

// SetSubscriptionStatus updates only the status field (invoice failure path).
func (r *UserRepository) SetSubscriptionStatus(ctx context.Context, userID, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET subscription_status = $2, updated_at = NOW() WHERE id = $1`, userID, status)
	if err != nil {
		return fmt.Errorf("failed to set subscription status: %w", err)
	}
	return nil
}

// ListAll returns all users ordered by creation date.
func (r *UserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// ListByUniversity returns the users attached to a university license.
func (r *UserRepository) ListByUniversity(ctx context.Context, universityID int64) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE university_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, universityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list university users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// AttachToUniversity links a user to a university and grants the admin role.
func (r *UserRepository) AttachToUniversity(ctx context.Context, userID string, universityID int64, role string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET university_id = $2, role = $3, updated_at = NOW() WHERE id = $1`,
		userID, universityID, role)
	if err != nil {
		return fmt.Errorf("failed to attach user to university: %w", err)
	}
	return nil
}

// CountByPlan returns user counts grouped by plan (admin stats).
func (r *UserRepository) CountByPlan(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT plan, COUNT(*) FROM users GROUP BY plan`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var plan string
		var n int
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[plan] = n
	}
	return counts, nil
}
