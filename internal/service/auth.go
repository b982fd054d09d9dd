package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/careerpilot/backend/internal/domain"
	"github.com/careerpilot/backend/internal/identity"
	"github.com/careerpilot/backend/internal/repository"
)

// AuthUserStore is the slice of the user repository the auth flow needs.
type AuthUserStore interface {
	FindBySubject(ctx context.Context, subject string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// AuthService verifies bearer credentials and lazily provisions local users.
type AuthService struct {
	verifier identity.TokenVerifier
	users    AuthUserStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(verifier identity.TokenVerifier, users AuthUserStore) *AuthService {
	return &AuthService{verifier: verifier, users: users}
}

// Authenticate resolves an Authorization header to a local user, creating the
// user record on first sight. All credential failures map to 401.
func (s *AuthService) Authenticate(ctx context.Context, authHeader string) (*domain.User, error) {
	token, ok := extractBearerToken(authHeader)
	if !ok {
		return nil, domain.ErrUnauthorized("Authentication required", "Please log in to continue")
	}

	claims, err := s.verifier.Verify(token)
	if err != nil {
		log.Printf("auth failure: token invalid: %v", err)
		return nil, domain.ErrUnauthorized("Authentication required", "Your session has expired, please log in again")
	}

	user, err := s.users.FindBySubject(ctx, claims.Subject)
	if err != nil {
		return nil, domain.ErrInternal("failed to load user", err)
	}
	if user != nil {
		return user, nil
	}

	return s.provision(ctx, claims)
}

// provision creates a user for a first-seen subject. Concurrent first
// requests may race; the datastore's unique constraint decides the winner and
// the loser re-reads instead of erroring.
func (s *AuthService) provision(ctx context.Context, claims *identity.Claims) (*domain.User, error) {
	user := &domain.User{
		ID:                 uuid.New().String(),
		Subject:            claims.Subject,
		Email:              claims.Email,
		Name:               claims.Name,
		Username:           generateUsername(),
		Role:               domain.RoleRegular,
		Plan:               domain.PlanFree,
		SubscriptionStatus: domain.SubInactive,
	}

	err := s.users.Create(ctx, user)
	if err == nil {
		log.Printf("provisioned user %s for subject %s", user.ID, claims.Subject)
		return s.reread(ctx, claims.Subject)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the race (or the generated username collided once in a
		// blue moon): the row is authoritative, read it back.
		return s.reread(ctx, claims.Subject)
	}
	return nil, domain.ErrInternal("failed to provision user", err)
}

func (s *AuthService) reread(ctx context.Context, subject string) (*domain.User, error) {
	user, err := s.users.FindBySubject(ctx, subject)
	if err != nil {
		return nil, domain.ErrInternal("failed to load user", err)
	}
	if user == nil {
		return nil, domain.ErrInternal("failed to provision user", fmt.Errorf("user missing after create for subject %s", subject))
	}
	return user, nil
}

func generateUsername() string {
	return "user-" + strings.Split(uuid.New().String(), "-")[0]
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
