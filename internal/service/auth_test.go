package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/backend/internal/domain"
	"github.com/careerpilot/backend/internal/identity"
	"github.com/careerpilot/backend/internal/repository"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (*identity.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Claims), args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

var _ AuthUserStore = (*mockUserStore)(nil)

func TestAuthenticateMissingHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"bearer without token", "Bearer "},
		{"token only", "sometoken"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewAuthService(new(mockVerifier), new(mockUserStore))

			_, err := svc.Authenticate(context.Background(), tc.header)

			appErr, ok := domain.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusUnauthorized, appErr.Code)
			assert.Equal(t, "Authentication required", appErr.Message)
		})
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "bad-token").Return(nil, errors.New("token is expired"))

	svc := NewAuthService(verifier, new(mockUserStore))

	_, err := svc.Authenticate(context.Background(), "Bearer bad-token")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	assert.Equal(t, "Authentication required", appErr.Message)
	verifier.AssertExpectations(t)
}

func TestAuthenticateExistingUser(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "good-token").Return(&identity.Claims{Subject: "auth0|123"}, nil)

	existing := &domain.User{ID: "u1", Subject: "auth0|123", Role: domain.RoleRegular}
	users := new(mockUserStore)
	users.On("FindBySubject", mock.Anything, "auth0|123").Return(existing, nil)

	svc := NewAuthService(verifier, users)

	user, err := svc.Authenticate(context.Background(), "Bearer good-token")

	require.NoError(t, err)
	assert.Same(t, existing, user)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthenticateProvisionsFirstSeenSubject(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "good-token").Return(&identity.Claims{
		Subject: "auth0|new",
		Email:   "new@example.com",
		Name:    "New User",
	}, nil)

	stored := &domain.User{ID: "u-new", Subject: "auth0|new"}
	var created *domain.User
	users := new(mockUserStore)
	users.On("FindBySubject", mock.Anything, "auth0|new").Return(nil, nil).Once()
	users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
	}).Return(nil)
	users.On("FindBySubject", mock.Anything, "auth0|new").Return(stored, nil).Once()

	svc := NewAuthService(verifier, users)

	user, err := svc.Authenticate(context.Background(), "Bearer good-token")

	require.NoError(t, err)
	// The row read back after create is authoritative.
	assert.Same(t, stored, user)

	require.NotNil(t, created)
	assert.Equal(t, "auth0|new", created.Subject)
	assert.Equal(t, "new@example.com", created.Email)
	assert.Equal(t, domain.RoleRegular, created.Role)
	assert.Equal(t, domain.PlanFree, created.Plan)
	assert.Equal(t, domain.SubInactive, created.SubscriptionStatus)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Username)
}

func TestAuthenticateProvisionRaceLoserRereads(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "good-token").Return(&identity.Claims{Subject: "auth0|race"}, nil)

	winner := &domain.User{ID: "winner", Subject: "auth0|race"}
	users := new(mockUserStore)
	users.On("FindBySubject", mock.Anything, "auth0|race").Return(nil, nil).Once()
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
	users.On("FindBySubject", mock.Anything, "auth0|race").Return(winner, nil).Once()

	svc := NewAuthService(verifier, users)

	user, err := svc.Authenticate(context.Background(), "Bearer good-token")

	require.NoError(t, err)
	assert.Same(t, winner, user)
}

func TestAuthenticateStoreFailureIs500(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", "good-token").Return(&identity.Claims{Subject: "auth0|123"}, nil)

	users := new(mockUserStore)
	users.On("FindBySubject", mock.Anything, "auth0|123").Return(nil, errors.New("connection refused"))

	svc := NewAuthService(verifier, users)

	_, err := svc.Authenticate(context.Background(), "Bearer good-token")

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
}
