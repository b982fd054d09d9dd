package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/backend/internal/contextkeys"
	"github.com/careerpilot/backend/internal/domain"
)

type mockUniversityStore struct {
	mock.Mock
}

func (m *mockUniversityStore) Create(ctx context.Context, u *domain.University) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUniversityStore) FindByID(ctx context.Context, id int64) (*domain.University, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.University), args.Error(1)
}

func (m *mockUniversityStore) ListAll(ctx context.Context) ([]*domain.University, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.University), args.Error(1)
}

func (m *mockUniversityStore) Update(ctx context.Context, u *domain.University) (bool, error) {
	args := m.Called(ctx, u)
	return args.Bool(0), args.Error(1)
}

func (m *mockUniversityStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var _ UniversityStore = (*mockUniversityStore)(nil)

type mockMemberStore struct {
	mock.Mock
}

func (m *mockMemberStore) ListByUniversity(ctx context.Context, universityID int64) ([]*domain.User, error) {
	args := m.Called(ctx, universityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockMemberStore) AttachToUniversity(ctx context.Context, userID string, universityID int64, role string) error {
	args := m.Called(ctx, userID, universityID, role)
	return args.Error(0)
}

var _ UniversityMemberStore = (*mockMemberStore)(nil)

// withRouteContext injects what the dispatcher would have put on the request.
func withRouteContext(r *http.Request, user *domain.User, params map[string]string) *http.Request {
	ctx := r.Context()
	if user != nil {
		ctx = context.WithValue(ctx, contextkeys.User, user)
		ctx = context.WithValue(ctx, contextkeys.UserID, user.ID)
	}
	if params != nil {
		ctx = context.WithValue(ctx, contextkeys.PathParams, params)
	}
	return r.WithContext(ctx)
}

func TestUniversityUpdateCamelCaseRoundTrip(t *testing.T) {
	existing := &domain.University{
		ID:           42,
		Name:         "Springfield University",
		LicensePlan:  "trial",
		LicenseSeats: 10,
	}

	store := new(mockUniversityStore)
	store.On("FindByID", mock.Anything, int64(42)).Return(existing, nil)
	store.On("Update", mock.Anything, mock.Anything).Return(true, nil)

	h := NewUniversityHandler(store, new(mockMemberStore))

	body := `{"licensePlan":"pro","licenseSeats":50,"licenseStart":"2024-01-01"}`
	req := httptest.NewRequest(http.MethodPut, "/api/universities/42", strings.NewReader(body))
	req = withRouteContext(req, &domain.User{ID: "a1", Role: domain.RoleAdmin}, map[string]string{"id": "42"})
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(42), got["id"])
	assert.Equal(t, "pro", got["licensePlan"])
	assert.Equal(t, float64(50), got["licenseSeats"])
	assert.Contains(t, got["licenseStart"], "2024-01-01")
	// Untouched fields keep their stored values.
	assert.Equal(t, "Springfield University", got["name"])
}

func TestUniversityUpdateRejectsBadPlan(t *testing.T) {
	h := NewUniversityHandler(new(mockUniversityStore), new(mockMemberStore))

	body := `{"licensePlan":"platinum"}`
	req := httptest.NewRequest(http.MethodPut, "/api/universities/42", strings.NewReader(body))
	req = withRouteContext(req, &domain.User{ID: "a1", Role: domain.RoleAdmin}, map[string]string{"id": "42"})
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUniversityUpdateNotFound(t *testing.T) {
	store := new(mockUniversityStore)
	store.On("FindByID", mock.Anything, int64(99)).Return(nil, nil)

	h := NewUniversityHandler(store, new(mockMemberStore))

	req := httptest.NewRequest(http.MethodPut, "/api/universities/99", strings.NewReader(`{"name":"X U"}`))
	req = withRouteContext(req, &domain.User{ID: "a1", Role: domain.RoleAdmin}, map[string]string{"id": "99"})
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportStudentsCSV(t *testing.T) {
	store := new(mockUniversityStore)
	store.On("FindByID", mock.Anything, int64(7)).Return(&domain.University{ID: 7, Name: "Shelbyville"}, nil)

	members := new(mockMemberStore)
	members.On("ListByUniversity", mock.Anything, int64(7)).Return([]*domain.User{
		{ID: "s1", Email: "s1@uni.edu", Name: "Student One", Username: "student1",
			Plan: domain.PlanUniversity, SubscriptionStatus: domain.SubActive,
			CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "a1", Email: "admin@uni.edu", Role: domain.RoleUniversityAdmin},
	}, nil)

	h := NewUniversityHandler(store, members)

	req := httptest.NewRequest(http.MethodGet, "/api/universities/7/students/export", nil)
	req = withRouteContext(req, &domain.User{ID: "x", Role: domain.RoleAdmin}, map[string]string{"id": "7"})
	rec := httptest.NewRecorder()

	h.ExportStudents(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="university-7-students.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2) // header + one student, the admin row is excluded
	assert.Equal(t, "id,email,name,username,plan,status,createdAt", lines[0])
	assert.Equal(t, "s1,s1@uni.edu,Student One,student1,university,active,2024-03-01", lines[1])
}

func TestListStudentsForeignUniversityForbidden(t *testing.T) {
	h := NewUniversityHandler(new(mockUniversityStore), new(mockMemberStore))

	own := int64(5)
	caller := &domain.User{ID: "ua1", Role: domain.RoleUniversityAdmin, UniversityID: &own}
	req := httptest.NewRequest(http.MethodGet, "/api/universities/7/students", nil)
	req = withRouteContext(req, caller, map[string]string{"id": "7"})
	rec := httptest.NewRecorder()

	h.ListStudents(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Access denied", body["error"])
}

func TestAddAdminAttachesRole(t *testing.T) {
	store := new(mockUniversityStore)
	store.On("FindByID", mock.Anything, int64(3)).Return(&domain.University{ID: 3}, nil)

	members := new(mockMemberStore)
	members.On("AttachToUniversity", mock.Anything, "6f1e1e6e-8e3a-4f6e-9a39-1c6e0a3d2b4c", int64(3), domain.RoleUniversityAdmin).Return(nil)

	h := NewUniversityHandler(store, members)

	body := `{"userId":"6f1e1e6e-8e3a-4f6e-9a39-1c6e0a3d2b4c"}`
	req := httptest.NewRequest(http.MethodPost, "/api/universities/3/admins", strings.NewReader(body))
	req = withRouteContext(req, &domain.User{ID: "sa", Role: domain.RoleSuperAdmin}, map[string]string{"id": "3"})
	rec := httptest.NewRecorder()

	h.AddAdmin(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	members.AssertExpectations(t)
}
