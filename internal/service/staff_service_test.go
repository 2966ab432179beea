package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

type memStaff struct {
	users      map[string]*models.User
	lastFilter models.StaffFilter
	listErr    error
	audits     []*models.AuditLog
}

func newMemStaff(users ...*models.User) *memStaff {
	m := &memStaff{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memStaff) List(ctx context.Context, filter models.StaffFilter) ([]models.User, int, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memStaff) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (m *memStaff) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStaff) Create(ctx context.Context, user *models.User) error {
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memStaff) Update(ctx context.Context, user *models.User) error {
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memStaff) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, log)
	return nil
}

var adminActor = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

func TestStaffCreate(t *testing.T) {
	repo := newMemStaff(&models.User{ID: "admin-1", Email: "admin@gardenia.test", Role: models.RoleAdmin, Active: true})
	svc := NewStaffService(repo, nil, nil)

	user, err := svc.Create(context.Background(), dto.CreateStaffRequest{
		Email:    " North.Gate@Gardenia.test ",
		FullName: "North Gate",
		Role:     "GATEKEEPER",
		Password: "wristband",
	}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, "north.gate@gardenia.test", user.Email)
	assert.Equal(t, models.RoleGatekeeper, user.Role)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("wristband")))

	require.Len(t, repo.audits, 1)
	assert.Equal(t, models.AuditActionStaffCreate, repo.audits[0].Action)
	assert.Equal(t, "admin-1", *repo.audits[0].UserID)

	_, err = svc.Create(context.Background(), dto.CreateStaffRequest{
		Email: "north.gate@gardenia.test", FullName: "Again", Role: "GATEKEEPER", Password: "wristband",
	}, adminActor)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestStaffCreateValidation(t *testing.T) {
	svc := NewStaffService(newMemStaff(), nil, nil)
	cases := map[string]dto.CreateStaffRequest{
		"role":     {Email: "a@gardenia.test", FullName: "A", Role: "STUDENT", Password: "longenough"},
		"password": {Email: "a@gardenia.test", FullName: "A", Role: "ADMIN", Password: "short"},
		"email":    {Email: "not-an-email", FullName: "A", Role: "ADMIN", Password: "longenough"},
	}
	for field, req := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req, adminActor)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, field, appErr.Field)
		})
	}
}

func TestStaffUpdate(t *testing.T) {
	repo := newMemStaff(
		&models.User{ID: "admin-1", Email: "admin@gardenia.test", Role: models.RoleAdmin, Active: true},
		&models.User{ID: "gate-1", Email: "gate@gardenia.test", FullName: "Gate", Role: models.RoleGatekeeper, Active: true, PasswordHash: "old"},
	)
	svc := NewStaffService(repo, nil, nil)
	inactive := false
	password := "new-password"

	user, err := svc.Update(context.Background(), "gate-1", dto.UpdateStaffRequest{Active: &inactive, Password: &password}, adminActor)
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.Equal(t, "Gate", user.FullName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["gate-1"].PasswordHash), []byte(password)))

	require.Len(t, repo.audits, 1)
	assert.JSONEq(t, `{"fullName":"Gate","role":"GATEKEEPER","active":true}`, string(repo.audits[0].OldValues))

	_, err = svc.Update(context.Background(), "missing", dto.UpdateStaffRequest{Active: &inactive}, adminActor)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStaffUpdateGuardsSelf(t *testing.T) {
	repo := newMemStaff(&models.User{ID: "admin-1", Email: "admin@gardenia.test", Role: models.RoleAdmin, Active: true})
	svc := NewStaffService(repo, nil, nil)
	inactive := false
	gatekeeper := "GATEKEEPER"

	_, err := svc.Update(context.Background(), "admin-1", dto.UpdateStaffRequest{Active: &inactive}, adminActor)
	assert.Equal(t, "active", appErrors.FromError(err).Field)

	_, err = svc.Update(context.Background(), "admin-1", dto.UpdateStaffRequest{Role: &gatekeeper}, adminActor)
	assert.Equal(t, "role", appErrors.FromError(err).Field)
	assert.True(t, repo.users["admin-1"].Active)
	assert.Empty(t, repo.audits)
}

func TestStaffList(t *testing.T) {
	repo := newMemStaff(&models.User{ID: "gate-1", Role: models.RoleGatekeeper})
	svc := NewStaffService(repo, nil, nil)

	users, page, err := svc.List(context.Background(), dto.StaffQuery{Role: "gatekeeper", PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 20, page.PageSize)
	require.NotNil(t, repo.lastFilter.Role)
	assert.Equal(t, models.RoleGatekeeper, *repo.lastFilter.Role)

	_, _, err = svc.List(context.Background(), dto.StaffQuery{Role: "student"})
	assert.Equal(t, "role", appErrors.FromError(err).Field)

	repo.listErr = errors.New("boom")
	_, _, err = svc.List(context.Background(), dto.StaffQuery{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
