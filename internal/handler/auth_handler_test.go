package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/dto"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type authServiceMock struct {
	creds      models.Credentials
	meta       models.RequestMeta
	loginErr   error
	logoutUser int64
	logoutRaw  string
}

func (m *authServiceMock) Login(ctx context.Context, creds models.Credentials, meta models.RequestMeta) (*models.Session, error) {
	m.creds, m.meta = creds, meta
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.Session{TokenPair: models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, User: models.UserInfo{ID: 1}}, nil
}

func (m *authServiceMock) RefreshToken(ctx context.Context, req models.RefreshRequest, meta models.RequestMeta) (*models.TokenPair, error) {
	return &models.TokenPair{AccessToken: "next"}, nil
}

func (m *authServiceMock) Logout(ctx context.Context, userID int64, refreshToken string, meta models.RequestMeta) error {
	m.logoutUser, m.logoutRaw = userID, refreshToken
	return nil
}

func (m *authServiceMock) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest, meta models.RequestMeta) error {
	return nil
}

func (m *authServiceMock) Me(ctx context.Context, userID int64) (*models.UserInfo, error) {
	return &models.UserInfo{ID: userID}, nil
}

func TestAuthLogin(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)
	r := newTestRouter(nil)
	r.POST("/auth/login", h.Login)

	w := perform(r, http.MethodPost, "/auth/login", map[string]string{"email": "jane@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", svc.creds.Email)
	assert.Equal(t, "192.0.2.1", svc.meta.IP)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "access", data["access_token"])

	w = perform(r, http.MethodPost, "/auth/login", "{")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, w))

	svc.loginErr = appErrors.ErrInvalidCredentials
	w = perform(r, http.MethodPost, "/auth/login", map[string]string{"email": "jane@example.com", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errorCode(t, w))
}

func TestAuthLogoutUsesCaller(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	anon := newTestRouter(nil)
	anon.POST("/auth/logout", h.Logout)
	w := perform(anon, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": "raw"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	r := newTestRouter(asUser(7, models.RoleTeacher))
	r.POST("/auth/logout", h.Logout)
	w = perform(r, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": "raw"})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.EqualValues(t, 7, svc.logoutUser)
	assert.Equal(t, "raw", svc.logoutRaw)
}

type userServiceMock struct {
	filter  models.UserFilter
	created dto.CreateUserRequest
	actor   int64
}

func (m *userServiceMock) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	m.filter = filter
	return []models.User{{ID: 1}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (m *userServiceMock) Get(ctx context.Context, id int64) (*models.User, error) {
	return nil, appErrors.ErrNotFound
}

func (m *userServiceMock) Create(ctx context.Context, req dto.CreateUserRequest, actorID int64, meta models.RequestMeta) (*models.User, error) {
	m.created, m.actor = req, actorID
	return &models.User{ID: 2, Email: req.Email}, nil
}

func (m *userServiceMock) Update(ctx context.Context, id int64, req dto.UpdateUserRequest, actorID int64, meta models.RequestMeta) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (m *userServiceMock) Delete(ctx context.Context, id int64, actorID int64, meta models.RequestMeta) error {
	return nil
}

func TestUserListFilter(t *testing.T) {
	svc := &userServiceMock{}
	h := NewUserHandler(svc, models.DefaultRoleTable())
	r := newTestRouter(asUser(1, models.RoleAdmin))
	r.GET("/users", h.List)

	w := perform(r, http.MethodGet, "/users?page=2&page_size=5&role=Teacher&active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.filter.Page)
	assert.Equal(t, 5, svc.filter.PageSize)
	require.NotNil(t, svc.filter.Role)
	assert.Equal(t, models.RoleTeacher, *svc.filter.Role)
	require.NotNil(t, svc.filter.Active)
	assert.True(t, *svc.filter.Active)

	for _, query := range []string{"role=principal", "page=0", "active=maybe"} {
		w = perform(r, http.MethodGet, "/users?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestUserGetMissing(t *testing.T) {
	h := NewUserHandler(&userServiceMock{}, models.DefaultRoleTable())
	r := newTestRouter(asUser(1, models.RoleAdmin))
	r.GET("/users/:id", h.Get)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/users/x", nil).Code)
	w := perform(r, http.MethodGet, "/users/9", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(t, w))
}
