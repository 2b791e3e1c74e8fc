package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

type stubChecker struct {
	allowed map[models.Role]bool
}

func (s stubChecker) Require(ctx context.Context, role models.Role, menuPath string, capability models.Capability) error {
	if s.allowed[role] {
		return nil
	}
	return appErrors.ErrForbidden
}

type recorder struct {
	logs []*models.AuditLog
}

func (r *recorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func newRouter(claims *models.JWTClaims, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{JWT(stubValidator{claims: claims})}, handlers...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/items/:id", chain...)
	return r
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	r := newRouter(&models.JWTClaims{UserID: 1, Role: models.RoleAdmin})

	assert.Equal(t, http.StatusUnauthorized, do(r, "/items/1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/items/1", "bad").Code)
	assert.Equal(t, http.StatusOK, do(r, "/items/1", "good").Code)
}

func TestRBACAllowsRolesAndSelf(t *testing.T) {
	teacher := &models.JWTClaims{UserID: 7, Role: models.RoleTeacher}
	r := newRouter(teacher, RBAC(string(models.RoleAdmin), RoleSelf))

	assert.Equal(t, http.StatusOK, do(r, "/items/7", "good").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/items/8", "good").Code)

	admin := newRouter(&models.JWTClaims{UserID: 1, Role: models.RoleAdmin}, RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, do(admin, "/items/8", "good").Code)
}

func TestRequireCapability(t *testing.T) {
	checker := stubChecker{allowed: map[models.Role]bool{models.RoleAccountant: true}}

	allowed := newRouter(&models.JWTClaims{UserID: 3, Role: models.RoleAccountant}, RequireCapability(checker, "/payments", models.CapabilityRead))
	assert.Equal(t, http.StatusOK, do(allowed, "/items/1", "good").Code)

	denied := newRouter(&models.JWTClaims{UserID: 4, Role: models.RoleStudent}, RequireCapability(checker, "/payments", models.CapabilityRead))
	w := do(denied, "/items/1", "good")
	require.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FORBIDDEN", body["error"]["code"])
}

func TestFailWithRendersRejections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	checker := stubChecker{allowed: map[models.Role]bool{models.RoleTeacher: true}}
	r := gin.New()
	r.GET("/calendar",
		FailWith(func(c *gin.Context, err error) {
			c.JSON(appErrors.FromError(err).Status, gin.H{"success": false, "error": appErrors.FromError(err)})
		}),
		JWT(stubValidator{claims: &models.JWTClaims{UserID: 4, Role: models.RoleStudent}}),
		RequireCapability(checker, "/calendar", models.CapabilityRead),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	for token, status := range map[string]int{"": http.StatusUnauthorized, "good": http.StatusForbidden} {
		w := do(r, "/calendar", token)
		require.Equal(t, status, w.Code, token)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"], token)
		assert.NotContains(t, body, "data", token)
	}
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	rec := &recorder{}
	r := newRouter(&models.JWTClaims{UserID: 5, Role: models.RoleManager}, Audit(rec, "EXPORT_DOWNLOAD", "exports", nil))

	do(r, "/items/1", "good")
	do(r, "/items/1", "bad")

	require.Len(t, rec.logs, 1)
	require.NotNil(t, rec.logs[0].UserID)
	assert.Equal(t, int64(5), *rec.logs[0].UserID)
	assert.Equal(t, "exports", rec.logs[0].Resource)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/", func(c *gin.Context) {
		assert.Nil(t, ExtractMeta(c))
		SetMeta(c, "count", 3)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, meta)
	assert.Equal(t, 3, meta["count"])
	assert.Contains(t, meta, "processing_time_ms")
}

type observed struct {
	method string
	route  string
	status int
}

type observerStub struct {
	seen []observed
}

func (o *observerStub) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	o.seen = append(o.seen, observed{method: method, route: route, status: status})
}

func TestMetricsLabelsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &observerStub{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/lessons/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/lessons/1", "/lessons/2", "/nope/3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, obs.seen, 3)
	assert.Equal(t, observed{http.MethodGet, "/lessons/:id", http.StatusOK}, obs.seen[0])
	assert.Equal(t, "/lessons/:id", obs.seen[1].route)
	assert.Equal(t, observed{http.MethodGet, unmatchedRoute, http.StatusNotFound}, obs.seen[2])
}
