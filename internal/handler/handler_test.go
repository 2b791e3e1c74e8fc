package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
)

func asUser(id int64, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: id, Role: role})
		c.Next()
	}
}

func newTestRouter(claims gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if claims != nil {
		r.Use(claims)
	}
	return r
}

func perform(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error body, got %s", w.Body.String())
	code, _ := errBody["code"].(string)
	return code
}

func TestPathAndQueryHelpers(t *testing.T) {
	r := newTestRouter(nil)
	r.GET("/things/:id", func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		from, to, err := requiredRange(c)
		if err != nil {
			c.Status(http.StatusUnprocessableEntity)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "days": int(to.Sub(from).Hours() / 24)})
	})

	require.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/things/abc", nil).Code)
	require.Equal(t, http.StatusUnprocessableEntity, perform(r, http.MethodGet, "/things/1", nil).Code)
	require.Equal(t, http.StatusUnprocessableEntity, perform(r, http.MethodGet, "/things/1?from=2024-05-07&to=2024-05-06", nil).Code)

	w := perform(r, http.MethodGet, "/things/7?from=2024-05-01&to=2024-05-08", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.EqualValues(t, 7, body["id"])
	require.EqualValues(t, 7, body["days"])
}
