package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(roles ...string) *gin.Engine {
	router := gin.New()
	group := router.Group("/")
	group.Use(GinAuthMiddleware(testSecret))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		actorID, role := Actor(c)
		c.JSON(http.StatusOK, gin.H{"actorId": actorID, "role": role})
	})
	return router
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour, 42, RoleStudent, "alice@student.test")
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.ActorID)
	assert.Equal(t, RoleStudent, claims.Role)
	assert.Equal(t, "alice@student.test", claims.Email)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := IssueToken(testSecret, -time.Minute, 42, RoleStudent, "")
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken("other-secret", time.Hour, 42, RoleStudent, "")
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	router := newProtectedRouter()

	// 缺少令牌
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 格式错误
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Basic abc")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 有效令牌
	token, err := IssueToken(testSecret, time.Hour, 7, RoleEmployer, "")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actorId":7`)
}

func TestRequireRole(t *testing.T) {
	router := newProtectedRouter(RoleStudent)

	token, err := IssueToken(testSecret, time.Hour, 7, RoleEmployer, "")
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	token, err = IssueToken(testSecret, time.Hour, 7, RoleStudent, "")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
