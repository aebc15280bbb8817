package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topup-orders-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authProvider(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/current", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer user-token":
			fmt.Fprint(w, `{"id":"user-1","email":"player@example.com","role":"user","enabled":true}`)
		case "Bearer admin-token":
			fmt.Fprint(w, `{"id":"admin-1","email":"admin@example.com","role":"admin","enabled":true}`)
		case "Bearer disabled-token":
			fmt.Fprint(w, `{"id":"user-2","email":"banned@example.com","role":"user","enabled":false}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
}

func testRouter(authURL string) *gin.Engine {
	auth := service.NewAuthService(authURL)

	router := gin.New()
	protected := router.Group("/", AuthMiddleware(auth))
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString("userID"), "role": c.GetString("userRole")})
	})

	admin := protected.Group("/admin", AdminOnly())
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	srv := authProvider(t)
	defer srv.Close()
	router := testRouter(srv.URL)

	w := get(router, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(router, "/whoami", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(router, "/whoami", "disabled-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(router, "/whoami", "user-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"user-1"`)
	assert.Contains(t, w.Body.String(), `"role":"user"`)
}

func TestAdminOnly(t *testing.T) {
	srv := authProvider(t)
	defer srv.Close()
	router := testRouter(srv.URL)

	w := get(router, "/admin/ping", "user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(router, "/admin/ping", "admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
}
