package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/pkg/jwt"
)

func newRouter(t *testing.T) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := jwt.NewManager("secret", "", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(m).RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "uid": GetUID(c), "name": GetUsername(c)})
	})
	return r, m
}

func TestRequireAuthAcceptsBearer(t *testing.T) {
	r, m := newRouter(t)
	token, err := m.Sign(jwt.Claims{UserID: "u1", UID: 7, Username: "Alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u1","uid":7,"name":"Alice"}`, rec.Body.String())
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	r, m := newRouter(t)
	token, err := m.Sign(jwt.Claims{UserID: "u2"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejects(t *testing.T) {
	r, _ := newRouter(t)

	cases := map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"garbage":    BearerPrefix + "not-a-token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set(AuthHeaderKey, header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
