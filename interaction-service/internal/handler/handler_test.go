package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/cache"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue/queuetest"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime/realtimetest"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository/repotest"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/service"
	"github.com/weiawesome/wes-io-live/pkg/jwt"
	"github.com/weiawesome/wes-io-live/pkg/middleware"
	"github.com/weiawesome/wes-io-live/pkg/pubsub"
	"github.com/weiawesome/wes-io-live/pkg/response"
)

type testServer struct {
	engine *gin.Engine
	tokens *jwt.Manager
	mr     *miniredis.Miniredis
	hub    *realtime.Hub
	jobs   *queuetest.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tokens, err := jwt.NewManager("test-secret", "test", time.Hour)
	require.NoError(t, err)

	jobs := &queuetest.Recorder{}
	deps := service.Deps{
		Caches:  cache.NewCaches(cache.NewStoreWithClient(client)),
		Store:   repotest.NewStore(t),
		Emitter: &realtimetest.Recorder{},
		Queue:   jobs,
	}
	auth := middleware.NewAuthMiddleware(tokens)

	hub := realtime.NewHub(realtime.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	engine := gin.New()
	NewHandler(Services{
		Posts:         service.NewPostService(deps),
		Comments:      service.NewCommentService(deps),
		Reactions:     service.NewReactionService(deps),
		Followers:     service.NewFollowerService(deps),
		Notifications: service.NewNotificationService(deps),
	}, auth).RegisterRoutes(engine)
	NewWSHandler(hub, auth).RegisterRoutes(engine)

	return &testServer{engine: engine, tokens: tokens, mr: mr, hub: hub, jobs: jobs}
}

func (s *testServer) token(t *testing.T, userID, username string) string {
	t.Helper()
	tok, err := s.tokens.Sign(jwt.Claims{UserID: userID, UID: 7, Username: username, Email: username + "@example.com"})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) response.Response {
	t.Helper()
	resp := response.Response{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreatePostRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/posts", "", map[string]string{"post": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, s.jobs.Jobs())
}

func TestCreateAndListPosts(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "u1", "Alice")

	w := s.do(t, http.MethodPost, "/api/v1/posts", tok, map[string]string{"post": "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created domain.Post
	resp := decode(t, w, &created)
	assert.True(t, resp.Success)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "Alice", created.Username)

	w = s.do(t, http.MethodGet, "/api/v1/posts?page=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.PostPage
	decode(t, w, &page)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, created.ID, page.Posts[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/posts/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorKindsMapToStatus(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "u1", "Alice")
	bob := s.token(t, "u2", "Bob")

	w := s.do(t, http.MethodPost, "/api/v1/posts", alice, map[string]string{"post": "mine"})
	require.Equal(t, http.StatusCreated, w.Code)
	var post domain.Post
	decode(t, w, &post)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"bad page", http.MethodGet, "/api/v1/posts?page=0", "", nil, http.StatusBadRequest},
		{"bad media kind", http.MethodGet, "/api/v1/posts/media/audio", "", nil, http.StatusBadRequest},
		{"bad post id", http.MethodGet, "/api/v1/posts/nope/comments", "", nil, http.StatusBadRequest},
		{"unknown post", http.MethodGet, "/api/v1/posts/eeeeeeeeeeeeeeeeeeeeeeee", "", nil, http.StatusNotFound},
		{"edit other's post", http.MethodPut, "/api/v1/posts/" + post.ID, bob, map[string]string{"post": "x"}, http.StatusBadRequest},
		{"comment unknown post", http.MethodPost, "/api/v1/comments", bob, map[string]string{"postId": "eeeeeeeeeeeeeeeeeeeeeeee", "comment": "hi"}, http.StatusNotFound},
		{"follow self", http.MethodPost, "/api/v1/users/u1/follow", alice, nil, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/comments", bob, "not an object", http.StatusBadRequest},
		{"read unknown notification", http.MethodPut, "/api/v1/notifications/eeeeeeeeeeeeeeeeeeeeeeee", alice, nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			resp := decode(t, w, nil)
			assert.False(t, resp.Success)
		})
	}
}

func TestCacheOutageIsInternalError(t *testing.T) {
	s := newTestServer(t)
	s.mr.Close()

	w := s.do(t, http.MethodPost, "/api/v1/posts", s.token(t, "u1", "Alice"), map[string]string{"post": "x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestFollowRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "u1", "Alice")

	w := s.do(t, http.MethodPost, "/api/v1/users/u2/follow", alice, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/v1/users/u2/follow", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/users/u2/follow", alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/users/u2/block", alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.mr.Exists("users:u2"))
}

func TestNotificationsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/notifications", s.token(t, "u1", "Alice"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocketReceivesScopedEvents(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + s.token(t, "u2", "Bob")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	other, err := pubsub.NewEvent(realtime.EventInsertNotification, "u1", []string{"not yours"})
	require.NoError(t, err)
	s.hub.Deliver(other)
	mine, err := pubsub.NewEvent(realtime.EventInsertNotification, "u2", []string{"yours"})
	require.NoError(t, err)
	s.hub.Deliver(mine)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame realtime.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, pubsub.NamespaceNotifications, frame.Namespace)
	assert.Equal(t, realtime.EventInsertNotification, frame.Event)
	assert.Equal(t, []interface{}{"yours"}, frame.Data)
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
