package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/cache"
	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/client/session"
	"github.com/avolkovs/threadly/internal/logging"
)

// env wires the full client stack against one fake backend.
type env struct {
	server   *httptest.Server
	session  *session.Store
	posts    PostService
	comments CommentService
	auth     AuthService
	users    UserService
	board    LeaderboardService

	postCache    *cache.Cache
	commentCache *cache.Cache
}

func newEnv(t *testing.T, handler http.Handler) *env {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logging.NewDefault()
	sess := session.NewStore(context.Background(), session.NewMemoryStorage(), log)
	client := api.NewClient(srv.URL, 5*time.Second, sess.Token)
	// Millisecond backoff keeps retried failure tests fast.
	retrier := &api.Retrier{MaxAttempts: 3, BaseDelay: time.Millisecond}

	postCache := cache.New()
	commentCache := cache.New()

	return &env{
		server:       srv,
		session:      sess,
		posts:        NewPostService(client, retrier, postCache, sess, log),
		comments:     NewCommentService(client, retrier, commentCache, sess, log),
		auth:         NewAuthService(client, retrier, sess, log),
		users:        NewUserService(client, retrier, log),
		board:        NewLeaderboardService(client, retrier, log),
		postCache:    postCache,
		commentCache: commentCache,
	}
}

// signIn seeds an authenticated session without going through the backend.
func (e *env) signIn(user models.User, token string) {
	e.session.SetSession(context.Background(), user, token)
}

// hijackClose kills the connection mid-exchange so the client sees a
// transport-level failure, not an HTTP status.
func hijackClose(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("response writer does not support hijacking")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(err)
	}
	conn.Close()
}
