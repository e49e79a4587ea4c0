package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/cache"
	"github.com/avolkovs/threadly/internal/client/config"
	"github.com/avolkovs/threadly/internal/client/services"
	"github.com/avolkovs/threadly/internal/client/session"
	"github.com/avolkovs/threadly/internal/logging"
)

// App holds the wired client stack behind the REPL.
type App struct {
	config  *config.Config
	session *session.Store
	storage *session.SQLiteStorage

	auth     services.AuthService
	posts    services.PostService
	comments services.CommentService
	users    services.UserService
	board    services.LeaderboardService

	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

// NewApp opens the persisted session state and wires the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewDefault()

	storage, err := session.OpenSQLiteStorage(ctx, c.StateDBPath)
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(ctx, storage, log)
	client := api.NewClient(c.APIBaseURL, c.RequestTimeout, sess.Token)
	retrier := &api.Retrier{MaxAttempts: c.RetryAttempts, BaseDelay: c.RetryBaseDelay}

	postCache := cache.New()
	commentCache := cache.New()

	return &App{
		config:   c,
		session:  sess,
		storage:  storage,
		auth:     services.NewAuthService(client, retrier, sess, log),
		posts:    services.NewPostService(client, retrier, postCache, sess, log),
		comments: services.NewCommentService(client, retrier, commentCache, sess, log),
		users:    services.NewUserService(client, retrier, log),
		board:    services.NewLeaderboardService(client, retrier, log),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		log:      log,
	}, nil
}

// Run refreshes the restored session and starts the REPL. It blocks until
// the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.storage.Close()

	if a.session.IsAuthenticated() {
		if a.session.IsExpired() {
			a.println("Your session has expired, please log in again.")
			a.session.Clear(ctx)
		} else if _, err := a.auth.Profile(ctx); err != nil {
			a.log.Warn(ctx, "profile refresh failed", "err", err)
		}
	}

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}
