package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/client/session"
	"github.com/avolkovs/threadly/internal/logging"
)

func newStatusApp(t *testing.T) (*App, *session.Store) {
	t.Helper()
	sess := session.NewStore(context.Background(), session.NewMemoryStorage(), logging.NewDefault())
	return &App{session: sess, out: &bytes.Buffer{}}, sess
}

func TestGetStatus_Anonymous(t *testing.T) {
	a, _ := newStatusApp(t)
	assert.Equal(t, "(anonymous)", a.getStatus())
}

func TestGetStatus_SignedIn(t *testing.T) {
	a, sess := newStatusApp(t)
	// An unparsable credential counts as expired, so the prompt flags it.
	sess.SetSession(context.Background(), models.User{ID: "u1", DisplayName: "ada"}, "opaque")
	assert.Equal(t, "(ada, session expired)", a.getStatus())
}

func TestIsLoggedIn_TracksSession(t *testing.T) {
	a, sess := newStatusApp(t)
	assert.False(t, a.isLoggedIn())

	sess.SetSession(context.Background(), models.User{ID: "u1", DisplayName: "ada"}, "tok")
	assert.True(t, a.isLoggedIn())

	sess.Clear(context.Background())
	assert.False(t, a.isLoggedIn())
}
