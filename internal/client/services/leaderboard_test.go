package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardTop_PaginatedEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leaderboard", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []any{
				map[string]any{"rank": 1, "score": 90, "user": map[string]any{"id": "u1", "displayName": "ada"}},
				map[string]any{"rank": 2, "score": 70, "user": map[string]any{"id": "u2", "displayName": "bo"}},
			},
		})
	})

	e := newEnv(t, mux)

	top, err := e.board.Top(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "ada", top[0].User.DisplayName)
	assert.Equal(t, 90, top[0].Score)
}

func TestLeaderboardTop_BareArray(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leaderboard", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{
			map[string]any{"rank": 1, "score": 10, "user": map[string]any{"id": "u1", "displayName": "ada"}},
		})
	})

	e := newEnv(t, mux)

	top, err := e.board.Top(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Rank)
}
