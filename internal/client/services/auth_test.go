package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/models"
)

func TestLogin_WiresTokenIntoSubsequentRequests(t *testing.T) {
	var profileAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.com", body["email"])
		assert.Empty(t, r.Header.Get("Authorization"), "login goes out anonymous")

		json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"id": "u1", "displayName": "ada"},
			"token": "tok-123",
		})
	})
	mux.HandleFunc("GET /users/profile/me", func(w http.ResponseWriter, r *http.Request) {
		profileAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"id": "u1", "displayName": "ada", "bio": "hi"})
	})

	e := newEnv(t, mux)
	ctx := context.Background()

	user, err := e.auth.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, e.session.IsAuthenticated())

	_, err = e.auth.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", profileAuth)
}

func TestLogin_LegacyEnvelopeNormalized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"user":        map[string]any{"_id": "u9", "username": "bo"},
			"accessToken": "legacy-tok",
		})
	})

	e := newEnv(t, mux)

	user, err := e.auth.Login(context.Background(), "b@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u9", user.ID)
	assert.Equal(t, "bo", user.DisplayName)
	assert.Equal(t, "legacy-tok", e.session.Token())
}

func TestRegister_SendsMultipartAndOpensSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/register", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ada", r.FormValue("displayName"))
		assert.Equal(t, "a@x.com", r.FormValue("email"))

		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "me.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"id": "u1", "displayName": "ada"},
			"token": "tok",
		})
	})

	e := newEnv(t, mux)

	user, err := e.auth.Register(context.Background(), RegisterInput{
		DisplayName: "ada",
		Email:       "a@x.com",
		Password:    "pw",
		AvatarName:  "me.png",
		Avatar:      []byte{0x89, 0x50},
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, e.session.IsAuthenticated())
}

func TestRegister_ValidationErrorLeavesSessionAnonymous(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/register", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"message": "email taken"})
	})

	e := newEnv(t, mux)

	_, err := e.auth.Register(context.Background(), RegisterInput{DisplayName: "ada", Email: "a@x.com", Password: "pw"})
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.KindValidation, apiErr.Kind)
	assert.Equal(t, "email taken", apiErr.Message)
	assert.Equal(t, 1, attempts, "register is never re-sent")
	assert.False(t, e.session.IsAuthenticated())
}

func TestLogout_ClearsSessionEvenWhenServerFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	e := newEnv(t, mux)
	e.signIn(models.User{ID: "u1", DisplayName: "ada"}, "tok")

	err := e.auth.Logout(context.Background())
	require.Error(t, err)
	assert.False(t, e.session.IsAuthenticated(), "local state cleared regardless")
}

func TestLogout_WhileAnonymousSkipsServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/logout", func(w http.ResponseWriter, r *http.Request) {
		t.Error("logout request sent for an anonymous session")
	})

	e := newEnv(t, mux)
	require.NoError(t, e.auth.Logout(context.Background()))
}

func TestUpdateProfile_MergesIntoSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /users/profile", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "builder", body["bio"])
		_, hasName := body["displayName"]
		assert.False(t, hasName, "unchanged fields are omitted")

		json.NewEncoder(w).Encode(map[string]any{"id": "u1", "displayName": "ada", "bio": "builder"})
	})

	e := newEnv(t, mux)
	e.signIn(models.User{ID: "u1", DisplayName: "ada", Email: "a@x.com"}, "tok")
	ctx := context.Background()

	user, err := e.auth.UpdateProfile(ctx, "", "builder")
	require.NoError(t, err)
	assert.Equal(t, "builder", user.Bio)

	got := e.session.User(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "builder", got.Bio)
	assert.Equal(t, "a@x.com", got.Email, "merge keeps fields the server omitted")
	assert.Equal(t, "tok", e.session.Token())
}

func TestUpdateAvatar_SendsFileAndMergesURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /users/profile/avatar", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		assert.Equal(t, "new.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{
			"id": "u1", "displayName": "ada", "avatar": "http://img/new.png",
		})
	})

	e := newEnv(t, mux)
	e.signIn(models.User{ID: "u1", DisplayName: "ada"}, "tok")
	ctx := context.Background()

	user, err := e.auth.UpdateAvatar(ctx, "new.png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "http://img/new.png", user.AvatarURL)

	got := e.session.User(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "http://img/new.png", got.AvatarURL)
}
