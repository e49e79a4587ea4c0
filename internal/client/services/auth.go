package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/client/session"
	"github.com/avolkovs/threadly/internal/logging"
)

// AuthService defines the account operations of the client.
//
// Contract:
//   - Register: create an account and open a session.
//   - Login: authenticate and open a session.
//   - Logout: close the session on the server and locally; local state is
//     cleared even if the server call fails.
//   - Profile: fetch the authenticated identity and refresh the session copy.
//   - UpdateProfile / UpdateAvatar: change identity fields; the session copy
//     is merged, never replaced wholesale.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, displayName, bio string) (*models.User, error)
	UpdateAvatar(ctx context.Context, filename string, content []byte) (*models.User, error)
}

// RegisterInput carries the registration form; Avatar is optional.
type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
	AvatarName  string
	Avatar      []byte
}

type authService struct {
	client  *api.Client
	retrier *api.Retrier
	session *session.Store
	log     logging.Logger
}

// NewAuthService constructs an AuthService bound to the given transport,
// retrier and session store.
func NewAuthService(client *api.Client, retrier *api.Retrier, sess *session.Store, log logging.Logger) AuthService {
	return &authService{client: client, retrier: retrier, session: sess, log: log}
}

// Register creates the account via a multipart form and opens a session
// from the response. It is sent exactly once: a blind re-send after a lost
// response could create the account twice.
func (a *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	req := api.Request{
		Method: http.MethodPost,
		Path:   api.RegisterPath(),
		Form: map[string]string{
			"displayName": in.DisplayName,
			"email":       in.Email,
			"password":    in.Password,
		},
	}
	if len(in.Avatar) > 0 {
		req.Files = []api.FilePart{{Field: "avatar", Name: in.AvatarName, Content: in.Avatar}}
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	auth, err := models.DecodeAuthEnvelope(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	a.session.SetSession(ctx, auth.User, auth.Token)
	return &auth.User, nil
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := call(ctx, a.client, a.retrier, api.Request{
		Method:     http.MethodPost,
		Path:       api.LoginPath(),
		Body:       map[string]string{"email": email, "password": password},
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	auth, err := models.DecodeAuthEnvelope(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	a.session.SetSession(ctx, auth.User, auth.Token)
	return &auth.User, nil
}

// Logout tells the server first, then clears local state unconditionally:
// whatever the server answered, this client is anonymous afterwards.
func (a *authService) Logout(ctx context.Context) error {
	var err error
	if a.session.IsAuthenticated() {
		_, err = call(ctx, a.client, a.retrier, api.Request{
			Method:     http.MethodPost,
			Path:       api.LogoutPath(),
			Idempotent: true,
		})
	}
	a.session.Logout(ctx)
	return err
}

func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	resp, err := call(ctx, a.client, a.retrier, api.Request{
		Method:     http.MethodGet,
		Path:       api.ProfilePath(),
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	user, err := models.DecodeUser(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	a.session.MergeUser(ctx, user)
	return &user, nil
}

func (a *authService) UpdateProfile(ctx context.Context, displayName, bio string) (*models.User, error) {
	body := map[string]string{}
	if displayName != "" {
		body["displayName"] = displayName
	}
	if bio != "" {
		body["bio"] = bio
	}

	resp, err := call(ctx, a.client, a.retrier, api.Request{
		Method:     http.MethodPut,
		Path:       api.ProfileUpdatePath(),
		Body:       body,
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	user, err := models.DecodeUser(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	a.session.MergeUser(ctx, user)
	return &user, nil
}

func (a *authService) UpdateAvatar(ctx context.Context, filename string, content []byte) (*models.User, error) {
	resp, err := call(ctx, a.client, a.retrier, api.Request{
		Method:     http.MethodPut,
		Path:       api.AvatarPath(),
		Files:      []api.FilePart{{Field: "avatar", Name: filename, Content: content}},
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	user, err := models.DecodeUser(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	a.session.MergeUser(ctx, user)
	return &user, nil
}
