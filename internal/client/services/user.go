package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/logging"
)

// UserService reads public user profiles.
//
// Contract:
//   - ByID: fetch any user's public profile by id.
type UserService interface {
	ByID(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	client  *api.Client
	retrier *api.Retrier
	log     logging.Logger
}

func NewUserService(client *api.Client, retrier *api.Retrier, log logging.Logger) UserService {
	return &userService{client: client, retrier: retrier, log: log}
}

func (s *userService) ByID(ctx context.Context, id string) (*models.User, error) {
	resp, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodGet,
		Path:       api.UserPath(id),
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	user, err := models.DecodeUser(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return &user, nil
}
