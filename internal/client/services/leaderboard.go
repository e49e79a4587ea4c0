package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/logging"
)

// LeaderboardService reads the score ranking.
//
// Contract:
//   - Top: fetch the highest-scored users; limit <= 0 means the server
//     default.
type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type leaderboardService struct {
	client  *api.Client
	retrier *api.Retrier
	log     logging.Logger
}

func NewLeaderboardService(client *api.Client, retrier *api.Retrier, log logging.Logger) LeaderboardService {
	return &leaderboardService{client: client, retrier: retrier, log: log}
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodGet,
		Path:       api.LeaderboardPath(),
		Query:      query,
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	var page models.Paginated[models.LeaderboardEntry]
	if err := decodeList(resp.Data, &page); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return page.Data, nil
}
