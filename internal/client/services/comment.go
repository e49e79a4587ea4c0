package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/cache"
	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/client/session"
	"github.com/avolkovs/threadly/internal/logging"
)

// PostCommentsView names the per-post comment thread view.
func PostCommentsView(postID string) string { return "post:" + postID }

// UserCommentsView names the per-author view of a user's comments.
func UserCommentsView(userID string) string { return "comments-by:" + userID }

// CommentService defines the comment operations of the client.
//
// Contract:
//   - ByPost/ByUser: fetch comments, refresh the entity cache and replace the
//     named view.
//   - Create: optimistic insert at the head of the post's thread, settled
//     against the server's entity.
//   - Update/Delete: optimistic, settled on the server response.
//   - Vote: optimistic count adjustment, re-attempted on transport failures
//     and rolled back field-for-field when the request ultimately fails.
type CommentService interface {
	ByPost(ctx context.Context, postID string, filter models.CommentFilter) ([]models.Comment, error)
	ByUser(ctx context.Context, userID string, page int) ([]models.Comment, error)
	Create(ctx context.Context, postID, content string) (*models.Comment, error)
	Update(ctx context.Context, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	Vote(ctx context.Context, id string, vote models.VoteType) (*models.Comment, error)
	Thread(postID string) []models.Comment
}

type commentService struct {
	client  *api.Client
	retrier *api.Retrier
	cache   *cache.Cache
	session *session.Store
	log     logging.Logger
}

// NewCommentService constructs a CommentService writing through the given
// cache. The cache must be distinct from the post cache: ids are only unique
// within one entity kind.
func NewCommentService(client *api.Client, retrier *api.Retrier, c *cache.Cache, sess *session.Store, log logging.Logger) CommentService {
	return &commentService{client: client, retrier: retrier, cache: c, session: sess, log: log}
}

func (s *commentService) ByPost(ctx context.Context, postID string, filter models.CommentFilter) ([]models.Comment, error) {
	resp, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodGet,
		Path:       api.CommentsByPostPath(postID),
		Query:      filter.Query(),
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	return s.storeList(resp.Data, PostCommentsView(postID))
}

func (s *commentService) ByUser(ctx context.Context, userID string, page int) ([]models.Comment, error) {
	filter := models.CommentFilter{Page: page}
	resp, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodGet,
		Path:       api.CommentsByUserPath(userID),
		Query:      filter.Query(),
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	return s.storeList(resp.Data, UserCommentsView(userID))
}

func (s *commentService) storeList(data []byte, view string) ([]models.Comment, error) {
	var page models.Paginated[models.Comment]
	if err := decodeList(data, &page); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}

	ids := make([]string, 0, len(page.Data))
	for _, c := range page.Data {
		s.cache.Put(c.ID, models.CommentFields(c))
		ids = append(ids, c.ID)
	}
	s.cache.SetView(view, ids)
	return page.Data, nil
}

// Create inserts a placeholder comment at the head of the post's thread and
// sends the request exactly once.
func (s *commentService) Create(ctx context.Context, postID, content string) (*models.Comment, error) {
	placeholder := models.Comment{
		ID:      "pending-" + uuid.NewString(),
		PostID:  postID,
		Content: content,
	}
	if u := s.session.User(ctx); u != nil {
		placeholder.Author = *u
	}

	h := s.cache.ApplyOptimistic(cache.Mutation{
		EntityID: placeholder.ID,
		Kind:     cache.MutationCreate,
		Set:      models.CommentFields(placeholder),
		View:     PostCommentsView(postID),
	})

	resp, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   api.CommentsPath(),
		Body:   map[string]string{"postId": postID, "content": content},
	})
	if err != nil {
		s.cache.Rollback(h)
		return nil, err
	}

	var comment models.Comment
	if err := decodeWrapped(resp.Data, "comment", &comment); err != nil {
		s.cache.Rollback(h)
		return nil, fmt.Errorf("decode created comment: %w", err)
	}

	s.cache.Commit(h, models.CommentFields(comment))
	return &comment, nil
}

func (s *commentService) Update(ctx context.Context, id, content string) (*models.Comment, error) {
	var h cache.Handle
	applied := false
	if _, ok := s.cache.Get(id); ok {
		h = s.cache.ApplyOptimistic(cache.Mutation{
			EntityID: id,
			Kind:     cache.MutationUpdate,
			Set:      cache.Fields{models.FieldContent: content},
		})
		applied = true
	}

	resp, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodPut,
		Path:       api.CommentPath(id),
		Body:       map[string]string{"content": content},
		Idempotent: true,
	})
	if err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, err
	}

	var comment models.Comment
	if err := decodeWrapped(resp.Data, "comment", &comment); err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, fmt.Errorf("decode updated comment: %w", err)
	}

	if applied {
		s.cache.Commit(h, models.CommentFields(comment))
	} else {
		s.cache.Put(comment.ID, models.CommentFields(comment))
	}
	return &comment, nil
}

func (s *commentService) Delete(ctx context.Context, id string) error {
	h := s.cache.ApplyOptimistic(cache.Mutation{EntityID: id, Kind: cache.MutationDelete})

	_, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodDelete,
		Path:       api.CommentPath(id),
		Idempotent: true,
	})
	if err != nil {
		s.cache.Rollback(h)
		return err
	}

	s.cache.Commit(h, nil)
	return nil
}

// Vote adjusts the comment's counts optimistically; transport failures are
// re-attempted, HTTP errors are not.
func (s *commentService) Vote(ctx context.Context, id string, vote models.VoteType) (*models.Comment, error) {
	if !vote.Valid() {
		return nil, fmt.Errorf("invalid vote type %q", vote)
	}

	var h cache.Handle
	applied := false
	if cur, ok := s.cache.Get(id); ok {
		var userID string
		if u := s.session.User(ctx); u != nil {
			userID = u.ID
		}
		h = s.cache.ApplyOptimistic(cache.Mutation{
			EntityID: id,
			Kind:     cache.MutationUpdate,
			Set:      voteGuess(cur, vote, userID),
		})
		applied = true
	}

	resp, err := call(ctx, s.client, s.retrier, api.Request{
		Method: http.MethodPost,
		Path:   api.CommentVotePath(id),
		Body:   map[string]string{"voteType": string(vote)},
	})
	if err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, err
	}

	var comment models.Comment
	if err := decodeWrapped(resp.Data, "comment", &comment); err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, fmt.Errorf("decode voted comment: %w", err)
	}

	if applied {
		s.cache.Commit(h, models.CommentFields(comment))
	} else {
		s.cache.Put(comment.ID, models.CommentFields(comment))
	}
	return &comment, nil
}

// Thread materializes a post's comment view from the cache in order.
func (s *commentService) Thread(postID string) []models.Comment {
	fields := s.cache.View(PostCommentsView(postID))
	out := make([]models.Comment, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.CommentFromFields(f))
	}
	return out
}
