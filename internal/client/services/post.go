package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/cache"
	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/client/session"
	"github.com/avolkovs/threadly/internal/logging"
)

// Cache view names owned by the post service.
const (
	FeedView     = "feed"
	TrendingView = "trending"
)

// UserPostsView names the per-author view of a user's posts.
func UserPostsView(userID string) string { return "user:" + userID }

// PostService defines the post operations of the client.
//
// Contract:
//   - List/Get/ByUser/Trending: fetch posts and refresh the entity cache; the
//     list variants also replace their named view.
//   - Create: optimistic insert at the head of the feed, settled against the
//     server's entity (the placeholder id is swapped for the real one).
//   - Update/Delete: optimistic, settled on the server response.
//   - ToggleLike: optimistic flip, sent exactly once.
//   - Vote: optimistic count adjustment, re-attempted on transport failures
//     and rolled back field-for-field when the request ultimately fails.
type PostService interface {
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	ByUser(ctx context.Context, userID string, page int) ([]models.Post, error)
	Trending(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, in CreatePostInput) (*models.Post, error)
	Update(ctx context.Context, id string, in UpdatePostInput) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id string) (*models.Post, error)
	Vote(ctx context.Context, id string, vote models.VoteType) (*models.Post, error)
	Feed() []models.Post
	Cached(id string) (*models.Post, bool)
}

// CreatePostInput carries the creation form; Image is optional.
type CreatePostInput struct {
	Title     string
	Content   string
	Tags      []string
	ImageName string
	Image     []byte
}

// UpdatePostInput carries a partial edit; nil fields are left untouched.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Tags    []string
	Image   []byte
	// ImageName names the uploaded file when Image is set.
	ImageName string
}

type postService struct {
	client  *api.Client
	retrier *api.Retrier
	cache   *cache.Cache
	session *session.Store
	log     logging.Logger
}

// NewPostService constructs a PostService writing through the given cache.
func NewPostService(client *api.Client, retrier *api.Retrier, c *cache.Cache, sess *session.Store, log logging.Logger) PostService {
	return &postService{client: client, retrier: retrier, cache: c, session: sess, log: log}
}

func (s *postService) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	return s.fetchInto(ctx, api.PostsPath(), filter.Query(), FeedView)
}

func (s *postService) ByUser(ctx context.Context, userID string, page int) ([]models.Post, error) {
	filter := models.PostFilter{Page: page}
	return s.fetchInto(ctx, api.PostsByUserPath(userID), filter.Query(), UserPostsView(userID))
}

func (s *postService) Trending(ctx context.Context) ([]models.Post, error) {
	filter := models.PostFilter{Trending: true}
	return s.fetchInto(ctx, api.PostsPath(), filter.Query(), TrendingView)
}

func (s *postService) fetchInto(ctx context.Context, path string, query url.Values, view string) ([]models.Post, error) {
	resp, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodGet,
		Path:       path,
		Query:      query,
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	var page models.Paginated[models.Post]
	if err := decodeList(resp.Data, &page); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	ids := make([]string, 0, len(page.Data))
	for _, p := range page.Data {
		s.cache.Put(p.ID, models.PostFields(p))
		ids = append(ids, p.ID)
	}
	s.cache.SetView(view, ids)
	return page.Data, nil
}

func (s *postService) Get(ctx context.Context, id string) (*models.Post, error) {
	resp, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodGet,
		Path:       api.PostPath(id),
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := decodeWrapped(resp.Data, "post", &post); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	s.cache.Put(post.ID, models.PostFields(post))
	return &post, nil
}

// Create inserts a placeholder post at the head of the feed and sends the
// multipart form exactly once: a blind re-send could create the post twice.
func (s *postService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	tags, err := jsonField(in.Tags)
	if err != nil {
		return nil, err
	}

	placeholder := models.Post{
		ID:      "pending-" + uuid.NewString(),
		Title:   in.Title,
		Content: in.Content,
		Tags:    append([]string(nil), in.Tags...),
	}
	if u := s.session.User(ctx); u != nil {
		placeholder.Author = *u
	}

	h := s.cache.ApplyOptimistic(cache.Mutation{
		EntityID: placeholder.ID,
		Kind:     cache.MutationCreate,
		Set:      models.PostFields(placeholder),
		View:     FeedView,
	})

	req := api.Request{
		Method: http.MethodPost,
		Path:   api.PostsPath(),
		Form: map[string]string{
			"title":   in.Title,
			"content": in.Content,
			"tags":    tags,
		},
	}
	if len(in.Image) > 0 {
		req.Files = []api.FilePart{{Field: "image", Name: in.ImageName, Content: in.Image}}
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		s.cache.Rollback(h)
		return nil, err
	}

	var post models.Post
	if err := decodeWrapped(resp.Data, "post", &post); err != nil {
		s.cache.Rollback(h)
		return nil, fmt.Errorf("decode created post: %w", err)
	}

	s.cache.Commit(h, models.PostFields(post))
	return &post, nil
}

func (s *postService) Update(ctx context.Context, id string, in UpdatePostInput) (*models.Post, error) {
	form := map[string]string{}
	set := cache.Fields{}
	if in.Title != nil {
		form["title"] = *in.Title
		set[models.FieldTitle] = *in.Title
	}
	if in.Content != nil {
		form["content"] = *in.Content
		set[models.FieldContent] = *in.Content
	}
	if in.Tags != nil {
		tags, err := jsonField(in.Tags)
		if err != nil {
			return nil, err
		}
		form["tags"] = tags
		set[models.FieldTags] = append([]string(nil), in.Tags...)
	}

	var h cache.Handle
	applied := false
	if _, ok := s.cache.Get(id); ok && len(set) > 0 {
		h = s.cache.ApplyOptimistic(cache.Mutation{EntityID: id, Kind: cache.MutationUpdate, Set: set})
		applied = true
	}

	req := api.Request{
		Method:     http.MethodPut,
		Path:       api.PostPath(id),
		Form:       form,
		Idempotent: true,
	}
	if len(in.Image) > 0 {
		req.Files = []api.FilePart{{Field: "image", Name: in.ImageName, Content: in.Image}}
	}

	resp, err := call(ctx, s.client, s.retrier, req)
	if err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, err
	}

	var post models.Post
	if err := decodeWrapped(resp.Data, "post", &post); err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, fmt.Errorf("decode updated post: %w", err)
	}

	if applied {
		s.cache.Commit(h, models.PostFields(post))
	} else {
		s.cache.Put(post.ID, models.PostFields(post))
	}
	return &post, nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	h := s.cache.ApplyOptimistic(cache.Mutation{EntityID: id, Kind: cache.MutationDelete})

	_, err := call(ctx, s.client, s.retrier, api.Request{
		Method:     http.MethodDelete,
		Path:       api.PostPath(id),
		Idempotent: true,
	})
	if err != nil {
		s.cache.Rollback(h)
		return err
	}

	s.cache.Commit(h, nil)
	return nil
}

// ToggleLike flips the current user's membership in the post's liked-by set.
// The request is sent exactly once: a toggle re-sent after a lost response
// would flip the like back.
func (s *postService) ToggleLike(ctx context.Context, id string) (*models.Post, error) {
	var h cache.Handle
	applied := false
	if cur, ok := s.cache.Get(id); ok {
		if u := s.session.User(ctx); u != nil {
			liked := models.PostFromFields(cur).LikedBy
			if contains(liked, u.ID) {
				liked = without(liked, u.ID)
			} else {
				liked = append(append([]string(nil), liked...), u.ID)
			}
			h = s.cache.ApplyOptimistic(cache.Mutation{
				EntityID: id,
				Kind:     cache.MutationUpdate,
				Set:      cache.Fields{models.FieldLikedBy: liked},
			})
			applied = true
		}
	}

	resp, err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   api.PostLikePath(id),
	})
	if err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, err
	}

	var post models.Post
	if err := decodeWrapped(resp.Data, "post", &post); err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, fmt.Errorf("decode liked post: %w", err)
	}

	if applied {
		s.cache.Commit(h, models.PostFields(post))
	} else {
		s.cache.Put(post.ID, models.PostFields(post))
	}
	return &post, nil
}

// Vote adjusts the post's counts optimistically and sends the vote through
// the retrier: transport-level failures are re-attempted, HTTP errors are
// not. On final failure the pre-vote counts are restored exactly.
func (s *postService) Vote(ctx context.Context, id string, vote models.VoteType) (*models.Post, error) {
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
		Path:   api.PostVotePath(id),
		Body:   map[string]string{"type": string(vote)},
	})
	if err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, err
	}

	var post models.Post
	if err := decodeWrapped(resp.Data, "post", &post); err != nil {
		if applied {
			s.cache.Rollback(h)
		}
		return nil, fmt.Errorf("decode voted post: %w", err)
	}

	if applied {
		s.cache.Commit(h, models.PostFields(post))
	} else {
		s.cache.Put(post.ID, models.PostFields(post))
	}
	return &post, nil
}

// Feed materializes the feed view from the cache in order.
func (s *postService) Feed() []models.Post {
	fields := s.cache.View(FeedView)
	out := make([]models.Post, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.PostFromFields(f))
	}
	return out
}

// Cached returns the cached post without touching the network.
func (s *postService) Cached(id string) (*models.Post, bool) {
	f, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	p := models.PostFromFields(f)
	return &p, true
}

// voteGuess computes the client's guess at the post-vote counts. The server
// snapshot supplied to Commit is authoritative; this only has to be a
// plausible immediate value.
func voteGuess(cur cache.Fields, vote models.VoteType, userID string) cache.Fields {
	votes, _ := cur[models.FieldVotes].(int)
	ups, _ := cur[models.FieldUpVotes].(int)
	downs, _ := cur[models.FieldDownVotes].(int)
	votedBy, _ := cur[models.FieldVotedBy].([]string)

	if vote == models.VoteUp {
		votes++
		ups++
	} else {
		votes--
		downs++
	}
	if userID != "" && !contains(votedBy, userID) {
		votedBy = append(append([]string(nil), votedBy...), userID)
	}

	return cache.Fields{
		models.FieldVotes:     votes,
		models.FieldUpVotes:   ups,
		models.FieldDownVotes: downs,
		models.FieldVotedBy:   votedBy,
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
