package models

import (
	"net/url"
	"strconv"
	"strings"
)

// VoteType is the direction of a vote on a post or comment.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether v is one of the two accepted directions.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// PostFilter narrows and orders the posts list.
type PostFilter struct {
	Page     int
	Search   string
	Tags     []string
	AuthorID string
	SortBy   string // newest | oldest | mostVoted | mostCommented
	Trending bool
	Limit    int
}

// Query encodes the filter as request parameters; zero values are omitted.
func (f PostFilter) Query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}
	if f.AuthorID != "" {
		q.Set("authorId", f.AuthorID)
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.Trending {
		q.Set("trending", "true")
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// CommentFilter narrows and orders a comment thread.
type CommentFilter struct {
	Page   int
	SortBy string // newest | oldest | mostVoted
}

func (f CommentFilter) Query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	return q
}

// Paginated is the list envelope the backend wraps collections in.
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}
