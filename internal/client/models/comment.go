package models

import (
	"time"

	"github.com/avolkovs/threadly/internal/client/cache"
)

// Comment is the canonical comment entity, tied to a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	Author    User      `json:"author"`
	Votes     int       `json:"votes"`
	UpVotes   int       `json:"upvotes"`
	DownVotes int       `json:"downvotes"`
	VotedBy   []string  `json:"votedBy"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// CommentFields flattens a Comment into the cache representation.
func CommentFields(c Comment) cache.Fields {
	return cache.Fields{
		FieldID:        c.ID,
		FieldPostID:    c.PostID,
		FieldContent:   c.Content,
		FieldAuthor:    c.Author,
		FieldVotes:     c.Votes,
		FieldUpVotes:   c.UpVotes,
		FieldDownVotes: c.DownVotes,
		FieldVotedBy:   append([]string(nil), c.VotedBy...),
		FieldCreatedAt: c.CreatedAt,
		FieldUpdatedAt: c.UpdatedAt,
	}
}

// CommentFromFields rebuilds the typed Comment from cached fields.
func CommentFromFields(f cache.Fields) Comment {
	c := Comment{
		ID:        str(f, FieldID),
		PostID:    str(f, FieldPostID),
		Content:   str(f, FieldContent),
		Votes:     integer(f, FieldVotes),
		UpVotes:   integer(f, FieldUpVotes),
		DownVotes: integer(f, FieldDownVotes),
		VotedBy:   strs(f, FieldVotedBy),
		CreatedAt: stamp(f, FieldCreatedAt),
		UpdatedAt: stamp(f, FieldUpdatedAt),
	}
	if a, ok := f[FieldAuthor].(User); ok {
		c.Author = a
	}
	return c
}
