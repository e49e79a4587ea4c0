package models

import (
	"time"

	"github.com/avolkovs/threadly/internal/client/cache"
)

// Post is the canonical post entity.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Author    User      `json:"author"`
	Votes     int       `json:"votes"`
	UpVotes   int       `json:"upvotes"`
	DownVotes int       `json:"downvotes"`
	VotedBy   []string  `json:"votedBy"`
	LikedBy   []string  `json:"likedBy"`
	ImageURL  string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Post field names as stored in the entity cache.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldTags      = "tags"
	FieldAuthor    = "author"
	FieldVotes     = "votes"
	FieldUpVotes   = "upvotes"
	FieldDownVotes = "downvotes"
	FieldVotedBy   = "votedBy"
	FieldLikedBy   = "likedBy"
	FieldImage     = "image"
	FieldPostID    = "postId"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// PostFields flattens a Post into the cache representation.
func PostFields(p Post) cache.Fields {
	return cache.Fields{
		FieldID:        p.ID,
		FieldTitle:     p.Title,
		FieldContent:   p.Content,
		FieldTags:      append([]string(nil), p.Tags...),
		FieldAuthor:    p.Author,
		FieldVotes:     p.Votes,
		FieldUpVotes:   p.UpVotes,
		FieldDownVotes: p.DownVotes,
		FieldVotedBy:   append([]string(nil), p.VotedBy...),
		FieldLikedBy:   append([]string(nil), p.LikedBy...),
		FieldImage:     p.ImageURL,
		FieldCreatedAt: p.CreatedAt,
		FieldUpdatedAt: p.UpdatedAt,
	}
}

// PostFromFields rebuilds the typed Post from cached fields. Unset or
// mistyped fields come back as zero values.
func PostFromFields(f cache.Fields) Post {
	p := Post{
		ID:        str(f, FieldID),
		Title:     str(f, FieldTitle),
		Content:   str(f, FieldContent),
		ImageURL:  str(f, FieldImage),
		Votes:     integer(f, FieldVotes),
		UpVotes:   integer(f, FieldUpVotes),
		DownVotes: integer(f, FieldDownVotes),
		Tags:      strs(f, FieldTags),
		VotedBy:   strs(f, FieldVotedBy),
		LikedBy:   strs(f, FieldLikedBy),
		CreatedAt: stamp(f, FieldCreatedAt),
		UpdatedAt: stamp(f, FieldUpdatedAt),
	}
	if a, ok := f[FieldAuthor].(User); ok {
		p.Author = a
	}
	return p
}

func str(f cache.Fields, name string) string {
	v, _ := f[name].(string)
	return v
}

func strs(f cache.Fields, name string) []string {
	v, _ := f[name].([]string)
	return v
}

func integer(f cache.Fields, name string) int {
	v, _ := f[name].(int)
	return v
}

func stamp(f cache.Fields, name string) time.Time {
	v, _ := f[name].(time.Time)
	return v
}
