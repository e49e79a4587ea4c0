package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postFields(id string, votes int, votedBy []string) Fields {
	return Fields{
		"id":      id,
		"title":   "t-" + id,
		"votes":   votes,
		"votedBy": append([]string(nil), votedBy...),
	}
}

func TestPutGet_ReturnsCopies(t *testing.T) {
	c := New()
	c.Put("p1", postFields("p1", 3, []string{"u1"}))

	got, ok := c.Get("p1")
	require.True(t, ok)
	got["votes"] = 99
	got["votedBy"].([]string)[0] = "hacked"

	again, _ := c.Get("p1")
	assert.Equal(t, 3, again["votes"])
	assert.Equal(t, []string{"u1"}, again["votedBy"])
}

func TestViews_PrependAndOrder(t *testing.T) {
	c := New()
	c.Put("p1", postFields("p1", 0, nil))
	c.Put("p2", postFields("p2", 0, nil))
	c.SetView("feed", []string{"p1", "p2"})

	c.Put("p3", postFields("p3", 0, nil))
	c.Prepend("feed", "p3")

	assert.Equal(t, []string{"p3", "p1", "p2"}, c.ViewIDs("feed"))

	view := c.View("feed")
	require.Len(t, view, 3)
	assert.Equal(t, "p3", view[0]["id"])
}

func TestOptimisticUpdate_RollbackRestoresExactSnapshot(t *testing.T) {
	c := New()
	c.Put("p1", postFields("p1", 5, []string{"u9"}))

	h := c.ApplyOptimistic(Mutation{
		EntityID: "p1",
		Kind:     MutationUpdate,
		Set:      Fields{"votes": 6, "votedBy": []string{"u9", "u1"}},
	})

	mid, _ := c.Get("p1")
	assert.Equal(t, 6, mid["votes"])

	c.Rollback(h)

	after, _ := c.Get("p1")
	assert.Equal(t, 5, after["votes"])
	assert.Equal(t, []string{"u9"}, after["votedBy"])
	assert.Equal(t, 0, c.PendingCount())
}

func TestOptimisticUpdate_CommitUsesServerValues(t *testing.T) {
	c := New()
	c.Put("p1", postFields("p1", 5, nil))

	h := c.ApplyOptimistic(Mutation{
		EntityID: "p1",
		Kind:     MutationUpdate,
		Set:      Fields{"votes": 6},
	})

	// Server disagrees with the optimistic guess.
	c.Commit(h, postFields("p1", 8, []string{"u1"}))

	after, _ := c.Get("p1")
	assert.Equal(t, 8, after["votes"])
	assert.Equal(t, 0, c.PendingCount())
}

func TestConcurrentPending_SettleDoesNotClobberOtherFields(t *testing.T) {
	c := New()
	c.Put("p1", Fields{"id": "p1", "title": "old", "votes": 5})

	hVote := c.ApplyOptimistic(Mutation{
		EntityID: "p1", Kind: MutationUpdate, Set: Fields{"votes": 6},
	})
	hEdit := c.ApplyOptimistic(Mutation{
		EntityID: "p1", Kind: MutationUpdate, Set: Fields{"title": "new"},
	})

	// The vote settles with a server snapshot that still carries the old
	// title; the title must keep its optimistic value.
	c.Commit(hVote, Fields{"id": "p1", "title": "old", "votes": 6})

	mid, _ := c.Get("p1")
	assert.Equal(t, "new", mid["title"])
	assert.Equal(t, 6, mid["votes"])

	// Rolling back the edit must not disturb the committed vote.
	c.Rollback(hEdit)
	after, _ := c.Get("p1")
	assert.Equal(t, "old", after["title"])
	assert.Equal(t, 6, after["votes"])
}

func TestContestedField_LastSettledWins(t *testing.T) {
	c := New()
	c.Put("c1", Fields{"id": "c1", "votes": 0, "upvotes": 0, "downvotes": 0})

	up := c.ApplyOptimistic(Mutation{
		EntityID: "c1", Kind: MutationUpdate, Set: Fields{"votes": 1, "upvotes": 1},
	})
	down := c.ApplyOptimistic(Mutation{
		EntityID: "c1", Kind: MutationUpdate, Set: Fields{"votes": -1, "downvotes": 1},
	})

	// The down vote's response returns first; by the time the up vote's
	// response arrives the server has applied both, so its snapshot already
	// reflects the final (down) state. Last response to settle wins.
	c.Commit(down, Fields{"id": "c1", "votes": -1, "upvotes": 0, "downvotes": 1})
	c.Commit(up, Fields{"id": "c1", "votes": -1, "upvotes": 0, "downvotes": 1})

	after, _ := c.Get("c1")
	assert.Equal(t, -1, after["votes"])
	assert.Equal(t, 1, after["downvotes"])
	assert.Equal(t, 0, c.PendingCount())
}

func TestCreate_CommitSwapsPlaceholderID(t *testing.T) {
	c := New()
	c.SetView("feed", []string{"p1"})

	h := c.ApplyOptimistic(Mutation{
		EntityID: "local-1",
		Kind:     MutationCreate,
		Set:      Fields{"id": "local-1", "title": "draft"},
		View:     "feed",
	})

	assert.Equal(t, []string{"local-1", "p1"}, c.ViewIDs("feed"))

	c.Commit(h, Fields{"id": "p2", "title": "draft"})

	assert.Equal(t, []string{"p2", "p1"}, c.ViewIDs("feed"))
	_, ok := c.Get("local-1")
	assert.False(t, ok)
	got, ok := c.Get("p2")
	require.True(t, ok)
	assert.Equal(t, "draft", got["title"])
}

func TestCreate_RollbackRemovesPlaceholder(t *testing.T) {
	c := New()
	c.SetView("feed", []string{"p1"})

	h := c.ApplyOptimistic(Mutation{
		EntityID: "local-1",
		Kind:     MutationCreate,
		Set:      Fields{"id": "local-1", "title": "draft"},
		View:     "feed",
	})
	c.Rollback(h)

	assert.Equal(t, []string{"p1"}, c.ViewIDs("feed"))
	_, ok := c.Get("local-1")
	assert.False(t, ok)
}

func TestDelete_RollbackRestoresEntityAndPosition(t *testing.T) {
	c := New()
	for _, id := range []string{"p1", "p2", "p3"} {
		c.Put(id, postFields(id, 0, nil))
	}
	c.SetView("feed", []string{"p1", "p2", "p3"})

	h := c.ApplyOptimistic(Mutation{EntityID: "p2", Kind: MutationDelete})

	assert.Equal(t, []string{"p1", "p3"}, c.ViewIDs("feed"))
	_, ok := c.Get("p2")
	assert.False(t, ok)

	c.Rollback(h)

	assert.Equal(t, []string{"p1", "p2", "p3"}, c.ViewIDs("feed"))
	restored, ok := c.Get("p2")
	require.True(t, ok)
	assert.Equal(t, "t-p2", restored["title"])
}

func TestDelete_CommitDiscardsPending(t *testing.T) {
	c := New()
	c.Put("p1", postFields("p1", 0, nil))
	c.SetView("feed", []string{"p1"})

	h := c.ApplyOptimistic(Mutation{EntityID: "p1", Kind: MutationDelete})
	c.Commit(h, nil)

	assert.Empty(t, c.ViewIDs("feed"))
	assert.Equal(t, 0, c.PendingCount())
}

func TestPut_PreservesFieldsHeldByPendingMutations(t *testing.T) {
	c := New()
	c.Put("p1", Fields{"id": "p1", "title": "old", "votes": 5})

	h := c.ApplyOptimistic(Mutation{
		EntityID: "p1", Kind: MutationUpdate, Set: Fields{"votes": 6},
	})

	// A concurrent list refresh delivers a stale snapshot; the pending
	// vote's field must keep its optimistic value until it settles.
	c.Put("p1", Fields{"id": "p1", "title": "refreshed", "votes": 5})

	mid, _ := c.Get("p1")
	assert.Equal(t, "refreshed", mid["title"])
	assert.Equal(t, 6, mid["votes"])

	c.Rollback(h)
	after, _ := c.Get("p1")
	assert.Equal(t, 5, after["votes"])
}

func TestSubscribe_NotifiedOnChangesAndUnsubscribeStops(t *testing.T) {
	c := New()

	calls := 0
	unsub := c.Subscribe(func() { calls++ })

	c.Put("p1", postFields("p1", 0, nil))
	assert.Equal(t, 1, calls)

	h := c.ApplyOptimistic(Mutation{
		EntityID: "p1", Kind: MutationUpdate, Set: Fields{"votes": 1},
	})
	assert.Equal(t, 2, calls)

	c.Rollback(h)
	assert.Equal(t, 3, calls)

	unsub()
	unsub() // safe to call twice

	c.Put("p2", postFields("p2", 0, nil))
	assert.Equal(t, 3, calls)
}

func TestSettleUnknownHandleIsNoOp(t *testing.T) {
	c := New()
	c.Put("p1", postFields("p1", 1, nil))

	c.Commit(Handle{}, postFields("p1", 9, nil))
	c.Rollback(Handle{})

	got, _ := c.Get("p1")
	assert.Equal(t, 1, got["votes"])
}
