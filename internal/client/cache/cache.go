// Package cache implements the normalized entity cache: one id-keyed map of
// entities per kind (posts, comments), ordered id lists for views (feed,
// per-post threads), and a pending-mutation ledger that makes optimistic
// updates deterministically committable or revertible.
package cache

import (
	"sync"

	"github.com/google/uuid"
)

// MutationKind tells the cache how to settle a pending mutation.
type MutationKind int

const (
	// MutationUpdate overlays field values on an existing entity.
	MutationUpdate MutationKind = iota
	// MutationCreate inserts a placeholder entity and prepends it to a view.
	MutationCreate
	// MutationDelete removes an entity from the map and all views.
	MutationDelete
)

// Mutation describes an optimistic change before the server confirms it.
type Mutation struct {
	EntityID string
	Kind     MutationKind

	// Set holds the values the mutation writes. For MutationCreate it is
	// the full placeholder entity; ignored for MutationDelete.
	Set Fields

	// View names the ordered list a created entity is prepended to.
	View string
}

// Handle identifies one pending mutation. Zero value is invalid.
type Handle struct {
	id uuid.UUID
}

type pendingMutation struct {
	entityID string
	kind     MutationKind
	fields   []string       // field names this mutation is authoritative for
	prev     Fields         // pre-mutation values of those fields
	entity   Fields         // full snapshot (delete) or placeholder (create)
	views    map[string]int // view -> index, for delete restore
	view     string         // create target view
}

// Cache is the store for one entity kind. All methods are safe for
// concurrent use.
type Cache struct {
	mu       sync.RWMutex
	entities map[string]Fields
	views    map[string][]string
	pending  map[uuid.UUID]*pendingMutation

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func New() *Cache {
	return &Cache{
		entities: make(map[string]Fields),
		views:    make(map[string][]string),
		pending:  make(map[uuid.UUID]*pendingMutation),
		subs:     make(map[int]func()),
	}
}

// Get returns a copy of the entity, or false if it is not cached.
func (c *Cache) Get(id string) (Fields, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.entities[id]
	if !ok {
		return nil, false
	}
	return f.Clone(), true
}

// Put stores the authoritative server snapshot of an entity, replacing any
// previous value wholesale. Fields held by pending mutations keep their
// optimistic values: the pending ledger settles them later.
func (c *Cache) Put(id string, f Fields) {
	c.mu.Lock()
	held := c.heldFields(id)
	stored := f.Clone()
	if cur, ok := c.entities[id]; ok {
		for name := range held {
			if v, exists := cur[name]; exists {
				stored[name] = v
			}
		}
	}
	c.entities[id] = stored
	c.mu.Unlock()
	c.notify()
}

// Remove drops an entity from the map and every view. Pending mutations on
// it are abandoned.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	delete(c.entities, id)
	for name, ids := range c.views {
		c.views[name] = removeID(ids, id)
	}
	c.mu.Unlock()
	c.notify()
}

// SetView replaces the ordered id list of a named view.
func (c *Cache) SetView(view string, ids []string) {
	c.mu.Lock()
	c.views[view] = append([]string(nil), ids...)
	c.mu.Unlock()
	c.notify()
}

// ViewIDs returns the ordered ids of a view.
func (c *Cache) ViewIDs(view string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.views[view]...)
}

// View materializes a view in order, skipping ids with no cached entity.
func (c *Cache) View(view string) []Fields {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.views[view]
	out := make([]Fields, 0, len(ids))
	for _, id := range ids {
		if f, ok := c.entities[id]; ok {
			out = append(out, f.Clone())
		}
	}
	return out
}

// Prepend puts id at the head of a view, removing any earlier occurrence.
// New entities always enter a view at the top; votes and edits never
// reorder.
func (c *Cache) Prepend(view, id string) {
	c.mu.Lock()
	c.views[view] = append([]string{id}, removeID(c.views[view], id)...)
	c.mu.Unlock()
	c.notify()
}

// ApplyOptimistic mutates visible state immediately and records what is
// needed to settle later. The returned handle must eventually be passed to
// Commit or Rollback.
func (c *Cache) ApplyOptimistic(m Mutation) Handle {
	c.mu.Lock()

	p := &pendingMutation{entityID: m.EntityID, kind: m.Kind, view: m.View}

	switch m.Kind {
	case MutationCreate:
		p.entity = m.Set.Clone()
		c.entities[m.EntityID] = m.Set.Clone()
		if m.View != "" {
			c.views[m.View] = append([]string{m.EntityID}, removeID(c.views[m.View], m.EntityID)...)
		}
	case MutationDelete:
		if cur, ok := c.entities[m.EntityID]; ok {
			p.entity = cur.Clone()
		}
		p.views = make(map[string]int)
		for name, ids := range c.views {
			for i, id := range ids {
				if id == m.EntityID {
					p.views[name] = i
					break
				}
			}
			c.views[name] = removeID(ids, m.EntityID)
		}
		delete(c.entities, m.EntityID)
	default: // MutationUpdate
		cur, ok := c.entities[m.EntityID]
		if !ok {
			cur = Fields{}
			c.entities[m.EntityID] = cur
		}
		p.fields = make([]string, 0, len(m.Set))
		for name := range m.Set {
			p.fields = append(p.fields, name)
		}
		p.prev = cur.pick(p.fields)
		for name, v := range m.Set.Clone() {
			cur[name] = v
		}
	}

	h := Handle{id: uuid.New()}
	c.pending[h.id] = p
	c.mu.Unlock()
	c.notify()
	return h
}

// Commit settles a pending mutation with the server's authoritative entity.
// Only the fields the mutation is authoritative for are merged, so pending
// mutations on other fields of the same entity are not clobbered; a field
// contested by several mutations ends up with the last-settled value.
func (c *Cache) Commit(h Handle, server Fields) {
	c.mu.Lock()
	p, ok := c.pending[h.id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, h.id)

	switch p.kind {
	case MutationCreate:
		serverID, _ := server["id"].(string)
		if serverID != "" && serverID != p.entityID {
			delete(c.entities, p.entityID)
			for name, ids := range c.views {
				c.views[name] = replaceID(ids, p.entityID, serverID)
			}
			c.entities[serverID] = server.Clone()
		} else {
			c.entities[p.entityID] = server.Clone()
		}
	case MutationDelete:
		// Entity already removed optimistically; nothing to merge.
	default:
		if cur, ok := c.entities[p.entityID]; ok && server != nil {
			authoritative := server.pick(p.fields)
			for name, v := range authoritative {
				if v == nil {
					continue
				}
				cur[name] = v
			}
		}
	}

	c.mu.Unlock()
	c.notify()
}

// Rollback restores the pre-mutation state for the fields the mutation
// touched, field for field, and discards the pending record.
func (c *Cache) Rollback(h Handle) {
	c.mu.Lock()
	p, ok := c.pending[h.id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, h.id)

	switch p.kind {
	case MutationCreate:
		delete(c.entities, p.entityID)
		for name, ids := range c.views {
			c.views[name] = removeID(ids, p.entityID)
		}
	case MutationDelete:
		if p.entity != nil {
			c.entities[p.entityID] = p.entity.Clone()
		}
		for name, idx := range p.views {
			c.views[name] = insertID(c.views[name], p.entityID, idx)
		}
	default:
		if cur, ok := c.entities[p.entityID]; ok {
			for name, v := range p.prev {
				if v == nil {
					delete(cur, name)
					continue
				}
				cur[name] = v
			}
		}
	}

	c.mu.Unlock()
	c.notify()
}

// PendingCount reports how many mutations are awaiting settlement.
func (c *Cache) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending)
}

// Subscribe registers fn to run after every visible change. The returned
// function removes the subscription; calling it twice is safe.
func (c *Cache) Subscribe(fn func()) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Cache) notify() {
	c.subMu.Lock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// heldFields collects the field names some pending mutation is authoritative
// for on the given entity. Callers must hold c.mu.
func (c *Cache) heldFields(id string) map[string]struct{} {
	held := make(map[string]struct{})
	for _, p := range c.pending {
		if p.entityID != id {
			continue
		}
		for _, name := range p.fields {
			held[name] = struct{}{}
		}
	}
	return held
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func replaceID(ids []string, old, updated string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == old {
			out = append(out, updated)
			continue
		}
		out = append(out, v)
	}
	return out
}

func insertID(ids []string, id string, idx int) []string {
	ids = removeID(ids, id)
	if idx < 0 {
		idx = 0
	}
	if idx > len(ids) {
		idx = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:idx]...)
	out = append(out, id)
	out = append(out, ids[idx:]...)
	return out
}
