package vault

import (
	"strings"

	"github.com/google/uuid"
)

// pendingIDPrefix marks client-generated ids that have not been
// confirmed by the server. Pending ids are never sent to the server.
const pendingIDPrefix = "pending-"

// NewPendingID generates a fresh id in the pending namespace.
func NewPendingID() string {
	return pendingIDPrefix + uuid.NewString()
}

// IsPendingID reports whether id belongs to the pending namespace.
func IsPendingID(id string) bool {
	return strings.HasPrefix(id, pendingIDPrefix)
}

// ItemStore holds the merged view of all media items: local-only,
// in-flight, and confirmed-remote, keyed by id in insertion order. A
// distinguished subset of pending ids awaits server confirmation.
//
// The store itself is not safe for concurrent use; the Engine guards
// it with its own mutex so that pending-id resolution can update the
// store and the folder index as one unit.
type ItemStore struct {
	order   []string
	items   map[string]MediaItem
	pending map[string]struct{}
}

// NewItemStore returns an empty store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items:   make(map[string]MediaItem),
		pending: make(map[string]struct{}),
	}
}

// Len returns the number of items, soft-deleted included.
func (s *ItemStore) Len() int {
	return len(s.order)
}

// Get returns the item with the given id.
func (s *ItemStore) Get(id string) (MediaItem, bool) {
	item, ok := s.items[id]
	return item, ok
}

// UpsertLocal inserts item, or replaces it when the id already exists.
// New items keep insertion order.
func (s *ItemStore) UpsertLocal(item MediaItem) {
	if _, ok := s.items[item.ID]; !ok {
		s.order = append(s.order, item.ID)
	}

	s.items[item.ID] = item
}

// Apply mutates the stored item with the given id in place. Returns
// false when the id is absent.
func (s *ItemStore) Apply(id string, fn func(*MediaItem)) bool {
	item, ok := s.items[id]
	if !ok {
		return false
	}

	fn(&item)
	item.ID = id // the key is authoritative, fn must not change it
	s.items[id] = item

	return true
}

// MarkPending adds id to the pending set. The item must already exist.
func (s *ItemStore) MarkPending(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}

	s.pending[id] = struct{}{}

	return true
}

// IsPending reports whether id is awaiting server confirmation.
func (s *ItemStore) IsPending(id string) bool {
	_, ok := s.pending[id]
	return ok
}

// PendingIDs returns the pending set as a map for reconciliation.
func (s *ItemStore) PendingIDs() map[string]bool {
	out := make(map[string]bool, len(s.pending))
	for id := range s.pending {
		out[id] = true
	}

	return out
}

// ResolvePending replaces pendingID with confirmedID, keeping the
// item's position in the order. When confirmedID already exists (the
// remote listing arrived before the confirmation), the pending entry
// is dropped in favour of the existing confirmed item.
//
// The caller must rewrite every other structure referencing pendingID
// (folder membership, selections) in the same logical step.
func (s *ItemStore) ResolvePending(pendingID, confirmedID string) bool {
	item, ok := s.items[pendingID]
	if !ok {
		return false
	}

	delete(s.pending, pendingID)
	delete(s.items, pendingID)

	if _, exists := s.items[confirmedID]; exists {
		// Drop the pending duplicate from the order.
		s.order = removeString(s.order, pendingID)
		return true
	}

	item.ID = confirmedID
	s.items[confirmedID] = item

	for i, id := range s.order {
		if id == pendingID {
			s.order[i] = confirmedID
			break
		}
	}

	return true
}

// SoftDelete marks the item deleted at the given instant without
// removing the row. Already-deleted items keep their original marker.
func (s *ItemStore) SoftDelete(id string, at int64) bool {
	item, ok := s.items[id]
	if !ok {
		return false
	}

	if item.DeletedAt == 0 {
		item.DeletedAt = at
		s.items[id] = item
	}

	return true
}

// Remove purges the item entirely. Only reconciliation calls this,
// after the remote service confirmed the item no longer exists there.
func (s *ItemStore) Remove(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}

	delete(s.items, id)
	delete(s.pending, id)
	s.order = removeString(s.order, id)

	return true
}

// All returns every item in insertion order, soft-deleted included.
func (s *ItemStore) All() []MediaItem {
	out := make([]MediaItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}

	return out
}

// Visible returns every item that is not soft-deleted, in insertion
// order.
func (s *ItemStore) Visible() []MediaItem {
	out := make([]MediaItem, 0, len(s.order))

	for _, id := range s.order {
		if item := s.items[id]; !item.Deleted() {
			out = append(out, item)
		}
	}

	return out
}

// VisibleIDs returns the id set of Visible as a map.
func (s *ItemStore) VisibleIDs() map[string]bool {
	out := make(map[string]bool, len(s.order))

	for _, id := range s.order {
		if !s.items[id].Deleted() {
			out[id] = true
		}
	}

	return out
}

// ReplaceAll swaps in a freshly merged item list, keeping pending
// marks for ids that survived the merge.
func (s *ItemStore) ReplaceAll(items []MediaItem) {
	order := make([]string, 0, len(items))
	byID := make(map[string]MediaItem, len(items))

	for _, item := range items {
		if _, dup := byID[item.ID]; dup {
			continue
		}

		order = append(order, item.ID)
		byID[item.ID] = item
	}

	for id := range s.pending {
		if _, ok := byID[id]; !ok {
			delete(s.pending, id)
		}
	}

	s.order = order
	s.items = byID
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}

	return list
}
