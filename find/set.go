package find

import (
	"sort"

	"github.com/rob-gra/gridsim-core/object"
)

// Set is a compiled program's result: the object ids that survived every
// instruction. The original represents this as a dense bitset, one bit per
// object id (find_runpgm flips bits in place over the whole id space); a
// Go map achieves the same "flip membership as instructions run" behavior
// without committing to a fixed id range up front, which matters here
// because ids are allocated by object.Store rather than known in advance.
type Set struct {
	ids map[object.ID]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set { return &Set{ids: make(map[object.ID]struct{})} }

// Add inserts id into the set.
func (s *Set) Add(id object.ID) { s.ids[id] = struct{}{} }

// Remove deletes id from the set.
func (s *Set) Remove(id object.ID) { delete(s.ids, id) }

// Contains reports whether id is a member.
func (s *Set) Contains(id object.ID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.ids) }

// IDs returns the set's members in ascending order, the Go equivalent of
// iterating a bitset from find_first through find_next.
func (s *Set) IDs() []object.ID {
	out := make([]object.ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Objects resolves the set's members against store, in ascending id order,
// skipping any id the store no longer recognizes.
func (s *Set) Objects(store *object.Store) []*object.Object {
	out := make([]*object.Object, 0, len(s.ids))
	for _, id := range s.IDs() {
		if o, ok := store.ByID(id); ok {
			out = append(out, o)
		}
	}
	return out
}
