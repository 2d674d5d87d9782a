package object

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/rob-gra/gridsim-core/class"
	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/timestamp"
)

// Store holds every object created during model load or at runtime: a flat
// list plus the id and name auxiliary indices (spec §4.4). The object list
// is populated only at model-build time and is read-only during sync
// (spec §5's shared-resource policy) — Store does not itself enforce that,
// it is a convention the scheduler upholds by never calling CreateObject
// from inside a sync pass.
type Store struct {
	mu      sync.Mutex // guards the indices and locks below only, never a sync pass
	objects []*Object
	byID    map[ID]*Object
	byName  map[string]*Object
	locks   map[ID]*sync.Mutex
	nextID  ID

	passOrder   []*Object // cached rank-ascending order
	passOrderOK bool
}

// NewStore returns an empty object store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[ID]*Object),
		byName: make(map[string]*Object),
		locks:  make(map[ID]*sync.Mutex),
		nextID: 1,
	}
}

// CreateObject allocates a new object of class c, with an optional parent.
// rank is the object's own requested baseline (0 for most objects); the
// final rank is max(rank, rank(parent)+1) per spec §4.4's "walking the
// chain at creation" rule. Returns kernelerr.ErrNotFound if parent is set
// but unknown, and kernelerr.ErrOutOfMemory on id/allocation exhaustion
// (never triggered at Go's address space, kept for interface symmetry with
// spec §7's documented failure modes).
func (s *Store) CreateObject(c *class.Class, parent ID, rank int) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextID == Invalid {
		return nil, kernelerr.Wrap(kernelerr.ErrOutOfMemory, "object id space exhausted")
	}

	var parentObj *Object
	if parent != Invalid {
		po, ok := s.byID[parent]
		if !ok {
			return nil, kernelerr.Wrapf(kernelerr.ErrNotFound, "parent object %d does not exist", parent)
		}
		parentObj = po
		if rank < parentObj.Rank+1 {
			rank = parentObj.Rank + 1
		}
	}

	o := &Object{
		ID:     s.nextID,
		Parent: parent,
		Rank:   rank,
		Clock:  timestamp.Zero,
		OutSvc: timestamp.Never,
		Class:  c,
	}
	if c != nil {
		o.Body = make([]byte, c.Size)
	}

	s.nextID++
	s.objects = append(s.objects, o)
	s.byID[o.ID] = o
	s.locks[o.ID] = &sync.Mutex{}
	s.passOrderOK = false
	return o, nil
}

// SetName assigns o a globally unique name, failing with
// kernelerr.ErrInvalidArgument if name is already taken by another object
// (spec §3's "name, if set, is globally unique" invariant).
func (s *Store) SetName(o *Object, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byName[name]; ok && existing != o {
		return kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "object name %q is already in use", name)
	}
	if o.Name != "" {
		delete(s.byName, o.Name)
	}
	o.Name = name
	s.byName[name] = o
	return nil
}

// ByID looks up an object by id.
func (s *Store) ByID(id ID) (*Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	return o, ok
}

// ByName looks up an object by its unique name.
func (s *Store) ByName(name string) (*Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byName[name]
	return o, ok
}

// All returns every object in creation order.
func (s *Store) All() []*Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Lock acquires o's per-object lock word. Only modules that opt in via
// OFLocked are expected to call this; the kernel's own bookkeeping never
// does (spec §5's shared-resource policy).
func (s *Store) Lock(o *Object) {
	s.mu.Lock()
	l := s.locks[o.ID]
	s.mu.Unlock()
	l.Lock()
	o.Flags |= OFLocked
}

// Unlock releases o's per-object lock word.
func (s *Store) Unlock(o *Object) {
	s.mu.Lock()
	l := s.locks[o.ID]
	s.mu.Unlock()
	o.Flags &^= OFLocked
	l.Unlock()
}

// ForEachPass visits every object in non-decreasing rank order for
// bottom-up/pre-topdown passes, calling fn once per object;
// ForEachPassTopDown walks the same order in reverse (spec §5's ordering
// guarantee: "parents before children on bottom-up; children before
// parents on top-down"). The rank-sorted order is cached and only
// re-sorted after a CreateObject call changes it, since ranks never change
// after creation (spec §3) and objects are created far less often than
// they are synced.
func (s *Store) ForEachPass(fn func(*Object) error) error {
	s.mu.Lock()
	if !s.passOrderOK {
		ordered := make([]*Object, len(s.objects))
		copy(ordered, s.objects)
		slices.SortFunc(ordered, func(a, b *Object) bool { return a.Rank < b.Rank })
		s.passOrder = ordered
		s.passOrderOK = true
	}
	ordered := s.passOrder
	s.mu.Unlock()

	for _, o := range ordered {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}

// ForEachPassTopDown visits every object in non-increasing rank order.
func (s *Store) ForEachPassTopDown(fn func(*Object) error) error {
	s.mu.Lock()
	if !s.passOrderOK {
		ordered := make([]*Object, len(s.objects))
		copy(ordered, s.objects)
		slices.SortFunc(ordered, func(a, b *Object) bool { return a.Rank < b.Rank })
		s.passOrder = ordered
		s.passOrderOK = true
	}
	ordered := s.passOrder
	s.mu.Unlock()

	for i := len(ordered) - 1; i >= 0; i-- {
		if err := fn(ordered[i]); err != nil {
			return err
		}
	}
	return nil
}
