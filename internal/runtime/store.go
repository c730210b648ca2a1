package runtime

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

// Store is the Tree Store: it owns the current forest and resolves IDs.
// The forest it holds is never modified in place; every successful mutation
// replaces it wholesale, so a forest obtained from View stays valid forever.
type Store struct {
	forest  domain.Forest
	version uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{forest: domain.Forest{}}
}

// Get returns a copy of the element with the given ID.
func (s *Store) Get(id string) (*domain.Node, error) {
	n := s.forest.Find(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	return n.Clone(), nil
}

// Contains reports whether id resolves in the current forest.
func (s *Store) Contains(id string) bool {
	return s.forest.Contains(id)
}

// Type returns the element type of id without copying the node.
func (s *Store) Type(id string) (domain.ElementType, bool) {
	n := s.forest.Find(id)
	if n == nil {
		return "", false
	}
	return n.Type, true
}

// Forest returns a deep copy of the current forest, safe to hand to collaborators.
func (s *Store) Forest() domain.Forest {
	return s.forest.Clone()
}

// View returns the current forest without copying. Callers must treat it as read-only.
func (s *Store) View() domain.Forest {
	return s.forest
}

// Version increases by one every time the forest is replaced.
func (s *Store) Version() uint64 {
	return s.version
}

// Len counts every element in the forest.
func (s *Store) Len() int {
	return s.forest.Len()
}

// Parent returns the ID of the container holding id ("" for a root element).
func (s *Store) Parent(id string) (string, error) {
	parent, ok := ParentOf(s.forest, id)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	return parent, nil
}

// Path returns the IDs of the containers enclosing id, outermost first.
func (s *Store) Path(id string) ([]string, error) {
	ids, ok := Ancestors(s.forest, id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	return ids, nil
}

func (s *Store) replace(f domain.Forest) {
	if f == nil {
		f = domain.Forest{}
	}
	s.forest = f
	s.version++
}
