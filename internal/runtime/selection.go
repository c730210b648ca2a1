package runtime

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

// Selection tracks at most one selected element.
type Selection struct {
	id string
}

// Select marks id as selected. It fails with domain.ErrNotFound when id does not
// resolve in the store.
func (s *Selection) Select(store *Store, id string) error {
	if !store.Contains(id) {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	s.id = id
	return nil
}

// Clear drops the selection unconditionally.
func (s *Selection) Clear() {
	s.id = ""
}

// Selected returns the selected ID, if any.
func (s *Selection) Selected() (string, bool) {
	return s.id, s.id != ""
}

// Reconcile clears the selection when it no longer resolves in the store.
// It reports whether the selection was cleared.
func (s *Selection) Reconcile(store *Store) bool {
	if s.id == "" || store.Contains(s.id) {
		return false
	}
	s.id = ""
	return true
}
