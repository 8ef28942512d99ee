package listview

// Selection is an insertion-ordered set of row identifiers. It is not
// safe for concurrent use; the Controller guards its own instance.
type Selection[K comparable] struct {
	order []K
	keys  map[K]struct{}
}

// NewSelection returns an empty selection.
func NewSelection[K comparable]() *Selection[K] {
	return &Selection[K]{keys: make(map[K]struct{})}
}

// Add inserts id and reports whether it was new.
func (s *Selection[K]) Add(id K) bool {
	if _, ok := s.keys[id]; ok {
		return false
	}
	s.keys[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *Selection[K]) Remove(id K) bool {
	if _, ok := s.keys[id]; !ok {
		return false
	}
	delete(s.keys, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Toggle flips membership of id and returns whether it is now selected.
func (s *Selection[K]) Toggle(id K) bool {
	if s.Remove(id) {
		return false
	}
	s.Add(id)
	return true
}

// Has reports membership.
func (s *Selection[K]) Has(id K) bool {
	_, ok := s.keys[id]
	return ok
}

// Len returns the number of selected identifiers.
func (s *Selection[K]) Len() int {
	return len(s.order)
}

// Clear empties the selection.
func (s *Selection[K]) Clear() {
	s.order = nil
	s.keys = make(map[K]struct{})
}

// Replace makes the selection exactly ids, deduplicated, in order.
func (s *Selection[K]) Replace(ids []K) {
	s.Clear()
	for _, id := range ids {
		s.Add(id)
	}
}

// IDs returns a copy of the selected identifiers in insertion order.
func (s *Selection[K]) IDs() []K {
	out := make([]K, len(s.order))
	copy(out, s.order)
	return out
}
