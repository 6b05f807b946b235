package publication

// Selected is the part of a publication kept while it is selected.
type Selected struct {
	ID     string
	Title  string
	Status Status
}

// Selection is an insertion-ordered set of selected publications.
type Selection struct {
	order []string
	items map[string]Selected
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{items: make(map[string]Selected)}
}

// Toggle adds p if absent, otherwise removes it. It reports whether p is selected afterwards.
func (s *Selection) Toggle(p Publication) bool {
	if s.Has(p.ID) {
		s.Remove(p.ID)
		return false
	}
	s.order = append(s.order, p.ID)
	s.items[p.ID] = Selected{ID: p.ID, Title: p.Title, Status: p.Status}
	return true
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.items[id]
	return ok
}

// Refresh updates the stored title and status of an already selected publication.
func (s *Selection) Refresh(p Publication) {
	if !s.Has(p.ID) {
		return
	}
	s.items[p.ID] = Selected{ID: p.ID, Title: p.Title, Status: p.Status}
}

// Remove drops id from the selection.
func (s *Selection) Remove(id string) {
	if !s.Has(id) {
		return
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.order = nil
	s.items = make(map[string]Selected)
}

// Len returns the number of selected publications.
func (s *Selection) Len() int { return len(s.order) }

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.order...)
}

// Items returns the selected entries in selection order.
func (s *Selection) Items() []Selected {
	out := make([]Selected, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}
