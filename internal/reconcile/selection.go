package reconcile

// Selection records selected torrent ids independently of rows, so a row
// that is dropped and recreated for the same id keeps its selection. It also
// tracks the last clicked id, the anchor for range selection.
type Selection struct {
	ids       map[int]struct{}
	anchor    int
	hasAnchor bool
}

func NewSelection() *Selection {
	return &Selection{ids: map[int]struct{}{}}
}

// Select adds id and makes it the anchor.
func (s *Selection) Select(id int) {
	s.ids[id] = struct{}{}
	s.setAnchor(id)
}

func (s *Selection) Deselect(id int) {
	delete(s.ids, id)
}

// Toggle flips id, makes it the anchor, and reports the new state.
func (s *Selection) Toggle(id int) bool {
	s.setAnchor(id)
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// SelectOnly replaces the selection with id.
func (s *Selection) SelectOnly(id int) {
	s.ids = map[int]struct{}{id: {}}
	s.setAnchor(id)
}

// SelectRange selects every id between from and to inclusive, resolved
// against order, the current view order. When from is not in order only to is
// selected. The anchor is left at from.
func (s *Selection) SelectRange(from, to int, order []int) {
	fromIdx, toIdx := -1, -1
	for i, id := range order {
		if id == from {
			fromIdx = i
		}
		if id == to {
			toIdx = i
		}
	}
	if toIdx == -1 {
		return
	}
	if fromIdx == -1 {
		s.Select(to)
		return
	}
	lo, hi := min(fromIdx, toIdx), max(fromIdx, toIdx)
	for _, id := range order[lo : hi+1] {
		s.ids[id] = struct{}{}
	}
	s.setAnchor(from)
}

// ExtendTo selects the range from the anchor to id, or just id when there is
// no anchor yet.
func (s *Selection) ExtendTo(id int, order []int) {
	if !s.hasAnchor {
		s.Select(id)
		return
	}
	s.SelectRange(s.anchor, id, order)
}

func (s *Selection) SelectAll(order []int) {
	for _, id := range order {
		s.ids[id] = struct{}{}
	}
}

// DeselectAll clears the selection and the range anchor.
func (s *Selection) DeselectAll() {
	s.ids = map[int]struct{}{}
	s.anchor = 0
	s.hasAnchor = false
}

func (s *Selection) IsSelected(id int) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

func (s *Selection) Anchor() (int, bool) {
	return s.anchor, s.hasAnchor
}

// InOrder returns the selected ids that appear in order, in that order.
func (s *Selection) InOrder(order []int) []int {
	out := make([]int, 0, len(s.ids))
	for _, id := range order {
		if _, ok := s.ids[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *Selection) setAnchor(id int) {
	s.anchor = id
	s.hasAnchor = true
}
