package reconcile

import (
	"fmt"
	"slices"

	"tremote/internal/logging"
	"tremote/internal/torrents"
	"tremote/internal/types"
)

type Params struct {
	Filter torrents.Filter
	Sort   torrents.Sort
}

type Counts struct {
	Total   int
	Visible int
}

// Result describes one reconciliation pass. The operation counters count
// calls made on the Display.
type Result struct {
	Counts
	Full      bool
	Dirty     int
	Created   int
	Destroyed int
	Detached  int
	Inserted  int
	Errors    []error
}

// Ops is the total number of structural display operations issued.
func (r Result) Ops() int {
	return r.Created + r.Destroyed + r.Detached + r.Inserted
}

type EngineOption func(*Engine)

func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine keeps an ordered row sequence consistent with a Store, a Filter and
// a Sort while touching as few display handles as possible. Rows that are not
// dirty keep their handle and their relative order across passes.
type Engine struct {
	store     *torrents.Store
	display   Display
	selection *Selection
	logger    logging.Logger

	rows []*Row
	byID map[int]*Row
}

func NewEngine(store *torrents.Store, display Display, selection *Selection, opts ...EngineOption) *Engine {
	if selection == nil {
		selection = NewSelection()
	}
	e := &Engine{
		store:     store,
		display:   display,
		selection: selection,
		logger:    logging.Nop(),
		byID:      map[int]*Row{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Reconcile consumes the store's dirty set and updates the row sequence.
// With full set every known id and every row is treated as dirty.
func (e *Engine) Reconcile(params Params, full bool) Result {
	result := Result{Full: full}
	if full {
		e.store.MarkAllDirty()
	}
	dirty := e.store.TakeDirty()
	if full {
		for _, row := range e.rows {
			dirty[row.id] = struct{}{}
		}
	}
	result.Dirty = len(dirty)

	if len(dirty) == 0 {
		result.Counts = e.Counts()
		return result
	}

	clean := make([]*Row, 0, len(e.rows))
	var dirtyRows []*Row
	for _, row := range e.rows {
		if _, ok := dirty[row.id]; ok {
			dirtyRows = append(dirtyRows, row)
		} else {
			clean = append(clean, row)
		}
	}

	for _, row := range dirtyRows {
		e.display.Detach(row.handle)
		result.Detached++
	}

	candidates := make([]*Row, 0, len(dirtyRows))
	for _, row := range dirtyRows {
		delete(dirty, row.id)
		tor, ok := e.store.Get(row.id)
		if ok && params.Filter.Matches(tor) {
			candidates = append(candidates, row)
			continue
		}
		e.display.Destroy(row.handle)
		result.Destroyed++
		row.handle = nil
		delete(e.byID, row.id)
		if !ok {
			e.selection.Deselect(row.id)
		}
	}

	newIDs := make([]int, 0, len(dirty))
	for id := range dirty {
		newIDs = append(newIDs, id)
	}
	slices.Sort(newIDs)
	for _, id := range newIDs {
		if _, exists := e.byID[id]; exists {
			continue
		}
		tor, ok := e.store.Get(id)
		if !ok {
			e.selection.Deselect(id)
			continue
		}
		if !params.Filter.Matches(tor) {
			continue
		}
		handle, err := e.display.Create(tor)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("create row %d: %w", id, err))
			e.logger.Warn("row create failed", logging.F("id", id), logging.F("error", err))
			continue
		}
		result.Created++
		row := &Row{id: id, handle: handle}
		e.byID[id] = row
		candidates = append(candidates, row)
	}

	compare := func(a, b *Row) int {
		return params.Sort.Compare(e.item(a), e.item(b))
	}
	slices.SortFunc(candidates, compare)

	merged := make([]*Row, 0, len(clean)+len(candidates))
	ci, di := 0, 0
	for ci < len(clean) || di < len(candidates) {
		pushClean := false
		switch {
		case di == len(candidates):
			pushClean = true
		case ci == len(clean):
			pushClean = false
		default:
			pushClean = compare(clean[ci], candidates[di]) <= 0
		}
		if pushClean {
			merged = append(merged, clean[ci])
			ci++
			continue
		}
		row := candidates[di]
		di++
		var before Handle
		if ci < len(clean) {
			before = clean[ci].handle
		}
		e.display.Insert(row.handle, before)
		result.Inserted++
		merged = append(merged, row)
	}
	e.rows = merged

	e.syncSelection(candidates)
	result.Counts = e.Counts()
	e.logger.Debug("reconciled",
		logging.F("dirty", result.Dirty),
		logging.F("full", full),
		logging.F("visible", result.Visible),
		logging.F("ops", result.Ops()),
	)
	return result
}

func (e *Engine) item(row *Row) *types.Torrent {
	tor, _ := e.store.Get(row.id)
	return tor
}

// Refresh repaints rows whose torrent fields changed and reports how many
// handles were refreshed.
func (e *Engine) Refresh(ids []int) int {
	n := 0
	for _, id := range ids {
		row, ok := e.byID[id]
		if !ok {
			continue
		}
		tor, ok := e.store.Get(id)
		if !ok {
			continue
		}
		e.display.Refresh(row.handle, tor)
		n++
	}
	return n
}

// SyncSelection copies the tracker's state onto every row and returns the
// ids whose flag changed.
func (e *Engine) SyncSelection() []int {
	return e.syncSelection(e.rows)
}

func (e *Engine) syncSelection(rows []*Row) []int {
	painter, _ := e.display.(SelectionDisplay)
	var changed []int
	for _, row := range rows {
		selected := e.selection.IsSelected(row.id)
		if row.selected == selected {
			continue
		}
		row.selected = selected
		changed = append(changed, row.id)
		if painter != nil {
			painter.SetSelected(row.handle, selected)
		}
	}
	return changed
}

// Reset destroys every row and forgets the selection.
func (e *Engine) Reset() {
	for _, row := range e.rows {
		e.display.Detach(row.handle)
		e.display.Destroy(row.handle)
	}
	e.rows = nil
	e.byID = map[int]*Row{}
	e.selection.DeselectAll()
}

func (e *Engine) Counts() Counts {
	return Counts{Total: e.store.Len(), Visible: len(e.rows)}
}

func (e *Engine) Rows() []*Row {
	return append([]*Row(nil), e.rows...)
}

func (e *Engine) Row(id int) (*Row, bool) {
	row, ok := e.byID[id]
	return row, ok
}

// Order returns the visible ids in view order.
func (e *Engine) Order() []int {
	out := make([]int, len(e.rows))
	for i, row := range e.rows {
		out[i] = row.id
	}
	return out
}

func (e *Engine) Index(id int) int {
	for i, row := range e.rows {
		if row.id == id {
			return i
		}
	}
	return -1
}

func (e *Engine) Selection() *Selection {
	return e.selection
}

// SelectedIDs returns the selected ids that are currently visible, in view
// order.
func (e *Engine) SelectedIDs() []int {
	return e.selection.InOrder(e.Order())
}
