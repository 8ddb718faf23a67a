package app

import (
	"errors"

	"charm.land/bubbles/v2/list"

	"tremote/internal/reconcile"
	"tremote/internal/types"
)

// torrentRow is the display handle the engine owns for one visible torrent.
// It doubles as the list item.
type torrentRow struct {
	id       int
	tor      *types.Torrent
	selected bool
	attached bool

	prev, next *torrentRow
}

func (r *torrentRow) FilterValue() string {
	return r.tor.DisplayName()
}

// listDisplay keeps the ordered handles the engine manipulates in a linked
// list and hands them to the bubbles list after each pass. Detach and Insert
// are constant time; the list is refreshed once via Items.
type listDisplay struct {
	head, tail *torrentRow
	n          int
	live       int
	changed    bool
}

var errNilTorrent = errors.New("nil torrent")

var _ reconcile.Display = (*listDisplay)(nil)
var _ reconcile.SelectionDisplay = (*listDisplay)(nil)

func newListDisplay() *listDisplay {
	return &listDisplay{}
}

func (d *listDisplay) Create(t *types.Torrent) (reconcile.Handle, error) {
	if t == nil {
		return nil, errNilTorrent
	}
	d.live++
	return &torrentRow{id: t.ID, tor: t}, nil
}

func (d *listDisplay) Destroy(h reconcile.Handle) {
	row, ok := h.(*torrentRow)
	if !ok || row == nil {
		return
	}
	if row.attached {
		d.Detach(h)
	}
	row.tor = nil
	d.live--
}

func (d *listDisplay) Detach(h reconcile.Handle) {
	row, ok := h.(*torrentRow)
	if !ok || row == nil || !row.attached {
		return
	}
	if row.prev != nil {
		row.prev.next = row.next
	} else {
		d.head = row.next
	}
	if row.next != nil {
		row.next.prev = row.prev
	} else {
		d.tail = row.prev
	}
	row.prev, row.next = nil, nil
	row.attached = false
	d.n--
	d.changed = true
}

// Insert places h before the attached handle before, or at the end.
func (d *listDisplay) Insert(h, before reconcile.Handle) {
	row, ok := h.(*torrentRow)
	if !ok || row == nil {
		return
	}
	if row.attached {
		d.Detach(row)
	}
	next, _ := before.(*torrentRow)
	if next == nil || !next.attached || next == row {
		row.prev = d.tail
		if d.tail != nil {
			d.tail.next = row
		} else {
			d.head = row
		}
		d.tail = row
	} else {
		row.prev = next.prev
		row.next = next
		if next.prev != nil {
			next.prev.next = row
		} else {
			d.head = row
		}
		next.prev = row
	}
	row.attached = true
	d.n++
	d.changed = true
}

func (d *listDisplay) Refresh(h reconcile.Handle, t *types.Torrent) {
	if row, ok := h.(*torrentRow); ok && row != nil {
		row.tor = t
		d.changed = true
	}
}

func (d *listDisplay) SetSelected(h reconcile.Handle, selected bool) {
	if row, ok := h.(*torrentRow); ok && row != nil {
		row.selected = selected
		d.changed = true
	}
}

// Items returns the rendered order as list items and clears the change flag.
func (d *listDisplay) Items() []list.Item {
	items := make([]list.Item, 0, d.n)
	for row := d.head; row != nil; row = row.next {
		items = append(items, row)
	}
	d.changed = false
	return items
}

func (d *listDisplay) Changed() bool {
	return d.changed
}

// Live counts handles created and not yet destroyed.
func (d *listDisplay) Live() int {
	return d.live
}

func (d *listDisplay) Len() int {
	return d.n
}

func (d *listDisplay) IDs() []int {
	out := make([]int, 0, d.n)
	for row := d.head; row != nil; row = row.next {
		out = append(out, row.id)
	}
	return out
}
