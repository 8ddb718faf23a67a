package reconcile

// States summarizes the visible rows for enabling actions.
type States struct {
	Total          int
	Active         int
	Paused         int
	Selected       int
	ActiveSelected int
	PausedSelected int
	QueuedSelected int
}

func (e *Engine) States() States {
	var s States
	for _, row := range e.rows {
		tor, ok := e.store.Get(row.id)
		if !ok {
			continue
		}
		s.Total++
		stopped := tor.IsStopped()
		selected := e.selection.IsSelected(row.id)
		if stopped {
			s.Paused++
		} else {
			s.Active++
		}
		if !selected {
			continue
		}
		s.Selected++
		if stopped {
			s.PausedSelected++
		} else {
			s.ActiveSelected++
		}
		if tor.IsQueued() {
			s.QueuedSelected++
		}
	}
	return s
}
