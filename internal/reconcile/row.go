package reconcile

type Row struct {
	id       int
	handle   Handle
	selected bool
}

func (r *Row) ID() int {
	return r.id
}

func (r *Row) Handle() Handle {
	return r.handle
}

func (r *Row) Selected() bool {
	return r.selected
}
