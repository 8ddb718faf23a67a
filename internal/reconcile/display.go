package reconcile

import "tremote/internal/types"

// Handle is an opaque render-side resource owned by one Row.
type Handle any

// Display is the render collaborator. The engine is the only caller of
// Create, Destroy, Detach and Insert; Refresh may also be driven by data
// changes outside a reconciliation pass.
type Display interface {
	Create(t *types.Torrent) (Handle, error)
	Destroy(h Handle)
	// Detach removes the handle from the rendered order without destroying it.
	Detach(h Handle)
	// Insert places a detached or new handle immediately before another
	// handle, or at the end when before is nil.
	Insert(h Handle, before Handle)
	Refresh(h Handle, t *types.Torrent)
}

// SelectionDisplay is implemented by displays that paint selection state.
type SelectionDisplay interface {
	SetSelected(h Handle, selected bool)
}
