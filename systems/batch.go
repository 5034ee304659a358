package systems

import "github.com/gogpu/stage/system"

// ObjectRenderer batches draw calls of one kind.
type ObjectRenderer interface {
	// Start is called when the renderer becomes current.
	Start()

	// Flush draws everything batched so far.
	Flush()

	// Stop flushes and is called when another renderer becomes current.
	Stop()
}

type emptyRenderer struct{}

func (emptyRenderer) Start() {}
func (emptyRenderer) Flush() {}
func (emptyRenderer) Stop()  {}

// BatchSystem switches between object renderers, flushing the outgoing one.
type BatchSystem struct {
	h Host

	empty   ObjectRenderer
	current ObjectRenderer
	quads   *QuadRenderer
}

var _ system.Resetter = (*BatchSystem)(nil)

// NewBatchSystem creates the batch system with its quad renderer.
func NewBatchSystem(h Host) *BatchSystem {
	b := &BatchSystem{h: h, empty: emptyRenderer{}}
	b.current = b.empty
	b.quads = NewQuadRenderer(h)
	return b
}

// SetObjectRenderer makes r current, stopping the previous renderer.
func (b *BatchSystem) SetObjectRenderer(r ObjectRenderer) {
	if b.current == r {
		return
	}
	b.current.Stop()
	b.current = r
	r.Start()
}

// Current returns the current object renderer.
func (b *BatchSystem) Current() ObjectRenderer { return b.current }

// Flush draws pending batches by switching to the empty renderer.
func (b *BatchSystem) Flush() {
	b.SetObjectRenderer(b.empty)
}

// Quads returns the textured quad renderer.
func (b *BatchSystem) Quads() *QuadRenderer { return b.quads }

// Reset flushes pending batches.
func (b *BatchSystem) Reset() {
	b.SetObjectRenderer(b.empty)
}
