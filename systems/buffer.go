package systems

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/system"
)

// copyBufferAlignment is the size granularity of buffer copies.
const copyBufferAlignment = 4

// Buffer is CPU-side geometry or uniform data with per-context GPU mirrors.
type Buffer struct {
	Label string
	Usage gputypes.BufferUsage

	data     []byte
	updateID int
	gpu      map[uint64]*glBuffer
}

type glBuffer struct {
	buf      hal.Buffer
	size     uint64
	updateID int
}

// NewBuffer creates a buffer holding data.
func NewBuffer(label string, usage gputypes.BufferUsage, data []byte) *Buffer {
	return &Buffer{Label: label, Usage: usage, data: data, updateID: 1}
}

// Data returns the CPU copy.
func (b *Buffer) Data() []byte { return b.data }

// SetData replaces the contents and marks the buffer for upload.
func (b *Buffer) SetData(data []byte) {
	b.data = data
	b.updateID++
}

// UpdateID returns the content version.
func (b *Buffer) UpdateID() int { return b.updateID }

// BufferSystem uploads buffers to the active context.
type BufferSystem struct {
	h Host

	uid     uint64
	managed map[*Buffer]struct{}
	bound   *Buffer
	uploads int
}

var (
	_ system.ContextChanger = (*BufferSystem)(nil)
	_ system.Destroyer      = (*BufferSystem)(nil)
)

// NewBufferSystem creates the buffer system.
func NewBufferSystem(h Host) *BufferSystem {
	return &BufferSystem{h: h, managed: make(map[*Buffer]struct{})}
}

// ContextChange forgets mirrors owned by older contexts.
func (s *BufferSystem) ContextChange(ctx *device.Context) {
	s.bound = nil
	if ctx == nil {
		return
	}
	s.uid = ctx.UID
	for b := range s.managed {
		for uid := range b.gpu {
			if uid != s.uid {
				delete(b.gpu, uid)
			}
		}
	}
}

// Bind makes b current, uploading it when stale.
func (s *BufferSystem) Bind(b *Buffer) error {
	if s.bound == b {
		return s.Update(b)
	}
	s.bound = b
	return s.Update(b)
}

// Bound returns the current buffer.
func (s *BufferSystem) Bound() *Buffer { return s.bound }

// Update uploads b when its mirror on the active context is stale. Without a
// HAL device only the bookkeeping is done.
func (s *BufferSystem) Update(b *Buffer) error {
	if b == nil {
		return nil
	}
	s.managed[b] = struct{}{}
	if b.gpu == nil {
		b.gpu = make(map[uint64]*glBuffer)
	}
	gb := b.gpu[s.uid]
	if gb == nil {
		gb = &glBuffer{}
		b.gpu[s.uid] = gb
	}
	if gb.updateID == b.updateID {
		return nil
	}

	dev, ok := s.h.GPU().HalDevice()
	if !ok {
		gb.updateID = b.updateID
		return nil
	}
	q, _ := s.h.GPU().HalQueue()

	size := alignUp(uint64(len(b.data)), copyBufferAlignment)
	if size == 0 {
		size = copyBufferAlignment
	}
	if gb.buf == nil || gb.size < size {
		if gb.buf != nil {
			dev.DestroyBuffer(gb.buf)
		}
		buf, err := dev.CreateBuffer(&hal.BufferDescriptor{
			Label: b.Label,
			Size:  size,
			Usage: b.Usage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			gb.buf = nil
			return fmt.Errorf("systems: create buffer %q: %w", b.Label, err)
		}
		gb.buf, gb.size = buf, size
	}
	if q != nil && len(b.data) > 0 {
		data := b.data
		if pad := int(size) - len(data); pad > 0 {
			data = append(append([]byte(nil), data...), make([]byte, pad)...)
		}
		q.WriteBuffer(gb.buf, 0, data)
		s.uploads++
	}
	gb.updateID = b.updateID
	return nil
}

// GPUBuffer returns the mirror of b on the active context.
func (s *BufferSystem) GPUBuffer(b *Buffer) hal.Buffer {
	if b == nil || b.gpu[s.uid] == nil {
		return nil
	}
	return b.gpu[s.uid].buf
}

// Uploads returns the number of queue writes performed.
func (s *BufferSystem) Uploads() int { return s.uploads }

// Managed returns the number of buffers with GPU mirrors.
func (s *BufferSystem) Managed() int { return len(s.managed) }

// DestroyBuffer releases every mirror of b.
func (s *BufferSystem) DestroyBuffer(b *Buffer) {
	if b == nil {
		return
	}
	if dev, ok := s.h.GPU().HalDevice(); ok {
		if gb := b.gpu[s.uid]; gb != nil && gb.buf != nil {
			dev.DestroyBuffer(gb.buf)
		}
	}
	b.gpu = nil
	delete(s.managed, b)
	if s.bound == b {
		s.bound = nil
	}
}

// Destroy releases every managed buffer.
func (s *BufferSystem) Destroy(*system.DestroyOptions) {
	for b := range s.managed {
		s.DestroyBuffer(b)
	}
}

func alignUp(n, a uint64) uint64 {
	return (n + a - 1) &^ (a - 1)
}
