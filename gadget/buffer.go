package gadget

import "github.com/kestrelcam/uvc-gadget/v4l2"

// MinBufferCount and MaxBufferCount bound the configurable buffer ring
// size (spec.md §3 Buffer: "the ring count is configurable (2-32)").
const (
	MinBufferCount = 2
	MaxBufferCount = 32
)

// Buffer is a fixed-index element of a ring owned by one endpoint
// (spec.md §3). Mem is nil for a ring backed by user-pointer I/O (the UVC
// output endpoint in the capture-source pipeline, which points at the
// capture ring's own memory instead of owning any).
type Buffer struct {
	Index     uint32
	Mem       []byte
	Length    uint32
	BytesUsed uint32
}

// Ring is a buffer set allocated against one device fd with one memory
// I/O method, indexed identically to how the kernel driver indexes them.
type Ring struct {
	FD      uintptr
	BufType v4l2.BufType
	IOType  v4l2.IOType
	Buffers []Buffer
}

// NewMappedRing allocates count memory-mapped buffers on fd for bufType —
// used by capture sources and by the UVC output endpoint when it owns its
// own buffer memory (framebuffer/image sources, which fill the mapped
// memory directly per spec.md §4.5).
func NewMappedRing(fd uintptr, bufType v4l2.BufType, count uint32) (*Ring, error) {
	mapped, err := v4l2.MapMemoryBuffers(fd, bufType, count)
	if err != nil {
		return nil, err
	}
	buffers := make([]Buffer, len(mapped))
	for i, mem := range mapped {
		buffers[i] = Buffer{Index: uint32(i), Mem: mem, Length: uint32(len(mem))}
	}
	return &Ring{FD: fd, BufType: bufType, IOType: v4l2.IOTypeMMAP, Buffers: buffers}, nil
}

// NewUserPtrRing requests count user-pointer buffer slots on fd without
// allocating any backing memory — used by the UVC output endpoint in the
// capture-source pipeline, where each queued buffer instead points at the
// capture ring's own mapped memory (spec.md §3/§4.5 zero-copy handoff).
func NewUserPtrRing(fd uintptr, bufType v4l2.BufType, count uint32) (*Ring, error) {
	if _, err := v4l2.InitBuffers(fd, bufType, v4l2.IOTypeUserPtr, count); err != nil {
		return nil, err
	}
	buffers := make([]Buffer, count)
	for i := range buffers {
		buffers[i] = Buffer{Index: uint32(i)}
	}
	return &Ring{FD: fd, BufType: bufType, IOType: v4l2.IOTypeUserPtr, Buffers: buffers}, nil
}

// Close unmaps any memory this ring owns and releases the driver's buffer
// set by requesting zero buffers (spec.md §4.7 STREAMOFF teardown).
func (r *Ring) Close() error {
	if r == nil {
		return nil
	}
	if r.IOType == v4l2.IOTypeMMAP {
		mapped := make([][]byte, len(r.Buffers))
		for i, b := range r.Buffers {
			mapped[i] = b.Mem
		}
		if err := v4l2.UnmapMemoryBuffers(mapped); err != nil {
			return err
		}
	}
	_, err := v4l2.InitBuffers(r.FD, r.BufType, r.IOType, 0)
	return err
}

// Dequeue dequeues the next ready buffer from the ring's device.
func (r *Ring) Dequeue() (*Buffer, v4l2.Buffer, error) {
	raw, err := v4l2.DequeueBuffer(r.FD, r.BufType, r.IOType)
	if err != nil {
		return nil, v4l2.Buffer{}, err
	}
	b := &r.Buffers[raw.Index]
	b.BytesUsed = raw.BytesUsed
	return b, raw, nil
}

// Queue enqueues a mapped buffer (mmap ring) back to the driver.
func (r *Ring) Queue(index uint32) (v4l2.Buffer, error) {
	return v4l2.QueueBuffer(r.FD, r.BufType, r.IOType, index, 0, 0)
}

// QueueUserPtr enqueues index pointing at foreign memory owned by another
// ring (the zero-copy capture-to-output handoff).
func (r *Ring) QueueUserPtr(index uint32, mem []byte) (v4l2.Buffer, error) {
	var ptr uintptr
	if len(mem) > 0 {
		ptr = uintptr(ptrOf(mem))
	}
	return v4l2.QueueBuffer(r.FD, r.BufType, r.IOType, index, ptr, uint32(len(mem)))
}
