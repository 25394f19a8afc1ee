package v4l2

// #include <linux/videodev2.h>
import "C"

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	sys "golang.org/x/sys/unix"
)

// Streaming with Buffers
// See https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/buffer.html

// BufType (v4l2_buf_type)
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/buffer.html?highlight=v4l2_buf_type#c.V4L.v4l2_buf_type
// https://elixir.bootlin.com/linux/latest/source/include/uapi/linux/videodev2.h#L141
type BufType = uint32

const (
	BufTypeVideoCapture BufType = C.V4L2_BUF_TYPE_VIDEO_CAPTURE
	BufTypeVideoOutput  BufType = C.V4L2_BUF_TYPE_VIDEO_OUTPUT
	BufTypeOverlay      BufType = C.V4L2_BUF_TYPE_VIDEO_OVERLAY
)

// IOType (v4l2_memory) identifies the buffer memory exchange method used for
// streaming I/O: mmap for a capture device reading frames from the kernel,
// user pointer for handing application-owned memory to the driver (used by
// the UVC output endpoint to hand a capture buffer straight to the gadget
// without a copy).
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/mmap.html?highlight=v4l2_memory_mmap
// https://elixir.bootlin.com/linux/latest/source/include/uapi/linux/videodev2.h#L188
type IOType = uint32

const (
	IOTypeMMAP    IOType = C.V4L2_MEMORY_MMAP
	IOTypeUserPtr IOType = C.V4L2_MEMORY_USERPTR
	IOTypeOverlay IOType = C.V4L2_MEMORY_OVERLAY
	IOTypeDMABuf  IOType = C.V4L2_MEMORY_DMABUF
)

// BufFlag (v4l2_buffer flags)
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/buffer.html#buffer-flags
type BufFlag = uint32

const (
	BufFlagMapped              BufFlag = C.V4L2_BUF_FLAG_MAPPED
	BufFlagQueued              BufFlag = C.V4L2_BUF_FLAG_QUEUED
	BufFlagDone                BufFlag = C.V4L2_BUF_FLAG_DONE
	BufFlagKeyFrame             BufFlag = C.V4L2_BUF_FLAG_KEYFRAME
	BufFlagPFrame              BufFlag = C.V4L2_BUF_FLAG_PFRAME
	BufFlagBFrame              BufFlag = C.V4L2_BUF_FLAG_BFRAME
	BufFlagError               BufFlag = C.V4L2_BUF_FLAG_ERROR
	BufFlagInRequest           BufFlag = C.V4L2_BUF_FLAG_IN_REQUEST
	BufFlagTimeCode            BufFlag = C.V4L2_BUF_FLAG_TIMECODE
	BufFlagM2MHoldCaptureBuf   BufFlag = C.V4L2_BUF_FLAG_M2M_HOLD_CAPTURE_BUF
	BufFlagPrepared            BufFlag = C.V4L2_BUF_FLAG_PREPARED
	BufFlagNoCacheInvalidate   BufFlag = C.V4L2_BUF_FLAG_NO_CACHE_INVALIDATE
	BufFlagNoCacheClean        BufFlag = C.V4L2_BUF_FLAG_NO_CACHE_CLEAN
	BufFlagTimestampMask       BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_MASK
	BufFlagTimestampUnknown    BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_UNKNOWN
	BufFlagTimestampMonotonic  BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_MONOTONIC
	BufFlagTimestampCopy       BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_COPY
	BufFlagTimestampSourceMask BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_MASK
	BufFlagTimestampSourceEOF  BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_EOF
	BufFlagTimestampSourceSOE  BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_SOE
	BufFlagLast                BufFlag = C.V4L2_BUF_FLAG_LAST
	BufFlagRequestFD           BufFlag = C.V4L2_BUF_FLAG_REQUEST_FD
)

// TODO implement vl42_create_buffers

// RequestBuffers (v4l2_requestbuffers) is used to request buffer allocation initializing
// streaming for memory mapped, user pointer, or DMA buffer access.
// https://elixir.bootlin.com/linux/latest/source/include/uapi/linux/videodev2.h#L949
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-reqbufs.html?highlight=v4l2_requestbuffers#c.V4L.v4l2_requestbuffers
type RequestBuffers struct {
	Count        uint32
	StreamType   uint32
	Memory       uint32
	Capabilities uint32
	_            [1]uint32
}

// Buffer (v4l2_buffer) is used to send buffers info between application and driver
// after streaming IO has been initialized.
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/buffer.html#c.V4L.v4l2_buffer
// https://elixir.bootlin.com/linux/latest/source/include/uapi/linux/videodev2.h#L1037
type Buffer struct {
	Index      uint32
	StreamType uint32
	BytesUsed  uint32
	Flags      uint32
	Field      uint32
	Timestamp  sys.Timeval
	Timecode   Timecode
	Sequence   uint32
	Memory     uint32
	Info       BufferInfo // union m
	Length     uint32
	Reserved2  uint32
	RequestFD  int32
}

// makeBuffer makes a Buffer value from C.struct_v4l2_buffer
func makeBuffer(v4l2Buf C.struct_v4l2_buffer) Buffer {
	return Buffer{
		Index:      uint32(v4l2Buf.index),
		StreamType: uint32(v4l2Buf._type),
		BytesUsed:  uint32(v4l2Buf.bytesused),
		Flags:      uint32(v4l2Buf.flags),
		Field:      uint32(v4l2Buf.field),
		Timestamp:  *(*sys.Timeval)(unsafe.Pointer(&v4l2Buf.timestamp)),
		Timecode:   *(*Timecode)(unsafe.Pointer(&v4l2Buf.timecode)),
		Sequence:   uint32(v4l2Buf.sequence),
		Memory:     uint32(v4l2Buf.memory),
		Info:       *(*BufferInfo)(unsafe.Pointer(&v4l2Buf.m[0])),
		Length:     uint32(v4l2Buf.length),
		Reserved2:  uint32(v4l2Buf.reserved2),
		RequestFD:  *(*int32)(unsafe.Pointer(&v4l2Buf.anon0[0])),
	}
}

// BufferInfo represents Union of several values in type Buffer
// that are used to service the stream depending on the type of streaming
// selected (MMap, User pointer, planar, file descriptor for DMA)
type BufferInfo struct {
	Offset  uint32
	UserPtr uintptr
	Planes  *Plane
	FD      int32
}

// Plane (see struct v4l2_plane) represents a plane in a multi-planar buffers
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/buffer.html#c.V4L.v4l2_plane
// https://elixir.bootlin.com/linux/latest/source/include/uapi/linux/videodev2.h#L990
type Plane struct {
	BytesUsed  uint32
	Length     uint32
	Info       PlaneInfo // union m
	DataOffset uint32
}

// PlaneInfo representes the combination of type
// of type of memory stream that can be serviced for the
// associated plane.
type PlaneInfo struct {
	MemOffset uint32
	UserPtr   uintptr
	FD        int32
}

// StreamOn requests streaming to be turned on for the given buffer type
// (capture or output), using memory map, user ptr, or DMA buffers.
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-streamon.html
func StreamOn(fd uintptr, bufType BufType) error {
	if err := send(fd, C.VIDIOC_STREAMON, uintptr(unsafe.Pointer(&bufType))); err != nil {
		return fmt.Errorf("stream on: %w", err)
	}
	return nil
}

// StreamOff requests streaming to be turned off for the given buffer type
// (capture or output), using memory map, user ptr, or DMA buffers.
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-streamon.html
func StreamOff(fd uintptr, bufType BufType) error {
	if err := send(fd, C.VIDIOC_STREAMOFF, uintptr(unsafe.Pointer(&bufType))); err != nil {
		return fmt.Errorf("stream off: %w", err)
	}
	return nil
}

// InitBuffers sends a buffer allocation request to initialize buffer IO
// for the given buffer type and memory I/O method (mmap for a capture
// device, user pointer for an output device fed from memory the
// application already owns).
// See https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-reqbufs.html#vidioc-reqbufs
func InitBuffers(fd uintptr, bufType BufType, ioType IOType, buffSize uint32) (RequestBuffers, error) {
	var req C.struct_v4l2_requestbuffers
	req.count = C.uint(buffSize)
	req._type = C.uint(bufType)
	req.memory = C.uint(ioType)

	if err := send(fd, C.VIDIOC_REQBUFS, uintptr(unsafe.Pointer(&req))); err != nil {
		return RequestBuffers{}, fmt.Errorf("request buffers: %w", err)
	}
	if ioType == IOTypeMMAP && req.count < 2 {
		return RequestBuffers{}, errors.New("request buffers: insufficient memory on device")
	}

	return *(*RequestBuffers)(unsafe.Pointer(&req)), nil
}

// GetBuffer retrieves buffer info for an allocated buffer at the provided
// index. This call should take place after buffers are allocated (for mmap
// for instance).
func GetBuffer(fd uintptr, bufType BufType, ioType IOType, index uint32) (Buffer, error) {
	var v4l2Buf C.struct_v4l2_buffer
	v4l2Buf._type = C.uint(bufType)
	v4l2Buf.memory = C.uint(ioType)
	v4l2Buf.index = C.uint(index)

	if err := send(fd, C.VIDIOC_QUERYBUF, uintptr(unsafe.Pointer(&v4l2Buf))); err != nil {
		return Buffer{}, fmt.Errorf("query buffer: %w", err)
	}

	return makeBuffer(v4l2Buf), nil
}

// MapMemoryBuffer creates a local buffer mapped to the address space of the device specified by fd.
func MapMemoryBuffer(fd uintptr, offset int64, len int) ([]byte, error) {
	data, err := sys.Mmap(int(fd), offset, len, sys.PROT_READ|sys.PROT_WRITE, sys.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("map memory buffer: %w", err)
	}
	return data, nil
}

// UnmapMemoryBuffer removes the buffer that was previously mapped.
func UnmapMemoryBuffer(buf []byte) error {
	if err := sys.Munmap(buf); err != nil {
		return fmt.Errorf("unmap memory buffer: %w", err)
	}
	return nil
}

// QueueBuffer enqueues a buffer in the device driver (as empty for capturing,
// or filled for video output) using the given buffer type and memory I/O
// method. For IOTypeUserPtr the caller must set userPtr/length to describe
// the application-owned memory being handed to the driver (used to forward a
// capture buffer to the UVC output endpoint without copying it). Buffer is
// returned with additional information about the queued buffer.
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-qbuf.html#vidioc-qbuf
func QueueBuffer(fd uintptr, bufType BufType, ioType IOType, index uint32, userPtr uintptr, length uint32) (Buffer, error) {
	var v4l2Buf C.struct_v4l2_buffer
	v4l2Buf._type = C.uint(bufType)
	v4l2Buf.memory = C.uint(ioType)
	v4l2Buf.index = C.uint(index)
	if ioType == IOTypeUserPtr {
		*(*uintptr)(unsafe.Pointer(&v4l2Buf.m[0])) = userPtr
		v4l2Buf.length = C.uint(length)
		v4l2Buf.bytesused = C.uint(length)
	}

	if err := send(fd, C.VIDIOC_QBUF, uintptr(unsafe.Pointer(&v4l2Buf))); err != nil {
		return Buffer{}, fmt.Errorf("buffer queue: %w", err)
	}

	return makeBuffer(v4l2Buf), nil
}

// DequeueBuffer dequeues a buffer from the device driver, marking it as
// consumed by the application (capture side) or returned by the driver
// (output side), for the given buffer type and memory I/O method. Buffer is
// returned with additional information about the dequeued buffer.
// https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-qbuf.html#vidioc-qbuf
func DequeueBuffer(fd uintptr, bufType BufType, ioType IOType) (Buffer, error) {
	var v4l2Buf C.struct_v4l2_buffer
	v4l2Buf._type = C.uint(bufType)
	v4l2Buf.memory = C.uint(ioType)

	if err := send(fd, C.VIDIOC_DQBUF, uintptr(unsafe.Pointer(&v4l2Buf))); err != nil {
		return Buffer{}, fmt.Errorf("buffer dequeue: %w", err)

	}

	return makeBuffer(v4l2Buf), nil
}

// MapMemoryBuffers allocates IOTypeMMAP buffers on the device (InitBuffers),
// memory-maps each one, and returns the mapped buffers indexed the same way
// the driver indexes them. User-pointer buffers are not handled here: the
// caller owns that memory and there is nothing to map.
func MapMemoryBuffers(fd uintptr, bufType BufType, count uint32) ([][]byte, error) {
	reqBufs, err := InitBuffers(fd, bufType, IOTypeMMAP, count)
	if err != nil {
		return nil, err
	}

	buffers := make([][]byte, reqBufs.Count)
	for i := uint32(0); i < reqBufs.Count; i++ {
		buf, err := GetBuffer(fd, bufType, IOTypeMMAP, i)
		if err != nil {
			return nil, fmt.Errorf("map memory buffers: query buffer %d: %w", i, err)
		}
		mapped, err := MapMemoryBuffer(fd, int64(buf.Info.Offset), int(buf.Length))
		if err != nil {
			return nil, fmt.Errorf("map memory buffers: buffer %d: %w", i, err)
		}
		buffers[i] = mapped
	}
	return buffers, nil
}

// UnmapMemoryBuffers unmaps every buffer previously returned by
// MapMemoryBuffers.
func UnmapMemoryBuffers(buffers [][]byte) error {
	for i, buf := range buffers {
		if buf == nil {
			continue
		}
		if err := UnmapMemoryBuffer(buf); err != nil {
			return fmt.Errorf("unmap memory buffers: buffer %d: %w", i, err)
		}
	}
	return nil
}

// WaitForDeviceRead blocks until the specified device is
// ready to be read or has timedout.
func WaitForDeviceRead(fd uintptr, timeout time.Duration) error {
	timeval := sys.NsecToTimeval(timeout.Nanoseconds())
	var fdsRead sys.FdSet
	fdsRead.Set(int(fd))
	for {
		n, err := sys.Select(int(fd+1), &fdsRead, nil, nil, &timeval)
		switch n {
		case -1:
			if err == sys.EINTR {
				continue
			}
			return err
		case 0:
			return errors.New("wait for device ready: timeout")
		default:
			return nil
		}
	}
}

// WaitForDeviceReadOrException blocks until the device is ready to be read,
// has an exception condition pending (used by the UVC gadget's control
// event channel, which surfaces on the exception fd set rather than the
// read set), or the timeout elapses. It reports which condition fired.
func WaitForDeviceReadOrException(fd uintptr, timeout time.Duration) (readable, exceptional bool, err error) {
	timeval := sys.NsecToTimeval(timeout.Nanoseconds())
	var fdsRead, fdsExcept sys.FdSet
	fdsRead.Set(int(fd))
	fdsExcept.Set(int(fd))
	for {
		n, selErr := sys.Select(int(fd+1), &fdsRead, nil, &fdsExcept, &timeval)
		if n == -1 {
			if selErr == sys.EINTR {
				continue
			}
			return false, false, selErr
		}
		readable = n > 0 && fdIsSet(&fdsRead, int(fd))
		exceptional = n > 0 && fdIsSet(&fdsExcept, int(fd))
		return readable, exceptional, nil
	}
}

func fdIsSet(set *sys.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}

// WaitForReadWriteException multiplexes readiness across two file
// descriptors in the shape the pipeline loop needs (spec.md §4.5): sourceFD
// is watched for readability, outputFD is watched for both writability and
// exceptional condition (the UVC gadget surfaces pending control events on
// the exception set, per original_source/src/processing_v4l2_uvc.c's
// select() call). Either fd may be -1 to omit it from its respective set.
// EINTR is retried transparently; a zero or negative timeout blocks without
// limit. timedOut reports a genuine select() timeout (n == 0), distinct from
// no fd being ready because none was passed.
func WaitForReadWriteException(sourceFD, outputFD int, timeout time.Duration) (sourceReadable, outputWritable, outputException, timedOut bool, err error) {
	var timevalPtr *sys.Timeval
	if timeout > 0 {
		timeval := sys.NsecToTimeval(timeout.Nanoseconds())
		timevalPtr = &timeval
	}

	var fdsRead, fdsWrite, fdsExcept sys.FdSet
	maxFD := 0
	if sourceFD >= 0 {
		fdsRead.Set(sourceFD)
		if sourceFD > maxFD {
			maxFD = sourceFD
		}
	}
	if outputFD >= 0 {
		fdsWrite.Set(outputFD)
		fdsExcept.Set(outputFD)
		if outputFD > maxFD {
			maxFD = outputFD
		}
	}

	for {
		n, selErr := sys.Select(maxFD+1, &fdsRead, &fdsWrite, &fdsExcept, timevalPtr)
		if n == -1 {
			if selErr == sys.EINTR {
				continue
			}
			return false, false, false, false, selErr
		}
		if sourceFD >= 0 {
			sourceReadable = n > 0 && fdIsSet(&fdsRead, sourceFD)
		}
		if outputFD >= 0 {
			outputWritable = n > 0 && fdIsSet(&fdsWrite, outputFD)
			outputException = n > 0 && fdIsSet(&fdsExcept, outputFD)
		}
		return sourceReadable, outputWritable, outputException, n == 0 && timevalPtr != nil, nil
	}
}
