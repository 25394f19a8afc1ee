package gadget

import "unsafe"

// ptrOf returns the address of mem's backing array, for handing a
// memory-mapped capture buffer to the kernel as a user-pointer buffer on
// the UVC output device (spec.md §3/§4.5 zero-copy handoff). mem must be
// non-empty and must outlive the queued buffer.
func ptrOf(mem []byte) unsafe.Pointer {
	return unsafe.Pointer(&mem[0])
}
