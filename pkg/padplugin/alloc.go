package padplugin

import "unsafe"

// Memory layout:
// [0-7]: reserved
// [8+]: available for allocation.
var nextPtr uint32 = 8

// Alloc allocates n bytes of linear memory with 8-byte alignment and returns the
// starting pointer. Allocations live until the next enumeration or poll call; the host
// copies results out before issuing another call into the module.
//
//export Alloc
func Alloc(n uint32) uint32 {
	ptr := nextPtr
	padding := (8 - n%8) % 8
	nextPtr += n + padding

	return ptr
}

// resetAlloc rewinds the arena to its base. Every exported host call starts with a
// reset, which is what bounds the lifetime of an allocation to the call that made it
// and keeps the high-frequency polling path at a constant memory footprint.
func resetAlloc() {
	nextPtr = 8
}

// Free releases the memory at ptr.
// Currently a no-op.
//
//export Free
func Free(ptr uint32) {
	_ = ptr
}

// readBytes reads length bytes from linear memory at ptr.
//
//nolint:gosec // allow unsafe pointer usage.
func readBytes(ptr, length uint32) []byte {
	if length == 0 {
		return nil
	}

	return (*[1 << 30]byte)(unsafe.Pointer(uintptr(ptr)))[:length:length]
}

// writeBytes writes data into linear memory at ptr.
func writeBytes(ptr uint32, data []byte) {
	dest := readBytes(ptr, uint32(len(data)))
	copy(dest, data)
}
