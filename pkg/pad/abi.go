package pad

// AbiVersion is the version of the module ABI described by the export names below. The
// host refuses to enumerate modules reporting a different version; there is no
// negotiation across the binary boundary.
const AbiVersion uint32 = 1

// Exported symbol names resolved by the host on every plugin module, by exact name
// match. PadPluginGetCount and PadPluginGetInterface are the two enumeration entry
// points; the remaining PadPlugin names form the per-interface base table and the
// PadBackend names form the physical controller backend function table.
//
// Interface handles returned by PadPluginGetInterface are opaque uint32 values scoped
// to the module that produced them, with 0 reserved as the null sentinel for an invalid
// index. Handles stay valid for the remainder of the process; the module must not
// recycle them.
const (
	ExportAbiVersion   = "PadPluginAbiVersion"   // func() uint32
	ExportGetCount     = "PadPluginGetCount"     // func() uint32
	ExportGetInterface = "PadPluginGetInterface" // func(index uint32) uint32

	ExportInterfaceType = "PadPluginInterfaceType" // func(handle uint32) uint32
	ExportInterfaceName = "PadPluginInterfaceName" // func(handle uint32) uint64
	ExportInterfaceInit = "PadPluginInterfaceInit" // func(handle uint32) uint32

	ExportControllerCount    = "PadBackendControllerCount"    // func(handle uint32) uint32
	ExportSupportsController = "PadBackendSupportsController" // func(handle, ptr, len uint32) uint32
	ExportCapabilities       = "PadBackendCapabilities"       // func(handle uint32) uint32
	ExportReadState          = "PadBackendReadState"          // func(handle, index uint32) uint64
	ExportWriteForceFeedback = "PadBackendWriteForceFeedback" // func(handle, index uint32, packed uint64) uint32

	ExportAlloc = "Alloc" // func(size uint32) uint32
	ExportFree  = "Free"  // func(ptr uint32)
)

// InitOk and InitFailed are the results of PadPluginInterfaceInit.
const (
	InitOk     uint32 = 0
	InitFailed uint32 = 1
)

// PackResult combines a guest memory pointer and a length into a single uint64 result
// word, pointer in the high half.
func PackResult(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

// UnpackResult splits a packed result word into its pointer and length halves.
func UnpackResult(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed)
}
