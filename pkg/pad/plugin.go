package pad

// PluginType enumerates all supported plugin interface families. The registry uses the
// declared type of an enumerated interface to select the name table it is filed into;
// interfaces declaring a value outside this enumeration are rejected.
type PluginType uint32

const (
	// PluginTypePhysicalControllerBackend identifies plugins implementing Backend.
	PluginTypePhysicalControllerBackend PluginType = iota

	// PluginTypeCount is the sentinel value, total number of enumerators.
	PluginTypeCount
)

// String returns the canonical name of a plugin type, used in configuration and logs.
func (t PluginType) String() string {
	switch t {
	case PluginTypePhysicalControllerBackend:
		return "PhysicalControllerBackend"
	default:
		return "(unknown)"
	}
}

// Plugin is the base contract satisfied by every interface a plugin module offers. Once
// an implementation is handed to the registry it is owned by the registry for the
// remainder of the process; plugin modules are never unloaded during normal operation.
type Plugin interface {
	// PluginType returns the interface family this plugin belongs to. The registry uses
	// the result to determine the concrete interface type.
	PluginType() PluginType

	// PluginName returns the name under which this plugin is registered, which is how
	// users identify it in configuration and how it is identified in the logs. The name
	// must remain constant for the lifetime of the process.
	PluginName() string

	// Initialize is called exactly once, before any other operation. Expensive setup
	// belongs here rather than in a constructor: the host loads every configured plugin
	// module and enumerates every available interface, but it only initializes the
	// interfaces it actually intends to use.
	Initialize() error
}

// Backend is the contract for plugins that communicate with physical controllers.
// Backends own their own reentrancy contract; unless an implementation documents
// otherwise, the host serializes calls targeting the same controller index.
type Backend interface {
	Plugin

	// MaxControllerCount returns the number of controller slots this backend can
	// address. Controllers are identified by index from 0 to one less than the returned
	// value. Returning 0 effectively disables the backend.
	MaxControllerCount() int

	// SupportsController reports whether this backend claims the native device
	// described by the given identity string. A claimed device is hidden from direct
	// enumeration by the host and routed through this backend instead.
	SupportsController(identity string) bool

	// Capabilities returns which components of the physical state this backend actually
	// fills in. The result is expected to be constant per backend instance after
	// Initialize.
	Capabilities() Capabilities

	// ReadState reads the instantaneous input state of the controller at the given
	// index. Called at high frequency from the host polling loop; implementations must
	// be fast and must not block indefinitely. The returned snapshot always carries the
	// hardware status.
	ReadState(controller int) PhysicalState

	// WriteForceFeedback sends actuator magnitudes to the controller at the given
	// index. Failure is reported as a value; it is never an error condition that
	// escalates beyond the caller.
	WriteForceFeedback(controller int, state ForceFeedbackState) bool
}
