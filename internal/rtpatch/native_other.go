//go:build !windows

package rtpatch

// DefaultDLL returns the engine library matching the process architecture
func DefaultDLL() (dll, proc string) {
	return "", ""
}

// NativeEngine is unavailable on this platform
type NativeEngine struct{}

// NewNativeEngine always fails on this platform
func NewNativeEngine(dll, proc string) (*NativeEngine, error) {
	return nil, ErrNativeUnsupported
}

// Apply reports a generic failure
func (*NativeEngine) Apply(Command, Callback) uint64 {
	return ResultGenericFailure
}
