package rtpatch

import (
	"errors"
	"fmt"
)

// ErrNativeUnsupported is returned where the RTPatch library cannot be loaded
var ErrNativeUnsupported = errors.New("native patch engine is only available on windows")

// Command names the game directory to patch and the diff to apply
type Command struct {
	GameDir  string
	DiffPath string
}

// String renders the engine command line: update mode, no subdirectory search
func (c Command) String() string {
	return fmt.Sprintf(`/u /nos "%s" "%s"`, c.GameDir, c.DiffPath)
}

// Engine applies one diff. It calls cb synchronously for every message and
// returns the engine result code.
type Engine interface {
	Apply(cmd Command, cb Callback) uint64
}

// EngineFunc adapts a function to Engine
type EngineFunc func(cmd Command, cb Callback) uint64

// Apply calls f
func (f EngineFunc) Apply(cmd Command, cb Callback) uint64 {
	return f(cmd, cb)
}
