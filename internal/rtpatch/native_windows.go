//go:build windows

package rtpatch

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// DefaultDLL returns the engine library matching the process architecture
func DefaultDLL() (dll, proc string) {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		return "patchw64.dll", "RTPatchApply64"
	}
	return "patchw32.dll", "RTPatchApply32@12"
}

// NativeEngine calls the RTPatch library
type NativeEngine struct {
	proc *windows.LazyProc
	mu   sync.Mutex
}

// NewNativeEngine loads proc from dll. Empty names select DefaultDLL.
func NewNativeEngine(dll, proc string) (*NativeEngine, error) {
	if dll == "" || proc == "" {
		dll, proc = DefaultDLL()
	}
	lib := windows.NewLazyDLL(dll)
	if err := lib.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", dll, err)
	}
	p := lib.NewProc(proc)
	if err := p.Find(); err != nil {
		return nil, fmt.Errorf("find %s in %s: %w", proc, dll, err)
	}
	return &NativeEngine{proc: p}, nil
}

var (
	// callbacks created by windows.NewCallback are never released, the
	// trampoline is shared and routes to the running apply
	trampolineOnce sync.Once
	trampoline     uintptr
	activeMu       sync.Mutex
	active         Callback

	emptyAnswer = []byte{0}
)

func dispatch(id uint32, ptr uintptr) uintptr {
	activeMu.Lock()
	cb := active
	activeMu.Unlock()
	if cb == nil {
		return uintptr(unsafe.Pointer(&emptyAnswer[0]))
	}

	m := Message{ID: id}
	if ptr != 0 {
		switch {
		case id == MsgPercent || id == MsgFileCount:
			m.Value = *(*int32)(unsafe.Pointer(ptr))
		case id == MsgCurrentFile || IsText(id):
			m.Text = windows.BytePtrToString((*byte)(unsafe.Pointer(ptr)))
		}
	}

	if cb(m) == Abort {
		return 0
	}
	return uintptr(unsafe.Pointer(&emptyAnswer[0]))
}

// Apply runs the engine synchronously with the wait flag set
func (e *NativeEngine) Apply(cmd Command, cb Callback) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	trampolineOnce.Do(func() {
		trampoline = windows.NewCallback(dispatch)
	})

	activeMu.Lock()
	active = cb
	activeMu.Unlock()
	defer func() {
		activeMu.Lock()
		active = nil
		activeMu.Unlock()
	}()

	line, err := windows.BytePtrFromString(cmd.String())
	if err != nil {
		return ResultGenericFailure
	}

	r1, r2, _ := e.proc.Call(uintptr(unsafe.Pointer(line)), trampoline, 1)
	if unsafe.Sizeof(uintptr(0)) == 4 {
		return uint64(r1) | uint64(r2)<<32
	}
	return uint64(r1)
}
