package rtpatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/swpatch/swpatch/internal/version"
)

// Result codes with a meaning for the caller
const (
	ResultSuccess        uint64 = 0
	ResultGenericFailure uint64 = 1
	ResultCancelFloor    uint64 = 10000
	ResultUserAbort      uint64 = 32769
)

// Kind categorizes a failed patch
type Kind int

const (
	KindGeneric Kind = iota
	KindDirectoryMissing
	KindPatchFileUnreadable
	KindCorruptFile
	KindRenameFailed
	KindInsufficientStorage
	KindClockSkew
	KindAdminRequired
)

func (k Kind) String() string {
	switch k {
	case KindDirectoryMissing:
		return "directory missing"
	case KindPatchFileUnreadable:
		return "cannot open patch file"
	case KindCorruptFile:
		return "corrupt or missing file"
	case KindRenameFailed:
		return "rename failed"
	case KindInsufficientStorage:
		return "insufficient storage"
	case KindClockSkew:
		return "clock skew"
	case KindAdminRequired:
		return "administrator rights required"
	default:
		return "patch failed"
	}
}

// KindOf maps an engine result code to its failure kind
func KindOf(code uint64) Kind {
	switch code {
	case 4:
		return KindDirectoryMissing
	case 7, 18, 20:
		return KindPatchFileUnreadable
	case 9, 15, 36:
		return KindCorruptFile
	case 22:
		return KindRenameFailed
	case 29:
		return KindInsufficientStorage
	case 32:
		return KindClockSkew
	case 49:
		return KindAdminRequired
	default:
		return KindGeneric
	}
}

// ErrCancelled is returned when the engine stopped on request. It matches
// context.Canceled.
var ErrCancelled = &cancelError{}

type cancelError struct{}

func (*cancelError) Error() string { return "patch cancelled" }

func (*cancelError) Is(target error) bool { return target == context.Canceled }

// ResultError is a failed patch application
type ResultError struct {
	Code     uint64
	Kind     Kind
	Message  string          // last text output of the engine
	LogPath  string          // log written during the apply
	FileName string          // file being patched when it stopped
	Version  version.Version // client version the diff applies to
}

func (e *ResultError) Error() string {
	msg := fmt.Sprintf("%s (result %d) at version %s", e.Kind, e.Code, e.Version)
	if e.FileName != "" {
		msg += fmt.Sprintf(" file %s", e.FileName)
	}
	if e.Kind == KindGeneric && e.LogPath != "" {
		msg += fmt.Sprintf(", see %s", e.LogPath)
	}
	return msg
}

// Report describes the state of an apply when the engine returned
type Report struct {
	Message  string
	LogPath  string
	FileName string
	Version  version.Version
}

// Classify turns an engine result code into nil, ErrCancelled or a
// *ResultError.
func Classify(code uint64, r Report) error {
	switch {
	case code == ResultSuccess:
		return nil
	case code > ResultCancelFloor:
		return ErrCancelled
	}
	return &ResultError{
		Code:     code,
		Kind:     KindOf(code),
		Message:  r.Message,
		LogPath:  r.LogPath,
		FileName: r.FileName,
		Version:  r.Version,
	}
}

// AsResultError extracts a *ResultError from err
func AsResultError(err error) (*ResultError, bool) {
	var re *ResultError
	ok := errors.As(err, &re)
	return re, ok
}
