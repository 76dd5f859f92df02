// pkg/translate/errors.go
package translate

import (
	"errors"
	"fmt"
)

var (
	// ErrGamePathRequired is returned when the game directory is not specified
	ErrGamePathRequired = errors.New("game path is required")

	// ErrOutputPathRequired is returned when the output directory is not specified
	ErrOutputPathRequired = errors.New("output path is required")

	// ErrManifestRequired is returned when neither files nor a manifest are given
	ErrManifestRequired = errors.New("a file manifest is required")

	// ErrInvalidManifest is returned when a manifest section is incomplete
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrDuplicateEntry is returned when two governed files target the same entry
	ErrDuplicateEntry = errors.New("duplicate archive entry")
)

// FileError reports the governed file a run failed on
type FileError struct {
	File    string
	Archive string
	Entry   string
	Err     error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s (%s in %s): %v", e.File, e.Entry, e.Archive, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
