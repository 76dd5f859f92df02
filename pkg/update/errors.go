// pkg/update/errors.go
package update

import (
	"errors"
	"fmt"

	"github.com/swpatch/swpatch/internal/version"
)

var (
	// ErrGamePathRequired is returned when the game directory is not specified
	ErrGamePathRequired = errors.New("game path is required")

	// ErrServerInfoRequired is returned when the version descriptor is not specified
	ErrServerInfoRequired = errors.New("server info source is required")

	// ErrInvalidRateLimit is returned for a negative rate limit
	ErrInvalidRateLimit = errors.New("rate limit must not be negative")

	// ErrVersionChainExhausted is returned when no further hop exists while
	// the client is still behind the server
	ErrVersionChainExhausted = errors.New("no further patch found")
)

// DownloadError reports an unexpected HTTP answer for a diff download
type DownloadError struct {
	Code int
	URL  string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("received an unexpected http response code (%v) when trying to download %s", e.Code, e.URL)
}

// HopError reports the hop an update stopped at. To is zero when the next
// version could not be resolved.
type HopError struct {
	From version.Version
	To   version.Version
	Err  error
}

func (e *HopError) Error() string {
	if e.To == (version.Version{}) {
		return fmt.Sprintf("resolve after %s: %v", e.From, e.Err)
	}
	return fmt.Sprintf("update %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *HopError) Unwrap() error {
	return e.Err
}
