// pkg/update/options.go
package update

import (
	"io"

	"github.com/swpatch/swpatch/internal/remote"
	"github.com/swpatch/swpatch/internal/rtpatch"
)

// DefaultLogDir receives one log per applied diff
const DefaultLogDir = "RTPatchLogs"

// Options configures an update run. The value is read once at the start of
// the run and never modified afterwards.
type Options struct {
	// Game installation directory holding Ver.ini; diffs are downloaded here
	GamePath string

	// Version descriptor, an http(s) URL or a local file
	ServerInfo string

	// Path appended to the descriptor's download address to build the
	// repository URL
	RepositoryPath string

	// Directory receiving the patch logs
	// Default: DefaultLogDir
	LogDir string

	// Engine applying each diff
	// Default: rtpatch.DiffEngine
	Engine rtpatch.Engine

	// Download rate limit in bytes per second, 0 = unlimited
	RateLimit int64

	// Client used for the descriptor, the probes and the downloads
	// Default: remote.New()
	Client *remote.Client

	// DryRun resolves the whole chain without downloading anything
	DryRun bool

	// Verbose enables detailed logging
	Verbose bool

	// ProgressWriter receives user output (optional)
	ProgressWriter io.Writer

	// Quiet suppresses all output except errors
	Quiet bool
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() *Options {
	return &Options{
		LogDir: DefaultLogDir,
		Engine: rtpatch.DiffEngine{},
		Client: remote.New(),
	}
}

// Validate checks if options are valid
func (o *Options) Validate() error {
	if o.GamePath == "" {
		return ErrGamePathRequired
	}
	if o.ServerInfo == "" {
		return ErrServerInfoRequired
	}
	if o.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if o.LogDir == "" {
		o.LogDir = DefaultLogDir
	}
	if o.Engine == nil {
		o.Engine = rtpatch.DiffEngine{}
	}
	if o.Client == nil {
		o.Client = remote.New()
	}
	if o.Quiet {
		o.Verbose = false
	}
	return nil
}
