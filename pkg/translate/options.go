// pkg/translate/options.go
package translate

import (
	"io"

	"github.com/swpatch/swpatch/internal/remote"
)

// Options configures a translation run. The value is read once at the
// start of the run and never modified afterwards.
type Options struct {
	// Game installation directory; archives are read from here
	GamePath string

	// Directory receiving the patched archives, laid out like GamePath
	OutputPath string

	// Directory holding the translation sources named by the manifest
	DataPath string

	// Governed files. When empty, ManifestPath is loaded.
	Files []File

	// Manifest INI listing the governed files
	ManifestPath string

	// Password resource, an http(s) URL or a local file (optional)
	PasswordsSource string

	// Client used to fetch PasswordsSource
	// Default: remote.New()
	Client *remote.Client

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
		Client: remote.New(),
	}
}

// Validate checks if options are valid
func (o *Options) Validate() error {
	if o.GamePath == "" {
		return ErrGamePathRequired
	}
	if o.OutputPath == "" {
		return ErrOutputPathRequired
	}
	if len(o.Files) == 0 && o.ManifestPath == "" {
		return ErrManifestRequired
	}
	if o.DataPath == "" {
		o.DataPath = "."
	}
	if o.Client == nil {
		o.Client = remote.New()
	}
	if o.Quiet {
		o.Verbose = false
	}
	return nil
}
