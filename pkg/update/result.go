// pkg/update/result.go
package update

import "github.com/swpatch/swpatch/internal/version"

// Result contains statistics about an update run
type Result struct {
	// Client version when the run started
	From version.Version

	// Client version when the run stopped
	Current version.Version

	// Server version the run was aiming at
	Server version.Version

	// Hops resolved so far, applied or not
	Jobs []Job

	// Number of diffs applied
	HopsApplied int

	// Bytes received from the repository
	BytesDownloaded uint64
}

// UpToDate reports whether the client reached the server version
func (r *Result) UpToDate() bool {
	return !r.Current.Less(r.Server)
}

// Success returns true if every resolved hop was applied
func (r *Result) Success() bool {
	return r.UpToDate() && r.HopsApplied == len(r.Jobs)
}

func (r *Result) GetFilesTotal() int      { return len(r.Jobs) }
func (r *Result) GetFilesProcessed() int  { return r.HopsApplied }
func (r *Result) GetBytesWritten() uint64 { return r.BytesDownloaded }
