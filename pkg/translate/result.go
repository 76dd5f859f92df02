// pkg/translate/result.go
package translate

// Result contains statistics about a translation run
type Result struct {
	// Number of governed files
	FilesTotal int

	// Number of files written into their archive
	FilesProcessed int

	// Archives written to the output directory, in save order
	Archives []string

	// Total size of the written archives in bytes
	BytesWritten uint64
}

// Success returns true if every governed file was patched
func (r *Result) Success() bool {
	return r.FilesProcessed == r.FilesTotal
}

func (r *Result) GetFilesTotal() int      { return r.FilesTotal }
func (r *Result) GetFilesProcessed() int  { return r.FilesProcessed }
func (r *Result) GetBytesWritten() uint64 { return r.BytesWritten }
