// pkg/translate/progress.go
package translate

import (
	"github.com/vbauerster/mpb/v8"

	"github.com/swpatch/swpatch/pkg/swpatch"
)

// ProgressCallback is called for various progress events
type ProgressCallback func(event ProgressEvent)

// ProgressEvent contains progress information
type ProgressEvent struct {
	Type     EventType
	FilePath string // governed file name, or archive path for archive events
	Archive  string
	Current  int64
	Total    int64
}

// EventType indicates the type of progress event
type EventType int

const (
	EventStart EventType = iota
	EventArchiveLoad
	EventFileStart
	EventFileComplete
	EventArchiveSave
	EventComplete
	EventError
)

// ProgressBarCallback creates a progress callback that displays multi-progress bars.
// Call Wait() on the returned container after the run.
func ProgressBarCallback() (ProgressCallback, *mpb.Progress) {
	genericCb, progress := swpatch.ProgressBarCallback()

	callback := func(event ProgressEvent) {
		var t swpatch.EventType
		switch event.Type {
		case EventStart:
			t = swpatch.EventStart
		case EventFileComplete:
			t = swpatch.EventFileComplete
		case EventComplete:
			t = swpatch.EventComplete
		case EventError:
			t = swpatch.EventError
		default:
			return
		}
		genericCb(swpatch.ProgressEvent{
			Type:     t,
			FilePath: event.FilePath,
			Current:  event.Current,
			Total:    event.Total,
		})
	}

	return callback, progress
}

// FormatSummary formats a translation result into a human-readable summary string
func FormatSummary(result *Result) string {
	return swpatch.FormatSummary(result, swpatch.OperationTranslate)
}
