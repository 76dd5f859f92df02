// pkg/update/progress.go
package update

import (
	"github.com/vbauerster/mpb/v8"

	"github.com/swpatch/swpatch/pkg/swpatch"
)

// ProgressCallback is called for various progress events
type ProgressCallback func(event ProgressEvent)

// ProgressEvent contains progress information
type ProgressEvent struct {
	Type     EventType
	Job      Job
	FilePath string  // file being patched
	Message  string  // engine output
	Current  int64   // bytes received, or file number while patching
	Total    int64   // bytes expected (-1 unknown), or file count while patching
	Fraction float64 // download or patch completion, -1 when unknown
	Speed    int64   // bytes per second
}

// EventType indicates the type of progress event
type EventType int

const (
	EventStart EventType = iota
	EventHopStart
	EventDownloadProgress
	EventDownloadComplete
	EventPatchStart
	EventPatchLog
	EventPatchFileCount
	EventPatchFile
	EventPatchProgress
	EventHopComplete
	EventComplete
	EventError
)

// eventSink forwards engine events of one job to a ProgressCallback
type eventSink struct {
	cb  ProgressCallback
	job Job
}

func (s *eventSink) Log(text string) {
	emit(s.cb, ProgressEvent{Type: EventPatchLog, Job: s.job, Message: text})
}

func (s *eventSink) Progress(fraction float64) {
	emit(s.cb, ProgressEvent{Type: EventPatchProgress, Job: s.job, Fraction: fraction})
}

func (s *eventSink) FileCount(n int) {
	emit(s.cb, ProgressEvent{Type: EventPatchFileCount, Job: s.job, Total: int64(n)})
}

func (s *eventSink) CurrentFile(number int, name string) {
	emit(s.cb, ProgressEvent{Type: EventPatchFile, Job: s.job, FilePath: name, Current: int64(number)})
}

func emit(cb ProgressCallback, ev ProgressEvent) {
	if cb != nil {
		cb(ev)
	}
}

// ProgressBarCallback creates a progress callback that displays a bar per
// download and per applied diff. Call Wait() on the returned container after
// the run.
func ProgressBarCallback() (ProgressCallback, *mpb.Progress) {
	genericCb, progress := swpatch.ProgressBarCallback()
	started := make(map[string]bool)

	callback := func(event ProgressEvent) {
		name := event.Job.To.FileName()
		patchName := "patch " + name

		switch event.Type {
		case EventDownloadProgress:
			if !started[name] && event.Total > 0 {
				started[name] = true
				genericCb(swpatch.ProgressEvent{Type: swpatch.EventFileStart, FilePath: name, Total: event.Total})
			}
			genericCb(swpatch.ProgressEvent{
				Type:     swpatch.EventFileProgress,
				FilePath: name,
				Current:  event.Current,
				Total:    event.Total,
				Speed:    event.Speed,
			})

		case EventDownloadComplete:
			genericCb(swpatch.ProgressEvent{Type: swpatch.EventFileComplete, FilePath: name, Total: event.Total})

		case EventPatchStart:
			genericCb(swpatch.ProgressEvent{Type: swpatch.EventFileStart, FilePath: patchName, Total: 100})

		case EventPatchProgress:
			if event.Fraction >= 0 {
				genericCb(swpatch.ProgressEvent{Type: swpatch.EventFileProgress, FilePath: patchName, Current: int64(event.Fraction * 100)})
			}

		case EventHopComplete:
			genericCb(swpatch.ProgressEvent{Type: swpatch.EventFileComplete, FilePath: patchName, Total: 100})

		case EventError:
			genericCb(swpatch.ProgressEvent{Type: swpatch.EventError, FilePath: name})
			genericCb(swpatch.ProgressEvent{Type: swpatch.EventError, FilePath: patchName})
		}
	}

	return callback, progress
}

// FormatSummary formats an update result into a human-readable summary string
func FormatSummary(result *Result) string {
	return swpatch.FormatSummary(result, swpatch.OperationUpdate)
}
