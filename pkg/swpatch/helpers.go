// pkg/swpatch/helpers.go
package swpatch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// OperationType indicates which operation produced a result
type OperationType string

const (
	OperationTranslate OperationType = "translate"
	OperationUpdate    OperationType = "update"
)

// ProgressEvent is a generic progress event shared by translate and update
type ProgressEvent struct {
	Type         EventType
	FilePath     string
	Current      int64
	Total        int64
	CurrentBytes uint64
	TotalBytes   uint64
	Speed        int64 // bytes per second, downloads only
}

// EventType indicates the type of progress event
type EventType int

const (
	EventStart EventType = iota
	EventFileStart
	EventFileProgress
	EventFileComplete
	EventComplete
	EventError
)

// Result is implemented by both translate and update results
type Result interface {
	GetFilesTotal() int
	GetFilesProcessed() int
	GetBytesWritten() uint64
	Success() bool
}

// ProgressBarCallback creates a progress callback that displays multi-progress bars.
// Call Wait() on the returned container after the operation.
func ProgressBarCallback() (func(ProgressEvent), *mpb.Progress) {
	progress := mpb.New(
		mpb.WithWidth(60),
		mpb.WithRefreshRate(100),
	)

	var overallBar *mpb.Bar
	var fileBars sync.Map // map[string]*mpb.Bar
	var speeds sync.Map   // map[string]int64

	callback := func(event ProgressEvent) {
		switch event.Type {
		case EventStart:
			overallBar = progress.AddBar(event.Total,
				mpb.PrependDecorators(
					decor.Name("Total", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Percentage(decor.WC{W: 5}),
				),
				mpb.BarPriority(1000),
			)

		case EventFileStart:
			if event.Total == 0 {
				return
			}
			shortName := TruncateLeft(event.FilePath, 30)
			name := event.FilePath
			bar := progress.AddBar(event.Total,
				mpb.PrependDecorators(
					decor.Name(shortName, decor.WC{C: decor.DindentRight | decor.DextraSpace, W: 32}),
				),
				mpb.AppendDecorators(
					decor.CountersKibiByte("% .1f / % .1f", decor.WC{W: 18}),
					decor.Any(func(decor.Statistics) string {
						if v, ok := speeds.Load(name); ok && v.(int64) > 0 {
							return humanize.IBytes(uint64(v.(int64))) + "/s"
						}
						return ""
					}, decor.WC{W: 12}),
					decor.Percentage(decor.WC{W: 5}),
				),
				mpb.BarRemoveOnComplete(),
			)
			fileBars.Store(event.FilePath, bar)

		case EventFileProgress:
			if event.Speed > 0 {
				speeds.Store(event.FilePath, event.Speed)
			}
			if bar, ok := fileBars.Load(event.FilePath); ok {
				bar.(*mpb.Bar).SetCurrent(event.Current)
			}

		case EventFileComplete:
			if bar, ok := fileBars.Load(event.FilePath); ok {
				b := bar.(*mpb.Bar)
				if event.Total > 0 {
					b.SetCurrent(event.Total)
				} else {
					b.Abort(true)
				}
				fileBars.Delete(event.FilePath)
			}
			speeds.Delete(event.FilePath)
			if overallBar != nil {
				overallBar.Increment()
			}

		case EventError:
			if bar, ok := fileBars.Load(event.FilePath); ok {
				bar.(*mpb.Bar).Abort(true)
				fileBars.Delete(event.FilePath)
			}
			if overallBar != nil {
				overallBar.Abort(false)
			}

		case EventComplete:
			if overallBar != nil && event.Total > 0 {
				overallBar.SetCurrent(event.Total)
			}
		}
	}

	return callback, progress
}

// FormatSummary formats a result into a human-readable summary string
func FormatSummary(result Result, operation OperationType) string {
	var sb strings.Builder

	sb.WriteString("Summary:\n")
	switch operation {
	case OperationTranslate:
		fmt.Fprintf(&sb, "  Files patched:   %d / %d\n", result.GetFilesProcessed(), result.GetFilesTotal())
		fmt.Fprintf(&sb, "  Archives size:   %s\n", FormatSize(result.GetBytesWritten()))
	case OperationUpdate:
		fmt.Fprintf(&sb, "  Patches applied: %d / %d\n", result.GetFilesProcessed(), result.GetFilesTotal())
		fmt.Fprintf(&sb, "  Downloaded:      %s\n", FormatSize(result.GetBytesWritten()))
	}

	return sb.String()
}

// FormatSize formats bytes into human-readable string
func FormatSize(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// TruncateLeft truncates a path from the left to fit maxLen, preserving the filename
func TruncateLeft(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	// Try to preserve at least the filename
	filename := filepath.Base(path)
	if len(filename) >= maxLen-3 {
		return "..." + filename[len(filename)-(maxLen-3):]
	}

	return "..." + path[len(path)-(maxLen-3):]
}
