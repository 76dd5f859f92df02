// Package rtpatch drives an incremental patch engine through its numbered
// callback protocol and turns its result code into a typed outcome.
package rtpatch

import (
	"context"
	"fmt"
	"io"
)

// Callback message ids sent by the engine
const (
	MsgPercent     uint32 = 5
	MsgFileCount   uint32 = 6
	MsgCurrentFile uint32 = 7
)

// PercentScale is the value of MsgPercent at 100%
const PercentScale = 0x8000

// Message is one engine callback. Text is set for text and current-file
// messages, Value for the percentage and file-count messages.
type Message struct {
	ID    uint32
	Text  string
	Value int32
}

// Response tells the engine whether to continue
type Response int

const (
	// Ack lets the engine go on
	Ack Response = iota
	// Abort asks the engine to stop as soon as possible
	Abort
)

// Callback receives every engine message
type Callback func(Message) Response

// EventSink observes a running patch
type EventSink interface {
	// Log receives the engine's own text output
	Log(text string)
	// Progress reports the completion of the current file in [0,1], or -1
	// when unknown
	Progress(fraction float64)
	// FileCount reports how many files the patch touches
	FileCount(n int)
	// CurrentFile reports the file being patched, numbered from 1
	CurrentFile(number int, name string)
}

// IsText reports whether id carries engine output for the log
func IsText(id uint32) bool {
	switch id {
	case 1, 2, 3, 4, 8, 9, 10, 11, 12:
		return true
	}
	return false
}

// IsAbortOnError reports whether id is one of the abort-on-error
// notifications. The engine cleans up by itself, they are ignored.
func IsAbortOnError(id uint32) bool {
	switch id {
	case 14, 17, 18:
		return true
	}
	return false
}

// Dispatcher routes engine messages to a sink and a log writer and keeps the
// state needed to report a failure.
type Dispatcher struct {
	ctx  context.Context
	sink EventSink
	log  io.Writer

	lastMessage string
	fileCount   int
	fileNumber  int
	fileName    string
}

// NewDispatcher creates a dispatcher. log and sink may be nil.
func NewDispatcher(ctx context.Context, sink EventSink, log io.Writer) *Dispatcher {
	if log == nil {
		log = io.Discard
	}
	return &Dispatcher{ctx: ctx, sink: sink, log: log}
}

// Handle processes one message. It answers Abort once ctx is done.
func (d *Dispatcher) Handle(m Message) Response {
	switch {
	case IsText(m.ID):
		d.lastMessage = m.Text
		io.WriteString(d.log, m.Text)
		if d.sink != nil {
			d.sink.Log(m.Text)
		}

	case IsAbortOnError(m.ID):

	case m.ID == MsgPercent:
		fmt.Fprintf(d.log, "[%d%%]", int64(m.Value)*100/PercentScale)
		if d.sink != nil {
			d.sink.Progress(percentFraction(m.Value))
		}

	case m.ID == MsgFileCount:
		d.fileCount = int(m.Value)
		fmt.Fprintf(d.log, "File Count=[%d]\n", m.Value)
		if d.sink != nil {
			d.sink.FileCount(d.fileCount)
		}

	case m.ID == MsgCurrentFile:
		d.fileNumber++
		d.fileName = m.Text
		fmt.Fprintf(d.log, "Patching=[%s]\n", m.Text)
		if d.sink != nil {
			d.sink.CurrentFile(d.fileNumber, m.Text)
			d.sink.Progress(-1)
		}
	}

	if d.ctx.Err() != nil {
		return Abort
	}
	return Ack
}

// LastMessage returns the most recent text output
func (d *Dispatcher) LastMessage() string {
	return d.lastMessage
}

// FileName returns the file being patched when the engine stopped
func (d *Dispatcher) FileName() string {
	return d.fileName
}

// Files returns the current file number and the announced file count
func (d *Dispatcher) Files() (number, count int) {
	return d.fileNumber, d.fileCount
}

func percentFraction(v int32) float64 {
	switch {
	case v <= 0:
		return 0
	case v >= PercentScale:
		return 1
	}
	return float64(v) / PercentScale
}
