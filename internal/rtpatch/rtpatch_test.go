package rtpatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/swpatch/swpatch/internal/version"
)

type fakeSink struct {
	logs      []string
	progress  []float64
	fileCount int
	files     []string
}

func (s *fakeSink) Log(text string)           { s.logs = append(s.logs, text) }
func (s *fakeSink) Progress(fraction float64) { s.progress = append(s.progress, fraction) }
func (s *fakeSink) FileCount(n int)           { s.fileCount = n }
func (s *fakeSink) CurrentFile(n int, name string) {
	s.files = append(s.files, name)
}

func TestDispatcher(t *testing.T) {
	var log bytes.Buffer
	sink := &fakeSink{}
	d := NewDispatcher(context.Background(), sink, &log)

	msgs := []Message{
		{ID: 1, Text: "RTPatch starting\n"},
		{ID: MsgFileCount, Value: 2},
		{ID: MsgCurrentFile, Text: "data12.v"},
		{ID: MsgPercent, Value: PercentScale / 2},
		{ID: 14},
		{ID: MsgCurrentFile, Text: "SoulWorker.exe"},
		{ID: MsgPercent, Value: PercentScale},
		{ID: 9, Text: "done"},
		{ID: 99, Text: "ignored"},
	}
	for _, m := range msgs {
		if r := d.Handle(m); r != Ack {
			t.Fatalf("Expected Ack for message %d, got %v", m.ID, r)
		}
	}

	want := "RTPatch starting\nFile Count=[2]\nPatching=[data12.v]\n[50%]Patching=[SoulWorker.exe]\n[100%]done"
	if log.String() != want {
		t.Errorf("Unexpected log:\n%q\nwant\n%q", log.String(), want)
	}
	if d.LastMessage() != "done" {
		t.Errorf("Expected last message done, got %q", d.LastMessage())
	}
	if n, c := d.Files(); n != 2 || c != 2 {
		t.Errorf("Expected file 2 of 2, got %d of %d", n, c)
	}
	if d.FileName() != "SoulWorker.exe" {
		t.Errorf("Unexpected file name %q", d.FileName())
	}
	if sink.fileCount != 2 || len(sink.files) != 2 || len(sink.logs) != 2 {
		t.Errorf("Unexpected sink state %+v", sink)
	}
	wantProgress := []float64{-1, 0.5, -1, 1}
	if len(sink.progress) != len(wantProgress) {
		t.Fatalf("Expected %d progress events, got %v", len(wantProgress), sink.progress)
	}
	for i, p := range wantProgress {
		if sink.progress[i] != p {
			t.Errorf("progress[%d]: expected %v, got %v", i, p, sink.progress[i])
		}
	}
}

func TestDispatcherAbortsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(ctx, nil, nil)

	if r := d.Handle(Message{ID: 1, Text: "x"}); r != Ack {
		t.Fatalf("Expected Ack before cancel, got %v", r)
	}
	cancel()
	if r := d.Handle(Message{ID: MsgPercent, Value: 10}); r != Abort {
		t.Errorf("Expected Abort after cancel, got %v", r)
	}
}

func TestCommandString(t *testing.T) {
	cmd := Command{GameDir: `C:\Games\SoulWorker`, DiffPath: `C:\Games\SoulWorker\1_0_0_12.RTP`}
	want := `/u /nos "C:\Games\SoulWorker" "C:\Games\SoulWorker\1_0_0_12.RTP"`
	if cmd.String() != want {
		t.Errorf("Expected %s, got %s", want, cmd.String())
	}
}

func TestClassify(t *testing.T) {
	report := Report{
		Message:  "file is corrupt",
		LogPath:  "logs/1_0_0_12.RTP.log",
		FileName: "data.arc",
		Version:  version.New(1, 0, 0, 12),
	}

	if err := Classify(0, report); err != nil {
		t.Errorf("Expected nil for success, got %v", err)
	}

	err := Classify(9, report)
	re, ok := AsResultError(err)
	if !ok {
		t.Fatalf("Expected ResultError, got %v", err)
	}
	if re.Kind != KindCorruptFile || re.FileName != "data.arc" || re.Version != version.New(1, 0, 0, 12) {
		t.Errorf("Unexpected result error %+v", re)
	}
	if !strings.Contains(re.Error(), "data.arc") {
		t.Errorf("Expected file name in message, got %s", re.Error())
	}

	for _, code := range []uint64{10001, ResultUserAbort, 32770} {
		err := Classify(code, report)
		if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
			t.Errorf("Expected cancellation for %d, got %v", code, err)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		code uint64
		kind Kind
	}{
		{4, KindDirectoryMissing},
		{7, KindPatchFileUnreadable},
		{18, KindPatchFileUnreadable},
		{20, KindPatchFileUnreadable},
		{9, KindCorruptFile},
		{15, KindCorruptFile},
		{36, KindCorruptFile},
		{22, KindRenameFailed},
		{29, KindInsufficientStorage},
		{32, KindClockSkew},
		{49, KindAdminRequired},
		{2, KindGeneric},
		{10000, KindGeneric},
	}
	for _, tt := range tests {
		if got := KindOf(tt.code); got != tt.kind {
			t.Errorf("KindOf(%d): expected %v, got %v", tt.code, tt.kind, got)
		}
	}
}
