package rtpatch

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kr/binarydist"
	"github.com/ulikunitz/xz"
)

type diffEntry struct {
	name string
	data []byte
}

func writeDiff(t *testing.T, path string, entries []diffEntry) {
	t.Helper()

	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(xw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0644, Size: int64(len(e.data)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(e.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func bsdiff(t *testing.T, old, new []byte) []byte {
	t.Helper()
	var patch bytes.Buffer
	if err := binarydist.Diff(bytes.NewReader(old), bytes.NewReader(new), &patch); err != nil {
		t.Fatal(err)
	}
	return patch.Bytes()
}

func TestDiffEngineApply(t *testing.T) {
	game := t.TempDir()
	oldExe := bytes.Repeat([]byte("SoulWorker 1.0.0.11 "), 64)
	newExe := bytes.Repeat([]byte("SoulWorker 1.0.0.12 "), 64)
	if err := os.WriteFile(filepath.Join(game, "SoulWorker.exe"), oldExe, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(game, "obsolete.dat"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	diff := filepath.Join(t.TempDir(), "1_0_0_12.RTP")
	writeDiff(t, diff, []diffEntry{
		{"SoulWorker.exe.bsdiff", bsdiff(t, oldExe, newExe)},
		{"datas/data12.v", []byte("new archive")},
		{"obsolete.dat.delete", nil},
	})

	var log bytes.Buffer
	sink := &fakeSink{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	d := NewDispatcher(ctx, sink, &log)

	code := DiffEngine{}.Apply(Command{GameDir: game, DiffPath: diff}, d.Handle)
	if code != ResultSuccess {
		t.Fatalf("Expected success, got %d: %s", code, log.String())
	}

	got, _ := os.ReadFile(filepath.Join(game, "SoulWorker.exe"))
	if !bytes.Equal(got, newExe) {
		t.Errorf("Patched file mismatch")
	}
	got, _ = os.ReadFile(filepath.Join(game, "datas", "data12.v"))
	if string(got) != "new archive" {
		t.Errorf("Expected replaced file, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(game, "obsolete.dat")); !os.IsNotExist(err) {
		t.Errorf("Expected deleted file, got %v", err)
	}
	if sink.fileCount != 3 || len(sink.files) != 3 {
		t.Errorf("Expected 3 files reported, got %d / %v", sink.fileCount, sink.files)
	}
	if last := sink.progress[len(sink.progress)-1]; last != 1 {
		t.Errorf("Expected final progress 1, got %v", last)
	}
}

func TestDiffEngineFailures(t *testing.T) {
	game := t.TempDir()
	missingDir := filepath.Join(game, "nope")

	ack := func(Message) Response { return Ack }

	if code := (DiffEngine{}).Apply(Command{GameDir: missingDir, DiffPath: "x"}, ack); code != codeDirMissing {
		t.Errorf("Expected %d for missing directory, got %d", codeDirMissing, code)
	}

	if code := (DiffEngine{}).Apply(Command{GameDir: game, DiffPath: filepath.Join(game, "none.RTP")}, ack); code != codeOpenPatch {
		t.Errorf("Expected %d for missing diff, got %d", codeOpenPatch, code)
	}

	diff := filepath.Join(t.TempDir(), "1_0_0_2.RTP")
	writeDiff(t, diff, []diffEntry{{"absent.bin.bsdiff", []byte("garbage")}})
	if code := (DiffEngine{}).Apply(Command{GameDir: game, DiffPath: diff}, ack); KindOf(code) != KindCorruptFile {
		t.Errorf("Expected corrupt file kind, got %d", code)
	}

	writeDiff(t, diff, []diffEntry{{"../escape.bin", []byte("x")}})
	if code := (DiffEngine{}).Apply(Command{GameDir: game, DiffPath: diff}, ack); code != codeCorruptFile {
		t.Errorf("Expected %d for escaping entry, got %d", codeCorruptFile, code)
	}
}

func TestDiffEngineAbort(t *testing.T) {
	game := t.TempDir()
	diff := filepath.Join(t.TempDir(), "1_0_0_3.RTP")
	writeDiff(t, diff, []diffEntry{{"a.bin", []byte("a")}, {"b.bin", []byte("b")}})

	abortOnFile := func(m Message) Response {
		if m.ID == MsgCurrentFile {
			return Abort
		}
		return Ack
	}
	code := DiffEngine{}.Apply(Command{GameDir: game, DiffPath: diff}, abortOnFile)
	if code != ResultUserAbort {
		t.Errorf("Expected user abort, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(game, "a.bin")); !os.IsNotExist(err) {
		t.Errorf("Expected nothing written after abort")
	}
}
