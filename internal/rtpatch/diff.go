package rtpatch

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kr/binarydist"
	"github.com/ulikunitz/xz"
)

// Entry suffixes understood by DiffEngine
const (
	PatchSuffix  = ".bsdiff"
	DeleteSuffix = ".delete"
)

// Result codes produced by DiffEngine, shared with the native engine table
const (
	codeDirMissing  uint64 = 4
	codeOpenPatch   uint64 = 7
	codeCorruptFile uint64 = 9
	codeReadPatch   uint64 = 20
	codeRename      uint64 = 22
	codeStorage     uint64 = 29
	codeMissingFile uint64 = 36
)

// msgText is the text message id DiffEngine reports its output with
const msgText uint32 = 1

// DiffEngine applies a tar.xz diff with the same callback protocol as the
// native engine. Each regular entry is either a bsdiff patch of an existing
// file (name + ".bsdiff"), a deletion marker (name + ".delete") or a full
// replacement.
type DiffEngine struct{}

// Apply applies cmd.DiffPath to cmd.GameDir
func (DiffEngine) Apply(cmd Command, cb Callback) uint64 {
	if fi, err := os.Stat(cmd.GameDir); err != nil || !fi.IsDir() {
		cb(Message{ID: msgText, Text: fmt.Sprintf("Directory %s not found\n", cmd.GameDir)})
		return codeDirMissing
	}

	count, err := countEntries(cmd.DiffPath)
	if err != nil {
		cb(Message{ID: msgText, Text: fmt.Sprintf("Cannot read %s: %v\n", cmd.DiffPath, err)})
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return codeOpenPatch
		}
		return codeReadPatch
	}
	if cb(Message{ID: MsgFileCount, Value: int32(count)}) == Abort {
		return ResultUserAbort
	}

	f, err := os.Open(cmd.DiffPath)
	if err != nil {
		return codeOpenPatch
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return codeReadPatch
	}
	tr := tar.NewReader(xr)

	done := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			cb(Message{ID: msgText, Text: fmt.Sprintf("Cannot read %s: %v\n", cmd.DiffPath, err)})
			return codeReadPatch
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name, op := splitEntry(hdr.Name)
		target, ok := targetPath(cmd.GameDir, name)
		if !ok {
			cb(Message{ID: msgText, Text: fmt.Sprintf("Invalid entry %s\n", hdr.Name)})
			return codeCorruptFile
		}
		if cb(Message{ID: MsgCurrentFile, Text: name}) == Abort {
			return ResultUserAbort
		}

		if code := applyEntry(op, target, tr); code != ResultSuccess {
			cb(Message{ID: msgText, Text: fmt.Sprintf("Failed to patch %s (%d)\n", name, code)})
			return code
		}

		done++
		if cb(Message{ID: MsgPercent, Value: int32(done * PercentScale / count)}) == Abort {
			return ResultUserAbort
		}
	}

	cb(Message{ID: msgText, Text: fmt.Sprintf("%d files updated\n", done)})
	return ResultSuccess
}

type entryOp int

const (
	opReplace entryOp = iota
	opPatch
	opDelete
)

func splitEntry(name string) (string, entryOp) {
	name = path.Clean(strings.TrimPrefix(name, "./"))
	switch {
	case strings.HasSuffix(name, PatchSuffix):
		return strings.TrimSuffix(name, PatchSuffix), opPatch
	case strings.HasSuffix(name, DeleteSuffix):
		return strings.TrimSuffix(name, DeleteSuffix), opDelete
	}
	return name, opReplace
}

func targetPath(root, name string) (string, bool) {
	if name == "." || path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
		return "", false
	}
	return filepath.Join(root, filepath.FromSlash(name)), true
}

func applyEntry(op entryOp, target string, r io.Reader) uint64 {
	switch op {
	case opDelete:
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return codeRename
		}
		return ResultSuccess

	case opPatch:
		old, err := os.ReadFile(target)
		if err != nil {
			return codeMissingFile
		}
		var out bytes.Buffer
		if err := binarydist.Patch(bytes.NewReader(old), &out, r); err != nil {
			return codeCorruptFile
		}
		return replaceFile(target, &out)

	default:
		return replaceFile(target, r)
	}
}

func replaceFile(target string, r io.Reader) uint64 {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return storageCode(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return storageCode(err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageCode(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storageCode(err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return codeRename
	}
	return ResultSuccess
}

func storageCode(err error) uint64 {
	if errors.Is(err, syscall.ENOSPC) {
		return codeStorage
	}
	return ResultGenericFailure
}

func countEntries(diffPath string) (int, error) {
	f, err := os.Open(diffPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return 0, err
	}
	tr := tar.NewReader(xr)

	count := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if hdr.Typeflag == tar.TypeReg {
			count++
		}
	}
	return count, nil
}
