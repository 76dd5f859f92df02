// pkg/translate/translate.go
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/swpatch/swpatch/internal/archive"
	"github.com/swpatch/swpatch/internal/format"
	"github.com/swpatch/swpatch/internal/logger"
	"github.com/swpatch/swpatch/internal/translation"
)

// group is one archive and the governed files it contains
type group struct {
	password  string
	container archive.Container
}

// Translate patches every governed file into its archive and writes each
// archive once to the output directory. Any failure aborts the run before
// anything is saved; cancellation is checked before each file and before
// each save.
func Translate(ctx context.Context, opts *Options, progressCb ProgressCallback) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	files := opts.Files
	if len(files) == 0 {
		var err error
		if files, err = LoadManifest(opts.ManifestPath); err != nil {
			return nil, err
		}
	}

	out := opts.ProgressWriter
	if out == nil || opts.Quiet {
		out = io.Discard
	}

	passwords, err := loadPasswords(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{FilesTotal: len(files)}
	emit(progressCb, ProgressEvent{Type: EventStart, Total: int64(len(files))})

	groups, order, err := loadArchives(ctx, opts, files, passwords, progressCb)
	if err != nil {
		return result, err
	}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		g := groups[f.Archive]
		emit(progressCb, ProgressEvent{Type: EventFileStart, FilePath: f.Name, Archive: f.Archive, Current: int64(i), Total: int64(len(files))})
		logger.Noticef("Patching file=[%s] archive=[%s]", f.Entry, f.Archive)
		if opts.Verbose {
			fmt.Fprintf(out, "Patching %s -> %s:%s\n", f.Source, f.Archive, f.Entry)
		}

		if err := patchFile(ctx, opts, f, g); err != nil {
			emit(progressCb, ProgressEvent{Type: EventError, FilePath: f.Name, Archive: f.Archive})
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return result, err
			}
			return result, &FileError{File: f.Name, Archive: f.Archive, Entry: f.Entry, Err: err}
		}

		result.FilesProcessed++
		emit(progressCb, ProgressEvent{Type: EventFileComplete, FilePath: f.Name, Archive: f.Archive, Current: int64(i + 1), Total: int64(len(files))})
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		target := filepath.Join(opts.OutputPath, filepath.FromSlash(name))
		emit(progressCb, ProgressEvent{Type: EventArchiveSave, FilePath: name, Archive: name})
		logger.Noticef("Saving archive=[%s]", target)

		if err := archive.Store(target, groups[name].container); err != nil {
			return result, fmt.Errorf("save %s: %w", name, err)
		}
		if fi, err := os.Stat(target); err == nil {
			result.BytesWritten += uint64(fi.Size())
		}
		result.Archives = append(result.Archives, name)
	}

	emit(progressCb, ProgressEvent{Type: EventComplete, Current: int64(result.FilesProcessed), Total: int64(len(files))})
	return result, nil
}

func loadPasswords(ctx context.Context, opts *Options) (archive.Passwords, error) {
	if opts.PasswordsSource == "" {
		return archive.Passwords{}, nil
	}
	data, err := opts.Client.Fetch(ctx, opts.PasswordsSource)
	if err != nil {
		return nil, fmt.Errorf("load passwords: %w", err)
	}
	return archive.ParsePasswords(string(data))
}

// loadArchives opens every archive named by files once, in first-use order
func loadArchives(ctx context.Context, opts *Options, files []File, passwords archive.Passwords, progressCb ProgressCallback) (map[string]*group, []string, error) {
	groups := make(map[string]*group)
	var order []string

	for _, f := range files {
		if _, ok := groups[f.Archive]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		password, err := passwords.For(f.Archive)
		if errors.Is(err, archive.ErrPasswordMissing) {
			logger.Debugf("No password for archive=[%s], going on without one", f.Archive)
		}

		path := filepath.Join(opts.GamePath, filepath.FromSlash(f.Archive))
		emit(progressCb, ProgressEvent{Type: EventArchiveLoad, FilePath: f.Archive, Archive: f.Archive})
		logger.Noticef("Loading archive=[%s]", path)

		c, err := archive.Load(path, password)
		if err != nil {
			return nil, nil, &FileError{File: f.Name, Archive: f.Archive, Entry: f.Entry, Err: err}
		}
		groups[f.Archive] = &group{password: password, container: c}
		order = append(order, f.Archive)
	}
	return groups, order, nil
}

// patchFile replaces one entry in memory
func patchFile(ctx context.Context, opts *Options, f File, g *group) error {
	source, err := os.ReadFile(filepath.Join(opts.DataPath, filepath.FromSlash(f.Source)))
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	switch {
	case f.Format != "":
		spec, err := format.ParseSpec(f.Format)
		if err != nil {
			return err
		}
		original, err := g.container.Extract(f.Entry, g.password)
		if err != nil {
			return err
		}
		table := translation.Load(source, spec.TextFields(), spec.IDIndex)
		logger.Debugf("Loaded %d translations for %s", table.Len(), f.Name)

		patched, err := format.Patch(ctx, original, spec, table)
		if err != nil {
			return err
		}
		return g.container.Replace(f.Entry, patched, g.password)

	case f.Embeds():
		return archive.Embed(g.container, f.Entry, source, g.password)

	default:
		return g.container.Replace(f.Entry, source, g.password)
	}
}

func emit(cb ProgressCallback, ev ProgressEvent) {
	if cb != nil {
		cb(ev)
	}
}
