// pkg/translate/manifest.go
package translate

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/mvo5/goconfigparser"

	"github.com/swpatch/swpatch/pkg/swpatch"
)

// Manifest keys of a governed file section
const (
	KeyArchive = "archive"
	KeyEntry   = "entry"
	KeySource  = "source"
	KeyFormat  = "format"
)

// File is one governed file: an archive entry and the source replacing it
type File struct {
	Name    string // manifest section
	Archive string // archive path relative to the game directory
	Entry   string // entry path inside the archive
	Source  string // source path relative to the data directory
	Format  string // record layout descriptor; empty copies Source as is
}

// Embeds reports whether Source is a zip whose entries go under Entry
func (f File) Embeds() bool {
	return f.Format == "" && strings.EqualFold(path.Ext(f.Source), ".zip")
}

// LoadManifest reads a manifest file
func LoadManifest(filename string) ([]File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(string(data))
}

// ParseManifest reads one governed file per section, sorted by section name
func ParseManifest(data string) ([]File, error) {
	cfg := goconfigparser.New()
	if err := cfg.ReadString(data); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	tracker := swpatch.NewPathTracker()
	var files []File
	sections := cfg.Sections()
	sort.Strings(sections)
	for _, section := range sections {
		keys, err := cfg.Options(section)
		if err != nil {
			return nil, fmt.Errorf("manifest [%s]: %w", section, err)
		}
		values := make(map[string]string, len(keys))
		for _, k := range keys {
			v, err := cfg.Get(section, k)
			if err != nil {
				return nil, fmt.Errorf("manifest [%s] %s: %w", section, k, err)
			}
			values[strings.ToLower(k)] = strings.TrimSpace(v)
		}

		f := File{
			Name:    section,
			Archive: values[KeyArchive],
			Entry:   values[KeyEntry],
			Source:  values[KeySource],
			Format:  values[KeyFormat],
		}
		if f.Archive == "" || f.Entry == "" || f.Source == "" {
			return nil, fmt.Errorf("%w: [%s] needs %s, %s and %s", ErrInvalidManifest, section, KeyArchive, KeyEntry, KeySource)
		}
		if tracker.CheckDuplicate(strings.ToLower(f.Archive + ":" + f.Entry)) {
			return nil, fmt.Errorf("%w: [%s] %s in %s", ErrDuplicateEntry, section, f.Entry, f.Archive)
		}
		files = append(files, f)
	}
	return files, nil
}
