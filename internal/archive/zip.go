// internal/archive/zip.go
package archive

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yeka/zip"
)

// Container is the capability the patcher needs from an archive: read an
// entry, replace an entry, and serialize the whole container.
type Container interface {
	Extract(name, password string) ([]byte, error)
	Replace(name string, data []byte, password string) error
	Save(w io.Writer) error
}

type zipEntry struct {
	name string

	// original entry; nil for entries added by Replace
	file *zip.File

	// replacement content, nil while untouched
	data     []byte
	password string
}

// Zip is an in-memory zip container. Entries keep their order; replaced
// entries are only written out by Save.
type Zip struct {
	entries  []*zipEntry
	index    map[string]int
	password string
}

// NewZip returns an empty container
func NewZip() *Zip {
	return &Zip{index: make(map[string]int)}
}

// OpenZip parses a zip archive held in data. password is the archive
// password used to copy encrypted entries that are never extracted.
func OpenZip(data []byte, password string) (*Zip, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read zip: %w", err)
	}

	z := NewZip()
	z.password = password
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue // directory
		}
		z.index[normalizeName(f.Name)] = len(z.entries)
		z.entries = append(z.entries, &zipEntry{name: f.Name, file: f})
	}
	return z, nil
}

// Names returns the entry names in archive order
func (z *Zip) Names() []string {
	names := make([]string, 0, len(z.entries))
	for _, e := range z.entries {
		names = append(names, e.name)
	}
	return names
}

// Extract returns the content of an entry. An empty password falls back to
// the archive password.
func (z *Zip) Extract(name, password string) ([]byte, error) {
	i, ok := z.index[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	e := z.entries[i]
	if e.data != nil {
		return append([]byte(nil), e.data...), nil
	}
	if password == "" {
		password = z.password
	}
	return readFile(e.file, password)
}

// Replace sets the content of an entry, adding it when absent. A non-empty
// password encrypts the entry on save.
func (z *Zip) Replace(name string, data []byte, password string) error {
	if data == nil {
		data = []byte{}
	}
	key := normalizeName(name)
	if i, ok := z.index[key]; ok {
		z.entries[i].data = data
		z.entries[i].password = password
		return nil
	}
	z.index[key] = len(z.entries)
	z.entries = append(z.entries, &zipEntry{name: name, data: data, password: password})
	return nil
}

// Save writes the whole container to w. Untouched encrypted entries are
// re-encrypted with the archive password.
func (z *Zip) Save(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, e := range z.entries {
		data := e.data
		password := e.password
		if data == nil {
			if e.file.IsEncrypted() {
				password = z.password
			}
			var err error
			if data, err = readFile(e.file, password); err != nil {
				return err
			}
		}

		var fw io.Writer
		var err error
		if password != "" {
			fw, err = zw.Encrypt(e.name, password, zip.StandardEncryption)
		} else {
			fw, err = zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		}
		if err != nil {
			return fmt.Errorf("create entry %s: %w", e.name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write entry %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	return nil
}

// Embed unpacks the zip held in data and writes each of its files into c
// under dir.
func Embed(c Container, dir string, data []byte, password string) error {
	inner, err := OpenZip(data, "")
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	for _, e := range inner.entries {
		content, err := readFile(e.file, "")
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		if err := c.Replace(path.Join(normalizeName(dir), e.name), content, password); err != nil {
			return fmt.Errorf("embed %s: %w", e.name, err)
		}
	}
	return nil
}

func readFile(f *zip.File, password string) ([]byte, error) {
	if f.IsEncrypted() {
		if password == "" {
			return nil, fmt.Errorf("%w: %s", ErrPasswordRequired, f.Name)
		}
		f.SetPassword(password)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
	}
	return data, nil
}

// normalizeName folds Windows separators so "a\b" and "a/b" address one entry
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}
