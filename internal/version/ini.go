// internal/version/ini.go
package version

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvo5/goconfigparser"
)

const (
	// Section and Key locate the version in both the client and the server descriptor
	Section = "Client"
	Key     = "ver"

	// ClientFile is the client version record inside the game directory
	ClientFile = "Ver.ini"
)

// ReadINI extracts the version stored under [Client] ver= in an INI text
func ReadINI(data string) (Version, error) {
	cfg := goconfigparser.New()
	if err := cfg.ReadString(CleanINI(data)); err != nil {
		return Version{}, fmt.Errorf("parse version ini: %w", err)
	}
	s, err := cfg.Get(Section, Key)
	if err != nil {
		return Version{}, fmt.Errorf("version ini: %w", err)
	}
	return Parse(s)
}

// CleanINI drops a UTF-8 byte order mark and CR line endings so the text can
// be handed to goconfigparser
func CleanINI(data string) string {
	return strings.ReplaceAll(strings.TrimPrefix(data, "\ufeff"), "\r\n", "\n")
}

// ReadClient reads the client version record of a game directory
func ReadClient(gamePath string) (Version, error) {
	data, err := os.ReadFile(filepath.Join(gamePath, ClientFile))
	if err != nil {
		return Version{}, fmt.Errorf("read client version: %w", err)
	}
	return ReadINI(string(data))
}

// WriteClient stores v in the client version record, keeping every other line
// of the file. The file is replaced atomically.
func WriteClient(gamePath string, v Version) error {
	path := filepath.Join(gamePath, ClientFile)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read client version: %w", err)
	}

	updated := setINIValue(string(data), Section, Key, v.String())

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(updated), 0644); err != nil {
		return fmt.Errorf("write client version: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace client version: %w", err)
	}
	return nil
}

// setINIValue rewrites key in section, appending the section or key if
// missing. Other lines and the file's line endings are kept as they are.
func setINIValue(data, section, key, value string) string {
	eol := "\n"
	if strings.Contains(data, "\r\n") {
		eol = "\r\n"
	}
	entry := key + "=" + value + eol

	var out strings.Builder
	inSection, sectionSeen, written := false, false, false
	lines := strings.SplitAfter(data, "\n")

	for _, line := range lines {
		if line == "" {
			continue
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			if inSection && !written {
				out.WriteString(entry)
				written = true
			}
			inSection = strings.EqualFold(strings.Trim(trimmed, "[]"), section)
			sectionSeen = sectionSeen || inSection
			out.WriteString(line)
			continue
		}

		if inSection && !written {
			if name, _, ok := strings.Cut(trimmed, "="); ok && strings.EqualFold(strings.TrimSpace(name), key) {
				out.WriteString(entry)
				written = true
				continue
			}
		}
		out.WriteString(line)
	}

	if !written {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteString(eol)
		}
		if !sectionSeen {
			out.WriteString("[" + section + "]" + eol)
		}
		out.WriteString(entry)
	}
	return out.String()
}
