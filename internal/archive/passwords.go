// internal/archive/passwords.go
package archive

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mvo5/goconfigparser"
)

// PasswordSection is the INI section listing archive passwords
const PasswordSection = "ZipPassword"

// Passwords maps an archive name without extension to its password
type Passwords map[string]string

// ParsePasswords reads the password resource. Keys are archive file names
// without extension, matched case-insensitively.
func ParsePasswords(data string) (Passwords, error) {
	cfg := goconfigparser.New()
	if err := cfg.ReadString(cleanINI(data)); err != nil {
		return nil, fmt.Errorf("parse passwords: %w", err)
	}

	options, err := cfg.Options(PasswordSection)
	if err != nil {
		return nil, fmt.Errorf("passwords: %w", err)
	}

	p := make(Passwords, len(options))
	for _, name := range options {
		value, err := cfg.Get(PasswordSection, name)
		if err != nil {
			return nil, fmt.Errorf("passwords: %s: %w", name, err)
		}
		p[strings.ToLower(name)] = strings.TrimSpace(value)
	}
	return p, nil
}

// cleanINI drops a UTF-8 byte order mark and CR line endings
func cleanINI(data string) string {
	return strings.ReplaceAll(strings.TrimPrefix(data, "\ufeff"), "\r\n", "\n")
}

// For returns the password of the archive at archivePath. ErrPasswordMissing
// means the archive is not listed; the caller should go on without one.
func (p Passwords) For(archivePath string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(archivePath, "\\", "/"))
	name := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	if pw, ok := p[name]; ok {
		return pw, nil
	}
	return "", fmt.Errorf("%w: %s", ErrPasswordMissing, name)
}
