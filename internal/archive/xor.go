// internal/archive/xor.go
package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// SecretByte obfuscates every byte of the game's data archives
const SecretByte = 0x55

// XOR applies key to every byte of buf in place
func XOR(buf []byte, key byte) {
	for i := range buf {
		buf[i] ^= key
	}
}

// Load reads an obfuscated archive from disk and opens it. password is used
// for encrypted entries that are never replaced but must be copied on save.
func Load(path, password string) (*Zip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	XOR(data, SecretByte)

	z, err := OpenZip(data, password)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return z, nil
}

// Store serializes c, obfuscates it and writes it to path. The target is
// replaced atomically so a failed or interrupted save leaves no partial file.
func Store(path string, c Container) error {
	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		return fmt.Errorf("serialize archive: %w", err)
	}
	data := buf.Bytes()
	XOR(data, SecretByte)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace archive: %w", err)
	}
	return nil
}
