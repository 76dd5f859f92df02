// internal/archive/errors.go
package archive

import "errors"

var (
	// ErrEntryNotFound is returned when an archive has no entry of the given name
	ErrEntryNotFound = errors.New("archive entry not found")

	// ErrPasswordRequired is returned when an encrypted entry is read without a password
	ErrPasswordRequired = errors.New("archive entry is encrypted and no password is known")

	// ErrPasswordMissing is returned when the password resource has no key for an archive.
	// It is not fatal: callers proceed without a password.
	ErrPasswordMissing = errors.New("no password for archive")
)
