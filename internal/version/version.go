// internal/version/version.go
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a version string cannot be parsed
var ErrInvalidVersion = errors.New("invalid version")

// PatchFileExt is the extension of incremental diff files on the repository
const PatchFileExt = ".RTP"

// Version is a four part client build number
type Version struct {
	Major    uint32
	Minor    uint32
	Build    uint32
	Revision uint32
}

// New returns the version major.minor.build.revision
func New(major, minor, build, revision uint32) Version {
	return Version{Major: major, Minor: minor, Build: build, Revision: revision}
}

// Parse parses "a.b.c.d". Missing trailing parts are zero.
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	var n [4]uint32
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		n[i] = uint32(v)
	}
	return New(n[0], n[1], n[2], n[3]), nil
}

// Compare returns -1, 0 or 1 comparing v to o lexicographically
func (v Version) Compare(o Version) int {
	a := [4]uint32{v.Major, v.Minor, v.Build, v.Revision}
	b := [4]uint32{o.Major, o.Minor, o.Build, o.Revision}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Less reports whether v is older than o
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// BumpRevision returns the next revision of the same build
func (v Version) BumpRevision() Version {
	return New(v.Major, v.Minor, v.Build, v.Revision+1)
}

// BumpBuild returns the first revision of the next build
func (v Version) BumpBuild() Version {
	return New(v.Major, v.Minor, v.Build+1, 0)
}

// BumpMinor returns the first build of the next minor version
func (v Version) BumpMinor() Version {
	return New(v.Major, v.Minor+1, 0, 0)
}

// BumpMajor returns the first build of the next major version
func (v Version) BumpMajor() Version {
	return New(v.Major+1, 0, 0, 0)
}

// FileName returns the repository name of the diff that produces v
func (v Version) FileName() string {
	return fmt.Sprintf("%d_%d_%d_%d%s", v.Major, v.Minor, v.Build, v.Revision, PatchFileExt)
}

// String returns "a.b.c.d"
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}
