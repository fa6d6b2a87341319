// Package location parses and describes the targets bookmarks point at.
//
// A Location is an absolute URI. Local paths are accepted on input and turned
// into file:// URIs, so every Location has one canonical string form which is
// what gets persisted and compared.
package location

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidLocation is returned when a string cannot be parsed into a Location.
var ErrInvalidLocation = errors.New("invalid location")

// Placeholder is the display name used when nothing can be derived from a target.
const Placeholder = "Unknown"

// Location is a parsed, absolute target URI. The zero value is not valid.
type Location struct {
	u *url.URL
}

// Parse turns a URI (or an absolute local path) into a Location.
func Parse(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, fmt.Errorf("%w: empty string", ErrInvalidLocation)
	}

	if strings.HasPrefix(s, "/") {
		return FromPath(s)
	}

	if strings.ContainsFunc(s, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) {
		return Location{}, fmt.Errorf("%w: %q contains whitespace", ErrInvalidLocation, s)
	}

	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q: %v", ErrInvalidLocation, s, err)
	}
	if u.Scheme == "" {
		return Location{}, fmt.Errorf("%w: %q has no scheme", ErrInvalidLocation, s)
	}
	if u.Opaque == "" && u.Host == "" && u.Path == "" {
		return Location{}, fmt.Errorf("%w: %q has nothing after the scheme", ErrInvalidLocation, s)
	}

	return Location{u: u}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Location {
	loc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return loc
}

// FromPath builds a file:// Location from an absolute local path.
func FromPath(p string) (Location, error) {
	if !filepath.IsAbs(p) {
		return Location{}, fmt.Errorf("%w: %q is not an absolute path", ErrInvalidLocation, p)
	}
	if strings.ContainsFunc(p, unicode.IsControl) {
		return Location{}, fmt.Errorf("%w: %q contains control characters", ErrInvalidLocation, p)
	}
	return Location{u: &url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Clean(p))}}, nil
}

// IsValid reports whether l was produced by Parse or FromPath.
func (l Location) IsValid() bool {
	return l.u != nil
}

// String returns the canonical URI form.
func (l Location) String() string {
	if l.u == nil {
		return ""
	}
	return l.u.String()
}

// Scheme returns the URI scheme, e.g. "file" or "sftp".
func (l Location) Scheme() string {
	if l.u == nil {
		return ""
	}
	return l.u.Scheme
}

// Host returns the host part without port, if any.
func (l Location) Host() string {
	if l.u == nil {
		return ""
	}
	return l.u.Hostname()
}

// IsNative reports whether the location lives on the local file system.
func (l Location) IsNative() bool {
	return l.Scheme() == "file" && (l.u.Host == "" || l.u.Host == "localhost")
}

// Path returns the local path for native locations and "" otherwise.
func (l Location) Path() string {
	if !l.IsNative() {
		return ""
	}
	p := l.u.Path
	if p == "" {
		p = "/"
	}
	return filepath.FromSlash(p)
}

// Equal compares canonical URI strings.
func (l Location) Equal(other Location) bool {
	return l.String() == other.String()
}

// DisplayName derives a human readable name from the location alone.
// It never touches the file system beyond looking up the home directory.
func (l Location) DisplayName() string {
	if l.u == nil {
		return Placeholder
	}

	if l.IsNative() {
		p := path.Clean("/" + l.u.Path)
		if p == "/" {
			return "File System"
		}
		if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == filepath.FromSlash(p) {
			return "Home"
		}
		return norm.NFC.String(path.Base(p))
	}

	if p := strings.TrimSuffix(l.u.Path, "/"); p != "" {
		return norm.NFC.String(path.Base(p))
	}
	if host := l.u.Hostname(); host != "" {
		return host
	}
	if l.u.Opaque != "" {
		return l.u.Opaque
	}
	return Placeholder
}
