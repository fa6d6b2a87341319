package location_test

import (
	"errors"
	"os"
	"testing"

	"github.com/nikbrunner/places/internal/location"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"file uri", "file:///home/user/Documents", "file:///home/user/Documents"},
		{"percent encoded", "file:///srv/My%20Data", "file:///srv/My%20Data"},
		{"absolute path", "/srv/My Data", "file:///srv/My%20Data"},
		{"path is cleaned", "/tmp/a/../b/", "file:///tmp/b"},
		{"remote", "sftp://user@host.example/var/www", "sftp://user@host.example/var/www"},
		{"surrounding space trimmed", "  file:///tmp  ", "file:///tmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := location.Parse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"no-scheme/path",
		"relative/path",
		"file:///has space",
		"http://bad host",
		"file:",
		"line\nbreak",
	}

	for _, in := range inputs {
		_, err := location.Parse(in)
		if !errors.Is(err, location.ErrInvalidLocation) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidLocation", in, err)
		}
	}
}

func TestLocation_DisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"file:///home/user/Documents", "Documents"},
		{"file:///", "File System"},
		{"file:///srv/My%20Data/", "My Data"},
		{"sftp://host.example/var/www", "www"},
		{"smb://fileserver/", "fileserver"},
		{"computer:///", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc := location.MustParse(tt.in)
			if got := loc.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocation_DisplayName_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "/" {
		t.Skip("no usable home directory")
	}

	loc, err := location.FromPath(home)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if got := loc.DisplayName(); got != "Home" {
		t.Errorf("DisplayName() = %q, want Home", got)
	}
}

func TestLocation_Native(t *testing.T) {
	local := location.MustParse("file:///tmp/x")
	if !local.IsNative() {
		t.Error("file:// should be native")
	}
	if got := local.Path(); got != "/tmp/x" {
		t.Errorf("Path() = %q", got)
	}

	remote := location.MustParse("sftp://host/tmp/x")
	if remote.IsNative() {
		t.Error("sftp:// should not be native")
	}
	if remote.Path() != "" {
		t.Errorf("remote Path() should be empty, got %q", remote.Path())
	}

	var zero location.Location
	if zero.IsValid() {
		t.Error("zero Location should be invalid")
	}
}
