package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/djherbis/times"
)

// Storage defines the interface for persisting the bookmark list.
type Storage interface {
	Load() ([]Line, error)
	Save(lines []Line) error
	Path() string
}

// IOError reports a failed storage operation on a path.
type IOError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NotFound reports whether the file did not exist.
func (e *IOError) NotFound() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

func wrapIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// Stamp fingerprints the backing file so a Load can tell whether the file
// still holds what the last Save wrote.
type Stamp struct {
	Size       int64
	ModTime    time.Time
	ChangeTime time.Time // zero where the platform has no ctime
}

// Equal reports whether two stamps describe the same file state.
func (s Stamp) Equal(o Stamp) bool {
	return s.Size == o.Size && s.ModTime.Equal(o.ModTime) && s.ChangeTime.Equal(o.ChangeTime)
}

// IsZero reports whether the stamp is unset.
func (s Stamp) IsZero() bool {
	return s.Size == 0 && s.ModTime.IsZero() && s.ChangeTime.IsZero()
}

// StatStamp returns the stamp of the file at path.
func StatStamp(path string) (Stamp, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Stamp{}, err
	}
	ts := times.Get(fi)
	st := Stamp{Size: fi.Size(), ModTime: ts.ModTime()}
	if ts.HasChangeTime() {
		st.ChangeTime = ts.ChangeTime()
	}
	return st, nil
}

// FileStorage implements Storage using the GTK bookmarks line format.
type FileStorage struct {
	path       string
	legacyPath string
}

// NewFileStorage creates a FileStorage for path. If legacyPath is not empty
// and path does not exist yet, Load reads legacyPath instead.
func NewFileStorage(path, legacyPath string) *FileStorage {
	return &FileStorage{path: path, legacyPath: legacyPath}
}

// Path returns the storage file path.
func (s *FileStorage) Path() string {
	return s.path
}

// Load reads all lines from the file.
// A missing file (and missing legacy file) yields an empty list and no error.
func (s *FileStorage) Load() ([]Line, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) && s.legacyPath != "" {
		data, err = os.ReadFile(s.legacyPath)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Line{}, nil
		}
		return nil, wrapIO("load", s.path, err)
	}

	lines, _, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, wrapIO("load", s.path, err)
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}

// Save replaces the file contents with lines.
// Creates the directory if it doesn't exist.
func (s *FileStorage) Save(lines []Line) error {
	var buf bytes.Buffer
	if err := Encode(&buf, lines); err != nil {
		return wrapIO("save", s.path, err)
	}
	return wrapIO("save", s.path, writeFileAtomic(s.path, buf.Bytes(), 0644))
}

// Stamp returns the current fingerprint of the backing file.
func (s *FileStorage) Stamp() (Stamp, error) {
	return StatStamp(s.path)
}

// JSONStorage implements Storage using a JSON file.
type JSONStorage struct {
	path string
}

type jsonFile struct {
	Bookmarks []jsonEntry `json:"bookmarks"`
}

type jsonEntry struct {
	URI  string  `json:"uri"`
	Name *string `json:"name,omitempty"`
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the list from the JSON file.
// Returns an empty list if the file doesn't exist.
func (s *JSONStorage) Load() ([]Line, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Line{}, nil
		}
		return nil, wrapIO("load", s.path, err)
	}

	var f jsonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, wrapIO("load", s.path, err)
	}

	lines := make([]Line, 0, len(f.Bookmarks))
	for _, e := range f.Bookmarks {
		if e.URI == "" {
			continue
		}
		lines = append(lines, Line{URI: e.URI, Name: e.Name})
	}
	return lines, nil
}

// Save writes the list to the JSON file.
func (s *JSONStorage) Save(lines []Line) error {
	f := jsonFile{Bookmarks: make([]jsonEntry, 0, len(lines))}
	for _, l := range lines {
		e := jsonEntry{URI: l.URI}
		if l.Name != nil && *l.Name != "" {
			e.Name = l.Name
		}
		f.Bookmarks = append(f.Bookmarks, e)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return wrapIO("save", s.path, err)
	}
	return wrapIO("save", s.path, writeFileAtomic(s.path, data, 0644))
}

// Stamp returns the current fingerprint of the backing file.
func (s *JSONStorage) Stamp() (Stamp, error) {
	return StatStamp(s.path)
}

// writeFileAtomic writes data to a temp file next to path and renames it
// over path, so readers see either the old or the new contents.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.part")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, perm); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// Open returns the Storage backend selected by cfg.StorageFormat.
func Open(cfg *Config) (Storage, error) {
	switch cfg.StorageFormat {
	case "", FormatLines:
		return NewFileStorage(cfg.BookmarksFile, cfg.LegacyBookmarksFile), nil
	case FormatJSON:
		return NewJSONStorage(cfg.BookmarksFile), nil
	default:
		return nil, fmt.Errorf("unknown storage format %q", cfg.StorageFormat)
	}
}
