// Package images persists captured car photos as JPEG files.
package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrInvalidID is returned for ids that could escape the images directory
var ErrInvalidID = errors.New("invalid image id")

// Store writes images under a single directory
type Store struct {
	fs  afero.Fs
	dir string
}

// New returns a store rooted at dir on fs. The directory is created on first save.
func New(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// NewOS returns a store on the host filesystem
func NewOS(dir string) *Store {
	return New(afero.NewOsFs(), dir)
}

// Dir is the directory the store writes to
func (s *Store) Dir() string {
	return s.dir
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." &&
		!strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

// Sub returns a store for a subdirectory, used to keep each signed-in user's images apart
func (s *Store) Sub(name string) (*Store, error) {
	if !validID(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, name)
	}
	return &Store{fs: s.fs, dir: filepath.Join(s.dir, name)}, nil
}

// Path returns where the image for id is stored
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".jpg")
}

// Save decodes base64 image data and writes it to <dir>/<id>.jpg, returning the path
func (s *Store) Save(id, data string) (string, error) {
	if !validID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	raw, err := base64.StdEncoding.DecodeString(stripDataURL(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image %s: %w", id, err)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	path := s.Path(id)
	if err := afero.WriteFile(s.fs, path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", id, err)
	}
	return path, nil
}

// Load reads back the raw bytes of a stored image
func (s *Store) Load(id string) ([]byte, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return afero.ReadFile(s.fs, s.Path(id))
}

// Clear removes the directory and everything in it. A missing directory is not an error.
func (s *Store) Clear() error {
	if err := s.fs.RemoveAll(s.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove images directory: %w", err)
	}
	return nil
}

// stripDataURL drops a "data:image/jpeg;base64," prefix if the client sent one
func stripDataURL(data string) string {
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			return data[i+1:]
		}
	}
	return strings.TrimSpace(data)
}
