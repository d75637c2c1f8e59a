package attachment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions mirrors the upload filter of the original system:
// images and common document formats only.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// Store persists attachment bytes and returns a handle for later download.
// The defect package never sees file contents, only handles. Remove undoes
// a Save when the enclosing operation fails.
type Store interface {
	Save(fileName string, r io.Reader) (string, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// DiskStore writes attachments to a local directory under random names.
type DiskStore struct {
	Dir     string
	MaxSize int64
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir string, maxSizeMB int) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("attachment: create upload dir %s: %w", dir, err)
	}
	return &DiskStore{Dir: dir, MaxSize: int64(maxSizeMB) << 20}, nil
}

// Save stores the file under a random name, keeping only the original
// extension. Returns the relative handle recorded on the attachment row.
func (s *DiskStore) Save(fileName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("attachment: file type %q is not allowed", ext)
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(s.Dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("attachment: create %s: %w", dst, err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, s.MaxSize+1))
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("attachment: write %s: %w", dst, err)
	}
	if n > s.MaxSize {
		os.Remove(dst)
		return "", fmt.Errorf("attachment: file exceeds %d bytes", s.MaxSize)
	}
	return name, nil
}

// Open returns the stored bytes for a handle produced by Save.
func (s *DiskStore) Open(path string) (io.ReadCloser, error) {
	// Handles are bare file names; reject anything trying to escape Dir.
	if path != filepath.Base(path) {
		return nil, fmt.Errorf("attachment: invalid handle %q", path)
	}
	f, err := os.Open(filepath.Join(s.Dir, path))
	if err != nil {
		return nil, fmt.Errorf("attachment: open %s: %w", path, err)
	}
	return f, nil
}

// Remove deletes a stored file by its handle.
func (s *DiskStore) Remove(path string) error {
	if path != filepath.Base(path) {
		return fmt.Errorf("attachment: invalid handle %q", path)
	}
	if err := os.Remove(filepath.Join(s.Dir, path)); err != nil {
		return fmt.Errorf("attachment: remove %s: %w", path, err)
	}
	return nil
}
