package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

// Store saves payment proofs and exports beneath a root directory. Paths
// passed in are relative to the root.
type Store interface {
	Save(path string, data []byte) error
	Read(path string) ([]byte, error)
	Delete(path string) error
	Exists(path string) (bool, error)
	// Abs returns the absolute location of path on disk
	Abs(path string) (string, error)
}

// Disk is a Store on the local filesystem
type Disk struct {
	root string
}

// NewDisk creates a Disk store rooted at root
func NewDisk(root string) (*Disk, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Disk{root: abs}, nil
}

// Abs resolves path under the root, rejecting anything that escapes it
func (d *Disk) Abs(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return "", domain.Validation("filestore", "invalid path %q", path)
	}
	full := filepath.Join(d.root, filepath.Clean(path))
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.Validation("filestore", "path %q escapes storage root", path)
	}
	return full, nil
}

// Save writes data, creating parent directories
func (d *Disk) Save(path string, data []byte) error {
	full, err := d.Abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Read returns the file contents. A missing file is NotFound.
func (d *Disk) Read(path string) ([]byte, error) {
	full, err := d.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFound("filestore", "file %s not found", path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes the file. Deleting a missing file is not an error.
func (d *Disk) Delete(path string) error {
	full, err := d.Abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether a regular file is present at path
func (d *Disk) Exists(path string) (bool, error) {
	full, err := d.Abs(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// ProofPath builds the owner-scoped location of a payment proof
func ProofPath(ownerID, invoiceID string, unix int64, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "bin"
	}
	return filepath.Join("proofs", ownerID, fmt.Sprintf("%s-%d.%s", invoiceID, unix, ext))
}
