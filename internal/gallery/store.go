// Package gallery loads per-student reference embeddings from an image store.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Image is one stored reference image.
type Image struct {
	Name string
	Data []byte
}

// Store abstracts the reference image storage. The filesystem implementation
// is the default; a blob store or database-backed registry can be substituted.
type Store interface {
	// ListImages returns the images in a student folder in listing order.
	// A missing folder is an empty gallery, not an error.
	ListImages(ctx context.Context, folder string) ([]Image, error)
	// ListStudentFolders returns the student subfolder names of a class
	// folder in listing order. A missing class folder yields nil.
	ListStudentFolders(ctx context.Context, classFolder string) ([]string, error)
	// SaveImage stores a reference image, creating the folder if needed.
	SaveImage(ctx context.Context, folder, name string, data []byte) error
	// EnsureFolder creates a folder if it does not exist.
	EnsureFolder(ctx context.Context, folder string) error
}

// FSStore is the filesystem-backed Store.
type FSStore struct{}

// NewFSStore creates a filesystem store.
func NewFSStore() *FSStore {
	return &FSStore{}
}

// ListImages lists the regular files of a folder in name order.
func (s *FSStore) ListImages(ctx context.Context, folder string) ([]Image, error) {
	entries, err := os.ReadDir(folder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing folder %s: %w", folder, err)
	}

	var images []Image
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(folder, e.Name()))
		if err != nil {
			// One unreadable file must not block the rest of the gallery.
			continue
		}
		images = append(images, Image{Name: e.Name(), Data: data})
	}
	return images, nil
}

// ListStudentFolders lists the subfolders of a class folder in name order.
func (s *FSStore) ListStudentFolders(ctx context.Context, classFolder string) ([]string, error) {
	entries, err := os.ReadDir(classFolder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing class folder %s: %w", classFolder, err)
	}

	var folders []string
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, e.Name())
		}
	}
	return folders, nil
}

// SaveImage writes an image into a folder, creating it if needed.
func (s *FSStore) SaveImage(ctx context.Context, folder, name string, data []byte) error {
	if err := os.MkdirAll(folder, 0o750); err != nil {
		return fmt.Errorf("creating folder %s: %w", folder, err)
	}
	safeName := filepath.Base(name)
	if safeName == "." || safeName == string(filepath.Separator) || strings.TrimSpace(safeName) == "" {
		return fmt.Errorf("invalid image name %q", name)
	}
	path := filepath.Join(folder, safeName)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("writing image %s: %w", path, err)
	}
	return nil
}

// EnsureFolder creates a folder if it does not exist.
func (s *FSStore) EnsureFolder(ctx context.Context, folder string) error {
	if err := os.MkdirAll(folder, 0o750); err != nil {
		return fmt.Errorf("creating folder %s: %w", folder, err)
	}
	return nil
}
