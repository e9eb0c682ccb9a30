// Package storage saves uploaded files and returns the path recorded on the
// company row.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Store persists one uploaded file under dir and returns its stored path.
// Delete removes a file by that path; a path that is already gone is not an
// error.
type Store interface {
	Save(ctx context.Context, dir, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
}

// Disk keeps files on a filesystem rooted at the public storage directory.
// Paths it returns are relative to that root and served under /storage/.
type Disk struct {
	fs afero.Fs
}

// NewDisk stores files below root on the local filesystem.
func NewDisk(root string) *Disk {
	return NewDiskFs(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// NewDiskFs stores files on fs.
func NewDiskFs(fs afero.Fs) *Disk {
	return &Disk{fs: fs}
}

func (d *Disk) Save(_ context.Context, dir, originalName string, r io.Reader) (string, error) {
	dir = path.Clean("/" + filepath.ToSlash(dir))
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	full := path.Join(dir, name)
	if err := afero.WriteReader(d.fs, full, r); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", full, err)
	}
	return strings.TrimPrefix(full, "/"), nil
}

func (d *Disk) Delete(_ context.Context, p string) error {
	full := path.Clean("/" + filepath.ToSlash(p))
	if err := d.fs.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", full, err)
	}
	return nil
}

// FileServer serves the stored files; mount it under /storage/.
func (d *Disk) FileServer() http.Handler {
	return http.FileServer(afero.NewHttpFs(d.fs).Dir("/"))
}
