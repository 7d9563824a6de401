package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Local keeps files under a directory on disk
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates the media root if needed
func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Local{root: root, baseURL: baseURL}, nil
}

// Root returns the directory files are stored in
func (l *Local) Root() string {
	return l.root
}

// Save writes data under root/category, picking a free name
func (l *Local) Save(ctx context.Context, category, name string, data []byte) (string, error) {
	if err := validateName(category, name); err != nil {
		return "", err
	}

	dir := filepath.Join(l.root, filepath.FromSlash(category))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		fileName := candidate(name, attempt)
		filePath := filepath.Join(dir, fileName)
		f, err := createFile(filePath)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create file: %w", err)
		}

		if err := writeAndClose(f, data); err != nil {
			// A partial file would hold the name
			os.Remove(filePath)
			return "", err
		}

		return Ref(category, fileName), nil
	}

	return "", fmt.Errorf("no free file name for %s/%s", category, name)
}

// Exists reports whether ref is a file under root
func (l *Local) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.root, filepath.FromSlash(ref)))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", ref, err)
	}
	return true, nil
}

// URL returns baseURL + ref
func (l *Local) URL(ref string) string {
	return joinURL(l.baseURL, ref)
}

// fileWriter is the part of *os.File that Save needs
type fileWriter interface {
	Write(p []byte) (int, error)
	Close() error
}

// createFile opens a new file, failing if the name is taken
var createFile = func(name string) (fileWriter, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

func writeAndClose(f fileWriter, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
