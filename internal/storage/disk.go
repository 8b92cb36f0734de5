package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const diskDriver = "disk"

type DiskStore struct {
	dir        string
	publicBase string
}

// NewDiskStore stores photos under dir and links them as
// publicBase + "/storage/" + name.
func NewDiskStore(dir, publicBase string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &DiskStore{dir: dir, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
	observeSave(diskDriver, len(data), err)
	if err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	return s.publicBase + "/storage/" + name, nil
}

func (s *DiskStore) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	observeDelete(diskDriver, err)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
