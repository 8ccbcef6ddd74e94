package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore reads <Dir>/<app><suffix> from the local filesystem.
type FileStore struct {
	Dir  string
	Kind Kind
}

func NewFileStore(dir string, kind Kind) *FileStore {
	return &FileStore{Dir: dir, Kind: kind}
}

func (f *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	data, err := os.ReadFile(filepath.Join(f.Dir, f.Kind.Key(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", f.Kind.Key(name), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Kind.Key(name), err)
	}
	return data, nil
}
