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

// LocalStore writes images under <dir>/properties and serves them from
// <urlPrefix>/properties.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, propertiesFolder), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(_ context.Context, data []byte) (string, error) {
	kind, err := DetectImage(data)
	if err != nil {
		return "", err
	}

	name := objectName(kind.Ext)
	path := filepath.Join(s.dir, propertiesFolder, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.urlPrefix + "/" + propertiesFolder + "/" + name, nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	prefix := s.urlPrefix + "/" + propertiesFolder + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	name := strings.TrimPrefix(url, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, propertiesFolder, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
