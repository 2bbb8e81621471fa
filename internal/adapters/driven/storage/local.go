// Package storage implements the object store on the local filesystem.
// All paths are resolved relative to a root directory and may not escape it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ObjectStore = (*LocalStore)(nil)

// defaultContentType is used when the extension is unknown
const defaultContentType = "application/octet-stream"

// LocalStore implements driven.ObjectStore over a directory tree
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir. dir must exist and be a
// directory.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage root %s is not a directory", abs)
	}
	return &LocalStore{root: abs}, nil
}

// resolve maps an object path onto the filesystem, rejecting paths that
// would escape the root.
func (s *LocalStore) resolve(objPath string) (string, error) {
	clean := path.Clean("/" + objPath)
	if clean == "/" {
		return s.root, nil
	}
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q escapes storage root", domain.ErrInvalidInput, objPath)
	}
	return full, nil
}

func (s *LocalStore) Exists(ctx context.Context, objPath string) (bool, error) {
	full, err := s.resolve(objPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", objPath, err)
	}
	return !info.IsDir(), nil
}

func (s *LocalStore) ReadBytes(ctx context.Context, objPath string) ([]byte, error) {
	full, err := s.resolve(objPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, objPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", objPath, err)
	}
	return data, nil
}

func (s *LocalStore) ReadText(ctx context.Context, objPath string) (string, error) {
	data, err := s.ReadBytes(ctx, objPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *LocalStore) ReadMetadata(ctx context.Context, objPath string) (*domain.ObjectMetadata, error) {
	full, err := s.resolve(objPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, objPath)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", objPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, objPath)
	}
	return &domain.ObjectMetadata{
		ContentType:  contentTypeFor(objPath),
		Size:         info.Size(),
		LastModified: info.ModTime().UTC(),
	}, nil
}

func (s *LocalStore) List(ctx context.Context, objPath string) ([]domain.ObjectInfo, error) {
	full, err := s.resolve(objPath)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, objPath)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", objPath, err)
	}

	base := strings.Trim(path.Clean("/"+objPath), "/")
	infos := make([]domain.ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		childPath := entry.Name()
		if base != "" {
			childPath = base + "/" + entry.Name()
		}
		child := domain.ObjectInfo{
			Name:  entry.Name(),
			Path:  childPath,
			IsDir: entry.IsDir(),
		}
		if !entry.IsDir() {
			if fi, err := entry.Info(); err == nil {
				child.Size = fi.Size()
				child.LastModified = fi.ModTime().UTC()
			}
		}
		infos = append(infos, child)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func contentTypeFor(objPath string) string {
	ext := strings.ToLower(path.Ext(objPath))
	switch ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultContentType
}
