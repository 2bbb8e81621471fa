package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chatstack/rag-core/internal/core/domain"
	"github.com/chatstack/rag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ObjectStore = (*MockObjectStore)(nil)

type mockObject struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// MockObjectStore is a mock implementation of ObjectStore for testing
type MockObjectStore struct {
	mu      sync.RWMutex
	objects map[string]mockObject

	ReadErr error
}

// NewMockObjectStore creates a new MockObjectStore
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: make(map[string]mockObject)}
}

// AddObject registers an object under path
func (m *MockObjectStore) AddObject(path, contentType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = mockObject{
		data:        data,
		contentType: contentType,
		modTime:     time.Now(),
	}
}

func (m *MockObjectStore) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok, nil
}

func (m *MockObjectStore) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	obj, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return obj.data, nil
}

func (m *MockObjectStore) ReadText(ctx context.Context, path string) (string, error) {
	data, err := m.ReadBytes(ctx, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *MockObjectStore) ReadMetadata(ctx context.Context, path string) (*domain.ObjectMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return &domain.ObjectMetadata{
		ContentType:  obj.contentType,
		Size:         int64(len(obj.data)),
		LastModified: obj.modTime,
	}, nil
}

func (m *MockObjectStore) List(ctx context.Context, path string) ([]domain.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := strings.TrimSuffix(path, "/")
	if prefix != "" {
		prefix += "/"
	}

	seen := make(map[string]domain.ObjectInfo)
	for objPath, obj := range m.objects {
		if !strings.HasPrefix(objPath, prefix) {
			continue
		}
		rest := strings.TrimPrefix(objPath, prefix)
		if rest == "" {
			continue
		}
		if i := strings.Index(rest, "/"); i >= 0 {
			// a subdirectory entry
			dir := rest[:i]
			seen[dir] = domain.ObjectInfo{
				Name:  dir,
				Path:  prefix + dir,
				IsDir: true,
			}
			continue
		}
		seen[rest] = domain.ObjectInfo{
			Name:         rest,
			Path:         objPath,
			Size:         int64(len(obj.data)),
			LastModified: obj.modTime,
		}
	}

	infos := make([]domain.ObjectInfo, 0, len(seen))
	for _, info := range seen {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
