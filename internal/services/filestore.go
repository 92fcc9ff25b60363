package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore persists template content under opaque handles. Callers never
// see paths, only handles, so the backing store can be swapped without
// touching the template configuration rows that reference it.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Put stores content and returns its new handle.
func (fs *FileStore) Put(content string) (string, error) {
	handle := uuid.NewString()
	if err := os.WriteFile(fs.path(handle), []byte(content), 0644); err != nil {
		return "", fmt.Errorf("store template content: %w", err)
	}
	return handle, nil
}

// Get returns the content stored under a handle.
func (fs *FileStore) Get(handle string) (string, error) {
	if !validHandle(handle) {
		return "", fmt.Errorf("invalid storage handle: %q", handle)
	}
	data, err := os.ReadFile(fs.path(handle))
	if err != nil {
		return "", fmt.Errorf("read template content: %w", err)
	}
	return string(data), nil
}

// Delete removes the content stored under a handle. Missing content is not
// an error; deletes are only used to undo writes from failed approvals.
func (fs *FileStore) Delete(handle string) error {
	if !validHandle(handle) {
		return fmt.Errorf("invalid storage handle: %q", handle)
	}
	err := os.Remove(fs.path(handle))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (fs *FileStore) path(handle string) string {
	return filepath.Join(fs.dir, handle+".html")
}

// validHandle rejects anything that is not a bare UUID, keeping path
// traversal out of the store.
func validHandle(handle string) bool {
	if strings.ContainsAny(handle, `/\.`) {
		return false
	}
	_, err := uuid.Parse(handle)
	return err == nil
}
