package kvstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore keeps each slot as one file under dir on an afero filesystem.
// With afero.NewMemMapFs it doubles as an in-memory store for tests.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a FileStore rooted at dir. Pass nil fs for the OS
// filesystem.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

// Get returns the blob stored under name, or (nil, nil) if absent.
func (f *FileStore) Get(_ context.Context, name string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (f *FileStore) Put(_ context.Context, name string, value []byte) error {
	return afero.WriteFile(f.fs, f.path(name), value, 0o644)
}

func (f *FileStore) Delete(_ context.Context, name string) error {
	err := f.fs.Remove(f.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Slot binds a name to this file store, satisfying chatstore.Slot.
func (f *FileStore) Slot(name string) *FileSlot {
	return &FileSlot{store: f, name: name}
}

// FileSlot is a single named slot in a FileStore.
type FileSlot struct {
	store *FileStore
	name  string
}

func (s *FileSlot) Load(ctx context.Context) ([]byte, error) {
	return s.store.Get(ctx, s.name)
}

func (s *FileSlot) Save(ctx context.Context, data []byte) error {
	return s.store.Put(ctx, s.name, data)
}

func (s *FileSlot) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.name)
}
