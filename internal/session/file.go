package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"wimitasks/internal/models"
)

// FileStore persists the identity under a fixed key of a JSON object file.
type FileStore struct {
	path string
	key  string
}

// NewFileStore stores the identity under key in the file at path.
func NewFileStore(path, key string) *FileStore {
	return &FileStore{path: path, key: key}
}

func (f *FileStore) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	entries := map[string]json.RawMessage{}
	if err := sonic.ConfigStd.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return entries, nil
}

func (f *FileStore) write(entries map[string]json.RawMessage) error {
	if len(entries) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}
	raw, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Save(_ context.Context, id models.Identity) error {
	entries, err := f.read()
	if err != nil {
		// Replace an unreadable file.
		entries = map[string]json.RawMessage{}
	}
	raw, err := sonic.ConfigStd.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	entries[f.key] = raw
	return f.write(entries)
}

func (f *FileStore) Load(context.Context) (*models.Identity, error) {
	entries, err := f.read()
	if err != nil {
		return nil, err
	}
	raw, ok := entries[f.key]
	if !ok {
		return nil, nil
	}
	var id models.Identity
	if err := sonic.ConfigStd.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &id, nil
}

func (f *FileStore) Clear(context.Context) error {
	entries, err := f.read()
	if err != nil {
		return f.write(nil)
	}
	delete(entries, f.key)
	return f.write(entries)
}
