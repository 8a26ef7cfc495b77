// Package filestore keeps tasks and settings in one JSON document on disk,
// the layout the desktop application writes:
//
//	{"tasks": [...], "settings": {...}, ...}
//
// Top-level keys other than tasks are preserved on every write. Writes go to
// a temporary file that is renamed over the document.
package filestore

import (
	"context"
	"duewatch/internal/domain"
	"duewatch/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func New(fsys afero.Fs, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}
	return &Store{fs: fsys, path: path}, nil
}

// NewOS opens path on the real filesystem.
func NewOS(path string) (*Store, error) {
	return New(afero.NewOsFs(), path)
}

func (s *Store) GetTasks(_ context.Context) ([]domain.Task, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return domain.DecodeTasks(doc["tasks"])
}

func (s *Store) SetTasks(_ context.Context, tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	b, err := domain.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	doc["tasks"] = b
	return s.write(doc)
}

func (s *Store) GetSettings(_ context.Context) (domain.Settings, error) {
	doc, err := s.read()
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.DecodeSettings(doc["settings"])
}

func (s *Store) Close() error { return nil }

func (s *Store) read() (map[string]json.RawMessage, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	doc := map[string]json.RawMessage{}
	if len(strings.TrimSpace(string(b))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) write(doc map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.path, err)
	}
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", s.path, err)
	}
	return nil
}
