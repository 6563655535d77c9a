// Package quota persists the client-side daily generation counter.
//
// The counter is a courtesy limit. It lives wherever the client keeps it and
// can be reset by the user, so nothing on the server trusts it.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"scriptreel/internal/domain"
)

// StorageKey names the record inside a store.
const StorageKey = "videoGenerationTracker"

// Store loads and saves the QuotaRecord of one client.
type Store interface {
	Load(ctx context.Context) (domain.QuotaRecord, error)
	Save(ctx context.Context, rec domain.QuotaRecord) error
}

// FileStore keeps records in a small JSON document keyed by StorageKey.
// Other keys in the document are preserved.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the quota file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("quota: locate config dir: %w", err)
	}
	return filepath.Join(dir, "scriptreel", "quota.json"), nil
}

func (s *FileStore) Path() string { return s.path }

// Load returns the stored record. A missing file yields the zero record.
func (s *FileStore) Load(ctx context.Context) (domain.QuotaRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.QuotaRecord{}, err
	}
	doc, err := s.read()
	if err != nil {
		return domain.QuotaRecord{}, err
	}
	raw, ok := doc[StorageKey]
	if !ok {
		return domain.QuotaRecord{}, nil
	}
	var rec domain.QuotaRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.QuotaRecord{}, fmt.Errorf("quota: decode %s: %w", StorageKey, err)
	}
	return rec, nil
}

// Save writes rec atomically.
func (s *FileStore) Save(ctx context.Context, rec domain.QuotaRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := s.read()
	if err != nil {
		// An unreadable document is replaced rather than blocking the counter.
		doc = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("quota: encode: %w", err)
	}
	doc[StorageKey] = raw
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("quota: encode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("quota: ensure directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".quota-*")
	if err != nil {
		return fmt.Errorf("quota: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("quota: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("quota: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("quota: replace: %w", err)
	}
	return nil
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("quota: read %s: %w", s.path, err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("quota: decode %s: %w", s.path, err)
	}
	return doc, nil
}
