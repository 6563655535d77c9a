package quota

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"scriptreel/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quota.json")
	store := NewFileStore(path)
	ctx := context.Background()

	rec, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if rec != (domain.QuotaRecord{}) {
		t.Fatalf("Load on missing file = %+v, want zero", rec)
	}

	want := domain.QuotaRecord{Date: "2024-05-01", Count: 3}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var doc map[string]domain.QuotaRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("file is not a JSON document: %v", err)
	}
	if doc[StorageKey] != want {
		t.Fatalf("document[%s] = %+v", StorageKey, doc[StorageKey])
	}
}

func TestFileStorePreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.json")
	if err := os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewFileStore(path)
	if err := store.Save(context.Background(), domain.QuotaRecord{Date: "2024-05-01", Count: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"theme": "dark"`) {
		t.Fatalf("other keys lost: %s", data)
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.json")
	if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewFileStore(path)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
	want := domain.QuotaRecord{Date: "2024-05-01", Count: 1}
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("Save over corrupt file: %v", err)
	}
	got, err := store.Load(context.Background())
	if err != nil || got != want {
		t.Fatalf("Load = %+v, %v", got, err)
	}
}

type fakeKV struct {
	data map[string]string
	ttl  map[string]time.Duration
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStore(t *testing.T) {
	kv := &fakeKV{data: map[string]string{}, ttl: map[string]time.Duration{}}
	store := NewRedisStore(kv, "client-1")
	ctx := context.Background()

	rec, err := store.Load(ctx)
	if err != nil || rec != (domain.QuotaRecord{}) {
		t.Fatalf("Load on empty = %+v, %v", rec, err)
	}

	want := domain.QuotaRecord{Date: "2024-05-01", Count: 2}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	key := "scriptreel:videoGenerationTracker:client-1"
	if _, ok := kv.data[key]; !ok {
		t.Fatalf("record not stored under %q: %v", key, kv.data)
	}
	if kv.ttl[key] != recordTTL {
		t.Fatalf("ttl = %v, want %v", kv.ttl[key], recordTTL)
	}
	got, err := store.Load(ctx)
	if err != nil || got != want {
		t.Fatalf("Load = %+v, %v", got, err)
	}
}
