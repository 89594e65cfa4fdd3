package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/questforge/questforge/internal/core/observability/log"
)

// Provider is the persistence surface game logic uses. Values are an opaque
// key/value blob; backend failures degrade to logged warnings, never faults.
type Provider interface {
	Get(key string, def any) any
	Set(key string, value any)
	Delete(key string)
	SaveSlot(name string) error
	LoadSlot(name string) bool
}

const shardCount = 16

// shard is one stripe of the key space with its own lock.
type shard struct {
	mu sync.RWMutex
	kv map[string]any
}

// Store is a sharded in-memory key/value store with JSON file save slots.
// Keys are striped across shards by xxhash so host goroutines (autosave, web
// viewer) can read while the simulation writes.
type Store struct {
	shards [shardCount]shard
	dir    string
	logger log.Log
}

var _ Provider = (*Store)(nil)

// NewStore builds a Store persisting slots under dir. An empty dir disables
// slot persistence; Get/Set remain usable.
func NewStore(dir string, logger log.Log) *Store {
	if logger == nil {
		logger = log.Provide()
	}
	s := &Store{dir: dir, logger: logger}
	for i := range s.shards {
		s.shards[i].kv = make(map[string]any)
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	return &s.shards[xxhash.Sum64String(key)%shardCount]
}

// Get returns the stored value, or def when the key is absent.
func (s *Store) Get(key string, def any) any {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if v, ok := sh.kv[key]; ok {
		return v
	}
	return def
}

func (s *Store) Set(key string, value any) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.kv[key] = value
	sh.mu.Unlock()
}

func (s *Store) Delete(key string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	delete(sh.kv, key)
	sh.mu.Unlock()
}

// Len reports the number of stored keys.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		s.shards[i].mu.RLock()
		n += len(s.shards[i].kv)
		s.shards[i].mu.RUnlock()
	}
	return n
}

// SaveSlot writes the whole store to <dir>/<name>.json. Failures are logged
// as warnings and returned; callers may ignore the error per the
// never-crash-the-loop policy.
func (s *Store) SaveSlot(name string) error {
	if s.dir == "" {
		return nil
	}
	blob := make(map[string]any)
	for i := range s.shards {
		s.shards[i].mu.RLock()
		for k, v := range s.shards[i].kv {
			blob[k] = v
		}
		s.shards[i].mu.RUnlock()
	}
	buf, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		s.logger.Warn("save slot: marshal failed", log.String("slot", name), log.Error(err))
		return fmt.Errorf("data: marshal slot %q: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Warn("save slot: mkdir failed", log.String("slot", name), log.Error(err))
		return fmt.Errorf("data: save slot %q: %w", name, err)
	}
	path := s.slotPath(name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		s.logger.Warn("save slot: write failed", log.String("slot", name), log.Error(err))
		return fmt.Errorf("data: save slot %q: %w", name, err)
	}
	s.logger.Info("slot saved", log.String("slot", name), log.Int("keys", len(blob)))
	return nil
}

// LoadSlot replaces the store contents from a previously saved slot. Returns
// false (leaving current state intact) when the slot is missing or corrupt.
func (s *Store) LoadSlot(name string) bool {
	if s.dir == "" {
		return false
	}
	buf, err := os.ReadFile(s.slotPath(name))
	if err != nil {
		s.logger.Warn("load slot: read failed", log.String("slot", name), log.Error(err))
		return false
	}
	var blob map[string]any
	if err := json.Unmarshal(buf, &blob); err != nil {
		s.logger.Warn("load slot: decode failed", log.String("slot", name), log.Error(err))
		return false
	}
	for i := range s.shards {
		s.shards[i].mu.Lock()
		s.shards[i].kv = make(map[string]any)
		s.shards[i].mu.Unlock()
	}
	for k, v := range blob {
		s.Set(k, v)
	}
	s.logger.Info("slot loaded", log.String("slot", name), log.Int("keys", len(blob)))
	return true
}

func (s *Store) slotPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}
