package persist

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/storage"
	"github.com/df-mc/goleveldb/leveldb/util"
)

// Store keeps serialized slot records by key
type Store interface {
	// Load returns ErrNotFound when nothing is stored under key
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(key string) error
	Close() error
}

var keyPrefix = []byte("slot/")

// LevelStore is a Store backed by LevelDB
type LevelStore struct {
	db *leveldb.DB
}

var _ Store = &LevelStore{}

// OpenLevelStore opens (or creates) a LevelDB database in dir
func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", dir, err)
	}
	return &LevelStore{db: db}, nil
}

// NewMemLevelStore opens a LevelDB database that lives in memory only
func NewMemLevelStore() (*LevelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory leveldb: %w", err)
	}
	return &LevelStore{db: db}, nil
}

func dbKey(key string) []byte {
	return append(append([]byte{}, keyPrefix...), key...)
}

func (s *LevelStore) Load(key string) ([]byte, error) {
	data, err := s.db.Get(dbKey(key), nil)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
}

func (s *LevelStore) Save(key string, data []byte) error {
	if err := s.db.Put(dbKey(key), data, nil); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *LevelStore) Delete(key string) error {
	if err := s.db.Delete(dbKey(key), nil); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored slot key in byte order
func (s *LevelStore) Keys() ([]string, error) {
	iter := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()[len(keyPrefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}

// MemStore is a map-backed Store
type MemStore struct {
	data map[string][]byte
}

var _ Store = &MemStore{}

// NewMemStore creates an empty MemStore
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Load(key string) ([]byte, error) {
	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemStore) Save(key string, data []byte) error {
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemStore) Delete(key string) error {
	delete(s.data, key)
	return nil
}

// Keys returns every stored key, sorted
func (s *MemStore) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored records
func (s *MemStore) Len() int { return len(s.data) }

func (s *MemStore) Close() error { return nil }
