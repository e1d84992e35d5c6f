package drive

import (
	"sort"
	"strings"
	"sync"
)

// memoryStore 内存键值后端
//
// 测试与模拟场景使用；Scan 每次对键做快照排序，保证与 Badger
// 后端一致的字节序遍历。
type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ store = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (s *memoryStore) Set(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[string(key)] = stored
	return nil
}

func (s *memoryStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, string(key))
	return nil
}

func (s *memoryStore) Scan(prefix []byte, fn func(key, value []byte) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()
	sort.Strings(keys)

	for _, k := range keys {
		s.mu.RLock()
		raw, ok := s.data[k]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		value := make([]byte, len(raw))
		copy(value, raw)
		if err := fn([]byte(k), value); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}
