package search

import (
	"sync"

	"github.com/OneOfOne/xxhash"

	"github.com/lox/hackenbush/internal/surreal"
)

// transpositionTable maps canonical position keys to their values. Keys are
// compared in full; the hash only picks a shard.
type transpositionTable struct {
	shards []tableShard
}

type tableShard struct {
	mu     sync.RWMutex
	values map[string]surreal.Value
}

func newTranspositionTable(shards int) *transpositionTable {
	t := &transpositionTable{shards: make([]tableShard, shards)}
	for i := range t.shards {
		t.shards[i].values = make(map[string]surreal.Value)
	}
	return t
}

func (t *transpositionTable) shard(key string) *tableShard {
	return &t.shards[xxhash.ChecksumString64(key)%uint64(len(t.shards))]
}

func (t *transpositionTable) get(key string) (surreal.Value, bool) {
	s := t.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (t *transpositionTable) put(key string, v surreal.Value) {
	s := t.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

func (t *transpositionTable) size() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.values)
		s.mu.RUnlock()
	}
	return n
}
