package oracle

import (
	"fmt"
	"io/fs"
	"sync"
)

// Memo caches probe results for the lifetime of one pass.
//
// It is owned by the caller, never by the Oracle. Entries are keyed by path,
// size and modification time, so a file rewritten during the pass is probed again.
// A nil *Memo disables caching. Safe for concurrent use.
type Memo struct {
	mu      sync.Mutex
	entries map[string]memoEntry
}

type memoEntry struct {
	secs float64
	err  error
}

// NewMemo returns an empty Memo.
func NewMemo() *Memo {
	return &Memo{entries: make(map[string]memoEntry)}
}

// Len returns the number of cached probes.
func (m *Memo) Len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memo) load(key string) (float64, error, bool) {
	if m == nil {
		return 0, nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e.secs, e.err, ok
}

func (m *Memo) store(key string, secs float64, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoEntry{secs: secs, err: err}
}

func memoKey(path string, info fs.FileInfo) string {
	return fmt.Sprintf("%s\x00%d\x00%d", path, info.Size(), info.ModTime().UnixNano())
}
