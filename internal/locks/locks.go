// Package locks emulates the host runtime's implicit per-account
// locking (spec §5): every instruction is assumed to run over a
// consistent snapshot with every named account locked for its
// duration. There is no teacher analog at this granularity —
// pkg/consensus only locks at block-commit scope — so this is a fresh,
// standard striped-mutex implementation.
package locks

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Manager hands out per-address mutexes, created lazily and kept for
// the lifetime of the process (accounts are permanent once created,
// per spec §3, so there is no need to ever garbage-collect an entry).
type Manager struct {
	mu    sync.Mutex
	locks map[common.Hash]*sync.Mutex
}

// NewManager constructs an empty lock manager.
func NewManager() *Manager {
	return &Manager{locks: make(map[common.Hash]*sync.Mutex)}
}

func (m *Manager) lockFor(addr common.Hash) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[addr]
	if !ok {
		l = &sync.Mutex{}
		m.locks[addr] = l
	}
	return l
}

// Release is returned by Acquire; call it once the instruction that
// acquired the lock set has finished.
type Release func()

// Acquire locks every address in addrs, in sorted order, so two
// instructions that declare overlapping account sets never deadlock
// regardless of the order their accounts were listed in. Duplicate
// addresses are locked once. Returns a Release that unlocks everything
// acquired, in reverse order.
func (m *Manager) Acquire(addrs ...common.Hash) Release {
	unique := dedupe(addrs)
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Big().Cmp(unique[j].Big()) < 0
	})

	held := make([]*sync.Mutex, 0, len(unique))
	for _, addr := range unique {
		l := m.lockFor(addr)
		l.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func dedupe(addrs []common.Hash) []common.Hash {
	seen := make(map[common.Hash]struct{}, len(addrs))
	out := make([]common.Hash, 0, len(addrs))
	for _, a := range addrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
