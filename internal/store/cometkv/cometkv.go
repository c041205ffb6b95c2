// Package cometkv adapts a github.com/cometbft/cometbft-db database
// to the store.KV interface, so the engine's account store can persist
// across restarts without depending on CometBFT's consensus machinery
// at all — only its embeddable KV backend (memdb for tests,
// goleveldb for a real deployment). Ported structurally from the
// teacher's pkg/kvdb.KVAdapter, which wraps the same dbm.DB interface
// for pkg/ledger.KV.
package cometkv

import (
	dbm "github.com/cometbft/cometbft-db"
)

// KV wraps a cometbft-db database and exposes the store.KV interface.
type KV struct {
	db dbm.DB
}

// New wraps db for use as an account store backend.
func New(db dbm.DB) *KV {
	return &KV{db: db}
}

// Open constructs a new named cometbft-db database of the given
// backend type (e.g. dbm.GoLevelDBBackend, dbm.MemDBBackend) rooted at
// dir, and wraps it.
func Open(name, dir string, backend dbm.BackendType) (*KV, error) {
	db, err := dbm.NewDB(name, backend, dir)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func (k *KV) Get(key []byte) ([]byte, error) {
	return k.db.Get(key)
}

// Set writes durably (SetSync) so that every accepted instruction is
// on disk before the engine reports it committed, matching the
// teacher's KVAdapter.Set comment ("Use SetSync for durable writes at
// commit time").
func (k *KV) Set(key, value []byte) error {
	return k.db.SetSync(key, value)
}

func (k *KV) Has(key []byte) (bool, error) {
	return k.db.Has(key)
}

func (k *KV) Delete(key []byte) error {
	return k.db.DeleteSync(key)
}

// Close closes the underlying database.
func (k *KV) Close() error {
	return k.db.Close()
}
