// Package storage implements the durability layer for the chain store. Disk
// keeps one JSON file per block, an append-only transaction log and the
// chain bookkeeping value, so committed state survives a restart or upgrade.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/memechain/minter/business/core/chain/db"
)

// Disk represents the serialization implementation for reading and storing
// chain data in files on disk. This implements the db.Storage interface.
type Disk struct {
	dbPath string
	txFile *os.File
}

// NewDisk constructs a Disk value for use.
func NewDisk(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Join(dbPath, "blocks"), 0755); err != nil {
		return nil, err
	}

	// The transaction log is append-only. Every transaction ever committed
	// is written here exactly once, in insertion order.
	txFile, err := os.OpenFile(filepath.Join(dbPath, "txs.db"), os.O_APPEND|os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath, txFile: txFile}, nil
}

// Close releases the transaction log file.
func (d *Disk) Close() error {
	return d.txFile.Close()
}

// WriteBlock stores the block in its own file named by height.
func (d *Disk) WriteBlock(rec db.BlockRecord) error {

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.blockPath(rec.Block.Height), os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// WriteTx appends the transaction to the transaction log.
func (d *Disk) WriteTx(rec db.TxRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if _, err := d.txFile.Write(append(data, '\n')); err != nil {
		return err
	}

	return nil
}

// WriteChain replaces the persisted chain bookkeeping value. The write goes
// through a temp file and rename so a crash mid-write never leaves a torn
// chain value behind.
func (d *Disk) WriteChain(chain db.Chain) error {
	data, err := json.MarshalIndent(chain, "", "  ")
	if err != nil {
		return err
	}

	tmp := filepath.Join(d.dbPath, "chain.json.tmp")
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, filepath.Join(d.dbPath, "chain.json"))
}

// ReadChain loads the persisted chain bookkeeping value. A missing file is
// not an error: it means a fresh chain starting at genesis.
func (d *Disk) ReadChain() (db.Chain, bool, error) {
	data, err := os.ReadFile(filepath.Join(d.dbPath, "chain.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return db.Chain{}, false, nil
		}
		return db.Chain{}, false, err
	}

	var chain db.Chain
	if err := json.Unmarshal(data, &chain); err != nil {
		return db.Chain{}, false, err
	}

	return chain, true, nil
}

// ForEachBlock walks all the stored blocks in height order.
func (d *Disk) ForEachBlock(fn func(rec db.BlockRecord) error) error {
	entries, err := os.ReadDir(filepath.Join(d.dbPath, "blocks"))
	if err != nil {
		return err
	}

	// Zero padded names keep the lexical order equal to the height order.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(d.dbPath, "blocks", name))
		if err != nil {
			return err
		}

		var rec db.BlockRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decoding block file %s: %w", name, err)
		}

		if err := fn(rec); err != nil {
			return err
		}
	}

	return nil
}

// ForEachTx walks the transaction log in insertion order.
func (d *Disk) ForEachTx(fn func(rec db.TxRecord) error) error {
	f, err := os.Open(filepath.Join(d.dbPath, "txs.db"))
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var rec db.TxRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("decoding transaction log: %w", err)
		}

		if err := fn(rec); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// blockPath returns the file path for the block at the specified height.
func (d *Disk) blockPath(height uint32) string {
	return filepath.Join(d.dbPath, "blocks", fmt.Sprintf("%09d.json", height))
}
