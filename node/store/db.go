package store

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"corundum.dev/node/consensus"
)

var (
	bucketHeaders = []byte("headers_by_hash")
	bucketHeights = []byte("hash_by_height")
	bucketMeta    = []byte("meta")

	metaTipHeight = []byte("tip_height")
)

// DB is the bbolt-backed header store. It persists the main-chain header
// sequence so the block index can be rebuilt at startup; it holds no
// consensus state of its own.
type DB struct {
	db *bolt.DB
}

func Open(datadir string, network string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	if network == "" {
		return nil, fmt.Errorf("network required")
	}

	dir := filepath.Join(datadir, network)
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "headers.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	d := &DB{db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketHeaders, bucketHeights, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// PutHeader stores a main-chain header at the given height and advances the
// tip marker when the height extends it.
func (d *DB) PutHeader(height uint64, hdr consensus.BlockHeader) error {
	hash := consensus.BlockHeaderHash(hdr)
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketHeaders).Put(hash[:], consensus.BlockHeaderBytes(hdr)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketHeights).Put(be64(height), hash[:]); err != nil {
			return err
		}
		meta := tx.Bucket(bucketMeta)
		if cur := meta.Get(metaTipHeight); cur == nil || binary.BigEndian.Uint64(cur) < height {
			return meta.Put(metaTipHeight, be64(height))
		}
		return nil
	})
}

// Tip returns the stored tip height and hash; ok is false for an empty store.
func (d *DB) Tip() (height uint64, hash [32]byte, ok bool, err error) {
	err = d.db.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(bucketMeta).Get(metaTipHeight)
		if cur == nil {
			return nil
		}
		height = binary.BigEndian.Uint64(cur)
		h := tx.Bucket(bucketHeights).Get(be64(height))
		if h == nil {
			return fmt.Errorf("store: tip height %d has no hash", height)
		}
		copy(hash[:], h)
		ok = true
		return nil
	})
	return height, hash, ok, err
}

// HeaderByHash fetches a header by its hash; ok is false when absent.
func (d *DB) HeaderByHash(hash [32]byte) (consensus.BlockHeader, bool, error) {
	var hdr consensus.BlockHeader
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketHeaders).Get(hash[:])
		if raw == nil {
			return nil
		}
		parsed, err := consensus.ParseBlockHeaderBytes(raw)
		if err != nil {
			return fmt.Errorf("store: header %x: %w", hash, err)
		}
		hdr = parsed
		ok = true
		return nil
	})
	return hdr, ok, err
}

// ForEachHeader visits the stored main-chain headers in height order.
func (d *DB) ForEachHeader(fn func(height uint64, hdr consensus.BlockHeader) error) error {
	return d.db.View(func(tx *bolt.Tx) error {
		headers := tx.Bucket(bucketHeaders)
		return tx.Bucket(bucketHeights).ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("store: malformed height key %x", k)
			}
			raw := headers.Get(v)
			if raw == nil {
				return fmt.Errorf("store: height %d references missing header %x",
					binary.BigEndian.Uint64(k), v)
			}
			hdr, err := consensus.ParseBlockHeaderBytes(raw)
			if err != nil {
				return fmt.Errorf("store: height %d: %w", binary.BigEndian.Uint64(k), err)
			}
			return fn(binary.BigEndian.Uint64(k), hdr)
		})
	})
}

func be64(v uint64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, v)
	return out
}
