package node

import (
	"fmt"

	"corundum.dev/node/consensus"
	"corundum.dev/node/node/store"
)

// LoadIndex rebuilds the in-memory block index from the stored main-chain
// headers. Heights must be contiguous from zero; holes or broken linkage mean
// the store is corrupt.
func LoadIndex(db *store.DB) (*BlockIndex, error) {
	index := NewBlockIndex()
	next := uint64(0)
	err := db.ForEachHeader(func(height uint64, hdr consensus.BlockHeader) error {
		if height != next {
			return fmt.Errorf("node: header store has a gap at height %d", next)
		}
		if _, err := index.Append(hdr); err != nil {
			return err
		}
		next++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}
