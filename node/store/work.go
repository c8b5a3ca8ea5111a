package store

import (
	"fmt"
	"math/big"

	"corundum.dev/node/consensus"
)

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// WorkFromBits returns floor(2^256 / target) for PoW chainwork, where target
// is the expanded form of the compact bits. Bits that do not encode a
// positive in-range target yield an error.
func WorkFromBits(bits uint32) (*big.Int, error) {
	target, negative, overflow := consensus.DecodeCompact(bits)
	if negative || overflow || target.Sign() <= 0 {
		return nil, fmt.Errorf("work: bits %08x do not encode a positive target", bits)
	}
	return new(big.Int).Quo(twoTo256, target), nil
}
