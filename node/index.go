package node

import (
	"fmt"
	"math/big"

	"corundum.dev/node/consensus"
	"corundum.dev/node/node/store"
)

// BlockIndex is the append-only main-chain index consumed by the difficulty
// schedule. Entries are addressable by height, so ancestor lookups cost O(1)
// instead of walking parent pointers. Entries are immutable once appended;
// concurrent readers are safe, appends are not.
type BlockIndex struct {
	nodes []*IndexNode
}

// IndexNode is one indexed header. It implements consensus.ChainNode.
type IndexNode struct {
	index  *BlockIndex
	height uint64
	hash   [32]byte
	header consensus.BlockHeader
	work   *big.Int // cumulative chainwork through this block
}

func NewBlockIndex() *BlockIndex {
	return &BlockIndex{}
}

// Tip returns the highest indexed node, or nil for an empty index.
func (bi *BlockIndex) Tip() *IndexNode {
	if len(bi.nodes) == 0 {
		return nil
	}
	return bi.nodes[len(bi.nodes)-1]
}

// NodeAt returns the node at the given height, or nil when out of range.
func (bi *BlockIndex) NodeAt(height uint64) *IndexNode {
	if height >= uint64(len(bi.nodes)) {
		return nil
	}
	return bi.nodes[height]
}

// Append extends the main chain with header, enforcing parent linkage and
// accumulating chainwork.
func (bi *BlockIndex) Append(header consensus.BlockHeader) (*IndexNode, error) {
	height := uint64(len(bi.nodes))
	if tip := bi.Tip(); tip != nil {
		if header.PrevBlockHash != tip.hash {
			return nil, fmt.Errorf(
				"index: header at height %d does not link to tip %x", height, tip.hash,
			)
		}
	}
	work, err := store.WorkFromBits(header.Bits)
	if err != nil {
		return nil, fmt.Errorf("index: height %d: %w", height, err)
	}
	if tip := bi.Tip(); tip != nil {
		work.Add(work, tip.work)
	}
	node := &IndexNode{
		index:  bi,
		height: height,
		hash:   consensus.BlockHeaderHash(header),
		header: header,
		work:   work,
	}
	bi.nodes = append(bi.nodes, node)
	return node, nil
}

// NextWorkRequired returns the compact target required of the block that
// would extend the current tip at the given timestamp.
func (bi *BlockIndex) NextWorkRequired(
	candidateTime uint64,
	params *consensus.Params,
	observe consensus.RetargetObserver,
) (uint32, error) {
	var prev consensus.ChainNode
	candidateHeight := uint64(len(bi.nodes))
	if tip := bi.Tip(); tip != nil {
		prev = tip
	}
	return consensus.NextWorkRequired(prev, candidateTime, candidateHeight, params, observe)
}

func (n *IndexNode) Height() uint64    { return n.height }
func (n *IndexNode) Timestamp() uint64 { return n.header.Timestamp }
func (n *IndexNode) Bits() uint32      { return n.header.Bits }

func (n *IndexNode) Parent() consensus.ChainNode {
	if n.height == 0 {
		return nil
	}
	return n.index.nodes[n.height-1]
}

func (n *IndexNode) Ancestor(height uint64) consensus.ChainNode {
	if height > n.height {
		return nil
	}
	return n.index.nodes[height]
}

// Hash returns the header hash of this node.
func (n *IndexNode) Hash() [32]byte { return n.hash }

// Header returns a copy of the indexed header.
func (n *IndexNode) Header() consensus.BlockHeader { return n.header }

// ChainWork returns the cumulative chainwork through this node.
func (n *IndexNode) ChainWork() *big.Int { return new(big.Int).Set(n.work) }
