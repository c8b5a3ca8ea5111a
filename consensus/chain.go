package consensus

// ChainNode is the read-only view of an indexed block consumed by the
// difficulty schedule. Nodes are immutable once appended to the chain index,
// so concurrent readers need no synchronization.
//
// Parent and Ancestor must return an untyped nil when the requested node does
// not exist; returning a typed nil pointer inside the interface breaks the
// schedule's existence checks.
type ChainNode interface {
	Height() uint64
	Timestamp() uint64
	Bits() uint32
	Parent() ChainNode
	Ancestor(height uint64) ChainNode
}
