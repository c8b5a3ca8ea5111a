package node

import (
	"math/big"
	"testing"

	"corundum.dev/node/consensus"
)

func nextHeader(parent *IndexNode, ts uint64, bits uint32) consensus.BlockHeader {
	hdr := consensus.BlockHeader{
		Version:   1,
		Timestamp: ts,
		Bits:      bits,
	}
	if parent != nil {
		hdr.PrevBlockHash = parent.Hash()
	}
	return hdr
}

// buildChain appends count linked headers at fixed spacing and returns the
// index.
func buildChain(t *testing.T, count int, firstTime uint64, spacing uint64, bits uint32) *BlockIndex {
	t.Helper()
	index := NewBlockIndex()
	for i := 0; i < count; i++ {
		hdr := nextHeader(index.Tip(), firstTime+uint64(i)*spacing, bits)
		if _, err := index.Append(hdr); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	return index
}

func TestBlockIndex_AppendAndLookup(t *testing.T) {
	index := buildChain(t, 5, 1000, 600, 0x1d00ffff)

	tip := index.Tip()
	if tip == nil || tip.Height() != 4 {
		t.Fatalf("bad tip: %+v", tip)
	}
	if node := index.NodeAt(2); node == nil || node.Timestamp() != 1000+2*600 {
		t.Fatalf("bad node at height 2: %+v", node)
	}
	if index.NodeAt(5) != nil {
		t.Fatalf("out-of-range lookup succeeded")
	}

	anc := tip.Ancestor(0)
	if anc == nil || anc.Height() != 0 {
		t.Fatalf("bad ancestor: %+v", anc)
	}
	if tip.Ancestor(10) != nil {
		t.Fatalf("descendant lookup succeeded")
	}
	if parent := tip.Parent(); parent == nil || parent.Height() != 3 {
		t.Fatalf("bad parent: %+v", parent)
	}
	if genesis := index.NodeAt(0); genesis.Parent() != nil {
		t.Fatalf("genesis has a parent")
	}
}

func TestBlockIndex_RejectsBrokenLinkage(t *testing.T) {
	index := buildChain(t, 2, 1000, 600, 0x1d00ffff)

	hdr := consensus.BlockHeader{Version: 1, Timestamp: 3000, Bits: 0x1d00ffff}
	hdr.PrevBlockHash[0] = 0xab // does not match the tip hash
	if _, err := index.Append(hdr); err == nil {
		t.Fatalf("unlinked header accepted")
	}
}

func TestBlockIndex_RejectsMalformedBits(t *testing.T) {
	index := NewBlockIndex()
	hdr := consensus.BlockHeader{Version: 1, Timestamp: 1000, Bits: 0}
	if _, err := index.Append(hdr); err == nil {
		t.Fatalf("zero-target header accepted")
	}
}

func TestBlockIndex_ChainWorkAccumulates(t *testing.T) {
	index := buildChain(t, 3, 1000, 600, 0x1d00ffff)

	w0 := index.NodeAt(0).ChainWork()
	w1 := index.NodeAt(1).ChainWork()
	w2 := index.NodeAt(2).ChainWork()
	if w2.Cmp(w1) <= 0 || w1.Cmp(w0) <= 0 {
		t.Fatalf("chainwork not accumulating: w0=%v w1=%v w2=%v", w0, w1, w2)
	}
	// Equal-difficulty blocks contribute equal work.
	stepA := new(big.Int).Sub(w1, w0)
	stepB := new(big.Int).Sub(w2, w1)
	if stepA.Cmp(stepB) != 0 || stepA.Cmp(w0) != 0 {
		t.Fatalf("uneven work steps: %v vs %v (base %v)", stepA, stepB, w0)
	}
}

func TestBlockIndex_NextWorkRequired(t *testing.T) {
	// Small window so the retarget path runs through the index: spacing 600,
	// timespan 2400, interval 4. Blocks arrive at 600s so the first window
	// spans 1800s against an expected 2400s: target scales by 3/4.
	// 0x0ffff0 * 3/4 = 0x0bfff4 exactly.
	params := &consensus.Params{
		Name:             "unit",
		PowLimit:         mustTarget(t, 0x1d00ffff),
		PowLimitBits:     0x1d00ffff,
		TargetSpacing:    600,
		TargetTimespan:   2400,
		ForkHeight:       1 << 40,
		ForkPowLimit:     mustTarget(t, 0x1d00ffff),
		ForkPowLimitBits: 0x1d00ffff,
	}

	index := NewBlockIndex()
	// Empty index: genesis gets the pow limit.
	bits, err := index.NextWorkRequired(1000, params, nil)
	if err != nil {
		t.Fatalf("NextWorkRequired error: %v", err)
	}
	if bits != params.PowLimitBits {
		t.Fatalf("genesis bits: got %08x want %08x", bits, params.PowLimitBits)
	}

	for i := 0; i < 4; i++ {
		hdr := nextHeader(index.Tip(), 1000+uint64(i)*600, 0x1c0ffff0)
		if _, err := index.Append(hdr); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var events []consensus.RetargetEvent
	observe := func(ev consensus.RetargetEvent) { events = append(events, ev) }
	bits, err = index.NextWorkRequired(1000+4*600, params, observe)
	if err != nil {
		t.Fatalf("NextWorkRequired error: %v", err)
	}
	if bits != 0x1c0bfff4 {
		t.Fatalf("retarget bits: got %08x want 1c0bfff4", bits)
	}
	if len(events) != 1 || events[0].Height != 4 {
		t.Fatalf("bad retarget events: %+v", events)
	}
}

func mustTarget(t *testing.T, bits uint32) *big.Int {
	t.Helper()
	target, negative, overflow := consensus.DecodeCompact(bits)
	if negative || overflow || target.Sign() == 0 {
		t.Fatalf("bad fixture bits %08x", bits)
	}
	return target
}
