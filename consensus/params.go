package consensus

import "math/big"

// Params holds the per-network consensus constants consumed by the difficulty
// schedule. Instances are immutable after package init; the schedule never
// writes through them.
type Params struct {
	Name string

	// PowLimit is the easiest (numerically largest) target ever permitted on
	// the network. PowLimitBits is its compact encoding, precomputed because
	// the schedule compares encoded bits against it.
	PowLimit     *big.Int
	PowLimitBits uint32

	// TargetSpacing is the desired seconds between blocks; TargetTimespan is
	// the desired duration of a full pre-fork adjustment window.
	TargetSpacing  int64
	TargetTimespan int64

	// AllowMinDifficultyBlocks permits minimum-difficulty blocks on stalled
	// permissive networks. NoRetargeting freezes difficulty entirely and is
	// only meant for isolated test networks.
	AllowMinDifficultyBlocks bool
	NoRetargeting            bool

	// ForkHeight is the block height at which the short-interval retarget
	// regime activates. ForkPowLimit is the ceiling applied to the first
	// block after activation, before the new regime's own retargets begin.
	ForkHeight       uint64
	ForkPowLimit     *big.Int
	ForkPowLimitBits uint32
}

// AdjustmentInterval returns the standard (pre-fork) retarget interval in
// blocks.
func (p *Params) AdjustmentInterval() uint64 {
	return uint64(p.TargetTimespan / p.TargetSpacing)
}

// compactTarget expands compact bits into a target for param tables. Init-time
// only; the encodings below are constants and must be well formed.
func compactTarget(bits uint32) *big.Int {
	t, negative, overflow := DecodeCompact(bits)
	if negative || overflow || t.Sign() == 0 {
		panic("consensus: malformed compact target in params")
	}
	return t
}

var MainNetParams = Params{
	Name:             "mainnet",
	PowLimit:         compactTarget(0x1d00ffff),
	PowLimitBits:     0x1d00ffff,
	TargetSpacing:    600,
	TargetTimespan:   14 * 24 * 60 * 60,
	ForkHeight:       495000,
	ForkPowLimit:     compactTarget(0x1c0ffff0),
	ForkPowLimitBits: 0x1c0ffff0,
}

var TestNetParams = Params{
	Name:                     "testnet",
	PowLimit:                 compactTarget(0x1d00ffff),
	PowLimitBits:             0x1d00ffff,
	TargetSpacing:            600,
	TargetTimespan:           14 * 24 * 60 * 60,
	AllowMinDifficultyBlocks: true,
	ForkHeight:               4032,
	ForkPowLimit:             compactTarget(0x1d00ffff),
	ForkPowLimitBits:         0x1d00ffff,
}

var RegNetParams = Params{
	Name:                     "regnet",
	PowLimit:                 compactTarget(0x207fffff),
	PowLimitBits:             0x207fffff,
	TargetSpacing:            600,
	TargetTimespan:           14 * 24 * 60 * 60,
	AllowMinDifficultyBlocks: true,
	NoRetargeting:            true,
	ForkHeight:               1008,
	ForkPowLimit:             compactTarget(0x207fffff),
	ForkPowLimitBits:         0x207fffff,
}

var networksByName = map[string]*Params{
	MainNetParams.Name: &MainNetParams,
	TestNetParams.Name: &TestNetParams,
	RegNetParams.Name:  &RegNetParams,
}

// NetworkParams returns the consensus params for a named network.
func NetworkParams(name string) (*Params, bool) {
	p, ok := networksByName[name]
	return p, ok
}
