package consensus

import (
	"fmt"
	"math/big"
)

// postForkInterval is the retarget interval, in blocks, once the fork regime
// is active.
const postForkInterval = 72

// RetargetEvent describes one completed difficulty adjustment. Events carry
// no consensus meaning; they exist so callers can log or meter retargets
// without the schedule taking a logging dependency.
type RetargetEvent struct {
	Height          uint64
	RawTimespan     int64
	ClampedTimespan int64
	TargetTimespan  int64
	OldBits         uint32
	NewBits         uint32
}

// RetargetObserver receives RetargetEvents from CalcNextWorkRequired. A nil
// observer disables delivery. Observers must not assume any call ordering
// beyond the single validation thread invoking the schedule.
type RetargetObserver func(RetargetEvent)

// retargetEra carries the retarget constants of one difficulty regime. The
// schedule has exactly two: the original fixed-interval regime and the
// post-fork regime with a short interval and a tighter clamp. eraHeight is
// the height used for interval arithmetic, counted from the era's origin.
type retargetEra struct {
	interval       uint64
	eraHeight      uint64
	targetTimespan int64
	clampFactor    int64
	ceiling        *big.Int
}

func eraForHeight(height uint64, params *Params) retargetEra {
	if height > params.ForkHeight {
		return retargetEra{
			interval:       postForkInterval,
			eraHeight:      height - params.ForkHeight,
			targetTimespan: postForkInterval * params.TargetSpacing,
			clampFactor:    2,
			ceiling:        params.PowLimit,
		}
	}
	return retargetEra{
		interval:       params.AdjustmentInterval(),
		eraHeight:      height,
		targetTimespan: params.TargetTimespan,
		clampFactor:    4,
		ceiling:        params.PowLimit,
	}
}

// NextWorkRequired returns the compact difficulty target required of the
// candidate block at candidateHeight whose parent is prev. prev may be nil
// only for the genesis block. The returned error is always a *WorkError and
// indicates the caller violated a precondition (mismatched heights, missing
// ancestry); it is never a statement about the candidate block's validity.
func NextWorkRequired(
	prev ChainNode,
	candidateTime uint64,
	candidateHeight uint64,
	params *Params,
	observe RetargetObserver,
) (uint32, error) {
	if prev == nil {
		return params.PowLimitBits, nil
	}
	// The fork activates with the original ceiling for exactly one block,
	// then opens its own regime at the fork ceiling.
	if candidateHeight == params.ForkHeight {
		return params.PowLimitBits, nil
	}
	if candidateHeight == params.ForkHeight+1 {
		return params.ForkPowLimitBits, nil
	}

	era := eraForHeight(candidateHeight, params)

	if era.eraHeight%era.interval != 0 {
		if params.AllowMinDifficultyBlocks {
			// Stall relief: once block production has stalled past twice the
			// target spacing, a minimum-difficulty block is allowed.
			if candidateTime > prev.Timestamp()+uint64(2*params.TargetSpacing) {
				return params.PowLimitBits, nil
			}
			// Otherwise skip back past the run of minimum-difficulty blocks
			// to the last real difficulty. The boundary test uses the
			// standard interval in both eras, and compares encoded bits, not
			// decoded targets.
			node := prev
			stdInterval := params.AdjustmentInterval()
			for node.Parent() != nil &&
				node.Height()%stdInterval != 0 &&
				node.Bits() == params.PowLimitBits {
				node = node.Parent()
			}
			return node.Bits(), nil
		}
		return prev.Bits(), nil
	}

	// Retarget boundary: the just-completed window opens interval-1 blocks
	// behind prev.
	if prev.Height() < era.interval-1 {
		return 0, workerr(WORK_ERR_WINDOW_UNDERFLOW, fmt.Sprintf(
			"retarget at height %d needs window start below genesis (prev height %d, interval %d)",
			candidateHeight, prev.Height(), era.interval))
	}
	firstHeight := prev.Height() - (era.interval - 1)
	first := prev.Ancestor(firstHeight)
	if first == nil {
		return 0, workerr(WORK_ERR_ANCESTOR_MISSING, fmt.Sprintf(
			"ancestor at height %d unavailable from height %d", firstHeight, prev.Height()))
	}
	return CalcNextWorkRequired(
		prev.Bits(), prev.Height(), prev.Timestamp(), first.Timestamp(), params, observe,
	), nil
}

// CalcNextWorkRequired computes the retargeted compact difficulty for the
// block following the one described by prevBits/prevHeight/prevTime, where
// firstBlockTime is the timestamp of the first block of the just-completed
// adjustment window. The measured timespan is clamped into
// [expected/clampFactor, expected*clampFactor] for the active era before the
// target is scaled, and the result never exceeds the era ceiling.
//
// With NoRetargeting set the previous bits are returned unchanged.
func CalcNextWorkRequired(
	prevBits uint32,
	prevHeight uint64,
	prevTime uint64,
	firstBlockTime uint64,
	params *Params,
	observe RetargetObserver,
) uint32 {
	if params.NoRetargeting {
		return prevBits
	}

	era := eraForHeight(prevHeight+1, params)

	raw := int64(prevTime) - int64(firstBlockTime)
	actual := raw
	if actual < era.targetTimespan/era.clampFactor {
		actual = era.targetTimespan / era.clampFactor
	}
	if actual > era.targetTimespan*era.clampFactor {
		actual = era.targetTimespan * era.clampFactor
	}

	// Multiply before dividing so no precision is lost; big.Int keeps the
	// intermediate product exact well past 256 bits.
	oldTarget, _, _ := DecodeCompact(prevBits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(actual))
	newTarget.Quo(newTarget, big.NewInt(era.targetTimespan))
	if newTarget.Cmp(era.ceiling) > 0 {
		newTarget.Set(era.ceiling)
	}

	newBits := EncodeCompact(newTarget)
	if observe != nil {
		observe(RetargetEvent{
			Height:          prevHeight + 1,
			RawTimespan:     raw,
			ClampedTimespan: actual,
			TargetTimespan:  era.targetTimespan,
			OldBits:         prevBits,
			NewBits:         newBits,
		})
	}
	return newBits
}

// CheckProofOfWork reports whether hash (interpreted as a big-endian 256-bit
// integer) satisfies the target encoded in bits. Malformed encodings --
// negative, zero, overflowing, or above the network ceiling -- fail
// verification; they are ordinary invalid-block outcomes, not errors.
func CheckProofOfWork(hash [32]byte, bits uint32, params *Params) bool {
	target, negative, overflow := DecodeCompact(bits)
	if negative || overflow || target.Sign() == 0 || target.Cmp(params.PowLimit) > 0 {
		return false
	}
	return new(big.Int).SetBytes(hash[:]).Cmp(target) <= 0
}
