package consensus

import "math/big"

// DecodeCompact expands the legacy 32-bit compact target encoding: the high
// byte is a base-256 exponent, the low 3 bytes are the mantissa, and bit
// 0x00800000 marks a negative number. The expanded value is
// mantissa * 256^(exponent-3).
//
// negative and overflow report encodings that no valid target may use: a set
// sign bit, or a magnitude that does not fit in 256 bits. The returned value
// is still the expanded mantissa/exponent interpretation so callers can
// inspect it, but consumers must reject the encoding when either flag is set.
func DecodeCompact(bits uint32) (target *big.Int, negative bool, overflow bool) {
	size := bits >> 24
	mantissa := bits & 0x007fffff
	if size <= 3 {
		mantissa >>= 8 * (3 - size)
		target = new(big.Int).SetUint64(uint64(mantissa))
	} else {
		target = new(big.Int).SetUint64(uint64(mantissa))
		target.Lsh(target, uint(8*(size-3)))
	}
	negative = mantissa != 0 && bits&0x00800000 != 0
	overflow = mantissa != 0 && (size > 34 ||
		(mantissa > 0xff && size > 33) ||
		(mantissa > 0xffff && size > 32))
	return target, negative, overflow
}

// EncodeCompact packs target into the compact encoding, choosing the minimal
// byte length. If the leading mantissa byte would collide with the sign bit
// the mantissa is shifted down one byte and the exponent bumped, so positive
// values always round-trip: DecodeCompact(EncodeCompact(v)) == (v, false,
// false) for every non-negative v below 2^256.
func EncodeCompact(target *big.Int) uint32 {
	abs := new(big.Int).Abs(target)
	size := uint32(len(abs.Bytes()))
	var compact uint32
	if size <= 3 {
		compact = uint32(abs.Uint64() << uint(8*(3-size)))
	} else {
		tmp := new(big.Int).Rsh(abs, uint(8*(size-3)))
		compact = uint32(tmp.Uint64())
	}
	if compact&0x00800000 != 0 {
		compact >>= 8
		size++
	}
	compact |= size << 24
	if target.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}
