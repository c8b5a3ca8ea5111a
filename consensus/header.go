package consensus

import (
	"encoding/binary"

	"github.com/minio/sha256-simd"
)

// BlockHeaderBytesLen is the canonical encoded header size: version (4) +
// prev hash (32) + merkle root (32) + timestamp (8) + bits (4) + nonce (4).
const BlockHeaderBytesLen = 84

type BlockHeader struct {
	Version       uint32
	PrevBlockHash [32]byte
	MerkleRoot    [32]byte
	Timestamp     uint64
	Bits          uint32
	Nonce         uint32
}

// BlockHeaderBytes returns the canonical 84-byte little-endian encoding.
func BlockHeaderBytes(h BlockHeader) []byte {
	out := make([]byte, BlockHeaderBytesLen)
	binary.LittleEndian.PutUint32(out[0:4], h.Version)
	copy(out[4:36], h.PrevBlockHash[:])
	copy(out[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint64(out[68:76], h.Timestamp)
	binary.LittleEndian.PutUint32(out[76:80], h.Bits)
	binary.LittleEndian.PutUint32(out[80:84], h.Nonce)
	return out
}

// ParseBlockHeaderBytes parses a canonical header encoding and rejects
// truncated or oversized input.
func ParseBlockHeaderBytes(b []byte) (BlockHeader, error) {
	if len(b) != BlockHeaderBytesLen {
		return BlockHeader{}, workerr(HEADER_ERR_PARSE, "bad header length")
	}
	var h BlockHeader
	h.Version = binary.LittleEndian.Uint32(b[0:4])
	copy(h.PrevBlockHash[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.Timestamp = binary.LittleEndian.Uint64(b[68:76])
	h.Bits = binary.LittleEndian.Uint32(b[76:80])
	h.Nonce = binary.LittleEndian.Uint32(b[80:84])
	return h, nil
}

// BlockHeaderHash returns the canonical block header hash: double SHA-256
// over the 84-byte encoding.
func BlockHeaderHash(h BlockHeader) [32]byte {
	first := sha256.Sum256(BlockHeaderBytes(h))
	return sha256.Sum256(first[:])
}
