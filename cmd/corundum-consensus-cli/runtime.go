package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"

	"corundum.dev/node/consensus"
	"corundum.dev/node/node"
)

type Request struct {
	Op        string   `json:"op"`
	Bits      string   `json:"bits,omitempty"`
	TargetHex string   `json:"target,omitempty"`
	HashHex   string   `json:"hash,omitempty"`
	Network   string   `json:"network,omitempty"`
	Headers   []string `json:"headers,omitempty"`
	Timestamp uint64   `json:"timestamp,omitempty"`
}

type Response struct {
	Ok        bool   `json:"ok"`
	Err       string `json:"err,omitempty"`
	Bits      string `json:"bits,omitempty"`
	TargetHex string `json:"target,omitempty"`
	Negative  bool   `json:"negative,omitempty"`
	Overflow  bool   `json:"overflow,omitempty"`
	Valid     bool   `json:"valid"`
}

func handleRequest(req Request) Response {
	switch req.Op {
	case "decode_compact":
		bits, err := parseBits(req.Bits)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		target, negative, overflow := consensus.DecodeCompact(bits)
		var buf [32]byte
		if !overflow {
			target.FillBytes(buf[:])
		}
		return Response{
			Ok:        true,
			TargetHex: hex.EncodeToString(buf[:]),
			Negative:  negative,
			Overflow:  overflow,
		}

	case "encode_target":
		target, err := parseTarget(req.TargetHex)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		return Response{
			Ok:   true,
			Bits: fmt.Sprintf("%08x", consensus.EncodeCompact(target)),
		}

	case "check_pow":
		params, err := lookupNetwork(req.Network)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		bits, err := parseBits(req.Bits)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		hash, err := parseHash(req.HashHex)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		return Response{
			Ok:    true,
			Valid: consensus.CheckProofOfWork(hash, bits, params),
		}

	case "next_work":
		params, err := lookupNetwork(req.Network)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		index := node.NewBlockIndex()
		for i, hdrHex := range req.Headers {
			raw, err := hex.DecodeString(hdrHex)
			if err != nil {
				return Response{Ok: false, Err: fmt.Sprintf("header %d: bad hex", i)}
			}
			hdr, err := consensus.ParseBlockHeaderBytes(raw)
			if err != nil {
				return Response{Ok: false, Err: fmt.Sprintf("header %d: %v", i, err)}
			}
			if _, err := index.Append(hdr); err != nil {
				return Response{Ok: false, Err: fmt.Sprintf("header %d: %v", i, err)}
			}
		}
		bits, err := index.NextWorkRequired(req.Timestamp, params, nil)
		if err != nil {
			if werr, ok := err.(*consensus.WorkError); ok {
				return Response{Ok: false, Err: string(werr.Code)}
			}
			return Response{Ok: false, Err: err.Error()}
		}
		return Response{Ok: true, Bits: fmt.Sprintf("%08x", bits)}

	default:
		return Response{Ok: false, Err: fmt.Sprintf("unknown op: %s", req.Op)}
	}
}

func lookupNetwork(name string) (*consensus.Params, error) {
	if name == "" {
		name = "mainnet"
	}
	params, ok := consensus.NetworkParams(name)
	if !ok {
		return nil, fmt.Errorf("unknown network: %s", name)
	}
	return params, nil
}

func parseBits(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad bits")
	}
	return uint32(v), nil
}

func parseTarget(s string) (*big.Int, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) == 0 || len(raw) > 32 {
		return nil, fmt.Errorf("bad target")
	}
	return new(big.Int).SetBytes(raw), nil
}

func parseHash(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return out, fmt.Errorf("bad hash")
	}
	copy(out[:], raw)
	return out, nil
}
