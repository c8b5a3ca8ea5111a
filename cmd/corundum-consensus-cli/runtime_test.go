package main

import (
	"encoding/hex"
	"strings"
	"testing"

	"corundum.dev/node/consensus"
)

func TestHandleRequest_DecodeCompact(t *testing.T) {
	resp := handleRequest(Request{Op: "decode_compact", Bits: "1d00ffff"})
	if !resp.Ok {
		t.Fatalf("decode failed: %s", resp.Err)
	}
	if resp.Negative || resp.Overflow {
		t.Fatalf("unexpected flags: %+v", resp)
	}
	want := strings.Repeat("0", 8) + "ffff" + strings.Repeat("0", 52)
	if resp.TargetHex != want {
		t.Fatalf("target: got %s want %s", resp.TargetHex, want)
	}
}

func TestHandleRequest_EncodeTarget(t *testing.T) {
	resp := handleRequest(Request{
		Op:        "encode_target",
		TargetHex: strings.Repeat("0", 8) + "ffff" + strings.Repeat("0", 52),
	})
	if !resp.Ok {
		t.Fatalf("encode failed: %s", resp.Err)
	}
	if resp.Bits != "1d00ffff" {
		t.Fatalf("bits: got %s", resp.Bits)
	}
}

func TestHandleRequest_CheckPow(t *testing.T) {
	// A zero hash satisfies any positive in-range target.
	resp := handleRequest(Request{
		Op:      "check_pow",
		Bits:    "1d00ffff",
		HashHex: strings.Repeat("0", 64),
	})
	if !resp.Ok || !resp.Valid {
		t.Fatalf("zero hash rejected: %+v", resp)
	}

	// An all-ones hash cannot.
	resp = handleRequest(Request{
		Op:      "check_pow",
		Bits:    "1d00ffff",
		HashHex: strings.Repeat("f", 64),
	})
	if !resp.Ok || resp.Valid {
		t.Fatalf("max hash accepted: %+v", resp)
	}
}

func TestHandleRequest_NextWork(t *testing.T) {
	// Two linked mainnet headers: height 2 is mid-interval, so the previous
	// bits are reused.
	genesis := consensus.BlockHeader{Version: 1, Timestamp: 1000, Bits: 0x1d00ffff}
	second := consensus.BlockHeader{
		Version:       1,
		PrevBlockHash: consensus.BlockHeaderHash(genesis),
		Timestamp:     1600,
		Bits:          0x1d00ffff,
	}
	resp := handleRequest(Request{
		Op:      "next_work",
		Network: "mainnet",
		Headers: []string{
			hex.EncodeToString(consensus.BlockHeaderBytes(genesis)),
			hex.EncodeToString(consensus.BlockHeaderBytes(second)),
		},
		Timestamp: 2200,
	})
	if !resp.Ok {
		t.Fatalf("next_work failed: %s", resp.Err)
	}
	if resp.Bits != "1d00ffff" {
		t.Fatalf("bits: got %s", resp.Bits)
	}
}

func TestHandleRequest_UnknownOp(t *testing.T) {
	resp := handleRequest(Request{Op: "mine"})
	if resp.Ok {
		t.Fatalf("unknown op succeeded")
	}
}
