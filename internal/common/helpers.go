package common

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const auxKeyLen = 32

// BlockSchedule computes the future block heights at which a new wallet is
// valid: validity entries starting at current+2 (the +2 offset leaves room
// for the wallet to activate on chain).
// Example: BlockSchedule(100, 5) = [102, 103, 104, 105, 106]
func BlockSchedule(current uint64, validity uint32) []uint64 {
	schedule := make([]uint64, 0, validity)
	for i := uint64(0); i < uint64(validity); i++ {
		schedule = append(schedule, current+2+i)
	}
	return schedule
}

// DecodeRoundPubkey decodes hex round public key material, with or without a
// 0x prefix.
func DecodeRoundPubkey(pubkey string) ([]byte, error) {
	trimmed := strings.TrimPrefix(pubkey, "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("wrong input %q", pubkey)
	}
	return raw, nil
}

// ParseAuxKey converts a string of comma-separated integers to the fixed-size
// auxiliary key array. This is the format the AUX_KEY env var uses.
func ParseAuxKey(input string) ([auxKeyLen]byte, error) {
	var key [auxKeyLen]byte

	parts := strings.Split(input, ",")
	if len(parts) != auxKeyLen {
		return key, fmt.Errorf("aux key must have %d bytes, got %d", auxKeyLen, len(parts))
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return key, fmt.Errorf("invalid integer %q in aux key: %w", p, err)
		}
		key[i] = byte(n)
	}
	return key, nil
}
