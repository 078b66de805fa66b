package model

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Inner call wire format: 1 tag byte, then the variant body. The service
// only validates the framing; the bytes travel to the engine untouched.
const (
	CallTagTransfer byte = 0x00

	callRecipientLen = 32
	transferCallLen  = 1 + callRecipientLen + 8
)

// Call is the decoded form of an inner call.
type Call struct {
	Tag       byte
	Recipient [callRecipientLen]byte
	Amount    uint64
}

// DecodeCall parses and validates inner call bytes.
func DecodeCall(raw []byte) (*Call, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty call")
	}
	switch raw[0] {
	case CallTagTransfer:
		if len(raw) != transferCallLen {
			return nil, fmt.Errorf("transfer call must be %d bytes, got %d", transferCallLen, len(raw))
		}
		call := &Call{Tag: CallTagTransfer}
		copy(call.Recipient[:], raw[1:1+callRecipientLen])
		call.Amount = binary.BigEndian.Uint64(raw[1+callRecipientLen:])
		return call, nil
	default:
		return nil, fmt.Errorf("unknown call tag 0x%02x", raw[0])
	}
}

// Encode serializes the call back to its wire form.
func (c *Call) Encode() []byte {
	raw := make([]byte, transferCallLen)
	raw[0] = c.Tag
	copy(raw[1:], c.Recipient[:])
	binary.BigEndian.PutUint64(raw[1+callRecipientLen:], c.Amount)
	return raw
}

// BuildTransferCall constructs a transfer inner call from a hex recipient
// (with or without 0x prefix) and an amount.
func BuildTransferCall(to string, amount uint64) (*Call, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(to, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q", to)
	}
	if len(raw) != callRecipientLen {
		return nil, fmt.Errorf("recipient must be %d bytes, got %d", callRecipientLen, len(raw))
	}

	call := &Call{Tag: CallTagTransfer, Amount: amount}
	copy(call.Recipient[:], raw)
	return call, nil
}
