// Package mixer implements the keyed XOR and parity-rotation transform over an
// 8 byte state, together with its exact inverse.
//
// The state is viewed as two little-endian 32-bit words. Step i mixes byte i
// with key byte i, stores the result in place and then rotates both words by
// the low five bits of that byte: right when it is even, left when it is odd.
package mixer

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Size is the width in bytes of the state, key and secret.
const Size = 8

// Block is an 8 byte state, key, target or secret.
type Block [Size]byte

// ParseBlock decodes a 16 digit hex string.
func ParseBlock(s string) (Block, error) {
	var b Block
	raw, err := hex.DecodeString(s)
	if err != nil {
		return b, fmt.Errorf("parse block %q: %w", s, err)
	}
	if len(raw) != Size {
		return b, fmt.Errorf("parse block %q: got %d bytes, want %d", s, len(raw), Size)
	}
	copy(b[:], raw)
	return b, nil
}

func (b Block) String() string {
	return hex.EncodeToString(b[:])
}

// LogValue renders the block as hex in every slog handler.
func (b Block) LogValue() slog.Value {
	return slog.StringValue(b.String())
}

func (b Block) words() (uint32, uint32) {
	return binary.LittleEndian.Uint32(b[0:4]), binary.LittleEndian.Uint32(b[4:8])
}

func fromWords(w0, w1 uint32) Block {
	var b Block
	binary.LittleEndian.PutUint32(b[0:4], w0)
	binary.LittleEndian.PutUint32(b[4:8], w1)
	return b
}
