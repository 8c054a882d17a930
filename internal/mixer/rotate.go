package mixer

import "math/bits"

// RotL32 rotates v left by n mod 32 bits.
func RotL32(v uint32, n uint) uint32 {
	return bits.RotateLeft32(v, int(n%32))
}

// RotR32 rotates v right by n mod 32 bits.
func RotR32(v uint32, n uint) uint32 {
	return bits.RotateLeft32(v, -int(n%32))
}

// Direction is the way both state words are rotated after a store.
type Direction uint8

const (
	Right Direction = iota
	Left
)

// directionOf returns the rotation a mixed byte selects: even bytes rotate
// right, odd bytes rotate left.
func directionOf(x byte) Direction {
	if x&1 == 0 {
		return Right
	}
	return Left
}

func (d Direction) Inverse() Direction {
	if d == Right {
		return Left
	}
	return Right
}

func (d Direction) String() string {
	if d == Right {
		return "ROTR"
	}
	return "ROTL"
}

// shiftOf returns the rotation amount a mixed byte selects.
func shiftOf(x byte) uint {
	return uint(x & 31)
}

// rotate applies the same rotation to both words of b.
func rotate(b Block, d Direction, n uint) Block {
	w0, w1 := b.words()
	if d == Right {
		return fromWords(RotR32(w0, n), RotR32(w1, n))
	}
	return fromWords(RotL32(w0, n), RotL32(w1, n))
}
