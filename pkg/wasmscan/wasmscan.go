// Package wasmscan locates initialized data segments inside a WebAssembly
// module without decoding the rest of it.
//
// Only the subset of the binary format needed to walk the section stream and
// read active, constant-offset data segments is understood. Code, type and
// import sections are skipped as opaque payloads.
package wasmscan

// Binary format constants.
const (
	// Magic is the 4 byte preamble "\0asm".
	Magic = "\x00asm"

	headerSize = 8

	// BlockSize is the width of the segments Scan retains.
	BlockSize = 8
)

type SectionID = byte

const (
	SectionIDMemory SectionID = 5
	SectionIDData   SectionID = 11
)

// Opcodes and segment modes accepted in a data segment header.
const (
	segmentActive byte = 0x00
	opI32Const    byte = 0x41
	opEnd         byte = 0x0B
)

// Section is one record of the section stream. Payload aliases the blob.
type Section struct {
	ID      SectionID
	Offset  int
	Payload []byte
}

// End returns the blob offset just past the section payload.
func (s *Section) End() int {
	return s.Offset + len(s.Payload)
}

// RawSegment is an active data segment of any size, in stream order.
type RawSegment struct {
	Offset uint32
	Data   []byte
}

// Segment is an active data segment of exactly BlockSize bytes.
type Segment struct {
	Offset uint32
	Data   [BlockSize]byte
}
