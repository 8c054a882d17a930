package wasmscan

import (
	"encoding/binary"
	"os"
)

// Builder assembles a module from raw sections. It only knows how to encode
// data sections; every other section is written as an opaque payload.
type Builder struct {
	Version  uint32
	sections []Section
}

func NewBuilder() *Builder {
	return &Builder{Version: 1}
}

// AddSection appends a section with the given id and payload.
func (b *Builder) AddSection(id SectionID, payload []byte) *Builder {
	b.sections = append(b.sections, Section{ID: id, Payload: payload})
	return b
}

// AddMemory appends a memory section declaring one memory of at least pages.
func (b *Builder) AddMemory(pages uint32) *Builder {
	payload := []byte{0x01, 0x00}
	payload = AppendULEB128(payload, uint64(pages))
	return b.AddSection(SectionIDMemory, payload)
}

// AddData appends a data section holding segs as active i32.const segments.
func (b *Builder) AddData(segs ...RawSegment) *Builder {
	return b.AddSection(SectionIDData, EncodeDataSection(segs))
}

// Bytes encodes the header followed by every section in insertion order.
func (b *Builder) Bytes() []byte {
	out := make([]byte, 0, 64)
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint32(out, b.Version)
	for _, s := range b.sections {
		out = append(out, s.ID)
		out = AppendULEB128(out, uint64(len(s.Payload)))
		out = append(out, s.Payload...)
	}
	return out
}

// WriteFile writes the encoded module to path.
func (b *Builder) WriteFile(path string) error {
	return os.WriteFile(path, b.Bytes(), 0o644)
}

// EncodeDataSection encodes a data section payload for segs.
// Offsets are written unsigned, the way Scan reads them back.
func EncodeDataSection(segs []RawSegment) []byte {
	out := AppendULEB128(nil, uint64(len(segs)))
	for _, s := range segs {
		out = append(out, segmentActive, opI32Const)
		out = AppendULEB128(out, uint64(s.Offset))
		out = append(out, opEnd)
		out = AppendULEB128(out, uint64(len(s.Data)))
		out = append(out, s.Data...)
	}
	return out
}
