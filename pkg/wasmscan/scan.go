package wasmscan

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"math"
	"slices"
)

func checkHeader(blob []byte) error {
	if len(blob) < headerSize {
		return formatErr(0, "short header: %d bytes", len(blob))
	}
	if string(blob[:4]) != Magic {
		return formatErr(0, "invalid magic %x", blob[:4])
	}
	return nil
}

// HeaderVersion returns the version word following the magic.
func HeaderVersion(blob []byte) (uint32, error) {
	if err := checkHeader(blob); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(blob[4:headerSize]), nil
}

// Sections walks the section stream that follows the 8 byte header.
// Payloads alias blob.
func Sections(blob []byte) ([]Section, error) {
	if err := checkHeader(blob); err != nil {
		return nil, err
	}

	var out []Section
	p := headerSize
	for p < len(blob) {
		start := p
		id := blob[p]
		size, next, err := ReadULEB128(blob, p+1)
		if err != nil {
			return nil, err
		}
		remain := len(blob) - next
		if size > uint64(remain) {
			return nil, formatErr(start, "section %d declares %d bytes, %d remain", id, size, remain)
		}
		end := next + int(size)
		out = append(out, Section{
			ID:      id,
			Offset:  next,
			Payload: blob[next:end:end],
		})
		p = end
	}
	return out, nil
}

// ScanAll returns every active data segment in stream order, whatever its size.
// Segment data is copied out of blob.
func ScanAll(blob []byte) ([]RawSegment, error) {
	sections, err := Sections(blob)
	if err != nil {
		return nil, err
	}
	var segs []RawSegment
	for i := range sections {
		if sections[i].ID != SectionIDData {
			continue
		}
		found, err := dataSegments(&sections[i])
		if err != nil {
			return nil, err
		}
		segs = append(segs, found...)
	}
	return segs, nil
}

// Scan returns the BlockSize segments of blob ordered by load offset.
// Segments sharing an offset keep their stream order.
func Scan(blob []byte) ([]Segment, error) {
	raw, err := ScanAll(blob)
	if err != nil {
		return nil, err
	}
	return Blocks(raw), nil
}

// Blocks keeps the BlockSize segments of raw and orders them as Scan does.
func Blocks(raw []RawSegment) []Segment {
	segs := make([]Segment, 0, len(raw))
	for _, r := range raw {
		if len(r.Data) != BlockSize {
			continue
		}
		s := Segment{Offset: r.Offset}
		copy(s.Data[:], r.Data)
		segs = append(segs, s)
	}
	slices.SortStableFunc(segs, func(a, b Segment) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	return segs
}

// dataSegments decodes the vector of segments in a data section payload:
//
//	count:varint { mode:0x00 0x41 offset:varint 0x0B size:varint data }
func dataSegments(sec *Section) ([]RawSegment, error) {
	payload := sec.Payload
	base := sec.Offset

	count, q, err := ReadULEB128(payload, 0)
	if err != nil {
		return nil, rebase(err, base)
	}

	segs := make([]RawSegment, 0, min(count, 64))
	for i := range count {
		if q >= len(payload) {
			return nil, formatErr(base+q, "segment %d: truncated header", i)
		}
		if mode := payload[q]; mode != segmentActive {
			return nil, formatErr(base+q, "segment %d: unsupported mode %d", i, mode)
		}
		q++

		if q >= len(payload) || payload[q] != opI32Const {
			return nil, formatErr(base+q, "segment %d: offset expression must start with i32.const", i)
		}
		q++
		off, next, err := ReadULEB128(payload, q)
		if err != nil {
			return nil, rebase(err, base)
		}
		if off > math.MaxUint32 {
			return nil, formatErr(base+q, "segment %d: offset %d exceeds 32 bits", i, off)
		}
		q = next
		if q >= len(payload) || payload[q] != opEnd {
			return nil, formatErr(base+q, "segment %d: offset expression must end with 0x0b", i)
		}
		q++

		size, next, err := ReadULEB128(payload, q)
		if err != nil {
			return nil, rebase(err, base)
		}
		q = next
		if size > uint64(len(payload)-q) {
			return nil, formatErr(base+q, "segment %d: %d data bytes overrun section", i, size)
		}
		end := q + int(size)
		segs = append(segs, RawSegment{
			Offset: uint32(off),
			Data:   bytes.Clone(payload[q:end]),
		})
		q = end
	}
	return segs, nil
}
