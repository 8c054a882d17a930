package wasmscan

// ReadULEB128 decodes an unsigned LEB128 integer starting at buf[off] and
// returns it together with the offset of the first byte after it.
// Groups past the 64th bit are discarded rather than rejected.
func ReadULEB128(buf []byte, off int) (uint64, int, error) {
	var (
		v     uint64
		shift uint
	)
	p := off
	for {
		if p < 0 || p >= len(buf) {
			return 0, p, formatErr(off, "truncated varint")
		}
		b := buf[p]
		p++
		if shift < 64 {
			v |= uint64(b&0x7f) << shift
		}
		if b&0x80 == 0 {
			return v, p, nil
		}
		shift += 7
	}
}

// AppendULEB128 appends the unsigned LEB128 encoding of v to dst.
func AppendULEB128(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}
