package wasmscan

import (
	"errors"
	"testing"
)

func TestReadULEB128(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want uint64
		next int
	}{
		{name: "zero", in: []byte{0x00}, want: 0, next: 1},
		{name: "single byte max", in: []byte{0x7f}, want: 127, next: 1},
		{name: "two bytes", in: []byte{0x80, 0x01}, want: 128, next: 2},
		{name: "canonical vector", in: []byte{0xE5, 0x8E, 0x26}, want: 624485, next: 3},
		{name: "trailing bytes ignored", in: []byte{0x08, 0xff, 0xff}, want: 8, next: 1},
		{name: "redundant continuation", in: []byte{0x81, 0x80, 0x00}, want: 1, next: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, next, err := ReadULEB128(tt.in, 0)
			if err != nil {
				t.Fatalf("ReadULEB128 returned error: %v", err)
			}
			if got != tt.want || next != tt.next {
				t.Fatalf("got (%d, %d) want (%d, %d)", got, next, tt.want, tt.next)
			}
		})
	}
}

func TestReadULEB128AtOffset(t *testing.T) {
	t.Parallel()

	buf := []byte{0xaa, 0xbb, 0xE5, 0x8E, 0x26, 0x05}
	v, next, err := ReadULEB128(buf, 2)
	if err != nil {
		t.Fatalf("ReadULEB128: %v", err)
	}
	if v != 624485 || next != 5 {
		t.Fatalf("got (%d, %d) want (624485, 5)", v, next)
	}
	v, next, err = ReadULEB128(buf, next)
	if err != nil {
		t.Fatalf("ReadULEB128 second value: %v", err)
	}
	if v != 5 || next != 6 {
		t.Fatalf("got (%d, %d) want (5, 6)", v, next)
	}
}

func TestReadULEB128Truncated(t *testing.T) {
	t.Parallel()

	for _, in := range [][]byte{nil, {0x80}, {0xE5, 0x8E}} {
		_, _, err := ReadULEB128(in, 0)
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("input %x: expected ErrFormat, got %v", in, err)
		}
	}
}

func TestAppendULEB128(t *testing.T) {
	t.Parallel()

	for _, v := range []uint64{0, 1, 127, 128, 300, 624485, 1<<32 - 1, 1<<63 + 5} {
		enc := AppendULEB128(nil, v)
		got, next, err := ReadULEB128(enc, 0)
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if got != v || next != len(enc) {
			t.Fatalf("value %d: decoded (%d, %d) from %x", v, got, next, enc)
		}
	}
	if enc := AppendULEB128(nil, 624485); string(enc) != "\xE5\x8E\x26" {
		t.Fatalf("unexpected encoding of 624485: %x", enc)
	}
}
