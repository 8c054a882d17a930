package wasmscan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/sys/unix"
)

// lz4FrameMagic is the little-endian LZ4 frame magic 0x184D2204.
var lz4FrameMagic = []byte{0x04, 0x22, 0x4D, 0x18}

// MaxModuleSize bounds the modules OpenReaderAt and Load read into memory and
// the decompressed size of LZ4 modules, including those found by Open.
const MaxModuleSize = 256 << 20

var ErrTooLarge = errors.New("module too large")

// File is a module blob loaded from disk or a stream.
type File struct {
	Data    []byte
	mmapped bool
}

// Open maps a module read-only and validates its header.
// If mmap is unavailable it falls back to ReadAt-based loading. LZ4 framed
// files are decompressed into memory. The returned file must be closed.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, formatErr(0, "unsupported file size %d", size64)
	}
	size := int(size64)

	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			if IsCompressed(data) {
				raw, derr := decompress(bytes.NewReader(data), MaxModuleSize)
				_ = unix.Munmap(data)
				if derr != nil {
					return nil, derr
				}
				return newFile(raw, false)
			}
			mf, perr := newFile(data, true)
			if perr != nil {
				_ = unix.Munmap(data)
				return nil, perr
			}
			return mf, nil
		}
	}

	return OpenReaderAt(f, size64)
}

// OpenReaderAt loads a module from a random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, formatErr(0, "unsupported file size %d", size)
	}
	if size > MaxModuleSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, size, MaxModuleSize)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(data))
}

// Load reads a whole module from r, decompressing an LZ4 frame if present.
func Load(r io.Reader) (*File, error) {
	return LoadLimit(r, MaxModuleSize)
}

// LoadLimit is Load with a cap of limit bytes on both the stream and the
// decompressed module. Exceeding it returns an error matching ErrTooLarge.
func LoadLimit(r io.Reader, limit int64) (*File, error) {
	data, err := readLimit(r, limit)
	if err != nil {
		return nil, err
	}
	if IsCompressed(data) {
		data, err = decompress(bytes.NewReader(data), limit)
		if err != nil {
			return nil, err
		}
	}
	return newFile(data, false)
}

// IsCompressed reports whether data starts with an LZ4 frame header.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, lz4FrameMagic)
}

// Compress wraps a module in an LZ4 frame.
func Compress(w io.Writer, module []byte) error {
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(module); err != nil {
		return fmt.Errorf("lz4: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("lz4: %w", err)
	}
	return nil
}

func decompress(r io.Reader, limit int64) ([]byte, error) {
	out, err := readLimit(lz4.NewReader(r), limit)
	if errors.Is(err, ErrTooLarge) {
		return nil, fmt.Errorf("lz4: decompressed %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	return out, nil
}

// readLimit reads r to EOF, failing once more than limit bytes arrive.
func readLimit(r io.Reader, limit int64) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, limit)
	}
	return out, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func newFile(data []byte, mmapped bool) (*File, error) {
	if err := checkHeader(data); err != nil {
		return nil, err
	}
	return &File{Data: data, mmapped: mmapped}, nil
}

// Version returns the header version word.
func (f *File) Version() uint32 {
	v, _ := HeaderVersion(f.Data)
	return v
}

func (f *File) Scan() ([]Segment, error) {
	return Scan(f.Data)
}

func (f *File) ScanAll() ([]RawSegment, error) {
	return ScanAll(f.Data)
}

// Close releases the mapping, if any. Sections must not be used afterwards.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.mmapped = false
	return err
}
