package recovery

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/wasmrev/internal/logger"
	"github.com/samcharles93/wasmrev/internal/mixer"
	"github.com/samcharles93/wasmrev/pkg/wasmscan"
)

var (
	testKey    = []byte{0xdc, 0x87, 0xdb, 0x6b, 0x7c, 0xfd, 0x6d, 0x20}
	testTarget = []byte{0x8b, 0xc9, 0xda, 0x58, 0xf2, 0xbf, 0x1e, 0xa1}
)

func challenge(extra ...wasmscan.RawSegment) []byte {
	segs := append([]wasmscan.RawSegment{
		{Offset: 16, Data: testTarget},
		{Offset: 8, Data: testKey},
	}, extra...)
	return wasmscan.NewBuilder().AddMemory(1).AddData(segs...).Bytes()
}

func capturingContext(buf *bytes.Buffer) context.Context {
	return logger.WithContext(context.Background(), logger.JSON(buf, slog.LevelDebug))
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	res, err := Recover(capturingContext(&logs), challenge(wasmscan.RawSegment{Offset: 0, Data: []byte("hint")}))
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if res.Text() != "pureWASM" {
		t.Fatalf("secret: got %q want pureWASM", res.Text())
	}
	if res.Hex() != "707572655741534d" {
		t.Fatalf("hex: got %s", res.Hex())
	}
	if !res.Verified {
		t.Fatalf("expected verified result")
	}
	if res.KeyOffset != 8 || res.TargetOffset != 16 {
		t.Fatalf("offsets: got key=%d target=%d", res.KeyOffset, res.TargetOffset)
	}
	if got := res.Flag(""); got != "SHLK{pureWASM}" {
		t.Fatalf("flag: got %q", got)
	}
	if got := res.Flag("CTF"); got != "CTF{pureWASM}" {
		t.Fatalf("flag with prefix: got %q", got)
	}
	if len(res.Steps) != mixer.Size || res.Steps[0].Index != mixer.Size-1 {
		t.Fatalf("unexpected steps: %+v", res.Steps)
	}
	for _, want := range []string{`"key":"dc87db6b7cfd6d20"`, `"secret":"707572655741534d"`} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("expected %s in logs, got: %s", want, logs.String())
		}
	}
}

func TestRecoverInsufficientData(t *testing.T) {
	t.Parallel()

	blob := wasmscan.NewBuilder().AddData(
		wasmscan.RawSegment{Offset: 8, Data: testKey},
		wasmscan.RawSegment{Offset: 0, Data: []byte{1, 2, 3, 4}},
	).Bytes()

	_, err := Recover(context.Background(), blob)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	var ide *InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected *InsufficientDataError, got %T", err)
	}
	if len(ide.Blocks) != 1 || ide.Blocks[0].Offset != 8 {
		t.Fatalf("unexpected blocks: %+v", ide.Blocks)
	}
	if len(ide.Segments) != 2 {
		t.Fatalf("unexpected segments: %+v", ide.Segments)
	}
}

func TestRecoverFormatError(t *testing.T) {
	t.Parallel()

	blob := challenge()
	_, err := Recover(context.Background(), blob[:len(blob)-3])
	if !errors.Is(err, wasmscan.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestRecoverCorruptedTarget(t *testing.T) {
	t.Parallel()

	corrupt := bytes.Clone(testTarget)
	corrupt[0] ^= 0xff
	blob := wasmscan.NewBuilder().AddData(
		wasmscan.RawSegment{Offset: 8, Data: testKey},
		wasmscan.RawSegment{Offset: 16, Data: corrupt},
	).Bytes()

	res, err := Recover(context.Background(), blob)
	if !errors.Is(err, mixer.ErrInversion) {
		t.Fatalf("expected ErrInversion, got res=%+v err=%v", res, err)
	}
	if res != nil {
		t.Fatalf("no partial result expected")
	}
}

func TestRecoverFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := filepath.Join(dir, "encode.wasm")
	if err := os.WriteFile(plain, challenge(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var packed bytes.Buffer
	if err := wasmscan.Compress(&packed, challenge()); err != nil {
		t.Fatalf("compress: %v", err)
	}
	compressed := filepath.Join(dir, "encode.wasm.lz4")
	if err := os.WriteFile(compressed, packed.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, path := range []string{plain, compressed} {
		res, err := RecoverFile(context.Background(), path)
		if err != nil {
			t.Fatalf("%s: %v", filepath.Base(path), err)
		}
		if res.Text() != "pureWASM" {
			t.Fatalf("%s: got %q", filepath.Base(path), res.Text())
		}
	}

	if _, err := RecoverFile(context.Background(), filepath.Join(dir, "missing.wasm")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestSolve(t *testing.T) {
	t.Parallel()

	key, _ := mixer.ParseBlock("dc87db6b7cfd6d20")
	target, _ := mixer.ParseBlock("8bc9da58f2bf1ea1")
	res, err := Solve(context.Background(), key, target)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Text() != "pureWASM" || res.KeyOffset != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestReportJSON(t *testing.T) {
	t.Parallel()

	res, err := Recover(context.Background(), challenge())
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	out, err := res.Report("", true).MarshalIndent()
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	for _, want := range []string{
		`"secret": "pureWASM"`,
		`"secret_hex": "707572655741534d"`,
		`"flag": "SHLK{pureWASM}"`,
		`"key": "dc87db6b7cfd6d20"`,
		`"target_offset": 16`,
		`"verified": true`,
		`"steps": [`,
	} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("expected %s in report:\n%s", want, out)
		}
	}
	if rep := res.Report("", false); rep.Steps != nil {
		t.Fatalf("steps should be omitted")
	}
}

func TestLatin1AndPrintable(t *testing.T) {
	t.Parallel()

	if got := Latin1([]byte{'c', 'a', 'f', 0xe9}); got != "café" {
		t.Fatalf("Latin1: got %q", got)
	}
	if got := Printable([]byte{'o', 'k', 0x00, 0xe9, '!'}); got != "ok..!" {
		t.Fatalf("Printable: got %q", got)
	}
}
