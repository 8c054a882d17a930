package mixer

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"
)

var (
	challengeKey    = Block{0xdc, 0x87, 0xdb, 0x6b, 0x7c, 0xfd, 0x6d, 0x20}
	challengeTarget = Block{0x8b, 0xc9, 0xda, 0x58, 0xf2, 0xbf, 0x1e, 0xa1}
	challengeSecret = Block{'p', 'u', 'r', 'e', 'W', 'A', 'S', 'M'}
)

func randomBlock(r *rand.Rand) Block {
	var b Block
	binary.LittleEndian.PutUint64(b[:], r.Uint64())
	return b
}

func TestForwardChallenge(t *testing.T) {
	t.Parallel()

	if got := Forward(challengeSecret, challengeKey); got != challengeTarget {
		t.Fatalf("Forward: got %s want %s", got, challengeTarget)
	}
	if !Verify(challengeSecret, challengeKey, challengeTarget) {
		t.Fatalf("Verify rejected the known secret")
	}
	wrong := challengeSecret
	wrong[0] ^= 0x20
	if Verify(wrong, challengeKey, challengeTarget) {
		t.Fatalf("Verify accepted %q", wrong[:])
	}
}

func TestForwardTraceMatchesForward(t *testing.T) {
	t.Parallel()

	final, steps := ForwardTrace(challengeSecret, challengeKey)
	if final != challengeTarget {
		t.Fatalf("ForwardTrace final: got %s want %s", final, challengeTarget)
	}
	if len(steps) != Size {
		t.Fatalf("got %d steps want %d", len(steps), Size)
	}
	state := challengeSecret
	for i, s := range steps {
		if s.Index != i || s.Before != state {
			t.Fatalf("step %d: index %d before %s, want before %s", i, s.Index, s.Before, state)
		}
		if s.Mixed != s.Input^s.Key || s.Key != challengeKey[i] {
			t.Fatalf("step %d: mixed %#x from input %#x key %#x", i, s.Mixed, s.Input, s.Key)
		}
		if s.Shift != uint(s.Mixed&31) || s.Dir != directionOf(s.Mixed) {
			t.Fatalf("step %d: shift %d dir %s for mixed %#x", i, s.Shift, s.Dir, s.Mixed)
		}
		state = s.After
	}
}

// windowForward stores each mixed byte by rewriting the low byte of the
// unaligned little-endian word at offset i of a 16 byte memory holding the
// state followed by the key.
func windowForward(secret, key Block) Block {
	var mem [2 * Size]byte
	copy(mem[:Size], secret[:])
	copy(mem[Size:], key[:])
	for i := range Size {
		x := mem[i] ^ mem[Size+i]
		w := binary.LittleEndian.Uint32(mem[i : i+4])
		w = w&0xffffff00 | uint32(x)
		binary.LittleEndian.PutUint32(mem[i:i+4], w)

		n := uint(x & 31)
		w0 := binary.LittleEndian.Uint32(mem[0:4])
		w1 := binary.LittleEndian.Uint32(mem[4:8])
		if x&1 == 0 {
			w0, w1 = RotR32(w0, n), RotR32(w1, n)
		} else {
			w0, w1 = RotL32(w0, n), RotL32(w1, n)
		}
		binary.LittleEndian.PutUint32(mem[0:4], w0)
		binary.LittleEndian.PutUint32(mem[4:8], w1)
	}
	var out Block
	copy(out[:], mem[:Size])
	return out
}

func TestForwardMatchesWindowStore(t *testing.T) {
	t.Parallel()

	if got := windowForward(challengeSecret, challengeKey); got != challengeTarget {
		t.Fatalf("window model: got %s want %s", got, challengeTarget)
	}
	r := rand.New(rand.NewPCG(7, 11))
	for range 2000 {
		secret, key := randomBlock(r), randomBlock(r)
		if got, want := Forward(secret, key), windowForward(secret, key); got != want {
			t.Fatalf("secret %s key %s: Forward %s window %s", secret, key, got, want)
		}
	}
}

func TestBlockLogsAsHex(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("block", "key", challengeKey)
	if !strings.Contains(buf.String(), `"key":"dc87db6b7cfd6d20"`) {
		t.Fatalf("expected hex block in output, got: %s", buf.String())
	}
}
