// Package recovery ties the data segment scanner to the inverter: it picks
// the key and target blocks out of a module, recovers the secret and checks
// it by replaying the transform before reporting it.
package recovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/samcharles93/wasmrev/internal/logger"
	"github.com/samcharles93/wasmrev/internal/mixer"
	"github.com/samcharles93/wasmrev/pkg/wasmscan"
)

// DefaultPrefix wraps recovered secrets as DefaultPrefix{secret}.
const DefaultPrefix = "SHLK"

var ErrInsufficientData = errors.New("not enough 8-byte data segments")

// InsufficientDataError carries what the scan did find.
type InsufficientDataError struct {
	Blocks   []wasmscan.Segment
	Segments []wasmscan.RawSegment
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%v: need 2, found %d among %d active segments",
		ErrInsufficientData, len(e.Blocks), len(e.Segments))
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// Result is a recovered and verified secret with the blocks it came from.
type Result struct {
	KeyOffset    uint32
	TargetOffset uint32
	Key          mixer.Block
	Target       mixer.Block
	Secret       mixer.Block
	Verified     bool

	// Steps undone by the inverter, last step first.
	Steps []mixer.Step
}

// RecoverFile loads the module at path and recovers its secret.
func RecoverFile(ctx context.Context, path string) (*Result, error) {
	f, err := wasmscan.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	logger.FromContext(ctx).Debug("loaded module",
		"path", path, "bytes", len(f.Data), "version", f.Version())
	return Recover(ctx, f.Data)
}

// Recover extracts the key block (lowest offset) and the target block (next
// offset) from blob and inverts the transform.
func Recover(ctx context.Context, blob []byte) (*Result, error) {
	log := logger.FromContext(ctx)

	all, err := wasmscan.ScanAll(blob)
	if err != nil {
		return nil, err
	}
	blocks := wasmscan.Blocks(all)
	log.Debug("scanned data segments", "segments", len(all), "blocks", len(blocks))
	if len(blocks) < 2 {
		return nil, &InsufficientDataError{Blocks: blocks, Segments: all}
	}

	key, target := blocks[0], blocks[1]
	log.Info("assigned blocks",
		"key_offset", key.Offset, "key", mixer.Block(key.Data),
		"target_offset", target.Offset, "target", mixer.Block(target.Data))

	res, err := Solve(ctx, mixer.Block(key.Data), mixer.Block(target.Data))
	if err != nil {
		return nil, err
	}
	res.KeyOffset = key.Offset
	res.TargetOffset = target.Offset
	return res, nil
}

// Solve inverts target under key. The secret is only returned once replaying
// the transform on it reproduces target.
func Solve(ctx context.Context, key, target mixer.Block) (*Result, error) {
	secret, steps, err := mixer.InvertTrace(key, target)
	if err != nil {
		return nil, err
	}
	if !mixer.Verify(secret, key, target) {
		return nil, fmt.Errorf("%w: %s does not reproduce %s", mixer.ErrInversion, secret, target)
	}
	logger.FromContext(ctx).Debug("inverted transform", "secret", secret)

	return &Result{
		Key:      key,
		Target:   target,
		Secret:   secret,
		Verified: true,
		Steps:    steps,
	}, nil
}
