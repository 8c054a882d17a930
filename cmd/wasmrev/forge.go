package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wasmrev/internal/logger"
	"github.com/samcharles93/wasmrev/internal/mixer"
	"github.com/samcharles93/wasmrev/pkg/wasmscan"
)

// Offsets used for forged blocks. The target is emitted first so that
// readers have to sort by offset to tell the blocks apart.
const (
	forgeKeyOffset    = 8
	forgeTargetOffset = 16
)

func forgeCmd() *cli.Command {
	var (
		outPath   string
		keyHex    string
		secret    string
		secretHex string
		compress  bool
	)

	return &cli.Command{
		Name:  "forge",
		Usage: "Write a module whose data segments hide the given secret",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path",
				Value:       defaultModulePath,
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "key",
				Usage:       "key block B (16 hex digits)",
				Value:       "dc87db6b7cfd6d20",
				Destination: &keyHex,
			},
			&cli.StringFlag{
				Name:        "secret",
				Usage:       "8-byte secret text",
				Value:       "pureWASM",
				Destination: &secret,
			},
			&cli.StringFlag{
				Name:        "secret-hex",
				Usage:       "8-byte secret as hex (overrides --secret)",
				Destination: &secretHex,
			},
			&cli.BoolFlag{
				Name:        "lz4",
				Usage:       "wrap the module in an LZ4 frame",
				Destination: &compress,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := mixer.ParseBlock(keyHex)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: --key: %v", err), 1)
			}
			var plain mixer.Block
			if secretHex != "" {
				plain, err = mixer.ParseBlock(secretHex)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: --secret-hex: %v", err), 1)
				}
			} else {
				if len(secret) != mixer.Size {
					return cli.Exit(fmt.Sprintf("error: --secret must be %d bytes, got %d", mixer.Size, len(secret)), 1)
				}
				copy(plain[:], secret)
			}

			target := mixer.Forward(plain, key)
			builder := wasmscan.NewBuilder().
				AddMemory(1).
				AddData(
					wasmscan.RawSegment{Offset: forgeTargetOffset, Data: target[:]},
					wasmscan.RawSegment{Offset: forgeKeyOffset, Data: key[:]},
				)

			if compress {
				var buf bytes.Buffer
				if err := wasmscan.Compress(&buf, builder.Bytes()); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				err = os.WriteFile(outPath, buf.Bytes(), 0o644)
			} else {
				err = builder.WriteFile(outPath)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: write %s: %v", outPath, err), 1)
			}

			logger.FromContext(ctx).Info("forged module", "path", outPath, "lz4", compress)
			_, _ = fmt.Fprintf(outWriter(cmd), "wrote %s: key=%s target=%s\n", outPath, key, target)
			return nil
		},
	}
}
