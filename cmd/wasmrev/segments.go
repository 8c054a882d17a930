package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wasmrev/internal/recovery"
	"github.com/samcharles93/wasmrev/pkg/wasmscan"
)

func segmentsCmd() *cli.Command {
	var all bool

	return &cli.Command{
		Name:  "segments",
		Usage: "List the data segments of a module",
		Flags: append(moduleFlags(),
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "list every active segment, not only 8-byte blocks",
				Destination: &all,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyModuleConfig(cmd, config)
			out := outWriter(cmd)

			f, err := wasmscan.Open(modulePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %s: %v", modulePath, err), 1)
			}
			defer func() { _ = f.Close() }()

			if all {
				segs, err := f.ScanAll()
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				printRawSegments(out, segs)
				return nil
			}

			blocks, err := f.Scan()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			for i, b := range blocks {
				role := ""
				switch i {
				case 0:
					role = " (key)"
				case 1:
					role = " (target)"
				}
				_, _ = fmt.Fprintf(out, "@%d: %s | %s%s\n",
					b.Offset, hex.EncodeToString(b.Data[:]), recovery.Printable(b.Data[:]), role)
			}
			return nil
		},
	}
}

func printRawSegments(out io.Writer, segs []wasmscan.RawSegment) {
	for _, s := range segs {
		_, _ = fmt.Fprintf(out, "@%d (%d): %s\n", s.Offset, len(s.Data), hex.EncodeToString(s.Data))
	}
}
