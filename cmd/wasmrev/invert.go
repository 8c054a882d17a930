package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wasmrev/internal/mixer"
	"github.com/samcharles93/wasmrev/internal/recovery"
)

func invertCmd() *cli.Command {
	var (
		keyHex    string
		targetHex string
		all       bool
		limit     int64
	)

	return &cli.Command{
		Name:  "invert",
		Usage: "Invert a target block under a key block",
		Flags: []cli.Flag{
			blockFlag("key", "key block B", &keyHex),
			blockFlag("target", "target block A", &targetHex),
			prefixFlag(),
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "list every secret that maps to the target",
				Destination: &all,
			},
			&cli.Int64Flag{
				Name:        "limit",
				Usage:       "maximum number of secrets listed by --all",
				Value:       64,
				Destination: &limit,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if config.Prefix != "" && !cmd.IsSet("prefix") {
				prefix = config.Prefix
			}
			key, target, err := parseBlocks(keyHex, targetHex)
			if err != nil {
				return err
			}
			out := outWriter(cmd)

			if all {
				for _, p := range mixer.Preimages(key, target, int(limit)) {
					_, _ = fmt.Fprintf(out, "%s | %s\n", p, recovery.Printable(p[:]))
				}
				return nil
			}

			res, err := recovery.Solve(ctx, key, target)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			printSecret(out, res)
			return nil
		},
	}
}

func verifyCmd() *cli.Command {
	var (
		keyHex    string
		targetHex string
		secretHex string
	)

	return &cli.Command{
		Name:  "verify",
		Usage: "Check that a secret maps to the target under the key",
		Flags: []cli.Flag{
			blockFlag("key", "key block B", &keyHex),
			blockFlag("target", "target block A", &targetHex),
			blockFlag("secret", "candidate secret", &secretHex),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, target, err := parseBlocks(keyHex, targetHex)
			if err != nil {
				return err
			}
			secret, err := mixer.ParseBlock(secretHex)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: --secret: %v", err), 1)
			}

			got := mixer.Forward(secret, key)
			ok := got == target
			_, _ = fmt.Fprintf(outWriter(cmd), "Forward OK ? %t (%s)\n", ok, got)
			if !ok {
				return cli.Exit(fmt.Sprintf("error: %s maps to %s, not %s", secret, got, target), 1)
			}
			return nil
		},
	}
}

func parseBlocks(keyHex, targetHex string) (mixer.Block, mixer.Block, error) {
	key, err := mixer.ParseBlock(keyHex)
	if err != nil {
		return key, mixer.Block{}, cli.Exit(fmt.Sprintf("error: --key: %v", err), 1)
	}
	target, err := mixer.ParseBlock(targetHex)
	if err != nil {
		return key, target, cli.Exit(fmt.Sprintf("error: --target: %v", err), 1)
	}
	return key, target, nil
}
