package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wasmrev/internal/logger"
	"github.com/samcharles93/wasmrev/internal/mixer"
	"github.com/samcharles93/wasmrev/internal/recovery"
)

func recoverCmd() *cli.Command {
	var (
		hexOnly      bool
		jsonOut      bool
		traceForward bool
		traceReverse bool
	)

	return &cli.Command{
		Name:  "recover",
		Usage: "Recover the secret from the key and target blocks of a module",
		Flags: append(moduleFlags(),
			prefixFlag(),
			&cli.BoolFlag{
				Name:        "hex",
				Usage:       "print only the secret as hex",
				Destination: &hexOnly,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the result as JSON",
				Destination: &jsonOut,
			},
			&cli.BoolFlag{
				Name:        "trace-forward",
				Usage:       "print every step of the verifying forward pass",
				Destination: &traceForward,
			},
			&cli.BoolFlag{
				Name:        "trace-reverse",
				Usage:       "print every step of the inversion",
				Destination: &traceReverse,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyModuleConfig(cmd, config)
			out := outWriter(cmd)

			res, err := recovery.RecoverFile(ctx, modulePath)
			if err != nil {
				var ide *recovery.InsufficientDataError
				if errors.As(err, &ide) {
					_, _ = fmt.Fprintln(out, "Not enough 8-byte segments. Active segments found:")
					printRawSegments(out, ide.Segments)
				}
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			logger.FromContext(ctx).Debug("recovered", "path", modulePath, "secret", res.Secret)

			if jsonOut {
				b, err := res.Report(prefix, traceForward || traceReverse).MarshalIndent()
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: encode result: %v", err), 1)
				}
				_, _ = fmt.Fprintln(out, string(b))
				return nil
			}
			if hexOnly {
				_, _ = fmt.Fprintln(out, res.Hex())
				return nil
			}

			_, _ = fmt.Fprintf(out, "[+] Segment B (offset %d) = %s | %s\n", res.KeyOffset, res.Key, recovery.Printable(res.Key[:]))
			_, _ = fmt.Fprintf(out, "[+] Segment A (offset %d) = %s | %s\n", res.TargetOffset, res.Target, recovery.Printable(res.Target[:]))
			if traceReverse {
				_, _ = fmt.Fprintln(out)
				printReverseTrace(out, res.Target, res.Steps)
			}
			if traceForward {
				_, _ = fmt.Fprintln(out)
				printForwardTrace(out, res.Secret, res.Key, res.Target)
			}
			printSecret(out, res)
			return nil
		},
	}
}

func printSecret(out io.Writer, res *recovery.Result) {
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Secret: %s %s\n", res.Text(), res.Hex())
	_, _ = fmt.Fprintf(out, "Forward OK ? %t\n", res.Verified)
	if res.Verified {
		_, _ = fmt.Fprintf(out, "Flag: %s\n", res.Flag(prefix))
	}
}

func printForwardTrace(out io.Writer, secret, key, target mixer.Block) {
	final, steps := mixer.ForwardTrace(secret, key)
	_, _ = fmt.Fprintln(out, "=== FORWARD ===")
	_, _ = fmt.Fprintf(out, "INIT  %s | %s\n", secret, recovery.Printable(secret[:]))
	for _, s := range steps {
		_, _ = fmt.Fprintf(out, "i=%d | a=%02x B[i]=%02x x=%02x n=%2d %s => %s | %s\n",
			s.Index, s.Input, s.Key, s.Mixed, s.Shift, s.Dir, s.After, recovery.Printable(s.After[:]))
	}
	verdict := "KO"
	if final == target {
		verdict = "OK"
	}
	_, _ = fmt.Fprintf(out, "FINAL %s target=%s => %s\n", final, target, verdict)
}

// printReverseTrace prints steps in the order the inverter undid them.
func printReverseTrace(out io.Writer, target mixer.Block, steps []mixer.Step) {
	_, _ = fmt.Fprintln(out, "=== REVERSE ===")
	_, _ = fmt.Fprintf(out, "FINAL %s | %s\n", target, recovery.Printable(target[:]))
	for _, s := range steps {
		undo := s.Dir.Inverse()
		_, _ = fmt.Fprintf(out, "i=%d | x=%02x a=%02x n=%2d %s->%s before=%s | %s\n",
			s.Index, s.Mixed, s.Input, s.Shift, s.Dir, undo, s.Before, recovery.Printable(s.Before[:]))
	}
}
