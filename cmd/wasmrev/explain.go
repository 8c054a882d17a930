package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

const explanation = `The module carries two 8-byte active data segments:
  B  the key block (lowest offset)
  A  the target state expected after eight mixing steps (next offset)

Forward, for i = 0..7 on the 8-byte state M (initially the secret):
  1. x = M[i] ^ B[i]
  2. M[i] = x
  3. n = x & 31
  4. x even: rotate both little-endian words M[0:4] and M[4:8] right by n
     x odd:  rotate both words left by n
The check passes when M == A.

Inversion, for i = 7..0 starting from A:
  - try x = 0..255 in ascending order
  - undo the rotation x implies (left if forward rotated right, else right)
  - require byte i of the unrotated state to equal x
  - restore M[i] = x ^ B[i]
  - replay step i and require it to reproduce the current state
  - when no x survives, back up to the previous step and try its next x
The state reached after i = 0 is the secret.`

func explainCmd() *cli.Command {
	return &cli.Command{
		Name:  "explain",
		Usage: "Describe the transform and how it is inverted",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, _ = fmt.Fprintln(outWriter(cmd), explanation)
			return nil
		},
	}
}
