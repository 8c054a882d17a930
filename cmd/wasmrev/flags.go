package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wasmrev/internal/recovery"
)

const defaultModulePath = "encode.wasm"

var (
	modulePath string
	prefix     string
	configFile string
	logLevel   string
	logFormat  string
	debug      bool
)

func moduleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "path to the .wasm module (plain or LZ4 framed)",
			Value:       defaultModulePath,
			Destination: &modulePath,
		},
	}
}

func prefixFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "prefix",
		Usage:       "flag prefix wrapped around the secret",
		Value:       recovery.DefaultPrefix,
		Destination: &prefix,
	}
}

func blockFlag(name, usage string, dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage + " (16 hex digits)",
		Required:    true,
		Destination: dst,
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       configPath(),
			Destination: &configFile,
		},
	}
}
