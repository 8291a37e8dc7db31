// Command gbbus clocks a Game Boy cartridge on the system bus
// without a CPU, and inspects the memory map it produces.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/thelolagemann/gbbus/internal/config"
	"github.com/thelolagemann/gbbus/pkg/log"
)

type (
	CLI struct {
		Run     RunCmd     `cmd:"" help:"Clock a ROM for a number of frames."`
		Peek    PeekCmd    `cmd:"" help:"Dump bus reads after power on."`
		RomInfo RomInfoCmd `cmd:"" name:"rom-info" help:"Show the cartridge header."`

		Config   string `name:"config" short:"c" help:"${config_help}" type:"path" default:"gbbus.toml"`
		LogLevel string `name:"log-level" help:"Override the configured log level (trace, debug, info, warn, error)."`
	}

	// globals is bound to every command's Run method.
	globals struct {
		cfg config.Config
		log log.Logger
		out io.Writer
	}
)

var vars = kong.Vars{
	"config_help":  "TOML configuration file. Missing files are ignored.",
	"rompath_help": "ROM image to load (.gb, .gbc, optionally in .gz, .zip or .7z).",
}

func main() {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("gbbus"),
		kong.Description("Game Boy system bus runner."),
		kong.UsageOnError(),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cfg, err := config.LoadOrDefault(cli.Config)
	parser.FatalIfErrorf(err)
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	parser.FatalIfErrorf(err)

	logger := log.NewWithOutput(os.Stderr, level)
	if err := ctx.Run(&globals{cfg: cfg, log: logger, out: os.Stdout}); err != nil {
		logger.Fatalf("%s: %v", ctx.Command(), err)
	}
}
