package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/thelolagemann/gbbus/internal/bus"
	"github.com/thelolagemann/gbbus/internal/gameboy"
	"github.com/thelolagemann/gbbus/pkg/utils"
)

type PeekCmd struct {
	ROM     string  `arg:"" name:"/path/to/rom" help:"${rompath_help}" type:"existingfile"`
	Address address `arg:"" help:"First address to read, in hex (0xFF40, FF40 or $FF40)."`
	Count   int     `arg:"" optional:"" help:"Number of bytes to read." default:"16"`

	Frames int `name:"frames" short:"n" help:"Frames to run before reading." default:"0"`
}

func (p *PeekCmd) Run(g *globals) error {
	rom, err := utils.LoadFile(p.ROM)
	if err != nil {
		return err
	}
	gb, err := gameboy.NewGameBoy(rom, gameboy.WithLogger(g.log))
	if err != nil {
		return err
	}
	if p.Frames > 0 {
		if err := gb.Run(context.Background(), p.Frames); err != nil {
			return err
		}
	}
	return dump(g.out, gb.Bus, uint16(p.Address), p.Count)
}

// dump hex dumps count bytes read through b, 16 per line. Reads
// wrap from 0xFFFF to 0x0000. It stops at the first fatal access.
func dump(w io.Writer, b *bus.Bus, start uint16, count int) error {
	var line strings.Builder
	flush := func() {
		if line.Len() > 0 {
			fmt.Fprintln(w, line.String())
			line.Reset()
		}
	}

	addr := start
	for i := 0; i < count; i++ {
		if i%16 == 0 {
			flush()
			fmt.Fprintf(&line, "%04X:", addr)
		}
		var v uint8
		if err := bus.Guard(func() { v = b.Read(addr) }); err != nil {
			flush()
			return err
		}
		fmt.Fprintf(&line, " %02X", v)
		addr++
	}
	flush()
	return nil
}

type address uint16

// Decode parses a 16-bit address written in hex, with an optional
// 0x or $ prefix.
//
// Implements kong.MapperValue interface.
func (a *address) Decode(ctx *kong.DecodeContext) error {
	var s string
	if err := ctx.Scan.PopValueInto("address", &s); err != nil {
		return err
	}
	v, err := parseAddress(s)
	if err != nil {
		return err
	}
	*a = address(v)
	return nil
}

func parseAddress(s string) (uint16, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "$")
	v, err := strconv.ParseUint(trimmed, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}
