package main

import (
	"fmt"

	"github.com/thelolagemann/gbbus/internal/cartridge"
	"github.com/thelolagemann/gbbus/pkg/utils"
)

type RomInfoCmd struct {
	ROM string `arg:"" name:"/path/to/rom" help:"${rompath_help}" type:"existingfile"`
}

func (r *RomInfoCmd) Run(g *globals) error {
	rom, err := utils.LoadFile(r.ROM)
	if err != nil {
		return err
	}
	cart, err := cartridge.New(rom)
	if err != nil {
		return err
	}

	h := cart.Header()
	checksum := "ok"
	if !h.Valid() {
		checksum = fmt.Sprintf("bad (0x%02X, computed 0x%02X)", h.HeaderChecksum, h.ComputeChecksum())
	}
	fmt.Fprintf(g.out, "title:     %s\n", h.Title)
	fmt.Fprintf(g.out, "type:      %s\n", h.CartridgeType)
	fmt.Fprintf(g.out, "hardware:  %s\n", h.Hardware())
	fmt.Fprintf(g.out, "rom size:  %dkB\n", h.ROMSize/1024)
	fmt.Fprintf(g.out, "ram size:  %dkB\n", h.RAMSize/1024)
	fmt.Fprintf(g.out, "checksum:  %s\n", checksum)
	return nil
}
