package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/thelolagemann/gbbus/internal/cartridge"
	"github.com/thelolagemann/gbbus/internal/gameboy"
	"github.com/thelolagemann/gbbus/internal/joypad"
	"github.com/thelolagemann/gbbus/internal/ppu"
	"github.com/thelolagemann/gbbus/internal/ppu/palette"
	"github.com/thelolagemann/gbbus/pkg/emu"
	"github.com/thelolagemann/gbbus/pkg/utils"
	"golang.org/x/sync/errgroup"
)

type RunCmd struct {
	ROM string `arg:"" name:"/path/to/rom" help:"${rompath_help}" type:"existingfile"`

	Frames      int      `name:"frames" short:"n" help:"Number of frames to run. (default from config)"`
	Press       []string `name:"press" help:"Buttons held down for the whole run." placeholder:"a,start,..."`
	Restore     string   `name:"restore" help:"Load a snapshot before running." type:"existingfile"`
	Screenshot  string   `name:"screenshot" help:"Write the last frame as a PNG." type:"path"`
	Snapshot    string   `name:"snapshot" help:"Write a snapshot when done." type:"path"`
	Palette     string   `name:"palette" help:"Screenshot palette (greyscale, green, red, yellow)."`
	Saves       string   `name:"saves" help:"Folder to keep battery backed RAM in." type:"path"`
	LogUnmapped bool     `name:"log-unmapped" help:"Log accesses outside of the memory map."`
}

// frameStats summarises the frames received from the PPU.
type frameStats struct {
	received int
	unique   int
	last     *ppu.Frame
}

func (r *RunCmd) Run(g *globals) error {
	cfg := g.cfg
	if r.Frames > 0 {
		cfg.Emulation.Frames = r.Frames
	}
	if r.Screenshot != "" {
		cfg.Output.Screenshot = r.Screenshot
	}
	if r.Snapshot != "" {
		cfg.Output.Snapshot = r.Snapshot
	}
	if r.Palette != "" {
		cfg.Output.Palette = r.Palette
	}
	if r.Saves != "" {
		cfg.Emulation.Saves = r.Saves
	}
	if r.LogUnmapped {
		cfg.Log.Unmapped = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rom, err := utils.LoadFile(r.ROM)
	if err != nil {
		return err
	}
	opts := []gameboy.Opt{
		gameboy.WithLogger(g.log),
		gameboy.WithFrameBuffer(cfg.Emulation.FrameBuffer),
	}
	if cfg.Log.Unmapped {
		opts = append(opts, gameboy.LogUnmapped())
	}
	if cfg.Emulation.SkipInit {
		opts = append(opts, gameboy.SkipInit())
	}
	gb, err := gameboy.NewGameBoy(rom, opts...)
	if err != nil {
		return err
	}

	battery, err := loadBattery(g, gb, cfg.Emulation.Saves)
	if err != nil {
		return err
	}

	if r.Restore != "" {
		data, err := os.ReadFile(r.Restore)
		if err != nil {
			return errors.Wrap(err, "reading snapshot")
		}
		if err := gb.Bus.Restore(data); err != nil {
			return err
		}
		g.log.Infof("restored %s", r.Restore)
	}
	for _, name := range r.Press {
		b, err := joypad.ParseButton(name)
		if err != nil {
			return err
		}
		gb.Press(b)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var stats frameStats
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return gb.Run(ctx, cfg.Emulation.Frames)
	})
	eg.Go(func() error {
		stats = consumeFrames(gb.Frames())
		return nil
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	completed := gb.Bus.PPU().Frames()
	g.log.Infof("%d frames completed, %d received (%d unique), %d dropped",
		completed, stats.received, stats.unique, completed-uint64(stats.received))

	if cfg.Output.Screenshot != "" {
		if stats.last == nil {
			g.log.Errorf("no frame to save, is the LCD on?")
		} else {
			p, err := palette.ByName(cfg.Output.Palette)
			if err != nil {
				return err
			}
			if err := utils.SaveImage(utils.FrameImage(stats.last, p, cfg.Output.Scale), cfg.Output.Screenshot); err != nil {
				return err
			}
			g.log.Infof("saved frame %d to %s", stats.last.Number, cfg.Output.Screenshot)
		}
	}

	if battery != nil {
		s, err := emu.WriteSave(cfg.Emulation.Saves, gb.Cartridge.Header().Title, battery.RAM(), time.Now())
		if err != nil {
			return err
		}
		g.log.Infof("saved cartridge ram to %s", s.Path)
	}

	if cfg.Output.Snapshot != "" {
		data, err := gb.Bus.Snapshot()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Output.Snapshot, data, 0o644); err != nil {
			return errors.Wrap(err, "writing snapshot")
		}
		g.log.Infof("saved snapshot to %s (%d bytes)", cfg.Output.Snapshot, len(data))
	}
	return nil
}

// loadBattery restores the newest save of a battery backed
// cartridge. It returns nil if saving is disabled or the cartridge
// has no battery.
func loadBattery(g *globals, gb *gameboy.GameBoy, folder string) (cartridge.Battery, error) {
	h := gb.Cartridge.Header()
	battery, ok := gb.Cartridge.(cartridge.Battery)
	if folder == "" || !ok || !h.HasBattery() {
		return nil, nil
	}

	s, err := emu.LatestSave(folder, h.Title)
	if err != nil {
		return nil, err
	}
	if s != nil {
		battery.LoadRAM(s.Bytes())
		g.log.Infof("loaded cartridge ram from %s", s.Path)
	}
	return battery, nil
}

// consumeFrames drains frames until the channel is closed.
func consumeFrames(frames <-chan *ppu.Frame) frameStats {
	var stats frameStats
	seen := make(map[uint64]struct{})
	for f := range frames {
		stats.received++
		seen[f.Hash()] = struct{}{}
		stats.last = f
	}
	stats.unique = len(seen)
	return stats
}
