// Package config holds the runner configuration, read from a TOML
// file and overridden by command line flags.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/thelolagemann/gbbus/internal/ppu/palette"
	"github.com/thelolagemann/gbbus/pkg/log"
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Emulation EmulationConfig `toml:"emulation"`
	Output    OutputConfig    `toml:"output"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// Unmapped logs accesses outside of the memory map.
	Unmapped bool `toml:"unmapped"`
}

type EmulationConfig struct {
	Frames int `toml:"frames"`
	// FrameBuffer is the capacity of the frame channel. Frames
	// completed while it is full are dropped.
	FrameBuffer int `toml:"frame_buffer"`
	// SkipInit leaves the registers zeroed instead of applying the
	// post boot values.
	SkipInit bool `toml:"skip_init"`
	// Saves is the folder battery backed cartridge RAM is kept in.
	// Empty disables saving.
	Saves string `toml:"saves"`
}

type OutputConfig struct {
	Screenshot string `toml:"screenshot"`
	Snapshot   string `toml:"snapshot"`
	Palette    string `toml:"palette"`
	Scale      int    `toml:"scale"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Emulation: EmulationConfig{
			Frames:      60,
			FrameBuffer: 4,
		},
		Output: OutputConfig{
			Palette: "greyscale",
			Scale:   2,
		},
	}
}

// Load decodes the file at path over the defaults. Keys missing
// from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("loading config %s: unknown key %s", path, undecoded[0])
	}
	return cfg, cfg.Validate()
}

// LoadOrDefault loads path if it is set and exists, or returns the
// defaults.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the configuration for values the runner cannot
// use.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	if c.Emulation.Frames < 0 {
		return errors.Errorf("emulation.frames: %d is negative", c.Emulation.Frames)
	}
	if c.Emulation.FrameBuffer < 1 {
		return errors.Errorf("emulation.frame_buffer: %d must be at least 1", c.Emulation.FrameBuffer)
	}
	if _, err := palette.ByName(c.Output.Palette); err != nil {
		return errors.Wrap(err, "output.palette")
	}
	if c.Output.Scale < 1 || c.Output.Scale > 8 {
		return errors.Errorf("output.scale: %d is not between 1 and 8", c.Output.Scale)
	}
	return nil
}

// Save encodes the configuration as TOML to path.
func Save(path string, c Config) error {
	buf, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(os.WriteFile(path, buf, 0o644), "saving config")
}
