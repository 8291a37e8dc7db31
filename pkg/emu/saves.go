// Package emu stores the battery backed RAM of cartridges between
// runs.
package emu

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// save file naming convention:
// <folder>/<cartridge title>/<unix timestamp>.sav

// Save represents a save file.
type Save struct {
	b    []byte // the save file data
	Path string // the path to the save file
}

// Bytes returns the save file data.
func (s *Save) Bytes() []byte {
	return s.b
}

// Timestamp returns the time the save was written, taken from its
// file name.
func (s *Save) Timestamp() time.Time {
	return time.Unix(parseTimestampFromFilename(s.Path), 0)
}

// WriteSave writes data as a new save file for the given cartridge
// title. The data is written to a temporary file first and renamed
// into place, so a crash never leaves a truncated save behind.
func WriteSave(folder, title string, data []byte, now time.Time) (*Save, error) {
	romSaveFolder := filepath.Join(folder, sanitize(title))
	if err := os.MkdirAll(romSaveFolder, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating save folder")
	}

	filePath := filepath.Join(romSaveFolder, fmt.Sprintf("%d.sav", now.Unix()))
	f, err := os.CreateTemp(romSaveFolder, filepath.Base(filePath)+".*")
	if err != nil {
		return nil, errors.Wrap(err, "creating save file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.Wrap(err, "writing save file")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, errors.Wrap(err, "writing save file")
	}
	if err := os.Rename(f.Name(), filePath); err != nil {
		return nil, errors.Wrap(err, "writing save file")
	}

	return &Save{b: append([]byte(nil), data...), Path: filePath}, nil
}

// LoadSaves loads all save files for the given cartridge title,
// newest first. If no save files exist, an empty slice is returned.
func LoadSaves(folder, title string) ([]*Save, error) {
	romSaveFolder := filepath.Join(folder, sanitize(title))

	files, err := os.ReadDir(romSaveFolder)
	if os.IsNotExist(err) {
		return []*Save{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "listing saves")
	}

	saves := make([]*Save, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !isFileSaveFile(file.Name()) {
			continue
		}
		savePath := filepath.Join(romSaveFolder, file.Name())
		b, err := os.ReadFile(savePath)
		if err != nil {
			return nil, errors.Wrap(err, "loading save")
		}
		saves = append(saves, &Save{b: b, Path: savePath})
	}

	sort.SliceStable(saves, func(i, j int) bool {
		return parseTimestampFromFilename(saves[i].Path) > parseTimestampFromFilename(saves[j].Path)
	})
	return saves, nil
}

// LatestSave returns the newest save for the given title, or nil
// if there is none.
func LatestSave(folder, title string) (*Save, error) {
	saves, err := LoadSaves(folder, title)
	if err != nil || len(saves) == 0 {
		return nil, err
	}
	return saves[0], nil
}

// parseTimestampFromFilename parses the timestamp from the given filename.
// The filename is expected to be in the format of "<...>.<timestamp>.sav"
// or "<timestamp>.sav", where <timestamp> is the number of seconds since
// the Unix epoch.
func parseTimestampFromFilename(filename string) int64 {
	filename = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	parts := strings.Split(filename, ".")
	n, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func isFileSaveFile(filename string) bool {
	return strings.HasSuffix(filename, ".sav")
}

// sanitize makes a cartridge title safe to use as a folder name.
func sanitize(title string) string {
	title = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(title))
	if title == "" {
		return "untitled"
	}
	return title
}
