package bus

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
	"github.com/thelolagemann/gbbus/internal/types"
)

// snapshotMagic prefixes every uncompressed snapshot, followed by
// a single version byte.
const (
	snapshotMagic   = "GBBS"
	snapshotVersion = 2
)

var _ types.Stater = (*Bus)(nil)

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - IF, IE (2 x uint8)
//   - Work RAM (8kB)
//   - High RAM (128B)
//   - PPU
//   - joypad, timer and cartridge, each if it implements types.Stater
func (b *Bus) Save(s *types.State) {
	b.irq.Save(s)
	s.WriteData(b.wRAM.Bytes())
	s.WriteData(b.hRAM.Bytes())
	b.video.Save(s)
	for _, st := range b.staters() {
		st.Save(s)
	}
}

// Load implements the types.Stater interface. It panics with
// types.ErrShortState if s is truncated; use Restore to get an
// error instead.
func (b *Bus) Load(s *types.State) {
	b.irq.Load(s)
	s.ReadData(b.wRAM.Bytes())
	s.ReadData(b.hRAM.Bytes())
	b.video.Load(s)
	for _, st := range b.staters() {
		st.Load(s)
	}
}

// staters returns the attached components that carry their own state.
// The cartridge saves its bank registers along with its RAM.
func (b *Bus) staters() []types.Stater {
	var out []types.Stater
	for _, c := range []any{b.input, b.timer, b.cart} {
		if st, ok := c.(types.Stater); ok {
			out = append(out, st)
		}
	}
	return out
}

// Snapshot returns the brotli compressed state of the bus and
// everything attached to it.
func (b *Bus) Snapshot() ([]byte, error) {
	s := types.NewState()
	s.WriteData([]byte(snapshotMagic))
	s.Write8(snapshotVersion)
	b.Save(s)

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := w.Write(s.Bytes()); err != nil {
		return nil, errors.Wrap(err, "compressing snapshot")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "compressing snapshot")
	}
	return buf.Bytes(), nil
}

// Restore loads a snapshot produced by Snapshot. If the snapshot
// is malformed the bus is left as it was.
func (b *Bus) Restore(data []byte) (err error) {
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return errors.Wrap(err, "decompressing snapshot")
	}
	if len(raw) < len(snapshotMagic)+1 || string(raw[:len(snapshotMagic)]) != snapshotMagic {
		return errors.New("not a snapshot")
	}
	if v := raw[len(snapshotMagic)]; v != snapshotVersion {
		return errors.Errorf("unsupported snapshot version %d", v)
	}

	previous := types.NewState()
	b.Save(previous)
	defer func() {
		if r := recover(); r != nil {
			short, ok := r.(types.ErrShortState)
			if !ok {
				panic(r)
			}
			b.Load(types.StateFromBytes(previous.Bytes()))
			err = errors.Wrap(short, "restoring snapshot")
		}
	}()

	s := types.StateFromBytes(raw[len(snapshotMagic)+1:])
	b.Load(s)
	if s.Remaining() != 0 {
		b.Load(types.StateFromBytes(previous.Bytes()))
		return errors.Errorf("restoring snapshot: %d trailing bytes", s.Remaining())
	}
	return nil
}
