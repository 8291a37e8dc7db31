package bus

// Tick advances the clocked components by the number of machine
// cycles the CPU just spent: the PPU, then the joypad, then the
// timer, which counts clock cycles (4 per machine cycle). After
// each component the interrupts it latched are merged into IF and
// its latch is cleared, so a request is never delivered twice.
func (b *Bus) Tick(cycles uint8) {
	b.step(b.video, uint16(cycles))
	b.step(b.input, uint16(cycles))
	b.step(b.timer, uint16(cycles)*4)
}

func (b *Bus) step(t Ticker, cycles uint16) {
	b.irq.Request(t.Tick(cycles))
	t.ClearInterrupt()
}
