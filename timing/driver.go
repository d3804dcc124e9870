// Package timing sequences the CPU against the PPU one scanline at a time.
// It owns the cycle budget a scanline gets, dispatches visible scanlines to
// the PPU's renderer, and delivers the unconditional VBLANK NMI at scanline
// 240.
package timing

import (
	"fmt"
)

const (
	cyclesPerScanline = 113
	firstVisibleLine  = 1
	lastVisibleLine   = 239
	vblankLine        = 240
	lastScanline      = 262
)

// Stepper is the CPU surface the driver advances: one instruction per call,
// returning the cycles it consumed or a fatal error.
type Stepper interface {
	Step() (uint8, error)
	RequestNMI()
}

// Renderer is the PPU surface the driver calls into once per scanline.
type Renderer interface {
	RenderScanline(line int, row []uint32)
	SetVBlankFlag()
	ClearVBlankFlag()
}

// Framebuffer is the host's 256x240 pixel grid; Driver writes one row per
// visible scanline and calls Flip once per frame, at VBLANK entry.
type Framebuffer interface {
	Row(line int) []uint32
	Flip()
}

// Driver owns the scanline/cycle-budget state coupling a CPU to a PPU. It
// does not own the CPU or PPU themselves — both are held as non-owning
// interfaces, which keeps the CPU<->PPU<->Bus reference graph acyclic.
type Driver struct {
	cpu Stepper
	ppu Renderer
	fb  Framebuffer

	cyclesLeftOnScanline int
	scanline             int
}

// New constructs a Driver ready to run from a freshly reset CPU: the first
// scanline's budget starts full and the scanline counter starts at 0.
func New(cpu Stepper, ppu Renderer, fb Framebuffer) *Driver {
	return &Driver{
		cpu:                  cpu,
		ppu:                  ppu,
		fb:                   fb,
		cyclesLeftOnScanline: cyclesPerScanline,
	}
}

// Scanline reports the current scanline, mainly for tests and debug tools.
func (d *Driver) Scanline() int {
	return d.scanline
}

// Step executes exactly one CPU instruction and advances the scanline
// budget by however many cycles it cost, dispatching any scanline
// boundaries crossed along the way.
func (d *Driver) Step() error {
	n, err := d.cpu.Step()
	if err != nil {
		return fmt.Errorf("timing: halted at scanline %d: %w", d.scanline, err)
	}

	d.cyclesLeftOnScanline -= int(n)
	if d.cyclesLeftOnScanline >= 0 {
		return nil
	}

	d.cyclesLeftOnScanline += cyclesPerScanline
	d.scanline++
	d.dispatchScanline()
	return nil
}

func (d *Driver) dispatchScanline() {
	switch {
	case d.scanline >= firstVisibleLine && d.scanline <= lastVisibleLine:
		d.ppu.RenderScanline(d.scanline-1, d.fb.Row(d.scanline-1))
	case d.scanline == vblankLine:
		// The CPU services the pending NMI (push PC, push F, set I,
		// load PC from the NMI vector, 7 cycles) at the start of its
		// next Step call, so its cost is folded into that call's
		// cycle-budget accounting rather than subtracted here.
		d.cpu.RequestNMI()
		d.fb.Flip()
		d.ppu.SetVBlankFlag()
	case d.scanline == lastScanline:
		d.scanline = 0
		d.ppu.ClearVBlankFlag()
	}
}
