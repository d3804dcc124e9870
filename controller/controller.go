// Package controller implements an NES joypad shift register backed by
// ebiten key polling, wired to the bus's 0x4016 port.
package controller

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Button bit positions within the 8-bit shift register, matching NES
// hardware's fixed poll order.
const (
	BitA = iota
	BitB
	BitSelect
	BitStart
	BitUp
	BitDown
	BitLeft
	BitRight
)

// defaultKeys is the poll order's default key binding; SetKeys replaces it
// for remapping.
var defaultKeys = [8]ebiten.Key{
	ebiten.KeyA,
	ebiten.KeyB,
	ebiten.KeySpace,
	ebiten.KeyEnter,
	ebiten.KeyUp,
	ebiten.KeyDown,
	ebiten.KeyLeft,
	ebiten.KeyRight,
}

// Controller is a single NES joypad: a strobe latch and an 8-bit shift
// register that's polled once on strobe-low and read out one bit per
// subsequent Read call.
type Controller struct {
	keys    [8]ebiten.Key
	strobe  bool
	buttons uint8
	idx     uint8
}

// New constructs a Controller using the default button-to-key bindings.
func New() *Controller {
	return &Controller{keys: defaultKeys}
}

// SetKeys replaces the key binding for each of the 8 buttons, in BitA..BitRight order.
func (c *Controller) SetKeys(keys [8]ebiten.Key) {
	c.keys = keys
}

// Write implements the $4016 write port: bit 0 set latches the controller
// into continuous-poll mode (every Read re-samples button 0) and resets the
// read index to 0; bit 0 clear snapshots the current key state and leaves
// the read index as it is.
func (c *Controller) Write(val uint8) {
	if val&0x01 != 0 {
		c.strobe = true
		c.idx = 0
		return
	}
	c.strobe = false
	c.buttons = 0
	c.poll()
}

// Read implements the $4016 read port: returns the next button state in
// poll order, least-significant bit first. Once all 8 have been read it
// returns 1, matching the open-bus behavior real NES controllers exhibit
// past the 8th read.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.poll()
		return c.buttons & 0x01
	}

	if c.idx > 7 {
		return 1
	}

	ret := (c.buttons >> c.idx) & 0x01
	c.idx++
	return ret
}

func (c *Controller) poll() {
	var bits uint8
	for i, key := range c.keys {
		if ebiten.IsKeyPressed(key) {
			bits |= 1 << i
		}
	}
	c.buttons = bits
}
