// Command nesrun loads an iNES ROM and runs it under an ebiten host loop:
// cartridge -> bus -> ppu -> cpu -> timing driver, with one emulated frame
// per ebiten Update tick.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kestrelnes/nescore/bus"
	"github.com/kestrelnes/nescore/cartridge"
	"github.com/kestrelnes/nescore/controller"
	"github.com/kestrelnes/nescore/cpu6502"
	"github.com/kestrelnes/nescore/ppu"
	"github.com/kestrelnes/nescore/timing"
)

var romFile = flag.String("nes_rom", "", "Path to NES ROM to run.")

// framebuffer holds one 256x240 frame as flat rows and is the Framebuffer
// the timing driver writes scanlines into and flips each VBLANK.
type framebuffer struct {
	pixels [ppu.Height][ppu.Width]uint32
	image  *ebiten.Image
}

func newFramebuffer() *framebuffer {
	return &framebuffer{image: ebiten.NewImage(ppu.Width, ppu.Height)}
}

func (f *framebuffer) Row(line int) []uint32 {
	return f.pixels[line][:]
}

func (f *framebuffer) Flip() {
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			px := f.pixels[y][x]
			f.image.Set(x, y, argbColor(px))
		}
	}
}

type argbColor uint32

func (c argbColor) RGBA() (r, g, b, a uint32) {
	v := uint32(c)
	a = (v >> 24 & 0xFF) * 0x101
	r = (v >> 16 & 0xFF) * 0x101
	g = (v >> 8 & 0xFF) * 0x101
	b = (v & 0xFF) * 0x101
	return
}

// game wires the core to ebiten's Game interface; all emulation happens in
// Update so the draw side just blits the framebuffer the driver filled.
type game struct {
	driver *timing.Driver
	pad    *controller.Controller
	fb     *framebuffer
}

// Update steps the core through exactly one frame: 262 scanlines' worth of
// Step calls, detected by watching the driver's own scanline counter wrap
// from 262 back to 0 rather than guessing a fixed instruction count (actual
// cycles-per-step varies with the opcode executed).
func (g *game) Update() error {
	prev := g.driver.Scanline()
	for {
		if err := g.driver.Step(); err != nil {
			return err
		}
		cur := g.driver.Scanline()
		if cur == 0 && prev != 0 {
			return nil
		}
		prev = cur
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.fb.image, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.Width, ppu.Height
}

func main() {
	flag.Parse()

	f, err := os.Open(*romFile)
	if err != nil {
		log.Fatalf("couldn't open ROM: %v", err)
	}
	defer f.Close()

	cart, err := cartridge.Load(f)
	if err != nil {
		log.Fatalf("couldn't parse ROM: %v", err)
	}

	bank1, bank2, err := cartridge.NROMBanks(cart)
	if err != nil {
		log.Fatalf("couldn't map PRG-ROM: %v", err)
	}

	b := bus.New()
	b.SetPrgRomBank1(bank1)
	b.SetPrgRomBank2(bank2)

	p := ppu.New(cart, cart.MirroringMode())
	b.AttachPPU(p)

	pad := controller.New()
	b.AttachJoypad(pad)

	c := cpu6502.New(b)
	c.PC = b.InitialProgramCounter()

	fb := newFramebuffer()
	driver := timing.New(c, p, fb)

	ebiten.SetWindowSize(ppu.Width*2, ppu.Height*2)
	ebiten.SetWindowTitle("nescore")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(&game{driver: driver, pad: pad, fb: fb}); err != nil {
		log.Fatal(err)
	}
}
