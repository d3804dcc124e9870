// Command tracecpu runs a ROM's PRG-ROM headlessly, one CPU instruction at
// a time, logging a one-line CPU state summary after every step and dumping
// the full CPU state through internal/trace when it stops. It's
// the headless counterpart to cmd/nesrun, useful for bisecting bad opcode
// behavior without a window.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/kestrelnes/nescore/bus"
	"github.com/kestrelnes/nescore/cartridge"
	"github.com/kestrelnes/nescore/cpu6502"
	"github.com/kestrelnes/nescore/internal/trace"
	"github.com/kestrelnes/nescore/ppu"
)

var (
	romFile = flag.String("nes_rom", "", "Path to NES ROM to run.")
	steps   = flag.Int("steps", 100, "Number of CPU instructions to execute before stopping.")
)

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
	b.AttachPPU(ppu.New(cart, cart.MirroringMode()))

	c := cpu6502.New(b)
	c.PC = b.InitialProgramCounter()

	for i := 0; i < *steps; i++ {
		n, err := c.Step()
		if err != nil {
			trace.Dump(os.Stdout, "CPU", c)
			log.Fatalf("step %d: %v", i, err)
		}
		log.Printf("step %d: %s (%d cycles)", i, c, n)
	}

	trace.Dump(os.Stdout, "CPU", c)
}
