// Package bus implements the CPU-visible address space: 2 KiB of internal
// RAM mirrored across 0x0000-0x1FFF, PPU registers folded across
// 0x2000-0x3FFF, OAM DMA at 0x4014, and the two 16 KiB PRG-ROM banks a
// cartridge installs at 0x8000-0xFFFF.
package bus

import (
	"log"
)

const (
	ramSize    = 0x0800
	maxRAM     = 0x1FFF
	maxPPUMir  = 0x3FFF
	oamDMA     = 0x4014
	apuIOLow   = 0x4015
	apuIOHigh  = 0x4017
	maxIO      = 0x401F
	prgBank1Lo = 0x8000
	prgBank1Hi = 0xBFFF
	prgBank2Lo = 0xC000
)

// PPU is the subset of ppu.PPU the bus dispatches register access to.
type PPU interface {
	WriteCtrl(val uint8)
	WriteMask(val uint8)
	ReadStatus() uint8
	WriteOamAddr(val uint8)
	ReadOamData() uint8
	WriteOamData(val uint8)
	WriteScroll(val uint8)
	WritePpuAddr(val uint8)
	ReadPpuData() uint8
	WritePpuData(val uint8)
}

// Joypad is the subset of controller.Controller the bus forwards 0x4016
// reads/writes to. It is optional: a Bus with none attached treats both
// ports as silently discarded, matching the base dispatch table.
type Joypad interface {
	Write(val uint8)
	Read() uint8
}

// Bus owns RAM and non-owning references to the PPU, PRG-ROM banks, and an
// optional controller. It implements cpu6502.Bus.
type Bus struct {
	ram  [ramSize]uint8
	ppu  PPU
	pad1 Joypad

	bank1, bank2 []uint8

	loggedOpenBus map[uint16]bool
}

// New constructs an unattached Bus; AttachPPU, SetPrgRomBank1, and
// SetPrgRomBank2 must be called before it is wired to a CPU.
func New() *Bus {
	return &Bus{loggedOpenBus: make(map[uint16]bool)}
}

// AttachPPU wires the register-folding dispatch at 0x2000-0x3FFF to p.
func (b *Bus) AttachPPU(p PPU) {
	b.ppu = p
}

// AttachJoypad wires 0x4016 to the given controller shift register.
func (b *Bus) AttachJoypad(pad Joypad) {
	b.pad1 = pad
}

// SetPrgRomBank1 installs the 16 KiB bank mapped at 0x8000-0xBFFF.
func (b *Bus) SetPrgRomBank1(bank []uint8) {
	b.bank1 = bank
}

// SetPrgRomBank2 installs the 16 KiB bank mapped at 0xC000-0xFFFF.
func (b *Bus) SetPrgRomBank2(bank []uint8) {
	b.bank2 = bank
}

// InitialProgramCounter reads the reset vector out of bank 2, the way a
// real NES derives its boot address without a dedicated reset-vector API.
func (b *Bus) InitialProgramCounter() uint16 {
	lo := uint16(b.Read(0xFFFC))
	hi := uint16(b.Read(0xFFFD))
	return (hi << 8) | lo
}

// Read implements cpu6502.Bus.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= maxRAM:
		return b.ram[addr&0x07FF]
	case addr <= maxPPUMir:
		return b.readPPU(addr&7 | 0x2000)
	case addr == oamDMA:
		return b.openBus(addr) // write-only port
	case addr >= apuIOLow && addr <= apuIOHigh:
		return b.readIO(addr)
	case addr <= maxIO:
		return b.openBus(addr)
	case addr >= prgBank1Lo && addr <= prgBank1Hi:
		return b.readBank(b.bank1, addr-prgBank1Lo)
	case addr >= prgBank2Lo:
		return b.readBank(b.bank2, addr-prgBank2Lo)
	}
	return b.openBus(addr)
}

// Write implements cpu6502.Bus.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr <= maxRAM:
		b.ram[addr&0x07FF] = val
	case addr <= maxPPUMir:
		b.writePPU(addr&7|0x2000, val)
	case addr == oamDMA:
		b.runOAMDMA(val)
	case addr >= apuIOLow && addr <= apuIOHigh:
		b.writeIO(addr, val)
	case addr <= maxIO:
		// accepted and discarded
	case addr >= prgBank1Lo:
		// writes to ROM are silently ignored
	}
}

// readIO dispatches 0x4015-0x4017: the controller port reads 0 with no
// joypad attached, while the APU ports read as open bus.
func (b *Bus) readIO(addr uint16) uint8 {
	if addr == 0x4016 {
		if b.pad1 != nil {
			return b.pad1.Read()
		}
		return 0
	}
	return b.openBus(addr)
}

func (b *Bus) writeIO(addr uint16, val uint8) {
	if addr == 0x4016 && b.pad1 != nil {
		b.pad1.Write(val)
	}
}

// runOAMDMA copies 256 bytes from the page (val<<8) into OAM through the
// OAMDATA port, which is what advances the PPU's internal OAM address one
// byte at a time; it then performs a dummy read of address 0 to model the
// one-cycle alignment the real DMA unit incurs.
func (b *Bus) runOAMDMA(val uint8) {
	base := uint16(val) << 8
	for i := 0; i < 256; i++ {
		b.writePPU(0x2004, b.Read(base+uint16(i)))
	}
	b.Read(0)
}

func (b *Bus) readBank(bank []uint8, offset uint16) uint8 {
	if bank == nil || int(offset) >= len(bank) {
		return b.openBus(offset)
	}
	return bank[offset]
}

func (b *Bus) readPPU(reg uint16) uint8 {
	if b.ppu == nil {
		return b.openBus(reg)
	}
	switch reg {
	case 0x2002:
		return b.ppu.ReadStatus()
	case 0x2004:
		return b.ppu.ReadOamData()
	case 0x2007:
		return b.ppu.ReadPpuData()
	}
	return b.openBus(reg)
}

func (b *Bus) writePPU(reg uint16, val uint8) {
	if b.ppu == nil {
		return
	}
	switch reg {
	case 0x2000:
		b.ppu.WriteCtrl(val)
	case 0x2001:
		b.ppu.WriteMask(val)
	case 0x2003:
		b.ppu.WriteOamAddr(val)
	case 0x2004:
		b.ppu.WriteOamData(val)
	case 0x2005:
		b.ppu.WriteScroll(val)
	case 0x2006:
		b.ppu.WritePpuAddr(val)
	case 0x2007:
		b.ppu.WritePpuData(val)
	}
}

// openBus logs once per address and returns 0, the Diagnostic error class:
// absorbed to preserve forward progress of the guest program.
func (b *Bus) openBus(addr uint16) uint8 {
	if !b.loggedOpenBus[addr] {
		b.loggedOpenBus[addr] = true
		log.Printf("bus: open-bus read at 0x%04X", addr)
	}
	return 0
}
