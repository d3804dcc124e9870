// Package cpu6502 implements the MOS Technology 6502 processor core used by
// the NES: registers, flags, the 256-entry opcode dispatch table, and the
// addressing modes each instruction consumes its operands through.
//
// https://en.wikipedia.org/wiki/MOS_Technology_6502
// https://www.nesdev.org/obelisk-6502-guide/reference.html
package cpu6502

import (
	"errors"
	"fmt"
	"reflect"
)

// 6502 interrupt vectors.
// https://en.wikipedia.org/wiki/Interrupts_in_65xx_processors
const (
	VectorNMI   = 0xFFFA
	VectorReset = 0xFFFC
	VectorIRQ   = 0xFFFE
	VectorBRK   = VectorIRQ
)

// Processor status flags, bit-packed into F.
// https://www.nesdev.org/obelisk-6502-guide/registers.html
const (
	FlagCarry            = 1 << 0 // C
	FlagZero             = 1 << 1 // Z
	FlagInterruptDisable = 1 << 2 // I
	FlagDecimal          = 1 << 3 // D - inert on this chip variant, still settable
	FlagBreak            = 1 << 4 // B
	FlagUnused           = 1 << 5 // always reads 1
	FlagOverflow         = 1 << 6 // V
	FlagNegative         = 1 << 7 // N
)

// StackPage is the fixed page the hardware stack lives in.
const StackPage = 0x0100

// Addressing modes. 13 in total, matching the ISA the core implements.
const (
	Implicit = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX // Indexed Indirect, (zp,X)
	IndirectY // Indirect Indexed, (zp),Y
	Relative
)

// Bus is the memory the CPU reads opcodes and operands through and writes
// results to. The CPU holds a non-owning reference; Bus owns all backing
// storage, per the ownership split in the core's data model.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// ErrUnimplementedOpcode is wrapped with the offending opcode and PC when an
// opcode outside the implemented set is fetched.
var ErrUnimplementedOpcode = errors.New("unimplemented opcode")

// ErrZeroCycleOpcode is wrapped the same way when an implemented opcode's
// base-cycle table entry is zero, which should never happen for a correctly
// populated table; it is a defensive fatal, not a reachable condition.
var ErrZeroCycleOpcode = errors.New("zero-cycle opcode executed")

// CPU holds all 6502 register state. It does not own any memory; all reads
// and writes are routed through Bus.
type CPU struct {
	A, X, Y uint8
	S       uint8
	F       uint8
	PC      uint16

	bus Bus

	nmiPending bool

	// extraCycles accumulates the branch-taken penalty (+1 same page,
	// +2 page cross); Step folds it into the instruction's base-cycle
	// cost and resets it. Indexed addressing modes carry no page-cross
	// penalty — the base-cycle table is the whole cost for them.
	extraCycles uint8
}

// New constructs a CPU wired to bus and performs a reset.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	return c
}

func (c *CPU) String() string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X S=%02X PC=%04X F=%s", c.A, c.X, c.Y, c.S, c.PC, statusString(c.F))
}

func statusString(f uint8) string {
	letters := [8]byte{'N', 'V', '-', 'B', 'D', 'I', 'Z', 'C'}
	bits := [8]uint8{FlagNegative, FlagOverflow, FlagUnused, FlagBreak, FlagDecimal, FlagInterruptDisable, FlagZero, FlagCarry}
	out := make([]byte, 8)
	for i, bit := range bits {
		if f&bit != 0 {
			out[i] = letters[i]
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// Reset restores the power-on/reset register state: PC from the reset
// vector, A=X=Y=S=0, F=0x20 (only the always-set reserved bit). This
// deliberately does not set the Interrupt-disable flag.
func (c *CPU) Reset() {
	c.A, c.X, c.Y, c.S = 0, 0, 0, 0
	c.F = FlagUnused
	c.PC = c.readWord(VectorReset)
	c.extraCycles = 0
}

// RequestNMI latches a pending non-maskable interrupt. It is serviced at the
// next Step boundary, before the next opcode is fetched.
func (c *CPU) RequestNMI() {
	c.nmiPending = true
}

// Step executes exactly one instruction and returns the number of cycles it
// consumed. If an NMI was latched, that call services the NMI instead (7
// cycles) and no opcode is fetched until the following call.
func (c *CPU) Step() (uint8, error) {
	if c.nmiPending {
		c.nmiPending = false
		return c.serviceNMI(), nil
	}

	raw := c.bus.Read(c.PC)
	op := opcodeTable[raw]
	if !op.implemented {
		return 0, fmt.Errorf("%w: opcode 0x%02X at PC=0x%04X", ErrUnimplementedOpcode, raw, c.PC)
	}
	if op.cycles == 0 {
		return 0, fmt.Errorf("%w: opcode 0x%02X (%s) at PC=0x%04X", ErrZeroCycleOpcode, raw, op.name, c.PC)
	}

	c.PC++
	before := c.PC
	c.extraCycles = 0

	method := reflect.ValueOf(c).MethodByName(op.name)
	method.Call([]reflect.Value{reflect.ValueOf(op.mode)})

	// Instructions that didn't branch/jump need PC advanced past their
	// remaining operand bytes; the opcode byte itself was already
	// consumed above.
	if c.PC == before {
		c.PC += uint16(op.bytes) - 1
	}

	return op.cycles + c.extraCycles, nil
}

// serviceNMI pushes PC high-then-low and F, sets the Interrupt-disable
// flag, and loads PC from the NMI vector. Costs 7 cycles.
func (c *CPU) serviceNMI() uint8 {
	c.pushAddress(c.PC)
	c.pushStack(c.F)
	c.setFlags(FlagInterruptDisable)
	c.PC = c.readWord(VectorNMI)
	return 7
}

func (c *CPU) read(addr uint16) uint8 {
	return c.bus.Read(addr)
}

func (c *CPU) write(addr uint16, val uint8) {
	c.bus.Write(addr, val)
}

// readWord reads a little-endian 16-bit word.
func (c *CPU) readWord(addr uint16) uint16 {
	lo := uint16(c.read(addr))
	hi := uint16(c.read(addr + 1))
	return (hi << 8) | lo
}

func (c *CPU) stackAddr() uint16 {
	return StackPage | uint16(c.S)
}

// StackAddr exposes the current top-of-stack address, mainly for debugging
// and tests.
func (c *CPU) StackAddr() uint16 {
	return c.stackAddr()
}

func (c *CPU) pushStack(val uint8) {
	c.write(c.stackAddr(), val)
	c.S--
}

func (c *CPU) popStack() uint8 {
	c.S++
	return c.read(c.stackAddr())
}

// pushAddress pushes addr high byte first, then low byte, matching JSR/NMI
// sequencing.
func (c *CPU) pushAddress(addr uint16) {
	c.pushStack(uint8(addr >> 8))
	c.pushStack(uint8(addr))
}

// popAddress pops low byte then high byte.
func (c *CPU) popAddress() uint16 {
	lo := uint16(c.popStack())
	hi := uint16(c.popStack())
	return (hi << 8) | lo
}

func (c *CPU) setFlags(mask uint8) {
	c.F |= mask
}

func (c *CPU) clearFlags(mask uint8) {
	c.F &^= mask
}

// setNZ sets the Zero and Negative flags from the low 8 bits of v.
func (c *CPU) setNZ(v uint8) {
	if v == 0 {
		c.setFlags(FlagZero)
	} else {
		c.clearFlags(FlagZero)
	}
	if v&0x80 != 0 {
		c.setFlags(FlagNegative)
	} else {
		c.clearFlags(FlagNegative)
	}
}

// pageCrossed reports whether a and b fall in different 256-byte pages.
func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}
