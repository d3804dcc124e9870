package cpu6502

// opcode describes one of the 256 possible opcode bytes: the method name to
// dispatch to (empty if unimplemented), its addressing mode, the total
// instruction length in bytes (opcode byte included), and its base cycle
// cost.
type opcode struct {
	name        string
	mode        uint8
	bytes       uint8
	cycles      uint8
	implemented bool
}

// baseCycles is the 256-entry base-cycle table, indexed by opcode byte
// (row = high nibble, column = low nibble). It covers the full byte space,
// but only the entries of opcodes this core implements are ever returned to
// the scanline scheduler; a 0 entry marks a slot left undefined.
var baseCycles = [256]uint8{
	// 0x00
	7, 6, 0, 0, 0, 3, 5, 0, 3, 2, 2, 0, 0, 4, 6, 0,
	// 0x10
	2, 5, 0, 0, 0, 4, 6, 0, 2, 4, 0, 0, 0, 4, 7, 0,
	// 0x20
	6, 6, 0, 0, 3, 3, 5, 0, 4, 2, 2, 0, 4, 4, 6, 0,
	// 0x30
	2, 5, 0, 0, 0, 4, 6, 0, 2, 4, 0, 0, 0, 4, 7, 0,
	// 0x40
	13, 6, 0, 0, 0, 3, 5, 0, 3, 2, 2, 0, 3, 4, 6, 0,
	// 0x50
	2, 5, 0, 0, 0, 4, 6, 0, 2, 4, 0, 0, 0, 4, 7, 0,
	// 0x60
	6, 6, 0, 0, 0, 3, 5, 0, 4, 2, 2, 0, 5, 4, 6, 0,
	// 0x70
	2, 5, 0, 0, 0, 4, 6, 0, 2, 4, 0, 0, 0, 4, 7, 0,
	// 0x80
	0, 6, 0, 0, 3, 3, 3, 0, 2, 0, 2, 0, 4, 4, 4, 0,
	// 0x90
	2, 6, 0, 0, 4, 4, 4, 0, 2, 5, 2, 0, 0, 5, 0, 0,
	// 0xA0
	2, 6, 2, 2, 3, 3, 3, 2, 2, 2, 2, 2, 4, 4, 4, 2,
	// 0xB0
	2, 5, 2, 2, 4, 4, 4, 2, 2, 4, 2, 2, 4, 4, 4, 2,
	// 0xC0
	2, 6, 2, 2, 3, 3, 5, 2, 2, 2, 2, 2, 4, 4, 6, 2,
	// 0xD0
	2, 5, 2, 2, 2, 4, 6, 2, 2, 4, 2, 2, 2, 4, 7, 2,
	// 0xE0
	2, 6, 2, 2, 3, 3, 5, 2, 2, 2, 2, 2, 4, 4, 6, 2,
	// 0xF0
	2, 5, 2, 2, 2, 4, 6, 2, 2, 4, 2, 2, 2, 4, 7, 2,
}

// operandBytes returns the instruction length in bytes for mode, counting
// the opcode byte plus its operand bytes, for PC advancement bookkeeping.
func operandBytes(mode uint8) uint8 {
	switch mode {
	case Implicit, Accumulator:
		return 1
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, IndirectX, IndirectY, Relative:
		return 2
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 3
	}
	panic("cpu6502: invalid addressing mode")
}

func def(hex uint8, name string, mode uint8) {
	opcodeTable[hex] = opcode{
		name:        name,
		mode:        mode,
		bytes:       operandBytes(mode),
		cycles:      baseCycles[hex],
		implemented: true,
	}
}

var opcodeTable [256]opcode

func init() {
	// Loads
	for hex, mode := range map[uint8]uint8{0xA9: Immediate, 0xA5: ZeroPage, 0xB5: ZeroPageX, 0xAD: Absolute, 0xBD: AbsoluteX, 0xB9: AbsoluteY, 0xA1: IndirectX, 0xB1: IndirectY} {
		def(hex, "LDA", mode)
	}
	for hex, mode := range map[uint8]uint8{0xA2: Immediate, 0xA6: ZeroPage, 0xB6: ZeroPageY, 0xAE: Absolute, 0xBE: AbsoluteY} {
		def(hex, "LDX", mode)
	}
	for hex, mode := range map[uint8]uint8{0xA0: Immediate, 0xA4: ZeroPage, 0xB4: ZeroPageX, 0xAC: Absolute, 0xBC: AbsoluteX} {
		def(hex, "LDY", mode)
	}

	// Stores
	for hex, mode := range map[uint8]uint8{0x85: ZeroPage, 0x95: ZeroPageX, 0x8D: Absolute, 0x9D: AbsoluteX, 0x99: AbsoluteY, 0x81: IndirectX, 0x91: IndirectY} {
		def(hex, "STA", mode)
	}
	for hex, mode := range map[uint8]uint8{0x86: ZeroPage, 0x96: ZeroPageY, 0x8E: Absolute} {
		def(hex, "STX", mode)
	}
	for hex, mode := range map[uint8]uint8{0x84: ZeroPage, 0x94: ZeroPageX, 0x8C: Absolute} {
		def(hex, "STY", mode)
	}

	// Arithmetic / compare / logic
	for hex, mode := range map[uint8]uint8{0x69: Immediate, 0x65: ZeroPage, 0x75: ZeroPageX, 0x6D: Absolute, 0x7D: AbsoluteX, 0x79: AbsoluteY, 0x61: IndirectX, 0x71: IndirectY} {
		def(hex, "ADC", mode)
	}
	for hex, mode := range map[uint8]uint8{0xC9: Immediate, 0xC5: ZeroPage, 0xD5: ZeroPageX, 0xCD: Absolute, 0xDD: AbsoluteX, 0xD9: AbsoluteY, 0xC1: IndirectX, 0xD1: IndirectY} {
		def(hex, "CMP", mode)
	}
	for hex, mode := range map[uint8]uint8{0xE0: Immediate, 0xE4: ZeroPage, 0xEC: Absolute} {
		def(hex, "CPX", mode)
	}
	for hex, mode := range map[uint8]uint8{0x29: Immediate, 0x25: ZeroPage, 0x35: ZeroPageX, 0x2D: Absolute, 0x3D: AbsoluteX, 0x39: AbsoluteY, 0x21: IndirectX, 0x31: IndirectY} {
		def(hex, "AND", mode)
	}
	for hex, mode := range map[uint8]uint8{0x49: Immediate, 0x45: ZeroPage, 0x55: ZeroPageX, 0x4D: Absolute, 0x5D: AbsoluteX, 0x59: AbsoluteY, 0x41: IndirectX, 0x51: IndirectY} {
		def(hex, "EOR", mode)
	}

	// Shifts
	for hex, mode := range map[uint8]uint8{0x4A: Accumulator, 0x46: ZeroPage, 0x56: ZeroPageX, 0x4E: Absolute, 0x5E: AbsoluteX} {
		def(hex, "LSR", mode)
	}
	for hex, mode := range map[uint8]uint8{0x2A: Accumulator, 0x26: ZeroPage, 0x36: ZeroPageX, 0x2E: Absolute, 0x3E: AbsoluteX} {
		def(hex, "ROL", mode)
	}

	// Inc/Dec
	for hex, mode := range map[uint8]uint8{0xE6: ZeroPage, 0xF6: ZeroPageX, 0xEE: Absolute, 0xFE: AbsoluteX} {
		def(hex, "INC", mode)
	}
	def(0xE8, "INX", Implicit)
	def(0xC8, "INY", Implicit)
	def(0xCA, "DEX", Implicit)
	def(0x88, "DEY", Implicit)

	// Branches
	def(0x90, "BCC", Relative)
	def(0xB0, "BCS", Relative)
	def(0xF0, "BEQ", Relative)
	def(0xD0, "BNE", Relative)
	def(0x10, "BPL", Relative)

	// Flag ops
	def(0x18, "CLC", Implicit)
	def(0xD8, "CLD", Implicit)
	def(0x58, "CLI", Implicit)
	def(0xB8, "CLV", Implicit)
	def(0x78, "SEI", Implicit)

	// Transfers
	def(0xAA, "TAX", Implicit)
	def(0xA8, "TAY", Implicit)
	def(0x8A, "TXA", Implicit)
	def(0x9A, "TXS", Implicit)

	// Stack
	def(0x48, "PHA", Implicit)
	def(0x68, "PLA", Implicit)

	// Jumps/calls
	def(0x4C, "JMP", Absolute)
	def(0x6C, "JMP", Indirect)
	def(0x20, "JSR", Absolute)
	def(0x60, "RTS", Implicit)
	def(0x40, "RTI", Implicit)
}

// --- Loads ---

func (c *CPU) LDA(mode uint8) {
	c.A = c.read(c.operandAddr(mode))
	c.setNZ(c.A)
}

func (c *CPU) LDX(mode uint8) {
	c.X = c.read(c.operandAddr(mode))
	c.setNZ(c.X)
}

func (c *CPU) LDY(mode uint8) {
	c.Y = c.read(c.operandAddr(mode))
	c.setNZ(c.Y)
}

// --- Stores ---

func (c *CPU) STA(mode uint8) {
	c.write(c.operandAddr(mode), c.A)
}

func (c *CPU) STX(mode uint8) {
	c.write(c.operandAddr(mode), c.X)
}

func (c *CPU) STY(mode uint8) {
	c.write(c.operandAddr(mode), c.Y)
}

// --- Arithmetic / compare / logic ---

func (c *CPU) ADC(mode uint8) {
	c.addWithCarry(c.read(c.operandAddr(mode)))
}

func (c *CPU) CMP(mode uint8) {
	c.compare(c.A, c.read(c.operandAddr(mode)))
}

func (c *CPU) CPX(mode uint8) {
	c.compare(c.X, c.read(c.operandAddr(mode)))
}

func (c *CPU) AND(mode uint8) {
	c.A &= c.read(c.operandAddr(mode))
	c.setNZ(c.A)
}

func (c *CPU) EOR(mode uint8) {
	c.A ^= c.read(c.operandAddr(mode))
	c.setNZ(c.A)
}

// --- Shifts ---

func (c *CPU) LSR(mode uint8) {
	var old, updated uint8
	if mode == Accumulator {
		old = c.A
		c.A >>= 1
		updated = c.A
	} else {
		addr := c.operandAddr(mode)
		old = c.read(addr)
		updated = old >> 1
		c.write(addr, updated)
	}

	c.clearFlags(FlagCarry)
	c.setNZ(updated)
	if old&FlagCarry != 0 {
		c.setFlags(FlagCarry)
	}
}

func (c *CPU) ROL(mode uint8) {
	carryIn := c.F & FlagCarry
	var old, updated uint8
	if mode == Accumulator {
		old = c.A
		c.A = (old << 1) | carryIn
		updated = c.A
	} else {
		addr := c.operandAddr(mode)
		old = c.read(addr)
		updated = (old << 1) | carryIn
		c.write(addr, updated)
	}

	c.clearFlags(FlagCarry)
	c.setNZ(updated)
	if old&0x80 != 0 {
		c.setFlags(FlagCarry)
	}
}

// --- Inc/Dec ---

func (c *CPU) INC(mode uint8) {
	addr := c.operandAddr(mode)
	v := c.read(addr) + 1
	c.write(addr, v)
	c.setNZ(v)
}

func (c *CPU) INX(mode uint8) {
	c.X++
	c.setNZ(c.X)
}

func (c *CPU) INY(mode uint8) {
	c.Y++
	c.setNZ(c.Y)
}

func (c *CPU) DEX(mode uint8) {
	c.X--
	c.setNZ(c.X)
}

func (c *CPU) DEY(mode uint8) {
	c.Y--
	c.setNZ(c.Y)
}

// --- Branches ---

func (c *CPU) BCC(mode uint8) { c.branch(FlagCarry, false) }
func (c *CPU) BCS(mode uint8) { c.branch(FlagCarry, true) }
func (c *CPU) BEQ(mode uint8) { c.branch(FlagZero, true) }
func (c *CPU) BNE(mode uint8) { c.branch(FlagZero, false) }
func (c *CPU) BPL(mode uint8) { c.branch(FlagNegative, false) }

// --- Flag ops ---

func (c *CPU) CLC(mode uint8) { c.clearFlags(FlagCarry) }
func (c *CPU) CLD(mode uint8) { c.clearFlags(FlagDecimal) }
func (c *CPU) CLI(mode uint8) { c.clearFlags(FlagInterruptDisable) }
func (c *CPU) CLV(mode uint8) { c.clearFlags(FlagOverflow) }
func (c *CPU) SEI(mode uint8) { c.setFlags(FlagInterruptDisable) }

// --- Transfers ---

func (c *CPU) TAX(mode uint8) { c.X = c.A; c.setNZ(c.X) }
func (c *CPU) TAY(mode uint8) { c.Y = c.A; c.setNZ(c.Y) }
func (c *CPU) TXA(mode uint8) { c.A = c.X; c.setNZ(c.A) }
func (c *CPU) TXS(mode uint8) { c.S = c.X }

// --- Stack ---

func (c *CPU) PHA(mode uint8) { c.pushStack(c.A) }

func (c *CPU) PLA(mode uint8) {
	c.A = c.popStack()
	c.setNZ(c.A)
}

// --- Jumps/calls ---

func (c *CPU) JMP(mode uint8) {
	c.PC = c.operandAddr(mode)
}

func (c *CPU) JSR(mode uint8) {
	target := c.operandAddr(mode)
	c.pushAddress(c.PC + 1) // address of JSR's last operand byte
	c.PC = target
}

func (c *CPU) RTS(mode uint8) {
	c.PC = c.popAddress() + 1
}

func (c *CPU) RTI(mode uint8) {
	// Bit 5 of F has no physical storage and always reads back as 1,
	// whatever the popped byte says.
	c.F = c.popStack() | FlagUnused
	c.PC = c.popAddress()
}
