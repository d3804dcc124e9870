package cpu6502

// operandAddr resolves the effective address for mode, consuming the
// operand bytes at PC (without advancing PC itself — Step advances PC past
// the whole instruction once execution returns). Accumulator and Implicit
// modes have no address and must not call this.
//
// (zp,X) and (zp),Y both dereference a full 16-bit pointer out of zero
// page; zero-page indexed addressing wraps modulo 256; Indirect does not
// reproduce the page-boundary fetch bug real 6502 hardware has.
func (c *CPU) operandAddr(mode uint8) uint16 {
	switch mode {
	case Immediate:
		return c.PC
	case ZeroPage:
		return uint16(c.read(c.PC))
	case ZeroPageX:
		return uint16(c.read(c.PC) + c.X)
	case ZeroPageY:
		return uint16(c.read(c.PC) + c.Y)
	case Absolute:
		return c.readWord(c.PC)
	case AbsoluteX:
		return c.readWord(c.PC) + uint16(c.X)
	case AbsoluteY:
		return c.readWord(c.PC) + uint16(c.Y)
	case Indirect:
		ptr := c.readWord(c.PC)
		return c.readWord(ptr)
	case IndirectX:
		ptr := uint16(c.read(c.PC) + c.X)
		return c.readWord(ptr)
	case IndirectY:
		ptr := uint16(c.read(c.PC))
		return c.readWord(ptr) + uint16(c.Y)
	case Relative:
		// Relative to PC *after* the displacement byte, which Step
		// will only advance past once this instruction returns — so
		// account for the one operand byte here.
		disp := int8(c.read(c.PC))
		return (c.PC + 1) + uint16(disp)
	}

	panic("cpu6502: invalid addressing mode")
}
