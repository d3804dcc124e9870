package cpu6502

// branch evaluates mask&F against want; if they match the branch is taken:
// the signed displacement is read and PC retargeted, with a page-cross
// penalty measured against the opcode's own address, not the address of
// the instruction following it: +1 cycle if the branch target shares a
// page with the opcode byte, +2 if it doesn't. An untaken branch costs
// only the opcode table's base cycles.
func (c *CPU) branch(mask uint8, want bool) {
	opcodeAddr := c.PC - 1
	if (c.F&mask != 0) != want {
		return
	}

	target := c.operandAddr(Relative)
	if pageCrossed(opcodeAddr, target) {
		c.extraCycles += 2
	} else {
		c.extraCycles += 1
	}
	c.PC = target
}
