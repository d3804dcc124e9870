package cpu6502

import (
	"errors"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCPU(resetVector uint16) (*CPU, *flatBus) {
	b := &flatBus{}
	b.setResetVector(resetVector)
	return New(b), b
}

func TestResetState(t *testing.T) {
	c, _ := newTestCPU(0x8000)

	assert.Equal(t, uint16(0x8000), c.PC)
	assert.Zero(t, c.A)
	assert.Zero(t, c.X)
	assert.Zero(t, c.Y)
	assert.Zero(t, c.S)
	assert.Equal(t, uint8(FlagUnused), c.F)
}

func TestLdaImmediateSetsNZForAllBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		c, bus := newTestCPU(0x8000)
		bus.load(0x8000, 0xA9, uint8(b))

		_, err := c.Step()
		require.NoError(t, err)

		assert.Equal(t, uint8(b), c.A)
		assert.Equal(t, b == 0, c.F&FlagZero != 0, "Z for byte 0x%02X", b)
		assert.Equal(t, b>>7 == 1, c.F&FlagNegative != 0, "N for byte 0x%02X", b)
	}
}

func TestLdaStaLda(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0xA9, 0x42, 0x85, 0x10, 0xA5, 0x10)

	for i := 0; i < 3; i++ {
		_, err := c.Step()
		require.NoError(t, err)
	}

	assert.Equal(t, uint8(0x42), c.A)
	assert.Equal(t, uint8(0x42), bus.mem[0x10])
	assert.Zero(t, c.F&FlagZero)
	assert.Zero(t, c.F&FlagNegative)
}

func TestBeqSkipsOverBranch(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0xA9, 0x00, 0xF0, 0x02, 0xA9, 0xFF, 0x00)

	_, err := c.Step() // LDA #0
	require.NoError(t, err)
	assert.Equal(t, uint8(FlagZero|FlagUnused), c.F)

	_, err = c.Step() // BEQ +2, taken
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8006), c.PC)

	_, err = c.Step() // opcode at 0x8006 is BRK (0x00), unimplemented here
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnimplementedOpcode))
	assert.Equal(t, uint8(0x00), c.A)
}

func TestDexBneLoop(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0xA2, 0x03, 0xCA, 0xD0, 0xFD)

	var total uint8
	n, err := c.Step() // LDX #3
	require.NoError(t, err)
	total += n

	for i := 0; i < 6; i++ {
		n, err := c.Step()
		require.NoError(t, err)
		total += n
		if c.X == 0 && c.PC == 0x8005 {
			break
		}
	}

	assert.Zero(t, c.X)
	assert.NotZero(t, c.F&FlagZero)
	assert.Equal(t, uint8(16), total)
}

func TestBranchPageCrossCost(t *testing.T) {
	c, bus := newTestCPU(0x80FE)
	bus.load(0x80FE, 0xF0, 0x04) // BEQ +4 from 0x80FE
	c.F |= FlagZero

	n, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(4), n)
	assert.Equal(t, uint16(0x8104), c.PC)

	c2, bus2 := newTestCPU(0x8080)
	bus2.load(0x8080, 0xF0, 0x04)
	c2.F |= FlagZero

	n2, err := c2.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), n2)
	assert.Equal(t, uint16(0x8086), c2.PC)
}

func TestPhaPlaRoundTrip(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0xA9, 0x99, 0x48, 0xA9, 0x00, 0x68)

	startS := c.S
	for i := 0; i < 4; i++ {
		_, err := c.Step()
		require.NoError(t, err)
	}

	assert.Equal(t, uint8(0x99), c.A)
	assert.Equal(t, startS, c.S)
	assert.NotZero(t, c.F&FlagNegative)
	assert.Zero(t, c.F&FlagZero)
}

func TestJsrRts(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	bus.load(0x9000, 0x60)             // RTS

	startS := c.S
	_, err := c.Step() // JSR
	require.NoError(t, err)
	assert.Equal(t, uint16(0x9000), c.PC)

	_, err = c.Step() // RTS
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8003), c.PC)
	assert.Equal(t, startS, c.S)
}

func TestAdcFlags(t *testing.T) {
	tests := []struct {
		a, m, carry  uint8
		wantA        uint8
		wantC, wantV bool
	}{
		{0x50, 0x10, 0, 0x60, false, false},
		{0x50, 0x50, 0, 0xA0, false, true},
		{0xFF, 0x01, 0, 0x00, true, false},
		{0x7F, 0x01, 0, 0x80, false, true},
	}

	for _, tc := range tests {
		c, _ := newTestCPU(0x8000)
		c.A = tc.a
		if tc.carry != 0 {
			c.F |= FlagCarry
		}
		c.addWithCarry(tc.m)

		assert.Equal(t, tc.wantA, c.A)
		assert.Equal(t, tc.wantC, c.F&FlagCarry != 0)
		assert.Equal(t, tc.wantV, c.F&FlagOverflow != 0)
	}
}

func TestCmpCarryOnNoBorrow(t *testing.T) {
	c, _ := newTestCPU(0x8000)
	c.A = 0x10
	c.compare(c.A, 0x05)
	assert.NotZero(t, c.F&FlagCarry)

	c.compare(c.A, 0x20)
	assert.Zero(t, c.F&FlagCarry)
}

func TestNmiSequencing(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.mem[VectorNMI] = 0x00
	bus.mem[VectorNMI+1] = 0x90

	c.RequestNMI()
	n, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), n)
	assert.Equal(t, uint16(0x9000), c.PC)
	assert.NotZero(t, c.F&FlagInterruptDisable)

	// PCH, PCL, F were pushed: S decremented by 3 from its pre-NMI value.
	assert.Equal(t, uint8(0xFD), c.S)
}

// TestGoldenRegisterState diffs the whole register file against a golden
// snapshot at once instead of asserting field by field.
func TestGoldenRegisterState(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0xA9, 0x07, 0xAA, 0xA8)
	for i := 0; i < 3; i++ {
		_, err := c.Step()
		require.NoError(t, err)
	}

	want := &CPU{A: 0x07, X: 0x07, Y: 0x07, S: 0, F: FlagUnused, PC: 0x8004}
	got := &CPU{A: c.A, X: c.X, Y: c.Y, S: c.S, F: c.F, PC: c.PC}

	if diff := deep.Equal(want, got); diff != nil {
		t.Errorf("register state diverged: %v", diff)
	}
}

func TestRtiRestoresFlagsAndPC(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0x40) // RTI

	// Stack holds F, PCL, PCH from an interrupt entry; the pushed F has
	// bit 5 clear to prove the pop forces it back on.
	c.S = 0xFC
	bus.mem[0x01FD] = FlagCarry | FlagZero
	bus.mem[0x01FE] = 0x34
	bus.mem[0x01FF] = 0x12

	_, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), c.PC)
	assert.Equal(t, uint8(FlagCarry|FlagZero|FlagUnused), c.F)
	assert.Equal(t, uint8(0xFF), c.S)
}

func TestUnimplementedOpcodeIsFatal(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0x02) // not in the implemented set
	_, err := c.Step()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnimplementedOpcode))
}
