// Package cpu implements the MOS 6502 core clocked by the NES (no binary
// coded decimal mode, no NMOS halt-and-catch-fire recovery). Grounded in
// the teacher's lib/cpu/register.go for the flag-bit naming convention and
// nes/cpu/cpu.go for the instruction-table dispatch shape, rewritten with
// cycle-accurate addressing and the undocumented opcodes spec.md §4.1
// requires that the teacher never implemented.
package cpu

// Flag bit positions within the processor status register, matching the
// teacher's lib/cpu/register.go naming.
const (
	C = 0 // Carry
	Z = 1 // Zero
	I = 2 // Interrupt disable
	D = 3 // Decimal (accepted, has no effect on NES hardware)
	B = 4 // Break (only meaningful in the pushed copy)
	U = 5 // Unused, always reads 1
	V = 6 // Overflow
	N = 7 // Negative

	flagC = 1 << C
	flagZ = 1 << Z
	flagI = 1 << I
	flagD = 1 << D
	flagB = 1 << B
	flagU = 1 << U
	flagV = 1 << V
	flagN = 1 << N
)

// Registers holds the 6502's visible register file.
type Registers struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8 // processor status, flagX bits above
}

func (r *Registers) getFlag(bit uint8) bool { return r.P&bit != 0 }

func (r *Registers) setFlag(bit uint8, on bool) {
	if on {
		r.P |= bit
	} else {
		r.P &^= bit
	}
}

func (r *Registers) setZN(v uint8) {
	r.setFlag(flagZ, v == 0)
	r.setFlag(flagN, v&0x80 != 0)
}
