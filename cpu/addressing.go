package cpu

import "github.com/jameskmurphy/nes/bits"

// AddrMode identifies how an instruction's operand address is formed.
// Passed to exec funcs so the handful of instructions that behave
// differently in Accumulator mode (ASL/LSR/ROL/ROR) can tell it apart from
// a memory operand.
type AddrMode uint8

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX
	IndirectY
	Relative
)

// decodeOperand consumes the instruction's operand bytes from PC and
// returns the effective address (unused for Implied/Accumulator), whether
// forming it crossed a page boundary, and the mode itself.
func (c *Cpu) decodeOperand(mode AddrMode) (addr uint16, pageCrossed bool, m AddrMode) {
	switch mode {
	case Implied, Accumulator:
		return 0, false, mode

	case Immediate:
		addr = c.PC
		c.PC++
		return addr, false, mode

	case ZeroPage:
		return uint16(c.fetch8()), false, mode

	case ZeroPageX:
		return uint16(c.fetch8() + c.X), false, mode

	case ZeroPageY:
		return uint16(c.fetch8() + c.Y), false, mode

	case Absolute:
		return c.fetch16(), false, mode

	case AbsoluteX:
		base := c.fetch16()
		addr = base + uint16(c.X)
		return addr, bits.CrossesPage(base, addr), mode

	case AbsoluteY:
		base := c.fetch16()
		addr = base + uint16(c.Y)
		return addr, bits.CrossesPage(base, addr), mode

	case Indirect:
		ptr := c.fetch16()
		// hardware bug: the high byte is fetched from ptr+1 wrapped within
		// the same page, so a pointer at $xxFF wraps to $xx00, not $(xx+1)00.
		hiAddr := (ptr & 0xFF00) | ((ptr + 1) & 0x00FF)
		lo := uint16(c.read(ptr))
		hi := uint16(c.read(hiAddr))
		return lo | hi<<8, false, mode

	case IndirectX:
		zp := c.fetch8() + c.X
		lo := uint16(c.read(uint16(zp)))
		hi := uint16(c.read(uint16(zp + 1)))
		return lo | hi<<8, false, mode

	case IndirectY:
		zp := c.fetch8()
		lo := uint16(c.read(uint16(zp)))
		hi := uint16(c.read(uint16(zp + 1)))
		base := lo | hi<<8
		addr = base + uint16(c.Y)
		return addr, bits.CrossesPage(base, addr), mode

	case Relative:
		offset := int8(c.fetch8())
		return c.PC + uint16(offset), false, mode
	}
	return 0, false, mode
}
