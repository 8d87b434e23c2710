package cpu

// operand reads the effective operand byte for read-class instructions;
// Accumulator mode instructions never call this, they read c.A directly.
func (c *Cpu) operand(addr uint16) uint8 { return c.read(addr) }

func opLDA(c *Cpu, addr uint16, _ AddrMode) { c.A = c.operand(addr); c.setZN(c.A) }
func opLDX(c *Cpu, addr uint16, _ AddrMode) { c.X = c.operand(addr); c.setZN(c.X) }
func opLDY(c *Cpu, addr uint16, _ AddrMode) { c.Y = c.operand(addr); c.setZN(c.Y) }
func opSTA(c *Cpu, addr uint16, _ AddrMode) { c.write(addr, c.A) }
func opSTX(c *Cpu, addr uint16, _ AddrMode) { c.write(addr, c.X) }
func opSTY(c *Cpu, addr uint16, _ AddrMode) { c.write(addr, c.Y) }

func opTAX(c *Cpu, _ uint16, _ AddrMode) { c.X = c.A; c.setZN(c.X) }
func opTXA(c *Cpu, _ uint16, _ AddrMode) { c.A = c.X; c.setZN(c.A) }
func opTAY(c *Cpu, _ uint16, _ AddrMode) { c.Y = c.A; c.setZN(c.Y) }
func opTYA(c *Cpu, _ uint16, _ AddrMode) { c.A = c.Y; c.setZN(c.A) }
func opTSX(c *Cpu, _ uint16, _ AddrMode) { c.X = c.SP; c.setZN(c.X) }
func opTXS(c *Cpu, _ uint16, _ AddrMode) { c.SP = c.X }

func opPHA(c *Cpu, _ uint16, _ AddrMode) { c.push(c.A) }
func opPLA(c *Cpu, _ uint16, _ AddrMode) { c.A = c.pop(); c.setZN(c.A) }
func opPHP(c *Cpu, _ uint16, _ AddrMode) { c.push(c.P | flagB | flagU) }
func opPLP(c *Cpu, _ uint16, _ AddrMode) {
	c.P = (c.pop() &^ flagB) | flagU
}

func (c *Cpu) adc(v uint8) {
	carry := uint16(0)
	if c.getFlag(flagC) {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.setFlag(flagC, sum > 0xFF)
	c.setFlag(flagV, (c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0)
	c.A = result
	c.setZN(c.A)
}

func (c *Cpu) sbc(v uint8) { c.adc(^v) }

func opADC(c *Cpu, addr uint16, _ AddrMode) { c.adc(c.operand(addr)) }
func opSBC(c *Cpu, addr uint16, _ AddrMode) { c.sbc(c.operand(addr)) }

func opINX(c *Cpu, _ uint16, _ AddrMode) { c.X++; c.setZN(c.X) }
func opINY(c *Cpu, _ uint16, _ AddrMode) { c.Y++; c.setZN(c.Y) }
func opDEX(c *Cpu, _ uint16, _ AddrMode) { c.X--; c.setZN(c.X) }
func opDEY(c *Cpu, _ uint16, _ AddrMode) { c.Y--; c.setZN(c.Y) }

func opINC(c *Cpu, addr uint16, _ AddrMode) {
	v := c.operand(addr) + 1
	c.write(addr, v)
	c.setZN(v)
}
func opDEC(c *Cpu, addr uint16, _ AddrMode) {
	v := c.operand(addr) - 1
	c.write(addr, v)
	c.setZN(v)
}

func (c *Cpu) asl(v uint8) uint8 {
	c.setFlag(flagC, v&0x80 != 0)
	r := v << 1
	c.setZN(r)
	return r
}
func (c *Cpu) lsr(v uint8) uint8 {
	c.setFlag(flagC, v&0x01 != 0)
	r := v >> 1
	c.setZN(r)
	return r
}
func (c *Cpu) rol(v uint8) uint8 {
	carryIn := uint8(0)
	if c.getFlag(flagC) {
		carryIn = 1
	}
	c.setFlag(flagC, v&0x80 != 0)
	r := (v << 1) | carryIn
	c.setZN(r)
	return r
}
func (c *Cpu) ror(v uint8) uint8 {
	carryIn := uint8(0)
	if c.getFlag(flagC) {
		carryIn = 0x80
	}
	c.setFlag(flagC, v&0x01 != 0)
	r := (v >> 1) | carryIn
	c.setZN(r)
	return r
}

func opASL(c *Cpu, addr uint16, mode AddrMode) { shiftInPlace(c, addr, mode, c.asl) }
func opLSR(c *Cpu, addr uint16, mode AddrMode) { shiftInPlace(c, addr, mode, c.lsr) }
func opROL(c *Cpu, addr uint16, mode AddrMode) { shiftInPlace(c, addr, mode, c.rol) }
func opROR(c *Cpu, addr uint16, mode AddrMode) { shiftInPlace(c, addr, mode, c.ror) }

func shiftInPlace(c *Cpu, addr uint16, mode AddrMode, f func(uint8) uint8) {
	if mode == Accumulator {
		c.A = f(c.A)
		return
	}
	c.write(addr, f(c.operand(addr)))
}

func opAND(c *Cpu, addr uint16, _ AddrMode) { c.A &= c.operand(addr); c.setZN(c.A) }
func opORA(c *Cpu, addr uint16, _ AddrMode) { c.A |= c.operand(addr); c.setZN(c.A) }
func opEOR(c *Cpu, addr uint16, _ AddrMode) { c.A ^= c.operand(addr); c.setZN(c.A) }

func (c *Cpu) compare(reg, v uint8) {
	r := reg - v
	c.setFlag(flagC, reg >= v)
	c.setZN(r)
}
func opCMP(c *Cpu, addr uint16, _ AddrMode) { c.compare(c.A, c.operand(addr)) }
func opCPX(c *Cpu, addr uint16, _ AddrMode) { c.compare(c.X, c.operand(addr)) }
func opCPY(c *Cpu, addr uint16, _ AddrMode) { c.compare(c.Y, c.operand(addr)) }

func opBIT(c *Cpu, addr uint16, _ AddrMode) {
	v := c.operand(addr)
	c.setFlag(flagZ, c.A&v == 0)
	c.setFlag(flagV, v&0x40 != 0)
	c.setFlag(flagN, v&0x80 != 0)
}

// branch takes the branch if cond, charging +1 cycle for the taken branch
// and an additional +1 if the new PC crosses a page, per spec.md §4.1.
func (c *Cpu) branch(addr uint16, cond bool) {
	if !cond {
		return
	}
	old := c.PC
	c.cycles++
	if old&0xFF00 != addr&0xFF00 {
		c.cycles++
	}
	c.PC = addr
}

func opBCC(c *Cpu, addr uint16, _ AddrMode) { c.branch(addr, !c.getFlag(flagC)) }
func opBCS(c *Cpu, addr uint16, _ AddrMode) { c.branch(addr, c.getFlag(flagC)) }
func opBEQ(c *Cpu, addr uint16, _ AddrMode) { c.branch(addr, c.getFlag(flagZ)) }
func opBNE(c *Cpu, addr uint16, _ AddrMode) { c.branch(addr, !c.getFlag(flagZ)) }
func opBMI(c *Cpu, addr uint16, _ AddrMode) { c.branch(addr, c.getFlag(flagN)) }
func opBPL(c *Cpu, addr uint16, _ AddrMode) { c.branch(addr, !c.getFlag(flagN)) }
func opBVC(c *Cpu, addr uint16, _ AddrMode) { c.branch(addr, !c.getFlag(flagV)) }
func opBVS(c *Cpu, addr uint16, _ AddrMode) { c.branch(addr, c.getFlag(flagV)) }

func opJMP(c *Cpu, addr uint16, _ AddrMode) { c.PC = addr }
func opJSR(c *Cpu, addr uint16, _ AddrMode) {
	c.push16(c.PC - 1)
	c.PC = addr
}
func opRTS(c *Cpu, _ uint16, _ AddrMode) { c.PC = c.pop16() + 1 }

func opBRK(c *Cpu, _ uint16, _ AddrMode) {
	c.PC++ // BRK's signature byte is skipped on return, per the 6502 manual
	c.push16(c.PC)
	c.push(c.P | flagB | flagU)
	c.setFlag(flagI, true)
	c.PC = c.read16(irqVector)
}
func opRTI(c *Cpu, _ uint16, _ AddrMode) {
	c.P = (c.pop() &^ flagB) | flagU
	c.PC = c.pop16()
}

func opCLC(c *Cpu, _ uint16, _ AddrMode) { c.setFlag(flagC, false) }
func opSEC(c *Cpu, _ uint16, _ AddrMode) { c.setFlag(flagC, true) }
func opCLI(c *Cpu, _ uint16, _ AddrMode) { c.setFlag(flagI, false) }
func opSEI(c *Cpu, _ uint16, _ AddrMode) { c.setFlag(flagI, true) }
func opCLD(c *Cpu, _ uint16, _ AddrMode) { c.setFlag(flagD, false) }
func opSED(c *Cpu, _ uint16, _ AddrMode) { c.setFlag(flagD, true) }
func opCLV(c *Cpu, _ uint16, _ AddrMode) { c.setFlag(flagV, false) }

func opNOP(c *Cpu, _ uint16, _ AddrMode) {}

// opKIL implements the illegal halt-and-catch-fire opcodes ($02,$12,$22...):
// the real chip locks the address/data bus and never executes another
// instruction short of a reset.
func opKIL(c *Cpu, _ uint16, _ AddrMode) { c.Halted = true }

// --- undocumented, stable across revisions ---

func opLAX(c *Cpu, addr uint16, _ AddrMode) {
	v := c.operand(addr)
	c.A, c.X = v, v
	c.setZN(v)
}
func opSAX(c *Cpu, addr uint16, _ AddrMode) { c.write(addr, c.A&c.X) }

func opDCP(c *Cpu, addr uint16, _ AddrMode) {
	v := c.operand(addr) - 1
	c.write(addr, v)
	c.compare(c.A, v)
}
func opISC(c *Cpu, addr uint16, _ AddrMode) {
	v := c.operand(addr) + 1
	c.write(addr, v)
	c.sbc(v)
}
func opSLO(c *Cpu, addr uint16, _ AddrMode) {
	v := c.asl(c.operand(addr))
	c.write(addr, v)
	c.A |= v
	c.setZN(c.A)
}
func opRLA(c *Cpu, addr uint16, _ AddrMode) {
	v := c.rol(c.operand(addr))
	c.write(addr, v)
	c.A &= v
	c.setZN(c.A)
}
func opRRA(c *Cpu, addr uint16, _ AddrMode) {
	v := c.ror(c.operand(addr))
	c.write(addr, v)
	c.adc(v)
}
func opSRE(c *Cpu, addr uint16, _ AddrMode) {
	v := c.lsr(c.operand(addr))
	c.write(addr, v)
	c.A ^= v
	c.setZN(c.A)
}

// --- undocumented, unstable across revisions: guarded by SetUnstableOpcodes ---

func opANC(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	c.A &= c.operand(addr)
	c.setFlag(flagC, c.A&0x80 != 0)
	c.setZN(c.A)
}
func opALR(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	c.A &= c.operand(addr)
	c.A = c.lsr(c.A)
}
func opARR(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	c.A &= c.operand(addr)
	c.A = c.ror(c.A)
	c.setFlag(flagC, c.A&0x40 != 0)
	c.setFlag(flagV, ((c.A>>6)^(c.A>>5))&1 != 0)
}
func opAXS(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	v := c.operand(addr)
	r := (c.A & c.X) - v
	c.setFlag(flagC, (c.A&c.X) >= v)
	c.setZN(r)
	c.X = r
}
func opLAS(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	v := c.operand(addr) & c.SP
	c.A, c.X, c.SP = v, v, v
	c.setZN(v)
}
func opATX(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	v := c.operand(addr) & c.A
	c.A, c.X = v, v
	c.setZN(v)
}
func opAXA(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	c.write(addr, c.A&c.X)
}
func opXAA(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	v := c.X & c.operand(addr)
	c.A = v
	c.setZN(v)
}
func opTAS(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	c.SP = c.A & c.X
	c.write(addr, c.SP)
}
func opSXA(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	c.write(addr, c.X&uint8(addr>>8))
}
func opSYA(c *Cpu, addr uint16, mode AddrMode) {
	if !c.unstableOpcodes {
		opNOP(c, addr, mode)
		return
	}
	c.write(addr, c.Y&uint8(addr>>8))
}
