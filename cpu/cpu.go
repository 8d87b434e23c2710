package cpu

import "github.com/jameskmurphy/nes/interrupts"

// Memory is the CPU's view of the address bus. Bus implements this; the
// CPU never knows it is talking to RAM, a mapper, or a PPU register.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

const (
	resetVector = 0xFFFC
	nmiVector   = 0xFFFA
	irqVector   = 0xFFFE
)

// Cpu is the MOS 6502 instruction interpreter. Step executes exactly one
// instruction and returns the cycles it took; the console is responsible for
// calling TriggerNMI/TriggerIRQ/DMAPause at the right points between steps
// rather than the CPU polling interrupt lines itself mid-instruction.
type Cpu struct {
	Registers

	mem Memory
	irq *interrupts.Lines

	// Halted is set by KIL/JAM opcodes (spec.md §4.1 edge case); Step
	// becomes a no-op returning 1 cycle once set, matching real hardware
	// wedging until a reset.
	Halted bool

	// StrictStack causes a push past $0100 or a pull past $01FF to be
	// recorded in Errors instead of silently wrapping. Off by default:
	// real 6502 hardware wraps silently and many ROMs rely on it
	// transiently.
	StrictStack bool

	// Errors accumulates stack-underflow/overflow violations recorded
	// while StrictStack is on. The host decides what to do with them;
	// the CPU itself keeps running either way.
	Errors []string

	unstableOpcodes bool

	cycles      uint64 // cost of the instruction currently executing
	totalCycles uint64 // running count, used only for OAM DMA odd/even parity
}

// New builds a Cpu reading and writing through mem, observing irq for NMI
// edge detection performed by the PPU.
func New(mem Memory, irq *interrupts.Lines) *Cpu {
	return &Cpu{mem: mem, irq: irq}
}

// SetUnstableOpcodes enables the level-2 undocumented opcodes (ANC, ARR,
// ASR/ALR, ATX/LXA, AXS/SBX, LAS, and the highly unstable AHX/XAA/TAS/SHS
// family) whose exact behavior varies across physical chip revisions.
// Disabled by default; when disabled these opcodes behave as NOPs of
// their instruction length, never crash, never implement their documented
// side effects.
func (c *Cpu) SetUnstableOpcodes(on bool) { c.unstableOpcodes = on }

func (c *Cpu) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = flagI | flagU
	c.PC = c.read16(resetVector)
	c.Halted = false
	c.cycles = 0
	c.totalCycles = 0
}

// AddCycles folds externally-consumed cycles (NMI/IRQ service, DMA pauses)
// into the running total so later OAM DMA parity checks stay accurate.
func (c *Cpu) AddCycles(n int) { c.totalCycles += uint64(n) }

// Snapshot is the save-state view of Cpu.
type Snapshot struct {
	A, X, Y, SP uint8
	PC          uint16
	P           uint8
	Halted      bool
	TotalCycles uint64
}

func (c *Cpu) Snapshot() Snapshot {
	return Snapshot{A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, P: c.P, Halted: c.Halted, TotalCycles: c.totalCycles}
}

func (c *Cpu) Restore(s Snapshot) {
	c.A, c.X, c.Y, c.SP, c.PC, c.P = s.A, s.X, s.Y, s.SP, s.PC, s.P
	c.Halted = s.Halted
	c.totalCycles = s.TotalCycles
	c.cycles = 0
}

func (c *Cpu) read(addr uint16) uint8     { return c.mem.Read(addr) }
func (c *Cpu) write(addr uint16, v uint8) { c.mem.Write(addr, v) }

func (c *Cpu) read16(addr uint16) uint16 {
	lo := uint16(c.read(addr))
	hi := uint16(c.read(addr + 1))
	return lo | hi<<8
}

func (c *Cpu) fetch8() uint8 {
	v := c.read(c.PC)
	c.PC++
	return v
}

func (c *Cpu) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *Cpu) push(v uint8) {
	c.write(0x0100+uint16(c.SP), v)
	if c.SP == 0 && c.StrictStack {
		c.Errors = append(c.Errors, "stack pointer wrapped 0x00 -> 0xFF on push")
	}
	c.SP--
}

func (c *Cpu) pop() uint8 {
	if c.SP == 0xFF && c.StrictStack {
		c.Errors = append(c.Errors, "stack pointer wrapped 0xFF -> 0x00 on pop")
	}
	c.SP++
	return c.read(0x0100 + uint16(c.SP))
}

func (c *Cpu) push16(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *Cpu) pop16() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return lo | hi<<8
}

// Step executes exactly one instruction and returns the number of CPU
// cycles it consumed, including any branch-taken or page-cross bonus.
func (c *Cpu) Step() int {
	if c.Halted {
		return 1
	}

	opcode := c.fetch8()
	instr := opcodeTable[opcode]
	c.cycles = uint64(instr.cycles)

	addr, pageCrossed, mode := c.decodeOperand(instr.mode)
	instr.exec(c, addr, mode)

	if pageCrossed && instr.pageCrossExtra {
		c.cycles++
	}
	c.totalCycles += c.cycles
	return int(c.cycles)
}

// TriggerNMI services a non-maskable interrupt: push PC and P (with the B
// flag clear), set I, jump through the NMI vector. Always 7 cycles.
func (c *Cpu) TriggerNMI() int {
	c.push16(c.PC)
	c.push((c.P | flagU) &^ flagB)
	c.setFlag(flagI, true)
	c.PC = c.read16(nmiVector)
	return 7
}

// TriggerIRQ services a maskable interrupt if the I flag is clear; returns
// 0 (no cycles consumed) if the interrupt is currently masked, leaving the
// line pending for the console to retry next instruction boundary.
func (c *Cpu) TriggerIRQ() int {
	if c.getFlag(flagI) {
		return 0
	}
	c.push16(c.PC)
	c.push((c.P | flagU) &^ flagB)
	c.setFlag(flagI, true)
	c.PC = c.read16(irqVector)
	return 7
}

// DMAPause reports the cycle cost of an OAM or DMC DMA transfer the bus is
// about to run. The CPU itself does nothing during this window; the bus
// drives the actual byte copy and simply needs this count to charge the
// right number of idle cycles. count is 256 for OAM DMA; it is unused for
// a DMC sample fetch, which always costs a flat 4 cycles.
func (c *Cpu) DMAPause(kind interrupts.DMAKind, count int) int {
	switch kind {
	case interrupts.DMAOAM:
		base := 513
		if c.totalCycles%2 == 1 {
			base = 514
		}
		return base
	case interrupts.DMADMC:
		return 4
	default:
		return 0
	}
}
