package cpu

type instrFunc func(c *Cpu, addr uint16, mode AddrMode)

type instruction struct {
	name           string
	mode           AddrMode
	cycles         uint8
	pageCrossExtra bool
	exec           instrFunc
}

// opcodeTable is the full 256-entry 6502 decode table: the 151 documented
// opcodes plus the undocumented opcodes real NMOS 6502s execute as
// side effects of their microcode, per spec.md §4.1. Cycle counts and
// addressing modes follow the standard NMOS 6502 reference (6502.org /
// NESdev "CPU unofficial opcodes"), grounded in the teacher's
// nes/cpu/cpu.go instruction-table dispatch shape.
var opcodeTable = [256]instruction{
	// 0x00-0x0F
	{"BRK", Implied, 7, false, opBRK}, {"ORA", IndirectX, 6, false, opORA},
	{"KIL", Implied, 2, false, opKIL}, {"SLO", IndirectX, 8, false, opSLO},
	{"NOP", ZeroPage, 3, false, opNOP}, {"ORA", ZeroPage, 3, false, opORA},
	{"ASL", ZeroPage, 5, false, opASL}, {"SLO", ZeroPage, 5, false, opSLO},
	{"PHP", Implied, 3, false, opPHP}, {"ORA", Immediate, 2, false, opORA},
	{"ASL", Accumulator, 2, false, opASL}, {"ANC", Immediate, 2, false, opANC},
	{"NOP", Absolute, 4, false, opNOP}, {"ORA", Absolute, 4, false, opORA},
	{"ASL", Absolute, 6, false, opASL}, {"SLO", Absolute, 6, false, opSLO},

	// 0x10-0x1F
	{"BPL", Relative, 2, false, opBPL}, {"ORA", IndirectY, 5, true, opORA},
	{"KIL", Implied, 2, false, opKIL}, {"SLO", IndirectY, 8, false, opSLO},
	{"NOP", ZeroPageX, 4, false, opNOP}, {"ORA", ZeroPageX, 4, false, opORA},
	{"ASL", ZeroPageX, 6, false, opASL}, {"SLO", ZeroPageX, 6, false, opSLO},
	{"CLC", Implied, 2, false, opCLC}, {"ORA", AbsoluteY, 4, true, opORA},
	{"NOP", Implied, 2, false, opNOP}, {"SLO", AbsoluteY, 7, false, opSLO},
	{"NOP", AbsoluteX, 4, true, opNOP}, {"ORA", AbsoluteX, 4, true, opORA},
	{"ASL", AbsoluteX, 7, false, opASL}, {"SLO", AbsoluteX, 7, false, opSLO},

	// 0x20-0x2F
	{"JSR", Absolute, 6, false, opJSR}, {"AND", IndirectX, 6, false, opAND},
	{"KIL", Implied, 2, false, opKIL}, {"RLA", IndirectX, 8, false, opRLA},
	{"BIT", ZeroPage, 3, false, opBIT}, {"AND", ZeroPage, 3, false, opAND},
	{"ROL", ZeroPage, 5, false, opROL}, {"RLA", ZeroPage, 5, false, opRLA},
	{"PLP", Implied, 4, false, opPLP}, {"AND", Immediate, 2, false, opAND},
	{"ROL", Accumulator, 2, false, opROL}, {"ANC", Immediate, 2, false, opANC},
	{"BIT", Absolute, 4, false, opBIT}, {"AND", Absolute, 4, false, opAND},
	{"ROL", Absolute, 6, false, opROL}, {"RLA", Absolute, 6, false, opRLA},

	// 0x30-0x3F
	{"BMI", Relative, 2, false, opBMI}, {"AND", IndirectY, 5, true, opAND},
	{"KIL", Implied, 2, false, opKIL}, {"RLA", IndirectY, 8, false, opRLA},
	{"NOP", ZeroPageX, 4, false, opNOP}, {"AND", ZeroPageX, 4, false, opAND},
	{"ROL", ZeroPageX, 6, false, opROL}, {"RLA", ZeroPageX, 6, false, opRLA},
	{"SEC", Implied, 2, false, opSEC}, {"AND", AbsoluteY, 4, true, opAND},
	{"NOP", Implied, 2, false, opNOP}, {"RLA", AbsoluteY, 7, false, opRLA},
	{"NOP", AbsoluteX, 4, true, opNOP}, {"AND", AbsoluteX, 4, true, opAND},
	{"ROL", AbsoluteX, 7, false, opROL}, {"RLA", AbsoluteX, 7, false, opRLA},

	// 0x40-0x4F
	{"RTI", Implied, 6, false, opRTI}, {"EOR", IndirectX, 6, false, opEOR},
	{"KIL", Implied, 2, false, opKIL}, {"SRE", IndirectX, 8, false, opSRE},
	{"NOP", ZeroPage, 3, false, opNOP}, {"EOR", ZeroPage, 3, false, opEOR},
	{"LSR", ZeroPage, 5, false, opLSR}, {"SRE", ZeroPage, 5, false, opSRE},
	{"PHA", Implied, 3, false, opPHA}, {"EOR", Immediate, 2, false, opEOR},
	{"LSR", Accumulator, 2, false, opLSR}, {"ALR", Immediate, 2, false, opALR},
	{"JMP", Absolute, 3, false, opJMP}, {"EOR", Absolute, 4, false, opEOR},
	{"LSR", Absolute, 6, false, opLSR}, {"SRE", Absolute, 6, false, opSRE},

	// 0x50-0x5F
	{"BVC", Relative, 2, false, opBVC}, {"EOR", IndirectY, 5, true, opEOR},
	{"KIL", Implied, 2, false, opKIL}, {"SRE", IndirectY, 8, false, opSRE},
	{"NOP", ZeroPageX, 4, false, opNOP}, {"EOR", ZeroPageX, 4, false, opEOR},
	{"LSR", ZeroPageX, 6, false, opLSR}, {"SRE", ZeroPageX, 6, false, opSRE},
	{"CLI", Implied, 2, false, opCLI}, {"EOR", AbsoluteY, 4, true, opEOR},
	{"NOP", Implied, 2, false, opNOP}, {"SRE", AbsoluteY, 7, false, opSRE},
	{"NOP", AbsoluteX, 4, true, opNOP}, {"EOR", AbsoluteX, 4, true, opEOR},
	{"LSR", AbsoluteX, 7, false, opLSR}, {"SRE", AbsoluteX, 7, false, opSRE},

	// 0x60-0x6F
	{"RTS", Implied, 6, false, opRTS}, {"ADC", IndirectX, 6, false, opADC},
	{"KIL", Implied, 2, false, opKIL}, {"RRA", IndirectX, 8, false, opRRA},
	{"NOP", ZeroPage, 3, false, opNOP}, {"ADC", ZeroPage, 3, false, opADC},
	{"ROR", ZeroPage, 5, false, opROR}, {"RRA", ZeroPage, 5, false, opRRA},
	{"PLA", Implied, 4, false, opPLA}, {"ADC", Immediate, 2, false, opADC},
	{"ROR", Accumulator, 2, false, opROR}, {"ARR", Immediate, 2, false, opARR},
	{"JMP", Indirect, 5, false, opJMP}, {"ADC", Absolute, 4, false, opADC},
	{"ROR", Absolute, 6, false, opROR}, {"RRA", Absolute, 6, false, opRRA},

	// 0x70-0x7F
	{"BVS", Relative, 2, false, opBVS}, {"ADC", IndirectY, 5, true, opADC},
	{"KIL", Implied, 2, false, opKIL}, {"RRA", IndirectY, 8, false, opRRA},
	{"NOP", ZeroPageX, 4, false, opNOP}, {"ADC", ZeroPageX, 4, false, opADC},
	{"ROR", ZeroPageX, 6, false, opROR}, {"RRA", ZeroPageX, 6, false, opRRA},
	{"SEI", Implied, 2, false, opSEI}, {"ADC", AbsoluteY, 4, true, opADC},
	{"NOP", Implied, 2, false, opNOP}, {"RRA", AbsoluteY, 7, false, opRRA},
	{"NOP", AbsoluteX, 4, true, opNOP}, {"ADC", AbsoluteX, 4, true, opADC},
	{"ROR", AbsoluteX, 7, false, opROR}, {"RRA", AbsoluteX, 7, false, opRRA},

	// 0x80-0x8F
	{"NOP", Immediate, 2, false, opNOP}, {"STA", IndirectX, 6, false, opSTA},
	{"NOP", Immediate, 2, false, opNOP}, {"SAX", IndirectX, 6, false, opSAX},
	{"STY", ZeroPage, 3, false, opSTY}, {"STA", ZeroPage, 3, false, opSTA},
	{"STX", ZeroPage, 3, false, opSTX}, {"SAX", ZeroPage, 3, false, opSAX},
	{"DEY", Implied, 2, false, opDEY}, {"NOP", Immediate, 2, false, opNOP},
	{"TXA", Implied, 2, false, opTXA}, {"XAA", Immediate, 2, false, opXAA},
	{"STY", Absolute, 4, false, opSTY}, {"STA", Absolute, 4, false, opSTA},
	{"STX", Absolute, 4, false, opSTX}, {"SAX", Absolute, 4, false, opSAX},

	// 0x90-0x9F
	{"BCC", Relative, 2, false, opBCC}, {"STA", IndirectY, 6, false, opSTA},
	{"KIL", Implied, 2, false, opKIL}, {"AXA", IndirectY, 6, false, opAXA},
	{"STY", ZeroPageX, 4, false, opSTY}, {"STA", ZeroPageX, 4, false, opSTA},
	{"STX", ZeroPageY, 4, false, opSTX}, {"SAX", ZeroPageY, 4, false, opSAX},
	{"TYA", Implied, 2, false, opTYA}, {"STA", AbsoluteY, 5, false, opSTA},
	{"TXS", Implied, 2, false, opTXS}, {"TAS", AbsoluteY, 5, false, opTAS},
	{"SYA", AbsoluteX, 5, false, opSYA}, {"STA", AbsoluteX, 5, false, opSTA},
	{"SXA", AbsoluteY, 5, false, opSXA}, {"AXA", AbsoluteY, 5, false, opAXA},

	// 0xA0-0xAF
	{"LDY", Immediate, 2, false, opLDY}, {"LDA", IndirectX, 6, false, opLDA},
	{"LDX", Immediate, 2, false, opLDX}, {"LAX", IndirectX, 6, false, opLAX},
	{"LDY", ZeroPage, 3, false, opLDY}, {"LDA", ZeroPage, 3, false, opLDA},
	{"LDX", ZeroPage, 3, false, opLDX}, {"LAX", ZeroPage, 3, false, opLAX},
	{"TAY", Implied, 2, false, opTAY}, {"LDA", Immediate, 2, false, opLDA},
	{"TAX", Implied, 2, false, opTAX}, {"ATX", Immediate, 2, false, opATX},
	{"LDY", Absolute, 4, false, opLDY}, {"LDA", Absolute, 4, false, opLDA},
	{"LDX", Absolute, 4, false, opLDX}, {"LAX", Absolute, 4, false, opLAX},

	// 0xB0-0xBF
	{"BCS", Relative, 2, false, opBCS}, {"LDA", IndirectY, 5, true, opLDA},
	{"KIL", Implied, 2, false, opKIL}, {"LAX", IndirectY, 5, true, opLAX},
	{"LDY", ZeroPageX, 4, false, opLDY}, {"LDA", ZeroPageX, 4, false, opLDA},
	{"LDX", ZeroPageY, 4, false, opLDX}, {"LAX", ZeroPageY, 4, false, opLAX},
	{"CLV", Implied, 2, false, opCLV}, {"LDA", AbsoluteY, 4, true, opLDA},
	{"TSX", Implied, 2, false, opTSX}, {"LAS", AbsoluteY, 4, true, opLAS},
	{"LDY", AbsoluteX, 4, true, opLDY}, {"LDA", AbsoluteX, 4, true, opLDA},
	{"LDX", AbsoluteY, 4, true, opLDX}, {"LAX", AbsoluteY, 4, true, opLAX},

	// 0xC0-0xCF
	{"CPY", Immediate, 2, false, opCPY}, {"CMP", IndirectX, 6, false, opCMP},
	{"NOP", Immediate, 2, false, opNOP}, {"DCP", IndirectX, 8, false, opDCP},
	{"CPY", ZeroPage, 3, false, opCPY}, {"CMP", ZeroPage, 3, false, opCMP},
	{"DEC", ZeroPage, 5, false, opDEC}, {"DCP", ZeroPage, 5, false, opDCP},
	{"INY", Implied, 2, false, opINY}, {"CMP", Immediate, 2, false, opCMP},
	{"DEX", Implied, 2, false, opDEX}, {"AXS", Immediate, 2, false, opAXS},
	{"CPY", Absolute, 4, false, opCPY}, {"CMP", Absolute, 4, false, opCMP},
	{"DEC", Absolute, 6, false, opDEC}, {"DCP", Absolute, 6, false, opDCP},

	// 0xD0-0xDF
	{"BNE", Relative, 2, false, opBNE}, {"CMP", IndirectY, 5, true, opCMP},
	{"KIL", Implied, 2, false, opKIL}, {"DCP", IndirectY, 8, false, opDCP},
	{"NOP", ZeroPageX, 4, false, opNOP}, {"CMP", ZeroPageX, 4, false, opCMP},
	{"DEC", ZeroPageX, 6, false, opDEC}, {"DCP", ZeroPageX, 6, false, opDCP},
	{"CLD", Implied, 2, false, opCLD}, {"CMP", AbsoluteY, 4, true, opCMP},
	{"NOP", Implied, 2, false, opNOP}, {"DCP", AbsoluteY, 7, false, opDCP},
	{"NOP", AbsoluteX, 4, true, opNOP}, {"CMP", AbsoluteX, 4, true, opCMP},
	{"DEC", AbsoluteX, 7, false, opDEC}, {"DCP", AbsoluteX, 7, false, opDCP},

	// 0xE0-0xEF
	{"CPX", Immediate, 2, false, opCPX}, {"SBC", IndirectX, 6, false, opSBC},
	{"NOP", Immediate, 2, false, opNOP}, {"ISC", IndirectX, 8, false, opISC},
	{"CPX", ZeroPage, 3, false, opCPX}, {"SBC", ZeroPage, 3, false, opSBC},
	{"INC", ZeroPage, 5, false, opINC}, {"ISC", ZeroPage, 5, false, opISC},
	{"INX", Implied, 2, false, opINX}, {"SBC", Immediate, 2, false, opSBC},
	{"NOP", Implied, 2, false, opNOP}, {"SBC", Immediate, 2, false, opSBC},
	{"CPX", Absolute, 4, false, opCPX}, {"SBC", Absolute, 4, false, opSBC},
	{"INC", Absolute, 6, false, opINC}, {"ISC", Absolute, 6, false, opISC},

	// 0xF0-0xFF
	{"BEQ", Relative, 2, false, opBEQ}, {"SBC", IndirectY, 5, true, opSBC},
	{"KIL", Implied, 2, false, opKIL}, {"ISC", IndirectY, 8, false, opISC},
	{"NOP", ZeroPageX, 4, false, opNOP}, {"SBC", ZeroPageX, 4, false, opSBC},
	{"INC", ZeroPageX, 6, false, opINC}, {"ISC", ZeroPageX, 6, false, opISC},
	{"SED", Implied, 2, false, opSED}, {"SBC", AbsoluteY, 4, true, opSBC},
	{"NOP", Implied, 2, false, opNOP}, {"ISC", AbsoluteY, 7, false, opISC},
	{"NOP", AbsoluteX, 4, true, opNOP}, {"SBC", AbsoluteX, 4, true, opSBC},
	{"INC", AbsoluteX, 7, false, opINC}, {"ISC", AbsoluteX, 7, false, opISC},
}
