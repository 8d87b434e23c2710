package cartridge

import "fmt"

// mapperMMC1 is mapper 1. A 5-bit serial shift register collects bits from
// any write to $8000-$FFFF; the 5th write commits the accumulated value to
// one of {Control, CHR0, CHR1, PRG} chosen by the address of that final
// write. Grounded in the teacher's lib/mappers/mapper_MMC1.go, generalized
// to the spec's SOROM 2-bank PRG-RAM addendum (SPEC_FULL.md §12) and to
// return a Mirroring table instead of mutating a shared cartridge field.
type mapperMMC1 struct {
	cart *Cartridge

	shift   uint8
	counter uint8

	control  uint8
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8

	prgBankMode uint8 // 0/1: 32K; 2: fix first; 3: fix last
	chrBankMode uint8 // 0: 8K; 1: 4K
	mirror      uint8

	prgOffsets [2]int
	chrOffsets [2]int
	ramBank    int // SOROM: selected 8K PRG-RAM bank

	lastAddr uint16 // address of the write currently shifting in
}

func newMMC1(c *Cartridge) *mapperMMC1 {
	m := &mapperMMC1{cart: c}
	m.control = 0x0C
	m.updateBanks()
	return m
}

func (m *mapperMMC1) Reset() {
	m.shift = 0
	m.counter = 0
	m.control = 0x0C
	m.chrBank0, m.chrBank1, m.prgBank = 0, 0, 0
	m.updateBanks()
}

func (m *mapperMMC1) numPRGBanks16k() int { return m.cart.prgSize() / (16 * 1024) }
func (m *mapperMMC1) numCHRBanks4k() int  { return m.cart.chrSize() / (4 * 1024) }

func (m *mapperMMC1) writeShift(val uint8) {
	if val&0x80 != 0 {
		m.shift = 0
		m.counter = 0
		m.control |= 0x0C
		m.prgBankMode = (m.control >> 2) & 0x3
		m.updateBanks()
		return
	}

	m.shift |= (val & 1) << m.counter
	m.counter++
	if m.counter < 5 {
		return
	}

	committed := m.shift
	m.shift = 0
	m.counter = 0

	// the address of the FIFTH write selects the destination register.
	switch {
	case m.lastAddr < 0xA000:
		m.control = committed & 0x1F
		m.mirror = m.control & 0x3
		m.prgBankMode = (m.control >> 2) & 0x3
		m.chrBankMode = (m.control >> 4) & 0x1
	case m.lastAddr < 0xC000:
		m.chrBank0 = committed & 0x1F
	case m.lastAddr < 0xE000:
		m.chrBank1 = committed & 0x1F
	default:
		m.prgBank = committed & 0x1F
	}
	m.updateBanks()
}

func (m *mapperMMC1) updateBanks() {
	switch m.chrBankMode {
	case 0:
		bank := int(m.chrBank0>>1) % max1(m.numCHRBanks4k()/2)
		m.chrOffsets[0] = bank * 0x2000
		m.chrOffsets[1] = bank*0x2000 + 0x1000
	default:
		n := max1(m.numCHRBanks4k())
		m.chrOffsets[0] = (int(m.chrBank0) % n) * 0x1000
		m.chrOffsets[1] = (int(m.chrBank1) % n) * 0x1000
	}

	n16 := max1(m.numPRGBanks16k())
	bank := int(m.prgBank & 0x0F)
	switch m.prgBankMode {
	case 0, 1:
		b := (bank >> 1) % max1(n16/2)
		m.prgOffsets[0] = b * 0x8000
		m.prgOffsets[1] = b*0x8000 + 0x4000
	case 2:
		m.prgOffsets[0] = 0
		m.prgOffsets[1] = (bank % n16) * 0x4000
	case 3:
		m.prgOffsets[0] = (bank % n16) * 0x4000
		m.prgOffsets[1] = (n16 - 1) * 0x4000
	}

	// SOROM: CHR0 bit 3 selects the 8K PRG-RAM bank when >8K is present.
	if len(m.cart.prgRAM) > 8*1024 {
		m.ramBank = int((m.chrBank0 >> 3) & 1)
	} else {
		m.ramBank = 0
	}
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func (m *mapperMMC1) mirroring() Mirroring {
	switch m.mirror {
	case 0:
		return MirrorSingleLower
	case 1:
		return MirrorSingleUpper
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

// MirrorTable reports the current mirroring: control bits 0-1 select
// 0 one-screen-lower, 1 one-screen-upper, 2 vertical, 3 horizontal.
func (m *mapperMMC1) MirrorTable() Mirroring { return m.mirroring() }

func (m *mapperMMC1) ReadCPU(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		base := m.ramBank * 8192
		return m.cart.prgRAM[base+int(addr-0x6000)]
	case addr >= 0x8000 && addr < 0xC000:
		return m.cart.prg[m.prgOffsets[0]+int(addr-0x8000)]
	case addr >= 0xC000:
		return m.cart.prg[m.prgOffsets[1]+int(addr-0xC000)]
	}
	return 0
}

func (m *mapperMMC1) WriteCPU(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		base := m.ramBank * 8192
		m.cart.prgRAM[base+int(addr-0x6000)] = val
	case addr >= 0x8000:
		m.lastAddr = addr
		m.writeShift(val)
	}
}

func (m *mapperMMC1) ReadPPU(addr uint16) uint8 {
	switch {
	case addr < 0x1000:
		return m.readCHR(m.chrOffsets[0] + int(addr))
	case addr < 0x2000:
		return m.readCHR(m.chrOffsets[1] + int(addr-0x1000))
	}
	return 0
}

func (m *mapperMMC1) WritePPU(addr uint16, val uint8) {
	if !m.cart.chrRAM {
		return
	}
	switch {
	case addr < 0x1000:
		m.cart.chr[(m.chrOffsets[0]+int(addr))%m.cart.chrSize()] = val
	case addr < 0x2000:
		m.cart.chr[(m.chrOffsets[1]+int(addr-0x1000))%m.cart.chrSize()] = val
	}
}

func (m *mapperMMC1) readCHR(off int) uint8 {
	return m.cart.chr[off%m.cart.chrSize()]
}

func (m *mapperMMC1) IRQTick() {}

type mmc1Snapshot struct {
	Shift, Counter                     uint8
	Control, ChrBank0, ChrBank1, PrgBank uint8
	PrgBankMode, ChrBankMode, Mirror    uint8
	RAMBank                             int
	LastAddr                            uint16
}

func (m *mapperMMC1) snapshotState() interface{} {
	return mmc1Snapshot{
		Shift: m.shift, Counter: m.counter,
		Control: m.control, ChrBank0: m.chrBank0, ChrBank1: m.chrBank1, PrgBank: m.prgBank,
		PrgBankMode: m.prgBankMode, ChrBankMode: m.chrBankMode, Mirror: m.mirror,
		RAMBank: m.ramBank, LastAddr: m.lastAddr,
	}
}

func (m *mapperMMC1) restoreState(s interface{}) error {
	snap, ok := s.(mmc1Snapshot)
	if !ok {
		return fmt.Errorf("cartridge: bad MMC1 snapshot type %T", s)
	}
	m.shift, m.counter = snap.Shift, snap.Counter
	m.control, m.chrBank0, m.chrBank1, m.prgBank = snap.Control, snap.ChrBank0, snap.ChrBank1, snap.PrgBank
	m.prgBankMode, m.chrBankMode, m.mirror = snap.PrgBankMode, snap.ChrBankMode, snap.Mirror
	m.ramBank, m.lastAddr = snap.RAMBank, snap.LastAddr
	m.updateBanks()
	return nil
}
