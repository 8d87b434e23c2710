package cartridge

import "fmt"

// mapperMMC3 is mapper 4: 8 bank registers behind a bank-select latch at
// even $8000-range addresses, plus a scanline IRQ counter clocked by PPU
// address line A12 rising edges. Grounded in the teacher's
// lib/mappers/mapper_MMC3.go for the bank-register layout, with the IRQ
// counter rewritten to match spec.md §4.5's reload/enable/disable rules
// (disable also acknowledges pending IRQ, which the teacher's version
// never wires to the shared interrupt line at all).
type mapperMMC3 struct {
	cart *Cartridge

	bankSelect uint8
	registers  [8]uint8

	mirror        uint8
	prgRAMEnabled bool
	prgRAMDeny    bool

	irqLatch    uint8
	irqCounter  uint8
	irqReload   bool
	irqEnabled  bool

	prgOffsets [4]int
	chrOffsets [8]int
}

func newMMC3(c *Cartridge) *mapperMMC3 {
	m := &mapperMMC3{cart: c, prgRAMEnabled: true}
	m.updateBanks()
	return m
}

func (m *mapperMMC3) Reset() {
	*m = mapperMMC3{cart: m.cart, prgRAMEnabled: true}
	m.updateBanks()
}

func (m *mapperMMC3) numPRG8k() int { return max1(m.cart.prgSize() / 0x2000) }
func (m *mapperMMC3) numCHR1k() int { return max1(m.cart.chrSize() / 0x400) }

func (m *mapperMMC3) updateBanks() {
	n8 := m.numPRG8k()
	r6 := int(m.registers[6]) % n8
	r7 := int(m.registers[7]) % n8
	last := n8 - 1
	secondLast := last - 1
	if secondLast < 0 {
		secondLast = 0
	}

	if m.bankSelect&0x40 == 0 {
		// mode 0: $8000 swappable, $C000 fixed to second-last
		m.prgOffsets[0] = r6 * 0x2000
		m.prgOffsets[1] = r7 * 0x2000
		m.prgOffsets[2] = secondLast * 0x2000
		m.prgOffsets[3] = last * 0x2000
	} else {
		// mode 1: $C000 swappable, $8000 fixed to second-last
		m.prgOffsets[0] = secondLast * 0x2000
		m.prgOffsets[1] = r7 * 0x2000
		m.prgOffsets[2] = r6 * 0x2000
		m.prgOffsets[3] = last * 0x2000
	}

	n1 := m.numCHR1k()
	r := func(i int) int { return int(m.registers[i]) % n1 }
	if m.bankSelect&0x80 == 0 {
		// CHR A12 not inverted: two 2K banks at $0000, four 1K at $1000
		r0 := (r(0) &^ 1)
		r1 := (r(1) &^ 1)
		m.chrOffsets[0] = r0 * 0x400
		m.chrOffsets[1] = (r0 + 1) * 0x400
		m.chrOffsets[2] = r1 * 0x400
		m.chrOffsets[3] = (r1 + 1) * 0x400
		m.chrOffsets[4] = r(2) * 0x400
		m.chrOffsets[5] = r(3) * 0x400
		m.chrOffsets[6] = r(4) * 0x400
		m.chrOffsets[7] = r(5) * 0x400
	} else {
		r0 := (r(0) &^ 1)
		r1 := (r(1) &^ 1)
		m.chrOffsets[4] = r0 * 0x400
		m.chrOffsets[5] = (r0 + 1) * 0x400
		m.chrOffsets[6] = r1 * 0x400
		m.chrOffsets[7] = (r1 + 1) * 0x400
		m.chrOffsets[0] = r(2) * 0x400
		m.chrOffsets[1] = r(3) * 0x400
		m.chrOffsets[2] = r(4) * 0x400
		m.chrOffsets[3] = r(5) * 0x400
	}
}

func (m *mapperMMC3) MirrorTable() Mirroring {
	if m.mirror&1 != 0 {
		return MirrorHorizontal
	}
	return MirrorVertical
}

func (m *mapperMMC3) ReadCPU(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			return m.cart.prgRAM[addr-0x6000]
		}
		return 0
	case addr >= 0x8000:
		bank := (addr - 0x8000) / 0x2000
		off := int(addr-0x8000) % 0x2000
		return m.cart.prg[m.prgOffsets[bank]+off]
	}
	return 0
}

func (m *mapperMMC3) WriteCPU(addr uint16, val uint8) {
	even := addr&1 == 0
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled && !m.prgRAMDeny {
			m.cart.prgRAM[addr-0x6000] = val
		}
	case addr >= 0x8000 && addr <= 0x9FFF:
		if even {
			m.bankSelect = val
		} else {
			m.registers[m.bankSelect&0x7] = val
		}
		m.updateBanks()
	case addr >= 0xA000 && addr <= 0xBFFF:
		if even {
			m.mirror = val & 1
		} else {
			m.prgRAMEnabled = val&0x80 != 0
			m.prgRAMDeny = val&0x40 != 0
		}
	case addr >= 0xC000 && addr <= 0xDFFF:
		if even {
			m.irqLatch = val
		} else {
			m.irqReload = true
		}
	case addr >= 0xE000:
		if even {
			m.irqEnabled = false
			m.cart.irq.ClearIRQ()
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mapperMMC3) ReadPPU(addr uint16) uint8 {
	if addr < 0x2000 {
		bank := addr / 0x400
		off := int(addr) % 0x400
		return m.cart.chr[m.chrOffsets[bank]+off]
	}
	return 0
}

func (m *mapperMMC3) WritePPU(addr uint16, val uint8) {
	if addr < 0x2000 && m.cart.chrRAM {
		bank := addr / 0x400
		off := int(addr) % 0x400
		m.cart.chr[(m.chrOffsets[bank]+off)%m.cart.chrSize()] = val
	}
}

// IRQTick is called once per PPU address-bus A12 rising edge observed
// during rendering. The counter decrements to 0, raises IRQ (if enabled)
// and reloads; a pending reload request forces a reload without firing.
func (m *mapperMMC3) IRQTick() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		m.cart.irq.RaiseIRQ()
	}
}

type mmc3Snapshot struct {
	BankSelect               uint8
	Registers                [8]uint8
	Mirror                   uint8
	PrgRAMEnabled, PrgRAMDeny bool
	IrqLatch, IrqCounter     uint8
	IrqReload, IrqEnabled    bool
}

func (m *mapperMMC3) snapshotState() interface{} {
	return mmc3Snapshot{
		BankSelect: m.bankSelect, Registers: m.registers, Mirror: m.mirror,
		PrgRAMEnabled: m.prgRAMEnabled, PrgRAMDeny: m.prgRAMDeny,
		IrqLatch: m.irqLatch, IrqCounter: m.irqCounter,
		IrqReload: m.irqReload, IrqEnabled: m.irqEnabled,
	}
}

func (m *mapperMMC3) restoreState(s interface{}) error {
	snap, ok := s.(mmc3Snapshot)
	if !ok {
		return fmt.Errorf("cartridge: bad MMC3 snapshot type %T", s)
	}
	m.bankSelect, m.registers, m.mirror = snap.BankSelect, snap.Registers, snap.Mirror
	m.prgRAMEnabled, m.prgRAMDeny = snap.PrgRAMEnabled, snap.PrgRAMDeny
	m.irqLatch, m.irqCounter = snap.IrqLatch, snap.IrqCounter
	m.irqReload, m.irqEnabled = snap.IrqReload, snap.IrqEnabled
	m.updateBanks()
	return nil
}
