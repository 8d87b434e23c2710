package cartridge

import "fmt"

// mapperUxROM is mapper 2: a single switchable 16 KiB PRG bank at
// $8000-$BFFF, the last bank fixed at $C000-$FFFF, CHR is always RAM.
// Grounded in original_source/nes/pycore/carts.py `MapperUNROM` and the
// teacher's MMC1/MMC3 bank-register style (single `prgBank` register,
// `updateAllBanks`-on-write shape carried over from lib/mappers/mapper_MMC1.go).
type mapperUxROM struct {
	cart *Cartridge

	prgBank      uint8
	busConflicts bool
}

func newUxROM(c *Cartridge) *mapperUxROM {
	return &mapperUxROM{cart: c}
}

func (m *mapperUxROM) Reset() { m.prgBank = 0 }

func (m *mapperUxROM) numBanks() uint8 {
	return uint8(m.cart.prgSize() / (16 * 1024))
}

func (m *mapperUxROM) ReadCPU(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.cart.prgRAM[addr-0x6000]
	case addr >= 0x8000 && addr < 0xC000:
		off := int(m.prgBank%m.numBanks())*16*1024 + int(addr-0x8000)
		return m.cart.prg[off]
	case addr >= 0xC000:
		last := m.numBanks() - 1
		off := int(last)*16*1024 + int(addr-0xC000)
		return m.cart.prg[off]
	}
	return 0
}

func (m *mapperUxROM) WriteCPU(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.cart.prgRAM[addr-0x6000] = val
	case addr >= 0x8000:
		if m.busConflicts {
			val &= m.ReadCPU(addr)
		}
		m.prgBank = val
	}
}

func (m *mapperUxROM) ReadPPU(addr uint16) uint8 {
	if addr < 0x2000 {
		return m.cart.chr[addr]
	}
	return 0
}

func (m *mapperUxROM) WritePPU(addr uint16, val uint8) {
	if addr < 0x2000 {
		m.cart.chr[addr] = val
	}
}

func (m *mapperUxROM) IRQTick() {}

func (m *mapperUxROM) MirrorTable() Mirroring { return m.cart.rom.Mirroring }

type uxromSnapshot struct {
	PRGBank uint8
}

func (m *mapperUxROM) snapshotState() interface{} {
	return uxromSnapshot{PRGBank: m.prgBank}
}

func (m *mapperUxROM) restoreState(s interface{}) error {
	snap, ok := s.(uxromSnapshot)
	if !ok {
		return fmt.Errorf("cartridge: bad UxROM snapshot type %T", s)
	}
	m.prgBank = snap.PRGBank
	return nil
}
