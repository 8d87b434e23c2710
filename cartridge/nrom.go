package cartridge

// mapperNROM is mapper 0: 16 or 32 KiB PRG (mirrored when 16), 8 KiB CHR
// (ROM or RAM), fixed mirroring, optional PRG-RAM. Grounded in the
// teacher's lib/mappers (MapperNROM concept named in nes/mapper.go) and
// original_source/nes/pycore/carts.py's `MapperNROM`.
type mapperNROM struct {
	cart *Cartridge
}

func newNROM(c *Cartridge) *mapperNROM { return &mapperNROM{cart: c} }

func (m *mapperNROM) Reset() {}

func (m *mapperNROM) ReadCPU(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.cart.prgRAM[addr-0x6000]
	case addr >= 0x8000:
		off := int(addr-0x8000) % m.cart.prgSize()
		return m.cart.prg[off]
	}
	return 0
}

func (m *mapperNROM) WriteCPU(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.cart.prgRAM[addr-0x6000] = val
	}
	// writes into ROM space are ignored (no bus-conflict modeling for NROM)
}

func (m *mapperNROM) ReadPPU(addr uint16) uint8 {
	if addr < 0x2000 {
		return m.cart.chr[int(addr)%m.cart.chrSize()]
	}
	return 0
}

func (m *mapperNROM) WritePPU(addr uint16, val uint8) {
	if addr < 0x2000 && m.cart.chrRAM {
		m.cart.chr[int(addr)%m.cart.chrSize()] = val
	}
}

func (m *mapperNROM) IRQTick() {}

func (m *mapperNROM) MirrorTable() Mirroring { return m.cart.rom.Mirroring }

// nromSnapshot is empty: NROM has no bank registers to save.
type nromSnapshot struct{}

func (m *mapperNROM) snapshotState() interface{}         { return nromSnapshot{} }
func (m *mapperNROM) restoreState(interface{}) error     { return nil }
