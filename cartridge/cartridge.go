// Package cartridge implements iNES ROM loading and the bank-switching
// mapper hardware (NROM, MMC1, UxROM, MMC3). Grounded in the teacher's
// lib/mappers/cartridge.go (the Cartridge aggregate + Mapper interface) and
// original_source/nes/rom.py + nes/pycore/carts.py for the exact field
// layout of the iNES header and per-mapper bank math.
package cartridge

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/jameskmurphy/nes/interrupts"
)

// Mirroring is the 4-entry nametable routing table a mapper hands to the
// PPU's VRAM: MirrorTable()[logical nametable 0..3] is the physical 1KB
// CIRAM bank backing it.
type Mirroring [4]uint8

var (
	MirrorHorizontal  = Mirroring{0, 0, 1, 1}
	MirrorVertical    = Mirroring{0, 1, 0, 1}
	MirrorSingleLower = Mirroring{0, 0, 0, 0}
	MirrorSingleUpper = Mirroring{1, 1, 1, 1}
	MirrorFourScreen  = Mirroring{0, 1, 2, 3}
)

// Mapper is the interface every cartridge board implements. VRAM consults
// MirrorTable for nametable routing; the PPU calls IRQTick on PPU address
// A12 rising edges observed during rendering.
type Mapper interface {
	ReadCPU(addr uint16) uint8
	WriteCPU(addr uint16, val uint8)
	ReadPPU(addr uint16) uint8
	WritePPU(addr uint16, val uint8)
	IRQTick()
	MirrorTable() Mirroring
	Reset()

	// snapshotState/restoreState round-trip the mapper's bank registers
	// for save states. Each board registers its own concrete snapshot
	// type with gob so Cartridge.Snapshot can box it as interface{}.
	snapshotState() interface{}
	restoreState(interface{}) error
}

// ROM is the parsed, immutable contents of an iNES file: header fields plus
// the raw PRG/CHR byte slices. Passed to New to build a live Cartridge.
type ROM struct {
	Mapper     uint8
	Mirroring  Mirroring
	FourScreen bool
	Battery    bool
	PRG        []byte
	CHR        []byte // empty when the board uses CHR-RAM
	PRGRAMSize int
}

const (
	prgBankSize = 16 * 1024
	chrBankSize = 8 * 1024
)

var (
	ErrBadMagic           = fmt.Errorf("cartridge: bad iNES magic")
	ErrInvalidPRGSize     = fmt.Errorf("cartridge: invalid PRG ROM size")
	ErrTruncated          = fmt.Errorf("cartridge: file truncated")
	ErrUnsupportedMapper  = fmt.Errorf("cartridge: unsupported mapper")
	ErrInvalidPRGRAMSize  = fmt.Errorf("cartridge: invalid PRG RAM size")
)

// LoadINES parses an iNES v1 file per spec.md §6: 16-byte header, optional
// 512-byte trainer, PRG data, CHR data.
func LoadINES(r io.Reader) (*ROM, error) {
	var header [16]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if header[0] != 'N' || header[1] != 'E' || header[2] != 'S' || header[3] != 0x1A {
		return nil, ErrBadMagic
	}

	prgUnits := int(header[4])
	chrUnits := int(header[5])
	flags6 := header[6]
	flags7 := header[7]

	if prgUnits <= 0 {
		return nil, ErrInvalidPRGSize
	}

	mapperID := (flags7 & 0xF0) | (flags6 >> 4)

	trainer := flags6&0x04 != 0
	fourScreen := flags6&0x08 != 0
	battery := flags6&0x02 != 0

	var mirror Mirroring
	if fourScreen {
		mirror = MirrorFourScreen
	} else if flags6&0x01 != 0 {
		mirror = MirrorVertical
	} else {
		mirror = MirrorHorizontal
	}

	if trainer {
		var junk [512]byte
		if _, err := io.ReadFull(r, junk[:]); err != nil {
			return nil, fmt.Errorf("%w: trainer: %v", ErrTruncated, err)
		}
	}

	prg := make([]byte, prgUnits*prgBankSize)
	if _, err := io.ReadFull(r, prg); err != nil {
		return nil, fmt.Errorf("%w: prg: %v", ErrTruncated, err)
	}

	var chr []byte
	if chrUnits > 0 {
		chr = make([]byte, chrUnits*chrBankSize)
		if _, err := io.ReadFull(r, chr); err != nil {
			return nil, fmt.Errorf("%w: chr: %v", ErrTruncated, err)
		}
	}

	switch mapperID {
	case 0, 1, 2, 4:
	default:
		return nil, fmt.Errorf("%w: id %d", ErrUnsupportedMapper, mapperID)
	}

	return &ROM{
		Mapper:     mapperID,
		Mirroring:  mirror,
		FourScreen: fourScreen,
		Battery:    battery,
		PRG:        prg,
		CHR:        chr,
		PRGRAMSize: 8 * 1024,
	}, nil
}

// Cartridge owns the PRG/CHR storage and the active mapper board. It
// exposes the mapper's CPU/PPU bus-facing methods by delegating (it does
// not implement the save-state hooks of Mapper), so console.Console can hold a
// single field without caring which board is mounted.
type Cartridge struct {
	rom *ROM

	prg    []byte
	chr    []byte // CHR-ROM, or CHR-RAM when len(rom.CHR) == 0
	chrRAM bool
	prgRAM []byte

	Mapper Mapper

	irq *interrupts.Lines
}

// New builds a live Cartridge + mapper board for rom.
func New(rom *ROM, irq *interrupts.Lines) (*Cartridge, error) {
	c := &Cartridge{
		rom:    rom,
		prg:    rom.PRG,
		prgRAM: make([]byte, rom.PRGRAMSize),
		irq:    irq,
	}

	if len(rom.CHR) == 0 {
		c.chr = make([]byte, 8*1024)
		c.chrRAM = true
	} else {
		c.chr = rom.CHR
	}

	if rom.Mapper == 2 {
		// UxROM CHR is always RAM, even if the file shipped CHR data.
		c.chrRAM = true
	}

	switch rom.Mapper {
	case 0:
		c.Mapper = newNROM(c)
	case 1:
		if rom.PRGRAMSize != 8*1024 && rom.PRGRAMSize != 16*1024 && rom.PRGRAMSize != 32*1024 {
			return nil, ErrInvalidPRGRAMSize
		}
		c.Mapper = newMMC1(c)
	case 2:
		c.Mapper = newUxROM(c)
	case 4:
		c.Mapper = newMMC3(c)
	default:
		return nil, fmt.Errorf("%w: id %d", ErrUnsupportedMapper, rom.Mapper)
	}
	return c, nil
}

func (c *Cartridge) ReadCPU(addr uint16) uint8       { return c.Mapper.ReadCPU(addr) }
func (c *Cartridge) WriteCPU(addr uint16, v uint8)   { c.Mapper.WriteCPU(addr, v) }
func (c *Cartridge) ReadPPU(addr uint16) uint8       { return c.Mapper.ReadPPU(addr) }
func (c *Cartridge) WritePPU(addr uint16, v uint8)   { c.Mapper.WritePPU(addr, v) }
func (c *Cartridge) IRQTick()                        { c.Mapper.IRQTick() }
func (c *Cartridge) MirrorTable() Mirroring          { return c.Mapper.MirrorTable() }
func (c *Cartridge) Reset()                          { c.Mapper.Reset() }
func (c *Cartridge) HasBattery() bool                { return c.rom.Battery }

// SaveRAM writes the cartridge's PRG-RAM contents, for battery-backed
// boards. Mirrors the teacher's getRamSaveFile, but takes an io.Writer so
// the host decides where the bytes land instead of the cartridge reaching
// into $HOME itself.
func (c *Cartridge) SaveRAM(w io.Writer) error {
	_, err := w.Write(c.prgRAM)
	return err
}

// LoadRAM restores previously saved PRG-RAM contents.
func (c *Cartridge) LoadRAM(r io.Reader) error {
	_, err := io.ReadFull(r, c.prgRAM)
	return err
}

func (c *Cartridge) prgSize() int { return len(c.prg) }
func (c *Cartridge) chrSize() int { return len(c.chr) }

var cartEndian = binary.LittleEndian

// Snapshot captures everything about a live Cartridge that isn't fixed
// ROM content: PRG-RAM, CHR-RAM (when present), and the mounted mapper's
// bank registers. The host is expected to reload the same ROM file before
// calling Restore; Snapshot deliberately excludes the immutable PRG/CHR
// ROM bytes to keep save states small.
type Snapshot struct {
	PRGRAM []byte
	CHR    []byte // nil unless the board uses CHR-RAM
	Mapper interface{}
}

func (c *Cartridge) Snapshot() Snapshot {
	s := Snapshot{
		PRGRAM: append([]byte(nil), c.prgRAM...),
		Mapper: c.Mapper.snapshotState(),
	}
	if c.chrRAM {
		s.CHR = append([]byte(nil), c.chr...)
	}
	return s
}

func (c *Cartridge) Restore(s Snapshot) error {
	if len(s.PRGRAM) != len(c.prgRAM) {
		return fmt.Errorf("cartridge: PRG-RAM size mismatch on restore: have %d want %d", len(c.prgRAM), len(s.PRGRAM))
	}
	copy(c.prgRAM, s.PRGRAM)
	if c.chrRAM && s.CHR != nil {
		copy(c.chr, s.CHR)
	}
	return c.Mapper.restoreState(s.Mapper)
}

func init() {
	gob.Register(nromSnapshot{})
	gob.Register(uxromSnapshot{})
	gob.Register(mmc1Snapshot{})
	gob.Register(mmc3Snapshot{})
}
