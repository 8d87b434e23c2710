// Package ppu implements the 2C02 picture processing unit: the
// 341-dot/262-scanline timing grid, background pattern shift registers,
// sprite evaluation, and the color pipeline into a 256x240 RGB frame
// buffer. Grounded in the teacher's lib/ppu/ppu.go for the per-dot exec()
// dispatch and A12OutputHigh edge detection, and nes/ppu_registers.go for
// the loopy v/t scrolling math and register read/write side effects.
// Background pixel storage is reworked from the teacher's packed 64-bit
// nibble shifter into the two 16-bit pattern shift registers + two 8-bit
// attribute shift registers spec.md §3 calls for.
package ppu

import (
	"github.com/jameskmurphy/nes/cartridge"
	"github.com/jameskmurphy/nes/interrupts"
	"github.com/jameskmurphy/nes/vram"
)

// Cartridge is the subset of cartridge.Cartridge the PPU talks to: CHR
// access, mirroring, and the MMC3-style scanline IRQ clocked by A12.
type Cartridge interface {
	ReadPPU(addr uint16) uint8
	WritePPU(addr uint16, v uint8)
	IRQTick()
	MirrorTable() cartridge.Mirroring
}

// Sprite limit: real hardware evaluates all 64 OAM entries per scanline but
// only ever renders 8; SpriteLimit lets console.Option raise or disable the
// cap for the rare homebrew/test ROM that wants to observe raw overflow.
const DefaultSpriteLimit = 8

// warmupDots is how long the PPU ignores PPUCTRL writes after reset: the
// real chip's internal capacitors need 29,658 CPU cycles (three PPU dots
// each) to settle before the register latches anything.
const warmupDots = 29658 * 3

func (p *PPU) warmedUp() bool { return p.dotsSinceReset >= warmupDots }

type oamEntry struct {
	y, tile, attr, x uint8
}

// PPU is the 2C02. Frame is the 256x240 RGB888 buffer Step paints into;
// the host samples it once per RunFrame call.
type PPU struct {
	cart Cartridge
	nt   vram.Nametables
	pal  vram.Palette
	irq  *interrupts.Lines

	oam [256]uint8

	ctrl, mask, status uint8
	oamAddr            uint8

	v, t loopy
	fineX uint8
	writeToggle bool

	readBuffer uint8
	ioLatch    uint8

	cycle         int
	scanLine      int
	frame         uint64
	oddFrame      bool
	dotsSinceReset uint64

	nmiEnabled bool
	nmiLine    bool

	ntByte, attrByte, loTileByte, hiTileByte uint8
	bgShiftLo, bgShiftHi                     uint16
	attrShiftLo, attrShiftHi                 uint8
	attrLatchLo, attrLatchHi                 bool

	secOAM      [64]oamEntry
	secCount    int
	spriteZeroInSec bool

	spritePatternLo, spritePatternHi [64]uint8
	spriteX                          [64]uint8
	spriteAttr                       [64]uint8
	spriteIsZero                     [64]bool
	activeSprites                    int

	SpriteLimit int

	bgA12Prev, spriteA12Prev bool

	Frame [256 * 240]uint32
}

func New(cart Cartridge, irq *interrupts.Lines) *PPU {
	p := &PPU{cart: cart, irq: irq, SpriteLimit: DefaultSpriteLimit, scanLine: -1}
	p.nt.SetMirror(cart.MirrorTable())
	return p
}

func (p *PPU) Reset() {
	cart, irq, nt := p.cart, p.irq, p.nt
	pal := p.pal
	*p = PPU{cart: cart, irq: irq, nt: nt, pal: pal, SpriteLimit: DefaultSpriteLimit, scanLine: -1}
	p.nt.SetMirror(cart.MirrorTable())
}

// Snapshot is the save-state view of PPU. Frame is excluded: it is
// regenerated by the next RunFrame call and not needed to resume
// emulation faithfully.
type Snapshot struct {
	Nametables [4096]byte
	Palette    [32]byte
	OAM        [256]uint8

	Ctrl, Mask, Status uint8
	OAMAddr            uint8

	V, T        uint16
	FineX       uint8
	WriteToggle bool
	ReadBuffer  uint8
	IOLatch     uint8

	Cycle, ScanLine int
	Frame64         uint64
	OddFrame        bool
	DotsSinceReset  uint64

	NMIEnabled, NMILine bool

	NTByte, AttrByte, LoTileByte, HiTileByte uint8
	BgShiftLo, BgShiftHi                     uint16
	AttrShiftLo, AttrShiftHi                  uint8
	AttrLatchLo, AttrLatchHi                  bool

	BgA12Prev, SpriteA12Prev bool
}

func (p *PPU) Snapshot() Snapshot {
	return Snapshot{
		Nametables: p.nt.Bytes(), Palette: p.pal.Bytes(), OAM: p.oam,
		Ctrl: p.ctrl, Mask: p.mask, Status: p.status, OAMAddr: p.oamAddr,
		V: uint16(p.v), T: uint16(p.t), FineX: p.fineX, WriteToggle: p.writeToggle,
		ReadBuffer: p.readBuffer, IOLatch: p.ioLatch,
		Cycle: p.cycle, ScanLine: p.scanLine, Frame64: p.frame, OddFrame: p.oddFrame,
		DotsSinceReset: p.dotsSinceReset,
		NMIEnabled: p.nmiEnabled, NMILine: p.nmiLine,
		NTByte: p.ntByte, AttrByte: p.attrByte, LoTileByte: p.loTileByte, HiTileByte: p.hiTileByte,
		BgShiftLo: p.bgShiftLo, BgShiftHi: p.bgShiftHi,
		AttrShiftLo: p.attrShiftLo, AttrShiftHi: p.attrShiftHi,
		AttrLatchLo: p.attrLatchLo, AttrLatchHi: p.attrLatchHi,
		BgA12Prev: p.bgA12Prev, SpriteA12Prev: p.spriteA12Prev,
	}
}

func (p *PPU) Restore(s Snapshot) {
	p.nt.Restore(s.Nametables)
	p.pal.Restore(s.Palette)
	p.oam = s.OAM
	p.ctrl, p.mask, p.status, p.oamAddr = s.Ctrl, s.Mask, s.Status, s.OAMAddr
	p.v, p.t = loopy(s.V), loopy(s.T)
	p.fineX, p.writeToggle, p.readBuffer = s.FineX, s.WriteToggle, s.ReadBuffer
	p.ioLatch = s.IOLatch
	p.cycle, p.scanLine, p.frame, p.oddFrame = s.Cycle, s.ScanLine, s.Frame64, s.OddFrame
	p.dotsSinceReset = s.DotsSinceReset
	p.nmiEnabled, p.nmiLine = s.NMIEnabled, s.NMILine
	p.ntByte, p.attrByte, p.loTileByte, p.hiTileByte = s.NTByte, s.AttrByte, s.LoTileByte, s.HiTileByte
	p.bgShiftLo, p.bgShiftHi = s.BgShiftLo, s.BgShiftHi
	p.attrShiftLo, p.attrShiftHi = s.AttrShiftLo, s.AttrShiftHi
	p.attrLatchLo, p.attrLatchHi = s.AttrLatchLo, s.AttrLatchHi
	p.bgA12Prev, p.spriteA12Prev = s.BgA12Prev, s.SpriteA12Prev
	// secondary OAM and sprite-fetch pipeline registers are intra-scanline
	// scratch state; resuming mid-scanline with them zeroed self-heals
	// within one sprite-evaluation cycle (cycle 1 of the next visible line).
}

func (p *PPU) busRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.cart.ReadPPU(addr)
	case addr < 0x3F00:
		return p.nt.Read(addr)
	default:
		return p.pal.Read(addr)
	}
}

func (p *PPU) busWrite(addr uint16, v uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.cart.WritePPU(addr, v)
	case addr < 0x3F00:
		p.nt.Write(addr, v)
	default:
		p.pal.Write(addr, v)
	}
}

func (p *PPU) showBackground() bool { return p.mask&maskShowBg != 0 }
func (p *PPU) showSprites() bool    { return p.mask&maskShowSprites != 0 }
func (p *PPU) renderingEnabled() bool { return p.showBackground() || p.showSprites() }

func (p *PPU) bgPatternBase() uint16 {
	if p.ctrl&ctrlBgPattern != 0 {
		return 0x1000
	}
	return 0
}
func (p *PPU) spritePatternBase() uint16 {
	if p.ctrl&ctrlSpritePattern != 0 {
		return 0x1000
	}
	return 0
}
func (p *PPU) spriteHeight() int {
	if p.ctrl&ctrlSpriteSize16 != 0 {
		return 16
	}
	return 8
}
func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&ctrlIncrement32 != 0 {
		return 32
	}
	return 1
}

func (p *PPU) updateNMI() {
	line := p.nmiEnabled && p.status&statusVBlank != 0
	if line && !p.nmiLine {
		p.irq.RaiseNMI()
	}
	if !line {
		p.irq.ClearNMI()
	}
	p.nmiLine = line
}

// ReadRegister handles a CPU read of a PPU-mapped address ($2000-$3FFF,
// mirrored every 8 bytes).
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 7 {
	case 2: // PPUSTATUS: bits 0-4 are open bus, returning whatever the IO
		// latch last held rather than a fixed 0.
		v := p.status | (p.ioLatch & 0x1F)
		p.status &^= statusVBlank
		p.writeToggle = false
		p.updateNMI()
		p.ioLatch = v
		return v
	case 4: // OAMDATA
		v := p.oam[p.oamAddr]
		p.ioLatch = v
		return v
	case 7: // PPUDATA
		v := p.readBuffer
		if p.v&0x3FFF < 0x3F00 {
			p.readBuffer = p.busRead(uint16(p.v))
		} else {
			v = p.busRead(uint16(p.v))
			p.readBuffer = p.busRead(uint16(p.v) - 0x1000)
		}
		p.v += loopy(p.vramIncrement())
		p.ioLatch = p.readBuffer
		return v
	default: // write-only register: returns whatever is still on the bus
		return p.ioLatch
	}
}

// WriteRegister handles a CPU write to a PPU-mapped address.
func (p *PPU) WriteRegister(addr uint16, val uint8) {
	// Every register write fills the IO latch, including nominally
	// read-only PPUSTATUS and unimplemented addresses; real hardware does
	// this unconditionally before dispatching on the register.
	p.ioLatch = val

	switch addr & 7 {
	case 0: // PPUCTRL
		if !p.warmedUp() {
			return
		}
		p.ctrl = val
		p.nmiEnabled = val&ctrlNMIEnable != 0
		p.t = loopy((uint16(p.t) &^ 0x0C00) | (uint16(val&0x3) << 10))
		p.updateNMI()
	case 1: // PPUMASK
		p.mask = val
	case 3: // OAMADDR
		p.oamAddr = val
	case 4: // OAMDATA
		p.oam[p.oamAddr] = val
		p.oamAddr++
	case 5: // PPUSCROLL
		if !p.writeToggle {
			p.t.setCoarseX(uint16(val) >> 3)
			p.fineX = val & 0x7
		} else {
			p.t.setFineY(uint16(val))
			p.t.setCoarseY(uint16(val) >> 3)
		}
		p.writeToggle = !p.writeToggle
	case 6: // PPUADDR
		if !p.writeToggle {
			p.t.setHi(val)
		} else {
			p.t.setLo(val)
			p.v = p.t
		}
		p.writeToggle = !p.writeToggle
	case 7: // PPUDATA
		p.busWrite(uint16(p.v), val)
		p.v += loopy(p.vramIncrement())
	}
}

// WriteOAMDMA copies a full 256-byte OAM DMA page, starting at the current
// OAMADDR, matching the real chip's wraparound.
func (p *PPU) WriteOAMDMA(page [256]uint8) {
	for i := 0; i < 256; i++ {
		p.oam[uint8(int(p.oamAddr)+i)] = page[i]
	}
}

// trackA12 watches PPU address line A12 (bit 12 of the address bus) for a
// rising edge and clocks the cartridge's MMC3-style scanline IRQ counter
// on it, per spec.md §4.5. prev holds the last sampled level of the line;
// background and sprite fetches share bgA12Prev, since both drive the
// same address bus.
func (p *PPU) trackA12(addr uint16, prev *bool) {
	high := addr&0x1000 != 0
	if high && !*prev {
		p.cart.IRQTick()
	}
	*prev = high
}

// FrameCount returns the number of frames completed since power-on or the
// last Reset, so the orchestrator can detect a frame boundary without
// reaching into renderer-internal scanline/cycle state.
func (p *PPU) FrameCount() uint64 { return p.frame }

// Step advances the PPU by exactly one dot (1/3 of a CPU cycle), mirroring
// the teacher's exec() dispatch. The caller runs it 3 times per CPU cycle.
func (p *PPU) Step() {
	// mappers like MMC1/MMC3 can change mirroring at any time; re-reading
	// it each dot is cheap and keeps vram.Nametables in sync without the
	// cartridge needing a callback into the PPU.
	p.nt.SetMirror(p.cart.MirrorTable())

	visibleScanline := p.scanLine >= 0 && p.scanLine < 240
	preRender := p.scanLine == -1
	renderLine := visibleScanline || preRender
	visibleCycle := p.cycle >= 1 && p.cycle <= 256
	bgFetchCycle := visibleCycle || (p.cycle >= 321 && p.cycle <= 336)

	if p.renderingEnabled() {
		if renderLine && bgFetchCycle {
			p.shiftBackground()
			p.fetchBackgroundByte()
		}
		if renderLine && p.cycle == 256 {
			p.v.incFineY()
		}
		if renderLine && p.cycle == 257 {
			p.v.copyHorizontal(p.t)
		}
		if preRender && p.cycle >= 280 && p.cycle <= 304 {
			p.v.copyVertical(p.t)
		}
	}

	if visibleScanline && p.showSprites() {
		switch p.cycle {
		case 1:
			p.clearSecondaryOAM()
		case 257:
			p.evaluateSprites()
		case 321:
			p.loadSpritePatterns()
		}
	}

	if visibleScanline && visibleCycle {
		p.renderPixel(uint8(p.cycle-1), uint8(p.scanLine))
	}

	if p.renderingEnabled() && p.cycle >= 1 && p.cycle <= 340 {
		p.trackA12(p.currentFetchAddr(), &p.bgA12Prev)
	}

	p.dotsSinceReset++

	// Odd-frame skip: the pre-render line's dot 340 is skipped when
	// rendering is enabled, shortening that frame by one PPU cycle so
	// color-burst phase stays consistent (spec.md §12).
	skipDot := preRender && p.cycle == 339 && p.oddFrame && p.renderingEnabled()

	p.cycle++
	if skipDot {
		p.cycle = 341 // forces the end-of-line rollover below
	}
	if p.cycle > 340 {
		p.cycle = 0
		p.scanLine++
		if p.scanLine > 260 {
			p.scanLine = -1
			p.frame++
			p.oddFrame = !p.oddFrame
		}
	}

	switch {
	case p.scanLine == 241 && p.cycle == 1:
		p.status |= statusVBlank
		p.updateNMI()
	case p.scanLine == -1 && p.cycle == 1:
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
		p.updateNMI()
	}
}

func (p *PPU) currentFetchAddr() uint16 {
	if p.cycle%8 >= 5 {
		return p.bgPatternBase() | uint16(p.ntByte)<<4 | p.v.fineY() | 8
	}
	return p.bgPatternBase() | uint16(p.ntByte)<<4 | p.v.fineY()
}

func (p *PPU) shiftBackground() {
	p.bgShiftLo <<= 1
	p.bgShiftHi <<= 1
	p.attrShiftLo <<= 1
	p.attrShiftHi <<= 1
	if p.attrLatchLo {
		p.attrShiftLo |= 1
	}
	if p.attrLatchHi {
		p.attrShiftHi |= 1
	}
}

func (p *PPU) fetchBackgroundByte() {
	switch p.cycle % 8 {
	case 1:
		p.ntByte = p.busRead(0x2000 | uint16(p.v)&0x0FFF)
	case 3:
		addr := 0x23C0 | (uint16(p.v) & 0x0C00) | ((p.v.coarseY() >> 2) << 3) | (p.v.coarseX() >> 2)
		p.attrByte = p.busRead(addr)
		if p.v.coarseY()&0x02 != 0 {
			p.attrByte >>= 4
		}
		if p.v.coarseX()&0x02 != 0 {
			p.attrByte >>= 2
		}
	case 5:
		p.loTileByte = p.busRead(p.bgPatternBase() | uint16(p.ntByte)<<4 | p.v.fineY())
	case 7:
		p.hiTileByte = p.busRead(p.bgPatternBase() | uint16(p.ntByte)<<4 | p.v.fineY() | 8)
	case 0:
		p.bgShiftLo = (p.bgShiftLo &^ 0xFF) | uint16(p.loTileByte)
		p.bgShiftHi = (p.bgShiftHi &^ 0xFF) | uint16(p.hiTileByte)
		p.attrLatchLo = p.attrByte&0x1 != 0
		p.attrLatchHi = p.attrByte&0x2 != 0
		p.v.incCoarseX()
	}
}

func (p *PPU) bgPixel() (idx, palette uint8) {
	shift := uint(15 - p.fineX)
	lo := (p.bgShiftLo >> shift) & 1
	hi := (p.bgShiftHi >> shift) & 1
	idx = uint8(lo | hi<<1)

	ashift := uint(7 - p.fineX)
	alo := (p.attrShiftLo >> ashift) & 1
	ahi := (p.attrShiftHi >> ashift) & 1
	palette = alo | ahi<<1
	return
}

func (p *PPU) clearSecondaryOAM() {
	for i := range p.secOAM {
		p.secOAM[i] = oamEntry{y: 0xFF, tile: 0xFF, attr: 0xFF, x: 0xFF}
	}
	p.secCount = 0
	p.spriteZeroInSec = false
}

func (p *PPU) evaluateSprites() {
	height := p.spriteHeight()
	limit := p.SpriteLimit
	if limit <= 0 {
		limit = DefaultSpriteLimit
	}
	if limit > len(p.secOAM) {
		limit = len(p.secOAM)
	}
	for i := 0; i < 64; i++ {
		y := p.oam[i*4]
		if p.scanLine < int(y) || p.scanLine >= int(y)+height {
			continue
		}
		if p.secCount < limit {
			p.secOAM[p.secCount] = oamEntry{y: y, tile: p.oam[i*4+1], attr: p.oam[i*4+2], x: p.oam[i*4+3]}
			if i == 0 {
				p.spriteZeroInSec = true
			}
			p.secCount++
		} else {
			p.status |= statusOverflow
			break
		}
	}
}

func (p *PPU) loadSpritePatterns() {
	height := p.spriteHeight()
	p.activeSprites = p.secCount
	for i := 0; i < p.secCount; i++ {
		s := p.secOAM[i]
		row := p.scanLine - int(s.y)
		flipV := s.attr&0x80 != 0
		if flipV {
			row = height - 1 - row
		}

		var base uint16
		if height == 16 {
			base = (uint16(s.tile&1) * 0x1000) + (uint16(s.tile&0xFE) * 16)
			if row >= 8 {
				base += 16
				row -= 8
			}
		} else {
			base = p.spritePatternBase() + uint16(s.tile)*16
		}

		lo := p.busRead(base + uint16(row))
		hi := p.busRead(base + uint16(row) + 8)
		if s.attr&0x40 != 0 {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.spritePatternLo[i] = lo
		p.spritePatternHi[i] = hi
		p.spriteX[i] = s.x
		p.spriteAttr[i] = s.attr
		p.spriteIsZero[i] = p.spriteZeroInSec && i == 0
	}

	p.trackA12(p.spritePatternBase(), &p.bgA12Prev)
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= (b >> i) & 1
	}
	return r
}

func (p *PPU) spritePixel(x uint8) (idx, palette uint8, priority bool, isZero bool) {
	for i := 0; i < p.activeSprites; i++ {
		offset := int(x) - int(p.spriteX[i])
		if offset < 0 || offset > 7 {
			continue
		}
		bit := uint(7 - offset)
		lo := (p.spritePatternLo[i] >> bit) & 1
		hi := (p.spritePatternHi[i] >> bit) & 1
		id := lo | hi<<1
		if id == 0 {
			continue
		}
		return id, p.spriteAttr[i] & 0x3, p.spriteAttr[i]&0x20 == 0, p.spriteIsZero[i]
	}
	return 0, 0, false, false
}

func (p *PPU) renderPixel(x, y uint8) {
	bgIdx, bgPal := uint8(0), uint8(0)
	if p.showBackground() && (p.mask&maskShowBgLeft != 0 || x >= 8) {
		bgIdx, bgPal = p.bgPixel()
	}

	var spIdx, spPal uint8
	var spPriority, spZero bool
	if p.showSprites() && (p.mask&maskShowSpLeft != 0 || x >= 8) {
		spIdx, spPal, spPriority, spZero = p.spritePixel(x)
	}

	if spZero && spIdx != 0 && bgIdx != 0 && x != 255 {
		p.status |= statusSprite0
	}

	if bgIdx == 0 && spIdx == 0 {
		idx := p.pal.BackdropIndex()
		if p.mask&maskGreyscale != 0 {
			idx = greyscale(idx)
		}
		p.Frame[int(y)*256+int(x)] = rgbLUT[idx&0x3F]
		return
	}

	var palID, entryIdx int
	switch {
	case bgIdx == 0:
		palID, entryIdx = 4+int(spPal), int(spIdx)
	case spIdx == 0:
		palID, entryIdx = int(bgPal), int(bgIdx)
	case spPriority:
		palID, entryIdx = int(bgPal), int(bgIdx)
	default:
		palID, entryIdx = 4+int(spPal), int(spIdx)
	}

	if p.mask&maskGreyscale != 0 {
		idx := greyscale(p.pal.Read(0x3F00 + uint16(palID*4+entryIdx)))
		p.Frame[int(y)*256+int(x)] = rgbLUT[idx&0x3F]
		return
	}

	p.Frame[int(y)*256+int(x)] = p.pal.Decode(palID, &rgbLUT)[entryIdx]
}
