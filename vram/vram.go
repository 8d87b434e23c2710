// Package vram implements the PPU-side memory map: the 4 KiB nametable
// region (mirror-routed through the cartridge's 4-entry table) and the
// 32-byte palette RAM with its $3F10/14/18/1C aliasing. Grounded in the
// teacher's lib/common/nametable.go (mirror decode switch) and
// lib/ppu/palette.go (alias-on-write-and-read rule + per-ID decode cache
// idea), generalized from the teacher's fixed Horizontal/Vertical-only
// switch to consulting an arbitrary cartridge.Mirroring table so four-screen
// and MMC1's one-screen modes fall out of the same code path.
package vram

import "github.com/jameskmurphy/nes/cartridge"

// Nametables is the 4 KiB CIRAM-equivalent backing store, routed through a
// cartridge-supplied 4-entry mirror table. Only 2 KiB is wired on real
// hardware for most boards; four-screen boards use the full 4 KiB.
type Nametables struct {
	ram     [4096]byte
	mirror  cartridge.Mirroring
}

func (n *Nametables) SetMirror(m cartridge.Mirroring) { n.mirror = m }

// Bytes exposes the raw CIRAM contents for save states.
func (n *Nametables) Bytes() [4096]byte { return n.ram }

// Restore overwrites the raw CIRAM contents from a save state.
func (n *Nametables) Restore(b [4096]byte) { n.ram = b }

// decode maps a PPU address in $2000-$2FFF (or its $3000-$3EFF mirror,
// already folded by the caller) to an offset into ram.
func (n *Nametables) decode(addr uint16) uint16 {
	addr &= 0x0FFF
	table := addr / 0x400
	offset := addr % 0x400
	bank := n.mirror[table]
	return uint16(bank)*0x400 + offset
}

func (n *Nametables) Read(addr uint16) uint8 {
	return n.ram[n.decode(addr)]
}

func (n *Nametables) Write(addr uint16, val uint8) {
	n.ram[n.decode(addr)] = val
}

// Palette is the 32-byte palette RAM. Reads and writes to the sprite
// palettes' entry-0 slots ($3F10/14/18/1C) alias the background palettes'
// entry-0 slots ($3F00/04/08/0C); this is a property of the physical decoder,
// not just a write-time convenience, so both paths apply it.
type Palette struct {
	ram [32]byte

	// decoded caches: 4 background + 4 sprite palettes of 4 RGB entries,
	// invalidated on any write. Purely an optimization (spec.md §9) — never
	// load-bearing for correctness.
	cache    [8][4]uint32
	cacheOK  [8]bool
}

func aliasAddr(addr uint16) uint16 {
	addr &= 0x1F
	if addr >= 0x10 && addr%4 == 0 {
		addr -= 0x10
	}
	return addr
}

// Bytes exposes the raw palette RAM for save states.
func (p *Palette) Bytes() [32]byte { return p.ram }

// Restore overwrites the raw palette RAM and invalidates the decode cache.
func (p *Palette) Restore(b [32]byte) {
	p.ram = b
	for i := range p.cacheOK {
		p.cacheOK[i] = false
	}
}

func (p *Palette) Read(addr uint16) uint8 {
	return p.ram[aliasAddr(addr)]
}

func (p *Palette) Write(addr uint16, val uint8) {
	p.ram[aliasAddr(addr)] = val & 0x3F
	for i := range p.cacheOK {
		p.cacheOK[i] = false
	}
}

// Decode returns the 4 RGB entries (via rgbLUT, the 64-entry NES color
// table) for background palette id 0-3 or sprite palette id 4-7, caching
// the result until the next palette write invalidates it.
func (p *Palette) Decode(id int, rgbLUT *[64]uint32) [4]uint32 {
	if p.cacheOK[id] {
		return p.cache[id]
	}
	base := uint16(id * 4)
	var out [4]uint32
	for i := 0; i < 4; i++ {
		out[i] = rgbLUT[p.Read(base+uint16(i))&0x3F]
	}
	p.cache[id] = out
	p.cacheOK[id] = true
	return out
}

// BackdropIndex returns the universal background color (palette entry 0),
// used whenever both background and sprite pixels are transparent.
func (p *Palette) BackdropIndex() uint8 {
	return p.Read(0)
}
