// Package bus implements the NES CPU address space: 2 KiB of work RAM
// mirrored through $1FFF, PPU registers mirrored every 8 bytes through
// $3FFF, APU/controller registers at $4000-$4017, OAM DMA at $4014, and
// the cartridge's PRG/mapper registers from $4020 up. Grounded in the
// teacher's lib/common/bus.go connection-table idea, simplified to a
// single concrete struct since this module has exactly one CPU, one PPU,
// and one APU rather than the teacher's pluggable multi-map registry.
package bus

import (
	"github.com/jameskmurphy/nes/apu"
	"github.com/jameskmurphy/nes/cartridge"
	"github.com/jameskmurphy/nes/interrupts"
	"github.com/jameskmurphy/nes/ppu"
)

// Controller is a single joypad's live button state, sampled into a
// shift register when the host writes a 1 then 0 to $4016 (strobe).
type Controller struct {
	buttons uint8 // bit 0 A, 1 B, 2 Select, 3 Start, 4 Up, 5 Down, 6 Left, 7 Right
	shift   uint8
	strobe  bool
}

const (
	ButtonA = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// SetButtons overwrites the controller's held-button snapshot; the host
// calls this once per frame, not per CPU cycle, per spec.md §4.8.
func (c *Controller) SetButtons(mask uint8) { c.buttons = mask }

func (c *Controller) writeStrobe(on bool) {
	c.strobe = on
	if on {
		c.shift = c.buttons
	}
}

func (c *Controller) read() uint8 {
	if c.strobe {
		c.shift = c.buttons
	}
	v := c.shift & 1
	c.shift >>= 1
	c.shift |= 0x80
	return 0x40 | v // upper bits read back as the open-bus pattern 010xxxxx
}

// Bus wires RAM, the PPU, the APU, the cartridge, and the two controller
// ports into the single 16-bit CPU address space.
type Bus struct {
	ram [2048]uint8

	PPU  *ppu.PPU
	APU  *apu.Apu
	Cart *cartridge.Cartridge
	irq  *interrupts.Lines

	Controllers [2]Controller

	dmaPage      uint8
	dmaRequested bool
}

// New builds a Bus around the cartridge and interrupt lines. PPU and APU
// are wired in afterward via SetPPU/SetAPU: the APU needs a Memory-shaped
// view of the bus itself for DMC sample fetches, so the bus must exist
// before it. OAM DMA's source reads are made by the bus (RunOAMDMA), not
// the PPU.
func New(cart *cartridge.Cartridge, irq *interrupts.Lines) *Bus {
	return &Bus{Cart: cart, irq: irq}
}

func (b *Bus) SetPPU(p *ppu.PPU) { b.PPU = p }
func (b *Bus) SetAPU(a *apu.Apu) { b.APU = a }

// Read implements cpu.Memory and apu.Memory.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4000:
		return b.PPU.ReadRegister(addr)
	case addr == 0x4015:
		return b.APU.Read(addr)
	case addr == 0x4016:
		return b.Controllers[0].read()
	case addr == 0x4017:
		return b.Controllers[1].read()
	case addr < 0x4020:
		return 0 // open bus: unused APU/IO register range
	default:
		return b.Cart.ReadCPU(addr)
	}
}

func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = val
	case addr < 0x4000:
		b.PPU.WriteRegister(addr, val)
	case addr == 0x4014:
		b.dmaPage = val
		b.dmaRequested = true
		b.irq.RequestDMA(interrupts.DMAOAM, 256)
	case addr == 0x4016:
		on := val&1 != 0
		b.Controllers[0].writeStrobe(on)
		b.Controllers[1].writeStrobe(on)
	case addr == 0x4017:
		b.APU.Write(addr, val)
	case addr < 0x4018:
		b.APU.Write(addr, val)
	case addr < 0x4020:
		// unused APU/IO test registers
	default:
		b.Cart.WriteCPU(addr, val)
	}
}

// Snapshot is the save-state view of Bus: work RAM and the two
// controllers' shift-register state (button snapshots themselves are
// host input, resupplied every frame, so they are not persisted).
type Snapshot struct {
	RAM [2048]uint8

	Ctrl1Shift, Ctrl2Shift   uint8
	Ctrl1Strobe, Ctrl2Strobe bool
}

func (b *Bus) Snapshot() Snapshot {
	return Snapshot{
		RAM:         b.ram,
		Ctrl1Shift:  b.Controllers[0].shift,
		Ctrl1Strobe: b.Controllers[0].strobe,
		Ctrl2Shift:  b.Controllers[1].shift,
		Ctrl2Strobe: b.Controllers[1].strobe,
	}
}

func (b *Bus) Restore(s Snapshot) {
	b.ram = s.RAM
	b.Controllers[0].shift, b.Controllers[0].strobe = s.Ctrl1Shift, s.Ctrl1Strobe
	b.Controllers[1].shift, b.Controllers[1].strobe = s.Ctrl2Shift, s.Ctrl2Strobe
}

// RunOAMDMA copies the 256-byte page at dmaPage<<8 into OAM, called by the
// console's step loop once it has charged the CPU the DMA's cycle cost.
// Returns false if no DMA was pending.
func (b *Bus) RunOAMDMA() bool {
	if !b.dmaRequested {
		return false
	}
	b.dmaRequested = false
	var page [256]uint8
	base := uint16(b.dmaPage) << 8
	for i := 0; i < 256; i++ {
		page[i] = b.Read(base + uint16(i))
	}
	b.PPU.WriteOAMDMA(page)
	return true
}
