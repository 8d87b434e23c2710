// Package console wires the CPU, PPU, APU, bus and cartridge into a single
// step loop and exposes the host-facing API: run a frame, drain audio,
// reset, save/load state. Grounded in the teacher's nes.nes struct (the
// root aggregate holding every device by value/pointer) and nes.Run's
// cpu.exec/ppu.clock interleaving, generalized from the teacher's
// fixed 1:3 CPU:PPU loop (which never modeled DMA stalls or the APU at
// all) to spec.md §5's NMI > IRQ > DMA > instruction priority order.
package console

import (
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jameskmurphy/nes/apu"
	"github.com/jameskmurphy/nes/bus"
	"github.com/jameskmurphy/nes/cartridge"
	"github.com/jameskmurphy/nes/cpu"
	"github.com/jameskmurphy/nes/interrupts"
	"github.com/jameskmurphy/nes/ppu"
)

// FrameWidth and FrameHeight are the PPU's fixed output resolution.
const (
	FrameWidth  = 256
	FrameHeight = 240
)

// stateMagic and stateVersion tag SaveState blobs; LoadState refuses a blob
// whose magic doesn't match and reports a version mismatch instead of
// decoding garbage into live emulation state.
const (
	stateMagic   = "GNES"
	stateVersion = uint32(1)
)

// StackUnderflowPolicy selects what happens when the 6502 stack pointer
// wraps past $0100/$01FF: WrapSP matches real hardware silently; ErrorSP
// records the violation on Console.StackErrors for a host to surface.
type StackUnderflowPolicy int

const (
	WrapSP StackUnderflowPolicy = iota
	ErrorSP
)

// Console is the root aggregate: every device lives here by pointer, owned
// outright, no shared ownership beyond the interrupt lines they all poke.
type Console struct {
	irq  *interrupts.Lines
	cart *cartridge.Cartridge
	ppu  *ppu.PPU
	apu  *apu.Apu
	bus  *bus.Bus
	cpu  *cpu.Cpu

	log *log.Logger

	haltLogged  bool
	audioScratch []float32
}

// Option configures a Console at construction time, following the
// teacher's functional-options pattern (nesInternal.GoNes.SetOptions).
type Option func(*Console) error

// WithSpriteLimit toggles the hardware 8-sprites-per-scanline cap. Disabling
// it is only useful for homebrew/test ROMs probing raw sprite overflow.
func WithSpriteLimit(limit bool) Option {
	return func(c *Console) error {
		if limit {
			c.ppu.SpriteLimit = ppu.DefaultSpriteLimit
		} else {
			c.ppu.SpriteLimit = 64
		}
		return nil
	}
}

// WithStackUnderflow selects the stack pointer wraparound policy.
func WithStackUnderflow(policy StackUnderflowPolicy) Option {
	return func(c *Console) error {
		c.cpu.StrictStack = policy == ErrorSP
		return nil
	}
}

// WithUnstableOpcodes enables the level-2 undocumented 6502 opcodes whose
// behavior varies across chip revisions (off by default).
func WithUnstableOpcodes(on bool) Option {
	return func(c *Console) error {
		c.cpu.SetUnstableOpcodes(on)
		return nil
	}
}

// Verbose switches the console's logger from io.Discard to stderr.
func Verbose(on bool) Option {
	return func(c *Console) error {
		if on {
			c.log.SetOutput(os.Stderr)
		} else {
			c.log.SetOutput(io.Discard)
		}
		return nil
	}
}

// WithSampleRate sets the initial APU output sample rate in Hz.
func WithSampleRate(hz int) Option {
	return func(c *Console) error {
		c.apu.SetSampleRate(hz)
		return nil
	}
}

// New builds a Console around rom and applies opts in order, the way
// nes.NewNES(options...) threads the teacher's option slice through
// setOptions before the first reset.
func New(rom *cartridge.ROM, opts ...Option) (*Console, error) {
	irq := &interrupts.Lines{}

	cart, err := cartridge.New(rom, irq)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	p := ppu.New(cart, irq)
	b := bus.New(cart, irq)
	b.SetPPU(p)
	a := apu.New(b, irq)
	b.SetAPU(a)
	cp := cpu.New(b, irq)

	c := &Console{
		irq: irq, cart: cart, ppu: p, apu: a, bus: b, cpu: cp,
		log: log.New(io.Discard, "console: ", log.LstdFlags),
	}

	for i, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("console: option %d: %w", i, err)
		}
	}

	c.cpu.Reset()
	return c, nil
}

// StackErrors reports stack pointer wraparounds recorded under the
// ErrorSP policy, oldest first.
func (c *Console) StackErrors() []string { return c.cpu.Errors }

// stepInstruction runs exactly one unit of CPU-side work: service a
// pending NMI, else a pending maskable IRQ, else a pending DMA pause,
// else execute the next instruction. Returns the CPU cycles consumed.
func (c *Console) stepInstruction() int {
	if c.irq.NMI {
		c.irq.ClearNMI()
		cyc := c.cpu.TriggerNMI()
		c.cpu.AddCycles(cyc)
		return cyc
	}

	if c.irq.IRQ {
		if cyc := c.cpu.TriggerIRQ(); cyc > 0 {
			c.irq.ClearIRQ()
			c.cpu.AddCycles(cyc)
			return cyc
		}
		// masked by the I flag: line stays set, retried next boundary
	}

	if kind, count := c.irq.PendingDMA(); kind != interrupts.DMANone {
		c.irq.ClearDMA()
		cyc := c.cpu.DMAPause(kind, count)
		c.cpu.AddCycles(cyc)
		if kind == interrupts.DMAOAM {
			c.bus.RunOAMDMA()
		}
		return cyc
	}

	if c.cpu.Halted && !c.haltLogged {
		c.log.Printf("cpu halted on KIL/JAM opcode, frame will freeze until Reset")
		c.haltLogged = true
	}

	return c.cpu.Step()
}

// RunFrame advances emulation until the PPU completes exactly one frame,
// having first latched the two controllers' button state, and returns a
// pointer to the freshly-rendered 256x240 RGB888 frame buffer. The pointer
// aliases Console-owned memory and is only valid until the next RunFrame
// call.
func (c *Console) RunFrame(controller1, controller2 uint8) *[FrameWidth * FrameHeight]uint32 {
	c.bus.Controllers[0].SetButtons(controller1)
	c.bus.Controllers[1].SetButtons(controller2)

	startFrame := c.ppu.FrameCount()
	for c.ppu.FrameCount() == startFrame {
		cycles := c.stepInstruction()
		for i := 0; i < cycles*3; i++ {
			c.ppu.Step()
		}
		c.apu.RunCycles(cycles)
	}
	return &c.ppu.Frame
}

// GetAudio drains up to len(out) queued audio samples, converted from the
// APU's internal float32 representation to signed 16-bit PCM, and returns
// the count copied. Returns fewer than len(out) if the buffer underruns;
// never blocks.
func (c *Console) GetAudio(out []int16) int {
	if len(c.audioScratch) < len(out) {
		c.audioScratch = make([]float32, len(out))
	}
	n := c.apu.ReadSamples(c.audioScratch[:len(out)])
	for i := 0; i < n; i++ {
		out[i] = int16(c.audioScratch[i] * 32767)
	}
	return n
}

// SetSampleRate changes the APU's output sample rate in Hz.
func (c *Console) SetSampleRate(rate uint32) { c.apu.SetSampleRate(int(rate)) }

// Reset performs a soft reset: the CPU restarts through the reset vector,
// the PPU and APU return to power-on state, and the cartridge's mapper
// registers reset. Work RAM is left untouched, matching real hardware's
// reset line (only power-on clears RAM).
func (c *Console) Reset() {
	c.irq.ClearNMI()
	c.irq.ClearIRQ()
	c.irq.ClearDMA()
	c.cart.Reset()
	c.ppu.Reset()
	c.apu.Reset()
	c.cpu.Reset()
	c.haltLogged = false
}

// snapshot is the complete, gob-encodable save-state payload.
type snapshot struct {
	CPU  cpu.Snapshot
	PPU  ppu.Snapshot
	APU  apu.Snapshot
	Bus  bus.Snapshot
	Cart cartridge.Snapshot
}

// SaveState encodes the console's complete emulation state (everything
// needed to resume byte-for-byte except the host-owned ROM file and any
// already-queued audio) to w, prefixed with a magic tag and version.
func (c *Console) SaveState(w io.Writer) error {
	if _, err := w.Write([]byte(stateMagic)); err != nil {
		return fmt.Errorf("console: write state magic: %w", err)
	}

	s := snapshot{
		CPU:  c.cpu.Snapshot(),
		PPU:  c.ppu.Snapshot(),
		APU:  c.apu.Snapshot(),
		Bus:  c.bus.Snapshot(),
		Cart: c.cart.Snapshot(),
	}
	enc := gob.NewEncoder(w)
	if err := enc.Encode(stateVersion); err != nil {
		return fmt.Errorf("console: encode state version: %w", err)
	}
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("console: encode state: %w", err)
	}
	return nil
}

// LoadState decodes a blob written by SaveState and restores it into the
// console in place. The caller must have already constructed the Console
// against the same ROM; a PRG-RAM size mismatch (wrong ROM) is reported as
// an error rather than partially applied.
func (c *Console) LoadState(r io.Reader) error {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("console: read state magic: %w", err)
	}
	if string(magic[:]) != stateMagic {
		return fmt.Errorf("console: bad state magic %q", magic[:])
	}

	dec := gob.NewDecoder(r)
	var version uint32
	if err := dec.Decode(&version); err != nil {
		return fmt.Errorf("console: decode state version: %w", err)
	}
	if version != stateVersion {
		return fmt.Errorf("console: unsupported state version %d (want %d)", version, stateVersion)
	}

	var s snapshot
	if err := dec.Decode(&s); err != nil {
		return fmt.Errorf("console: decode state: %w", err)
	}

	if err := c.cart.Restore(s.Cart); err != nil {
		return fmt.Errorf("console: restore cartridge: %w", err)
	}
	c.cpu.Restore(s.CPU)
	c.ppu.Restore(s.PPU)
	c.apu.Restore(s.APU)
	c.bus.Restore(s.Bus)
	return nil
}

// SaveRAM persists the cartridge's battery-backed PRG-RAM, a no-op if the
// mounted board has no battery.
func (c *Console) SaveRAM(w io.Writer) error {
	if !c.cart.HasBattery() {
		return nil
	}
	return c.cart.SaveRAM(w)
}

// LoadRAM restores previously saved battery-backed PRG-RAM.
func (c *Console) LoadRAM(r io.Reader) error {
	if !c.cart.HasBattery() {
		return nil
	}
	return c.cart.LoadRAM(r)
}
