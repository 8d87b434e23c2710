package bus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameskmurphy/nes/apu"
	"github.com/jameskmurphy/nes/cartridge"
	"github.com/jameskmurphy/nes/interrupts"
	"github.com/jameskmurphy/nes/ppu"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	irq := &interrupts.Lines{}
	rom := &cartridge.ROM{
		Mapper:     0,
		Mirroring:  cartridge.MirrorHorizontal,
		PRG:        make([]byte, 16*1024),
		PRGRAMSize: 8 * 1024,
	}
	cart, err := cartridge.New(rom, irq)
	require.NoError(t, err)

	b := New(cart, irq)
	p := ppu.New(cart, irq)
	b.SetPPU(p)
	a := apu.New(b, irq)
	b.SetAPU(a)
	return b
}

func TestRAMMirroring(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x0000, 0x42)
	require.Equal(t, uint8(0x42), b.Read(0x0800)) // mirrored every 2KiB
	require.Equal(t, uint8(0x42), b.Read(0x1800))
}

func TestControllerShiftRegisterReadsOneBitPerRead(t *testing.T) {
	b := newTestBus(t)
	b.Controllers[0].SetButtons(ButtonA | ButtonStart)
	b.Write(0x4016, 1) // strobe on
	b.Write(0x4016, 0) // strobe off, latches current buttons

	first := b.Read(0x4016) & 1
	require.Equal(t, uint8(1), first) // bit 0 = A, pressed

	second := b.Read(0x4016) & 1
	require.Equal(t, uint8(0), second) // bit 1 = B, not pressed
}

// TestOAMDMAByteForByte is the OAM DMA scenario: writing $4014 requests a
// DMA, and once the console-level caller runs it via RunOAMDMA, all 256
// bytes land in OAM starting at OAMADDR, byte for byte.
func TestOAMDMAByteForByte(t *testing.T) {
	b := newTestBus(t)
	for i := 0; i < 256; i++ {
		b.ram[i] = uint8(i)
	}
	b.Write(0x4014, 0x00) // source page $0000
	ran := b.RunOAMDMA()
	require.True(t, ran)
	for i := 0; i < 256; i++ {
		require.Equal(t, uint8(i), b.PPU.Snapshot().OAM[i])
	}
}

func TestOAMDMANoOpWhenNotRequested(t *testing.T) {
	b := newTestBus(t)
	require.False(t, b.RunOAMDMA())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x0000, 0x77)
	b.Controllers[0].writeStrobe(true)
	snap := b.Snapshot()

	other := newTestBus(t)
	other.Restore(snap)
	require.Equal(t, uint8(0x77), other.Read(0x0000))
	require.True(t, other.Controllers[0].strobe)
}
