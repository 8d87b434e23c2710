package cartridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameskmurphy/nes/interrupts"
)

func newCartridgeWithMapper(t *testing.T, mapperID uint8, prgBanks, chrBanks int) *Cartridge {
	t.Helper()
	data := buildINES(mapperID, prgBanks, chrBanks, 0)
	rom, err := LoadINES(bytes.NewReader(data))
	require.NoError(t, err)
	cart, err := New(rom, &interrupts.Lines{})
	require.NoError(t, err)
	return cart
}

func TestUxROMSwitchesLowBankFixesHighBank(t *testing.T) {
	cart := newCartridgeWithMapper(t, 2, 4, 0) // 4x 16K PRG banks
	cart.prg[0*16*1024] = 0xAA                 // bank 0
	cart.prg[2*16*1024] = 0xBB                 // bank 2
	last := 3 * 16 * 1024
	cart.prg[last] = 0xCC // last bank, fixed at $C000

	require.Equal(t, uint8(0xAA), cart.ReadCPU(0x8000))
	require.Equal(t, uint8(0xCC), cart.ReadCPU(0xC000))

	cart.WriteCPU(0x8000, 2)
	require.Equal(t, uint8(0xBB), cart.ReadCPU(0x8000))
	require.Equal(t, uint8(0xCC), cart.ReadCPU(0xC000)) // unaffected
}

// TestMMC1FiveWriteBankCommit verifies the 5-write serial-shift commit
// protocol: five 1-bit writes to $8000 commit a value to the control
// register, five to $E000 commit one to the PRG bank register, and the
// committed bank is then what CPU reads at $8000 see.
func TestMMC1FiveWriteBankCommit(t *testing.T) {
	cart := newCartridgeWithMapper(t, 1, 8, 0) // 8x 16K = 128K PRG
	m := cart.Mapper.(*mapperMMC1)

	// Select PRG bank mode "fix last" (mode 3) via the control register at
	// $8000, value 0x0C = prgBankMode 3.
	writeMMC1(cart, 0x8000, 0x0C)
	require.Equal(t, uint8(3), m.prgBankMode)

	// Now select PRG bank 5 via the $E000-$FFFF register.
	writeMMC1(cart, 0xE000, 0x05)
	require.Equal(t, uint8(5), m.prgBank)

	cart.prg[5*16*1024] = 0x55
	require.Equal(t, uint8(0x55), cart.ReadCPU(0x8000))
}

// writeMMC1 performs the 5 individual 1-bit-per-write shifts the real
// MMC1 shift register requires, all targeting addr so the final write's
// address selects the destination register.
func writeMMC1(cart *Cartridge, addr uint16, val uint8) {
	for i := 0; i < 5; i++ {
		bit := (val >> i) & 1
		cart.WriteCPU(addr, bit)
	}
}

func TestMMC1ResetBitClearsShiftRegister(t *testing.T) {
	cart := newCartridgeWithMapper(t, 1, 8, 0)
	m := cart.Mapper.(*mapperMMC1)

	cart.WriteCPU(0x8000, 1) // partial shift, only 1 of 5 bits in
	cart.WriteCPU(0x8000, 0x80)
	require.Equal(t, uint8(0), m.shift)
	require.Equal(t, uint8(0), m.counter)
}

func TestMMC3IRQFiresOnCounterReachingZero(t *testing.T) {
	cart := newCartridgeWithMapper(t, 4, 16, 8)
	m := cart.Mapper.(*mapperMMC3)

	cart.WriteCPU(0xC000, 2) // latch = 2
	cart.WriteCPU(0xC001, 0) // request reload
	cart.WriteCPU(0xE001, 0) // enable IRQ

	m.IRQTick() // reload to latch (2), no fire
	require.False(t, cart.irq.IRQ)
	m.IRQTick() // counter 2 -> 1
	require.False(t, cart.irq.IRQ)
	m.IRQTick() // counter 1 -> 0, fires
	require.True(t, cart.irq.IRQ)
}

func TestMMC3IRQDisableAcknowledgesPendingLine(t *testing.T) {
	cart := newCartridgeWithMapper(t, 4, 16, 8)
	cart.irq.RaiseIRQ()
	cart.WriteCPU(0xE000, 0) // disable, should clear the line
	require.False(t, cart.irq.IRQ)
}
