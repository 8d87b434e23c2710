package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameskmurphy/nes/cartridge"
)

var errTestOption = errors.New("option failed")

// buildTestROM constructs a minimal 32 KiB NROM image with program bytes
// placed at $8000 and the reset/NMI vectors pointed at it.
func buildTestROM(program []byte) *cartridge.ROM {
	prg := make([]byte, 32*1024)
	copy(prg, program)
	prg[0x7FFC], prg[0x7FFD] = 0x00, 0x80 // reset vector -> $8000
	prg[0x7FFA], prg[0x7FFB] = 0x00, 0x80 // NMI vector -> $8000
	return &cartridge.ROM{
		Mapper:     0,
		Mirroring:  cartridge.MirrorHorizontal,
		PRG:        prg,
		PRGRAMSize: 8 * 1024,
	}
}

func TestNewConstructsRunnableConsole(t *testing.T) {
	rom := buildTestROM([]byte{0xEA}) // NOP
	c, err := New(rom)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, uint16(0x8000), c.cpu.PC)
}

func TestRunFrameAdvancesExactlyOneFrame(t *testing.T) {
	rom := buildTestROM([]byte{0x4C, 0x00, 0x80}) // JMP $8000, tight loop
	c, err := New(rom)
	require.NoError(t, err)

	startFrame := c.ppu.FrameCount()
	frame := c.RunFrame(0, 0)
	require.Equal(t, startFrame+1, c.ppu.FrameCount())
	require.NotNil(t, frame)
}

func TestResetLeavesWorkRAMUntouched(t *testing.T) {
	rom := buildTestROM([]byte{0xEA})
	c, err := New(rom)
	require.NoError(t, err)

	c.bus.Write(0x0000, 0x55)
	c.Reset()
	require.Equal(t, uint8(0x55), c.bus.Read(0x0000))
	require.Equal(t, uint16(0x8000), c.cpu.PC) // PC re-fetched from reset vector
}

// TestSaveLoadStateRoundTrip is the save-state scenario: running a few
// frames, saving, mutating further, then loading restores the saved point
// byte for byte (at least for CPU registers, which are easy to compare
// directly).
func TestSaveLoadStateRoundTrip(t *testing.T) {
	rom := buildTestROM([]byte{0xA9, 0x11, 0x4C, 0x00, 0x80}) // LDA #$11; JMP $8000
	c, err := New(rom)
	require.NoError(t, err)

	c.RunFrame(0, 0)
	var buf bytes.Buffer
	require.NoError(t, c.SaveState(&buf))

	savedA := c.cpu.A
	savedPC := c.cpu.PC

	c.RunFrame(0, 0)
	c.RunFrame(0, 0)
	require.NoError(t, c.LoadState(bytes.NewReader(buf.Bytes())))

	require.Equal(t, savedA, c.cpu.A)
	require.Equal(t, savedPC, c.cpu.PC)
}

func TestLoadStateRejectsBadMagic(t *testing.T) {
	rom := buildTestROM([]byte{0xEA})
	c, err := New(rom)
	require.NoError(t, err)

	err = c.LoadState(bytes.NewReader([]byte("XXXX")))
	require.Error(t, err)
}

func TestStackUnderflowPolicyErrorSPRecordsWithoutHalting(t *testing.T) {
	// PLA with SP already at $FF underflows the stack; under ErrorSP this
	// should record a message on StackErrors and keep running, not halt.
	rom := buildTestROM([]byte{0x68}) // PLA
	c, err := New(rom, WithStackUnderflow(ErrorSP))
	require.NoError(t, err)

	c.cpu.SP = 0xFF
	c.stepInstruction()
	require.NotEmpty(t, c.StackErrors())
	require.False(t, c.cpu.Halted)
}

func TestOptionErrorIsReturnedFromNew(t *testing.T) {
	rom := buildTestROM([]byte{0xEA})
	failing := func(c *Console) error { return errTestOption }
	_, err := New(rom, failing)
	require.ErrorIs(t, err, errTestOption)
}
