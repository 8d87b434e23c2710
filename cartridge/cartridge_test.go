package cartridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameskmurphy/nes/interrupts"
)

// buildINES constructs a minimal valid iNES v1 file for the given mapper,
// PRG/CHR bank counts, matching spec.md §6's header layout.
func buildINES(mapperID uint8, prgBanks, chrBanks int, flags6Extra uint8) []byte {
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(byte(prgBanks))
	buf.WriteByte(byte(chrBanks))
	flags6 := (mapperID & 0x0F) << 4
	flags6 |= flags6Extra
	flags7 := mapperID & 0xF0
	buf.WriteByte(flags6)
	buf.WriteByte(flags7)
	for i := 0; i < 8; i++ {
		buf.WriteByte(0)
	}
	buf.Write(make([]byte, prgBanks*prgBankSize))
	buf.Write(make([]byte, chrBanks*chrBankSize))
	return buf.Bytes()
}

func TestLoadINESRejectsBadMagic(t *testing.T) {
	data := buildINES(0, 1, 1, 0)
	data[0] = 'X'
	_, err := LoadINES(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestLoadINESRejectsZeroPRG(t *testing.T) {
	data := buildINES(0, 0, 1, 0)
	_, err := LoadINES(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrInvalidPRGSize)
}

func TestLoadINESRejectsUnsupportedMapper(t *testing.T) {
	data := buildINES(99, 1, 1, 0)
	_, err := LoadINES(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrUnsupportedMapper)
}

func TestLoadINESParsesNROM(t *testing.T) {
	data := buildINES(0, 2, 1, 0x01) // 32 KiB PRG, 8 KiB CHR, vertical mirroring
	rom, err := LoadINES(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, uint8(0), rom.Mapper)
	require.Equal(t, MirrorVertical, rom.Mirroring)
	require.Len(t, rom.PRG, 2*prgBankSize)
	require.Len(t, rom.CHR, chrBankSize)
}

func TestLoadINESSkipsTrainer(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(1)
	buf.WriteByte(1)
	buf.WriteByte(0x04) // trainer present
	buf.WriteByte(0)
	for i := 0; i < 8; i++ {
		buf.WriteByte(0)
	}
	buf.Write(make([]byte, 512)) // trainer
	prg := make([]byte, prgBankSize)
	prg[0] = 0x42
	buf.Write(prg)
	buf.Write(make([]byte, chrBankSize))

	rom, err := LoadINES(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint8(0x42), rom.PRG[0])
}

func newNROMCartridge(t *testing.T) *Cartridge {
	t.Helper()
	data := buildINES(0, 1, 1, 0)
	rom, err := LoadINES(bytes.NewReader(data))
	require.NoError(t, err)
	cart, err := New(rom, &interrupts.Lines{})
	require.NoError(t, err)
	return cart
}

func TestNROMPRGRAMReadWrite(t *testing.T) {
	cart := newNROMCartridge(t)
	cart.WriteCPU(0x6000, 0x99)
	require.Equal(t, uint8(0x99), cart.ReadCPU(0x6000))
}

func TestNROMMirrorsSixteenKPRG(t *testing.T) {
	cart := newNROMCartridge(t)
	cart.prg[0] = 0x11
	require.Equal(t, uint8(0x11), cart.ReadCPU(0x8000))
	require.Equal(t, uint8(0x11), cart.ReadCPU(0xC000)) // mirrors the 16K bank
}

func TestNROMSnapshotRestoreRoundTrip(t *testing.T) {
	cart := newNROMCartridge(t)
	cart.WriteCPU(0x6000, 0x77)
	snap := cart.Snapshot()

	other := newNROMCartridge(t)
	require.NoError(t, other.Restore(snap))
	require.Equal(t, uint8(0x77), other.ReadCPU(0x6000))
}

func TestCartridgeRestoreRejectsSizeMismatch(t *testing.T) {
	cart := newNROMCartridge(t)
	snap := cart.Snapshot()
	snap.PRGRAM = snap.PRGRAM[:len(snap.PRGRAM)-1]
	err := cart.Restore(snap)
	require.Error(t, err)
}
