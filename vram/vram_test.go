package vram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameskmurphy/nes/cartridge"
)

func TestHorizontalMirroringAliasesTopAndBottomTables(t *testing.T) {
	var nt Nametables
	nt.SetMirror(cartridge.MirrorHorizontal)
	nt.Write(0x2000, 0x11) // table 0
	require.Equal(t, uint8(0x11), nt.Read(0x2400)) // table 1 mirrors table 0
	require.NotEqual(t, uint8(0x11), nt.Read(0x2800))
}

func TestVerticalMirroringAliasesLeftAndRightTables(t *testing.T) {
	var nt Nametables
	nt.SetMirror(cartridge.MirrorVertical)
	nt.Write(0x2000, 0x22) // table 0
	require.Equal(t, uint8(0x22), nt.Read(0x2800)) // table 2 mirrors table 0
}

func TestPaletteBackgroundMirrorAliasesSpriteSlotZero(t *testing.T) {
	var p Palette
	p.Write(0x3F00, 0x0F)
	require.Equal(t, uint8(0x0F), p.Read(0x3F10)) // $3F10 aliases $3F00
}

func TestPaletteWriteMasksToSixBits(t *testing.T) {
	var p Palette
	p.Write(0x3F01, 0xFF)
	require.Equal(t, uint8(0x3F), p.Read(0x3F01))
}

func TestPaletteDecodeCacheInvalidatesOnWrite(t *testing.T) {
	var p Palette
	var lut [64]uint32
	lut[0] = 0xAAAAAA
	out := p.Decode(0, &lut)
	require.Equal(t, uint32(0xAAAAAA), out[0])

	lut[0] = 0xBBBBBB
	p.Write(0x3F00, 0x00) // invalidates cache, but palette value is unchanged
	out = p.Decode(0, &lut)
	require.Equal(t, uint32(0xBBBBBB), out[0])
}

func TestNametableSnapshotRestoreRoundTrip(t *testing.T) {
	var nt Nametables
	nt.SetMirror(cartridge.MirrorVertical)
	nt.Write(0x2000, 0x55)
	snap := nt.Bytes()

	var other Nametables
	other.SetMirror(cartridge.MirrorVertical)
	other.Restore(snap)
	require.Equal(t, uint8(0x55), other.Read(0x2000))
}
