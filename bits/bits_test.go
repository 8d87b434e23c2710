package bits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTest(t *testing.T) {
	require.True(t, Test(0x80, 7))
	require.False(t, Test(0x80, 6))
}

func TestSetClear(t *testing.T) {
	require.Equal(t, uint8(0x01), Set(0x00, 0))
	require.Equal(t, uint8(0x00), Clear(0x01, 0))
	require.Equal(t, uint8(0xFF), Set(0xFE, 0))
	require.Equal(t, uint8(0xFE), Clear(0xFF, 0))
}

func TestSetIf(t *testing.T) {
	require.Equal(t, uint8(0x02), SetIf(0x00, 1, true))
	require.Equal(t, uint8(0x00), SetIf(0x02, 1, false))
}

func TestLoHi16(t *testing.T) {
	require.Equal(t, uint8(0xCD), Lo16(0xABCD))
	require.Equal(t, uint8(0xAB), Hi16(0xABCD))
}

func TestPack16(t *testing.T) {
	require.Equal(t, uint16(0xABCD), Pack16(0xCD, 0xAB))
}

func TestCrossesPage(t *testing.T) {
	require.False(t, CrossesPage(0x01FF, 0x0100))
	require.True(t, CrossesPage(0x01FF, 0x0200))
}
