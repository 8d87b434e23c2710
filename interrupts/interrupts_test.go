package interrupts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRaiseClearNMIIsIdempotent(t *testing.T) {
	var l Lines
	l.RaiseNMI()
	l.RaiseNMI()
	require.True(t, l.NMI)
	l.ClearNMI()
	require.False(t, l.NMI)
}

func TestDMARequestRoundTrip(t *testing.T) {
	var l Lines
	kind, count := l.PendingDMA()
	require.Equal(t, DMANone, kind)
	require.Equal(t, 0, count)

	l.RequestDMA(DMAOAM, 256)
	kind, count = l.PendingDMA()
	require.Equal(t, DMAOAM, kind)
	require.Equal(t, 256, count)

	l.ClearDMA()
	kind, count = l.PendingDMA()
	require.Equal(t, DMANone, kind)
	require.Equal(t, 0, count)
}

func TestIRQStaysSetUntilExplicitlyCleared(t *testing.T) {
	var l Lines
	l.RaiseIRQ()
	l.RaiseIRQ() // a second source raising it again changes nothing
	require.True(t, l.IRQ)
	l.ClearIRQ()
	require.False(t, l.IRQ)
}
