package apu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameskmurphy/nes/interrupts"
)

// silentMemory never services a DMC sample fetch with real data, enough
// for tests that don't exercise the DMC channel's sample playback.
type silentMemory struct{}

func (silentMemory) Read(addr uint16) uint8 { return 0 }

func newTestApu() *Apu {
	return New(silentMemory{}, &interrupts.Lines{})
}

// TestStatusRegisterLengthCounterBits is the APU length-counter
// status-bit scenario: enabling a channel and loading its length counter
// makes its bit in $4015 read back as set; disabling clears it immediately.
func TestStatusRegisterLengthCounterBits(t *testing.T) {
	a := newTestApu()
	a.Write(0x4015, 0x01) // enable pulse1 only
	a.Write(0x4003, 0x08) // load length counter (index selects a nonzero entry)

	status := a.Read(0x4015)
	require.NotZero(t, status&0x01)
	require.Zero(t, status&0x02)

	a.Write(0x4015, 0x00) // disable all
	status = a.Read(0x4015)
	require.Zero(t, status&0x01)
}

func TestFrameIRQFiresInFourStepModeAndClearsOnRead(t *testing.T) {
	a := newTestApu()
	a.Write(0x4017, 0x00) // 4-step mode, IRQ enabled
	a.RunCycles(29830)
	require.True(t, a.irq.IRQ)

	status := a.Read(0x4015)
	require.NotZero(t, status&0x40)
	require.False(t, a.frameIRQPending) // cleared as a read side effect
}

func TestFrameIRQInhibitedWhenBitSet(t *testing.T) {
	a := newTestApu()
	a.Write(0x4017, 0x40) // 4-step, IRQ inhibited
	a.RunCycles(29830)
	require.False(t, a.irq.IRQ)
}

func TestPulseMutedWhenLengthCounterExpires(t *testing.T) {
	a := newTestApu()
	a.Write(0x4015, 0x01)
	a.Write(0x4000, 0x00) // duty, no length halt
	a.Write(0x4002, 0x00)
	a.Write(0x4003, 0x08) // length index 1 (254 half-frames), length halt off
	require.True(t, a.pulse1.lengthNonZero())

	for i := 0; i < 300; i++ { // several half-frames' worth
		a.halfFrame()
	}
	require.False(t, a.pulse1.lengthNonZero())
}

func TestReadSamplesDrainsRingBuffer(t *testing.T) {
	a := newTestApu()
	a.SetSampleRate(1000) // coarse decimation so a short run produces samples
	a.RunCycles(CPUClockHz / 500)
	require.Greater(t, a.BufferedSamples(), 0)

	out := make([]float32, 4)
	n := a.ReadSamples(out)
	require.Greater(t, n, 0)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	a := newTestApu()
	a.Write(0x4015, 0x01)
	a.Write(0x4003, 0x08)
	snap := a.Snapshot()

	other := newTestApu()
	other.Restore(snap)
	require.Equal(t, a.pulse1.length.counter, other.pulse1.length.counter)
}
