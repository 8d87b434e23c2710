package apu

import "github.com/jameskmurphy/nes/interrupts"

// CPUClockHz is the NTSC CPU clock rate the frame sequencer and sample
// rate converter are both derived from.
const CPUClockHz = 1789773

// Apu is the 2A03 sound chip: five channels, a frame sequencer driving
// their envelope/length/sweep units, and the canonical non-linear mixer
// feeding a ring buffer the host drains for playback.
type Apu struct {
	irq *interrupts.Lines

	pulse1   *pulse
	pulse2   *pulse
	triangle triangle
	noise    *noise
	dmc      *dmc

	frameMode      uint8 // 0: 4-step, 1: 5-step
	frameIRQInhibit bool
	frameIRQPending bool
	cpuCycle       uint64

	buffer     *ringBuffer
	sampleRate float64
	cyclesPerSample float64
	sampleAccum     float64
}

// New builds an Apu wired to mem for DMC sample DMA and irq for frame and
// DMC interrupt delivery.
func New(mem Memory, irq *interrupts.Lines) *Apu {
	a := &Apu{
		irq:      irq,
		pulse1:   newPulse(true),
		pulse2:   newPulse(false),
		noise:    newNoise(),
		dmc:      newDMC(mem, irq),
		buffer:   newRingBuffer(1 << 15),
	}
	a.SetSampleRate(48000)
	return a
}

// SetSampleRate changes the output sample rate; RunCycles adapts its
// decimation ratio immediately on the next call.
func (a *Apu) SetSampleRate(hz int) {
	a.sampleRate = float64(hz)
	a.cyclesPerSample = float64(CPUClockHz) / a.sampleRate
}

func (a *Apu) Reset() {
	*a = Apu{
		irq:    a.irq,
		pulse1: newPulse(true),
		pulse2: newPulse(false),
		noise:  newNoise(),
		dmc:    newDMC(a.dmc.mem, a.irq),
		buffer: a.buffer,
	}
	a.SetSampleRate(48000)
}

// frameSchedule lists, for each sequence step, the CPU cycle count at
// which it fires and whether it's a quarter-frame tick, half-frame tick,
// and (4-step mode only) the frame IRQ.
type frameEvent struct {
	at                uint64
	quarter, half, irq bool
}

var frameSchedule4 = []frameEvent{
	{7457, true, false, false},
	{14913, true, true, false},
	{22371, true, false, false},
	{29828, false, false, true},
	{29829, true, true, true},
}

var frameSchedule5 = []frameEvent{
	{7457, true, false, false},
	{14913, true, true, false},
	{22371, true, false, false},
	{29829, false, false, false},
	{37281, true, true, false},
}

// RunCycles advances the APU by n CPU cycles, called from the console's
// RunFrame loop once per CPU step with the cycle count that step just took.
func (a *Apu) RunCycles(n int) {
	for i := 0; i < n; i++ {
		a.tickOne()
	}
}

func (a *Apu) tickOne() {
	a.triangle.tickTimer()
	if a.cpuCycle%2 == 1 {
		a.pulse1.tickTimer()
		a.pulse2.tickTimer()
		a.noise.tickTimer()
		a.dmc.tickTimer()
	}

	a.cpuCycle++
	a.tickFrameSequencer()

	a.sampleAccum++
	if a.sampleAccum >= a.cyclesPerSample {
		a.sampleAccum -= a.cyclesPerSample
		a.buffer.push(a.mix())
	}
}

// tickFrameSequencer fires quarter/half-frame events and the frame IRQ at
// the CPU cycle counts from frameSchedule4/5, resetting cpuCycle to 0 once
// the sequence's final event has fired.
func (a *Apu) tickFrameSequencer() {
	schedule := frameSchedule4
	period := uint64(29830)
	if a.frameMode == 1 {
		schedule = frameSchedule5
		period = 37282
	}

	for _, ev := range schedule {
		if a.cpuCycle != ev.at {
			continue
		}
		if ev.quarter {
			a.quarterFrame()
		}
		if ev.half {
			a.halfFrame()
		}
		if ev.irq && !a.frameIRQInhibit {
			a.frameIRQPending = true
			if a.irq != nil {
				a.irq.RaiseIRQ()
			}
		}
	}

	if a.cpuCycle >= period {
		a.cpuCycle = 0
	}
}

func (a *Apu) quarterFrame() {
	a.pulse1.tickEnvelope()
	a.pulse2.tickEnvelope()
	a.noise.tickEnvelope()
	a.triangle.tickLinear()
}

func (a *Apu) halfFrame() {
	a.pulse1.tickLength()
	a.pulse1.tickSweep()
	a.pulse2.tickLength()
	a.pulse2.tickSweep()
	a.noise.tickLength()
	a.triangle.tickLength()
}

// mix combines the five channel outputs via the canonical non-linear NES
// DAC approximation (NESdev "APU Mixer").
func (a *Apu) mix() float32 {
	p1 := float64(a.pulse1.output())
	p2 := float64(a.pulse2.output())
	t := float64(a.triangle.output())
	n := float64(a.noise.output())
	d := float64(a.dmc.output())

	var pulseOut float64
	if p1+p2 > 0 {
		pulseOut = 95.88 / (8128/(p1+p2) + 100)
	}

	var tndOut float64
	if t+n+d > 0 {
		tndOut = 159.79 / (1/(t/8227+n/12241+d/22638) + 100)
	}

	return float32(pulseOut + tndOut)
}

// Snapshot is the save-state view of Apu. The ring buffer's queued audio is
// excluded: it is host-playback scratch, not emulation state, and resuming
// with it empty just means a few milliseconds of silence before RunCycles
// refills it.
type Snapshot struct {
	Pulse1, Pulse2  pulseSnapshot
	Triangle        triangleSnapshot
	Noise           noiseSnapshot
	DMC             dmcSnapshot
	FrameMode       uint8
	FrameIRQInhibit bool
	FrameIRQPending bool
	CPUCycle        uint64
}

func (a *Apu) Snapshot() Snapshot {
	return Snapshot{
		Pulse1: a.pulse1.snapshot(), Pulse2: a.pulse2.snapshot(),
		Triangle: a.triangle.snapshot(), Noise: a.noise.snapshot(), DMC: a.dmc.snapshot(),
		FrameMode: a.frameMode, FrameIRQInhibit: a.frameIRQInhibit, FrameIRQPending: a.frameIRQPending,
		CPUCycle: a.cpuCycle,
	}
}

func (a *Apu) Restore(s Snapshot) {
	a.pulse1.restore(s.Pulse1)
	a.pulse2.restore(s.Pulse2)
	a.triangle.restore(s.Triangle)
	a.noise.restore(s.Noise)
	a.dmc.restore(s.DMC)
	a.frameMode, a.frameIRQInhibit, a.frameIRQPending = s.FrameMode, s.FrameIRQInhibit, s.FrameIRQPending
	a.cpuCycle = s.CPUCycle
}

// ReadSamples drains up to len(dst) queued samples into dst, short-reading
// if fewer are buffered, and returns the count copied.
func (a *Apu) ReadSamples(dst []float32) int { return a.buffer.read(dst) }

// BufferedSamples reports how many samples are queued, for adaptive
// sample-rate tuning by the host.
func (a *Apu) BufferedSamples() int { return a.buffer.len() }

// Read handles CPU reads of $4015 (status): channel-active bits plus the
// frame and DMC IRQ flags, clearing the frame IRQ flag as a read side
// effect (not the DMC one).
func (a *Apu) Read(addr uint16) uint8 {
	if addr != 0x4015 {
		return 0
	}
	var v uint8
	if a.pulse1.lengthNonZero() {
		v |= 0x01
	}
	if a.pulse2.lengthNonZero() {
		v |= 0x02
	}
	if a.triangle.lengthNonZero() {
		v |= 0x04
	}
	if a.noise.lengthNonZero() {
		v |= 0x08
	}
	if a.dmc.lengthNonZero() {
		v |= 0x10
	}
	if a.frameIRQPending {
		v |= 0x40
	}
	if a.dmc.irqPending {
		v |= 0x80
	}
	a.frameIRQPending = false
	return v
}

// Write dispatches a CPU write to the $4000-$4017 APU register range.
func (a *Apu) Write(addr uint16, val uint8) {
	switch addr {
	case 0x4000:
		a.pulse1.writeControl(val)
	case 0x4001:
		a.pulse1.writeSweep(val)
	case 0x4002:
		a.pulse1.writeTimerLo(val)
	case 0x4003:
		a.pulse1.writeTimerHi(val)
	case 0x4004:
		a.pulse2.writeControl(val)
	case 0x4005:
		a.pulse2.writeSweep(val)
	case 0x4006:
		a.pulse2.writeTimerLo(val)
	case 0x4007:
		a.pulse2.writeTimerHi(val)
	case 0x4008:
		a.triangle.writeControl(val)
	case 0x400A:
		a.triangle.writeTimerLo(val)
	case 0x400B:
		a.triangle.writeTimerHi(val)
	case 0x400C:
		a.noise.writeControl(val)
	case 0x400E:
		a.noise.writePeriod(val)
	case 0x400F:
		a.noise.writeLength(val)
	case 0x4010:
		a.dmc.writeControl(val)
	case 0x4011:
		a.dmc.writeDirectLoad(val)
	case 0x4012:
		a.dmc.writeSampleAddr(val)
	case 0x4013:
		a.dmc.writeSampleLen(val)
	case 0x4015:
		a.pulse1.setEnabled(val&0x01 != 0)
		a.pulse2.setEnabled(val&0x02 != 0)
		a.triangle.setEnabled(val&0x04 != 0)
		a.noise.setEnabled(val&0x08 != 0)
		a.dmc.setEnabled(val&0x10 != 0)
		a.dmc.irqPending = false
	case 0x4017:
		a.frameMode = (val >> 7) & 1
		a.frameIRQInhibit = val&0x40 != 0
		if a.frameIRQInhibit {
			a.frameIRQPending = false
		}
		a.cpuCycle = 0
		if a.frameMode == 1 {
			a.quarterFrame()
			a.halfFrame()
		}
	}
}
