package apu

// dutyTable holds the 8-step waveform for each of the four duty cycle
// settings selectable via $4000/$4004 bits 6-7.
var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0}, // 12.5%
	{0, 1, 1, 0, 0, 0, 0, 0}, // 25%
	{0, 1, 1, 1, 1, 0, 0, 0}, // 50%
	{1, 0, 0, 1, 1, 1, 1, 1}, // 25% negated
}

// pulse is one of the two square wave channels. onesComplement selects
// pulse 1's sweep adder behavior (ones' complement, -c-1) vs pulse 2's
// (two's complement, -c).
type pulse struct {
	duty     uint8
	step     uint8
	timer    timer
	length   lengthCounter
	envelope envelope
	sweep    sweep

	constVolume bool
	volume      uint8
}

func newPulse(onesComplement bool) *pulse {
	p := &pulse{}
	p.sweep.onesComplement = onesComplement
	return p
}

func (p *pulse) writeControl(val uint8) {
	p.duty = (val >> 6) & 0x3
	p.length.halt = val&0x20 != 0
	p.envelope.loop = p.length.halt
	p.constVolume = val&0x10 != 0
	p.volume = val & 0xF
	p.envelope.reload = p.volume
}

func (p *pulse) writeSweep(val uint8) {
	p.sweep.enabled = val&0x80 != 0
	p.sweep.reloadVal = (val >> 4) & 0x7
	p.sweep.negate = val&0x8 != 0
	p.sweep.shift = val & 0x7
	p.sweep.reload = true
}

func (p *pulse) writeTimerLo(val uint8) { p.timer.setPeriodLo(val) }

func (p *pulse) writeTimerHi(val uint8) {
	p.timer.setPeriodHi(val)
	p.length.load(val >> 3)
	p.step = 0
	p.envelope.restart()
}

func (p *pulse) setEnabled(on bool) { p.length.setEnabled(on) }
func (p *pulse) lengthNonZero() bool { return !p.length.mute() }

func (p *pulse) tickTimer() {
	if p.timer.tick() {
		p.step = (p.step + 1) % 8
	}
}

func (p *pulse) tickEnvelope() { p.envelope.tick() }
func (p *pulse) tickLength()   { p.length.tick() }
func (p *pulse) tickSweep()    { p.sweep.tick(&p.timer) }

func (p *pulse) output() uint8 {
	if p.length.mute() || p.sweep.muted(p.timer.period) || dutyTable[p.duty][p.step] == 0 {
		return 0
	}
	return p.envelope.volume(p.constVolume, p.volume)
}

type pulseSnapshot struct {
	Duty, Step             uint8
	Timer                  timerSnapshot
	Length                 lengthSnapshot
	Envelope               envelopeSnapshot
	Sweep                  sweepSnapshot
	ConstVolume            bool
	Volume                 uint8
}

func (p *pulse) snapshot() pulseSnapshot {
	return pulseSnapshot{
		Duty: p.duty, Step: p.step, Timer: p.timer.snapshot(), Length: p.length.snapshot(),
		Envelope: p.envelope.snapshot(), Sweep: p.sweep.snapshot(),
		ConstVolume: p.constVolume, Volume: p.volume,
	}
}

func (p *pulse) restore(s pulseSnapshot) {
	p.duty, p.step = s.Duty, s.Step
	p.timer.restoreSnapshot(s.Timer)
	p.length.restore(s.Length)
	p.envelope.restoreSnapshot(s.Envelope)
	p.sweep.restoreSnapshot(s.Sweep)
	p.constVolume, p.volume = s.ConstVolume, s.Volume
}
