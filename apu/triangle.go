package apu

// triStepTable is the 32-step triangle waveform: 15-0 descending, then 0-15
// ascending.
var triStepTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

type triangle struct {
	timer  timer
	length lengthCounter
	linear linearCounter
	step   uint8
}

func (t *triangle) writeControl(val uint8) {
	t.linear.control = val&0x80 != 0
	t.length.halt = t.linear.control
	t.linear.reloadVal = val & 0x7F
}

func (t *triangle) writeTimerLo(val uint8) { t.timer.setPeriodLo(val) }

func (t *triangle) writeTimerHi(val uint8) {
	t.timer.setPeriodHi(val)
	t.length.load(val >> 3)
	t.linear.reload = true
}

func (t *triangle) setEnabled(on bool)   { t.length.setEnabled(on) }
func (t *triangle) lengthNonZero() bool  { return !t.length.mute() }

// tickTimer is called every CPU cycle (the triangle timer runs at full CPU
// rate, unlike the other channels which are clocked every other cycle).
func (t *triangle) tickTimer() {
	if t.timer.tick() && !t.length.mute() && !t.linear.mute() {
		t.step = (t.step + 1) % 32
	}
}

func (t *triangle) tickLinear() { t.linear.tick() }
func (t *triangle) tickLength() { t.length.tick() }

func (t *triangle) output() uint8 {
	if t.timer.period < 2 {
		// ultrasonic: silences the channel to avoid a harsh pop, matching
		// real hardware's behavior at very short periods.
		return 0
	}
	return triStepTable[t.step]
}

type triangleSnapshot struct {
	Timer  timerSnapshot
	Length lengthSnapshot
	Linear linearSnapshot
	Step   uint8
}

func (t *triangle) snapshot() triangleSnapshot {
	return triangleSnapshot{Timer: t.timer.snapshot(), Length: t.length.snapshot(), Linear: t.linear.snapshot(), Step: t.step}
}

func (t *triangle) restore(s triangleSnapshot) {
	t.timer.restoreSnapshot(s.Timer)
	t.length.restore(s.Length)
	t.linear.restoreSnapshot(s.Linear)
	t.step = s.Step
}
