// Package apu implements the 2A03 audio processing unit: the frame
// sequencer, the five sound channels, and the canonical non-linear mixer.
// Grounded in the teacher's nes/waves/common.go for the shared building
// blocks (envelope, sweep, length counter, linear counter, timer) and in
// lib/apu/apu.go for the frame-sequencer cycle accounting, generalized to
// spec.md §4.4's mixer formula and to a drop-oldest ring buffer instead of
// the teacher's blocking CircularBuffer.
package apu

// lengthTable is the APU length-counter load table (NESdev "APU Length
// Counter"), indexed by the 5-bit value written to $4003/4007/400B/400F bits
// 3-7.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// lengthCounter is shared by the pulse, triangle and noise channels (the DMC
// has none). halt (the channel's own
// "length counter halt" / triangle "control" bit) both stops decrement and,
// for pulse/noise, doubles as the envelope loop flag.
type lengthCounter struct {
	counter uint8
	halt    bool
	enabled bool
}

func (l *lengthCounter) setEnabled(on bool) {
	l.enabled = on
	if !on {
		l.counter = 0
	}
}
func (l *lengthCounter) load(val uint8) {
	if l.enabled {
		l.counter = lengthTable[val&0x1F]
	}
}
func (l *lengthCounter) tick() {
	if !l.halt && l.counter > 0 {
		l.counter--
	}
}
func (l *lengthCounter) mute() bool { return l.counter == 0 }

// lengthSnapshot is the exported, gob-encodable mirror of lengthCounter;
// the unexported struct's fields would otherwise be invisible to gob.
type lengthSnapshot struct{ Counter uint8; Halt, Enabled bool }

func (l *lengthCounter) snapshot() lengthSnapshot {
	return lengthSnapshot{Counter: l.counter, Halt: l.halt, Enabled: l.enabled}
}
func (l *lengthCounter) restore(s lengthSnapshot) {
	l.counter, l.halt, l.enabled = s.Counter, s.Halt, s.Enabled
}

// envelope is the volume envelope: a divider clocked at the quarter-frame
// rate driving a 4-bit decay counter, optionally looping.
type envelope struct {
	start   bool
	loop    bool
	divider uint8
	reload  uint8
	decay   uint8
}

func (e *envelope) restart() { e.start = true }

func (e *envelope) tick() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.reload
		return
	}
	if e.divider == 0 {
		e.divider = e.reload
		switch {
		case e.decay > 0:
			e.decay--
		case e.loop:
			e.decay = 15
		}
	} else {
		e.divider--
	}
}

func (e *envelope) volume(constVolume bool, constLevel uint8) uint8 {
	if constVolume {
		return constLevel
	}
	return e.decay
}

type envelopeSnapshot struct {
	Start, Loop            bool
	Divider, Reload, Decay uint8
}

func (e *envelope) snapshot() envelopeSnapshot {
	return envelopeSnapshot{Start: e.start, Loop: e.loop, Divider: e.divider, Reload: e.reload, Decay: e.decay}
}
func (e *envelope) restoreSnapshot(s envelopeSnapshot) {
	e.start, e.loop, e.divider, e.reload, e.decay = s.Start, s.Loop, s.Divider, s.Reload, s.Decay
}

// timer is the 11/12-bit period counter that clocks a channel's waveform
// generator. tick returns true on the cycle the period expires and reloads.
type timer struct {
	period uint16
	value  uint16
}

func (t *timer) setPeriod(p uint16)  { t.period = p }
func (t *timer) setPeriodLo(lo uint8) { t.period = (t.period &^ 0xFF) | uint16(lo) }
func (t *timer) setPeriodHi(hi uint8) { t.period = (t.period &^ 0x700) | (uint16(hi&0x7) << 8) }

func (t *timer) tick() bool {
	if t.value == 0 {
		t.value = t.period
		return true
	}
	t.value--
	return false
}

type timerSnapshot struct{ Period, Value uint16 }

func (t *timer) snapshot() timerSnapshot      { return timerSnapshot{Period: t.period, Value: t.value} }
func (t *timer) restoreSnapshot(s timerSnapshot) { t.period, t.value = s.Period, s.Value }

// sweep periodically nudges a pulse channel's period up or down. The sign
// convention (ones' vs two's complement) differs between the two pulse
// channels, hence negate plus the onesComplement flag.
type sweep struct {
	enabled       bool
	negate        bool
	onesComplement bool
	shift         uint8
	divider       uint8
	reloadVal     uint8
	reload        bool
}

func (s *sweep) targetPeriod(cur uint16) uint16 {
	change := cur >> s.shift
	if !s.negate {
		return cur + change
	}
	if s.onesComplement {
		return cur - change - 1
	}
	return cur - change
}

func (s *sweep) muted(cur uint16) bool {
	return cur < 8 || s.targetPeriod(cur) > 0x7FF
}

// tick runs the sweep divider once per half frame, applying the new period
// to t if the divider expired, the unit is enabled, and the channel isn't
// muted by the target period check.
func (s *sweep) tick(t *timer) {
	target := s.targetPeriod(t.period)
	if s.divider == 0 && s.enabled && s.shift > 0 && !s.muted(t.period) && target <= 0x7FF {
		t.setPeriod(target)
	}
	if s.divider == 0 || s.reload {
		s.divider = s.reloadVal
		s.reload = false
	} else {
		s.divider--
	}
}

type sweepSnapshot struct {
	Enabled, Negate, OnesComplement bool
	Shift, Divider, ReloadVal       uint8
	Reload                          bool
}

func (s *sweep) snapshot() sweepSnapshot {
	return sweepSnapshot{
		Enabled: s.enabled, Negate: s.negate, OnesComplement: s.onesComplement,
		Shift: s.shift, Divider: s.divider, ReloadVal: s.reloadVal, Reload: s.reload,
	}
}
func (s *sweep) restoreSnapshot(v sweepSnapshot) {
	s.enabled, s.negate, s.onesComplement = v.Enabled, v.Negate, v.OnesComplement
	s.shift, s.divider, s.reloadVal, s.reload = v.Shift, v.Divider, v.ReloadVal, v.Reload
}

// linearCounter is the triangle channel's own length control, reloaded from
// $4008 and clocked at the quarter-frame rate.
type linearCounter struct {
	reloadVal uint8
	counter   uint8
	reload    bool
	control   bool
}

func (l *linearCounter) tick() {
	if l.reload {
		l.counter = l.reloadVal
	} else if l.counter > 0 {
		l.counter--
	}
	if !l.control {
		l.reload = false
	}
}

func (l *linearCounter) mute() bool { return l.counter == 0 }

type linearSnapshot struct {
	ReloadVal, Counter uint8
	Reload, Control    bool
}

func (l *linearCounter) snapshot() linearSnapshot {
	return linearSnapshot{ReloadVal: l.reloadVal, Counter: l.counter, Reload: l.reload, Control: l.control}
}
func (l *linearCounter) restoreSnapshot(s linearSnapshot) {
	l.reloadVal, l.counter, l.reload, l.control = s.ReloadVal, s.Counter, s.Reload, s.Control
}
