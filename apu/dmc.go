package apu

import "github.com/jameskmurphy/nes/interrupts"

// dmcRateTable is the 16 timer periods (in APU cycles) selectable via
// $4010 bits 0-3.
var dmcRateTable = [16]uint16{
	214, 190, 170, 160, 143, 127, 113, 107, 95, 80, 71, 64, 53, 42, 36, 27,
}

// Memory is the minimal read-only CPU address space the DMC channel needs
// to fetch delta-modulation samples.
type Memory interface {
	Read(addr uint16) uint8
}

type dmc struct {
	mem Memory
	irq *interrupts.Lines

	irqEnable bool
	loop      bool
	timer     timer

	outputLevel uint8

	sampleAddrReload uint16
	sampleLenReload  uint16
	sampleAddr       uint16
	sampleLen        uint16

	sampleBuffer uint8
	bufferFull   bool

	shift         uint8
	bitsRemaining uint8
	silence       bool

	irqPending bool
}

func newDMC(mem Memory, irq *interrupts.Lines) *dmc {
	d := &dmc{mem: mem, irq: irq, shift: 1}
	d.timer.setPeriod(dmcRateTable[0])
	return d
}

func (d *dmc) writeControl(val uint8) {
	d.irqEnable = val&0x80 != 0
	d.loop = val&0x40 != 0
	d.timer.setPeriod(dmcRateTable[val&0xF])
	if !d.irqEnable {
		d.irqPending = false
	}
}

func (d *dmc) writeDirectLoad(val uint8) { d.outputLevel = val & 0x7F }

func (d *dmc) writeSampleAddr(val uint8) { d.sampleAddrReload = 0xC000 + uint16(val)*64 }
func (d *dmc) writeSampleLen(val uint8)  { d.sampleLenReload = uint16(val)*16 + 1 }

func (d *dmc) setEnabled(on bool) {
	if !on {
		d.sampleLen = 0
		return
	}
	if d.sampleLen == 0 {
		d.sampleAddr = d.sampleAddrReload
		d.sampleLen = d.sampleLenReload
	}
}

func (d *dmc) lengthNonZero() bool { return d.sampleLen > 0 }

// tickTimer is called every other CPU cycle, per the shared channel rate.
func (d *dmc) tickTimer() {
	if !d.timer.tick() {
		return
	}

	if !d.bufferFull && d.sampleLen > 0 {
		d.fetchSample()
	}

	if d.bitsRemaining == 0 {
		d.bitsRemaining = 8
		if !d.bufferFull {
			d.silence = true
		} else {
			d.silence = false
			d.shift = d.sampleBuffer
			d.bufferFull = false
		}
	}

	if !d.silence {
		if d.shift&1 != 0 {
			if d.outputLevel <= 125 {
				d.outputLevel += 2
			}
		} else if d.outputLevel >= 2 {
			d.outputLevel -= 2
		}
	}
	d.shift >>= 1
	d.bitsRemaining--
}

// fetchSample stalls the CPU for the DMA read and, on exhaustion, either
// loops the sample or raises the DMC IRQ.
func (d *dmc) fetchSample() {
	d.sampleBuffer = d.mem.Read(d.sampleAddr)
	d.bufferFull = true
	d.sampleAddr++
	if d.sampleAddr == 0 {
		d.sampleAddr = 0x8000
	}
	d.sampleLen--
	if d.irq != nil {
		d.irq.RequestDMA(interrupts.DMADMC, 4)
	}

	if d.sampleLen == 0 {
		if d.loop {
			d.sampleAddr = d.sampleAddrReload
			d.sampleLen = d.sampleLenReload
		} else if d.irqEnable {
			d.irqPending = true
			if d.irq != nil {
				d.irq.RaiseIRQ()
			}
		}
	}
}

func (d *dmc) output() uint8 { return d.outputLevel }

type dmcSnapshot struct {
	IrqEnable, Loop                         bool
	Timer                                    timerSnapshot
	OutputLevel                             uint8
	SampleAddrReload, SampleLenReload       uint16
	SampleAddr, SampleLen                   uint16
	SampleBuffer                            uint8
	BufferFull                              bool
	Shift, BitsRemaining                    uint8
	Silence                                 bool
	IrqPending                               bool
}

func (d *dmc) snapshot() dmcSnapshot {
	return dmcSnapshot{
		IrqEnable: d.irqEnable, Loop: d.loop, Timer: d.timer.snapshot(), OutputLevel: d.outputLevel,
		SampleAddrReload: d.sampleAddrReload, SampleLenReload: d.sampleLenReload,
		SampleAddr: d.sampleAddr, SampleLen: d.sampleLen,
		SampleBuffer: d.sampleBuffer, BufferFull: d.bufferFull,
		Shift: d.shift, BitsRemaining: d.bitsRemaining, Silence: d.silence, IrqPending: d.irqPending,
	}
}

func (d *dmc) restore(s dmcSnapshot) {
	d.irqEnable, d.loop = s.IrqEnable, s.Loop
	d.timer.restoreSnapshot(s.Timer)
	d.outputLevel = s.OutputLevel
	d.sampleAddrReload, d.sampleLenReload = s.SampleAddrReload, s.SampleLenReload
	d.sampleAddr, d.sampleLen = s.SampleAddr, s.SampleLen
	d.sampleBuffer, d.bufferFull = s.SampleBuffer, s.BufferFull
	d.shift, d.bitsRemaining, d.silence, d.irqPending = s.Shift, s.BitsRemaining, s.Silence, s.IrqPending
}
