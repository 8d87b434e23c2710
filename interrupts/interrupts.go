// Package interrupts models the NMI/IRQ lines and DMA-pause request lane
// shared between the CPU, PPU, APU and cartridge mappers.
//
// These are level-like flags, not message channels: a producer sets a bit,
// a consumer clears it on service. Grounded in the teacher's
// lib/cpu/cpu.go Raise/Clear pair (CpuIntNMI/CpuIntIRQ), generalized so the
// lines live outside the CPU and can be shared with the PPU (NMI), the APU
// (IRQ) and the cartridge (IRQ) without a cyclic import.
package interrupts

// DMAKind identifies which DMA pause the bus is requesting of the CPU.
type DMAKind uint8

const (
	// DMANone means no DMA pause is pending.
	DMANone DMAKind = iota
	// DMAOAM is the 256-byte sprite DMA launched by a write to $4014.
	DMAOAM
	// DMADMC is a single-byte DMC sample fetch.
	DMADMC
)

// Lines holds the interrupt/DMA request state shared by the whole console.
// Zero value is "nothing pending", matching power-on.
type Lines struct {
	NMI bool
	IRQ bool

	dmaKind  DMAKind
	dmaCount int
}

// RaiseNMI sets the NMI line. Idempotent: raising an already-raised line is
// a no-op, matching the level semantics spec.md §5 calls for (not a queue).
func (l *Lines) RaiseNMI() { l.NMI = true }

// ClearNMI clears the NMI line; called by the console when it services the
// NMI, and by the PPU when its NMI output drops.
func (l *Lines) ClearNMI() { l.NMI = false }

// RaiseIRQ sets the IRQ line. Multiple producers (APU frame IRQ, APU DMC
// IRQ, MMC3 IRQ) may raise it within one step. The line is a single flag
// shared by all sources: ClearIRQ drops it whichever source raised it.
func (l *Lines) RaiseIRQ() { l.IRQ = true }

// ClearIRQ clears the IRQ line.
func (l *Lines) ClearIRQ() { l.IRQ = false }

// RequestDMA posts a DMA pause request. A second request of a different
// kind before the first is serviced would indicate a bug in the bus/APU
// wiring (only one pause is modeled as pending at a time).
func (l *Lines) RequestDMA(kind DMAKind, count int) {
	l.dmaKind = kind
	l.dmaCount = count
}

// PendingDMA reports the current DMA request, if any.
func (l *Lines) PendingDMA() (DMAKind, int) {
	return l.dmaKind, l.dmaCount
}

// ClearDMA acknowledges the pending DMA request.
func (l *Lines) ClearDMA() {
	l.dmaKind = DMANone
	l.dmaCount = 0
}
