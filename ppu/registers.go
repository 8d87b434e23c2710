package ppu

// loopy is the 15-bit scroll/address register pair (v and t), named for
// Loopy's classic NESdev scrolling writeup. Grounded in the teacher's
// nes/ppu_registers.go loopyRegister bit layout:
//
//	0 yyy NN YYYYY XXXXX
//	  ||| || ||||| +++++-- coarse X
//	  ||| || +++++-------- coarse Y
//	  ||| ++-------------- nametable select
//	  +++------------------ fine Y
type loopy uint16

func (l loopy) coarseX() uint16 { return uint16(l) & 0x1F }
func (l loopy) coarseY() uint16 { return (uint16(l) >> 5) & 0x1F }
func (l loopy) nametable() uint16 { return (uint16(l) >> 10) & 0x3 }
func (l loopy) fineY() uint16   { return (uint16(l) >> 12) & 0x7 }
func (l *loopy) setCoarseX(v uint16) { *l = loopy((uint16(*l) &^ 0x001F) | (v & 0x1F)) }
func (l *loopy) setCoarseY(v uint16) { *l = loopy((uint16(*l) &^ 0x03E0) | ((v & 0x1F) << 5)) }
func (l *loopy) setFineY(v uint16)   { *l = loopy((uint16(*l) &^ 0x7000) | ((v & 0x7) << 12)) }
func (l *loopy) flipH()              { *l ^= 0x0400 }
func (l *loopy) flipV()              { *l ^= 0x0800 }
func (l *loopy) setLo(v uint8)       { *l = loopy((uint16(*l) &^ 0x00FF) | uint16(v)) }
func (l *loopy) setHi(v uint8)       { *l = loopy((uint16(*l) &^ 0x7F00) | (uint16(v&0x3F) << 8)) }

func (l *loopy) incCoarseX() {
	if l.coarseX() == 31 {
		l.setCoarseX(0)
		l.flipH()
	} else {
		l.setCoarseX(l.coarseX() + 1)
	}
}

func (l *loopy) incFineY() {
	if l.fineY() < 7 {
		l.setFineY(l.fineY() + 1)
		return
	}
	l.setFineY(0)
	y := l.coarseY()
	switch y {
	case 29:
		l.setCoarseY(0)
		l.flipV()
	case 31:
		l.setCoarseY(0)
	default:
		l.setCoarseY(y + 1)
	}
}

// copyHorizontal copies t's nametable-X and coarse-X bits into v, done at
// dot 257 of every rendered scanline.
func (v *loopy) copyHorizontal(t loopy) {
	*v = loopy((uint16(*v) &^ 0x041F) | (uint16(t) & 0x041F))
}

// copyVertical copies t's fine-Y, nametable-Y and coarse-Y bits into v,
// done during dots 280-304 of the pre-render scanline.
func (v *loopy) copyVertical(t loopy) {
	*v = loopy((uint16(*v) &^ 0x7BE0) | (uint16(t) & 0x7BE0))
}

// PPUCTRL ($2000) bits.
const (
	ctrlNametable     = 0x03
	ctrlIncrement32    = 0x04
	ctrlSpritePattern  = 0x08
	ctrlBgPattern      = 0x10
	ctrlSpriteSize16   = 0x20
	ctrlNMIEnable      = 0x80
)

// PPUMASK ($2001) bits.
const (
	maskGreyscale     = 0x01
	maskShowBgLeft    = 0x02
	maskShowSpLeft    = 0x04
	maskShowBg        = 0x08
	maskShowSprites   = 0x10
)

// PPUSTATUS ($2002) bits.
const (
	statusOverflow  = 0x20
	statusSprite0   = 0x40
	statusVBlank    = 0x80
)
