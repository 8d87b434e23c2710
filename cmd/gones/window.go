package main

import (
	"fmt"
	"image/color"
	"os"
	"runtime"
	"time"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"

	"github.com/jameskmurphy/nes/bus"
	"github.com/jameskmurphy/nes/console"
)

// screenFrameRatio scales the PPU's native 256x240 output up for a
// comfortable window size, matching the teacher's lib/ui/screen.go 3x
// integer scale.
const screenFrameRatio = 3

// application owns the window, the audio player, and the console; run
// drives pixelgl's required main-thread loop the way the teacher's
// Screen.Run does (runtime.LockOSThread + pixelgl.Run).
type application struct {
	nes      *console.Console
	savePath string

	window  *pixelgl.Window
	picture *pixel.PictureData
	sprite  *pixel.Sprite

	audio *otoPlayer
}

func (a *application) run() {
	runtime.LockOSThread()
	pixelgl.Run(a.runThread)
}

var buttonKeys = [8]struct {
	mask uint8
	key  pixelgl.Button
}{
	{bus.ButtonA, pixelgl.KeyS},
	{bus.ButtonB, pixelgl.KeyA},
	{bus.ButtonSelect, pixelgl.KeyLeftShift},
	{bus.ButtonStart, pixelgl.KeyEnter},
	{bus.ButtonUp, pixelgl.KeyUp},
	{bus.ButtonDown, pixelgl.KeyDown},
	{bus.ButtonLeft, pixelgl.KeyLeft},
	{bus.ButtonRight, pixelgl.KeyRight},
}

func (a *application) runThread() {
	cfg := pixelgl.WindowConfig{
		Title:  "gones",
		Bounds: pixel.R(0, 0, console.FrameWidth*screenFrameRatio, console.FrameHeight*screenFrameRatio),
		VSync:  true,
	}
	window, err := pixelgl.NewWindow(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gones: failed to open window: %v\n", err)
		os.Exit(1)
	}
	a.window = window

	a.picture = &pixel.PictureData{
		Pix:    make([]color.RGBA, console.FrameWidth*console.FrameHeight),
		Stride: console.FrameWidth,
		Rect:   pixel.R(0, 0, console.FrameWidth, console.FrameHeight),
	}
	a.sprite = pixel.NewSprite(a.picture, a.picture.Rect)

	a.audio, err = newOtoPlayer(defaultSampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gones: audio disabled: %v\n", err)
	}

	fpsTick := time.Tick(time.Second)
	frames := 0

	for !a.window.Closed() {
		frame := a.nes.RunFrame(a.readButtons(0), a.readButtons(1))
		a.blit(frame)
		a.sprite.Draw(a.window, pixel.IM.
			Moved(a.window.Bounds().Center()).
			ScaledXY(a.window.Bounds().Center(), pixel.V(screenFrameRatio, screenFrameRatio)))
		a.window.Update()

		if a.audio != nil {
			a.audio.drain(a.nes)
		}

		a.handleHotkeys()

		frames++
		select {
		case <-fpsTick:
			a.window.SetTitle(fmt.Sprintf("gones | FPS: %d", frames))
			frames = 0
		default:
		}
	}

	if a.audio != nil {
		a.audio.close()
	}
}

// blit unpacks the PPU's packed 0xRRGGBB frame buffer into the sprite's
// RGBA pixel slice. Pixel's coordinate origin is bottom-left, so rows are
// flipped on the way in.
func (a *application) blit(frame *[console.FrameWidth * console.FrameHeight]uint32) {
	for y := 0; y < console.FrameHeight; y++ {
		srcRow := y * console.FrameWidth
		dstRow := (console.FrameHeight - 1 - y) * console.FrameWidth
		for x := 0; x < console.FrameWidth; x++ {
			px := frame[srcRow+x]
			a.picture.Pix[dstRow+x] = color.RGBA{
				R: uint8(px >> 16),
				G: uint8(px >> 8),
				B: uint8(px),
				A: 0xFF,
			}
		}
	}
}

func (a *application) readButtons(pad int) uint8 {
	if pad != 0 {
		return 0 // player 2 has no default key bindings in this front-end
	}
	var mask uint8
	for _, b := range buttonKeys {
		if a.window.Pressed(b.key) {
			mask |= b.mask
		}
	}
	return mask
}

func (a *application) handleHotkeys() {
	ctrl := a.window.Pressed(pixelgl.KeyLeftControl)
	if !ctrl || a.savePath == "" {
		return
	}
	switch {
	case a.window.JustPressed(pixelgl.KeyR):
		a.nes.Reset()
	case a.window.JustPressed(pixelgl.KeyS):
		a.saveState()
	case a.window.JustPressed(pixelgl.KeyL):
		a.loadState()
	}
}

func (a *application) saveState() {
	f, err := os.Create(a.savePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gones: save state: %v\n", err)
		return
	}
	defer f.Close()
	if err := a.nes.SaveState(f); err != nil {
		fmt.Fprintf(os.Stderr, "gones: save state: %v\n", err)
	}
}

func (a *application) loadState() {
	f, err := os.Open(a.savePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gones: load state: %v\n", err)
		return
	}
	defer f.Close()
	if err := a.nes.LoadState(f); err != nil {
		fmt.Fprintf(os.Stderr, "gones: load state: %v\n", err)
	}
}
