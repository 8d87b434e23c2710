// Command gones is a thin CLI front-end over the console package: it loads
// an iNES ROM, opens a window, and plays audio. Grounded in the teacher's
// root main.go (flag.String("rom", ...) plus a validity check before
// construction), generalized to the console package's New/RunFrame API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jameskmurphy/nes/cartridge"
	"github.com/jameskmurphy/nes/console"
)

func validRomPath(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("rom file %q does not exist or is not readable: %w", path, err)
	}
	if stat.IsDir() {
		return fmt.Errorf("rom file %q points to a directory", path)
	}
	return nil
}

func main() {
	romPath := flag.String("rom", "", "path to the iNes ROM file to run")
	verbose := flag.Bool("verbose", false, "enable component logging")
	noSpriteLimit := flag.Bool("no-sprite-limit", false, "disable the 8-sprites-per-scanline cap")
	unstableOpcodes := flag.Bool("unstable-opcodes", false, "enable chip-revision-variable undocumented opcodes")
	savePath := flag.String("save", "", "path to the save-state file used by Ctrl+S/Ctrl+L")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("usage: gones -rom <path-to-ines-file>")
		os.Exit(1)
	}
	if err := validRomPath(*romPath); err != nil {
		fmt.Fprintf(os.Stderr, "gones: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gones: %v\n", err)
		os.Exit(1)
	}
	rom, err := cartridge.LoadINES(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gones: failed to parse %q: %v\n", *romPath, err)
		os.Exit(1)
	}

	nes, err := console.New(rom,
		console.Verbose(*verbose),
		console.WithSpriteLimit(!*noSpriteLimit),
		console.WithUnstableOpcodes(*unstableOpcodes),
		console.WithSampleRate(defaultSampleRate),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gones: failed to start console: %v\n", err)
		os.Exit(1)
	}

	app := &application{nes: nes, savePath: *savePath}
	app.run()
}
