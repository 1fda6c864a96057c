//go:build windows

// The codeveinfix command builds as a DLL that gets loaded into the game
// process:
//
//	go build -buildmode=c-shared -o CodeVeinFix.dll ./cmd/codeveinfix
//
// Loading the library starts the Go runtime, which kicks off the fix
// worker on its own goroutine so the loader thread returns immediately.
// Drop the DLL and codeveinfix.yaml next to CodeVein-Win64-Shipping.exe
// and inject with any standard DLL loader.
package main

import "C"

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"

	"github.com/PolarWizard/CodeVeinFix/internal/core"
	"github.com/PolarWizard/CodeVeinFix/internal/fix"
	"github.com/PolarWizard/CodeVeinFix/memscan"
)

// Keeps the installed hooks reachable for the life of the process.
var fixes *fix.Fixes

func init() {
	go run()
}

func run() {
	// A panic here would take the game down with it.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "codeveinfix: %v\n", r)
		}
	}()

	cfg, err := core.LoadConfig(configDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "codeveinfix: %v\n", err)
		return
	}

	if cfg.Resolution.Width == 0 || cfg.Resolution.Height == 0 {
		if w, h, ok := fix.DesktopResolution(); ok {
			cfg.Resolution.Width = w
			cfg.Resolution.Height = h
		}
	}

	log, err := core.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "codeveinfix: %v\n", err)
		return
	}
	defer log.Sync()

	log.Infof("%s loaded", cfg.Name)

	base, err := windows.GetModuleHandle(nil)
	if err != nil {
		log.Errorf("resolving game module: %v", err)
		return
	}
	img, err := memscan.ImageFromBase(uintptr(base))
	if err != nil {
		log.Errorf("reading game image: %v", err)
		return
	}
	log.Infof("image base 0x%x size 0x%x", img.Base(), img.Size())

	fixes = fix.New(cfg, log, img)
	fixes.Apply()
	log.Info("done")
}

// configDir resolves the directory the game executable lives in, which is
// where the yaml sits alongside the DLL.
func configDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func main() {}
