// Package fix holds the individual Code Vein fixes and the orchestration
// that applies them against the running game image.
package fix

import (
	"encoding/binary"
	"math"

	"go.uber.org/zap"

	"github.com/PolarWizard/CodeVeinFix/internal/core"
	"github.com/PolarWizard/CodeVeinFix/memscan"
	"github.com/PolarWizard/CodeVeinFix/mempatch"
)

// The shipping executable hard codes 16:9 everywhere; every fix corrects
// relative to that.
const nativeAspectRatio = float32(16.0) / float32(9.0)

// Default engine field of view in degrees, observed in game memory.
const baseFOVDegrees = 68.0

const (
	pillarboxSignature = "F6 41 2C 01 4C"
	pillarboxPatch     = "F6 41 2C 00"

	// 16:9 as a little endian float, the canonical UE4 aspect constant.
	aspectSignature = "39 8E E3 3F"

	// movss xmm0,[rcx+39Ch] ; xorps xmm1,xmm1 ; comiss xmm0,xmm1
	fovSignature  = "F3 0F 10 81 9C 03 00 00 0F 57 C9 0F 2F C1"
	fovHookOffset = 8
)

// Fixes applies the configured set of patches and hooks to one image.
// Construct with New and call Apply exactly once, before the game spins
// up its render threads.
type Fixes struct {
	cfg     *core.Config
	log     *zap.SugaredLogger
	img     *memscan.Image
	patcher *mempatch.Patcher

	// Installed hooks stay alive until process exit.
	fovHook *mempatch.MidHook
}

func New(cfg *core.Config, log *zap.SugaredLogger, img *memscan.Image) *Fixes {
	return &Fixes{
		cfg:     cfg,
		log:     log,
		img:     img,
		patcher: mempatch.New(img),
	}
}

// Apply runs every fix in order. A fix that fails is logged and skipped;
// the remaining fixes still run.
func (f *Fixes) Apply() {
	if err := f.resolutionFix(); err != nil {
		f.log.Errorf("resolution fix: %v", err)
	}
	if err := f.pillarboxFix(); err != nil {
		f.log.Errorf("pillarbox fix: %v", err)
	}
	if err := f.fovFix(); err != nil {
		f.log.Errorf("fov fix: %v", err)
	}
}

// pillarboxFix flips the byte that makes the engine letterbox cutscenes
// and menus on non 16:9 outputs.
func (f *Fixes) pillarboxFix() error {
	enable := f.cfg.MasterEnable && f.cfg.Fixes.Pillarbox.Enable
	f.log.Infof("pillarbox fix %s", enabledWord(enable))
	if !enable {
		return nil
	}

	pat := memscan.MustCompile(pillarboxSignature)
	addr, ok := memscan.ScanFirst(f.img, pat)
	if !ok {
		f.log.Warnf("did not find '%s'", pillarboxSignature)
		return nil
	}
	f.log.Infof("found '%s' @ 0x%x", pillarboxSignature, f.img.Offset(addr))

	if err := f.patcher.Patch(addr, pillarboxPatch); err != nil {
		return err
	}
	f.log.Infof("patched '%s' with '%s'", pillarboxSignature, pillarboxPatch)
	return nil
}

// resolutionFix rewrites every hard coded 16:9 constant with the aspect
// ratio of the configured resolution.
func (f *Fixes) resolutionFix() error {
	w, h := f.cfg.ReducedResolution()
	f.log.Infof("resolution: %dx%d", f.cfg.Resolution.Width, f.cfg.Resolution.Height)
	f.log.Infof("aspect ratio: %d:%d %f", w, h, f.cfg.AspectRatio())

	enable := f.cfg.MasterEnable && f.cfg.Fixes.Resolution.Enable
	f.log.Infof("resolution fix %s", enabledWord(enable))
	if !enable {
		return nil
	}

	patch := AspectRatioBytes(f.cfg.AspectRatio())
	pat := memscan.MustCompile(aspectSignature)
	hits := memscan.Scan(f.img, pat)
	if len(hits) == 0 {
		f.log.Warnf("did not find '%s'", aspectSignature)
		return nil
	}
	for _, addr := range hits {
		f.log.Infof("found '%s' @ 0x%x", aspectSignature, f.img.Offset(addr))
		if err := f.patcher.PatchBytes(addr, patch); err != nil {
			return err
		}
		f.log.Infof("patched '%s' with '%s'", aspectSignature, memscan.FormatBytes(patch))
	}
	return nil
}

// fovFix splices in after the instruction that loads the field of view,
// replacing the loaded value with one corrected for the display's aspect
// ratio.
func (f *Fixes) fovFix() error {
	enable := f.cfg.MasterEnable && f.cfg.Fixes.FOV.Enable
	f.log.Infof("fov fix %s", enabledWord(enable))
	if !enable {
		return nil
	}

	pat := memscan.MustCompile(fovSignature)
	addr, ok := memscan.ScanFirst(f.img, pat)
	if !ok {
		f.log.Warnf("did not find '%s'", fovSignature)
		return nil
	}
	f.log.Infof("found '%s' @ 0x%x", fovSignature, f.img.Offset(addr))

	fov := CorrectedFOV(f.cfg.AspectRatio(), float32(f.cfg.Fixes.FOV.Multiplier))
	hook, err := f.patcher.InstallMidHook(addr+fovHookOffset, func(ctx *mempatch.Context) {
		ctx.SetXMM0Float32(fov)
	})
	if err != nil {
		return err
	}
	f.fovHook = hook
	f.log.Infof("hooked @ 0x%x + 0x%x = 0x%x",
		f.img.Offset(addr), fovHookOffset, f.img.Offset(hook.Addr()))
	return nil
}

// AspectRatioBytes serializes an aspect ratio the way the engine stores
// it, a little endian single precision float.
func AspectRatioBytes(ar float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(ar))
	return b
}

// CorrectedFOV widens the default vertical-locked field of view so the
// horizontal view matches what 16:9 players see, then applies the user
// multiplier.
func CorrectedFOV(aspect, multiplier float32) float32 {
	base := float64(baseFOVDegrees) * math.Pi / 360.0
	fov := math.Atan(math.Tan(base)/float64(nativeAspectRatio)*float64(aspect)) * 360.0 / math.Pi
	return float32(fov) * multiplier
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
