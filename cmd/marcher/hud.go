package main

import (
	"fmt"
	"time"

	"github.com/taigrr/marcher/pkg/render"
)

// HUD renders an overlay with the scene name, frame rate and ray counts.
type HUD struct {
	name      string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	stats     render.Stats
	frameTime time.Duration
}

// NewHUD creates a HUD for the named scene.
func NewHUD(name string) *HUD {
	return &HUD{name: name, fpsTime: time.Now()}
}

// Update records one rendered frame.
func (h *HUD) Update(stats render.Stats, frameTime time.Duration) {
	h.stats = stats
	h.frameTime = frameTime
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// stepsPerRay is the mean number of field evaluations per primary ray.
func (h *HUD) stepsPerRay() float64 {
	if h.stats.Rays == 0 {
		return 0
	}
	return float64(h.stats.Steps) / float64(h.stats.Rays)
}

// Render draws the HUD directly to the terminal. The HUD rows are always
// cleared first so that hiding it works.
func (h *HUD) Render(width, height int, show bool) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !show {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS (%s) %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, h.frameTime.Round(time.Millisecond), reset)

	titleCol := max((width-len(h.name)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.name, reset)

	rays := fmt.Sprintf(" %d/%d hits %.1f steps ", h.stats.Hits, h.stats.Rays, h.stepsPerRay())
	fmt.Printf("%s%s%s%s%s%s", moveTo(1, max(width-len(rays), 1)), bgBlack, fgCyan, bold, rays, reset)

	fmt.Printf("%s%s%s%s WASD/QE spin  Space kick  R reset  +/- zoom  ? HUD  Esc quit %s",
		moveTo(height, 1), bgBlack, dim, fgYellow, reset)
}
