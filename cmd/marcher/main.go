// marcher - Terminal Ray Marcher
// Sphere-trace signed distance scenes in your terminal, or render them to PNG.
//
// Controls:
//
//	Mouse drag  - Spin scene (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset rotation and zoom
//	?           - Toggle HUD overlay (FPS, scene name, ray stats)
//	+/-         - Adjust zoom
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/marcher/pkg/math3d"
	"github.com/taigrr/marcher/pkg/render"
	"github.com/taigrr/marcher/pkg/scene"
	"github.com/taigrr/marcher/pkg/sdf"
)

var (
	sceneFile = flag.String("scene", "", "Path to a TOML scene file")
	preset    = flag.String("preset", "platonic", "Built-in scene ("+strings.Join(scene.PresetNames(), ", ")+")")
	gltfFile  = flag.String("gltf", "", "Path to a glTF/GLB file with extra lights, materials and meshes")
	targetFPS = flag.Int("fps", 30, "Target FPS")
	bgColor   = flag.String("bg", "", "Background color (R,G,B), overrides the scene")
	pngOut    = flag.String("png", "", "Render a single frame to this PNG file instead of the terminal")
	pngWidth  = flag.Int("width", 640, "PNG width in pixels")
	pngHeight = flag.Int("height", 360, "PNG height in pixels")
	logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "marcher - Terminal Ray Marcher\n\n")
		fmt.Fprintf(os.Stderr, "Usage: marcher [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Spin scene\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Roll left/right\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad -log-level: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadScene()
	if err != nil {
		slog.Error("load scene", "err", err)
		os.Exit(1)
	}

	if *pngOut != "" {
		err = renderPNG(ctx, s, *pngOut, *pngWidth, *pngHeight)
	} else {
		err = run(ctx, s)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("marcher", "err", err)
		os.Exit(1)
	}
}

// loadScene builds the scene from -scene or -preset and merges -gltf into
// it. Imported materials override configured ones of the same name.
func loadScene() (*scene.Scene, error) {
	var imp *scene.Import
	if *gltfFile != "" {
		var err error
		if imp, err = scene.ImportGLTF(*gltfFile); err != nil {
			return nil, err
		}
		slog.Info("imported glTF", "path", *gltfFile,
			"materials", len(imp.Materials),
			"lights", len(imp.PointLights)+len(imp.DirectionalLights),
			"meshes", len(imp.Proxies))
	}

	var (
		s   *scene.Scene
		err error
	)
	if *sceneFile != "" {
		cfg, err := scene.LoadConfig(*sceneFile)
		if err != nil {
			return nil, err
		}
		var overrides map[string]sdf.Material
		if imp != nil {
			overrides = imp.Materials
		}
		if s, err = cfg.Build(overrides); err != nil {
			return nil, fmt.Errorf("%s: %w", *sceneFile, err)
		}
	} else if s, err = scene.Preset(*preset); err != nil {
		return nil, err
	}
	if imp != nil {
		s.Apply(imp)
	}

	if *bgColor != "" {
		var r, g, b uint8
		if _, err := fmt.Sscanf(*bgColor, "%d,%d,%d", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("parse -bg %q: %w", *bgColor, err)
		}
		s.Background = render.RGB(r, g, b)
	}

	slog.Debug("scene ready", "name", s.Name, "bounded", s.Bounds != nil,
		"point_lights", len(s.PointLights), "directional_lights", len(s.DirectionalLights))
	return s, nil
}

// newCamera points a camera from the scene's suggested position at its
// target.
func newCamera(s *scene.Scene, aspect float64) *render.Camera {
	camera := render.NewCamera()
	camera.SetAspectRatio(aspect)
	camera.SetFOV(math.Pi / 3)
	camera.SetPosition(s.CameraPosition)
	camera.LookAt(s.CameraTarget)
	return camera
}

func renderPNG(ctx context.Context, s *scene.Scene, path string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("bad image size %dx%d", width, height)
	}
	fb := render.NewFramebuffer(width, height)
	renderer := render.NewRenderer(newCamera(s, float64(width)/float64(height)))

	start := time.Now()
	if err := renderer.Render(ctx, s, fb); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	stats := renderer.Stats()
	slog.Info("rendered", "scene", s.Name, "size", fmt.Sprintf("%dx%d", width, height),
		"elapsed", time.Since(start).Round(time.Millisecond),
		"rays", stats.Rays, "hits", stats.Hits, "steps", stats.Steps)

	return fb.SavePNG(path)
}

// view is the state shared between the event loop and the frame loop.
type view struct {
	mu       sync.Mutex
	rotation *RotationState
	torque   struct{ pitch, yaw, roll float64 }
	zoom     float64 // camera distance multiplier
	showHUD  bool
	resize   *uv.WindowSizeEvent
}

func run(ctx context.Context, s *scene.Scene) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event mouse tracking in SGR mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	fb := render.NewFramebuffer(fbWidth, fbHeight)

	// Terminal cells are about twice as tall as wide; half-blocks make the
	// framebuffer pixels roughly square.
	camera := newCamera(s, float64(fbWidth)/float64(fbHeight))
	renderer := render.NewRenderer(camera)
	offset := s.CameraPosition.Sub(s.CameraTarget)

	fps := max(*targetFPS, 1)
	hud := NewHUD(s.Name)
	v := &view{rotation: NewRotationState(fps), zoom: 1}

	go handleEvents(ctx, cancel, term, v)

	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()
	const torqueStrength = 3.0

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		v.mu.Lock()
		if ev := v.resize; ev != nil {
			v.resize = nil
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			termRenderer = render.NewTerminalRenderer(term, width, height)
			fbWidth, fbHeight = termRenderer.FramebufferSize()
			fb = render.NewFramebuffer(fbWidth, fbHeight)
			camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))
			slog.Debug("resized", "cols", width, "rows", height)
		}

		// Key release events are unreliable, so held torque decays.
		v.rotation.ApplyImpulse(
			v.torque.pitch*torqueStrength*dt,
			v.torque.yaw*torqueStrength*dt,
			v.torque.roll*torqueStrength*dt,
		)
		v.torque.pitch *= 0.9
		v.torque.yaw *= 0.9
		v.torque.roll *= 0.9
		v.rotation.Update()

		rot := v.rotation.Matrix()
		camera.SetPosition(s.CameraTarget.Add(offset.Scale(v.zoom)))
		camera.LookAt(s.CameraTarget)
		showHUD := v.showHUD
		v.mu.Unlock()

		frame := s.WithRotation(rot)
		if err := renderer.Render(ctx, frame, fb); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("render: %w", err)
		}

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		hud.Update(renderer.Stats(), time.Since(now))
		hud.Render(width, height, showHUD)

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

func handleEvents(ctx context.Context, cancel context.CancelFunc, term *uv.Terminal, v *view) {
	var (
		mouseDown              bool
		lastMouseX, lastMouseY int
	)
	zoom := func(delta float64) {
		v.zoom = math3d.Clamp(v.zoom+delta, 0.2, 4)
	}

	for ev := range term.Events() {
		if ctx.Err() != nil {
			return
		}
		v.mu.Lock()
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			v.resize = &ev

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
				v.mu.Unlock()
				cancel()
				return
			case ev.MatchString("r"):
				v.rotation.Reset()
				v.zoom = 1
			case ev.MatchString("w", "up"):
				v.torque.pitch = -1
			case ev.MatchString("s", "down"):
				v.torque.pitch = 1
			case ev.MatchString("a", "left"):
				v.torque.yaw = -1
			case ev.MatchString("d", "right"):
				v.torque.yaw = 1
			case ev.MatchString("q"):
				v.torque.roll = -1
			case ev.MatchString("e"):
				v.torque.roll = 1
			case ev.MatchString("space"):
				v.rotation.ApplyImpulse(
					(rand.Float64()-0.5)*1.5,
					(rand.Float64()-0.5)*1.5,
					(rand.Float64()-0.5)*1.5,
				)
			case ev.MatchString("+", "="):
				zoom(-0.1)
			case ev.MatchString("-", "_"):
				zoom(0.1)
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				v.showHUD = !v.showHUD
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
				v.torque.pitch = 0
			case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
				v.torque.yaw = 0
			case ev.MatchString("q"), ev.MatchString("e"):
				v.torque.roll = 0
			}

		case uv.MouseClickEvent:
			mouseDown = true
			lastMouseX, lastMouseY = ev.X, ev.Y

		case uv.MouseReleaseEvent:
			mouseDown = false

		case uv.MouseMotionEvent:
			if mouseDown {
				dx := ev.X - lastMouseX
				dy := ev.Y - lastMouseY
				v.rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				zoom(-0.1)
			case uv.MouseWheelDown:
				zoom(0.1)
			}
		}
		v.mu.Unlock()
	}
}
