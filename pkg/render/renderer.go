package render

import (
	"context"
	"errors"
	"image/color"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/marcher/pkg/lighting"
	"github.com/taigrr/marcher/pkg/scene"
	"github.com/taigrr/marcher/pkg/sdf"
)

// ErrNoField is returned when rendering a scene without geometry.
var ErrNoField = errors.New("render: scene has no field")

// DefaultGamma is the display gamma applied by NewRenderer.
const DefaultGamma = 2.2

// Stats counts the work done by the last Render call.
type Stats struct {
	Rays  int64 // primary rays cast
	Hits  int64 // rays that reached a surface
	Steps int64 // field evaluations spent marching
}

// Renderer ray-marches scenes into framebuffers. Rows are shaded in
// parallel; a Renderer must not be used by more than one Render call at a
// time.
type Renderer struct {
	Camera  *Camera
	Marcher Marcher
	Gamma   float64
	Workers int // concurrent rows, GOMAXPROCS when zero

	rays, hits, steps atomic.Int64
}

// NewRenderer creates a renderer with default marching limits.
func NewRenderer(camera *Camera) *Renderer {
	return &Renderer{
		Camera:  camera,
		Marcher: NewMarcher(),
		Gamma:   DefaultGamma,
	}
}

// Stats returns the counters of the last Render call.
func (r *Renderer) Stats() Stats {
	return Stats{
		Rays:  r.rays.Load(),
		Hits:  r.hits.Load(),
		Steps: r.steps.Load(),
	}
}

// Render draws s into fb, one primary ray per pixel. It returns early with
// ctx's error if ctx is cancelled; rows already drawn stay in fb.
func (r *Renderer) Render(ctx context.Context, s *scene.Scene, fb *Framebuffer) error {
	if s.Field == nil {
		return ErrNoField
	}
	r.rays.Store(0)
	r.hits.Store(0)
	r.steps.Store(0)

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := range fb.Height {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.renderRow(s, fb, y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *Renderer) renderRow(s *scene.Scene, fb *Framebuffer, y int) {
	var rays, hits, steps int64
	for x := range fb.Width {
		ray := r.Camera.Ray(x, y, fb.Width, fb.Height)
		c, hit, n := r.shade(s, ray)
		rays++
		steps += int64(n)
		if hit {
			hits++
		}
		fb.SetPixel(x, y, c)
	}
	r.rays.Add(rays)
	r.hits.Add(hits)
	r.steps.Add(steps)
}

// Pixel shades a single ray against s and reports whether it hit.
func (r *Renderer) Pixel(s *scene.Scene, ray sdf.Ray) (color.RGBA, bool) {
	c, hit, _ := r.shade(s, ray)
	return c, hit
}

func (r *Renderer) shade(s *scene.Scene, ray sdf.Ray) (color.RGBA, bool, int) {
	tMin, tMax := 0.0, r.Marcher.MaxDistance
	if s.Bounds != nil {
		ray.Direction = ray.Direction.Normalize()
		near, far, ok := s.Bounds.IntersectRay(ray)
		if !ok {
			return s.Background, false, 0
		}
		tMin = math.Max(near, 0)
		tMax = math.Min(far, tMax)
	}

	tr, steps := r.Marcher.MarchRange(s.Field, ray, tMin, tMax)
	if !tr.Hit {
		return s.Background, false, steps
	}

	radiance := s.Ambient.Mul(tr.Material.Color.Diffuse).
		Add(lighting.Shade(tr, tr.Normal, s.PointLights, s.DirectionalLights))
	return ToColor(radiance, r.Gamma), true, steps
}
