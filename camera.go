package jester

import (
	"fmt"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for the camera center.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps world pixels to device coordinates. A world point p lands at
// screen pixel (p - Center) * Zoom, so with the zero Center world (0,0) is the
// top-left corner of the viewport.
type Camera struct {
	// Center is the world-space offset subtracted before scaling.
	Center Vec2
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in). Always > 0.
	Zoom float64
	// PixelPerfect snaps the center and zoom to whole pixels in Transform.
	PixelPerfect bool
	// Viewport is the size of the surface the camera renders into. The App
	// keeps it in sync with window resizes.
	Viewport Vec2

	followTarget EntityId
	following    bool
	followLerp   float64

	scrollTween *scrollAnim
}

// NewCamera creates a camera with zoom 1 and the given viewport size.
func NewCamera(width, height float64) Camera {
	return Camera{Zoom: 1, Viewport: Vec2{X: width, Y: height}}
}

// NewPixelPerfectCamera creates a camera that maps world pixels 1:1 onto a
// width x height viewport, with world (0,0) at the top-left device pixel.
func NewPixelPerfectCamera(width, height float64) Camera {
	c := NewCamera(width, height)
	c.PixelPerfect = true
	return c
}

// SetCenter moves the camera.
func (c *Camera) SetCenter(pos Vec2) {
	c.Center = pos
}

// SetZoom sets the zoom factor. Non-positive, infinite, and NaN values are
// rejected with ErrInvalidParameter and leave the zoom unchanged.
func (c *Camera) SetZoom(z float64) error {
	if !(z > 0) || !isFinite(z) {
		return fmt.Errorf("jester: zoom %v: %w", z, ErrInvalidParameter)
	}
	c.Zoom = z
	return nil
}

// effective returns the center and zoom actually used for rendering.
func (c *Camera) effective() (center Vec2, zoom float64) {
	center, zoom = c.Center, c.Zoom
	if !(zoom > 0) {
		zoom = 1
	}
	if c.PixelPerfect {
		center.X = math.Round(center.X)
		center.Y = math.Round(center.Y)
		zoom = math.Max(1, math.Round(zoom))
	}
	return center, zoom
}

// Transform returns the uniform block the vertex stage needs to map world
// pixels in a viewport of the given size to normalized device coordinates.
func (c *Camera) Transform(viewport Vec2) CameraUniforms {
	center, zoom := c.effective()
	return CameraUniforms{
		Screen: [2]float32{float32(viewport.X), float32(viewport.Y)},
		Center: [2]float32{float32(center.X), float32(center.Y)},
		Zoom:   float32(zoom),
	}
}

// WorldToScreen converts world coordinates to viewport pixel coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	center, zoom := c.effective()
	return (wx - center.X) * zoom, (wy - center.Y) * zoom
}

// ScreenToWorld converts viewport pixel coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	center, zoom := c.effective()
	return sx/zoom + center.X, sy/zoom + center.Y
}

// VisibleBounds returns the world-space rectangle covered by the viewport.
func (c *Camera) VisibleBounds() Rect {
	center, zoom := c.effective()
	return Rect{X: center.X, Y: center.Y, Width: c.Viewport.X / zoom, Height: c.Viewport.Y / zoom}
}

// Follow makes the camera keep the given sprite centered in the viewport.
// A lerp of 1.0 snaps immediately; lower values give smoother following.
// Following stops on its own once the entity is despawned.
func (c *Camera) Follow(id EntityId, lerp float64) {
	c.followTarget = id
	c.following = true
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.following = false
	c.followTarget = EntityId{}
}

// Following returns the followed entity, if any.
func (c *Camera) Following() (EntityId, bool) {
	return c.followTarget, c.following
}

// ScrollTo animates the camera center to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.Center.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Center.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// update advances follow and scroll. Called by the App once per frame after
// the scene update.
func (c *Camera) update(dt float32, pool *EntityPool) {
	if c.following {
		s, ok := pool.Sprite(c.followTarget)
		if !ok {
			Logger().Warn("camera follow target despawned", "entity", c.followTarget.String())
			c.Unfollow()
		} else {
			zoom := c.Zoom
			if !(zoom > 0) {
				zoom = 1
			}
			mid := s.Rect.Center()
			targetX := mid.X - c.Viewport.X/(2*zoom)
			targetY := mid.Y - c.Viewport.Y/(2*zoom)
			c.Center.X += (targetX - c.Center.X) * c.followLerp
			c.Center.Y += (targetY - c.Center.Y) * c.followLerp
		}
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.Center.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Center.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}
}

// CameraUniforms is the small uniform block consumed by the vertex stage.
// Layout matches the shader's CameraUniforms struct (24 bytes).
type CameraUniforms struct {
	Screen [2]float32
	Center [2]float32
	Zoom   float32
	_      float32
}

// PixelToNDC maps a world pixel to normalized device coordinates exactly as
// the vertex stage does: offset by -Center, scale by Zoom, divide by the
// screen size, remap to [-1, 1], and negate Y so the top-left pixel origin
// lands at NDC (-1, 1). A zero-sized screen maps everything to the origin.
func (u CameraUniforms) PixelToNDC(x, y float32) (float32, float32) {
	if u.Screen[0] == 0 || u.Screen[1] == 0 {
		return 0, 0
	}
	px := (x - u.Center[0]) * u.Zoom
	py := (y - u.Center[1]) * u.Zoom
	nx := px/u.Screen[0]*2 - 1
	ny := py/u.Screen[1]*2 - 1
	return nx, -ny
}
