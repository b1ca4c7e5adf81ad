package main

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/jester"
)

// textureMaker uploads a generated image through the active backend.
type textureMaker func(img image.Image) jester.TextureID

// artwork is the shared texture set, stored as a resource.
type artwork struct {
	box, ball jester.TextureID
	atlas     *jester.Atlas
}

func checker(size int, a, b color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(size/4, 1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, a)
			} else {
				img.SetRGBA(x, y, b)
			}
		}
	}
	return img
}

func disc(size int, c color.RGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
			}
		}
	}
	return img
}

// --- Title ---

type titleScene struct {
	logo  jester.EntityId
	intro *jester.TweenGroup
	blink jester.Timer
	dots  []jester.EntityId
	up    bool
}

func (s *titleScene) Start(ctx *jester.Ctx) {
	art, _ := jester.GetResource[*artwork](ctx.Resources)
	vp := ctx.Viewport()
	ctx.SetCamera(jester.NewCamera(vp.X, vp.Y))

	s.logo = ctx.SpawnSprite(jester.NewSprite(
		jester.Rect{X: vp.X/2 - 8, Y: vp.Y/2 - 8, Width: 16, Height: 16}, jester.FullUV, art.box))
	s.intro = jester.TweenRect(ctx.Pool, s.logo,
		jester.Rect{X: vp.X/2 - 96, Y: vp.Y/2 - 96, Width: 192, Height: 192}, 0.8, ease.OutBack)

	s.dots = s.dots[:0]
	for i := range 3 {
		s.dots = append(s.dots, ctx.SpawnSprite(jester.NewSprite(
			jester.Rect{X: vp.X/2 - 40 + float64(i)*32, Y: vp.Y/2 + 128, Width: 16, Height: 16},
			jester.FullUV, art.ball)))
	}
	s.blink = jester.NewTimer(400*time.Millisecond, jester.TimerLoop)
}

func (s *titleScene) Update(ctx *jester.Ctx) {
	if s.intro != nil && !s.intro.Done {
		s.intro.Update(float32(ctx.Dt))
	}
	if s.blink.TickSeconds(ctx.Dt) {
		s.up = !s.up
		for i, id := range s.dots {
			sp, ok := ctx.Pool.SpriteMut(id)
			if !ok {
				continue
			}
			if (i%2 == 0) == s.up {
				sp.Rect.Y -= 8
			} else {
				sp.Rect.Y += 8
			}
		}
	}

	switch {
	case ctx.Input.JustPressed(ebiten.KeyEnter), ctx.Input.JustPressed(ebiten.KeySpace):
		jester.GotoScene[*fieldScene](ctx)
	case ctx.Input.JustPressed(ebiten.KeyQ):
		ctx.Quit()
	}
}

func (s *titleScene) Stop(ctx *jester.Ctx) {
	ctx.Despawn(s.logo)
	for _, id := range s.dots {
		ctx.Despawn(id)
	}
	s.intro = nil
}

// --- Field ---

type mover struct {
	id     jester.EntityId
	dx, dy float64
}

type fieldScene struct {
	count   int
	movers  []mover
	world   jester.Rect
	stats   jester.Timer
	rng     *rand.Rand
	follows bool
}

func (s *fieldScene) Start(ctx *jester.Ctx) {
	art, _ := jester.GetResource[*artwork](ctx.Resources)
	vp := ctx.Viewport()
	s.world = jester.Rect{Width: vp.X * 2, Height: vp.Y * 2}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(1, 2))
	}

	var regions []jester.AtlasRegion
	if art.atlas != nil {
		for _, name := range art.atlas.Names() {
			regions = append(regions, art.atlas.Region(name))
		}
	}

	s.movers = s.movers[:0]
	for i := range s.count {
		size := 8 + s.rng.Float64()*24
		x := s.rng.Float64() * (s.world.Width - size)
		y := s.rng.Float64() * (s.world.Height - size)
		var sp jester.Sprite
		switch {
		case len(regions) > 0:
			sp = regions[i%len(regions)].Sprite(x, y)
		case i%2 == 0:
			sp = jester.NewSprite(jester.Rect{X: x, Y: y, Width: size, Height: size}, jester.FullUV, art.box)
		default:
			sp = jester.NewSprite(jester.Rect{X: x, Y: y, Width: size, Height: size}, jester.FullUV, art.ball)
		}
		angle := s.rng.Float64() * 2 * math.Pi
		speed := 40 + s.rng.Float64()*120
		s.movers = append(s.movers, mover{
			id: ctx.SpawnSprite(sp),
			dx: math.Cos(angle) * speed,
			dy: math.Sin(angle) * speed,
		})
	}

	cam := jester.NewCamera(vp.X, vp.Y)
	cam.SetCenter(jester.Vec2{X: s.world.Width/2 - vp.X/2, Y: s.world.Height/2 - vp.Y/2})
	ctx.SetCamera(cam)
	s.follows = false
	s.stats = jester.NewTimer(time.Second, jester.TimerLoop)
}

func (s *fieldScene) Update(ctx *jester.Ctx) {
	for i := range s.movers {
		m := &s.movers[i]
		sp, ok := ctx.Pool.SpriteMut(m.id)
		if !ok {
			continue
		}
		sp.Rect.X += m.dx * ctx.Dt
		sp.Rect.Y += m.dy * ctx.Dt
		if sp.Rect.X < s.world.X || sp.Rect.X+sp.Rect.Width > s.world.X+s.world.Width {
			m.dx = -m.dx
		}
		if sp.Rect.Y < s.world.Y || sp.Rect.Y+sp.Rect.Height > s.world.Y+s.world.Height {
			m.dy = -m.dy
		}
	}

	s.steerCamera(ctx)

	if s.stats.TickSeconds(ctx.Dt) {
		fps := ctx.FPS()
		jester.Logger().Info("field", "sprites", ctx.Pool.Len(), "fps", fps.FPS, "frame_ms", fps.FrameMS)
	}

	switch {
	case ctx.Input.JustPressed(ebiten.KeyEscape):
		jester.GotoScene[*titleScene](ctx)
	case ctx.Input.JustPressed(ebiten.KeyQ):
		ctx.Quit()
	case ctx.Input.JustPressed(ebiten.KeyP):
		ctx.Screenshot("field")
	}
}

func (s *fieldScene) steerCamera(ctx *jester.Ctx) {
	cam := ctx.Camera()
	const pan = 400.0
	var dx, dy float64
	if ctx.Input.Pressed(ebiten.KeyArrowLeft) {
		dx -= pan
	}
	if ctx.Input.Pressed(ebiten.KeyArrowRight) {
		dx += pan
	}
	if ctx.Input.Pressed(ebiten.KeyArrowUp) {
		dy -= pan
	}
	if ctx.Input.Pressed(ebiten.KeyArrowDown) {
		dy += pan
	}
	if dx != 0 || dy != 0 {
		cam.Unfollow()
		s.follows = false
		cam.SetCenter(jester.Vec2{X: cam.Center.X + dx*ctx.Dt, Y: cam.Center.Y + dy*ctx.Dt})
	}

	if ctx.Input.JustPressed(ebiten.KeyEqual) {
		_ = cam.SetZoom(cam.Zoom * 1.25)
	}
	if ctx.Input.JustPressed(ebiten.KeyMinus) {
		_ = cam.SetZoom(cam.Zoom / 1.25)
	}

	if ctx.Input.JustPressed(ebiten.KeyF) && len(s.movers) > 0 {
		if s.follows {
			cam.Unfollow()
		} else {
			cam.Follow(s.movers[0].id, 0.1)
		}
		s.follows = !s.follows
	}

	if ctx.Input.MouseJustPressed(ebiten.MouseButtonLeft) {
		target := ctx.MouseWorld()
		vp := ctx.Viewport()
		cam.Unfollow()
		s.follows = false
		cam.ScrollTo(target.X-vp.X/(2*cam.Zoom), target.Y-vp.Y/(2*cam.Zoom), 0.5, ease.InOutQuad)
	}
}

func (s *fieldScene) Stop(ctx *jester.Ctx) {
	for _, m := range s.movers {
		ctx.Despawn(m.id)
	}
	s.movers = s.movers[:0]
}
