// Package jester is the runtime core of a minimal batched 2D sprite engine.
//
// Jester owns the live set of sprites, advances per-frame logic through
// user-supplied scenes, and turns sprite state into one instanced draw per
// frame. Windowing, input sourcing, texture decoding, and the GPU live behind
// the [Backend] interface; this repository ships an [Ebitengine] backend in
// backend/ebitenbackend and a GPU-less one in backend/headless.
//
// # Quick start
//
//	type Title struct{ logo jester.EntityId }
//
//	func (t *Title) Start(ctx *jester.Ctx) {
//		tex := ctx.LoadAsset("assets/logo.png")
//		t.logo = ctx.SpawnSprite(jester.NewSprite(
//			jester.Rect{X: 336, Y: 236, Width: 128, Height: 128}, jester.FullUV, tex))
//	}
//
//	func (t *Title) Update(ctx *jester.Ctx) {
//		if ctx.Input.JustPressed(ebiten.KeyEnter) {
//			jester.GotoScene[*Level](ctx)
//		}
//	}
//
//	app := jester.NewApp("My Game", ebitenbackend.New())
//	app.AddScene(&Title{}).AddScene(&Level{})
//	jester.SetStartScene[*Title](app)
//	if err := app.Run(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// # Entities
//
// Sprites live in an [EntityPool] and are addressed by generational
// [EntityId] handles. A handle kept after [EntityPool.Despawn] never resolves
// again, even when its slot is reused.
//
// # Frames
//
// Each frame the [App] polls the backend, applies a scene switch queued in
// the previous frame, runs the current scene's Update, advances the camera,
// rebuilds the [SpriteBatch] from scratch, and submits it. Frame deltas are
// clamped to 0.25 s by default.
//
// # Coordinates
//
// World units are pixels with the origin at the top-left and Y down. A
// [Camera] maps world pixels to normalized device coordinates with
// ((p - center) * zoom) / screen * 2 - 1, negating Y.
//
// Cameras support follow and scroll-to animation (via [gween]). Sprite rects
// can be tweened with [TweenGroup].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package jester
