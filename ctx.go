package jester

import "fmt"

// Ctx is handed to every scene callback. It exposes the frame's state and the
// commands a scene may issue. A Ctx is only valid during the callback it was
// passed to.
type Ctx struct {
	// Dt is the clamped time since the previous frame in seconds. It is 0 on
	// the first frame.
	Dt float64
	// Input is this frame's input snapshot.
	Input *InputState
	// Pool holds every live sprite.
	Pool *EntityPool
	// Resources is the type-keyed store shared by all scenes.
	Resources *Resources

	app *App
}

// SpawnSprite adds s to the pool. The sprite is part of this frame's batch.
func (c *Ctx) SpawnSprite(s Sprite) EntityId {
	return c.Pool.Spawn(s)
}

// Despawn removes the entity. Stale ids are ignored.
func (c *Ctx) Despawn(id EntityId) bool {
	return c.Pool.Despawn(id)
}

// LoadAsset loads the texture at path. When loading fails the warning is
// logged and PlaceholderTexture is returned so the sprite still renders.
func (c *Ctx) LoadAsset(path string) TextureID {
	id, err := c.app.LoadAsset(path)
	if err != nil {
		Logger().Warn("asset load failed, using placeholder", "path", path, "err", err)
		return PlaceholderTexture
	}
	return id
}

// GotoScene queues a switch to scene S. The switch happens at the start of
// the next frame, before that frame's Update. A second request in the same
// frame replaces the first.
func GotoScene[S Scene](c *Ctx) {
	c.app.scenes.queue(KeyOf[S]())
}

// Camera returns the active camera.
func (c *Ctx) Camera() *Camera {
	return c.app.activeCamera()
}

// SetCamera replaces the active camera's settings. The viewport is kept in
// sync with the surface.
func (c *Ctx) SetCamera(cam Camera) {
	active := c.app.activeCamera()
	cam.Viewport = active.Viewport
	*active = cam
}

// SpawnCamera adds a camera and returns its index. It does not become active.
func (c *Ctx) SpawnCamera(cam Camera) int {
	return c.app.AddCamera(cam)
}

// UseCamera makes camera index i the active one.
func (c *Ctx) UseCamera(i int) error {
	if i < 0 || i >= len(c.app.cameras) {
		return fmt.Errorf("jester: camera %d: %w", i, ErrInvalidParameter)
	}
	c.app.activeCam = i
	return nil
}

// MouseWorld returns the cursor position in world pixels under the active camera.
func (c *Ctx) MouseWorld() Vec2 {
	m := c.Input.MousePos()
	x, y := c.app.activeCamera().ScreenToWorld(m.X, m.Y)
	return Vec2{X: x, Y: y}
}

// Viewport returns the surface size in pixels.
func (c *Ctx) Viewport() Vec2 {
	return c.app.viewport
}

// Frame returns the number of the current frame, starting at 1.
func (c *Ctx) Frame() uint64 {
	return c.app.frameNum
}

// FPS returns the frame-rate statistics of the last completed window.
func (c *Ctx) FPS() FPSStats {
	return c.app.fps
}

// Quit requests an orderly shutdown after the current frame is submitted.
func (c *Ctx) Quit() {
	c.app.quit = true
}

// Screenshot asks the backend to capture the next frame under label. It
// reports false when the backend cannot take screenshots.
func (c *Ctx) Screenshot(label string) bool {
	s, ok := c.app.backend.(Screenshotter)
	if !ok {
		return false
	}
	s.Screenshot(label)
	return true
}
