package jester

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AppState is the lifecycle stage of an App.
type AppState uint8

const (
	StateUninitialized AppState = iota // created, Run not yet called
	StateRunning                       // backend initialized, frames are produced
	StateShuttingDown                  // close requested or fatal error, draining
	StateTerminated                    // backend released
)

// String implements fmt.Stringer.
func (s AppState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("AppState(%d)", uint8(s))
	}
}

const (
	defaultWidth        = 800
	defaultHeight       = 600
	defaultPoolCapacity = 256
)

// Option configures an App.
type Option func(*App)

// WithClock replaces the wall clock used to measure frame deltas.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// WithMaxFrameDelta caps dt at seconds. Non-positive values keep the default.
func WithMaxFrameDelta(seconds float64) Option {
	return func(a *App) {
		if seconds > 0 {
			a.cfg.MaxFrameDelta = seconds
		}
	}
}

// WithSize sets the initial surface size.
func WithSize(width, height int) Option {
	return func(a *App) {
		if width > 0 && height > 0 {
			a.cfg.Width, a.cfg.Height = width, height
		}
	}
}

// WithResizable lets the user resize the window.
func WithResizable(on bool) Option {
	return func(a *App) { a.cfg.Resizable = on }
}

// WithVSync toggles vertical sync.
func WithVSync(on bool) Option {
	return func(a *App) { a.cfg.VSync = on }
}

// WithDebug enables per-frame batch statistics at debug log level.
func WithDebug(on bool) Option {
	return func(a *App) { a.cfg.Debug = on }
}

// WithPoolCapacity presizes the entity pool.
func WithPoolCapacity(n int) Option {
	return func(a *App) { a.pool = NewEntityPool(n) }
}

// App drives the frame loop: it polls the backend, advances the current
// scene, builds the sprite batch, and submits it. An App runs once.
type App struct {
	cfg     RunConfig
	backend Backend
	now     func() time.Time
	state   AppState

	pool      *EntityPool
	input     *InputState
	resources *Resources
	scenes    sceneRegistry
	startKey  SceneKey
	hasStart  bool

	cameras   []Camera
	activeCam int
	viewport  Vec2

	batcher *Batcher
	events  []Event
	assets  map[string]TextureID

	started  bool
	last     time.Time
	frameNum uint64
	fps      FPSStats
	quit     bool

	ctx Ctx
}

// NewApp creates an App that renders through backend.
func NewApp(title string, backend Backend, opts ...Option) *App {
	a := &App{
		cfg: RunConfig{
			Title:         title,
			Width:         defaultWidth,
			Height:        defaultHeight,
			MaxFrameDelta: defaultMaxFrameDelta,
			VSync:         true,
		},
		backend:   backend,
		now:       time.Now,
		pool:      NewEntityPool(defaultPoolCapacity),
		input:     NewInputState(),
		resources: NewResources(),
		scenes:    newSceneRegistry(),
		assets:    make(map[string]TextureID),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.viewport = Vec2{X: float64(a.cfg.Width), Y: float64(a.cfg.Height)}
	a.ctx = Ctx{Input: a.input, Pool: a.pool, Resources: a.resources, app: a}
	return a
}

// State returns the lifecycle stage.
func (a *App) State() AppState {
	return a.state
}

// Config returns the configuration passed to Backend.Init.
func (a *App) Config() RunConfig {
	return a.cfg
}

// Pool returns the entity pool.
func (a *App) Pool() *EntityPool {
	return a.pool
}

// Resources returns the shared resource store.
func (a *App) Resources() *Resources {
	return a.resources
}

// AddScene registers s under its type. Registering a second value of the
// same type replaces the first.
func (a *App) AddScene(s Scene) *App {
	a.scenes.add(s)
	return a
}

// SetStartScene selects the scene that starts when Run begins. S must be
// registered with AddScene before Run.
func SetStartScene[S Scene](a *App) *App {
	a.startKey = KeyOf[S]()
	a.hasStart = true
	return a
}

// AddCamera adds a camera and returns its index. The first camera added is
// the active one. Its viewport is set to the surface size.
func (a *App) AddCamera(cam Camera) int {
	cam.Viewport = a.viewport
	if !(cam.Zoom > 0) {
		cam.Zoom = 1
	}
	a.cameras = append(a.cameras, cam)
	return len(a.cameras) - 1
}

// AddSprite spawns a sprite before or during Run.
func (a *App) AddSprite(rect Rect, uv UVRect, tex TextureID) EntityId {
	return a.pool.Spawn(NewSprite(rect, uv, tex))
}

// LoadAsset loads the texture at path through the backend. Repeated loads of
// the same path return the same id. Errors wrap ErrAssetLoad.
func (a *App) LoadAsset(path string) (TextureID, error) {
	if id, ok := a.assets[path]; ok {
		return id, nil
	}
	id, err := a.backend.LoadTexture(path)
	if err != nil {
		if !errors.Is(err, ErrAssetLoad) {
			err = fmt.Errorf("%w: %w", ErrAssetLoad, err)
		}
		return 0, err
	}
	a.assets[path] = id
	return id, nil
}

// Run initializes the backend, starts the start scene, and produces frames
// until the window is closed, a scene calls Quit, ctx is cancelled, or the
// backend fails. The backend is always released before Run returns, except
// when Init itself fails.
func (a *App) Run(ctx context.Context) error {
	if a.state != StateUninitialized {
		return fmt.Errorf("jester: app already %s: %w", a.state, ErrInvalidParameter)
	}
	if a.backend == nil {
		a.state = StateTerminated
		return fmt.Errorf("%w: nil backend", ErrInitialization)
	}
	start, ok := a.scenes.get(a.startKey)
	if !a.hasStart || !ok {
		a.state = StateTerminated
		return fmt.Errorf("%w: start scene %s not registered", ErrInitialization, a.startKey)
	}

	if err := a.backend.Init(a.cfg); err != nil {
		a.state = StateTerminated
		return fmt.Errorf("%w: backend init: %w", ErrInitialization, err)
	}
	a.batcher = NewBatcher(a.backend, a.backend.Capabilities())
	if len(a.cameras) == 0 {
		a.AddCamera(NewCamera(a.viewport.X, a.viewport.Y))
	}
	a.state = StateRunning
	Logger().Info("app running", "title", a.cfg.Title,
		"width", a.cfg.Width, "height", a.cfg.Height, "scene", a.startKey.String())

	a.scenes.current = a.startKey
	start.Start(&a.ctx)

	var runErr error
	if driver, ok := a.backend.(LoopDriver); ok {
		runErr = driver.RunLoop(func() error { return a.step(ctx) })
	} else {
		for {
			if runErr = a.step(ctx); runErr != nil {
				break
			}
		}
	}
	if errors.Is(runErr, ErrTerminated) {
		runErr = nil
	}
	return a.shutdown(runErr)
}

// step produces one frame. It returns ErrTerminated once the app should stop
// cleanly and an error wrapping ErrBackendFatal when the backend failed.
func (a *App) step(ctx context.Context) error {
	if a.state != StateRunning {
		return ErrTerminated
	}
	if ctx.Err() != nil || a.quit {
		a.state = StateShuttingDown
		return ErrTerminated
	}

	a.input.BeginFrame()
	a.events = a.backend.PollEvents(a.input, a.events[:0])
	for _, ev := range a.events {
		switch ev.Kind {
		case EventResize:
			if err := a.resize(ev.Width, ev.Height); err != nil {
				a.state = StateShuttingDown
				return err
			}
		case EventClose:
			Logger().Info("close requested")
			a.state = StateShuttingDown
		}
	}
	if a.state != StateRunning {
		return ErrTerminated
	}

	a.frameNum++
	dt := a.tick()
	a.ctx.Dt = dt
	a.fps.Tick(dt)

	a.applyTransition()
	if cur, ok := a.scenes.get(a.scenes.current); ok {
		cur.Update(&a.ctx)
	}

	cam := a.activeCamera()
	cam.update(float32(dt), a.pool)

	var stats frameStats
	if a.cfg.Debug {
		stats.begin()
	}
	batch := a.batcher.Build(a.pool, cam, a.viewport)
	if a.cfg.Debug {
		stats.built(batch)
	}

	if err := a.submit(batch); err != nil {
		a.state = StateShuttingDown
		return err
	}
	if a.cfg.Debug {
		stats.submitted()
		stats.log(a.frameNum, a.fps)
	}

	if a.quit {
		Logger().Info("quit requested")
		a.state = StateShuttingDown
		return ErrTerminated
	}
	return nil
}

// tick returns the clamped time since the previous frame.
func (a *App) tick() float64 {
	now := a.now()
	if !a.started {
		a.started = true
		a.last = now
		return 0
	}
	dt := now.Sub(a.last).Seconds()
	a.last = now
	if dt < 0 {
		return 0
	}
	return min(dt, a.cfg.MaxFrameDelta)
}

// applyTransition switches to the scene queued during the previous frame.
func (a *App) applyTransition() {
	key, ok := a.scenes.take()
	if !ok {
		return
	}
	next, ok := a.scenes.get(key)
	if !ok {
		Logger().Warn("scene switch ignored: not registered", "scene", key.String())
		return
	}
	if cur, ok := a.scenes.get(a.scenes.current); ok {
		if s, ok := cur.(Stopper); ok {
			s.Stop(&a.ctx)
		}
	}
	Logger().Info("scene switch", "from", a.scenes.current.String(), "to", key.String())
	a.scenes.current = key
	next.Start(&a.ctx)
}

// resize propagates a surface size change to the cameras and the backend.
// Zero sizes, such as a minimized window, are ignored.
func (a *App) resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	a.viewport = Vec2{X: float64(width), Y: float64(height)}
	for i := range a.cameras {
		a.cameras[i].Viewport = a.viewport
	}
	if err := a.backend.Resize(width, height); err != nil {
		return fatalError("resize", err)
	}
	return nil
}

// submit hands the batch to the backend. A transient failure gets one
// surface reconfiguration and one retry.
func (a *App) submit(batch *SpriteBatch) error {
	err := a.backend.Submit(batch)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrBackendTransient) {
		return fatalError("submit", err)
	}

	Logger().Warn("transient backend error, reconfiguring surface", "err", err)
	if rerr := a.backend.Resize(int(a.viewport.X), int(a.viewport.Y)); rerr != nil {
		return fatalError("resize", rerr)
	}
	if err := a.backend.Submit(batch); err != nil {
		return fatalError("submit retry", err)
	}
	return nil
}

// shutdown stops the current scene, drains the GPU, and releases the backend.
func (a *App) shutdown(runErr error) error {
	a.state = StateShuttingDown
	if cur, ok := a.scenes.get(a.scenes.current); ok {
		if s, ok := cur.(Stopper); ok {
			s.Stop(&a.ctx)
		}
	}

	errs := []error{runErr}
	if err := a.backend.WaitIdle(); err != nil {
		errs = append(errs, fmt.Errorf("jester: wait idle: %w", err))
	}
	if err := a.backend.Release(); err != nil {
		errs = append(errs, fmt.Errorf("jester: release: %w", err))
	}
	a.state = StateTerminated
	Logger().Info("app terminated", "frames", a.frameNum)
	return errors.Join(errs...)
}

func (a *App) activeCamera() *Camera {
	if len(a.cameras) == 0 {
		a.AddCamera(NewCamera(a.viewport.X, a.viewport.Y))
	}
	return &a.cameras[a.activeCam]
}

func fatalError(op string, err error) error {
	if errors.Is(err, ErrBackendFatal) {
		return fmt.Errorf("jester: %s: %w", op, err)
	}
	return fmt.Errorf("jester: %s: %w: %w", op, ErrBackendFatal, err)
}
