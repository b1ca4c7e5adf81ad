// Package headless is a jester.Backend that needs no window or GPU. It
// compiles the sprite shader at Init, records every submitted frame, replays
// scripted input, and can rasterize frames on the CPU for screenshots. Tests
// and CI runs use it to drive a full App deterministically.
package headless

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/kamstrup/intmap"

	"github.com/phanxgames/jester"
	"github.com/phanxgames/jester/internal/capture"
	"github.com/phanxgames/jester/shader"
)

const defaultFrameHistory = 64

// texture is one resident texture. img is nil for textures registered
// without pixels.
type texture struct {
	path string
	img  image.Image
}

// Frame is a recorded Submit.
type Frame struct {
	// Number counts successful submits, starting at 1.
	Number    uint64
	Instances []jester.SpriteInstance
	Groups    []jester.DrawGroup
	Uniforms  jester.CameraUniforms
	Dropped   int
	// Screenshots lists the files written for this frame.
	Screenshots []string
}

// DrawCalls returns the number of draws the frame needed.
func (f Frame) DrawCalls() int {
	return len(f.Groups)
}

// Vertices runs the vertex stage for every instance of the frame.
func (f Frame) Vertices() [][4]shader.VertexOutput {
	out := make([][4]shader.VertexOutput, len(f.Instances))
	for i, inst := range f.Instances {
		out[i] = shader.Quad(f.Uniforms, inst)
	}
	return out
}

// Option configures a Backend.
type Option func(*Backend)

// WithScript replays s, one step per frame.
func WithScript(s *Script) Option {
	return func(b *Backend) { b.script = s }
}

// WithCloseOnScriptEnd emits a close event once the script has finished.
func WithCloseOnScriptEnd() Option {
	return func(b *Backend) { b.closeOnScriptEnd = true }
}

// WithCloseAfter emits a close event after n successful submits.
func WithCloseAfter(n int) Option {
	return func(b *Backend) { b.closeAfter = n }
}

// WithBindless reports bindless texture support, so the App submits a
// single ungrouped draw.
func WithBindless(on bool) Option {
	return func(b *Backend) { b.bindless = on }
}

// WithoutShaderCompile skips compiling the sprite shader at Init.
func WithoutShaderCompile() Option {
	return func(b *Backend) { b.skipCompile = true }
}

// WithFrameHistory keeps the last n frames. Zero keeps none.
func WithFrameHistory(n int) Option {
	return func(b *Backend) { b.history = max(n, 0) }
}

// WithScreenshotDir sets where screenshots are written.
func WithScreenshotDir(dir string) Option {
	return func(b *Backend) { b.screenshotDir = dir }
}

// WithInitFailure makes Init fail with err.
func WithInitFailure(err error) Option {
	return func(b *Backend) { b.initErr = err }
}

// WithSubmitFailure makes the call-th Submit call (1-based, counting retries)
// fail with err. Wrap jester.ErrBackendTransient to simulate a lost surface.
func WithSubmitFailure(call int, err error) Option {
	return func(b *Backend) { b.failures[call] = err }
}

// Backend is the headless jester.Backend.
type Backend struct {
	cfg         jester.RunConfig
	initialized bool
	released    bool
	initErr     error
	skipCompile bool
	spirv       []uint32

	bindless      bool
	width, height int
	resizes       int

	textures *intmap.Map[jester.TextureID, *texture]
	paths    map[string]jester.TextureID
	nextID   jester.TextureID

	script           *Script
	closeOnScriptEnd bool
	closeAfter       int

	failures    map[int]error
	submitCalls int
	submitted   uint64
	frames      []Frame
	history     int

	screenshotDir string
	pendingShots  []string
}

var (
	_ jester.Backend       = (*Backend)(nil)
	_ jester.Screenshotter = (*Backend)(nil)
)

// New creates a headless backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		textures:      intmap.New[jester.TextureID, *texture](16),
		paths:         make(map[string]jester.TextureID),
		failures:      make(map[int]error),
		history:       defaultFrameHistory,
		screenshotDir: capture.DefaultDir,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init compiles the sprite shader and sizes the virtual surface.
func (b *Backend) Init(cfg jester.RunConfig) error {
	if b.initErr != nil {
		return b.initErr
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("headless: surface %dx%d: %w", cfg.Width, cfg.Height, jester.ErrInvalidParameter)
	}
	if !b.skipCompile {
		words, err := shader.CompileSprite()
		if err != nil {
			return fmt.Errorf("headless: %w", err)
		}
		b.spirv = words
	}
	b.cfg = cfg
	b.width, b.height = cfg.Width, cfg.Height
	b.initialized = true
	jester.Logger().Info("headless backend ready",
		"width", b.width, "height", b.height, "spirv_words", len(b.spirv))
	return nil
}

// Capabilities implements jester.Backend.
func (b *Backend) Capabilities() jester.Capabilities {
	return jester.Capabilities{BindlessTextures: b.bindless}
}

// PollEvents replays the next script step and emits configured closes.
func (b *Backend) PollEvents(in *jester.InputState, dst []jester.Event) []jester.Event {
	if b.script != nil {
		dst = b.script.step(b, in, dst)
		if b.closeOnScriptEnd && b.script.Done() {
			dst = append(dst, jester.Event{Kind: jester.EventClose})
		}
	}
	if b.closeAfter > 0 && b.submitted >= uint64(b.closeAfter) {
		dst = append(dst, jester.Event{Kind: jester.EventClose})
	}
	return dst
}

// LoadTexture decodes the image at path. Repeated loads return the same id.
func (b *Backend) LoadTexture(path string) (jester.TextureID, error) {
	if id, ok := b.paths[path]; ok {
		return id, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("headless: load %s: %w: %w", path, jester.ErrAssetLoad, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("headless: decode %s: %w: %w", path, jester.ErrAssetLoad, err)
	}
	id := b.register(&texture{path: path, img: img})
	b.paths[path] = id
	return id, nil
}

// RegisterImage makes img resident without a file. It is how tests and
// generated content get textures.
func (b *Backend) RegisterImage(img image.Image) jester.TextureID {
	return b.register(&texture{img: img})
}

func (b *Backend) register(t *texture) jester.TextureID {
	b.nextID++
	if b.nextID == jester.PlaceholderTexture {
		b.nextID = 1
	}
	b.textures.Put(b.nextID, t)
	return b.nextID
}

// HasTexture implements jester.TextureSet.
func (b *Backend) HasTexture(id jester.TextureID) bool {
	if id == jester.PlaceholderTexture {
		return true
	}
	if b.textures == nil {
		return false
	}
	_, ok := b.textures.Get(id)
	return ok
}

func (b *Backend) texture(id jester.TextureID) *texture {
	if id == jester.PlaceholderTexture || b.textures == nil {
		return nil
	}
	t, _ := b.textures.Get(id)
	return t
}

// Resize implements jester.Backend.
func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("headless: resize %dx%d: %w", width, height, jester.ErrInvalidParameter)
	}
	b.width, b.height = width, height
	b.resizes++
	return nil
}

// Submit records the batch and writes any pending screenshots.
func (b *Backend) Submit(batch *jester.SpriteBatch) error {
	if !b.initialized || b.released {
		return fmt.Errorf("headless: submit on an inactive backend: %w", jester.ErrBackendFatal)
	}
	b.submitCalls++
	if err, ok := b.failures[b.submitCalls]; ok {
		return err
	}
	for _, g := range batch.Groups {
		if uint64(g.First)+uint64(g.Count) > uint64(len(batch.Instances)) {
			return fmt.Errorf("headless: draw group %d+%d exceeds %d instances: %w",
				g.First, g.Count, len(batch.Instances), jester.ErrBackendFatal)
		}
	}

	b.submitted++
	frame := Frame{
		Number:    b.submitted,
		Instances: append([]jester.SpriteInstance(nil), batch.Instances...),
		Groups:    append([]jester.DrawGroup(nil), batch.Groups...),
		Uniforms:  batch.Uniforms,
		Dropped:   batch.Dropped,
	}

	if len(b.pendingShots) > 0 {
		img := b.rasterize(batch)
		paths, err := capture.Save(b.screenshotDir, b.pendingShots, img, time.Now())
		if err != nil {
			jester.Logger().Warn("headless screenshot failed", "err", err)
		}
		frame.Screenshots = paths
		b.pendingShots = b.pendingShots[:0]
	}

	if b.history > 0 {
		if len(b.frames) == b.history {
			copy(b.frames, b.frames[1:])
			b.frames = b.frames[:len(b.frames)-1]
		}
		b.frames = append(b.frames, frame)
	}
	return nil
}

// Render rasterizes batch at the current surface size without recording it.
func (b *Backend) Render(batch *jester.SpriteBatch) *image.NRGBA {
	return b.rasterize(batch)
}

// Screenshot queues a screenshot of the next submitted frame.
func (b *Backend) Screenshot(label string) {
	b.pendingShots = append(b.pendingShots, label)
}

// WaitIdle implements jester.Backend. There is no queue to drain.
func (b *Backend) WaitIdle() error {
	return nil
}

// Release drops every texture.
func (b *Backend) Release() error {
	if b.released {
		return nil
	}
	b.released = true
	b.textures = nil
	b.paths = nil
	jester.Logger().Info("headless backend released", "frames", b.submitted)
	return nil
}

// Frames returns the recorded frames, oldest first.
func (b *Backend) Frames() []Frame {
	return b.frames
}

// LastFrame returns the most recent recorded frame.
func (b *Backend) LastFrame() (Frame, bool) {
	if len(b.frames) == 0 {
		return Frame{}, false
	}
	return b.frames[len(b.frames)-1], true
}

// Submitted returns the number of successful submits.
func (b *Backend) Submitted() uint64 {
	return b.submitted
}

// SubmitCalls returns the number of Submit calls, including failed ones.
func (b *Backend) SubmitCalls() int {
	return b.submitCalls
}

// Resizes returns the number of successful Resize calls.
func (b *Backend) Resizes() int {
	return b.resizes
}

// Size returns the surface size.
func (b *Backend) Size() (int, int) {
	return b.width, b.height
}

// SPIRV returns the compiled sprite shader, or nil when compilation was skipped.
func (b *Backend) SPIRV() []uint32 {
	return b.spirv
}

// Released reports whether Release has been called.
func (b *Backend) Released() bool {
	return b.released
}
