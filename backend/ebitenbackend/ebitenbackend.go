// Package ebitenbackend runs a jester App inside an Ebitengine window.
//
// Ebitengine owns the main loop, so the Backend also implements
// jester.LoopDriver: each Ebitengine Update runs one App frame, and Draw
// replays the last submitted batch as one DrawTriangles32 call per texture
// group.
package ebitenbackend

import (
	"errors"
	"fmt"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/kamstrup/intmap"

	"github.com/phanxgames/jester"
	"github.com/phanxgames/jester/internal/capture"
)

// trackedButtons are the mouse buttons mirrored into jester.InputState.
var trackedButtons = [...]ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// draw is one recorded texture group, ready to replay in Draw.
type draw struct {
	img        *ebiten.Image
	vertsStart int
	vertsEnd   int
	indsStart  int
	indsEnd    int
}

// Option configures a Backend.
type Option func(*Backend)

// WithScreenshotDir sets where screenshots are written.
func WithScreenshotDir(dir string) Option {
	return func(b *Backend) { b.screenshotDir = dir }
}

// WithClearColor sets the color the screen is filled with before sprites
// are drawn.
func WithClearColor(c color.Color) Option {
	return func(b *Backend) { b.clear = c }
}

// Backend is the Ebitengine jester.Backend.
type Backend struct {
	textures *intmap.Map[jester.TextureID, *ebiten.Image]
	owned    []*ebiten.Image
	paths    map[string]jester.TextureID
	nextID   jester.TextureID
	magenta  *ebiten.Image

	width, height int
	resized       bool
	initialized   bool
	released      bool

	keyBuf []ebiten.Key

	verts []ebiten.Vertex
	inds  []uint32
	draws []draw

	clear         color.Color
	screenshotDir string
	pendingShots  []string
}

var (
	_ jester.Backend       = (*Backend)(nil)
	_ jester.LoopDriver    = (*Backend)(nil)
	_ jester.Screenshotter = (*Backend)(nil)
)

// New creates an Ebitengine backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		textures:      intmap.New[jester.TextureID, *ebiten.Image](16),
		paths:         make(map[string]jester.TextureID),
		screenshotDir: capture.DefaultDir,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init configures the window. The window opens when RunLoop starts.
func (b *Backend) Init(cfg jester.RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("ebitenbackend: window %dx%d: %w", cfg.Width, cfg.Height, jester.ErrInvalidParameter)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	ebiten.SetVsyncEnabled(cfg.VSync)
	ebiten.SetWindowClosingHandled(true)

	b.width, b.height = cfg.Width, cfg.Height
	b.initialized = true
	jester.Logger().Info("ebiten backend ready", "width", b.width, "height", b.height)
	return nil
}

// Capabilities implements jester.Backend. Ebitengine binds one source image
// per draw call.
func (b *Backend) Capabilities() jester.Capabilities {
	return jester.Capabilities{}
}

// RunLoop hands the main loop to Ebitengine and calls step once per tick.
func (b *Backend) RunLoop(step func() error) error {
	return ebiten.RunGame(&game{b: b, step: step})
}

// PollEvents mirrors Ebitengine's keyboard and mouse state into in and
// reports resizes seen by Layout and close requests.
func (b *Backend) PollEvents(in *jester.InputState, dst []jester.Event) []jester.Event {
	b.keyBuf = inpututil.AppendJustReleasedKeys(b.keyBuf[:0])
	for _, k := range b.keyBuf {
		in.SetKeyDown(k, false)
	}
	b.keyBuf = inpututil.AppendPressedKeys(b.keyBuf[:0])
	for _, k := range b.keyBuf {
		in.SetKeyDown(k, true)
	}
	for _, mb := range trackedButtons {
		in.SetMouseButton(mb, ebiten.IsMouseButtonPressed(mb))
	}
	x, y := ebiten.CursorPosition()
	in.SetMousePos(float64(x), float64(y))

	if b.resized {
		b.resized = false
		dst = append(dst, jester.Event{Kind: jester.EventResize, Width: b.width, Height: b.height})
	}
	if ebiten.IsWindowBeingClosed() {
		dst = append(dst, jester.Event{Kind: jester.EventClose})
	}
	return dst
}

// LoadTexture decodes the image at path into an Ebitengine image. Repeated
// loads return the same id.
func (b *Backend) LoadTexture(path string) (jester.TextureID, error) {
	if id, ok := b.paths[path]; ok {
		return id, nil
	}
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return 0, fmt.Errorf("ebitenbackend: load %s: %w: %w", path, jester.ErrAssetLoad, err)
	}
	id := b.RegisterImage(img)
	b.paths[path] = id
	return id, nil
}

// RegisterImage makes an existing Ebitengine image available to sprites.
func (b *Backend) RegisterImage(img *ebiten.Image) jester.TextureID {
	b.nextID++
	if b.nextID == jester.PlaceholderTexture {
		b.nextID = 1
	}
	b.textures.Put(b.nextID, img)
	b.owned = append(b.owned, img)
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

func (b *Backend) image(id jester.TextureID) *ebiten.Image {
	if id == jester.PlaceholderTexture {
		if b.magenta == nil {
			b.magenta = ebiten.NewImage(1, 1)
			b.magenta.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
		}
		return b.magenta
	}
	if b.textures == nil {
		return nil
	}
	img, _ := b.textures.Get(id)
	return img
}

// Resize records the new surface size. Ebitengine reconfigures the surface
// itself.
func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("ebitenbackend: resize %dx%d: %w", width, height, jester.ErrInvalidParameter)
	}
	b.width, b.height = width, height
	return nil
}

// Submit converts the batch to triangles for the next Draw.
func (b *Backend) Submit(batch *jester.SpriteBatch) error {
	if !b.initialized || b.released {
		return fmt.Errorf("ebitenbackend: submit on an inactive backend: %w", jester.ErrBackendFatal)
	}
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	b.draws = b.draws[:0]

	sw, sh := float32(b.width), float32(b.height)
	for _, g := range batch.Groups {
		if uint64(g.First)+uint64(g.Count) > uint64(len(batch.Instances)) {
			return fmt.Errorf("ebitenbackend: draw group %d+%d exceeds %d instances: %w",
				g.First, g.Count, len(batch.Instances), jester.ErrBackendFatal)
		}
		if g.Count == 0 {
			continue
		}
		img := b.image(g.Texture)
		if img == nil {
			continue
		}
		bounds := img.Bounds()
		tw, th := float32(bounds.Dx()), float32(bounds.Dy())

		d := draw{img: img, vertsStart: len(b.verts), indsStart: len(b.inds)}
		for _, inst := range batch.Instances[g.First : g.First+g.Count] {
			b.verts, b.inds = appendQuad(b.verts, b.inds, d.vertsStart, batch.Uniforms, inst, tw, th, sw, sh)
		}
		d.vertsEnd, d.indsEnd = len(b.verts), len(b.inds)
		b.draws = append(b.draws, d)
	}
	return nil
}

// Screenshot queues a screenshot of the next drawn frame.
func (b *Backend) Screenshot(label string) {
	b.pendingShots = append(b.pendingShots, label)
}

// WaitIdle implements jester.Backend. Ebitengine flushes its command queue
// at the end of every frame.
func (b *Backend) WaitIdle() error {
	return nil
}

// Release deallocates every texture.
func (b *Backend) Release() error {
	if b.released {
		return nil
	}
	b.released = true
	for _, img := range b.owned {
		img.Deallocate()
	}
	if b.magenta != nil {
		b.magenta.Deallocate()
	}
	b.textures = nil
	b.owned = nil
	b.paths = nil
	b.draws = nil
	jester.Logger().Info("ebiten backend released")
	return nil
}

// render replays the recorded draws onto screen and flushes screenshots.
func (b *Backend) render(screen *ebiten.Image) {
	if b.clear != nil {
		screen.Fill(b.clear)
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	for _, d := range b.draws {
		screen.DrawTriangles32(b.verts[d.vertsStart:d.vertsEnd], b.inds[d.indsStart:d.indsEnd], d.img, &op)
	}
	b.flushScreenshots(screen)
}

func (b *Backend) flushScreenshots(screen *ebiten.Image) {
	if len(b.pendingShots) == 0 {
		return
	}
	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)
	if _, err := capture.Save(b.screenshotDir, b.pendingShots, capture.Unpremultiply(pixels, w, h), time.Now()); err != nil {
		jester.Logger().Warn("screenshot failed", "err", err)
	}
	b.pendingShots = b.pendingShots[:0]
}

// layout tracks the outside size and queues a resize event when it changes.
func (b *Backend) layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 &&
		(outsideWidth != b.width || outsideHeight != b.height) {
		b.width, b.height = outsideWidth, outsideHeight
		b.resized = true
	}
	return b.width, b.height
}

// game adapts the App step to ebiten.Game.
type game struct {
	b    *Backend
	step func() error
}

func (g *game) Update() error {
	err := g.step()
	if errors.Is(err, jester.ErrTerminated) {
		return ebiten.Termination
	}
	return err
}

func (g *game) Draw(screen *ebiten.Image) {
	g.b.render(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.b.layout(outsideWidth, outsideHeight)
}
