package jester

// RunConfig holds the options handed to Backend.Init.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the initial surface size in pixels.
	Width, Height int
	// Resizable allows the user to resize the window.
	Resizable bool
	// MaxFrameDelta caps the per-frame dt in seconds. Zero means 0.25.
	MaxFrameDelta float64
	// Debug enables per-frame batch statistics at debug log level.
	Debug bool
	// VSync synchronizes presentation with the display refresh.
	VSync bool
}

// defaultMaxFrameDelta is the dt clamp applied when RunConfig leaves it unset.
const defaultMaxFrameDelta = 0.25

// Capabilities describes what the backend's draw path supports.
type Capabilities struct {
	// BindlessTextures is true when one draw can sample any resident texture
	// by index. When false the batch is grouped into one draw per texture.
	BindlessTextures bool
}

// EventKind identifies a surface event reported by PollEvents.
type EventKind uint8

const (
	EventResize EventKind = iota // surface was resized to Width x Height
	EventClose                   // the user asked to close the window
)

// Event is one surface event.
type Event struct {
	Kind          EventKind
	Width, Height int
}

// Backend is the boundary between the engine core and the platform. It owns
// the window, input sourcing, texture decoding and upload, and the GPU. All
// methods are called from the goroutine running App.Run.
type Backend interface {
	TextureSet

	// Init opens the surface and prepares the draw pipeline.
	Init(cfg RunConfig) error
	// Capabilities reports draw-path features. Valid after Init.
	Capabilities() Capabilities
	// PollEvents updates in with this frame's input and appends surface
	// events to dst.
	PollEvents(in *InputState, dst []Event) []Event
	// LoadTexture decodes and uploads the image at path. Failures wrap
	// ErrAssetLoad.
	LoadTexture(path string) (TextureID, error)
	// Resize reconfigures the surface.
	Resize(width, height int) error
	// Submit draws one frame. The batch must not be retained after return.
	// A recoverable surface loss wraps ErrBackendTransient.
	Submit(batch *SpriteBatch) error
	// WaitIdle blocks until submitted work has completed.
	WaitIdle() error
	// Release frees every backend resource. Called once, after WaitIdle.
	Release() error
}

// LoopDriver is implemented by backends that must own the OS main loop.
// RunLoop calls step once per frame until step returns an error; a step
// returning ErrTerminated ends the loop cleanly and RunLoop returns nil.
type LoopDriver interface {
	RunLoop(step func() error) error
}

// Screenshotter is implemented by backends that can capture the next frame.
type Screenshotter interface {
	Screenshot(label string)
}
