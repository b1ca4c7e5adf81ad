package jester

import "errors"

// Error taxonomy. Backends and the App wrap these with fmt.Errorf("...: %w")
// so callers can classify failures with errors.Is.
var (
	// ErrInitialization is returned by Run when the backend cannot start.
	// The App never enters the Running state in that case.
	ErrInitialization = errors.New("jester: initialization failed")

	// ErrAssetLoad reports a missing or undecodable asset. It is recoverable:
	// Ctx.LoadAsset logs it and hands out PlaceholderTexture.
	ErrAssetLoad = errors.New("jester: asset load failed")

	// ErrBackendTransient reports a presentation failure that a resize or
	// surface recreation can fix, such as an out-of-date swapchain.
	ErrBackendTransient = errors.New("jester: transient backend error")

	// ErrBackendFatal reports an unrecoverable backend failure such as a lost
	// device. Run shuts down and returns it.
	ErrBackendFatal = errors.New("jester: fatal backend error")

	// ErrInvalidParameter is returned for out-of-range arguments such as a
	// non-positive camera zoom.
	ErrInvalidParameter = errors.New("jester: invalid parameter")

	// ErrTerminated is returned by a frame step once the App has shut down.
	// Loop-owning backends stop their loop when they see it.
	ErrTerminated = errors.New("jester: terminated")
)
