package jester

// FPSStats measures frame rate over windows of at least one second. FPS and
// FrameMS hold the result of the last completed window and are zero until the
// first window completes.
type FPSStats struct {
	frames  int
	elapsed float64

	FPS     float64
	FrameMS float64
}

// Tick records one frame that took dt seconds.
func (f *FPSStats) Tick(dt float64) {
	f.frames++
	f.elapsed += dt
	if f.elapsed < 1 {
		return
	}
	f.FPS = float64(f.frames) / f.elapsed
	f.FrameMS = 1000 / f.FPS
	f.frames = 0
	f.elapsed = 0
}
