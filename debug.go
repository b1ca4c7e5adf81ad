package jester

import "time"

// frameStats holds per-frame timing and draw metrics. Only populated when
// RunConfig.Debug is set.
type frameStats struct {
	t0         time.Time
	buildTime  time.Duration
	submitTime time.Duration
	instances  int
	groups     int
	dropped    int
}

func (s *frameStats) begin() {
	s.t0 = time.Now()
}

func (s *frameStats) built(b *SpriteBatch) {
	s.buildTime = time.Since(s.t0)
	s.instances = len(b.Instances)
	s.groups = len(b.Groups)
	s.dropped = b.Dropped
	s.t0 = time.Now()
}

func (s *frameStats) submitted() {
	s.submitTime = time.Since(s.t0)
}

// log writes the stats at debug level.
func (s *frameStats) log(frame uint64, fps FPSStats) {
	Logger().Debug("frame",
		"frame", frame,
		"build", s.buildTime,
		"submit", s.submitTime,
		"instances", s.instances,
		"draw_calls", s.groups,
		"dropped", s.dropped,
		"fps", fps.FPS,
		"frame_ms", fps.FrameMS,
	)
}
