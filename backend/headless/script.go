package headless

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/jester"
)

// Step is a single action in an input script. Each step takes one frame;
// "wait" takes Frames frames.
type Step struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Key    string  `json:"key,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`

	key ebiten.Key
}

// scriptFile is the top-level JSON structure for an input script.
type scriptFile struct {
	Steps []Step `json:"steps"`
}

// Script replays keyboard, mouse, and surface events frame by frame.
//
// Actions:
//
//	{"action": "press", "key": "Space"}           key down this frame, up the next
//	{"action": "keydown", "key": "Left"}          key held until keyup
//	{"action": "keyup", "key": "Left"}
//	{"action": "click", "x": 100, "y": 200}       left button down here, up the next frame
//	{"action": "move", "x": 100, "y": 200}
//	{"action": "resize", "width": 640, "height": 480}
//	{"action": "screenshot", "label": "title"}
//	{"action": "wait", "frames": 30}
//	{"action": "close"}
type Script struct {
	steps     []Step
	cursor    int
	waitCount int
	done      bool

	releaseKeys  []ebiten.Key
	releaseMouse bool
}

// LoadScript parses a JSON input script.
func LoadScript(jsonData []byte) (*Script, error) {
	var file scriptFile
	if err := json.Unmarshal(jsonData, &file); err != nil {
		return nil, fmt.Errorf("headless: parse input script: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("headless: parse input script: no steps")
	}
	for i := range file.Steps {
		if err := file.Steps[i].validate(); err != nil {
			return nil, fmt.Errorf("headless: input script step %d: %w", i, err)
		}
	}
	return &Script{steps: file.Steps}, nil
}

// LoadScriptFile reads and parses a JSON input script.
func LoadScriptFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("headless: read input script: %w", err)
	}
	return LoadScript(data)
}

func (st *Step) validate() error {
	switch st.Action {
	case "press", "keydown", "keyup":
		if err := st.key.UnmarshalText([]byte(st.Key)); err != nil {
			return fmt.Errorf("key %q: %w", st.Key, err)
		}
	case "resize":
		if st.Width <= 0 || st.Height <= 0 {
			return fmt.Errorf("resize to %dx%d", st.Width, st.Height)
		}
	case "click", "move", "screenshot", "wait", "close":
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

// Done reports whether every step has been executed.
func (s *Script) Done() bool {
	return s.done
}

// step advances the script by one frame, writing input into in and
// appending surface events to dst.
func (s *Script) step(b *Backend, in *jester.InputState, dst []jester.Event) []jester.Event {
	for _, k := range s.releaseKeys {
		in.SetKeyDown(k, false)
	}
	s.releaseKeys = s.releaseKeys[:0]
	if s.releaseMouse {
		in.SetMouseButton(ebiten.MouseButtonLeft, false)
		s.releaseMouse = false
	}

	if s.done {
		return dst
	}
	if s.waitCount > 0 {
		s.waitCount--
		s.finishIfDone()
		return dst
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return dst
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "press":
		in.SetKeyDown(st.key, true)
		s.releaseKeys = append(s.releaseKeys, st.key)
	case "keydown":
		in.SetKeyDown(st.key, true)
	case "keyup":
		in.SetKeyDown(st.key, false)
	case "click":
		in.SetMousePos(st.X, st.Y)
		in.SetMouseButton(ebiten.MouseButtonLeft, true)
		s.releaseMouse = true
	case "move":
		in.SetMousePos(st.X, st.Y)
	case "resize":
		dst = append(dst, jester.Event{Kind: jester.EventResize, Width: st.Width, Height: st.Height})
	case "screenshot":
		b.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "close":
		dst = append(dst, jester.Event{Kind: jester.EventClose})
	}

	s.finishIfDone()
	return dst
}

func (s *Script) finishIfDone() {
	if s.cursor >= len(s.steps) && s.waitCount == 0 && len(s.releaseKeys) == 0 && !s.releaseMouse {
		s.done = true
	}
}
