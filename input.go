package jester

// InputState is the per-frame input snapshot. Backends write it from
// PollEvents; scenes read it through Ctx.Input.
type InputState struct {
	keys         map[Key]bool
	justPressed  map[Key]bool
	justReleased map[Key]bool

	mouse         map[MouseButton]bool
	mouseJustDown map[MouseButton]bool
	mouseJustUp   map[MouseButton]bool

	mouseX, mouseY float64
}

// NewInputState creates an empty snapshot.
func NewInputState() *InputState {
	return &InputState{
		keys:          make(map[Key]bool),
		justPressed:   make(map[Key]bool),
		justReleased:  make(map[Key]bool),
		mouse:         make(map[MouseButton]bool),
		mouseJustDown: make(map[MouseButton]bool),
		mouseJustUp:   make(map[MouseButton]bool),
	}
}

// BeginFrame clears the edge-triggered state. Held keys and buttons persist.
func (in *InputState) BeginFrame() {
	clear(in.justPressed)
	clear(in.justReleased)
	clear(in.mouseJustDown)
	clear(in.mouseJustUp)
}

// SetKeyDown records a key transition. Setting the state a key is already in
// produces no edge.
func (in *InputState) SetKeyDown(k Key, down bool) {
	if in.keys[k] == down {
		return
	}
	if down {
		in.keys[k] = true
		in.justPressed[k] = true
	} else {
		delete(in.keys, k)
		in.justReleased[k] = true
	}
}

// SetMouseButton records a mouse button transition.
func (in *InputState) SetMouseButton(b MouseButton, down bool) {
	if in.mouse[b] == down {
		return
	}
	if down {
		in.mouse[b] = true
		in.mouseJustDown[b] = true
	} else {
		delete(in.mouse, b)
		in.mouseJustUp[b] = true
	}
}

// SetMousePos records the cursor position in surface pixels.
func (in *InputState) SetMousePos(x, y float64) {
	in.mouseX, in.mouseY = x, y
}

// Pressed reports whether k is held.
func (in *InputState) Pressed(k Key) bool { return in.keys[k] }

// JustPressed reports whether k went down this frame.
func (in *InputState) JustPressed(k Key) bool { return in.justPressed[k] }

// JustReleased reports whether k went up this frame.
func (in *InputState) JustReleased(k Key) bool { return in.justReleased[k] }

// MousePressed reports whether b is held.
func (in *InputState) MousePressed(b MouseButton) bool { return in.mouse[b] }

// MouseJustPressed reports whether b went down this frame.
func (in *InputState) MouseJustPressed(b MouseButton) bool { return in.mouseJustDown[b] }

// MouseJustReleased reports whether b went up this frame.
func (in *InputState) MouseJustReleased(b MouseButton) bool { return in.mouseJustUp[b] }

// MousePos returns the cursor position in surface pixels.
func (in *InputState) MousePos() Vec2 {
	return Vec2{X: in.mouseX, Y: in.mouseY}
}

// PressedKeys appends every held key to dst.
func (in *InputState) PressedKeys(dst []Key) []Key {
	for k := range in.keys {
		dst = append(dst, k)
	}
	return dst
}
