package jester

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Vec2 is a 2D vector used for positions, offsets, and sizes throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world pixels. The coordinate system has
// its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// UVRect is a region of a texture in normalized texture space, with (0,0) at
// the top-left texel and (1,1) at the bottom-right.
type UVRect struct {
	U0, V0, U1, V1 float64
}

// FullUV covers the whole texture.
var FullUV = UVRect{0, 0, 1, 1}

// TextureID references a texture resident in the backend. The zero value means
// "no texture" and is never returned by a successful load.
type TextureID uint32

// PlaceholderTexture is the sentinel handed out when an asset fails to load.
// Every backend resolves it to a 1x1 magenta texture.
const PlaceholderTexture TextureID = 0xFFFFFFFF

// Key identifies a keyboard key. Backends report keys with Ebitengine's codes.
type Key = ebiten.Key

// MouseButton identifies a mouse button.
type MouseButton = ebiten.MouseButton

// clamp01 restricts v to [0, 1]. NaN becomes 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// nonNegative returns v, or 0 when v is negative or NaN.
func nonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
