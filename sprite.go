package jester

// Sprite is the renderable unit stored in the EntityPool.
type Sprite struct {
	// Rect is the sprite's position and size in world pixels.
	Rect Rect
	// UV selects the texture region drawn into Rect.
	UV UVRect
	// Texture is the backend texture the UVs refer to.
	Texture TextureID
}

// NewSprite builds a sprite from a rect, a UV region, and a texture.
func NewSprite(rect Rect, uv UVRect, tex TextureID) Sprite {
	return Sprite{Rect: rect, UV: uv, Texture: tex}.normalized()
}

// normalized clamps UVs into [0, 1] and negative or NaN sizes to 0.
func (s Sprite) normalized() Sprite {
	s.Rect.Width = nonNegative(s.Rect.Width)
	s.Rect.Height = nonNegative(s.Rect.Height)
	s.UV.U0 = clamp01(s.UV.U0)
	s.UV.V0 = clamp01(s.UV.V0)
	s.UV.U1 = clamp01(s.UV.U1)
	s.UV.V1 = clamp01(s.UV.V1)
	return s
}

// SpriteInstance is one packed per-instance record of the sprite draw. Its
// layout matches the instance buffer read by the vertex stage (40 bytes).
type SpriteInstance struct {
	PosSize  [4]float32 // x, y, width, height in world pixels
	UV       [4]float32 // u0, v0, u1, v1
	TexIndex uint32
	_        uint32
}

// SpriteInstanceSize is the byte stride of one SpriteInstance.
const SpriteInstanceSize = 40

// DrawGroup is a contiguous run of instances sharing one texture.
type DrawGroup struct {
	Texture TextureID
	First   uint32
	Count   uint32
}

// SpriteBatch is the per-frame draw data handed to the backend. It is rebuilt
// from scratch every frame and must not be retained by the backend after
// Submit returns.
type SpriteBatch struct {
	Instances []SpriteInstance
	Groups    []DrawGroup
	Uniforms  CameraUniforms
	// Dropped counts sprites skipped because their texture was invalid.
	Dropped int
}

// Empty reports whether the batch has nothing to draw. Backends skip the draw
// call entirely for an empty batch.
func (b *SpriteBatch) Empty() bool {
	return b == nil || len(b.Instances) == 0
}

func packInstance(s *Sprite) SpriteInstance {
	s2 := s.normalized()
	return SpriteInstance{
		PosSize:  [4]float32{float32(s2.Rect.X), float32(s2.Rect.Y), float32(s2.Rect.Width), float32(s2.Rect.Height)},
		UV:       [4]float32{float32(s2.UV.U0), float32(s2.UV.V0), float32(s2.UV.U1), float32(s2.UV.V1)},
		TexIndex: uint32(s2.Texture),
	}
}
