package jester

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// spriteField selects the Sprite.Rect component a tween writes.
type spriteField uint8

const (
	fieldX spriteField = iota
	fieldY
	fieldWidth
	fieldHeight
)

func (f spriteField) get(s *Sprite) float64 {
	switch f {
	case fieldX:
		return s.Rect.X
	case fieldY:
		return s.Rect.Y
	case fieldWidth:
		return s.Rect.Width
	default:
		return s.Rect.Height
	}
}

func (f spriteField) set(s *Sprite, v float64) {
	switch f {
	case fieldX:
		s.Rect.X = v
	case fieldY:
		s.Rect.Y = v
	case fieldWidth:
		s.Rect.Width = nonNegative(v)
	default:
		s.Rect.Height = nonNegative(v)
	}
}

// TweenGroup animates up to 4 rect fields of one pooled sprite. The sprite is
// resolved through its EntityId on every Update, so the group stops by itself
// once the entity is despawned.
//
// There is no global animation manager. Scenes call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	fields [4]spriteField
	count  int
	pool   *EntityPool
	target EntityId
	Done   bool
}

// Update advances all tweens by dt seconds and writes the values to the
// sprite. If the entity is gone, Done is set and nothing is written.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	s, ok := g.pool.SpriteMut(g.target)
	if !ok {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.fields[i].set(s, float64(val))
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// Target returns the animated entity.
func (g *TweenGroup) Target() EntityId {
	return g.target
}

func newTweenGroup(pool *EntityPool, id EntityId, duration float32, fn ease.TweenFunc, fields []spriteField, to []float64) *TweenGroup {
	g := &TweenGroup{pool: pool, target: id}
	s, ok := pool.SpriteMut(id)
	if !ok {
		g.Done = true
		return g
	}
	if fn == nil {
		fn = ease.Linear
	}
	for i, f := range fields {
		g.tweens[i] = gween.New(float32(f.get(s)), float32(to[i]), duration, fn)
		g.fields[i] = f
	}
	g.count = len(fields)
	return g
}

// TweenPosition animates the sprite's Rect.X and Rect.Y to (toX, toY) over
// duration seconds. A nil fn is linear.
func TweenPosition(pool *EntityPool, id EntityId, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(pool, id, duration, fn,
		[]spriteField{fieldX, fieldY}, []float64{toX, toY})
}

// TweenSize animates the sprite's width and height.
func TweenSize(pool *EntityPool, id EntityId, toW, toH float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(pool, id, duration, fn,
		[]spriteField{fieldWidth, fieldHeight}, []float64{toW, toH})
}

// TweenRect animates all four rect components to r.
func TweenRect(pool *EntityPool, id EntityId, r Rect, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(pool, id, duration, fn,
		[]spriteField{fieldX, fieldY, fieldWidth, fieldHeight},
		[]float64{r.X, r.Y, r.Width, r.Height})
}
