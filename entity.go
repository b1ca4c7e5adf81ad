package jester

import "fmt"

// EntityId identifies one sprite across its lifetime. It combines a slot index
// with the slot's generation so a handle kept after Despawn never resolves to
// whatever is later stored in the same slot.
type EntityId struct {
	Index      uint32
	Generation uint32
}

// String implements fmt.Stringer.
func (id EntityId) String() string {
	return fmt.Sprintf("%d:%d", id.Index, id.Generation)
}

// IsZero reports whether id is the zero value. The pool never issues it.
func (id EntityId) IsZero() bool {
	return id.Generation == 0
}

// entitySlot is one cell of the pool. generation is bumped every time the slot
// is vacated, so a live slot's generation always matches the handle issued for it.
type entitySlot struct {
	generation uint32
	alive      bool
	sprite     Sprite
}

// EntityPool is a generational-index table of sprites. Storage grows as needed
// and freed slots are recycled in LIFO order.
type EntityPool struct {
	slots   []entitySlot
	freeIDs []uint32
	live    int
}

// NewEntityPool creates a pool with room for capacity sprites before it grows.
func NewEntityPool(capacity int) *EntityPool {
	if capacity < 0 {
		capacity = 0
	}
	return &EntityPool{
		slots:   make([]entitySlot, 0, capacity),
		freeIDs: make([]uint32, 0, capacity),
	}
}

// Spawn stores s and returns a fresh handle for it. A freed slot is reused
// when one is available; otherwise the pool grows. The sprite is normalized
// so its UVs are within [0, 1] and its size is non-negative.
func (p *EntityPool) Spawn(s Sprite) EntityId {
	s = s.normalized()

	var idx uint32
	if n := len(p.freeIDs); n > 0 {
		idx = p.freeIDs[n-1]
		p.freeIDs = p.freeIDs[:n-1]
	} else {
		p.slots = append(p.slots, entitySlot{generation: 1})
		idx = uint32(len(p.slots) - 1)
	}

	slot := &p.slots[idx]
	slot.alive = true
	slot.sprite = s
	p.live++
	return EntityId{Index: idx, Generation: slot.generation}
}

// Despawn removes the entity referenced by id. It returns false, and does
// nothing, when id is unknown or stale.
func (p *EntityPool) Despawn(id EntityId) bool {
	slot := p.lookup(id)
	if slot == nil {
		return false
	}
	p.vacate(id.Index)
	return true
}

// vacate frees the slot at idx and advances its generation.
func (p *EntityPool) vacate(idx uint32) {
	slot := &p.slots[idx]
	slot.alive = false
	slot.sprite = Sprite{}
	slot.generation++
	if slot.generation == 0 {
		// Wrapped after 2^32 reuses; skip the zero generation so the zero
		// EntityId stays invalid.
		slot.generation = 1
	}
	p.freeIDs = append(p.freeIDs, idx)
	p.live--
}

// Sprite returns a copy of the sprite referenced by id.
func (p *EntityPool) Sprite(id EntityId) (Sprite, bool) {
	slot := p.lookup(id)
	if slot == nil {
		return Sprite{}, false
	}
	return slot.sprite, true
}

// SpriteMut returns a pointer to the stored sprite for in-place mutation.
// The pointer is valid until the next Spawn, which may grow storage.
func (p *EntityPool) SpriteMut(id EntityId) (*Sprite, bool) {
	slot := p.lookup(id)
	if slot == nil {
		return nil, false
	}
	return &slot.sprite, true
}

// Alive reports whether id references a live entity.
func (p *EntityPool) Alive(id EntityId) bool {
	return p.lookup(id) != nil
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int {
	return p.live
}

// Each calls fn for every live entity in slot order. fn must not spawn or
// despawn.
func (p *EntityPool) Each(fn func(id EntityId, s *Sprite)) {
	for i := range p.slots {
		slot := &p.slots[i]
		if !slot.alive {
			continue
		}
		fn(EntityId{Index: uint32(i), Generation: slot.generation}, &slot.sprite)
	}
}

// Clear despawns every live entity. Outstanding handles become stale.
func (p *EntityPool) Clear() {
	for i := range p.slots {
		if p.slots[i].alive {
			p.vacate(uint32(i))
		}
	}
}

func (p *EntityPool) lookup(id EntityId) *entitySlot {
	if int(id.Index) >= len(p.slots) {
		return nil
	}
	slot := &p.slots[id.Index]
	if !slot.alive || slot.generation != id.Generation {
		return nil
	}
	return slot
}
