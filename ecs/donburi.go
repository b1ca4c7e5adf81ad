package ecs

import (
	"github.com/phanxgames/jester"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// Sprite is the donburi component holding an entity's sprite.
var Sprite = donburi.NewComponentType[jester.Sprite]()

// SpriteDespawned reports a pooled sprite removed because its donburi
// entity is gone or no longer has a Sprite.
type SpriteDespawned struct {
	Entity donburi.Entity
	Handle jester.EntityId
}

// SpriteDespawnedEvent is published during SpriteSync.Update. Subscribe to
// it and call ProcessEvents to receive removals.
var SpriteDespawnedEvent = events.NewEventType[SpriteDespawned]()

// SpriteSync keeps a jester.EntityPool in step with a donburi world.
type SpriteSync struct {
	world   donburi.World
	pool    *jester.EntityPool
	query   *donburi.Query
	handles map[donburi.Entity]jester.EntityId
	seen    map[donburi.Entity]struct{}
}

// NewSpriteSync creates a bridge from world to pool.
func NewSpriteSync(world donburi.World, pool *jester.EntityPool) *SpriteSync {
	return &SpriteSync{
		world:   world,
		pool:    pool,
		query:   donburi.NewQuery(filter.Contains(Sprite)),
		handles: make(map[donburi.Entity]jester.EntityId),
		seen:    make(map[donburi.Entity]struct{}),
	}
}

// Update copies every Sprite component into the pool and despawns pooled
// sprites whose entity no longer carries one.
func (s *SpriteSync) Update() {
	clear(s.seen)
	s.query.Each(s.world, func(entry *donburi.Entry) {
		e := entry.Entity()
		c := Sprite.Get(entry)
		sp := jester.NewSprite(c.Rect, c.UV, c.Texture)
		s.seen[e] = struct{}{}

		if id, ok := s.handles[e]; ok {
			if dst, ok := s.pool.SpriteMut(id); ok {
				*dst = sp
				return
			}
		}
		s.handles[e] = s.pool.Spawn(sp)
	})

	for e, id := range s.handles {
		if _, ok := s.seen[e]; ok {
			continue
		}
		delete(s.handles, e)
		s.pool.Despawn(id)
		SpriteDespawnedEvent.Publish(s.world, SpriteDespawned{Entity: e, Handle: id})
	}
}

// Handle returns the pooled sprite mirroring e.
func (s *SpriteSync) Handle(e donburi.Entity) (jester.EntityId, bool) {
	id, ok := s.handles[e]
	if !ok || !s.pool.Alive(id) {
		return jester.EntityId{}, false
	}
	return id, true
}

// Len returns the number of mirrored entities.
func (s *SpriteSync) Len() int {
	return len(s.handles)
}

// Clear despawns every mirrored sprite without publishing events. Scenes
// call it from Stop.
func (s *SpriteSync) Clear() {
	for e, id := range s.handles {
		s.pool.Despawn(id)
		delete(s.handles, e)
	}
}
