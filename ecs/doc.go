// Package ecs mirrors sprites owned by a [Donburi] world into a jester
// EntityPool.
//
// Attach the [Sprite] component to donburi entities and call
// [SpriteSync.Update] once per frame from a scene's Update. Entities gain a
// pooled sprite on their first sync, have it overwritten on every sync after
// that, and lose it once they are removed from the world or drop the
// component. Each such removal is published as a [SpriteDespawned] event.
//
// Usage:
//
//	sync := ecs.NewSpriteSync(world, ctx.Pool)
//	e := world.Create(ecs.Sprite)
//	ecs.Sprite.SetValue(world.Entry(e), jester.NewSprite(rect, jester.FullUV, tex))
//	sync.Update()
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
