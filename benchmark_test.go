package jester

import (
	"math"
	"testing"
)

// setupBenchPool creates a pool with n 32x32 sprites laid out on a grid,
// cycling through that many textures.
func setupBenchPool(n, textures int) (*EntityPool, textureSet) {
	pool := NewEntityPool(n)
	set := textureSet{}
	for t := 1; t <= textures; t++ {
		set[TextureID(t)] = true
	}
	for i := 0; i < n; i++ {
		pool.Spawn(NewSprite(Rect{
			X:      float64(i%100) * 40,
			Y:      float64(i/100) * 40,
			Width:  32,
			Height: 32,
		}, FullUV, TextureID(i%textures+1)))
	}
	return pool, set
}

// --- Batch Build Benchmarks ---

func BenchmarkBuild_10000Sprites_OneTexture(b *testing.B) {
	pool, set := setupBenchPool(10000, 1)
	batcher := NewBatcher(set, Capabilities{})
	cam := NewCamera(1280, 720)
	viewport := Vec2{X: 1280, Y: 720}

	// Warm up: first build sizes the instance and sort buffers.
	batcher.Build(pool, &cam, viewport)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		batcher.Build(pool, &cam, viewport)
	}
}

func BenchmarkBuild_10000Sprites_16Textures(b *testing.B) {
	pool, set := setupBenchPool(10000, 16)
	batcher := NewBatcher(set, Capabilities{})
	cam := NewCamera(1280, 720)
	viewport := Vec2{X: 1280, Y: 720}

	batcher.Build(pool, &cam, viewport) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		batcher.Build(pool, &cam, viewport)
	}
}

func BenchmarkBuild_10000Sprites_Bindless(b *testing.B) {
	pool, set := setupBenchPool(10000, 16)
	batcher := NewBatcher(set, Capabilities{BindlessTextures: true})
	cam := NewCamera(1280, 720)
	viewport := Vec2{X: 1280, Y: 720}

	batcher.Build(pool, &cam, viewport)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		batcher.Build(pool, &cam, viewport)
	}
}

func BenchmarkBuild_10000Sprites_Moving(b *testing.B) {
	pool, set := setupBenchPool(10000, 4)
	batcher := NewBatcher(set, Capabilities{})
	cam := NewCamera(1280, 720)
	viewport := Vec2{X: 1280, Y: 720}

	batcher.Build(pool, &cam, viewport)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		phase := float64(i) * 0.01
		pool.Each(func(id EntityId, s *Sprite) {
			s.Rect.X += math.Cos(phase + float64(id.Index))
			s.Rect.Y += math.Sin(phase + float64(id.Index))
		})
		batcher.Build(pool, &cam, viewport)
	}
}

// --- Entity Pool Benchmarks ---

func BenchmarkSpawnDespawnChurn(b *testing.B) {
	pool := NewEntityPool(1024)
	ids := make([]EntityId, 0, 1024)
	for i := 0; i < 1024; i++ {
		ids = append(ids, pool.Spawn(NewSprite(Rect{Width: 1, Height: 1}, FullUV, 1)))
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		k := i % len(ids)
		pool.Despawn(ids[k])
		ids[k] = pool.Spawn(NewSprite(Rect{Width: 1, Height: 1}, FullUV, 1))
	}
}

func BenchmarkSpriteLookup(b *testing.B) {
	pool, _ := setupBenchPool(10000, 1)
	var ids []EntityId
	pool.Each(func(id EntityId, _ *Sprite) { ids = append(ids, id) })

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, ok := pool.SpriteMut(ids[i%len(ids)]); !ok {
			b.Fatal("lookup failed")
		}
	}
}
