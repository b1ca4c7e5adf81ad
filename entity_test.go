package jester

import "testing"

func testSprite(x, y float64) Sprite {
	return NewSprite(Rect{X: x, Y: y, Width: 16, Height: 16}, FullUV, 1)
}

func TestSpawnIssuesDistinctIDs(t *testing.T) {
	p := NewEntityPool(4)
	a := p.Spawn(testSprite(0, 0))
	b := p.Spawn(testSprite(1, 1))
	if a == b {
		t.Fatalf("ids equal: %v", a)
	}
	if a.IsZero() || b.IsZero() {
		t.Error("pool issued the zero EntityId")
	}
	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2", p.Len())
	}
}

func TestDespawnThenLookupNotFound(t *testing.T) {
	p := NewEntityPool(0)
	id := p.Spawn(NewSprite(Rect{X: 400, Y: 300, Width: 128, Height: 128}, FullUV, 1))

	if !p.Despawn(id) {
		t.Fatal("Despawn = false, want true")
	}
	if _, ok := p.Sprite(id); ok {
		t.Error("Sprite found after despawn")
	}
	if p.Despawn(id) {
		t.Error("second Despawn = true, want false")
	}

	b := NewBatcher(nil, Capabilities{})
	batch := b.Build(p, nil, Vec2{X: 800, Y: 600})
	if len(batch.Instances) != 0 {
		t.Errorf("instances = %d, want 0", len(batch.Instances))
	}
}

func TestStaleIDAfterSlotReuse(t *testing.T) {
	p := NewEntityPool(0)
	old := p.Spawn(testSprite(0, 0))
	p.Despawn(old)
	fresh := p.Spawn(testSprite(5, 5))

	if fresh.Index != old.Index {
		t.Fatalf("slot not reused: old %v, fresh %v", old, fresh)
	}
	if fresh.Generation == old.Generation {
		t.Errorf("generation not advanced: %d", fresh.Generation)
	}
	if _, ok := p.SpriteMut(old); ok {
		t.Error("SpriteMut resolved a stale id")
	}
	if p.Alive(old) {
		t.Error("Alive(old) = true")
	}
	s, ok := p.Sprite(fresh)
	if !ok || s.Rect.X != 5 {
		t.Errorf("Sprite(fresh) = %+v, %v", s, ok)
	}
}

func TestFreeListIsLIFO(t *testing.T) {
	p := NewEntityPool(0)
	a := p.Spawn(testSprite(0, 0))
	b := p.Spawn(testSprite(0, 0))
	p.Despawn(a)
	p.Despawn(b)

	if got := p.Spawn(testSprite(0, 0)); got.Index != b.Index {
		t.Errorf("first reuse index = %d, want %d", got.Index, b.Index)
	}
	if got := p.Spawn(testSprite(0, 0)); got.Index != a.Index {
		t.Errorf("second reuse index = %d, want %d", got.Index, a.Index)
	}
}

func TestNoPairIssuedTwice(t *testing.T) {
	p := NewEntityPool(0)
	seen := make(map[EntityId]bool)
	var live []EntityId

	// Deterministic churn: spawn 3, despawn the oldest, repeat.
	for round := 0; round < 200; round++ {
		for i := 0; i < 3; i++ {
			id := p.Spawn(testSprite(float64(round), float64(i)))
			if seen[id] {
				t.Fatalf("round %d: id %v issued twice", round, id)
			}
			seen[id] = true
			live = append(live, id)
		}
		for i := 0; i < 2; i++ {
			p.Despawn(live[0])
			live = live[1:]
		}
	}
	if p.Len() != len(live) {
		t.Errorf("Len = %d, want %d", p.Len(), len(live))
	}
	for _, id := range live {
		if !p.Alive(id) {
			t.Errorf("%v not alive", id)
		}
	}
}

func TestSpawnNormalizesSprite(t *testing.T) {
	p := NewEntityPool(0)
	id := p.Spawn(Sprite{
		Rect:    Rect{Width: -5, Height: 10},
		UV:      UVRect{U0: -0.5, V0: 0.25, U1: 1.5, V1: 1},
		Texture: 1,
	})
	s, _ := p.Sprite(id)
	if s.Rect.Width != 0 {
		t.Errorf("Width = %f, want 0", s.Rect.Width)
	}
	if s.UV.U0 != 0 || s.UV.U1 != 1 || s.UV.V0 != 0.25 {
		t.Errorf("UV = %+v, want clamped", s.UV)
	}
}

func TestSpriteMutWritesThrough(t *testing.T) {
	p := NewEntityPool(0)
	id := p.Spawn(testSprite(0, 0))
	s, ok := p.SpriteMut(id)
	if !ok {
		t.Fatal("SpriteMut not found")
	}
	s.Rect.X = 42
	got, _ := p.Sprite(id)
	if got.Rect.X != 42 {
		t.Errorf("X = %f, want 42", got.Rect.X)
	}
}

func TestEachVisitsSlotOrder(t *testing.T) {
	p := NewEntityPool(0)
	ids := []EntityId{
		p.Spawn(testSprite(0, 0)),
		p.Spawn(testSprite(1, 0)),
		p.Spawn(testSprite(2, 0)),
	}
	p.Despawn(ids[1])

	var visited []EntityId
	p.Each(func(id EntityId, _ *Sprite) { visited = append(visited, id) })
	if len(visited) != 2 || visited[0] != ids[0] || visited[1] != ids[2] {
		t.Errorf("visited = %v, want [%v %v]", visited, ids[0], ids[2])
	}
}

func TestClearInvalidatesHandles(t *testing.T) {
	p := NewEntityPool(0)
	a := p.Spawn(testSprite(0, 0))
	b := p.Spawn(testSprite(0, 0))
	p.Clear()
	if p.Len() != 0 {
		t.Errorf("Len = %d, want 0", p.Len())
	}
	if p.Alive(a) || p.Alive(b) {
		t.Error("handles alive after Clear")
	}
	c := p.Spawn(testSprite(0, 0))
	if c == a || c == b {
		t.Errorf("Clear reissued %v", c)
	}
}

func TestUnknownIDIsNoop(t *testing.T) {
	p := NewEntityPool(0)
	if p.Despawn(EntityId{Index: 99, Generation: 1}) {
		t.Error("Despawn of unknown id = true")
	}
	if p.Despawn(EntityId{}) {
		t.Error("Despawn of zero id = true")
	}
}

func TestEntityIdString(t *testing.T) {
	if got := (EntityId{Index: 3, Generation: 7}).String(); got != "3:7" {
		t.Errorf("String = %q, want 3:7", got)
	}
}
