package jester

// TextureSet reports which texture handles are resident in the backend.
type TextureSet interface {
	HasTexture(id TextureID) bool
}

// Batcher turns the pool's live sprites into a SpriteBatch. The batch and its
// scratch buffers are reused across frames: zero allocations once the buffers
// reach their high-water mark.
type Batcher struct {
	textures TextureSet
	grouped  bool

	batch   SpriteBatch
	sortBuf []SpriteInstance
	warned  map[TextureID]struct{}
}

// NewBatcher creates a batcher that validates textures against textures (nil
// accepts every non-zero id). When the backend lacks bindless texture access
// the instances are grouped by texture so each group is one draw call.
func NewBatcher(textures TextureSet, caps Capabilities) *Batcher {
	return &Batcher{
		textures: textures,
		grouped:  !caps.BindlessTextures,
		warned:   make(map[TextureID]struct{}),
	}
}

// Build packs one instance per live sprite, in slot order, and attaches the
// camera transform for the given viewport. Sprites whose texture is zero or
// not resident are dropped with a warning. A nil camera renders with zoom 1
// and no offset.
//
// The returned batch is owned by the Batcher and overwritten by the next Build.
func (b *Batcher) Build(pool *EntityPool, cam *Camera, viewport Vec2) *SpriteBatch {
	batch := &b.batch
	batch.Instances = batch.Instances[:0]
	batch.Groups = batch.Groups[:0]
	batch.Dropped = 0

	if cam == nil {
		def := NewCamera(viewport.X, viewport.Y)
		cam = &def
	}
	batch.Uniforms = cam.Transform(viewport)

	if pool != nil {
		pool.Each(func(id EntityId, s *Sprite) {
			if !b.textureValid(s.Texture) {
				batch.Dropped++
				b.warnInvalid(id, s.Texture)
				return
			}
			batch.Instances = append(batch.Instances, packInstance(s))
		})
	}

	if len(batch.Instances) == 0 {
		return batch
	}

	if !b.grouped {
		batch.Groups = append(batch.Groups, DrawGroup{First: 0, Count: uint32(len(batch.Instances))})
		return batch
	}

	b.mergeSort()
	b.buildGroups()
	return batch
}

func (b *Batcher) textureValid(tex TextureID) bool {
	if tex == 0 {
		return false
	}
	if b.textures == nil {
		return true
	}
	return b.textures.HasTexture(tex)
}

// warnInvalid logs a dropped sprite once per texture id.
func (b *Batcher) warnInvalid(id EntityId, tex TextureID) {
	if _, seen := b.warned[tex]; seen {
		return
	}
	b.warned[tex] = struct{}{}
	Logger().Warn("sprite dropped from batch: invalid texture",
		"entity", id.String(), "texture", uint32(tex))
}

// buildGroups splits the sorted instances into runs of equal texture.
func (b *Batcher) buildGroups() {
	batch := &b.batch
	start := 0
	for i := 1; i <= len(batch.Instances); i++ {
		if i < len(batch.Instances) && batch.Instances[i].TexIndex == batch.Instances[start].TexIndex {
			continue
		}
		batch.Groups = append(batch.Groups, DrawGroup{
			Texture: TextureID(batch.Instances[start].TexIndex),
			First:   uint32(start),
			Count:   uint32(i - start),
		})
		start = i
	}
}

// --- Merge sort ---

// mergeSort stable-sorts the instances by texture using b.sortBuf as scratch
// space. Bottom-up merge sort keeps slot order within each texture and does
// not allocate after the sort buffer reaches its high-water mark.
func (b *Batcher) mergeSort() {
	insts := b.batch.Instances
	n := len(insts)
	if n <= 1 {
		return
	}
	if cap(b.sortBuf) < n {
		b.sortBuf = make([]SpriteInstance, n)
	}
	b.sortBuf = b.sortBuf[:n]

	src := insts
	dst := b.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(src, dst, lo, mid, hi)
		}
		src, dst = dst, src
		swapped = !swapped
	}

	if swapped {
		copy(insts, b.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
// Using <= keeps the merge stable.
func mergeRun(src, dst []SpriteInstance, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if src[i].TexIndex <= src[j].TexIndex {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}
