package jester

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// AtlasRegion is a named sub-image of an atlas page, ready to be put on a sprite.
type AtlasRegion struct {
	// Texture is the page the region lives on.
	Texture TextureID
	// UV is the region in normalized page coordinates.
	UV UVRect
	// Width and Height are the region's size in pixels.
	Width, Height float64
	// Rotated is true if the packer stored the region rotated 90 degrees
	// clockwise. UV covers the frame rect as stored in the page.
	Rotated bool
}

// Sprite returns a sprite showing the region at (x, y) with its pixel size.
func (r AtlasRegion) Sprite(x, y float64) Sprite {
	return NewSprite(Rect{X: x, Y: y, Width: r.Width, Height: r.Height}, r.UV, r.Texture)
}

// Atlas maps region names to UV rectangles on one or more page textures.
type Atlas struct {
	// Pages holds the page textures indexed by page number.
	Pages   []TextureID
	regions map[string]AtlasRegion
}

// Region returns the region for name. An unknown name logs a warning and
// yields the whole placeholder texture.
func (a *Atlas) Region(name string) AtlasRegion {
	if r, ok := a.regions[name]; ok {
		return r
	}
	Logger().Warn("atlas region not found, using placeholder", "region", name)
	return AtlasRegion{Texture: PlaceholderTexture, UV: FullUV, Width: 1, Height: 1}
}

// Lookup returns the region for name without a fallback.
func (a *Atlas) Lookup(name string) (AtlasRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Names returns the region names in sorted order.
func (a *Atlas) Names() []string {
	return slices.Sorted(maps.Keys(a.regions))
}

// Len returns the number of regions.
func (a *Atlas) Len() int {
	return len(a.regions)
}

// LoadAtlas parses TexturePacker JSON data and binds its pages to the given
// textures, in page order. Supports both the hash format (single "frames"
// object with "meta.size") and the array format ("textures" array with
// per-page "size" and frame lists).
func LoadAtlas(jsonData []byte, pages []TextureID) (*Atlas, error) {
	doc, err := parseAtlasJSON(jsonData)
	if err != nil {
		return nil, err
	}
	if len(pages) < len(doc) {
		return nil, fmt.Errorf("jester: atlas has %d pages, %d textures given: %w",
			len(doc), len(pages), ErrInvalidParameter)
	}

	atlas := &Atlas{Pages: pages, regions: make(map[string]AtlasRegion)}
	for i, page := range doc {
		if page.Size.W <= 0 || page.Size.H <= 0 {
			return nil, fmt.Errorf("jester: atlas page %d has no size: %w", i, ErrInvalidParameter)
		}
		for name, f := range page.Frames {
			atlas.regions[name] = frameToRegion(f, page.Size, pages[i])
		}
	}
	return atlas, nil
}

// LoadAtlasFile reads a TexturePacker JSON file and loads its page images,
// resolved relative to the JSON file, through the backend.
func (a *App) LoadAtlasFile(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	doc, err := parseAtlasJSON(data)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	pages := make([]TextureID, len(doc))
	for i, page := range doc {
		if page.Image == "" {
			return nil, fmt.Errorf("%w: atlas %s page %d has no image", ErrAssetLoad, path, i)
		}
		id, err := a.LoadAsset(filepath.Join(dir, page.Image))
		if err != nil {
			return nil, err
		}
		pages[i] = id
	}
	return LoadAtlas(data, pages)
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame   jsonRect `json:"frame"`
	Rotated bool     `json:"rotated"`
}

type jsonPage struct {
	Image  string               `json:"image"`
	Size   jsonSize             `json:"size"`
	Frames map[string]jsonFrame `json:"frames"`
}

// parseAtlasJSON normalizes both TexturePacker formats into a page list.
func parseAtlasJSON(data []byte) ([]jsonPage, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     struct {
			Image string   `json:"image"`
			Size  jsonSize `json:"size"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("jester: failed to parse atlas JSON: %w", err)
	}

	switch {
	case probe.Textures != nil:
		var pages []jsonPage
		if err := json.Unmarshal(probe.Textures, &pages); err != nil {
			return nil, fmt.Errorf("jester: failed to parse atlas textures array: %w", err)
		}
		return pages, nil
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("jester: failed to parse atlas frames: %w", err)
		}
		return []jsonPage{{Image: probe.Meta.Image, Size: probe.Meta.Size, Frames: frames}}, nil
	default:
		return nil, fmt.Errorf("jester: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
}

func frameToRegion(f jsonFrame, size jsonSize, tex TextureID) AtlasRegion {
	w, h := float64(size.W), float64(size.H)
	fw, fh := f.Frame.W, f.Frame.H
	return AtlasRegion{
		Texture: tex,
		UV: UVRect{
			U0: clamp01(float64(f.Frame.X) / w),
			V0: clamp01(float64(f.Frame.Y) / h),
			U1: clamp01(float64(f.Frame.X+fw) / w),
			V1: clamp01(float64(f.Frame.Y+fh) / h),
		},
		Width:   float64(f.Frame.W),
		Height:  float64(f.Frame.H),
		Rotated: f.Rotated,
	}
}
