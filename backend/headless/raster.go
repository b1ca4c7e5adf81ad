package headless

import (
	"image"
	"image/color"
	"math"

	"github.com/phanxgames/jester"
	"github.com/phanxgames/jester/shader"
)

var magenta = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// rasterize draws the batch into a straight-alpha image the size of the
// surface, group by group, with nearest-neighbour sampling and source-over
// blending. Quads are axis-aligned so each instance fills the pixel centers
// inside its transformed corners.
func (b *Backend) rasterize(batch *jester.SpriteBatch) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	if batch.Empty() || b.width <= 0 || b.height <= 0 {
		return img
	}

	fw, fh := float32(b.width), float32(b.height)
	for _, g := range batch.Groups {
		for i := g.First; i < g.First+g.Count; i++ {
			inst := batch.Instances[i]
			q := shader.Quad(batch.Uniforms, inst)

			// Corner 0 is top-left, corner 3 bottom-right.
			x0, y0 := ndcToPixel(q[0].NDC, fw, fh)
			x1, y1 := ndcToPixel(q[3].NDC, fw, fh)
			if x1 <= x0 || y1 <= y0 {
				continue
			}
			tex := b.texture(jester.TextureID(inst.TexIndex))

			px0 := max(int(math.Ceil(float64(x0)-0.5)), 0)
			py0 := max(int(math.Ceil(float64(y0)-0.5)), 0)
			px1 := min(int(math.Ceil(float64(x1)-0.5)), b.width)
			py1 := min(int(math.Ceil(float64(y1)-0.5)), b.height)

			for py := py0; py < py1; py++ {
				ty := (float32(py) + 0.5 - y0) / (y1 - y0)
				v := q[0].UV[1] + (q[3].UV[1]-q[0].UV[1])*ty
				for px := px0; px < px1; px++ {
					tx := (float32(px) + 0.5 - x0) / (x1 - x0)
					u := q[0].UV[0] + (q[3].UV[0]-q[0].UV[0])*tx
					blend(img, px, py, tex.sample(u, v))
				}
			}
		}
	}
	return img
}

// ndcToPixel maps clip space back to surface pixels, Y down.
func ndcToPixel(ndc [2]float32, w, h float32) (float32, float32) {
	return (ndc[0] + 1) / 2 * w, (1 - ndc[1]) / 2 * h
}

// sample returns the texel nearest to (u, v). A texture without pixels
// samples as magenta.
func (t *texture) sample(u, v float32) color.NRGBA {
	if t == nil || t.img == nil {
		return magenta
	}
	bounds := t.img.Bounds()
	x := bounds.Min.X + clampInt(int(u*float32(bounds.Dx())), 0, bounds.Dx()-1)
	y := bounds.Min.Y + clampInt(int(v*float32(bounds.Dy())), 0, bounds.Dy()-1)
	return color.NRGBAModel.Convert(t.img.At(x, y)).(color.NRGBA)
}

// blend composites src over the pixel at (x, y).
func blend(dst *image.NRGBA, x, y int, src color.NRGBA) {
	if src.A == 0 {
		return
	}
	i := dst.PixOffset(x, y)
	if src.A == 255 {
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = src.R, src.G, src.B, 255
		return
	}
	sa := float64(src.A) / 255
	da := float64(dst.Pix[i+3]) / 255
	oa := sa + da*(1-sa)
	mixc := func(s, d uint8) uint8 {
		return uint8(math.Round((float64(s)*sa + float64(d)*da*(1-sa)) / oa))
	}
	dst.Pix[i] = mixc(src.R, dst.Pix[i])
	dst.Pix[i+1] = mixc(src.G, dst.Pix[i+1])
	dst.Pix[i+2] = mixc(src.B, dst.Pix[i+2])
	dst.Pix[i+3] = uint8(math.Round(oa * 255))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
