package ebitenbackend

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/jester"
	"github.com/phanxgames/jester/shader"
)

// appendQuad appends 4 vertices and 6 indices for one sprite instance.
// Positions go through the same vertex stage as the GPU shader and are mapped
// from NDC back to screen pixels; UVs are scaled to source pixels. Indices
// are relative to first, the group's first vertex.
func appendQuad(verts []ebiten.Vertex, inds []uint32, first int, u jester.CameraUniforms,
	inst jester.SpriteInstance, texW, texH, screenW, screenH float32) ([]ebiten.Vertex, []uint32) {
	base := uint32(len(verts) - first)
	for _, v := range shader.Quad(u, inst) {
		verts = append(verts, ebiten.Vertex{
			DstX:   (v.NDC[0] + 1) / 2 * screenW,
			DstY:   (1 - v.NDC[1]) / 2 * screenH,
			SrcX:   v.UV[0] * texW,
			SrcY:   v.UV[1] * texH,
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		})
	}
	// Two triangles: TL-TR-BL, TR-BR-BL
	for _, i := range shader.QuadIndices {
		inds = append(inds, base+uint32(i))
	}
	return verts, inds
}
