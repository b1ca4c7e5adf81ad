package shader

import "github.com/phanxgames/jester"

// QuadVertex is one entry of the per-vertex buffer.
type QuadVertex struct {
	Pos [2]float32
	UV  [2]float32
}

// QuadVertices are the four corners of the unit quad: top-left, top-right,
// bottom-left, bottom-right. UV.y is flipped against Pos.y; the vertex stage
// flips it back so Pos (0,0) samples the top-left of the instance's UV rect.
var QuadVertices = [4]QuadVertex{
	{Pos: [2]float32{0, 0}, UV: [2]float32{0, 1}},
	{Pos: [2]float32{1, 0}, UV: [2]float32{1, 1}},
	{Pos: [2]float32{0, 1}, UV: [2]float32{0, 0}},
	{Pos: [2]float32{1, 1}, UV: [2]float32{1, 0}},
}

// QuadIndices draws QuadVertices as two triangles.
var QuadIndices = [6]uint16{0, 1, 2, 1, 3, 2}

// VertexOutput is what the vertex stage hands to the rasterizer.
type VertexOutput struct {
	// NDC is the clip-space position (w = 1).
	NDC [2]float32
	// Pixel is the world pixel before the camera transform.
	Pixel [2]float32
	// UV is the interpolated texture coordinate at this vertex.
	UV [2]float32
}

// VertexStage evaluates vs_main on the CPU for one vertex of one instance.
func VertexStage(u jester.CameraUniforms, inst jester.SpriteInstance, v QuadVertex) VertexOutput {
	px := inst.PosSize[0] + v.Pos[0]*inst.PosSize[2]
	py := inst.PosSize[1] + v.Pos[1]*inst.PosSize[3]
	nx, ny := u.PixelToNDC(px, py)

	tx, ty := v.UV[0], 1-v.UV[1]
	return VertexOutput{
		NDC:   [2]float32{nx, ny},
		Pixel: [2]float32{px, py},
		UV: [2]float32{
			mix(inst.UV[0], inst.UV[2], tx),
			mix(inst.UV[1], inst.UV[3], ty),
		},
	}
}

// Quad runs the vertex stage for all four corners of inst.
func Quad(u jester.CameraUniforms, inst jester.SpriteInstance) [4]VertexOutput {
	var out [4]VertexOutput
	for i, v := range QuadVertices {
		out[i] = VertexStage(u, inst, v)
	}
	return out
}

func mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}
