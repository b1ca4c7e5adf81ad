// Package shader holds the WGSL sprite shader, its SPIR-V compilation, and a
// CPU reference of the vertex stage used by the headless backend and tests.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/phanxgames/jester"
)

//go:embed sprite.wgsl
var SpriteWGSL string

// Entry points of SpriteWGSL.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Bind group layout of SpriteWGSL.
const (
	CameraGroup    = 0 // uniform CameraUniforms at binding 0
	TextureGroup   = 1 // texture at binding 0, sampler at binding 1
	UniformSize    = 24
	InstanceStride = jester.SpriteInstanceSize
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// Compile compiles WGSL source to SPIR-V words.
func Compile(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to compile: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("shader: SPIR-V output is %d bytes, want a non-empty multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if words[0] != SPIRVMagic {
		return nil, fmt.Errorf("shader: invalid SPIR-V magic 0x%08X", words[0])
	}
	return words, nil
}

// CompileSprite compiles SpriteWGSL.
func CompileSprite() ([]uint32, error) {
	return Compile(SpriteWGSL)
}
