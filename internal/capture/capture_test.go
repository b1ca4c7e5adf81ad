package capture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"initial", "initial"},
		{"after click", "after_click"},
		{"  ", "unlabeled"},
		{"a/b\\c", "a_b_c"},
		{"v1.2-final", "v1.2-final"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeLabel(tt.in), "input %q", tt.in)
	}
}

func TestPath(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join("shots", "20260304_050607_title.png"), Path("shots", "title", ts))
	assert.Equal(t, filepath.Join(DefaultDir, "20260304_050607_unlabeled.png"), Path("", "", ts))
}

func TestSaveWritesDecodablePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})

	paths, err := Save(dir, []string{"one", "two"}, img, time.Now())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	r, _, _, a := decoded.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestUnpremultiply(t *testing.T) {
	img := Unpremultiply([]byte{64, 0, 0, 128, 10, 20, 30, 255}, 2, 1)
	assert.Equal(t, uint8(127), img.Pix[0])
	assert.Equal(t, uint8(128), img.Pix[3])
	assert.Equal(t, []uint8{10, 20, 30, 255}, img.Pix[4:8])
}
