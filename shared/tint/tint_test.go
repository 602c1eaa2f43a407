package tint

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

// gradient gera um colormap 256x256 onde o pixel (x, y) vale (x, y, b).
func gradient(t *testing.T, b uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), b, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestColormapCoords(t *testing.T) {
	tests := []struct {
		biome string
		x, y  int
	}{
		{"minecraft:plains", 51, 173},
		{"minecraft:desert", 0, 255},
		{"minecraft:snowy_taiga", 255, 255},
		{"minecraft:jungle", 13, 37},
		{"minecraft:unknown_biome", 51, 173},
	}
	for _, tt := range tests {
		x, y := ColormapCoords(tt.biome)
		if x != tt.x || y != tt.y {
			t.Errorf("ColormapCoords(%q) = (%d, %d), want (%d, %d)", tt.biome, x, y, tt.x, tt.y)
		}
	}
}

func TestColormapCoordsAlwaysInRange(t *testing.T) {
	for biome := range biomeClimate {
		x, y := ColormapCoords(biome)
		if x < 0 || x > 255 || y < 0 || y > 255 {
			t.Errorf("ColormapCoords(%q) = (%d, %d), out of [0,255]", biome, x, y)
		}
	}
}

func TestKindFor(t *testing.T) {
	tests := []struct {
		id        string
		needsTint bool
		want      Kind
	}{
		{"minecraft:stone", false, None},
		{"minecraft:oak_leaves", true, Foliage},
		{"minecraft:dark_oak_leaves", true, Foliage},
		{"minecraft:birch_leaves", true, Grass},
		{"minecraft:fern", true, Grass},
	}
	for _, tt := range tests {
		if got := KindFor(tt.id, tt.needsTint); got != tt.want {
			t.Errorf("KindFor(%q, %v) = %v, want %v", tt.id, tt.needsTint, got, tt.want)
		}
	}
}

func TestResolverColor(t *testing.T) {
	fsys := fstest.MapFS{
		"textures/colormap/grass.png":   {Data: gradient(t, 10)},
		"textures/colormap/foliage.png": {Data: gradient(t, 20)},
	}
	r := NewResolver(fsys)

	assert.Equal(t, FromBytes(51, 173, 10), r.Color("minecraft:grass_block", Grass, "minecraft:plains"))
	assert.Equal(t, FromBytes(51, 173, 20), r.Color("minecraft:oak_leaves", Foliage, "minecraft:plains"))
	assert.Equal(t, FromBytes(0, 255, 10), r.Color("minecraft:short_grass", None, "minecraft:desert"))
	assert.Equal(t, FromBytes(128, 167, 85), r.Color("minecraft:birch_leaves", Grass, "minecraft:plains"))
	assert.Equal(t, White, r.Color("minecraft:stone", None, "minecraft:plains"))
	assert.Equal(t, r.Color("minecraft:grass_block", Grass, "minecraft:jungle"), r.GrassColor("minecraft:jungle"))
}

func TestResolverMissingColormapIsWhite(t *testing.T) {
	r := NewResolver(fstest.MapFS{})
	assert.Equal(t, White, r.Color("minecraft:grass_block", Grass, "minecraft:plains"))
	assert.Equal(t, White, r.Color("minecraft:oak_leaves", Foliage, "minecraft:forest"))
	// Cores fixas não dependem do colormap
	assert.Equal(t, FromBytes(97, 153, 97), r.Color("minecraft:spruce_leaves", Grass, "minecraft:plains"))
}
