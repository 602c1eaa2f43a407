package registry

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Blockscope/shared/atlas"
	"Blockscope/shared/model"
	"Blockscope/shared/tint"
)

const plains = "minecraft:plains"

func pngFile(t *testing.T, c color.NRGBA) *fstest.MapFile {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &fstest.MapFile{Data: buf.Bytes()}
}

func testAssets(t *testing.T) fstest.MapFS {
	fsys := fstest.MapFS{}
	files := map[string]string{
		"models/block/cube_all.json":     `{"textures":{"particle":"#all"}}`,
		"models/block/stone.json":        `{"parent":"minecraft:block/cube_all","textures":{"all":"minecraft:block/stone"}}`,
		"models/block/leaves.json":       `{"parent":"block/cube_all"}`,
		"models/block/oak_leaves.json":   `{"parent":"minecraft:block/leaves","textures":{"all":"minecraft:block/oak_leaves"}}`,
		"models/block/cross.json":        `{"textures":{"particle":"#cross"}}`,
		"models/block/tinted_cross.json": `{"parent":"block/cross"}`,
		"models/block/fern.json":         `{"parent":"minecraft:block/tinted_cross","textures":{"cross":"minecraft:block/fern"}}`,
		"models/block/water.json":        `{"textures":{"particle":"block/water_still"}}`,
		"models/block/foo_bottom.json":   `{"parent":"block/cube_all","textures":{"all":"block/foo"}}`,
		"models/block/grass_block.json": `{"textures":{"top":"block/grass_block_top","side":"block/grass_block_side","bottom":"block/dirt","overlay":"block/grass_block_side_overlay"},
			"elements":[
				{"from":[0,0,0],"to":[16,16,16],"faces":{"up":{"texture":"#top","tintindex":0},"down":{"texture":"#bottom"},"north":{"texture":"#side"},"south":{"texture":"#side"},"west":{"texture":"#side"},"east":{"texture":"#side"}}},
				{"from":[0,0,0],"to":[16,16,16],"faces":{"north":{"texture":"#overlay","tintindex":0},"east":{"texture":"#overlay","tintindex":0}}}
			]}`,
		"models/block/oak_slab.json": `{"textures":{"top":"block/oak_planks","side":"block/oak_planks","bottom":"block/oak_planks"},
			"elements":[{"from":[0,0,0],"to":[16,8,16],"faces":{
				"up":{"texture":"#top"},
				"down":{"texture":"#bottom","cullface":"down"},
				"north":{"texture":"#side","uv":[0,8,16,16],"cullface":"north"}}}]}`,
		"models/block/oak_stairs.json": `{"textures":{"top":"block/oak_planks","side":"block/oak_planks","bottom":"block/oak_planks"},
			"elements":[
				{"from":[0,0,0],"to":[16,8,16],"faces":{"up":{"texture":"#top"},"down":{"texture":"#bottom","cullface":"down"}}},
				{"from":[8,8,0],"to":[16,16,16],"faces":{"up":{"texture":"#top"},"east":{"texture":"#side","cullface":"east"}}}
			]}`,
		"blockstates/oak_stairs.json": `{"variants":{
			"facing=east,half=bottom":{"model":"minecraft:block/oak_stairs"},
			"facing=south,half=bottom":{"model":"minecraft:block/oak_stairs","y":90},
			"facing=north,half=top":[{"model":"minecraft:block/oak_stairs","x":180,"y":270},{"model":"minecraft:block/nope"}],
			"facing=up":{"model":"minecraft:block/missing_model"},
			"":{"model":"minecraft:block/oak_stairs","y":180}
		}}`,
		"blockstates/oak_slab.json": `{"variants":{"type=bottom":{"model":"minecraft:block/oak_slab"},"type=double":{"model":"minecraft:block/stone"}}}`,
	}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}

	textures := map[string]color.NRGBA{
		"stone":                    {120, 120, 120, 255},
		"oak_leaves":               {40, 160, 40, 200},
		"fern":                     {60, 180, 60, 255},
		"water_still":              {40, 60, 220, 255},
		"foo":                      {1, 2, 3, 255},
		"grass_block_top":          {150, 150, 150, 255},
		"grass_block_side":         {130, 90, 60, 255},
		"grass_block_side_overlay": {255, 255, 255, 255},
		"dirt":                     {130, 90, 60, 255},
		"oak_planks":               {180, 140, 90, 255},
	}
	for name, c := range textures {
		fsys["textures/block/"+name+".png"] = pngFile(t, c)
	}
	return fsys
}

func newRegistry(t *testing.T) *Registry {
	fsys := testAssets(t)
	return New(fsys, atlas.New(fsys))
}

func TestRegisterBlockIdempotent(t *testing.T) {
	r := newRegistry(t)

	first := r.RegisterBlock("minecraft:stone", plains)
	layers := r.Atlas().Len()
	second := r.RegisterBlock("minecraft:stone", plains)

	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, layers, r.Atlas().Len())

	stone := r.Atlas().Texture("stone")
	assert.Equal(t, [6]int{stone, stone, stone, stone, stone, stone}, first.FaceTextures)
	assert.Equal(t, RenderCube, first.RenderType)
	assert.Equal(t, MaterialSolid, first.Material)
	assert.True(t, first.FullOpaque)
	assert.Equal(t, float32(1), first.Alpha)
	assert.Equal(t, tint.White, first.Tint)
}

func TestRegisterBlockFallbacks(t *testing.T) {
	r := newRegistry(t)

	// Sufixo _bottom
	foo := r.RegisterBlock("minecraft:foo", plains)
	fooTex := r.Atlas().Texture("foo")
	assert.NotEqual(t, atlas.Missing, fooTex)
	assert.Equal(t, fooTex, foo.FaceTextures[model.FaceUp])

	// Sem modelo: cubo plano com a textura de mesmo nome (ausente -> 0)
	ghost := r.RegisterBlock("minecraft:ghost", plains)
	assert.Equal(t, [6]int{}, ghost.FaceTextures)
	assert.Equal(t, RenderCube, ghost.RenderType)
	assert.True(t, ghost.FullOpaque)
}

func TestRegisterBlockClassification(t *testing.T) {
	r := newRegistry(t)

	fern := r.RegisterBlock("minecraft:fern", plains)
	assert.Equal(t, RenderCross, fern.RenderType)
	assert.Equal(t, MaterialCross, fern.Material)
	assert.False(t, fern.FullOpaque)
	assert.Equal(t, tint.Grass, fern.TintKind)
	assert.Equal(t, [6]bool{true, true, true, true, true, true}, fern.TintFaces)

	leaves := r.RegisterBlock("minecraft:oak_leaves", plains)
	assert.Equal(t, RenderCube, leaves.RenderType)
	assert.Equal(t, MaterialLeaf, leaves.Material)
	assert.False(t, leaves.FullOpaque)
	assert.Equal(t, tint.Foliage, leaves.TintKind)

	water := r.RegisterBlock("minecraft:water", plains)
	assert.Equal(t, MaterialLiquid, water.Material)
	assert.False(t, water.FullOpaque)
	assert.Equal(t, float32(0.5), water.Alpha)
	assert.Equal(t, r.Atlas().Texture("water_still"), water.FaceTextures[model.FaceNorth])

	slab := r.RegisterBlock("minecraft:oak_slab", plains)
	assert.Equal(t, RenderElements, slab.RenderType)
	assert.Equal(t, MaterialShaped, slab.Material)
	assert.False(t, slab.FullOpaque)
	require.Len(t, slab.Elements, 1)
	box := slab.Elements[0]
	assert.Equal(t, [3]float32{1, 0.5, 1}, box.To)
	assert.True(t, box.Faces[model.FaceDown].CullFace)
	assert.False(t, box.Faces[model.FaceUp].CullFace)
	assert.False(t, box.Faces[model.FaceEast].Present)
	// uv parcial gera camada recortada
	assert.NotEqual(t, r.Atlas().Texture("oak_planks"), box.Faces[model.FaceNorth].Texture)
	assert.NotEqual(t, atlas.Missing, box.Faces[model.FaceNorth].Texture)
}

func TestRegisterGrassBlock(t *testing.T) {
	r := newRegistry(t)

	d := r.RegisterBlock("minecraft:grass_block", plains)
	assert.Equal(t, RenderCube, d.RenderType)
	assert.True(t, d.FullOpaque)
	assert.Equal(t, [6]bool{true, false, false, false, false, false}, d.TintFaces)

	baked := r.Atlas().Texture(atlas.BakedGrassKey(plains))
	assert.NotEqual(t, atlas.Missing, baked)
	for _, f := range []int{model.FaceNorth, model.FaceSouth, model.FaceWest, model.FaceEast} {
		assert.Equal(t, baked, d.FaceTextures[f], "side %d", f)
	}
	assert.Equal(t, r.Atlas().Texture("grass_block_top"), d.FaceTextures[model.FaceUp])
	assert.Equal(t, r.Atlas().Texture("dirt"), d.FaceTextures[model.FaceDown])

	layers := r.Atlas().Len()
	r.RegisterBlock("minecraft:grass_block", plains)
	assert.Equal(t, layers, r.Atlas().Len())
}

func TestRegisterVariantRotation(t *testing.T) {
	r := newRegistry(t)
	planks := r.Atlas().Texture("oak_planks")

	east := r.RegisterVariant("minecraft:oak_stairs", "half=bottom, facing=east", plains)
	assert.Equal(t, VariantKey{Block: "minecraft:oak_stairs", Props: "facing=east,half=bottom"}, east)
	eastDesc, ok := r.Lookup(east)
	require.True(t, ok)
	assert.Equal(t, planks, eastDesc.Elements[0].Faces[model.FaceUp].Texture)

	south := r.RegisterVariant("minecraft:oak_stairs", "facing=south,half=bottom", plains)
	d, ok := r.Lookup(south)
	require.True(t, ok)
	assert.Equal(t, RenderElements, d.RenderType)
	assert.Equal(t, MaterialShaped, d.Material)
	assert.False(t, d.FullOpaque)

	step := d.Elements[1]
	assert.Equal(t, [3]float32{0, 0.5, 0.5}, step.From)
	assert.Equal(t, [3]float32{1, 1, 1}, step.To)
	assert.True(t, step.Faces[model.FaceSouth].Present)
	assert.True(t, step.Faces[model.FaceSouth].CullFace)
	assert.False(t, step.Faces[model.FaceEast].Present)

	up := d.Elements[0].Faces[model.FaceUp].Texture
	assert.NotEqual(t, planks, up)
	assert.Equal(t, r.Atlas().Rotated(planks, 90), up)

	layers := r.Atlas().Len()
	assert.Equal(t, south, r.RegisterVariant("minecraft:oak_stairs", "facing=south,half=bottom", plains))
	assert.Equal(t, layers, r.Atlas().Len())
}

func TestRegisterVariantMatching(t *testing.T) {
	r := newRegistry(t)
	base := BaseKey("minecraft:oak_stairs")

	// Lista: usa a primeira entrada (x=180, y=270)
	top := r.RegisterVariant("minecraft:oak_stairs", "facing=north,half=top", plains)
	d, ok := r.Lookup(top)
	require.True(t, ok)
	assert.Equal(t, [3]float32{0, 0.5, 0}, d.Elements[0].From)
	assert.True(t, d.Elements[0].Faces[model.FaceUp].CullFace, "down face becomes up after x=180")

	// Chave vazia no fim casa qualquer coisa
	west := r.RegisterVariant("minecraft:oak_stairs", "facing=west,half=bottom", plains)
	assert.NotEqual(t, base, west)

	// Modelo inexistente cai no bloco base
	assert.Equal(t, base, r.RegisterVariant("minecraft:oak_stairs", "facing=up", plains))

	// Sem propriedades
	assert.Equal(t, base, r.RegisterVariant("minecraft:oak_stairs", "", plains))

	// Bloco cúbico nunca ganha variante
	assert.Equal(t, BaseKey("minecraft:stone"), r.RegisterVariant("minecraft:stone", "axis=y", plains))

	// Nenhuma regra casa / modelo sem geometria de elementos
	assert.Equal(t, BaseKey("minecraft:oak_slab"), r.RegisterVariant("minecraft:oak_slab", "type=top", plains))
	assert.Equal(t, BaseKey("minecraft:oak_slab"), r.RegisterVariant("minecraft:oak_slab", "type=double", plains))

	got, ok := r.Lookup(VariantKey{Block: "minecraft:oak_slab", Props: "type=top"})
	require.True(t, ok)
	assert.Equal(t, BaseKey("minecraft:oak_slab"), got.Key)
}

func TestCanonicalProps(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"facing=east", "facing=east"},
		{" half = bottom , facing=east", "facing=east,half=bottom"},
		{"waterlogged=false,axis=y,junk", "axis=y,waterlogged=false"},
	}
	for _, tt := range tests {
		if got := CanonicalProps(tt.in); got != tt.want {
			t.Errorf("CanonicalProps(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVariantKeyString(t *testing.T) {
	assert.Equal(t, "minecraft:stone", BaseKey("minecraft:stone").String())
	assert.Equal(t, "minecraft:oak_stairs[facing=east]", VariantKey{"minecraft:oak_stairs", "facing=east"}.String())
}

func TestParseBlockstatePreservesOrder(t *testing.T) {
	bs, err := parseBlockstate([]byte(`{"multipart":[{"apply":{"model":"x"}}],"variants":{"b=1":{"model":"first"},"a=1":{"model":"second"},"":[{"model":"third","y":90}]}}`))
	require.NoError(t, err)
	require.Len(t, bs.rules, 3)
	assert.Equal(t, "first", bs.rules[0].Ref.Model)
	assert.Equal(t, "second", bs.rules[1].Ref.Model)
	assert.Equal(t, 90, bs.rules[2].Ref.Y)

	ref, ok := bs.match(map[string]string{"a": "1", "b": "1"})
	assert.True(t, ok)
	assert.Equal(t, "first", ref.Model)

	ref, _ = bs.match(map[string]string{"a": "2"})
	assert.Equal(t, "third", ref.Model)

	_, err = parseBlockstate([]byte(`{"variants":{"a=1":`))
	assert.Error(t, err)
}

func TestRotateBoxes(t *testing.T) {
	box := Box{
		From: [3]float32{0, 0, 0},
		To:   [3]float32{0.5, 0.25, 1},
	}
	box.Faces[model.FaceNorth] = FaceRef{Texture: 7, Present: true}
	box.Faces[model.FaceUp] = FaceRef{Texture: 3, Present: true}

	tests := []struct {
		rotX, rotY int
		from, to   [3]float32
		face       int // para onde vai a face norte
	}{
		{0, 0, [3]float32{0, 0, 0}, [3]float32{0.5, 0.25, 1}, model.FaceNorth},
		{0, 90, [3]float32{0, 0, 0}, [3]float32{1, 0.25, 0.5}, model.FaceEast},
		{0, 180, [3]float32{0.5, 0, 0}, [3]float32{1, 0.25, 1}, model.FaceSouth},
		{0, 270, [3]float32{0, 0, 0.5}, [3]float32{1, 0.25, 1}, model.FaceWest},
		{180, 0, [3]float32{0, 0.75, 0}, [3]float32{0.5, 1, 1}, model.FaceSouth},
		{0, -90, [3]float32{0, 0, 0.5}, [3]float32{1, 0.25, 1}, model.FaceWest},
	}
	for _, tt := range tests {
		got := rotateBoxes([]Box{box}, tt.rotX, tt.rotY)[0]
		if got.From != tt.from || got.To != tt.to {
			t.Errorf("rotateBoxes(x=%d, y=%d) = %v..%v, want %v..%v", tt.rotX, tt.rotY, got.From, got.To, tt.from, tt.to)
		}
		if got.Faces[tt.face].Texture != 7 {
			t.Errorf("rotateBoxes(x=%d, y=%d): north face moved to %v, want index %d", tt.rotX, tt.rotY, got.Faces, tt.face)
		}
	}
}
