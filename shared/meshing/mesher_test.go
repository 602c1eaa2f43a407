package meshing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Blockscope/shared/registry"
	"Blockscope/shared/tint"
	"Blockscope/shared/util"
)

type fakeOcc struct {
	solid  map[util.BlockPos]bool
	liquid map[util.BlockPos]bool
}

func newOcc() *fakeOcc {
	return &fakeOcc{solid: map[util.BlockPos]bool{}, liquid: map[util.BlockPos]bool{}}
}

func (o *fakeOcc) Solid(p util.BlockPos) bool  { return o.solid[p] }
func (o *fakeOcc) Liquid(p util.BlockPos) bool { return o.liquid[p] }

type fakeDescs map[registry.VariantKey]*registry.Descriptor

func (f fakeDescs) Lookup(k registry.VariantKey) (*registry.Descriptor, bool) {
	d, ok := f[k]
	return d, ok
}

var (
	stoneKey = registry.BaseKey("minecraft:stone")
	waterKey = registry.BaseKey("minecraft:water")
	fernKey  = registry.BaseKey("minecraft:fern")
	slabKey  = registry.BaseKey("minecraft:oak_slab")
	glassKey = registry.BaseKey("minecraft:glass_pane")
)

func testDescs() fakeDescs {
	slab := registry.Box{From: [3]float32{0, 0, 0}, To: [3]float32{1, 0.5, 1}}
	slab.Faces[0] = registry.FaceRef{Texture: 7, Present: true}                 // up
	slab.Faces[1] = registry.FaceRef{Texture: 7, CullFace: true, Present: true} // down
	slab.Faces[2] = registry.FaceRef{Texture: 8, Present: true}                 // north

	return fakeDescs{
		stoneKey: {
			Key:          stoneKey,
			FaceTextures: [6]int{10, 11, 12, 13, 14, 15},
			RenderType:   registry.RenderCube,
			FullOpaque:   true,
			Tint:         tint.White,
			Alpha:        1,
		},
		waterKey: {
			Key:          waterKey,
			FaceTextures: [6]int{3, 3, 3, 3, 3, 3},
			RenderType:   registry.RenderCube,
			Material:     registry.MaterialLiquid,
			Tint:         tint.White,
			Alpha:        0.5,
		},
		fernKey: {
			Key:          fernKey,
			FaceTextures: [6]int{5, 5, 5, 5, 5, 5},
			RenderType:   registry.RenderCross,
			Material:     registry.MaterialCross,
			Tint:         tint.RGB{0.2, 0.8, 0.3},
			Alpha:        1,
		},
		slabKey: {
			Key:        slabKey,
			RenderType: registry.RenderElements,
			Material:   registry.MaterialShaped,
			TintFaces:  [6]bool{true},
			Tint:       tint.RGB{0.5, 0.5, 0.5},
			Elements:   []registry.Box{slab},
			Alpha:      1,
		},
		glassKey: {
			Key:          glassKey,
			FaceTextures: [6]int{9, 9, 9, 9, 9, 9},
			RenderType:   registry.RenderCube,
			Tint:         tint.White,
			Alpha:        0.8,
		},
	}
}

func vertex(data []float32, i int) []float32 {
	return data[i*FloatsPerVertex : (i+1)*FloatsPerVertex]
}

func TestBuildEmpty(t *testing.T) {
	res := Build(nil, newOcc(), testDescs())
	assert.True(t, res.Empty())
}

func TestBuildSingleCube(t *testing.T) {
	origin := util.BlockPos{}
	occ := newOcc()
	occ.solid[origin] = true

	res := Build(map[util.BlockPos]registry.VariantKey{origin: stoneKey}, occ, testDescs())
	assert.Equal(t, 36, res.OpaqueVertices())
	assert.Equal(t, 0, res.TransparentVertices())

	// Primeira face emitida é o topo, sem AO (packed = 0*16 + 3*2 + 0), ordem 0,3,2
	first := vertex(res.Opaque, 0)
	assert.Equal(t, []float32{0, 1, 0, 10, 6, 1, 1, 1, 1}, first)
	assert.Equal(t, []float32{0, 1, 1}, vertex(res.Opaque, 1)[:3])
	assert.Equal(t, []float32{1, 1, 1}, vertex(res.Opaque, 2)[:3])

	// Cada face do mesher lê o slot do descritor de mesma direção
	wantTex := map[int]float32{FaceTop: 10, FaceBottom: 11, FacePosX: 15, FaceNegX: 14, FaceNegZ: 12, FacePosZ: 13}
	for face := 0; face < 6; face++ {
		v := vertex(res.Opaque, face*6)
		packedFace := int(v[4]) / 16
		assert.Equal(t, face, packedFace)
		assert.Equal(t, wantTex[face], v[3], "face %d", face)
	}
}

func TestBuildCullsSolidNeighbours(t *testing.T) {
	a := util.BlockPos{X: 0}
	b := util.BlockPos{X: 1}
	occ := newOcc()
	occ.solid[a] = true
	occ.solid[b] = true

	res := Build(map[util.BlockPos]registry.VariantKey{a: stoneKey, b: stoneKey}, occ, testDescs())
	assert.Equal(t, 10*6, res.OpaqueVertices())

	// Removendo o vizinho da ocupação a face volta
	delete(occ.solid, b)
	res = Build(map[util.BlockPos]registry.VariantKey{a: stoneKey}, occ, testDescs())
	assert.Equal(t, 36, res.OpaqueVertices())
}

func TestBuildDeterministic(t *testing.T) {
	occ := newOcc()
	blocks := map[util.BlockPos]registry.VariantKey{}
	for x := int32(0); x < 4; x++ {
		for z := int32(0); z < 4; z++ {
			p := util.BlockPos{X: x, Y: x % 2, Z: z}
			blocks[p] = stoneKey
			occ.solid[p] = true
		}
	}
	first := Build(blocks, occ, testDescs())
	for i := 0; i < 5; i++ {
		again := Build(blocks, occ, testDescs())
		require.Equal(t, first.Opaque, again.Opaque)
	}
}

func TestTransparentRouting(t *testing.T) {
	w1 := util.BlockPos{}
	w2 := util.BlockPos{Y: 1}
	occ := newOcc()
	occ.liquid[w1] = true
	occ.liquid[w2] = true

	res := Build(map[util.BlockPos]registry.VariantKey{w1: waterKey, w2: waterKey}, occ, testDescs())
	assert.Equal(t, 0, res.OpaqueVertices())
	// Faces internas entre líquidos somem
	assert.Equal(t, 10*6, res.TransparentVertices())

	for i := 0; i < res.TransparentVertices(); i++ {
		v := vertex(res.Transparent, i)
		packed := int(v[4])
		assert.GreaterOrEqual(t, packed/16, 6, "liquid faces use the unshaded range")
		assert.Equal(t, 6, packed%16)
		assert.Equal(t, float32(0.5), v[8])
	}

	glass := util.BlockPos{X: 5}
	res = Build(map[util.BlockPos]registry.VariantKey{glass: glassKey}, newOcc(), testDescs())
	assert.Equal(t, 0, res.OpaqueVertices())
	assert.Equal(t, 36, res.TransparentVertices())
	assert.Equal(t, float32(0*16+6), vertex(res.Transparent, 0)[4])
}

func TestCrossGeometry(t *testing.T) {
	p := util.BlockPos{X: 2, Y: 3, Z: 4}
	res := Build(map[util.BlockPos]registry.VariantKey{p: fernKey}, newOcc(), testDescs())
	require.Equal(t, 24, res.OpaqueVertices())

	first := vertex(res.Opaque, 0)
	assert.InDelta(t, 2.146, first[0], 1e-5)
	assert.InDelta(t, 3.0, first[1], 1e-5)
	assert.InDelta(t, 4.146, first[2], 1e-5)
	assert.Equal(t, []float32{5, 6, 0.2, 0.8, 0.3, 1}, first[3:])
}

func TestElementsCullOnlyWithCullface(t *testing.T) {
	p := util.BlockPos{Y: 1}
	below := util.BlockPos{Y: 0}
	north := util.BlockPos{Y: 1, Z: -1}

	occ := newOcc()
	res := Build(map[util.BlockPos]registry.VariantKey{p: slabKey}, occ, testDescs())
	assert.Equal(t, 18, res.OpaqueVertices())

	// Vizinho norte sólido não corta: a face norte não tem cullface
	occ.solid[north] = true
	res = Build(map[util.BlockPos]registry.VariantKey{p: slabKey}, occ, testDescs())
	assert.Equal(t, 18, res.OpaqueVertices())

	occ.solid[below] = true
	res = Build(map[util.BlockPos]registry.VariantKey{p: slabKey}, occ, testDescs())
	assert.Equal(t, 12, res.OpaqueVertices())

	// Topo da laje em y+0.5, tingido; norte sem tinta
	top := vertex(res.Opaque, 0)
	assert.Equal(t, float32(1.5), top[1])
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, top[5:8])
	northFace := vertex(res.Opaque, 6)
	assert.Equal(t, float32(FaceNegZ*16+6), northFace[4])
	assert.Equal(t, []float32{1, 1, 1}, northFace[5:8])
}

func TestUnknownKeyRendersMissingCube(t *testing.T) {
	p := util.BlockPos{}
	res := Build(map[util.BlockPos]registry.VariantKey{p: registry.BaseKey("minecraft:unknown")}, newOcc(), fakeDescs{})
	assert.Equal(t, 36, res.OpaqueVertices())
	assert.Equal(t, float32(0), vertex(res.Opaque, 0)[3])
}

func TestCornerAO(t *testing.T) {
	p := util.BlockPos{}
	occ := newOcc()
	assert.Equal(t, 0, CornerAO(occ, p, FaceTop, 0))

	occ.solid[util.BlockPos{X: 0, Y: 1, Z: -1}] = true
	assert.Equal(t, 1, CornerAO(occ, p, FaceTop, 0))
	occ.solid[util.BlockPos{X: -1, Y: 1, Z: -1}] = true
	occ.solid[util.BlockPos{X: -1, Y: 1, Z: 0}] = true
	assert.Equal(t, 3, CornerAO(occ, p, FaceTop, 0))
	// Plano errado não conta
	assert.Equal(t, 0, CornerAO(occ, p, FaceBottom, 0))
}

func TestCornerAOMonotonic(t *testing.T) {
	p := util.BlockPos{X: 3, Y: 3, Z: 3}
	occ := newOcc()

	var cells []util.BlockPos
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				if dx != 0 || dy != 0 || dz != 0 {
					cells = append(cells, util.BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz})
				}
			}
		}
	}

	var prev [6][4]int
	for _, c := range cells {
		occ.solid[c] = true
		for face := 0; face < 6; face++ {
			for corner := 0; corner < 4; corner++ {
				ao := CornerAO(occ, p, face, corner)
				if ao < prev[face][corner] {
					t.Fatalf("CornerAO(face=%d, corner=%d) decreased from %d to %d after adding %v", face, corner, prev[face][corner], ao, c)
				}
				if ao < 0 || ao > 3 {
					t.Fatalf("CornerAO(face=%d, corner=%d) = %d, out of [0,3]", face, corner, ao)
				}
				prev[face][corner] = ao
			}
		}
	}
	for face := 0; face < 6; face++ {
		for corner := 0; corner < 4; corner++ {
			assert.Equal(t, 3, prev[face][corner])
		}
	}
}

func TestAOFlipSelectsWinding(t *testing.T) {
	p := util.BlockPos{}
	occ := newOcc()
	occ.solid[p] = true
	// Ocupa (x-1, z+1) no plano acima: só o canto 3 do topo, (0,1,1), escurece
	occ.solid[util.BlockPos{X: -1, Y: 1, Z: 1}] = true

	res := Build(map[util.BlockPos]registry.VariantKey{p: stoneKey}, occ, testDescs())
	// flip = 1, winding[top][1] = {1, 0, 3, ...}
	first := vertex(res.Opaque, 0)
	assert.Equal(t, []float32{1, 1, 0}, first[:3])
	assert.Equal(t, float32(0*16+3*2+1), first[4])

	third := vertex(res.Opaque, 2)
	assert.Equal(t, []float32{0, 1, 1}, third[:3])
	assert.Equal(t, float32(0*16+(3-1)*2+1), third[4])
}

// planeCells lista as 8 células do plano deslocado pela normal da face,
// com o deslocamento relativo ao bloco.
func planeCells(face int) [][3]int32 {
	n := faceNormals[face]
	var cells [][3]int32
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				d := [3]int32{dx, dy, dz}
				inPlane := true
				centre := true
				for a := 0; a < 3; a++ {
					if n[a] != 0 && d[a] != n[a] {
						inPlane = false
					}
					if n[a] == 0 && d[a] != 0 {
						centre = false
					}
				}
				if inPlane && !centre {
					cells = append(cells, d)
				}
			}
		}
	}
	return cells
}

// touches indica se a célula deslocada por d encosta no vértice v da face
// (v em unidades de bloco, 0 ou 1 em cada eixo). Retorna também quantos
// eixos do plano estão deslocados: 1 = lado, 2 = diagonal.
func touches(face int, d [3]int32, v [3]float32) (bool, int) {
	n := faceNormals[face]
	moved := 0
	for a := 0; a < 3; a++ {
		if n[a] != 0 {
			continue
		}
		if d[a] != 0 {
			moved++
		}
		vi := int32(v[a])
		if d[a] != vi && d[a] != vi-1 {
			return false, moved
		}
	}
	return true, moved
}

func TestCornerAOSamplesCellsAtTheCorner(t *testing.T) {
	p := util.BlockPos{X: 4, Y: 4, Z: 4}
	for face := 0; face < 6; face++ {
		cells := planeCells(face)
		require.Len(t, cells, 8)
		for _, d := range cells {
			occ := newOcc()
			occ.solid[p.Offset(d[0], d[1], d[2])] = true
			for corner := 0; corner < 4; corner++ {
				ok, _ := touches(face, d, faceVerts[face][corner])
				want := 0
				if ok {
					want = 1
				}
				if got := CornerAO(occ, p, face, corner); got != want {
					t.Errorf("CornerAO(face=%d, corner=%d) with cell %v = %d, want %d (vertex %v)",
						face, corner, d, got, want, faceVerts[face][corner])
				}
			}
		}
	}
}

func TestCornerAOTwoSidesOcclude(t *testing.T) {
	p := util.BlockPos{X: 4, Y: 4, Z: 4}
	for face := 0; face < 6; face++ {
		for corner := 0; corner < 4; corner++ {
			v := faceVerts[face][corner]
			var sides, diag [][3]int32
			for _, d := range planeCells(face) {
				ok, moved := touches(face, d, v)
				switch {
				case !ok:
				case moved == 1:
					sides = append(sides, d)
				default:
					diag = append(diag, d)
				}
			}
			require.Len(t, sides, 2, "face %d corner %d", face, corner)
			require.Len(t, diag, 1, "face %d corner %d", face, corner)

			tests := []struct {
				name  string
				cells [][3]int32
				want  int
			}{
				{"lado", sides[:1], 1},
				{"diagonal", diag, 1},
				{"lado e diagonal", [][3]int32{sides[1], diag[0]}, 2},
				{"dois lados", sides, 3},
				{"todos", append(append([][3]int32{}, sides...), diag...), 3},
			}
			for _, tt := range tests {
				occ := newOcc()
				for _, d := range tt.cells {
					occ.solid[p.Offset(d[0], d[1], d[2])] = true
				}
				if got := CornerAO(occ, p, face, corner); got != tt.want {
					t.Errorf("CornerAO(face=%d, corner=%d) %s = %d, want %d", face, corner, tt.name, got, tt.want)
				}
			}
		}
	}
}

func TestMeshBufferGrowth(t *testing.T) {
	b := &MeshBuffer{}
	var quad [4]Vertex
	for i := 0; i < 100; i++ {
		b.AddQuad(quad, crossOrder)
	}
	assert.Equal(t, 600, b.VertexCount())
	assert.GreaterOrEqual(t, cap(b.Data), len(b.Data))
}
