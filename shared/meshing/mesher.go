// Package meshing gera os buffers de vértices de um chunk a partir dos
// blocos esparsos, com culling de faces e oclusão ambiente por vértice.
package meshing

import (
	"sort"

	"Blockscope/shared/registry"
	"Blockscope/shared/tint"
	"Blockscope/shared/util"
)

// Occupancy responde pela ocupação global do mundo (atravessa chunks).
type Occupancy interface {
	Solid(pos util.BlockPos) bool
	Liquid(pos util.BlockPos) bool
}

// Descriptors resolve chaves de renderização.
type Descriptors interface {
	Lookup(key registry.VariantKey) (*registry.Descriptor, bool)
}

// Result contém os dois buffers de um chunk.
type Result struct {
	Opaque      []float32
	Transparent []float32
}

// OpaqueVertices retorna o número de vértices opacos.
func (r Result) OpaqueVertices() int { return len(r.Opaque) / FloatsPerVertex }

// TransparentVertices retorna o número de vértices transparentes.
func (r Result) TransparentVertices() int { return len(r.Transparent) / FloatsPerVertex }

// Empty indica que nenhum vértice foi gerado.
func (r Result) Empty() bool { return len(r.Opaque) == 0 && len(r.Transparent) == 0 }

// missing é usado para chaves desconhecidas: cubo com a textura de fallback.
var missing = &registry.Descriptor{
	RenderType: registry.RenderCube,
	Material:   registry.MaterialSolid,
	FullOpaque: true,
	Tint:       tint.White,
	Alpha:      1,
}

// Build gera a malha dos blocos de um chunk. occ cobre o mundo todo para
// que culling e AO funcionem na borda entre chunks.
func Build(blocks map[util.BlockPos]registry.VariantKey, occ Occupancy, descs Descriptors) Result {
	if len(blocks) == 0 {
		return Result{}
	}

	positions := make([]util.BlockPos, 0, len(blocks))
	for pos := range blocks {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Less(positions[j]) })

	opaque := GetMeshBuffer()
	transparent := GetMeshBuffer()
	defer PutMeshBuffer(opaque)
	defer PutMeshBuffer(transparent)

	for _, pos := range positions {
		d, ok := descs.Lookup(blocks[pos])
		if !ok {
			d = missing
		}

		switch d.RenderType {
		case registry.RenderCross:
			addCross(opaque, pos, d)
		case registry.RenderElements:
			addElements(opaque, occ, pos, d)
		default:
			if d.Alpha < 1 {
				addCube(transparent, occ, pos, d)
			} else {
				addCube(opaque, occ, pos, d)
			}
		}
	}

	return Result{
		Opaque:      opaque.Detach(),
		Transparent: transparent.Detach(),
	}
}

func origin(pos util.BlockPos) [3]float32 {
	return [3]float32{float32(pos.X), float32(pos.Y), float32(pos.Z)}
}

func offset(o, v [3]float32) [3]float32 {
	return [3]float32{o[0] + v[0], o[1] + v[1], o[2] + v[2]}
}

func neighbor(pos util.BlockPos, face int) util.BlockPos {
	n := faceNormals[face]
	return util.BlockPos{X: pos.X + n[0], Y: pos.Y + n[1], Z: pos.Z + n[2]}
}

func faceTint(d *registry.Descriptor, slot int) tint.RGB {
	if d.TintFaces[slot] {
		return d.Tint
	}
	return tint.White
}

func addCross(b *MeshBuffer, pos util.BlockPos, d *registry.Descriptor) {
	o := origin(pos)
	tex := float32(d.FaceTextures[0])
	for _, plane := range crossPlanes {
		var corners [4]Vertex
		for i, p := range plane {
			corners[i] = Vertex{Pos: offset(o, p), Tex: tex, Packed: fullBright, Tint: d.Tint, Alpha: d.Alpha}
		}
		b.AddQuad(corners, crossOrder)
	}
}

func addCube(b *MeshBuffer, occ Occupancy, pos util.BlockPos, d *registry.Descriptor) {
	o := origin(pos)
	liquid := d.Material == registry.MaterialLiquid
	translucent := d.Alpha < 1

	for face := 0; face < 6; face++ {
		nb := neighbor(pos, face)
		if occ.Solid(nb) {
			continue
		}
		if liquid && occ.Liquid(nb) {
			continue
		}

		slot := descriptorSlot[face]
		base := Vertex{
			Tex:   float32(d.FaceTextures[slot]),
			Tint:  faceTint(d, slot),
			Alpha: d.Alpha,
		}

		var corners [4]Vertex
		if liquid || translucent {
			packedFace := face
			if liquid {
				packedFace += 6
			}
			base.Packed = float32(packedFace*16 + fullBright)
			for i, v := range faceVerts[face] {
				corners[i] = base
				corners[i].Pos = offset(o, v)
			}
			b.AddQuad(corners, winding[face][0])
			continue
		}

		var ao [4]int
		for c := range ao {
			ao[c] = CornerAO(occ, pos, face, c)
		}
		flip := 0
		if ao[1]+ao[3] > ao[0]+ao[2] {
			flip = 1
		}
		for i, v := range faceVerts[face] {
			corners[i] = base
			corners[i].Pos = offset(o, v)
			corners[i].Packed = float32(face*16 + (3-ao[i])*2 + flip)
		}
		b.AddQuad(corners, winding[face][flip])
	}
}

// CornerAO conta quantos dos três vizinhos de um canto da face (no plano
// deslocado pela normal) são sólidos: 0 = aberto, 3 = totalmente ocluído.
// Dois lados sólidos ocluem o canto por inteiro, com ou sem a diagonal.
func CornerAO(occ Occupancy, pos util.BlockPos, face, corner int) int {
	i := corner * 2
	var solid [3]bool
	for k := range solid {
		solid[k] = occ.Solid(aoSample(pos, face, (i+k)%8))
	}
	if solid[0] && solid[2] {
		return 3
	}
	count := 0
	for _, s := range solid {
		if s {
			count++
		}
	}
	return count
}

// aoSample retorna a posição da célula k do anel de AO da face.
func aoSample(pos util.BlockPos, face, k int) util.BlockPos {
	n := faceNormals[face]
	switch {
	case face <= FaceBottom:
		r := aoY[k]
		return util.BlockPos{X: pos.X + r[0], Y: pos.Y + n[1], Z: pos.Z + r[1]}
	case face <= FaceNegX:
		r := aoX[k]
		return util.BlockPos{X: pos.X + n[0], Y: pos.Y + r[0], Z: pos.Z + r[1]}
	default:
		r := aoZ[k]
		return util.BlockPos{X: pos.X + r[0], Y: pos.Y + r[1], Z: pos.Z + n[2]}
	}
}

func elementFaceVerts(from, to [3]float32, face int) [4][3]float32 {
	x0, y0, z0 := from[0], from[1], from[2]
	x1, y1, z1 := to[0], to[1], to[2]
	switch face {
	case FaceTop:
		return [4][3]float32{{x0, y1, z0}, {x1, y1, z0}, {x1, y1, z1}, {x0, y1, z1}}
	case FaceBottom:
		return [4][3]float32{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}
	case FacePosX:
		return [4][3]float32{{x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}, {x1, y0, z1}}
	case FaceNegX:
		return [4][3]float32{{x0, y0, z0}, {x0, y1, z0}, {x0, y1, z1}, {x0, y0, z1}}
	case FaceNegZ:
		return [4][3]float32{{x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}, {x1, y0, z0}}
	default:
		return [4][3]float32{{x0, y0, z1}, {x0, y1, z1}, {x1, y1, z1}, {x1, y0, z1}}
	}
}

func addElements(b *MeshBuffer, occ Occupancy, pos util.BlockPos, d *registry.Descriptor) {
	o := origin(pos)
	for _, box := range d.Elements {
		for slot, f := range box.Faces {
			if !f.Present {
				continue
			}
			face := elementFace[slot]
			if f.CullFace && occ.Solid(neighbor(pos, face)) {
				continue
			}

			base := Vertex{
				Tex:    float32(f.Texture),
				Packed: float32(face*16 + fullBright),
				Tint:   faceTint(d, slot),
				Alpha:  d.Alpha,
			}
			var corners [4]Vertex
			for i, v := range elementFaceVerts(box.From, box.To, face) {
				corners[i] = base
				corners[i].Pos = offset(o, v)
			}
			b.AddQuad(corners, winding[face][0])
		}
	}
}
