package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"log"
	"sort"
	"unsafe"

	"Blockscope/shared/meshing"
	"Blockscope/shared/util"
	"Blockscope/shared/world"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer desenha os chunks do mundo com o shader de atlas.
type Renderer struct {
	Shader rl.Shader
	Atlas  rl.Texture2D
	layers int

	timeLoc   int32
	camPosLoc int32
	layersLoc int32

	Wireframe bool

	uploads  int
	releases int
}

// NewRenderer carrega o shader de chunks. Exige janela aberta.
func NewRenderer() *Renderer {
	r := &Renderer{}
	if !rl.IsWindowReady() {
		log.Printf("[Renderer] AVISO: janela não pronta, shader não carregado")
		return r
	}

	r.Shader = rl.LoadShaderFromMemory(chunkVertexShader, chunkFragmentShader)
	// Locs é um ponteiro bruto (*int32) para o array de localizações em C
	locs := unsafe.Slice(r.Shader.Locs, 32)
	locs[rl.ShaderLocMapDiffuse] = rl.GetShaderLocation(r.Shader, "texture0")
	locs[rl.ShaderLocColorDiffuse] = rl.GetShaderLocation(r.Shader, "colDiffuse")

	r.timeLoc = rl.GetShaderLocation(r.Shader, "time")
	r.camPosLoc = rl.GetShaderLocation(r.Shader, "camPos")
	r.layersLoc = rl.GetShaderLocation(r.Shader, "atlasLayers")
	return r
}

// LoadAtlas sobe o atlas como uma faixa vertical de camadas 16x16.
// data vem de atlas.Build (RGBA8, cada camada com origem embaixo).
func (r *Renderer) LoadAtlas(layers int, data []byte) {
	if r.Atlas.ID != 0 {
		rl.UnloadTexture(r.Atlas)
	}
	const tile = 16
	img := rl.NewImage(data, tile, int32(tile*layers), 1, rl.UncompressedR8g8b8a8)
	r.Atlas = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.Atlas, rl.FilterPoint)
	rl.SetTextureWrap(r.Atlas, rl.WrapClamp)
	r.layers = layers

	rl.SetShaderValue(r.Shader, r.layersLoc, []float32{float32(layers)}, rl.ShaderUniformFloat)
	log.Printf("[Renderer] Atlas: %d camadas (%dx%d)", layers, tile, tile*layers)
}

// chunkModel é o buffer de GPU de um chunk.
type chunkModel struct {
	model    rl.Model
	vertices int
	center   rl.Vector3
	owner    *Renderer
	released bool
}

func (m *chunkModel) VertexCount() int { return m.vertices }

func (m *chunkModel) Release() {
	if m.released {
		return
	}
	m.released = true
	rl.UnloadModel(m.model)
	m.owner.releases++
}

// Upload converte o layout de 9 floats em um rl.Mesh e envia para a GPU.
func (r *Renderer) Upload(vertices []float32) world.GPUBuffer {
	mesh, center := r.buildMesh(vertices)
	rl.UploadMesh(&mesh, false)
	r.freeMeshRAM(&mesh)

	m := &chunkModel{
		model:    rl.LoadModelFromMesh(mesh),
		vertices: int(mesh.VertexCount),
		center:   center,
		owner:    r,
	}
	if m.model.MaterialCount > 0 {
		materials := unsafe.Slice(m.model.Materials, m.model.MaterialCount)
		materials[0].Shader = r.Shader
		rl.SetMaterialTexture(&materials[0], rl.MapDiffuse, r.Atlas)
	}
	r.uploads++
	return m
}

// Live retorna quantos modelos de chunk estão na GPU.
func (r *Renderer) Live() int { return r.uploads - r.releases }

func (r *Renderer) buildMesh(data []float32) (rl.Mesh, rl.Vector3) {
	n := len(data) / meshing.FloatsPerVertex
	positions := make([]float32, 0, n*3)
	texcoords := make([]float32, 0, n*2)
	colors := make([]uint8, 0, n*4)

	var lo, hi util.Vector3
	for i := 0; i < n; i++ {
		v := data[i*meshing.FloatsPerVertex : (i+1)*meshing.FloatsPerVertex]
		positions = append(positions, v[0], v[1], v[2])
		texcoords = append(texcoords, v[3], v[4])
		colors = append(colors, toByte(v[5]), toByte(v[6]), toByte(v[7]), toByte(v[8]))

		p := util.Vector3{v[0], v[1], v[2]}
		if i == 0 {
			lo, hi = p, p
			continue
		}
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}

	var mesh rl.Mesh
	mesh.VertexCount = int32(n)
	mesh.TriangleCount = int32(n / 3)
	if n > 0 {
		mesh.Vertices = (*float32)(r.copyToC(unsafe.Pointer(&positions[0]), len(positions)*4))
		mesh.Texcoords = (*float32)(r.copyToC(unsafe.Pointer(&texcoords[0]), len(texcoords)*4))
		mesh.Colors = (*uint8)(r.copyToC(unsafe.Pointer(&colors[0]), len(colors)))
	}
	c := lo.Add(hi).Mul(0.5)
	return mesh, rl.Vector3{X: c[0], Y: c[1], Z: c[2]}
}

func toByte(f float32) uint8 {
	return uint8(util.Clamp(f, 0, 1)*255 + 0.5)
}

func (r *Renderer) copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// freeMeshRAM libera a memória principal (C) da malha depois do upload.
func (r *Renderer) freeMeshRAM(mesh *rl.Mesh) {
	if mesh.Vertices != nil {
		C.free(unsafe.Pointer(mesh.Vertices))
		mesh.Vertices = nil
	}
	if mesh.Texcoords != nil {
		C.free(unsafe.Pointer(mesh.Texcoords))
		mesh.Texcoords = nil
	}
	if mesh.Colors != nil {
		C.free(unsafe.Pointer(mesh.Colors))
		mesh.Colors = nil
	}
}

// Draw desenha o mundo em dois passes: opacos e depois transparentes
// (de trás para frente, sem escrever profundidade).
func (r *Renderer) Draw(cam rl.Camera3D, w *world.World) {
	camPos := cam.Position
	if r.Shader.ID != 0 {
		rl.SetShaderValue(r.Shader, r.timeLoc, []float32{float32(rl.GetTime())}, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.Shader, r.camPosLoc, []float32{camPos.X, camPos.Y, camPos.Z}, rl.ShaderUniformVec3)
	}

	// PASS 1: OPACOS
	var transparent []*chunkModel
	w.Chunks(func(c *world.Chunk) {
		if m, ok := c.Opaque.(*chunkModel); ok {
			r.drawModel(m)
		}
		if m, ok := c.Transparent.(*chunkModel); ok {
			transparent = append(transparent, m)
		}
	})

	// PASS 2: TRANSPARENTES
	cp := util.Vector3{camPos.X, camPos.Y, camPos.Z}
	sort.Slice(transparent, func(i, j int) bool {
		return distSq(cp, transparent[i].center) > distSq(cp, transparent[j].center)
	})
	rl.BeginBlendMode(rl.BlendAlpha)
	rl.DisableDepthMask()
	for _, m := range transparent {
		r.drawModel(m)
	}
	rl.EnableDepthMask()
	rl.EndBlendMode()
}

func distSq(a util.Vector3, b rl.Vector3) float32 {
	return util.DistSq(a, util.Vector3{b.X, b.Y, b.Z})
}

func (r *Renderer) drawModel(m *chunkModel) {
	if r.Wireframe {
		rl.DrawModelWires(m.model, rl.Vector3{}, 1.0, rl.White)
		return
	}
	rl.DrawModel(m.model, rl.Vector3{}, 1.0, rl.White)
}

// DrawPlayer desenha o marcador do jogador gravado (0.6 x 1.8 x 0.6, pés em pos).
func (r *Renderer) DrawPlayer(pos util.Vector3) {
	center := rl.Vector3{X: pos[0], Y: pos[1] + 0.9, Z: pos[2]}
	rl.DrawCube(center, 0.6, 1.8, 0.6, rl.Red)
	rl.DrawCubeWires(center, 0.61, 1.81, 0.61, rl.Maroon)
}

// Unload libera shader e atlas. Os modelos de chunk são liberados pelo mundo.
func (r *Renderer) Unload() {
	if r.Atlas.ID != 0 {
		rl.UnloadTexture(r.Atlas)
		r.Atlas = rl.Texture2D{}
	}
	if r.Shader.ID != 0 {
		rl.UnloadShader(r.Shader)
		r.Shader = rl.Shader{}
	}
}
