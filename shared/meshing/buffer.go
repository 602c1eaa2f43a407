package meshing

import (
	"sync"

	"Blockscope/shared/tint"
)

// FloatsPerVertex é o layout: x, y, z, tex, packed, r, g, b, alpha.
const FloatsPerVertex = 9

// Vertex é um vértice da malha de chunk.
type Vertex struct {
	Pos    [3]float32
	Tex    float32
	Packed float32
	Tint   tint.RGB
	Alpha  float32
}

// Pool global para reciclar MeshBuffers e evitar alocação excessiva (GC Pressure)
var meshBufferPool = sync.Pool{
	New: func() interface{} {
		return &MeshBuffer{Data: make([]float32, 0, 4096)}
	},
}

// GetMeshBuffer aloca ou recicla um buffer vazio para meshing.
func GetMeshBuffer() *MeshBuffer {
	return meshBufferPool.Get().(*MeshBuffer)
}

// PutMeshBuffer zera o buffer e devolve a memória para o Pool.
func PutMeshBuffer(b *MeshBuffer) {
	if b == nil {
		return
	}
	b.Data = b.Data[:0]
	meshBufferPool.Put(b)
}

// MeshBuffer acumula vértices não indexados.
type MeshBuffer struct {
	Data []float32
}

// reserve garante espaço para n floats, dobrando a capacidade quando falta.
func (b *MeshBuffer) reserve(n int) {
	if cap(b.Data)-len(b.Data) >= n {
		return
	}
	newCap := max(cap(b.Data)*2, len(b.Data)+n)
	grown := make([]float32, len(b.Data), newCap)
	copy(grown, b.Data)
	b.Data = grown
}

func (b *MeshBuffer) addVertex(v Vertex) {
	b.Data = append(b.Data,
		v.Pos[0], v.Pos[1], v.Pos[2],
		v.Tex, v.Packed,
		v.Tint[0], v.Tint[1], v.Tint[2],
		v.Alpha,
	)
}

// AddQuad emite os dois triângulos de um quad na ordem informada.
func (b *MeshBuffer) AddQuad(corners [4]Vertex, order [6]int) {
	b.reserve(6 * FloatsPerVertex)
	for _, i := range order {
		b.addVertex(corners[i])
	}
}

// VertexCount retorna o número de vértices no buffer.
func (b *MeshBuffer) VertexCount() int {
	return len(b.Data) / FloatsPerVertex
}

// Detach copia os dados para uma fatia própria (o buffer volta ao pool depois).
func (b *MeshBuffer) Detach() []float32 {
	if len(b.Data) == 0 {
		return nil
	}
	out := make([]float32, len(b.Data))
	copy(out, b.Data)
	return out
}
