package util

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vector3 é um alias para mgl32.Vec3 para conveniência
type Vector3 = mgl32.Vec3

// ChunkSize é a aresta de um chunk (16x16x16).
const ChunkSize = 16

// BlockPos representa a posição inteira de um voxel no mundo do Minecraft.
// X = leste/oeste, Y = vertical, Z = sul/norte
type BlockPos struct {
	X, Y, Z int32
}

// NewBlockPos cria uma nova posição.
func NewBlockPos(x, y, z int32) BlockPos {
	return BlockPos{X: x, Y: y, Z: z}
}

// Add soma duas posições.
func (p BlockPos) Add(other BlockPos) BlockPos {
	return BlockPos{
		X: p.X + other.X,
		Y: p.Y + other.Y,
		Z: p.Z + other.Z,
	}
}

// Offset desloca a posição pelos componentes informados.
func (p BlockPos) Offset(dx, dy, dz int32) BlockPos {
	return BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// String retorna a representação em string da posição.
func (p BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// ChunkPos retorna a chave do chunk que contém esta posição (shift aritmético, funciona com negativos).
func (p BlockPos) ChunkPos() ChunkPos {
	return ChunkPos{X: p.X >> 4, Y: p.Y >> 4, Z: p.Z >> 4}
}

// Local retorna a coordenada local dentro do chunk (0-15 em cada eixo).
func (p BlockPos) Local() BlockPos {
	return BlockPos{X: p.X & 15, Y: p.Y & 15, Z: p.Z & 15}
}

// Less ordena posições por Y, depois Z, depois X.
func (p BlockPos) Less(other BlockPos) bool {
	if p.Y != other.Y {
		return p.Y < other.Y
	}
	if p.Z != other.Z {
		return p.Z < other.Z
	}
	return p.X < other.X
}

// ChunkPos identifica um chunk (posição do bloco >> 4).
type ChunkPos struct {
	X, Y, Z int32
}

// Neighbor retorna o chunk vizinho deslocado.
func (c ChunkPos) Neighbor(dx, dy, dz int32) ChunkPos {
	return ChunkPos{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Origin retorna a posição do primeiro bloco do chunk.
func (c ChunkPos) Origin() BlockPos {
	return BlockPos{X: c.X * ChunkSize, Y: c.Y * ChunkSize, Z: c.Z * ChunkSize}
}

// String retorna a representação em string do chunk.
func (c ChunkPos) String() string {
	return fmt.Sprintf("chunk(%d, %d, %d)", c.X, c.Y, c.Z)
}
