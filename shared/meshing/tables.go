package meshing

import "Blockscope/shared/model"

// Ids de face do mesher (diferente da ordem de faces do modelo).
const (
	FaceTop = iota
	FaceBottom
	FacePosX // leste
	FaceNegX // oeste
	FaceNegZ // norte
	FacePosZ // sul
)

// Deslocamento do vizinho por face.
var faceNormals = [6][3]int32{
	{0, 1, 0},
	{0, -1, 0},
	{1, 0, 0},
	{-1, 0, 0},
	{0, 0, -1},
	{0, 0, 1},
}

// descriptorSlot mapeia a face do mesher para o slot do descritor (ordem do modelo).
var descriptorSlot = [6]int{
	FaceTop:    model.FaceUp,
	FaceBottom: model.FaceDown,
	FacePosX:   model.FaceEast,
	FaceNegX:   model.FaceWest,
	FaceNegZ:   model.FaceNorth,
	FacePosZ:   model.FaceSouth,
}

// elementFace mapeia a face do modelo para a face do mesher.
var elementFace = [6]int{
	model.FaceUp:    FaceTop,
	model.FaceDown:  FaceBottom,
	model.FaceNorth: FaceNegZ,
	model.FaceSouth: FacePosZ,
	model.FaceWest:  FaceNegX,
	model.FaceEast:  FacePosX,
}

// Cantos do quad por face, em unidades de bloco.
var faceVerts = [6][4][3]float32{
	{{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}},
	{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	{{0, 0, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1}},
	{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
	{{0, 0, 1}, {0, 1, 1}, {1, 1, 1}, {1, 0, 1}},
}

// Anéis de 8 vizinhos no plano da face, usados pelo AO. O canto c de
// faceVerts usa ring[2c] e ring[(2c+2)%8] como lados e ring[2c+1] como diagonal.
var (
	aoY = [8][2]int32{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}} // (x, z)
	aoX = [8][2]int32{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}} // (y, z)
	aoZ = [8][2]int32{{0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}} // (x, y)
)

// winding[face][flip] lista os cantos dos dois triângulos.
var winding = [6][2][6]int{
	{{0, 3, 2, 0, 2, 1}, {1, 0, 3, 1, 3, 2}},
	{{0, 2, 3, 0, 1, 2}, {1, 3, 0, 1, 2, 3}},
	{{0, 1, 2, 0, 2, 3}, {3, 0, 1, 3, 1, 2}},
	{{0, 2, 1, 0, 3, 2}, {3, 1, 0, 3, 2, 1}},
	{{0, 1, 2, 0, 2, 3}, {3, 0, 1, 3, 1, 2}},
	{{0, 2, 1, 0, 3, 2}, {3, 1, 0, 3, 2, 1}},
}

const (
	crossIn  = 0.854
	crossOut = 1 - crossIn
)

// Quatro planos diagonais das plantas em X.
var crossPlanes = [4][4][3]float32{
	{{crossOut, 0, crossOut}, {crossOut, 1, crossOut}, {crossIn, 1, crossIn}, {crossIn, 0, crossIn}},
	{{crossIn, 0, crossIn}, {crossIn, 1, crossIn}, {crossOut, 1, crossOut}, {crossOut, 0, crossOut}},
	{{crossIn, 0, crossOut}, {crossIn, 1, crossOut}, {crossOut, 1, crossIn}, {crossOut, 0, crossIn}},
	{{crossOut, 0, crossIn}, {crossOut, 1, crossIn}, {crossIn, 1, crossOut}, {crossIn, 0, crossOut}},
}

var crossOrder = [6]int{0, 1, 2, 0, 2, 3}

// Valores de packed sem AO: ao=3 (claro), flip=0.
const fullBright = 3 * 2
