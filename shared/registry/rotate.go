package registry

import "Blockscope/shared/model"

// Mapas de rótulo de face: a face que era a chave passa a ser o valor.
var (
	xFaceRot180 = faceMap{model.FaceUp: model.FaceDown, model.FaceDown: model.FaceUp, model.FaceNorth: model.FaceSouth, model.FaceSouth: model.FaceNorth}

	yFaceRot = map[int]faceMap{
		90:  {model.FaceNorth: model.FaceEast, model.FaceEast: model.FaceSouth, model.FaceSouth: model.FaceWest, model.FaceWest: model.FaceNorth},
		180: {model.FaceNorth: model.FaceSouth, model.FaceSouth: model.FaceNorth, model.FaceEast: model.FaceWest, model.FaceWest: model.FaceEast},
		270: {model.FaceNorth: model.FaceWest, model.FaceWest: model.FaceSouth, model.FaceSouth: model.FaceEast, model.FaceEast: model.FaceNorth},
	}
)

type faceMap map[int]int

func (m faceMap) apply(faces [6]FaceRef) [6]FaceRef {
	var out [6]FaceRef
	for i, f := range faces {
		if j, ok := m[i]; ok {
			out[j] = f
		} else {
			out[i] = f
		}
	}
	return out
}

func normalizeAngle(deg int) int {
	return ((deg % 360) + 360) % 360
}

// rotateBoxes aplica a rotação X (só 180) e depois Y (90/180/270) do blockstate.
func rotateBoxes(boxes []Box, rotX, rotY int) []Box {
	rotX, rotY = normalizeAngle(rotX), normalizeAngle(rotY)
	if rotX != 180 && rotY == 0 {
		return boxes
	}

	out := make([]Box, len(boxes))
	for i, b := range boxes {
		if rotX == 180 {
			b = Box{
				From:  [3]float32{b.From[0], 1 - b.To[1], 1 - b.To[2]},
				To:    [3]float32{b.To[0], 1 - b.From[1], 1 - b.From[2]},
				Faces: xFaceRot180.apply(b.Faces),
			}
		}

		x0, y0, z0 := b.From[0], b.From[1], b.From[2]
		x1, y1, z1 := b.To[0], b.To[1], b.To[2]
		switch rotY {
		case 90:
			b.From = [3]float32{1 - z1, y0, x0}
			b.To = [3]float32{1 - z0, y1, x1}
		case 180:
			b.From = [3]float32{1 - x1, y0, 1 - z1}
			b.To = [3]float32{1 - x0, y1, 1 - z0}
		case 270:
			b.From = [3]float32{z0, y0, 1 - x1}
			b.To = [3]float32{z1, y1, 1 - x0}
		}
		if m, ok := yFaceRot[rotY]; ok {
			b.Faces = m.apply(b.Faces)
		}
		out[i] = b
	}
	return out
}
