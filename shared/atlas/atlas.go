// Package atlas monta o array de texturas 16x16 usado por todos os blocos.
// A camada 0 é sempre o xadrez magenta/preto de textura ausente.
package atlas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"io/fs"
	"log"
	"path"

	"github.com/nfnt/resize"

	"Blockscope/shared/tint"
)

// TileSize é o lado de cada camada em pixels.
const TileSize = 16

// Missing é o índice da textura de fallback.
const Missing = 0

type cropKey struct {
	name string
	uv   [4]int
	rot  int
}

type rotKey struct {
	layer int
	rot   int
}

// Atlas é append-only: um índice atribuído nunca muda.
type Atlas struct {
	fsys      fs.FS
	layers    []*image.NRGBA
	index     map[string]int
	crops     map[cropKey]int
	rotations map[rotKey]int
	frozen    bool
}

// New cria um atlas lendo PNGs de textures/block/ na raiz de assets.
func New(fsys fs.FS) *Atlas {
	a := &Atlas{
		fsys:      fsys,
		index:     make(map[string]int),
		crops:     make(map[cropKey]int),
		rotations: make(map[rotKey]int),
	}
	a.layers = append(a.layers, checkerboard())
	a.index["__missing__"] = Missing
	return a
}

func checkerboard() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	magenta := color.NRGBA{255, 0, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetNRGBA(x, y, magenta)
			} else {
				img.SetNRGBA(x, y, black)
			}
		}
	}
	return img
}

// Len retorna o número de camadas.
func (a *Atlas) Len() int { return len(a.layers) }

// Layer retorna a imagem de uma camada, ou nil se o índice for inválido.
func (a *Atlas) Layer(i int) *image.NRGBA {
	if i < 0 || i >= len(a.layers) {
		return nil
	}
	return a.layers[i]
}

// Frozen indica se Build já foi chamado.
func (a *Atlas) Frozen() bool { return a.frozen }

// append registra uma nova camada; com o atlas congelado retorna Missing.
func (a *Atlas) append(key string, img *image.NRGBA) int {
	if a.frozen {
		log.Printf("[Atlas] Atlas congelado, textura nova ignorada: %s", key)
		return Missing
	}
	a.layers = append(a.layers, img)
	return len(a.layers) - 1
}

// Texture retorna o índice da textura textures/block/<name>.png, carregando
// sob demanda. Qualquer falha resulta em Missing, memorizado.
func (a *Atlas) Texture(name string) int {
	if idx, ok := a.index[name]; ok {
		return idx
	}

	img, err := a.loadTile(name)
	if err != nil {
		log.Printf("[Atlas] Textura ausente %s: %v", name, err)
		a.index[name] = Missing
		return Missing
	}

	idx := a.append(name, img)
	a.index[name] = idx
	return idx
}

func (a *Atlas) loadTile(name string) (*image.NRGBA, error) {
	src, err := a.decode(path.Join("textures", "block", name+".png"))
	if err != nil {
		base := path.Base(name)
		if base == name {
			return nil, err
		}
		if src, err = a.decode(path.Join("textures", "block", base+".png")); err != nil {
			return nil, err
		}
	}

	b := src.Bounds()
	if b.Dy() > TileSize {
		// Texturas animadas: só o primeiro quadro
		frame := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
		draw.Draw(frame, frame.Bounds(), src, b.Min, draw.Src)
		return frame, nil
	}
	return fit(src), nil
}

func (a *Atlas) decode(p string) (image.Image, error) {
	f, err := a.fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("falha ao decodificar %s: %w", p, err)
	}
	return img, nil
}

// fit converte para NRGBA 16x16, reescalando por vizinho mais próximo se preciso.
func fit(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if b.Dx() != TileSize || b.Dy() != TileSize {
		src = resize.Resize(TileSize, TileSize, src, resize.NearestNeighbor)
		b = src.Bounds()
	}
	dst := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// UVCropped retorna uma camada com o recorte uv [u1 v1 u2 v2] (texels 0..16)
// da textura, girada no sentido horário e reescalada para 16x16.
func (a *Atlas) UVCropped(name string, uv [4]float64, rotation int) int {
	u1, v1, u2, v2 := int(uv[0]), int(uv[1]), int(uv[2]), int(uv[3])
	if u1 > u2 {
		u1, u2 = u2, u1
	}
	if v1 > v2 {
		v1, v2 = v2, v1
	}
	rotation = normalizeRotation(rotation)

	if u1 == 0 && v1 == 0 && u2 == TileSize && v2 == TileSize && rotation == 0 {
		return a.Texture(name)
	}

	key := cropKey{name: name, uv: [4]int{u1, v1, u2, v2}, rot: rotation}
	if idx, ok := a.crops[key]; ok {
		return idx
	}

	base := a.Texture(name)
	if base == Missing {
		return Missing
	}

	w := max(1, u2-u1)
	h := max(1, v2-v1)
	cropped := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(cropped, cropped.Bounds(), a.layers[base], image.Pt(u1, v1), draw.Src)

	idx := a.append(fmt.Sprintf("%s__uv%d_%d_%d_%d_r%d", name, u1, v1, u2, v2, rotation), fit(rotate(cropped, rotation)))
	a.crops[key] = idx
	return idx
}

// Rotated retorna uma cópia girada (horário) de uma camada existente.
func (a *Atlas) Rotated(layer, rotation int) int {
	rotation = normalizeRotation(rotation)
	if rotation == 0 || layer == Missing {
		return layer
	}
	if layer < 0 || layer >= len(a.layers) {
		return Missing
	}

	key := rotKey{layer: layer, rot: rotation}
	if idx, ok := a.rotations[key]; ok {
		return idx
	}

	idx := a.append(fmt.Sprintf("__bsrot_%d_r%d", layer, rotation), fit(rotate(a.layers[layer], rotation)))
	a.rotations[key] = idx
	return idx
}

// BakedGrassKey é a chave da lateral de grama pré-tingida para um bioma.
func BakedGrassKey(biome string) string {
	return "__grass_block_side_baked_" + biome
}

// BakeGrassSide compõe grass_block_side_overlay tingido sobre grass_block_side.
// Refazer o bake para o mesmo bioma substitui a camada no lugar.
// Retorna false se o overlay não existir.
func (a *Atlas) BakeGrassSide(biome string, c tint.RGB) (int, bool) {
	key := BakedGrassKey(biome)
	existing, exists := a.index[key]
	if a.frozen {
		if !exists {
			log.Printf("[Atlas] Atlas congelado, bake de grama ignorado: %s", biome)
		}
		return existing, exists
	}

	overlaySrc, err := a.decode(path.Join("textures", "block", "grass_block_side_overlay.png"))
	if err != nil {
		log.Printf("[Atlas] Overlay da grama indisponível: %v", err)
		return Missing, false
	}
	overlay := fit(overlaySrc)

	for i := 0; i < len(overlay.Pix); i += 4 {
		if overlay.Pix[i+3] == 0 {
			continue
		}
		overlay.Pix[i] = uint8(float32(overlay.Pix[i]) * c[0])
		overlay.Pix[i+1] = uint8(float32(overlay.Pix[i+1]) * c[1])
		overlay.Pix[i+2] = uint8(float32(overlay.Pix[i+2]) * c[2])
	}

	base := a.layers[a.Texture("grass_block_side")]
	baked := image.NewNRGBA(base.Bounds())
	draw.Draw(baked, baked.Bounds(), base, image.Point{}, draw.Src)
	draw.Draw(baked, baked.Bounds(), overlay, image.Point{}, draw.Over)

	if exists {
		a.layers[existing] = baked
		return existing, true
	}
	idx := a.append(key, baked)
	a.index[key] = idx
	return idx, true
}

// Build serializa todas as camadas em RGBA8 (linhas invertidas verticalmente,
// origem embaixo) e congela o atlas.
func (a *Atlas) Build() (layers int, data []byte) {
	a.frozen = true

	const rowBytes = TileSize * 4
	data = make([]byte, 0, len(a.layers)*TileSize*rowBytes)
	for _, img := range a.layers {
		for y := TileSize - 1; y >= 0; y-- {
			off := y * img.Stride
			data = append(data, img.Pix[off:off+rowBytes]...)
		}
	}
	return len(a.layers), data
}

func normalizeRotation(rotation int) int {
	rotation = ((rotation % 360) + 360) % 360
	switch rotation {
	case 90, 180, 270:
		return rotation
	default:
		return 0
	}
}

// rotate gira a imagem no sentido horário em múltiplos de 90 graus.
func rotate(src *image.NRGBA, rotation int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.NRGBA
	switch rotation {
	case 90, 270:
		dst = image.NewNRGBA(image.Rect(0, 0, h, w))
	case 180:
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	default:
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			switch rotation {
			case 90:
				dst.SetNRGBA(h-1-y, x, c)
			case 180:
				dst.SetNRGBA(w-1-x, h-1-y, c)
			case 270:
				dst.SetNRGBA(y, w-1-x, c)
			}
		}
	}
	return dst
}
