// Package tint calcula a cor de bioma aplicada a grama e folhagem.
package tint

import (
	"image"
	_ "image/png"
	"io/fs"
	"log"
	"math"
	"path"

	"Blockscope/shared/util"
)

// Kind identifica qual colormap tinge um bloco.
type Kind uint8

const (
	None Kind = iota
	Grass
	Foliage
)

func (k Kind) String() string {
	switch k {
	case Grass:
		return "grass"
	case Foliage:
		return "foliage"
	default:
		return "none"
	}
}

// RGB é uma cor com componentes em [0,1].
type RGB [3]float32

// White é a cor neutra (sem tinta).
var White = RGB{1, 1, 1}

// FromBytes converte componentes 0..255.
func FromBytes(r, g, b uint8) RGB {
	return RGB{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}

type climate struct {
	temperature float64
	downfall    float64
}

var defaultClimate = climate{0.8, 0.4}

var biomeClimate = map[string]climate{
	"minecraft:ocean":            {0.5, 0.5},
	"minecraft:plains":           {0.8, 0.4},
	"minecraft:desert":           {2.0, 0.0},
	"minecraft:mountains":        {0.2, 0.3},
	"minecraft:forest":           {0.7, 0.8},
	"minecraft:taiga":            {0.25, 0.8},
	"minecraft:swamp":            {0.8, 0.9},
	"minecraft:river":            {0.5, 0.5},
	"minecraft:frozen_ocean":     {0.0, 0.5},
	"minecraft:frozen_river":     {0.0, 0.5},
	"minecraft:snowy_tundra":     {0.0, 0.5},
	"minecraft:snowy_mountains":  {0.0, 0.5},
	"minecraft:mushroom_fields":  {0.9, 1.0},
	"minecraft:beach":            {0.8, 0.4},
	"minecraft:wooded_hills":     {0.7, 0.8},
	"minecraft:birch_forest":     {0.6, 0.6},
	"minecraft:dark_forest":      {0.7, 0.8},
	"minecraft:snowy_taiga":      {-0.5, 0.4},
	"minecraft:giant_tree_taiga": {0.3, 0.8},
	"minecraft:savanna":          {2.0, 0.0},
	"minecraft:savanna_plateau":  {2.0, 0.0},
	"minecraft:badlands":         {2.0, 0.0},
	"minecraft:jungle":           {0.95, 0.9},
	"minecraft:bamboo_jungle":    {0.95, 0.9},
	"minecraft:warm_ocean":       {0.5, 0.5},
	"minecraft:lukewarm_ocean":   {0.5, 0.5},
	"minecraft:cold_ocean":       {0.5, 0.5},
	"minecraft:deep_ocean":       {0.5, 0.5},
	"minecraft:sunflower_plains": {0.8, 0.4},
	"minecraft:flower_forest":    {0.7, 0.8},
}

var foliageTinted = map[string]bool{
	"minecraft:oak_leaves":      true,
	"minecraft:jungle_leaves":   true,
	"minecraft:acacia_leaves":   true,
	"minecraft:dark_oak_leaves": true,
}

var hardcodedLeaves = map[string]RGB{
	"minecraft:birch_leaves":  FromBytes(128, 167, 85),
	"minecraft:spruce_leaves": FromBytes(97, 153, 97),
}

var grassPlants = map[string]bool{
	"minecraft:short_grass": true,
	"minecraft:tall_grass":  true,
	"minecraft:grass":       true,
}

// ColormapCoords retorna o pixel do colormap 256x256 para um bioma.
// Biomas desconhecidos usam o clima padrão.
func ColormapCoords(biome string) (x, y int) {
	c, ok := biomeClimate[biome]
	if !ok {
		c = defaultClimate
	}
	t := util.Clamp01(c.temperature)
	d := util.Clamp01(c.downfall) * t

	x = util.Clamp(int(math.Round(255*(1-t))), 0, 255)
	y = util.Clamp(int(math.Round(255*(1-d))), 0, 255)
	return x, y
}

// KindFor classifica a tinta de um bloco a partir do modelo.
func KindFor(blockID string, needsTint bool) Kind {
	if !needsTint {
		return None
	}
	if foliageTinted[blockID] {
		return Foliage
	}
	return Grass
}

// Resolver amostra os colormaps de grama e folhagem.
type Resolver struct {
	grass   image.Image
	foliage image.Image
}

// NewResolver carrega textures/colormap/{grass,foliage}.png. Um colormap
// ausente não é erro: as consultas correspondentes retornam branco.
func NewResolver(fsys fs.FS) *Resolver {
	return &Resolver{
		grass:   loadColormap(fsys, "grass"),
		foliage: loadColormap(fsys, "foliage"),
	}
}

func loadColormap(fsys fs.FS, name string) image.Image {
	p := path.Join("textures", "colormap", name+".png")
	f, err := fsys.Open(p)
	if err != nil {
		log.Printf("[Tinta] Colormap %s indisponível: %v", name, err)
		return nil
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		log.Printf("[Tinta] Erro ao decodificar %s: %v", p, err)
		return nil
	}
	return img
}

// Color retorna a cor de tinta de um bloco no bioma, com componentes em [0,1].
func (r *Resolver) Color(blockID string, kind Kind, biome string) RGB {
	if c, ok := hardcodedLeaves[blockID]; ok {
		return c
	}
	if grassPlants[blockID] {
		return sample(r.grass, biome)
	}
	switch kind {
	case Foliage:
		return sample(r.foliage, biome)
	case Grass:
		return sample(r.grass, biome)
	default:
		return White
	}
}

// GrassColor amostra o colormap de grama diretamente (usado no bake da lateral da grama).
func (r *Resolver) GrassColor(biome string) RGB {
	return sample(r.grass, biome)
}

func sample(img image.Image, biome string) RGB {
	if img == nil {
		return White
	}
	x, y := ColormapCoords(biome)
	b := img.Bounds()
	px := util.Clamp(b.Min.X+x, b.Min.X, b.Max.X-1)
	py := util.Clamp(b.Min.Y+y, b.Min.Y, b.Max.Y-1)

	cr, cg, cb, _ := img.At(px, py).RGBA()
	return FromBytes(uint8(cr>>8), uint8(cg>>8), uint8(cb>>8))
}
