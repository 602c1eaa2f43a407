// Package registry converte ids de bloco (e propriedades de estado) em
// descritores de renderização, registrando modelos, texturas e tinta sob demanda.
package registry

import (
	"errors"
	"io/fs"
	"log"
	"path"

	"Blockscope/shared/atlas"
	"Blockscope/shared/model"
	"Blockscope/shared/tint"
)

// RenderType define como o mesher gera a geometria.
type RenderType uint8

const (
	RenderCube RenderType = iota
	RenderCross
	RenderElements
)

func (r RenderType) String() string {
	switch r {
	case RenderCross:
		return "cross"
	case RenderElements:
		return "elements"
	default:
		return "cube"
	}
}

// MaterialKind é a classificação fixada no registro; o mesher decide por ela.
type MaterialKind uint8

const (
	MaterialSolid MaterialKind = iota
	MaterialLiquid
	MaterialLeaf
	MaterialCross
	MaterialShaped
)

func (m MaterialKind) String() string {
	switch m {
	case MaterialLiquid:
		return "liquid"
	case MaterialLeaf:
		return "leaf"
	case MaterialCross:
		return "cross"
	case MaterialShaped:
		return "shaped"
	default:
		return "solid"
	}
}

// FaceRef é uma face de caixa: camada do atlas e se tem cullface.
type FaceRef struct {
	Texture  int
	CullFace bool
	Present  bool
}

// Box é uma caixa de elemento em unidades de bloco (0..1).
// Faces segue a ordem de model.FaceNames.
type Box struct {
	From  [3]float32
	To    [3]float32
	Faces [6]FaceRef
}

// Descriptor descreve como desenhar um bloco. Imutável depois de registrado.
type Descriptor struct {
	Key          VariantKey
	FaceTextures [6]int // up, down, north, south, west, east
	RenderType   RenderType
	Material     MaterialKind
	FullOpaque   bool
	TintKind     tint.Kind
	TintFaces    [6]bool
	Tint         tint.RGB
	Elements     []Box
	Alpha        float32
}

const (
	water      BlockID = "minecraft:water"
	lava       BlockID = "minecraft:lava"
	grassBlock BlockID = "minecraft:grass_block"
)

var modelSuffixes = []string{"_bottom", "_floor0", "_0"}

// Registry mantém os descritores da sessão.
type Registry struct {
	fsys        fs.FS
	models      *model.Resolver
	atlas       *atlas.Atlas
	tints       *tint.Resolver
	descs       map[VariantKey]*Descriptor
	aliases     map[VariantKey]VariantKey // variantes que caíram no bloco base
	blockstates map[string]*blockstate    // nil = sem blockstate utilizável
}

// New cria um registro sobre a raiz de assets, com resolver de modelos e
// colormaps próprios e o atlas informado.
func New(fsys fs.FS, a *atlas.Atlas) *Registry {
	return NewWith(fsys, model.NewResolver(fsys), a, tint.NewResolver(fsys))
}

// NewWith cria um registro com dependências explícitas.
func NewWith(fsys fs.FS, models *model.Resolver, a *atlas.Atlas, tints *tint.Resolver) *Registry {
	return &Registry{
		fsys:        fsys,
		models:      models,
		atlas:       a,
		tints:       tints,
		descs:       make(map[VariantKey]*Descriptor),
		aliases:     make(map[VariantKey]VariantKey),
		blockstates: make(map[string]*blockstate),
	}
}

// Atlas retorna o atlas usado pelo registro.
func (r *Registry) Atlas() *atlas.Atlas { return r.atlas }

// Len retorna o número de descritores registrados.
func (r *Registry) Len() int { return len(r.descs) }

// Lookup retorna o descritor de uma chave já registrada.
func (r *Registry) Lookup(key VariantKey) (*Descriptor, bool) {
	if alias, ok := r.aliases[key]; ok {
		key = alias
	}
	d, ok := r.descs[key]
	return d, ok
}

// RegisterBlock registra o bloco base (idempotente) e retorna seu descritor.
func (r *Registry) RegisterBlock(id BlockID, biome string) *Descriptor {
	key := BaseKey(id)
	if d, ok := r.descs[key]; ok {
		return d
	}

	bare := model.Bare(string(id))
	m, ok := r.models.Resolve(bare)
	for _, suffix := range modelSuffixes {
		if ok {
			break
		}
		m, ok = r.models.Resolve(bare + suffix)
	}

	var d *Descriptor
	if !ok {
		d = r.flatCube(key, bare)
	} else {
		d = r.fromModel(key, bare, m, biome)
	}

	switch id {
	case water:
		d.Material = MaterialLiquid
		d.FullOpaque = false
		d.Alpha = 0.5
	case lava:
		d.Material = MaterialLiquid
	}
	d.Tint = r.tints.Color(string(id), d.TintKind, biome)

	r.descs[key] = d
	return d
}

func (r *Registry) flatCube(key VariantKey, bare string) *Descriptor {
	tex := r.atlas.Texture(bare)
	return &Descriptor{
		Key:          key,
		FaceTextures: [6]int{tex, tex, tex, tex, tex, tex},
		RenderType:   RenderCube,
		Material:     MaterialSolid,
		FullOpaque:   true,
		TintKind:     tint.None,
		Alpha:        1,
	}
}

func (r *Registry) fromModel(key VariantKey, bare string, m *model.Model, biome string) *Descriptor {
	id := key.Block
	d := &Descriptor{Key: key, Alpha: 1}

	isCross := m.IsCross()
	if !isCross {
		d.Elements = r.extractBoxes(m)
	}

	switch {
	case d.Elements != nil:
		d.RenderType = RenderElements
		d.Material = MaterialShaped
	case isCross:
		d.RenderType = RenderCross
		d.Material = MaterialCross
	default:
		d.RenderType = RenderCube
		d.Material = MaterialSolid
	}
	if m.IsLeaves() && d.RenderType == RenderCube {
		d.Material = MaterialLeaf
	}

	d.FullOpaque = !isCross && d.Elements == nil && !m.IsLeaves()

	needsTint := m.NeedsTint()
	d.TintKind = tint.KindFor(string(id), needsTint)
	switch {
	case id == grassBlock:
		d.TintFaces[model.FaceUp] = true
	case needsTint:
		d.TintFaces = [6]bool{true, true, true, true, true, true}
	}

	names := m.FaceTextures()
	if names == [6]string{} {
		tex := r.atlas.Texture(bare)
		d.FaceTextures = [6]int{tex, tex, tex, tex, tex, tex}
		return d
	}
	for i, name := range names {
		if name != "" {
			d.FaceTextures[i] = r.atlas.Texture(name)
		}
	}

	if id == grassBlock {
		c := r.tints.Color(string(id), d.TintKind, biome)
		if baked, ok := r.atlas.BakeGrassSide(biome, c); ok {
			for _, f := range []int{model.FaceNorth, model.FaceSouth, model.FaceWest, model.FaceEast} {
				d.FaceTextures[f] = baked
			}
		}
	}
	return d
}

// extractBoxes converte os elementos do modelo em caixas 0..1 com camadas
// do atlas. Retorna nil se todos os elementos forem o cubo inteiro.
func (r *Registry) extractBoxes(m *model.Model) []Box {
	if !m.HasElementGeometry() {
		return nil
	}

	boxes := make([]Box, 0, len(m.Elements))
	for _, e := range m.Elements {
		b := Box{
			From: [3]float32{float32(e.From[0] / 16), float32(e.From[1] / 16), float32(e.From[2] / 16)},
			To:   [3]float32{float32(e.To[0] / 16), float32(e.To[1] / 16), float32(e.To[2] / 16)},
		}
		for i, name := range model.FaceNames {
			f, ok := e.Faces[name]
			if !ok {
				continue
			}
			ref := FaceRef{Present: true, CullFace: f.CullFace != ""}
			if tex, ok := m.TextureName(f.Texture); ok {
				if f.HasCustomUV() {
					uv := [4]float64{0, 0, 16, 16}
					if f.UV != nil {
						uv = *f.UV
					}
					ref.Texture = r.atlas.UVCropped(tex, uv, f.Rotation)
				} else {
					ref.Texture = r.atlas.Texture(tex)
				}
			}
			b.Faces[i] = ref
		}
		boxes = append(boxes, b)
	}
	return boxes
}

// RegisterVariant resolve um bloco com propriedades de estado para sua chave
// de renderização. Só blocos com geometria de elementos ganham variantes;
// qualquer falha cai no bloco base.
func (r *Registry) RegisterVariant(id BlockID, props string, biome string) VariantKey {
	baseDesc := r.RegisterBlock(id, biome)
	base := baseDesc.Key
	if baseDesc.RenderType != RenderElements {
		return base
	}

	canonical := CanonicalProps(props)
	if canonical == "" {
		return base
	}
	key := VariantKey{Block: id, Props: canonical}
	if _, ok := r.descs[key]; ok {
		return key
	}
	if alias, ok := r.aliases[key]; ok {
		return alias
	}

	d := r.buildVariant(key, baseDesc)
	if d == nil {
		r.aliases[key] = base
		return base
	}
	r.descs[key] = d
	return key
}

func (r *Registry) buildVariant(key VariantKey, base *Descriptor) *Descriptor {
	bs := r.blockstate(model.Bare(string(key.Block)))
	if bs == nil {
		return nil
	}
	ref, ok := bs.match(propMap(ParseProps(key.Props)))
	if !ok {
		return nil
	}
	m, ok := r.models.Resolve(ref.Model)
	if !ok {
		log.Printf("[Registro] Modelo %s da variante %s não encontrado", ref.Model, key)
		return nil
	}
	boxes := r.extractBoxes(m)
	if boxes == nil {
		return nil
	}

	boxes = rotateBoxes(boxes, ref.X, ref.Y)
	rotY := normalizeAngle(ref.Y)
	if rotY != 0 {
		for i := range boxes {
			for _, f := range []int{model.FaceUp, model.FaceDown} {
				if boxes[i].Faces[f].Present {
					boxes[i].Faces[f].Texture = r.atlas.Rotated(boxes[i].Faces[f].Texture, rotY)
				}
			}
		}
	}

	d := *base
	d.Key = key
	d.RenderType = RenderElements
	d.Material = MaterialShaped
	d.FullOpaque = false
	d.Elements = boxes
	return &d
}

func (r *Registry) blockstate(bare string) *blockstate {
	if bs, ok := r.blockstates[bare]; ok {
		return bs
	}

	data, err := fs.ReadFile(r.fsys, path.Join("blockstates", bare+".json"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[Registro] Erro ao ler blockstate %s: %v", bare, err)
		}
		r.blockstates[bare] = nil
		return nil
	}

	bs, err := parseBlockstate(data)
	if err != nil {
		log.Printf("[Registro] Blockstate inválido %s: %v", bare, err)
		bs = nil
	}
	r.blockstates[bare] = bs
	return bs
}
