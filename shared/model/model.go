// Package model lê os modelos de bloco do Minecraft (models/block/*.json),
// resolve a cadeia de parents e as variáveis de textura (#nome).
package model

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
)

// FaceNames é a ordem de faces usada em todo o motor.
var FaceNames = [6]string{"up", "down", "north", "south", "west", "east"}

// Índices em FaceNames.
const (
	FaceUp = iota
	FaceDown
	FaceNorth
	FaceSouth
	FaceWest
	FaceEast
)

// Face é uma face declarada num elemento.
type Face struct {
	Texture   string      `json:"texture"`
	UV        *[4]float64 `json:"uv,omitempty"`
	Rotation  int         `json:"rotation,omitempty"`
	CullFace  string      `json:"cullface,omitempty"`
	TintIndex *int        `json:"tintindex,omitempty"`
}

// HasCustomUV indica se a face usa um recorte diferente da textura inteira ou rotação.
func (f Face) HasCustomUV() bool {
	if f.Rotation != 0 {
		return true
	}
	return f.UV != nil && *f.UV != [4]float64{0, 0, 16, 16}
}

// Element é uma caixa do modelo em coordenadas 0..16.
type Element struct {
	From  [3]float64
	To    [3]float64
	Faces map[string]Face
}

// IsFullCube indica se a caixa ocupa o bloco inteiro.
func (e Element) IsFullCube() bool {
	return e.From == [3]float64{0, 0, 0} && e.To == [3]float64{16, 16, 16}
}

type rawElement struct {
	From  *[3]float64     `json:"from"`
	To    *[3]float64     `json:"to"`
	Faces map[string]Face `json:"faces"`
}

type rawModel struct {
	Parent   string            `json:"parent"`
	Textures map[string]string `json:"textures"`
	Elements []rawElement      `json:"elements"`
}

// Model é um modelo já resolvido (parents aplicados, variáveis substituídas).
type Model struct {
	Name        string
	Textures    map[string]string
	Elements    []Element
	ParentChain []string // Nomes "nus" dos parents, do mais próximo ao mais distante
}

// Bare remove o namespace "minecraft:" e o prefixo "block/" de um identificador.
func Bare(name string) string {
	name = strings.TrimPrefix(name, "minecraft:")
	return strings.TrimPrefix(name, "block/")
}

// Resolver carrega e mantém em cache os modelos de um diretório de assets.
type Resolver struct {
	fsys  fs.FS
	cache map[string]*Model // nil = sabidamente ausente
}

// NewResolver cria um resolver sobre a raiz de assets (contém models/block/).
func NewResolver(fsys fs.FS) *Resolver {
	return &Resolver{
		fsys:  fsys,
		cache: make(map[string]*Model),
	}
}

// Resolve retorna o modelo resolvido, ou false se não existir ou for inválido.
func (r *Resolver) Resolve(name string) (*Model, bool) {
	m := r.resolve(Bare(name), make(map[string]bool))
	return m, m != nil
}

func (r *Resolver) resolve(bare string, visiting map[string]bool) *Model {
	if m, ok := r.cache[bare]; ok {
		return m
	}
	if visiting[bare] {
		log.Printf("[Modelo] Ciclo de parents detectado em %s", bare)
		return nil
	}
	visiting[bare] = true
	defer delete(visiting, bare)

	data, err := fs.ReadFile(r.fsys, path.Join("models", "block", bare+".json"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[Modelo] Erro ao ler %s: %v", bare, err)
		}
		r.cache[bare] = nil
		return nil
	}

	var raw rawModel
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("[Modelo] JSON inválido em %s: %v", bare, err)
		r.cache[bare] = nil
		return nil
	}

	m := &Model{
		Name:     bare,
		Textures: make(map[string]string),
		Elements: convertElements(raw.Elements),
	}

	if raw.Parent != "" {
		parentName := Bare(raw.Parent)
		m.ParentChain = append(m.ParentChain, parentName)
		if parent := r.resolve(parentName, visiting); parent != nil {
			for k, v := range parent.Textures {
				m.Textures[k] = v
			}
			if len(raw.Elements) == 0 {
				m.Elements = parent.Elements
			}
			m.ParentChain = append(m.ParentChain, parent.ParentChain...)
		}
	}
	for k, v := range raw.Textures {
		m.Textures[k] = v
	}

	resolveVariables(m.Textures)

	r.cache[bare] = m
	return m
}

func convertElements(raw []rawElement) []Element {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Element, len(raw))
	for i, re := range raw {
		e := Element{To: [3]float64{16, 16, 16}, Faces: re.Faces}
		if re.From != nil {
			e.From = *re.From
		}
		if re.To != nil {
			e.To = *re.To
		}
		if e.Faces == nil {
			e.Faces = map[string]Face{}
		}
		out[i] = e
	}
	return out
}

// resolveVariables substitui "#var" pelo valor final. Referências sem destino
// ou em ciclo ficam com o texto literal.
func resolveVariables(textures map[string]string) {
	resolved := make(map[string]string, len(textures))
	for k, v := range textures {
		if final, ok := follow(textures, v); ok {
			resolved[k] = final
		} else {
			resolved[k] = v
		}
	}
	for k, v := range resolved {
		textures[k] = v
	}
}

func follow(textures map[string]string, ref string) (string, bool) {
	seen := make(map[string]bool)
	for strings.HasPrefix(ref, "#") {
		key := ref[1:]
		if seen[key] {
			return "", false
		}
		seen[key] = true
		next, ok := textures[key]
		if !ok {
			return "", false
		}
		ref = next
	}
	return ref, ref != ""
}

// TextureName resolve uma referência de face (literal ou "#var") para o nome nu da textura.
func (m *Model) TextureName(ref string) (string, bool) {
	final, ok := follow(m.Textures, ref)
	if !ok {
		return "", false
	}
	return Bare(final), true
}

// FaceTextures determina a textura de cada face (ordem de FaceNames).
// Faces sem textura ficam com "".
func (m *Model) FaceTextures() [6]string {
	var faces [6]string
	assigned := false

	for _, e := range m.Elements {
		for i, name := range FaceNames {
			if faces[i] != "" {
				continue
			}
			f, ok := e.Faces[name]
			if !ok {
				continue
			}
			if tex, ok := m.TextureName(f.Texture); ok {
				faces[i] = tex
				assigned = true
			}
		}
	}

	if !assigned {
		assigned = m.fromTextureKeys(&faces)
	}

	fallback := ""
	if assigned {
		for _, f := range faces {
			if f != "" {
				fallback = f
				break
			}
		}
	} else {
		keys := make([]string, 0, len(m.Textures))
		for k := range m.Textures {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := m.Textures[k]; v != "" && !strings.HasPrefix(v, "#") {
				fallback = Bare(v)
				break
			}
		}
	}

	if fallback != "" {
		for i := range faces {
			if faces[i] == "" {
				faces[i] = fallback
			}
		}
	}
	return faces
}

// fromTextureKeys aplica as convenções de nomes de variável (all, cross, end/side...).
func (m *Model) fromTextureKeys(faces *[6]string) bool {
	tex := func(key string) (string, bool) {
		v, ok := m.Textures[key]
		if !ok {
			return "", false
		}
		return Bare(v), true
	}
	setSides := func(side string) {
		faces[FaceNorth], faces[FaceSouth], faces[FaceWest], faces[FaceEast] = side, side, side, side
	}

	if all, ok := tex("all"); ok {
		for i := range faces {
			faces[i] = all
		}
		return true
	}
	if cross, ok := tex("cross"); ok {
		for i := range faces {
			faces[i] = cross
		}
		return true
	}

	top, hasTop := tex("top")
	side, hasSide := tex("side")
	if end, ok := tex("end"); ok && hasSide {
		faces[FaceUp], faces[FaceDown] = end, end
		setSides(side)
		return true
	}
	if hasTop && hasSide {
		bottom, ok := tex("bottom")
		if !ok {
			bottom = top
		}
		faces[FaceUp], faces[FaceDown] = top, bottom
		setSides(side)
		return true
	}
	if front, ok := tex("front"); ok && hasTop {
		if !hasSide {
			side = front
		}
		bottom, ok := tex("bottom")
		if !ok {
			bottom = top
		}
		faces[FaceUp], faces[FaceDown] = top, bottom
		faces[FaceNorth], faces[FaceSouth] = front, front
		faces[FaceWest], faces[FaceEast] = side, side
		return true
	}
	return false
}

func (m *Model) inChain(names ...string) bool {
	for _, p := range m.ParentChain {
		for _, n := range names {
			if p == n {
				return true
			}
		}
	}
	return false
}

// IsCross indica um modelo de planta em X.
func (m *Model) IsCross() bool {
	if m.inChain("cross", "tinted_cross") {
		return true
	}
	_, ok := m.Textures["cross"]
	return ok && len(m.Textures) <= 2
}

// HasElementGeometry indica se alguma caixa não é o cubo inteiro.
func (m *Model) HasElementGeometry() bool {
	for _, e := range m.Elements {
		if !e.IsFullCube() {
			return true
		}
	}
	return false
}

// NeedsTint indica se o modelo recebe cor de bioma.
func (m *Model) NeedsTint() bool {
	if m.inChain("tinted_cross", "leaves") {
		return true
	}
	for _, e := range m.Elements {
		for _, f := range e.Faces {
			if f.TintIndex != nil {
				return true
			}
		}
	}
	return false
}

// IsLeaves indica se o modelo herda de leaves.
func (m *Model) IsLeaves() bool {
	return m.inChain("leaves")
}
