package registry

import (
	"sort"
	"strings"
)

// BlockID é o identificador com namespace, ex: "minecraft:oak_stairs".
type BlockID string

// Air é o bloco vazio; nunca é registrado.
const Air BlockID = "minecraft:air"

// VariantKey identifica um descritor: bloco base + propriedades canônicas.
// Props vazio = bloco base.
type VariantKey struct {
	Block BlockID
	Props string
}

// BaseKey retorna a chave do bloco sem propriedades.
func BaseKey(id BlockID) VariantKey {
	return VariantKey{Block: id}
}

// IsBase indica se a chave não carrega propriedades.
func (k VariantKey) IsBase() bool { return k.Props == "" }

// String renderiza "id" ou "id[props]" (apenas para logs e HUD).
func (k VariantKey) String() string {
	if k.Props == "" {
		return string(k.Block)
	}
	return string(k.Block) + "[" + k.Props + "]"
}

// Prop é um par chave=valor de estado de bloco.
type Prop struct {
	Key   string
	Value string
}

// ParseProps lê "k=v,k2=v2" (com espaços opcionais) em pares ordenados por chave.
// Itens sem "=" são ignorados.
func ParseProps(s string) []Prop {
	var props []Prop
	for _, item := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		props = append(props, Prop{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
	}
	sort.SliceStable(props, func(i, j int) bool { return props[i].Key < props[j].Key })
	return props
}

// CanonicalProps normaliza a string de propriedades (ordenada, sem espaços).
func CanonicalProps(s string) string {
	props := ParseProps(s)
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = p.Key + "=" + p.Value
	}
	return strings.Join(parts, ",")
}

func propMap(props []Prop) map[string]string {
	m := make(map[string]string, len(props))
	for _, p := range props {
		m[p.Key] = p.Value
	}
	return m
}
