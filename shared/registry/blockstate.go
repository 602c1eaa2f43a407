package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// variantRef é a referência de modelo de uma variante do blockstate.
type variantRef struct {
	Model string `json:"model"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// variantRule associa as condições da chave ("facing=east,half=bottom") a um modelo.
type variantRule struct {
	Conditions []Prop
	Ref        variantRef
}

// blockstate guarda as regras na ordem do arquivo: a primeira que casa vence,
// então não dá para usar um map.
type blockstate struct {
	rules []variantRule
}

// parseBlockstate decodifica blockstates/<id>.json preservando a ordem de "variants".
// Outras seções (ex: "multipart") são ignoradas.
func parseBlockstate(data []byte) (*blockstate, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	bs := &blockstate{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if key != "variants" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("falha ao pular %q: %w", key, err)
			}
			continue
		}

		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			cond, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("falha ao ler variante %q: %w", cond, err)
			}
			ref, err := decodeRef(raw)
			if err != nil {
				return nil, fmt.Errorf("variante %q: %w", cond, err)
			}
			bs.rules = append(bs.rules, variantRule{Conditions: ParseProps(cond), Ref: ref})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}
	return bs, nil
}

// decodeRef aceita um objeto ou uma lista de objetos (usa o primeiro).
func decodeRef(raw json.RawMessage) (variantRef, error) {
	var ref variantRef
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []variantRef
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return ref, err
		}
		if len(list) == 0 {
			return ref, fmt.Errorf("lista de modelos vazia")
		}
		return list[0], nil
	}
	err := json.Unmarshal(trimmed, &ref)
	return ref, err
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("blockstate truncado")
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("esperado %v, encontrado %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("chave inválida %v", tok)
	}
	return key, nil
}

// match retorna a primeira regra cujas condições batem com as propriedades.
// Propriedades não listadas na regra funcionam como curinga.
func (bs *blockstate) match(props map[string]string) (variantRef, bool) {
	for _, rule := range bs.rules {
		if matchConditions(rule.Conditions, props) {
			return rule.Ref, true
		}
	}
	return variantRef{}, false
}

func matchConditions(conds []Prop, props map[string]string) bool {
	for _, c := range conds {
		if v, ok := props[c.Key]; !ok || v != c.Value {
			return false
		}
	}
	return true
}
