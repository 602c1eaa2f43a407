// Package replay lê as sessões gravadas pelo mod: estado do jogador por
// tick, eventos de blocos agrupados por tick e o mapeamento frame->tick do vídeo.
package replay

import "Blockscope/shared/util"

// Tipos de evento de mundo conhecidos.
const (
	KindBlockSeen    = "block_seen"
	KindBlockChanged = "block_changed"
)

// AirID é o bloco vazio; eventos com ele removem blocos.
const AirID = "minecraft:air"

// DefaultBiome é usado quando o tick 0 não informa bioma.
const DefaultBiome = "minecraft:plains"

// Event é uma linha de world_events.jsonl.
type Event struct {
	Tick    int    `json:"tick"`
	Kind    string `json:"event"`
	X       int32  `json:"x"`
	Y       int32  `json:"y"`
	Z       int32  `json:"z"`
	BlockID string `json:"blockId"`
	Props   string `json:"blockStateProperties"`
}

// Pos retorna a posição do bloco do evento.
func (e Event) Pos() util.BlockPos {
	return util.BlockPos{X: e.X, Y: e.Y, Z: e.Z}
}

// IsAir indica se o evento não carrega bloco (vazio ou ar).
func (e Event) IsAir() bool {
	return e.BlockID == "" || e.BlockID == AirID
}

// PlayerState é a pose do jogador em um tick.
type PlayerState struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}

// Position retorna a posição como vetor.
func (p PlayerState) Position() util.Vector3 {
	return util.Vector3{float32(p.X), float32(p.Y), float32(p.Z)}
}

// WorldState é o bloco "world" de cada tick.
type WorldState struct {
	Biome string `json:"biome"`
}

// TickState é uma linha de ticks.jsonl.
type TickState struct {
	Tick   int         `json:"tick"`
	Player PlayerState `json:"player"`
	World  WorldState  `json:"world"`
}

type frameEntry struct {
	Frame int `json:"frame"`
	Tick  int `json:"tick"`
}
