package replay

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"Blockscope/shared/mapdata"
	"Blockscope/shared/util"

	"github.com/alitto/pond/v2"
)

var sessionFiles = []string{"metadata.json", "ticks.jsonl", "world_events.jsonl", "frame_mapping.jsonl"}

// Option ajusta o carregamento de uma sessão.
type Option func(*loadOptions)

type loadOptions struct {
	cache    *mapdata.SessionCache
	validate bool
}

// WithCache reutiliza o snapshot gravado no cache quando os arquivos não mudaram.
func WithCache(c *mapdata.SessionCache) Option {
	return func(o *loadOptions) { o.cache = c }
}

// WithValidation liga ou desliga a validação dos eventos pelo schema.
func WithValidation(on bool) Option {
	return func(o *loadOptions) { o.validate = on }
}

// sessionData é a parte serializável da sessão (vai para o cache em GOB).
type sessionData struct {
	Metadata []byte
	Ticks    []TickState
	Events   map[int][]Event
	Frames   []int
	MaxTick  int
	Invalid  int
}

// Session é uma gravação carregada em memória.
type Session struct {
	Dir         string
	Metadata    map[string]any
	Fingerprint string
	FromCache   bool

	data sessionData
}

// Load lê a sessão em dir. metadata.json, ticks.jsonl e world_events.jsonl
// são obrigatórios; frame_mapping.jsonl é opcional.
func Load(ctx context.Context, dir string, opts ...Option) (*Session, error) {
	o := loadOptions{validate: true}
	for _, opt := range opts {
		opt(&o)
	}

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	raw, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("falha ao ler metadata da sessão: %w", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("metadata.json inválido: %w", err)
	}

	s := &Session{Dir: dir, Metadata: meta, Fingerprint: fingerprint(dir)}

	if o.cache != nil {
		if blob, err := o.cache.Get(dir, s.Fingerprint); err == nil {
			if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&s.data); err == nil {
				s.FromCache = true
				s.logSummary()
				return s, nil
			}
			log.Printf("[Replay] Snapshot do cache corrompido, relendo %s", dir)
		} else if !errors.Is(err, mapdata.ErrNotCached) {
			log.Printf("[Replay] Cache indisponível: %v", err)
		}
	}

	data, err := parse(ctx, dir, o.validate)
	if err != nil {
		return nil, err
	}
	data.Metadata = raw
	s.data = data

	if o.cache != nil {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(&s.data); err != nil {
			log.Printf("[Replay] ERRO GOB: %v", err)
		} else if err := o.cache.Put(dir, s.Fingerprint, s.data.MaxTick, buf.Bytes()); err != nil {
			log.Printf("[Replay] Falha ao gravar cache: %v", err)
		}
	}

	s.logSummary()
	return s, nil
}

// parse lê os três jsonl em paralelo e junta os resultados.
func parse(ctx context.Context, dir string, validate bool) (sessionData, error) {
	var (
		ticks   []TickState
		events  map[int][]Event
		frames  []int
		invalid [3]int
		errs    [3]error
	)

	pool := pond.NewPool(len(errs))
	defer pool.StopAndWait()
	var wg sync.WaitGroup

	wg.Add(3)
	pool.Submit(func() {
		defer wg.Done()
		ticks, invalid[0], errs[0] = parseTicks(ctx, dir)
	})
	pool.Submit(func() {
		defer wg.Done()
		events, invalid[1], errs[1] = parseEvents(ctx, dir, validate)
	})
	pool.Submit(func() {
		defer wg.Done()
		frames, invalid[2], errs[2] = parseFrames(ctx, dir)
	})
	wg.Wait()

	if err := errors.Join(errs[:]...); err != nil {
		return sessionData{}, err
	}

	data := sessionData{
		Ticks:   ticks,
		Events:  events,
		Frames:  frames,
		Invalid: invalid[0] + invalid[1] + invalid[2],
	}
	for _, t := range ticks {
		data.MaxTick = max(data.MaxTick, t.Tick)
	}
	return data, nil
}

func parseTicks(ctx context.Context, dir string) ([]TickState, int, error) {
	var ticks []TickState
	invalid := 0
	err := forEachLine(dir, "ticks.jsonl", true, func(lineNo int, line []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var t TickState
		if err := json.Unmarshal(line, &t); err != nil {
			invalid++
			return nil
		}
		ticks = append(ticks, t)
		return nil
	})
	return ticks, invalid, err
}

func parseEvents(ctx context.Context, dir string, validate bool) (map[int][]Event, int, error) {
	schema, err := compileEventSchema()
	if err != nil {
		return nil, 0, err
	}

	events := make(map[int][]Event)
	invalid := 0
	err = forEachLine(dir, "world_events.jsonl", true, func(lineNo int, line []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if validate {
			var doc any
			if err := json.Unmarshal(line, &doc); err != nil {
				invalid++
				return nil
			}
			if err := schema.Validate(doc); err != nil {
				if invalid == 0 {
					log.Printf("[Replay] Evento inválido na linha %d: %v", lineNo, err)
				}
				invalid++
				return nil
			}
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			invalid++
			return nil
		}
		events[ev.Tick] = append(events[ev.Tick], ev)
		return nil
	})
	return events, invalid, err
}

func parseFrames(ctx context.Context, dir string) ([]int, int, error) {
	var frames []int
	invalid := 0
	err := forEachLine(dir, "frame_mapping.jsonl", false, func(lineNo int, line []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var f frameEntry
		if err := json.Unmarshal(line, &f); err != nil {
			invalid++
			return nil
		}
		frames = append(frames, f.Tick)
		return nil
	})
	return frames, invalid, err
}

func (s *Session) logSummary() {
	source := "arquivos"
	if s.FromCache {
		source = "cache"
	}
	log.Printf("[Replay] Sessão %s (%s): %d ticks, max %d, %d eventos, %d frames, %d linhas inválidas",
		filepath.Base(s.Dir), source, len(s.data.Ticks), s.data.MaxTick, s.EventCount(), len(s.data.Frames), s.data.Invalid)
}

// MaxTick retorna o maior tick gravado (0 sem ticks).
func (s *Session) MaxTick() int { return s.data.MaxTick }

// TickCount retorna o número de linhas de ticks.
func (s *Session) TickCount() int { return len(s.data.Ticks) }

// InvalidLines retorna quantas linhas foram descartadas.
func (s *Session) InvalidLines() int { return s.data.Invalid }

// EventsForTick retorna os eventos do tick na ordem do arquivo.
func (s *Session) EventsForTick(tick int) []Event { return s.data.Events[tick] }

// EventCount retorna o total de eventos.
func (s *Session) EventCount() int {
	n := 0
	for _, evs := range s.data.Events {
		n += len(evs)
	}
	return n
}

// PlayerState indexa os ticks pela ordem das linhas, como o gravador escreve.
func (s *Session) PlayerState(i int) (TickState, bool) {
	if i < 0 || i >= len(s.data.Ticks) {
		return TickState{}, false
	}
	return s.data.Ticks[i], true
}

// InitialPlayerPos retorna a posição do jogador no tick 0 (0,64,0 sem ticks).
func (s *Session) InitialPlayerPos() util.Vector3 {
	if t, ok := s.PlayerState(0); ok {
		return t.Player.Position()
	}
	return util.Vector3{0, 64, 0}
}

// InitialBiome retorna o bioma do tick 0.
func (s *Session) InitialBiome() string {
	if t, ok := s.PlayerState(0); ok && t.World.Biome != "" {
		return t.World.Biome
	}
	return DefaultBiome
}

// UniqueBlockIDs lista os ids de bloco usados, sem ar, em ordem.
func (s *Session) UniqueBlockIDs() []string {
	seen := make(map[string]struct{})
	for _, evs := range s.data.Events {
		for _, e := range evs {
			if !e.IsAir() {
				seen[e.BlockID] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Variant é um par bloco + propriedades visto na sessão.
type Variant struct {
	BlockID string
	Props   string
}

// UniqueVariants lista os pares com propriedades não vazias, em ordem.
func (s *Session) UniqueVariants() []Variant {
	seen := make(map[Variant]struct{})
	for _, evs := range s.data.Events {
		for _, e := range evs {
			if !e.IsAir() && e.Props != "" {
				seen[Variant{BlockID: e.BlockID, Props: e.Props}] = struct{}{}
			}
		}
	}
	out := make([]Variant, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BlockID != out[j].BlockID {
			return out[i].BlockID < out[j].BlockID
		}
		return out[i].Props < out[j].Props
	})
	return out
}

// FrameToTick retorna o tick de cada frame do vídeo (índice = frame).
func (s *Session) FrameToTick() []int { return s.data.Frames }

// HasFrameMapping indica se frame_mapping.jsonl existia com dados.
func (s *Session) HasFrameMapping() bool { return len(s.data.Frames) > 0 }
