// Package engine monta o pipeline de uma sessão: replay, registro de blocos,
// atlas e mundo. Usado pelo visualizador e pelo servidor headless.
package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"time"

	"Blockscope/shared/atlas"
	"Blockscope/shared/mapdata"
	"Blockscope/shared/metrics"
	"Blockscope/shared/registry"
	"Blockscope/shared/replay"
	"Blockscope/shared/util"
	"Blockscope/shared/world"
)

// Options descreve a sessão a abrir.
type Options struct {
	SessionDir   string
	Assets       fs.FS  // raiz com models/, blockstates/, textures/
	CachePath    string // vazio desativa o cache SQLite
	Validate     bool
	DefaultBiome string // usado quando a sessão não tem ticks
	Metrics      *metrics.Metrics
}

// Engine é uma sessão carregada com o tick 0 aplicado.
type Engine struct {
	Session  *replay.Session
	Registry *registry.Registry
	World    *world.World
	Biome    string

	cache   *mapdata.SessionCache
	metrics *metrics.Metrics
}

// Open carrega a sessão, pré-registra todos os blocos e variantes (para que
// as camadas do atlas existam antes do Build) e aplica o tick 0.
// Nenhuma malha é montada: o chamador sobe o atlas e chama RebuildMesh.
func Open(ctx context.Context, opts Options, gpu world.Uploader) (*Engine, error) {
	start := time.Now()
	e := &Engine{metrics: opts.Metrics}

	var loadOpts []replay.Option
	loadOpts = append(loadOpts, replay.WithValidation(opts.Validate))
	if opts.CachePath != "" {
		cache, err := mapdata.OpenSessionCache(opts.CachePath)
		if err != nil {
			log.Printf("[Engine] Cache desativado: %v", err)
		} else {
			e.cache = cache
			loadOpts = append(loadOpts, replay.WithCache(cache))
		}
	}

	s, err := replay.Load(ctx, opts.SessionDir, loadOpts...)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("falha ao carregar sessão: %w", err)
	}
	e.Session = s

	e.Biome = s.InitialBiome()
	if s.TickCount() == 0 && opts.DefaultBiome != "" {
		e.Biome = opts.DefaultBiome
	}

	e.Registry = registry.New(opts.Assets, atlas.New(opts.Assets))
	ids := s.UniqueBlockIDs()
	for _, id := range ids {
		e.Registry.RegisterBlock(registry.BlockID(id), e.Biome)
	}
	variants := s.UniqueVariants()
	for _, v := range variants {
		e.Registry.RegisterVariant(registry.BlockID(v.BlockID), v.Props, e.Biome)
	}
	log.Printf("[Engine] %d blocos, %d variantes, %d camadas (bioma %s)",
		len(ids), len(variants), e.Registry.Atlas().Len(), e.Biome)

	e.World = world.New(e.Registry, s, gpu, e.Biome)
	e.World.SetMetrics(opts.Metrics)
	e.World.AdvanceToTick(0)

	log.Printf("[Engine] Sessão pronta em %v: %d blocos no tick 0", time.Since(start).Round(time.Millisecond), e.World.BlockCount())
	return e, nil
}

// BuildAtlas congela o atlas e retorna as camadas serializadas.
func (e *Engine) BuildAtlas() (layers int, data []byte) {
	layers, data = e.Registry.Atlas().Build()
	e.metrics.SetAtlasLayers(layers)
	return layers, data
}

// PlayerPosition retorna a posição gravada do jogador no tick.
func (e *Engine) PlayerPosition(tick int) (util.Vector3, bool) {
	st, ok := e.Session.PlayerState(tick)
	if !ok {
		return util.Vector3{}, false
	}
	return st.Player.Position(), true
}

// Close libera o mundo e o cache.
func (e *Engine) Close() {
	if e.World != nil {
		e.World.Close()
	}
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			log.Printf("[Engine] Erro ao fechar cache: %v", err)
		}
		e.cache = nil
	}
}
