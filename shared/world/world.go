// Package world mantém o mundo do replay: ocupação global, partição em
// chunks 16³ e remontagem incremental das malhas dos chunks sujos.
package world

import (
	"log"
	"time"

	"Blockscope/shared/meshing"
	"Blockscope/shared/metrics"
	"Blockscope/shared/registry"
	"Blockscope/shared/replay"
	"Blockscope/shared/util"
)

// BlockResolver registra e resolve descritores (implementado por registry.Registry).
type BlockResolver interface {
	RegisterBlock(id registry.BlockID, biome string) *registry.Descriptor
	RegisterVariant(id registry.BlockID, props string, biome string) registry.VariantKey
	Lookup(key registry.VariantKey) (*registry.Descriptor, bool)
}

// EventSource fornece os eventos do replay (implementado por replay.Session).
type EventSource interface {
	EventsForTick(tick int) []replay.Event
	MaxTick() int
}

// Chunk é uma partição 16³ do mundo com seus dois buffers de GPU.
type Chunk struct {
	Pos         util.ChunkPos
	Opaque      GPUBuffer // nil quando vazio
	Transparent GPUBuffer // nil quando vazio

	blocks map[util.BlockPos]registry.VariantKey
	dirty  bool
}

// Len retorna o número de blocos do chunk.
func (c *Chunk) Len() int { return len(c.blocks) }

// Dirty indica se a malha está desatualizada.
func (c *Chunk) Dirty() bool { return c.dirty }

func (c *Chunk) release() {
	if c.Opaque != nil {
		c.Opaque.Release()
		c.Opaque = nil
	}
	if c.Transparent != nil {
		c.Transparent.Release()
		c.Transparent = nil
	}
}

// World é o estado do mundo de uma sessão.
type World struct {
	blocks  BlockResolver
	events  EventSource
	gpu     Uploader
	biome   string
	metrics *metrics.Metrics

	occ     *Occupancy
	chunks  map[util.ChunkPos]*Chunk
	dirty   *util.UniqueQueue[util.ChunkPos, struct{}]
	applied int // último tick aplicado; -1 = nenhum
}

// New cria um mundo vazio. Nenhum tick é aplicado até AdvanceToTick.
func New(blocks BlockResolver, events EventSource, gpu Uploader, biome string) *World {
	return &World{
		blocks:  blocks,
		events:  events,
		gpu:     gpu,
		biome:   biome,
		occ:     newOccupancy(),
		chunks:  make(map[util.ChunkPos]*Chunk),
		dirty:   util.NewUniqueQueue[util.ChunkPos, struct{}](),
		applied: -1,
	}
}

// SetMetrics liga os coletores Prometheus (nil desliga).
func (w *World) SetMetrics(m *metrics.Metrics) { w.metrics = m }

// Biome retorna o bioma usado nos registros.
func (w *World) Biome() string { return w.biome }

// Occupancy expõe a ocupação global (somente leitura para o mesher).
func (w *World) Occupancy() *Occupancy { return w.occ }

// SetBlock coloca ou troca o bloco em pos. A chave já deve estar registrada;
// chaves desconhecidas contam como sólidas e são desenhadas com a textura de fallback.
func (w *World) SetBlock(pos util.BlockPos, key registry.VariantKey) {
	solid, liquid := true, false
	if d, ok := w.blocks.Lookup(key); ok {
		solid = d.FullOpaque
		liquid = d.Material == registry.MaterialLiquid
	}
	w.occ.set(pos, key, solid, liquid)

	cp := pos.ChunkPos()
	c, ok := w.chunks[cp]
	if !ok {
		c = &Chunk{Pos: cp, blocks: make(map[util.BlockPos]registry.VariantKey)}
		w.chunks[cp] = c
	}
	c.blocks[pos] = key

	w.markDirty(pos)
}

// RemoveBlock retira o bloco em pos. Um chunk que fica vazio libera os buffers e é apagado.
func (w *World) RemoveBlock(pos util.BlockPos) {
	if !w.occ.remove(pos) {
		return
	}

	cp := pos.ChunkPos()
	if c, ok := w.chunks[cp]; ok {
		delete(c.blocks, pos)
		if len(c.blocks) == 0 {
			c.release()
			delete(w.chunks, cp)
		}
	}

	w.markDirty(pos)
}

// markDirty suja o chunk de pos e, na borda, o vizinho que compartilha a face.
func (w *World) markDirty(pos util.BlockPos) {
	cp := pos.ChunkPos()
	w.touch(cp)

	local := pos.Local()
	axes := [3]struct {
		v          int32
		dx, dy, dz int32
	}{
		{local.X, 1, 0, 0},
		{local.Y, 0, 1, 0},
		{local.Z, 0, 0, 1},
	}
	for _, a := range axes {
		switch a.v {
		case 0:
			w.touch(cp.Neighbor(-a.dx, -a.dy, -a.dz))
		case util.ChunkSize - 1:
			w.touch(cp.Neighbor(a.dx, a.dy, a.dz))
		}
	}
}

func (w *World) touch(cp util.ChunkPos) {
	c, ok := w.chunks[cp]
	if !ok {
		return
	}
	c.dirty = true
	w.dirty.Enqueue(cp, struct{}{})
}

// AdvanceToTick aplica, em ordem, todos os ticks depois do último aplicado
// até target (limitado a MaxTick). Em um mundo novo o tick 0 também é aplicado.
func (w *World) AdvanceToTick(target int) {
	target = min(target, w.events.MaxTick())
	for w.applied < target {
		w.applied++
		w.processTick(w.applied)
	}
}

func (w *World) processTick(tick int) {
	for _, ev := range w.events.EventsForTick(tick) {
		switch ev.Kind {
		case replay.KindBlockSeen:
			if ev.IsAir() {
				continue
			}
			if _, occupied := w.occ.Block(ev.Pos()); occupied {
				continue
			}
			w.SetBlock(ev.Pos(), w.resolve(ev))
		case replay.KindBlockChanged:
			if ev.IsAir() {
				w.RemoveBlock(ev.Pos())
			} else {
				w.SetBlock(ev.Pos(), w.resolve(ev))
			}
		default:
			continue
		}
		w.metrics.EventApplied(ev.Kind)
	}
	w.metrics.TickApplied()
}

// resolve transforma bloco + propriedades na chave de renderização.
func (w *World) resolve(ev replay.Event) registry.VariantKey {
	id := registry.BlockID(ev.BlockID)
	if ev.Props == "" {
		return w.blocks.RegisterBlock(id, w.biome).Key
	}
	return w.blocks.RegisterVariant(id, ev.Props, w.biome)
}

// Reset libera toda a GPU e volta ao estado sem nenhum tick aplicado.
func (w *World) Reset() {
	n := len(w.chunks)
	for _, c := range w.chunks {
		c.release()
	}
	clear(w.chunks)
	w.occ.Clear()
	w.dirty.Clear()
	w.applied = -1
	w.metrics.SetChunks(0)
	w.metrics.SetVertices(0, 0)
	log.Printf("[Mundo] Reset: %d chunks liberados", n)
}

// RebuildMesh remonta apenas os chunks sujos e retorna quantos foram remontados.
func (w *World) RebuildMesh() int {
	if w.dirty.Len() == 0 {
		return 0
	}

	start := time.Now()
	rebuilt := 0
	for _, cp := range w.dirty.Drain() {
		c, ok := w.chunks[cp]
		if !ok {
			continue
		}
		res := meshing.Build(c.blocks, w.occ, w.blocks)

		c.release()
		if len(res.Opaque) > 0 {
			c.Opaque = w.gpu.Upload(res.Opaque)
		}
		if len(res.Transparent) > 0 {
			c.Transparent = w.gpu.Upload(res.Transparent)
		}
		c.dirty = false
		rebuilt++
	}

	w.metrics.Rebuilt(rebuilt, time.Since(start))
	if w.metrics != nil {
		opaque, transparent := w.VertexCounts()
		w.metrics.SetChunks(len(w.chunks))
		w.metrics.SetVertices(opaque, transparent)
	}
	return rebuilt
}

// VertexCounts soma os vértices enviados de todos os chunks.
func (w *World) VertexCounts() (opaque, transparent int) {
	for _, c := range w.chunks {
		if c.Opaque != nil {
			opaque += c.Opaque.VertexCount()
		}
		if c.Transparent != nil {
			transparent += c.Transparent.VertexCount()
		}
	}
	return opaque, transparent
}

// CurrentTick retorna o último tick aplicado (0 antes do primeiro).
func (w *World) CurrentTick() int { return max(w.applied, 0) }

// SolidCount retorna quantos cubos opacos completos existem.
func (w *World) SolidCount() int { return len(w.occ.solid) }

// BlockCount retorna o total de blocos.
func (w *World) BlockCount() int { return len(w.occ.blocks) }

// ChunkCount retorna o número de chunks não vazios.
func (w *World) ChunkCount() int { return len(w.chunks) }

// DirtyCount retorna quantos chunks aguardam remontagem.
func (w *World) DirtyCount() int { return w.dirty.Len() }

// Block retorna a chave do bloco em pos.
func (w *World) Block(pos util.BlockPos) (registry.VariantKey, bool) {
	return w.occ.Block(pos)
}

// Chunk retorna o chunk da posição.
func (w *World) Chunk(cp util.ChunkPos) (*Chunk, bool) {
	c, ok := w.chunks[cp]
	return c, ok
}

// Snapshot copia o mapa posição -> chave.
func (w *World) Snapshot() map[util.BlockPos]registry.VariantKey {
	out := make(map[util.BlockPos]registry.VariantKey, len(w.occ.blocks))
	for p, k := range w.occ.blocks {
		out[p] = k
	}
	return out
}

// Chunks visita todos os chunks (ordem indefinida).
func (w *World) Chunks(fn func(c *Chunk)) {
	for _, c := range w.chunks {
		fn(c)
	}
}

// Close libera todos os buffers de GPU.
func (w *World) Close() {
	for _, c := range w.chunks {
		c.release()
	}
	clear(w.chunks)
	w.dirty.Clear()
}
