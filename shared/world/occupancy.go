package world

import (
	"Blockscope/shared/registry"
	"Blockscope/shared/util"
)

// Occupancy é a ocupação global do mundo, mantida incrementalmente.
// O mesher consulta Solid/Liquid através dela para culling e AO entre chunks.
type Occupancy struct {
	blocks map[util.BlockPos]registry.VariantKey
	solid  map[util.BlockPos]struct{}
	liquid map[util.BlockPos]struct{}
}

func newOccupancy() *Occupancy {
	return &Occupancy{
		blocks: make(map[util.BlockPos]registry.VariantKey),
		solid:  make(map[util.BlockPos]struct{}),
		liquid: make(map[util.BlockPos]struct{}),
	}
}

// Solid indica se a posição tem um cubo opaco completo.
func (o *Occupancy) Solid(pos util.BlockPos) bool {
	_, ok := o.solid[pos]
	return ok
}

// Liquid indica se a posição tem água ou lava.
func (o *Occupancy) Liquid(pos util.BlockPos) bool {
	_, ok := o.liquid[pos]
	return ok
}

// Block retorna a chave do bloco na posição.
func (o *Occupancy) Block(pos util.BlockPos) (registry.VariantKey, bool) {
	k, ok := o.blocks[pos]
	return k, ok
}

func (o *Occupancy) set(pos util.BlockPos, key registry.VariantKey, solid, liquid bool) {
	o.blocks[pos] = key
	if solid {
		o.solid[pos] = struct{}{}
	} else {
		delete(o.solid, pos)
	}
	if liquid {
		o.liquid[pos] = struct{}{}
	} else {
		delete(o.liquid, pos)
	}
}

func (o *Occupancy) remove(pos util.BlockPos) bool {
	if _, ok := o.blocks[pos]; !ok {
		return false
	}
	delete(o.blocks, pos)
	delete(o.solid, pos)
	delete(o.liquid, pos)
	return true
}

// Clear esvazia a ocupação.
func (o *Occupancy) Clear() {
	clear(o.blocks)
	clear(o.solid)
	clear(o.liquid)
}
