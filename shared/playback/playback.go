// Package playback controla o relógio do replay: play/pause, velocidade,
// seek para frente ou para trás e sincronização com o vídeo.
package playback

import "Blockscope/shared/util"

// TicksPerSecond é a taxa de ticks do Minecraft.
const TicksPerSecond = 20

const (
	minSpeed = 0.125
	maxSpeed = 64.0
)

// Presets são as velocidades das teclas 1..4.
var Presets = [4]float64{0.5, 1, 2, 4}

// World é o que o controlador move (implementado por world.World).
type World interface {
	AdvanceToTick(tick int)
	Reset()
	CurrentTick() int
}

// FrameSync recebe o tick atual para posicionar o vídeo.
type FrameSync interface {
	SeekToTick(tick int)
}

// Status é uma cópia do estado do controlador.
type Status struct {
	Tick      int
	MaxTick   int
	Seconds   float64
	Playing   bool
	Speed     float64
	Scrubbing bool
}

// Controller é o relógio do replay.
type Controller struct {
	world   World
	maxTick int
	sync    FrameSync

	// OnTick é chamado depois de cada mudança de tick (ex: mover o marcador do jogador).
	OnTick func(tick int)

	tick      int
	time      float64
	playing   bool
	speed     float64
	scrubbing bool
}

// New cria um controlador parado no tick 0. sync pode ser nil.
func New(w World, maxTick int, sync FrameSync) *Controller {
	return &Controller{
		world:   w,
		maxTick: max(maxTick, 0),
		sync:    sync,
		speed:   1,
	}
}

// Update avança o relógio em dt segundos quando está tocando.
// Retorna true se o tick mudou.
func (c *Controller) Update(dt float64) bool {
	if !c.playing || c.scrubbing || c.tick >= c.maxTick {
		return false
	}

	c.time += dt * c.speed
	target := util.Clamp(int(c.time*TicksPerSecond), 0, c.maxTick)
	if target <= c.tick {
		return false
	}

	c.world.AdvanceToTick(target)
	c.tick = target
	c.notify()
	return true
}

// Seek vai para qualquer tick. Voltar reinicia o mundo e reaplica desde o tick 0.
func (c *Controller) Seek(tick int) {
	tick = util.Clamp(tick, 0, c.maxTick)
	if tick < c.world.CurrentTick() {
		c.world.Reset()
	}
	c.world.AdvanceToTick(tick)

	c.tick = tick
	c.time = float64(tick) / TicksPerSecond
	c.notify()
}

// SeekSeconds desloca o tick atual em s segundos.
func (c *Controller) SeekSeconds(s float64) {
	c.Seek(c.tick + int(s*TicksPerSecond))
}

// Restart volta ao início e toca.
func (c *Controller) Restart() {
	c.Seek(0)
	c.playing = true
}

func (c *Controller) notify() {
	if c.sync != nil {
		c.sync.SeekToTick(c.tick)
	}
	if c.OnTick != nil {
		c.OnTick(c.tick)
	}
}

// Play começa a tocar.
func (c *Controller) Play() { c.playing = true }

// Pause para o relógio.
func (c *Controller) Pause() { c.playing = false }

// TogglePlay alterna play/pause.
func (c *Controller) TogglePlay() { c.playing = !c.playing }

// SetSpeed define a velocidade, limitada a [0.125, 64].
func (c *Controller) SetSpeed(s float64) { c.speed = util.Clamp(s, minSpeed, maxSpeed) }

// SetPreset aplica um dos presets (0..3); índices fora do intervalo são ignorados.
func (c *Controller) SetPreset(i int) {
	if i >= 0 && i < len(Presets) {
		c.SetSpeed(Presets[i])
	}
}

// SpeedUp dobra a velocidade.
func (c *Controller) SpeedUp() { c.SetSpeed(c.speed * 2) }

// SpeedDown divide a velocidade por dois.
func (c *Controller) SpeedDown() { c.SetSpeed(c.speed / 2) }

// SetScrubbing congela o relógio enquanto a barra é arrastada.
func (c *Controller) SetScrubbing(on bool) { c.scrubbing = on }

// Tick retorna o tick atual.
func (c *Controller) Tick() int { return c.tick }

// MaxTick retorna o último tick da sessão.
func (c *Controller) MaxTick() int { return c.maxTick }

// Playing indica se está tocando.
func (c *Controller) Playing() bool { return c.playing }

// Speed retorna a velocidade atual.
func (c *Controller) Speed() float64 { return c.speed }

// Finished indica que o relógio chegou ao fim.
func (c *Controller) Finished() bool { return c.tick >= c.maxTick }

// Status retorna uma cópia do estado.
func (c *Controller) Status() Status {
	return Status{
		Tick:      c.tick,
		MaxTick:   c.maxTick,
		Seconds:   float64(c.tick) / TicksPerSecond,
		Playing:   c.playing,
		Speed:     c.speed,
		Scrubbing: c.scrubbing,
	}
}
