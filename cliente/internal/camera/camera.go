package camera

import (
	"math"

	"Blockscope/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	pitchLimit = 89.0 * math.Pi / 180
	boost      = 5.0
)

// Spectator é a câmera livre do visualizador: yaw/pitch com WASD, Space/Shift
// para subir e descer e Ctrl para acelerar.
type Spectator struct {
	Position mgl32.Vec3
	Yaw      float32 // radianos; -90° olha para -Z
	Pitch    float32 // radianos

	Speed       float32 // blocos por segundo
	Sensitivity float32 // radianos por pixel
	FOV         float32 // graus
}

// New cria a câmera em pos com yaw e pitch em graus.
func New(pos mgl32.Vec3, yawDeg, pitchDeg, speed, sensitivity, fov float32) *Spectator {
	return &Spectator{
		Position:    pos,
		Yaw:         mgl32.DegToRad(yawDeg),
		Pitch:       mgl32.DegToRad(pitchDeg),
		Speed:       speed,
		Sensitivity: sensitivity,
		FOV:         fov,
	}
}

// AbovePlayer posiciona a câmera acima e atrás do jogador, olhando para baixo.
func AbovePlayer(player mgl32.Vec3, speed, sensitivity, fov float32) *Spectator {
	pos := player.Add(mgl32.Vec3{0, 20, 15})
	return New(pos, -90, -30, speed, sensitivity, fov)
}

// Forward retorna a direção de visão.
func (c *Spectator) Forward() mgl32.Vec3 {
	cy, sy := float32(math.Cos(float64(c.Yaw))), float32(math.Sin(float64(c.Yaw)))
	cp, sp := float32(math.Cos(float64(c.Pitch))), float32(math.Sin(float64(c.Pitch)))
	return mgl32.Vec3{cy * cp, sp, sy * cp}.Normalize()
}

// Right retorna o vetor à direita no plano horizontal.
func (c *Spectator) Right() mgl32.Vec3 {
	return c.Forward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Rotate aplica o deslocamento do mouse em pixels.
func (c *Spectator) Rotate(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	c.Pitch = util.Clamp(c.Pitch, -pitchLimit, pitchLimit)
}

// Move desloca a câmera nos eixos locais (frente, direita, cima) por dist blocos.
func (c *Spectator) Move(forward, right, up, dist float32) {
	dir := c.Forward().Mul(forward).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
	if dir.Len() == 0 {
		return
	}
	c.Position = c.Position.Add(dir.Normalize().Mul(dist))
}

// HandleInput lê mouse e teclado. Sem o mouse capturado a câmera fica parada.
func (c *Spectator) HandleInput(dt float32, grabbed bool) {
	if !grabbed {
		return
	}

	delta := rl.GetMouseDelta()
	if delta.X != 0 || delta.Y != 0 {
		c.Rotate(delta.X, delta.Y)
	}

	var f, r, u float32
	if rl.IsKeyDown(rl.KeyW) {
		f++
	}
	if rl.IsKeyDown(rl.KeyS) {
		f--
	}
	if rl.IsKeyDown(rl.KeyD) {
		r++
	}
	if rl.IsKeyDown(rl.KeyA) {
		r--
	}
	if rl.IsKeyDown(rl.KeySpace) {
		u++
	}
	if rl.IsKeyDown(rl.KeyLeftShift) {
		u--
	}

	vel := c.Speed * dt
	if rl.IsKeyDown(rl.KeyLeftControl) {
		vel *= boost
	}
	c.Move(f, r, u, vel)
}

// Camera3D converte para a câmera do Raylib.
func (c *Spectator) Camera3D() rl.Camera3D {
	target := c.Position.Add(c.Forward())
	return rl.Camera3D{
		Position:   rl.Vector3{X: c.Position.X(), Y: c.Position.Y(), Z: c.Position.Z()},
		Target:     rl.Vector3{X: target.X(), Y: target.Y(), Z: target.Z()},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.FOV,
		Projection: rl.CameraPerspective,
	}
}
