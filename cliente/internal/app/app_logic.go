package app

import (
	"image"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++
	dt := rl.GetFrameTime()

	a.Cam.HandleInput(dt, a.mouseGrabbed)
	a.updateInput()

	a.player.Update(float64(dt))

	// só os chunks sujos são remontados; sem mudanças é gratuito
	if n := a.engine.World.RebuildMesh(); n > 0 && a.Config.ShowDebugInfo && a.frameCount%120 == 0 {
		log.Printf("[App] %d chunks remontados no tick %d", n, a.player.Tick())
	}
}

// onTick move o marcador do jogador para a posição gravada.
func (a *App) onTick(tick int) {
	if pos, ok := a.engine.PlayerPosition(tick); ok {
		a.playerPos = pos
	}
}

// showFrame troca a textura do overlay de vídeo.
func (a *App) showFrame(_ int, img image.Image) {
	if a.videoTex.ID != 0 {
		rl.UnloadTexture(a.videoTex)
	}
	a.videoTex = rl.LoadTextureFromImage(rl.NewImageFromImage(img))
}

// seekToMouse converte a posição do mouse na barra em um tick.
func (a *App) seekToMouse() {
	bar := scrubBar()
	x := rl.GetMousePosition().X - bar.X
	frac := x / bar.Width
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	target := int(frac*float32(a.player.MaxTick()) + 0.5)
	if target != a.player.Tick() {
		a.player.Seek(target)
	}
}
