package app

import (
	"log"

	"Blockscope/shared/playback"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Passo das setas em segundos de replay.
const seekStep = 5.0

var presetKeys = [len(playback.Presets)]int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour}

// updateInput processa os atalhos de reprodução e de janela.
func (a *App) updateInput() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		a.setMouseGrab(!a.mouseGrabbed)
	}

	if rl.IsKeyPressed(rl.KeyP) {
		a.player.TogglePlay()
		log.Printf("[App] Reprodução: %v", a.player.Playing())
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		a.player.SpeedUp()
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		a.player.SpeedDown()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.player.Restart()
		log.Println("[App] Replay reiniciado")
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		a.player.SeekSeconds(seekStep)
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		a.player.SeekSeconds(-seekStep)
	}
	for i, key := range presetKeys {
		if rl.IsKeyPressed(key) {
			a.player.SetPreset(i)
		}
	}

	// Toggle debug info
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}
	// Toggle wireframe
	if rl.IsKeyPressed(rl.KeyF4) {
		a.Config.WireframeMode = !a.Config.WireframeMode
		a.renderer.Wireframe = a.Config.WireframeMode
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	a.updateScrub()
}

// updateScrub arrasta a barra de progresso com o mouse livre.
func (a *App) updateScrub() {
	if a.mouseGrabbed {
		return
	}
	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) && rl.CheckCollisionPointRec(mouse, scrubBar()) {
		a.scrubbing = true
		a.player.SetScrubbing(true)
	}
	if !a.scrubbing {
		return
	}
	a.seekToMouse()
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		a.scrubbing = false
		a.player.SetScrubbing(false)
	}
}

func (a *App) setMouseGrab(on bool) {
	a.mouseGrabbed = on
	if on {
		rl.DisableCursor()
	} else {
		rl.EnableCursor()
	}
}
