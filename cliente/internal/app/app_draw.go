package app

import (
	"fmt"
	"path/filepath"

	"Blockscope/shared/playback"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var skyColor = rl.NewColor(135, 181, 235, 255)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(skyColor)

	a.drawScene()
	a.drawVideo()
	a.drawHUD()
	a.drawTimeline()

	rl.EndDrawing()
}

// drawSplash mostra uma tela de carregamento enquanto a sessão é montada.
func (a *App) drawSplash(status string) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	title := "BLOCKSCOPE"
	rl.DrawText(title, (w-rl.MeasureText(title, 40))/2, h/2-40, 40, rl.Gold)
	rl.DrawText(status, (w-rl.MeasureText(status, 20))/2, h/2+20, 20, rl.LightGray)
	rl.EndDrawing()
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	cam := a.Cam.Camera3D()
	rl.BeginMode3D(cam)
	a.renderer.Draw(cam, a.engine.World)
	a.renderer.DrawPlayer(a.playerPos)
	rl.EndMode3D()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(330)
	height := int32(200)
	x, y := int32(10), int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	// FPS
	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)
	rl.DrawText(filepath.Base(a.SessionDir), x+120, y+14, 14, rl.Gold)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	st := a.player.Status()
	w := a.engine.World
	state := "PAUSADO"
	if st.Playing {
		state = "TOCANDO"
	}
	rl.DrawText(fmt.Sprintf("Tick: %d / %d  (%.1fs)", st.Tick, st.MaxTick, st.Seconds), x+10, y+45, 16, rl.White)
	rl.DrawText(fmt.Sprintf("%s  velocidade %gx", state, st.Speed), x+10, y+65, 16, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Blocos: %d  Sólidos: %d", w.BlockCount(), w.SolidCount()), x+10, y+85, 14, rl.LightGray)

	opaque, transparent := w.VertexCounts()
	rl.DrawText(fmt.Sprintf("Chunks: %d  Vértices: %d + %d", w.ChunkCount(), opaque, transparent), x+10, y+103, 14, rl.LightGray)

	pos := a.Cam.Position
	rl.DrawText(fmt.Sprintf("Câmera: (%.1f, %.1f, %.1f)  Bioma: %s", pos.X(), pos.Y(), pos.Z(), a.engine.Biome), x+10, y+121, 12, rl.Gray)

	rl.DrawLine(x+10, y+140, x+width-10, y+140, rl.NewColor(100, 100, 100, 100))
	rl.DrawText("P: play | +/-: velocidade | 1-4: presets | R: reiniciar", x+10, y+150, 12, rl.SkyBlue)
	rl.DrawText("Setas: ±5s | Esc: mouse | F3: HUD | F4: wireframe", x+10, y+166, 12, rl.SkyBlue)
	if a.renderer.Wireframe {
		rl.DrawText("[WIREFRAME ON]", x+10, y+182, 12, rl.Orange)
	}
}

// scrubBar é a área clicável da linha do tempo.
func scrubBar() rl.Rectangle {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	return rl.Rectangle{X: 20, Y: h - 30, Width: w - 40, Height: 12}
}

// drawTimeline desenha a barra de progresso e os presets de velocidade.
func (a *App) drawTimeline() {
	bar := scrubBar()
	rl.DrawRectangleRec(bar, rl.NewColor(0, 0, 0, 150))

	frac := float32(1)
	if m := a.player.MaxTick(); m > 0 {
		frac = float32(a.player.Tick()) / float32(m)
	}
	fill := bar
	fill.Width *= frac
	rl.DrawRectangleRec(fill, rl.NewColor(230, 180, 40, 220))
	rl.DrawRectangleLinesEx(bar, 1, rl.NewColor(200, 200, 200, 160))

	// presets acima da barra, o ativo em destaque
	x := int32(bar.X)
	y := int32(bar.Y) - 22
	for i, s := range playback.Presets {
		label := fmt.Sprintf("%d:%gx", i+1, s)
		color := rl.LightGray
		if a.player.Speed() == s {
			color = rl.Gold
		}
		rl.DrawText(label, x, y, 16, color)
		x += rl.MeasureText(label, 16) + 14
	}

	if a.player.Finished() {
		msg := "FIM  (R para reiniciar)"
		rl.DrawText(msg, int32(bar.X+bar.Width)-rl.MeasureText(msg, 16), y, 16, rl.Orange)
	}
}

// drawVideo mostra o frame de vídeo atual no canto superior direito.
func (a *App) drawVideo() {
	if a.videoTex.ID == 0 {
		return
	}
	w := a.videoTex.Width
	h := a.videoTex.Height
	x := int32(rl.GetScreenWidth()) - w - 10
	y := int32(10)
	rl.DrawRectangle(x-2, y-2, w+4, h+4, rl.NewColor(0, 0, 0, 200))
	rl.DrawTexture(a.videoTex, x, y, rl.White)
	rl.DrawText(fmt.Sprintf("frame %d", a.video.CurrentFrame()), x+6, y+h-18, 12, rl.RayWhite)
}
