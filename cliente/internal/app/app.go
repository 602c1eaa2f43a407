package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"Blockscope/cliente/internal/camera"
	"Blockscope/cliente/internal/render"
	"Blockscope/cliente/internal/video"
	"Blockscope/shared/config"
	"Blockscope/shared/engine"
	"Blockscope/shared/playback"
	"Blockscope/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Largura máxima dos frames do vídeo POV no overlay.
const videoWidth = 360

// App é o visualizador de replays.
type App struct {
	Config     *config.Config
	SessionDir string

	Cam *camera.Spectator

	engine   *engine.Engine
	renderer *render.Renderer
	player   *playback.Controller
	video    *video.Sync

	videoTex  rl.Texture2D
	playerPos util.Vector3

	mouseGrabbed bool
	scrubbing    bool
	frameCount   int
}

// New cria o visualizador para a sessão em sessionDir.
func New(cfg *config.Config, sessionDir string) *App {
	return &App{Config: cfg, SessionDir: sessionDir}
}

// Run abre a janela, carrega a sessão e roda o loop principal.
func (a *App) Run() error {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)
	defer rl.CloseWindow()

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0) // ESC alterna a captura do mouse

	log.Printf("[Blockscope] Janela inicializada: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	if err := a.load(); err != nil {
		return err
	}
	defer a.shutdown()

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}
	return nil
}

// load monta o pipeline. A ordem importa: todas as texturas são registradas
// antes do atlas ser congelado e enviado, e só então as malhas sobem.
func (a *App) load() error {
	a.drawSplash("Carregando sessão...")

	a.renderer = render.NewRenderer()
	a.renderer.Wireframe = a.Config.WireframeMode

	cachePath := ""
	if a.Config.CacheEnabled {
		cachePath = a.Config.CachePath
	}
	e, err := engine.Open(context.Background(), engine.Options{
		SessionDir:   a.SessionDir,
		Assets:       os.DirFS(a.Config.AssetsDir),
		CachePath:    cachePath,
		Validate:     a.Config.StrictEvents,
		DefaultBiome: a.Config.DefaultBiome,
	}, a.renderer)
	if err != nil {
		return fmt.Errorf("falha ao abrir sessão %s: %w", a.SessionDir, err)
	}
	a.engine = e

	a.drawSplash("Montando atlas e malhas...")
	a.renderer.LoadAtlas(e.BuildAtlas())
	rebuilt := e.World.RebuildMesh()
	log.Printf("[App] Tick 0: %d blocos, %d chunks montados", e.World.BlockCount(), rebuilt)

	start := e.Session.InitialPlayerPos()
	a.playerPos = start
	a.Cam = camera.AbovePlayer(start, a.Config.CameraSpeed, a.Config.CameraSensitivity, a.Config.FOV)

	a.video = video.NewSync(a.openVideo(), e.Session.FrameToTick(), e.Session.MaxTick(), a.showFrame)
	a.video.SeekToTick(0)

	a.player = playback.New(e.World, e.Session.MaxTick(), a.video)
	a.player.OnTick = a.onTick
	a.player.SetSpeed(a.Config.PlaybackSpeed)
	if a.Config.AutoPlay {
		a.player.Play()
	}

	a.setMouseGrab(true)
	log.Println("[App] Controles: WASD mover, Space/Shift subir/descer, Ctrl rápido, Esc mouse, P play/pause")
	return nil
}

// openVideo procura os frames extraídos em <sessão>/frames.
func (a *App) openVideo() video.FrameSource {
	if !a.Config.VideoEnabled {
		return nil
	}
	src, err := video.OpenImageSequence(filepath.Join(a.SessionDir, "frames"), videoWidth)
	if err != nil {
		log.Printf("[Video] Sem vídeo: %v", err)
		return nil
	}
	return src
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	if a.video != nil {
		a.video.Close()
	}
	if a.videoTex.ID != 0 {
		rl.UnloadTexture(a.videoTex)
	}
	if a.engine != nil {
		a.engine.Close() // libera os modelos antes do contexto GL
	}
	if a.renderer != nil {
		a.renderer.Unload()
	}

	if err := a.Config.Save(); err != nil {
		log.Printf("[Blockscope] Erro ao salvar configurações: %v", err)
	}
}
