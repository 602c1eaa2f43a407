package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"Blockscope/shared/config"
	"Blockscope/shared/engine"
	"Blockscope/shared/metrics"
	"Blockscope/shared/playback"
	"Blockscope/shared/telemetry"
	"Blockscope/shared/world"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Período do laço de reprodução (um tick do Minecraft).
const stepInterval = time.Second / playback.TicksPerSecond

// statusBoard guarda o último status para os handlers HTTP.
type statusBoard struct {
	mu     sync.RWMutex
	status telemetry.Status
}

func (b *statusBoard) set(s telemetry.Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

func (b *statusBoard) get() telemetry.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

func main() {
	session := flag.String("session", "", "Diretório da sessão gravada (ou primeiro argumento)")
	configPath := flag.String("config", "", "Arquivo de configuração (.json ou .yaml)")
	addr := flag.String("addr", "", "Endereço HTTP para /ws, /metrics e /status")
	speed := flag.Float64("speed", 0, "Velocidade de reprodução")
	loop := flag.Bool("loop", false, "Reiniciar o replay ao chegar no fim")
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Log em arquivo para depuração de crash
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile(filepath.Join("tmp", "server.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			defer logFile.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, logFile))
		}
	}
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║     Blockscope SERVER v0.1.0         ║")
	log.Println("╚══════════════════════════════════════╝")

	cfg := config.Load()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("[Servidor] %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *speed > 0 {
		cfg.PlaybackSpeed = *speed
	}

	dir := *session
	if dir == "" && flag.NArg() > 0 {
		dir = flag.Arg(0)
	}
	if dir == "" {
		dir = cfg.SessionDir
	}
	if dir == "" {
		log.Println("[Servidor] Uso: servidor -session <diretório da sessão>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, dir, *loop); err != nil {
		log.Fatalf("[Servidor] %v", err)
	}
	log.Println("[Servidor] Encerrado")
}

func run(ctx context.Context, cfg *config.Config, dir string, loop bool) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cachePath := ""
	if cfg.CacheEnabled {
		cachePath = cfg.CachePath
	}
	e, err := engine.Open(ctx, engine.Options{
		SessionDir:   dir,
		Assets:       os.DirFS(cfg.AssetsDir),
		CachePath:    cachePath,
		Validate:     cfg.StrictEvents,
		DefaultBiome: cfg.DefaultBiome,
		Metrics:      m,
	}, &world.CPUUploader{})
	if err != nil {
		return err
	}
	defer e.Close()

	e.BuildAtlas()
	e.World.RebuildMesh()

	sessionID := uuid.NewString()
	log.Printf("[Servidor] Sessão %s: %s (%d ticks)", sessionID, filepath.Base(dir), e.Session.MaxTick())

	hub := telemetry.NewHub()
	go hub.Run()
	defer hub.Close()

	board := &statusBoard{}
	srv, err := listen(cfg.ListenAddr, hub, reg, board)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	player := playback.New(e.World, e.Session.MaxTick(), nil)
	player.SetSpeed(cfg.PlaybackSpeed)
	player.Play()

	publish := func() {
		st := snapshot(sessionID, player, e.World)
		board.set(st)
		if err := hub.Publish(st); err != nil {
			log.Printf("[Servidor] Erro ao publicar status: %v", err)
		}
	}
	publish()

	ticker := time.NewTicker(stepInterval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			if player.Update(dt) {
				e.World.RebuildMesh()
				publish()
			}
			if player.Finished() {
				if !loop || player.MaxTick() == 0 {
					log.Printf("[Servidor] Replay concluído no tick %d", player.Tick())
					publish()
					<-ctx.Done()
					return nil
				}
				log.Println("[Servidor] Fim do replay, reiniciando")
				player.Restart()
				e.World.RebuildMesh()
				publish()
			}
		}
	}
}

func snapshot(id string, p *playback.Controller, w *world.World) telemetry.Status {
	st := p.Status()
	return telemetry.Status{
		SessionID: id,
		Tick:      st.Tick,
		MaxTick:   st.MaxTick,
		Playing:   st.Playing,
		Speed:     st.Speed,
		Blocks:    w.BlockCount(),
		Solid:     w.SolidCount(),
		Chunks:    w.ChunkCount(),
	}
}

// listen abre a porta antes de responder, para falhar cedo se estiver em uso.
func listen(addr string, hub *telemetry.Hub, reg *prometheus.Registry, board *statusBoard) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(board.get())
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("╔══════════════════════════════════════════════════════════════╗")
		log.Printf("║ ERRO CRÍTICO: Não foi possível abrir %s", addr)
		log.Printf("║ Provavelmente há outra instância do servidor rodando.        ║")
		log.Printf("╚══════════════════════════════════════════════════════════════╝")
		return nil, err
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Servidor] Erro no HTTP: %v", err)
		}
	}()
	log.Printf("[Servidor] Ouvindo em %s (/ws, /metrics, /status)", addr)
	return srv, nil
}
