package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"Blockscope/cliente/internal/app"
	"Blockscope/cliente/internal/video"
	"Blockscope/shared/config"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	session := flag.String("session", "", "Diretório da sessão gravada (ou primeiro argumento)")
	configPath := flag.String("config", "", "Arquivo de configuração (.json ou .yaml)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Uso: %s -session <diretório da sessão> [opções]\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nVídeo POV: extraia os frames antes com\n  %s\n", video.ExtractCommand)
	}
	flag.Parse()

	// Configurar Log em Arquivo
	f, err := os.OpenFile("debug_blockscope.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		defer f.Close()
		log.Println("--- INICIANDO BLOCKSCOPE ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║          Blockscope v0.1.0           ║")
	log.Println("║  Visualizador de replays Minecraft   ║")
	log.Println("╚══════════════════════════════════════╝")

	cfg := config.Load()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("[Blockscope] %v", err)
		}
		cfg = loaded
	}

	// Flags sobrescrevem o config salvo
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}

	dir := *session
	if dir == "" && flag.NArg() > 0 {
		dir = flag.Arg(0)
	}
	if dir == "" {
		dir = cfg.SessionDir
	}
	if dir == "" {
		log.Println("[Blockscope] Uso: cliente -session <diretório da sessão>")
		flag.Usage()
		os.Exit(2)
	}

	if err := app.New(cfg, dir).Run(); err != nil {
		log.Fatalf("[Blockscope] %v", err)
	}
}
