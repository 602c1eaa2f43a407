package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config armazena as configurações do Blockscope.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width" yaml:"window_width"`
	WindowHeight int32  `json:"window_height" yaml:"window_height"`
	WindowTitle  string `json:"window_title" yaml:"window_title"`
	Fullscreen   bool   `json:"fullscreen" yaml:"fullscreen"`
	TargetFPS    int32  `json:"target_fps" yaml:"target_fps"`

	// Dados
	AssetsDir    string `json:"assets_dir" yaml:"assets_dir"`     // Raiz com models/, blockstates/, textures/
	SessionDir   string `json:"session_dir" yaml:"session_dir"`   // Gravação padrão
	DefaultBiome string `json:"default_biome" yaml:"default_biome"` // Usado se o tick 0 não informar bioma

	// Cache de sessões (SQLite)
	CacheEnabled bool   `json:"cache_enabled" yaml:"cache_enabled"`
	CachePath    string `json:"cache_path" yaml:"cache_path"`

	// Telemetria / métricas (servidor headless e, opcionalmente, cliente)
	TelemetryEnabled bool   `json:"telemetry_enabled" yaml:"telemetry_enabled"`
	ListenAddr       string `json:"listen_addr" yaml:"listen_addr"`

	// Reprodução
	PlaybackSpeed float64 `json:"playback_speed" yaml:"playback_speed"`
	AutoPlay      bool    `json:"auto_play" yaml:"auto_play"`
	VideoEnabled  bool    `json:"video_enabled" yaml:"video_enabled"`

	// Câmera
	FOV               float32 `json:"fov" yaml:"fov"`
	NearPlane         float32 `json:"near_plane" yaml:"near_plane"`
	FarPlane          float32 `json:"far_plane" yaml:"far_plane"`
	CameraSpeed       float32 `json:"camera_speed" yaml:"camera_speed"` // Blocos por segundo
	CameraSensitivity float32 `json:"camera_sensitivity" yaml:"camera_sensitivity"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info" yaml:"show_debug_info"`
	WireframeMode bool `json:"wireframe_mode" yaml:"wireframe_mode"`
	StrictEvents  bool `json:"strict_events" yaml:"strict_events"` // Valida cada evento contra o schema
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1600,
		WindowHeight: 900,
		WindowTitle:  "Blockscope",
		Fullscreen:   false,
		TargetFPS:    60,

		AssetsDir:    "assets",
		SessionDir:   "",
		DefaultBiome: "minecraft:plains",

		CacheEnabled: true,
		CachePath:    filepath.Join("saves", "sessions.db"),

		TelemetryEnabled: false,
		ListenAddr:       "127.0.0.1:8080",

		PlaybackSpeed: 1.0,
		AutoPlay:      true,
		VideoEnabled:  true,

		FOV:               70.0,
		NearPlane:         0.1,
		FarPlane:          2000.0,
		CameraSpeed:       50.0,
		CameraSensitivity: 0.002,

		ShowDebugInfo: true,
		WireframeMode: false,
		StrictEvents:  true,
	}
}

// configPath retorna o caminho do arquivo de configuração ao lado do executável.
// Prefere config.yaml se existir, senão config.json.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	dir := filepath.Dir(execDir)
	for _, name := range []string{"config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, "config.json")
}

// Load carrega as configurações do arquivo ao lado do executável.
// Se o arquivo não existir ou for inválido, retorna as configurações padrão.
func Load() *Config {
	cfg, err := LoadFile(configPath())
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LoadFile carrega um arquivo explícito (YAML para .yaml/.yml, JSON para o resto).
// Campos ausentes mantêm o valor padrão.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao decodificar config %s: %w", path, err)
	}
	return cfg, nil
}

// Save salva as configurações em um arquivo JSON ao lado do executável.
func (c *Config) Save() error {
	return c.SaveFile(configPath())
}

// SaveFile salva as configurações no caminho informado (formato pela extensão).
func (c *Config) SaveFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
