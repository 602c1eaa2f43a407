// Package mapdata guarda em SQLite os snapshots de sessões já lidas, para
// que a reabertura de uma sessão grande não precise reprocessar os jsonl.
package mapdata

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SessionModel representa o esquema do banco de dados para uma sessão lida
type SessionModel struct {
	ID          string `gorm:"primaryKey"` // uuid
	Dir         string `gorm:"uniqueIndex"`
	Fingerprint string
	MaxTick     int
	Data        []byte    // Snapshot da sessão serializado em GOB
	UpdatedAt   time.Time // Para controle interno do GORM
}

// CacheMetadata armazena informações globais do cache no banco
type CacheMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

// ErrNotCached indica que não há snapshot válido para a sessão.
var ErrNotCached = errors.New("sessão não está no cache")

// SessionCache é o cache de sessões em SQLite.
type SessionCache struct {
	DB   *gorm.DB
	path string
}

// OpenSessionCache abre (ou cria) o banco de dados SQLite e roda migrações.
func OpenSessionCache(path string) (*SessionCache, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("falha ao criar diretório do cache: %w", err)
		}
	}

	// Configuramos o logger para ser silencioso em produção
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&SessionModel{}, &CacheMetadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	c := &SessionCache{DB: db, path: path}
	if err := c.checkFormat(); err != nil {
		return nil, err
	}

	log.Printf("[Cache] Banco de dados SQLite aberto: %s", path)
	return c, nil
}

// checkFormat descarta as sessões gravadas com outra versão do formato.
func (c *SessionCache) checkFormat() error {
	want := strconv.Itoa(CurrentFormatVersion)
	var meta CacheMetadata
	err := c.DB.Where(&CacheMetadata{Key: "FormatVersion"}).First(&meta).Error
	if err == nil && meta.Value == want {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("falha ao ler versão do cache: %w", err)
	}
	if err == nil {
		log.Printf("[Cache] Formato %s obsoleto, limpando sessões", meta.Value)
		if err := c.DB.Where("1 = 1").Delete(&SessionModel{}).Error; err != nil {
			return fmt.Errorf("falha ao limpar cache: %w", err)
		}
	}
	if err := c.DB.Save(&CacheMetadata{Key: "FormatVersion", Value: want}).Error; err != nil {
		return fmt.Errorf("falha ao gravar versão do cache: %w", err)
	}
	return nil
}

// Get retorna o snapshot da sessão se a impressão digital ainda bater.
func (c *SessionCache) Get(dir, fingerprint string) ([]byte, error) {
	if c == nil || c.DB == nil {
		return nil, fmt.Errorf("banco de dados não inicializado")
	}

	var model SessionModel
	if err := c.DB.First(&model, "dir = ?", dir).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("falha ao ler sessão %s: %w", dir, err)
	}
	if model.Fingerprint != fingerprint {
		return nil, ErrNotCached
	}
	return model.Data, nil
}

// Put grava (ou substitui) o snapshot da sessão.
func (c *SessionCache) Put(dir, fingerprint string, maxTick int, data []byte) error {
	if c == nil || c.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}

	var model SessionModel
	err := c.DB.First(&model, "dir = ?", dir).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		model = SessionModel{ID: uuid.NewString(), Dir: dir}
	case err != nil:
		return fmt.Errorf("falha ao ler sessão %s: %w", dir, err)
	}

	model.Fingerprint = fingerprint
	model.MaxTick = maxTick
	model.Data = data

	// Upsert (Cria ou Atualiza)
	if err := c.DB.Save(&model).Error; err != nil {
		log.Printf("[Cache] ERRO ao salvar sessão %s: %v", dir, err)
		return fmt.Errorf("falha ao salvar sessão %s: %w", dir, err)
	}
	return nil
}

// Len retorna o número de sessões guardadas.
func (c *SessionCache) Len() int {
	var n int64
	c.DB.Model(&SessionModel{}).Count(&n)
	return int(n)
}

// Close fecha a conexão com o banco.
func (c *SessionCache) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("falha ao obter conexão: %w", err)
	}
	return sqlDB.Close()
}
