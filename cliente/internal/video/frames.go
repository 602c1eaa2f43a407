// Package video sincroniza o vídeo POV gravado com o tick do replay.
package video

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/nfnt/resize"
)

// ErrEndOfVideo indica que não há mais frames para decodificar.
var ErrEndOfVideo = errors.New("fim do vídeo")

// FrameSource decodifica frames de vídeo em ordem ou por índice.
type FrameSource interface {
	NumFrames() int
	// Next decodifica o frame seguinte ao último entregue.
	Next() (image.Image, error)
	// Seek decodifica o frame de índice i.
	Seek(i int) (image.Image, error)
	io.Closer
}

// ImageSequence lê frames já extraídos do vídeo (frames/000000.png, ...).
// Decodificar o mp4 exige ffmpeg; a extração fica fora do visualizador.
type ImageSequence struct {
	paths    []string
	next     int
	maxWidth uint
}

// ExtractCommand é a linha do ffmpeg que gera a sequência lida por OpenImageSequence.
const ExtractCommand = "ffmpeg -i <video>.mp4 <sessão>/frames/%06d.png"

// OpenImageSequence lista os PNG de dir em ordem de nome. maxWidth > 0
// reduz cada frame para essa largura (o overlay é pequeno).
func OpenImageSequence(dir string, maxWidth uint) (*ImageSequence, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("falha ao listar frames: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("nenhum frame em %s (extraia com: %s): %w", dir, ExtractCommand, os.ErrNotExist)
	}
	sort.Strings(paths)
	log.Printf("[Video] %d frames em %s", len(paths), dir)
	return &ImageSequence{paths: paths, maxWidth: maxWidth}, nil
}

// NumFrames retorna o número de frames.
func (s *ImageSequence) NumFrames() int { return len(s.paths) }

// Next decodifica o próximo frame.
func (s *ImageSequence) Next() (image.Image, error) {
	if s.next >= len(s.paths) {
		return nil, ErrEndOfVideo
	}
	img, err := s.decode(s.next)
	s.next++
	return img, err
}

// Seek decodifica o frame i; o próximo Next entrega i+1.
func (s *ImageSequence) Seek(i int) (image.Image, error) {
	if i < 0 || i >= len(s.paths) {
		return nil, fmt.Errorf("frame %d fora do intervalo [0,%d)", i, len(s.paths))
	}
	s.next = i
	return s.Next()
}

func (s *ImageSequence) decode(i int) (image.Image, error) {
	f, err := os.Open(s.paths[i])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", filepath.Base(s.paths[i]), err)
	}
	if s.maxWidth > 0 && uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Bilinear)
	}
	return img, nil
}

// Close não segura recursos; existe para satisfazer FrameSource.
func (s *ImageSequence) Close() error { return nil }
