package video

import (
	"image"
	"log"
	"sort"

	"Blockscope/shared/util"
)

// Até quantos frames à frente decodificamos em sequência em vez de fazer seek.
const sequentialWindow = 3

// TickToFrame converte um tick no frame a exibir. Com mapeamento, é o último
// frame capturado até o tick; sem ele, interpolação linear sobre maxTick.
func TickToFrame(tick int, mapping []int, frames, maxTick int) int {
	if frames <= 0 {
		return 0
	}
	tick = max(tick, 0)
	if len(mapping) > 0 {
		idx := sort.Search(len(mapping), func(i int) bool { return mapping[i] > tick }) - 1
		return util.Clamp(idx, 0, frames-1)
	}
	frame := int(int64(tick) * int64(frames) / int64(max(maxTick, 1)))
	return util.Clamp(frame, 0, frames-1)
}

// Sink recebe cada frame decodificado (ex: para subir como textura).
type Sink func(frame int, img image.Image)

// Sync mantém o vídeo no mesmo ponto do replay.
type Sync struct {
	src     FrameSource
	mapping []int
	maxTick int
	sink    Sink
	current int
}

// NewSync cria o sincronizador. src nil deixa o vídeo indisponível.
func NewSync(src FrameSource, mapping []int, maxTick int, sink Sink) *Sync {
	mode := "interpolação linear"
	if len(mapping) > 0 {
		mode = "mapeamento exato"
	}
	if src != nil {
		log.Printf("[Video] %d frames para %d ticks (%s)", src.NumFrames(), maxTick, mode)
	}
	return &Sync{src: src, mapping: mapping, maxTick: maxTick, sink: sink, current: -1}
}

// Available indica se há vídeo.
func (s *Sync) Available() bool { return s.src != nil && s.src.NumFrames() > 0 }

// CurrentFrame retorna o último frame posicionado (-1 antes do primeiro).
func (s *Sync) CurrentFrame() int { return s.current }

// SeekToTick posiciona o vídeo no frame do tick. Poucos frames à frente são
// decodificados em sequência; qualquer outro salto usa seek.
func (s *Sync) SeekToTick(tick int) {
	if !s.Available() {
		return
	}

	target := TickToFrame(tick, s.mapping, s.src.NumFrames(), s.maxTick)
	if target == s.current {
		return
	}

	if ahead := target - s.current; ahead > 0 && ahead <= sequentialWindow && s.current >= 0 {
		var img image.Image
		for s.current < target {
			next, err := s.src.Next()
			if err != nil {
				if err != ErrEndOfVideo {
					log.Printf("[Video] Erro ao decodificar frame %d: %v", s.current+1, err)
				}
				s.current = target
				return
			}
			img = next
			s.current++
		}
		s.deliver(img)
		return
	}

	img, err := s.src.Seek(target)
	s.current = target
	if err != nil {
		log.Printf("[Video] Erro de seek no frame %d: %v", target, err)
		return
	}
	s.deliver(img)
}

func (s *Sync) deliver(img image.Image) {
	if img != nil && s.sink != nil {
		s.sink(s.current, img)
	}
}

// Close libera a fonte.
func (s *Sync) Close() error {
	if s.src == nil {
		return nil
	}
	return s.src.Close()
}
