// Package telemetry publica o estado do replay para observadores via WebSocket.
// O canal é somente leitura: mensagens recebidas dos clientes são descartadas.
package telemetry

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	quit       chan struct{}
	closeOnce  sync.Once
	mu         sync.Mutex

	last []byte // último status, enviado a quem conecta
}

// NewHub cria um hub parado; chame Run em uma goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, 4096), // Bufferizado para evitar deadlocks e bloqueios
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
	}
}

// Run processa registros e broadcasts até Close.
func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
			}
			clear(h.clients)
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			lock := &sync.Mutex{}
			h.clients[client] = lock
			last := h.last
			h.mu.Unlock()
			log.Printf("[Hub] Cliente registrado: %s", client.RemoteAddr())
			if last != nil {
				h.write(client, lock, last)
			}
		case client := <-h.unregister:
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("[Hub] Cliente desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			// Criamos uma lista de clientes para iterar fora do lock do hub
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			var targets []clientEntry
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			for _, target := range targets {
				h.write(target.conn, target.lock, message)
			}
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, lock *sync.Mutex, message []byte) {
	lock.Lock()
	defer lock.Unlock()
	if err := conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
		log.Printf("[Hub] Erro ao enviar para cliente %s: %v", conn.RemoteAddr(), err)
		conn.Close()
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}
}

// Clients retorna o número de conexões ativas.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close encerra o loop e fecha todas as conexões.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

// safeSend envia para o canal de broadcast sem bloquear depois do Close
func (h *Hub) safeSend(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}

// Publish guarda e transmite um novo status.
func (h *Hub) Publish(s Status) error {
	data, err := EncodeStatus(s)
	if err != nil {
		return fmt.Errorf("falha ao serializar status: %w", err)
	}
	h.mu.Lock()
	h.last = data
	h.mu.Unlock()
	h.safeSend(data)
	return nil
}

// ServeWS faz o upgrade da conexão e a mantém até o cliente sair.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] Erro no upgrade do WebSocket: %v", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.quit:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.quit:
			}
		}()

		for {
			// Mensagens dos observadores são ignoradas
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
