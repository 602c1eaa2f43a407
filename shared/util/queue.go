package util

import "sync"

// UniqueQueue é uma fila thread-safe que garante elementos únicos por chave.
// O mundo usa para enfileirar chunks sujos para remeshing na ordem em que sujaram.
type UniqueQueue[K comparable, V any] struct {
	mu      sync.Mutex
	items   []entry[K, V]
	present map[K]int // chave -> índice em items
}

type entry[K comparable, V any] struct {
	Key   K
	Value V
}

// NewUniqueQueue cria uma nova UniqueQueue.
func NewUniqueQueue[K comparable, V any]() *UniqueQueue[K, V] {
	return &UniqueQueue[K, V]{
		items:   make([]entry[K, V], 0, 64),
		present: make(map[K]int),
	}
}

// Enqueue adiciona um item se a chave ainda não existir na fila.
// Se a chave já existir, o valor é atualizado e a posição mantida.
// Retorna true se foi adicionado (novo), false se foi atualizado.
func (q *UniqueQueue[K, V]) Enqueue(key K, value V) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i, ok := q.present[key]; ok {
		q.items[i].Value = value
		return false
	}

	q.present[key] = len(q.items)
	q.items = append(q.items, entry[K, V]{Key: key, Value: value})
	return true
}

// Dequeue remove e retorna o primeiro item da fila.
// Retorna a chave, o valor e true se havia item; zero values e false se vazia.
func (q *UniqueQueue[K, V]) Dequeue() (K, V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}

	e := q.items[0]
	q.items = q.items[1:]
	delete(q.present, e.Key)
	for k, i := range q.present {
		q.present[k] = i - 1
	}
	return e.Key, e.Value, true
}

// Drain remove todos os itens de uma vez, na ordem de chegada.
func (q *UniqueQueue[K, V]) Drain() []K {
	q.mu.Lock()
	defer q.mu.Unlock()

	keys := make([]K, len(q.items))
	for i, e := range q.items {
		keys[i] = e.Key
	}
	q.items = q.items[:0]
	clear(q.present)
	return keys
}

// Len retorna o número de items na fila.
func (q *UniqueQueue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear limpa a fila.
func (q *UniqueQueue[K, V]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
	clear(q.present)
}

// Contains verifica se uma chave está na fila.
func (q *UniqueQueue[K, V]) Contains(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.present[key]
	return ok
}
