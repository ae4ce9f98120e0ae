package capture

import "sync"

// History — кольцевой буфер последних сессий для интерактивных серверов.
// Безопасен для одновременного чтения и записи.
type History struct {
	mu    sync.RWMutex
	items []Snapshot
	next  int
	full  bool
	total int
}

// NewHistory создаёт историю на size сессий (минимум 1).
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{items: make([]Snapshot, size)}
}

// Add сохраняет снимок, вытесняя самый старый.
func (h *History) Add(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items[h.next] = s
	h.next = (h.next + 1) % len(h.items)
	if h.next == 0 {
		h.full = true
	}
	h.total++
}

// List возвращает снимки от старых к новым.
func (h *History) List() []Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.full {
		out := make([]Snapshot, h.next)
		copy(out, h.items[:h.next])
		return out
	}
	out := make([]Snapshot, 0, len(h.items))
	out = append(out, h.items[h.next:]...)
	return append(out, h.items[:h.next]...)
}

// Last возвращает последний снимок.
func (h *History) Last() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.full && h.next == 0 {
		return Snapshot{}, false
	}
	i := h.next - 1
	if i < 0 {
		i = len(h.items) - 1
	}
	return h.items[i], true
}

// Total — сколько сессий добавлено за всё время.
func (h *History) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}
