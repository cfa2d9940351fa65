package logbuf

import "sync"

// DefaultCapacity matches the number of lines the logs API serves.
const DefaultCapacity = 500

// Buffer is a bounded FIFO of formatted log lines. Append and Snapshot
// are safe to call from any goroutine.
type Buffer struct {
	mu       sync.Mutex
	lines    []string
	capacity int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		lines:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a line, evicting the oldest one once the buffer is full.
func (b *Buffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.lines) == b.capacity {
		copy(b.lines, b.lines[1:])
		b.lines = b.lines[:b.capacity-1]
	}
	b.lines = append(b.lines, line)
}

// Snapshot returns a copy of the buffered lines in arrival order.
func (b *Buffer) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
