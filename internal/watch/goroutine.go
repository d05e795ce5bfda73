package watch

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goroutineID parses the id of the calling goroutine from its stack header
// ("goroutine 42 [running]:"). It is only used to recognise a Stop issued
// from inside a handler.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// callers records the goroutines currently running a handler of a registry.
// A Stop issued by one of them must not wait for in-progress deliveries,
// since that delivery may be its own or may be waiting on it.
type callers struct {
	mu  sync.Mutex
	ids map[uint64]int
}

func newCallers() *callers {
	return &callers{ids: make(map[uint64]int)}
}

func (c *callers) enter(id uint64) {
	c.mu.Lock()
	c.ids[id]++
	c.mu.Unlock()
}

func (c *callers) leave(id uint64) {
	c.mu.Lock()
	if c.ids[id]--; c.ids[id] <= 0 {
		delete(c.ids, id)
	}
	c.mu.Unlock()
}

func (c *callers) has(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids[id] > 0
}
