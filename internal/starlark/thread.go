package starlark

import (
	"sync"

	"go.starlark.net/starlark"
)

// ThreadPool recycles Starlark threads across cell evaluations.
// Rendering a page evaluates every formatted column once per row, so
// threads are reused rather than allocated per cell.
type ThreadPool struct {
	mu      sync.Mutex
	threads []*starlark.Thread
	maxSize int
}

// NewThreadPool creates a pool holding at most maxSize idle threads.
func NewThreadPool(maxSize int) *ThreadPool {
	if maxSize <= 0 {
		maxSize = 16
	}
	return &ThreadPool{
		threads: make([]*starlark.Thread, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get returns an idle thread or a new one. name shows up in error
// backtraces.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.threads); n > 0 {
		thread := p.threads[n-1]
		p.threads = p.threads[:n-1]
		thread.Name = name
		return thread
	}

	return &starlark.Thread{
		Name:  name,
		// Format expressions have no output
		Print: func(_ *starlark.Thread, _ string) {},
	}
}

// Put returns a thread to the pool. Threads beyond the pool size are dropped.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) < p.maxSize {
		// Clear state that would leak into the next cell
		thread.Name = ""
		thread.Uncancel()
		p.threads = append(p.threads, thread)
	}
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}
