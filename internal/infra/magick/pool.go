package magick

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Acquire once Close has been called.
var ErrPoolClosed = errors.New("command pool closed")

// Pool bounds how many external commands run at the same time.
// A Pool with a size of zero never blocks.
type Pool struct {
	runner Runner

	mu     sync.RWMutex
	sem    chan struct{}
	closed bool

	completed atomic.Int64
	failed    atomic.Int64
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Enabled   bool  `json:"enabled"`
	Capacity  int   `json:"capacity"`
	Idle      int   `json:"idle"`
	InUse     int   `json:"in_use"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// NewPool returns a pool with size slots in front of runner.
func NewPool(size int, runner Runner) *Pool {
	p := &Pool{runner: runner}
	if size > 0 {
		p.sem = make(chan struct{}, size)
		for i := 0; i < size; i++ {
			p.sem <- struct{}{}
		}
	}
	return p
}

// Acquire waits for a free slot. The returned release func must be called exactly once.
func (p *Pool) Acquire(ctx context.Context) (func(), error) {
	p.mu.RLock()
	closed, sem := p.closed, p.sem
	p.mu.RUnlock()

	if closed {
		return nil, ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sem == nil {
		return func() {}, nil
	}

	select {
	case <-sem:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { sem <- struct{}{} })
	}, nil
}

// Run executes a command inside a pool slot.
func (p *Pool) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	release, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out, err := p.runner.Run(ctx, name, args...)
	if err != nil {
		p.failed.Add(1)
		return out, err
	}
	p.completed.Add(1)
	return out, nil
}

// Stats reports capacity and usage.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Stats{
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
	if p.closed || p.sem == nil {
		return s
	}
	s.Enabled = true
	s.Capacity = cap(p.sem)
	s.Idle = len(p.sem)
	s.InUse = s.Capacity - s.Idle
	return s
}

// Close rejects further acquisitions. Running commands are not interrupted.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
