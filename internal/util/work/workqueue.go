// Package work runs queued items on a fixed worker pool with priority
// ordering and bounded retry.
package work

import (
	"context"
	"errors"
	"sync"
	"time"

	"voicelab-server-go/internal/util"
)

var ErrPoolStopped = errors.New("worker pool stopped")

// Handler processes one item. A returned error triggers retry until the
// item's budget runs out.
type Handler[T any] func(ctx context.Context, item T) error

type task[T any] struct {
	data       T
	priority   int
	maxRetries int
	attempts   int
}

// Pool is a priority-ordered worker pool.
type Pool[T any] struct {
	queue   *util.PriorityQueue[*task[T]]
	handler Handler[T]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool

	// backoffBase is scaled by the attempt count between retries.
	backoffBase time.Duration
}

// NewPool starts workers goroutines immediately.
func NewPool[T any](workers int, handler Handler[T]) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool[T]{
		queue:       util.NewPriorityQueue[*task[T]](),
		handler:     handler,
		ctx:         ctx,
		cancel:      cancel,
		backoffBase: time.Second,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Submit enqueues an item with no retry budget.
func (p *Pool[T]) Submit(data T, priority int) error {
	return p.SubmitWithRetries(data, priority, 0)
}

// SubmitWithRetries enqueues an item that is retried up to maxRetries times
// after its first failure.
func (p *Pool[T]) SubmitWithRetries(data T, priority, maxRetries int) error {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return ErrPoolStopped
	}

	err := p.queue.Push(&task[T]{data: data, priority: priority, maxRetries: maxRetries}, priority)
	if errors.Is(err, util.ErrQueueClosed) {
		return ErrPoolStopped
	}
	return err
}

// Pending reports the queued item count, not counting items being processed.
func (p *Pool[T]) Pending() int {
	return p.queue.Len()
}

// Stop rejects new work, cancels in-flight handlers, and waits for workers.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.queue.Close()
	p.cancel()
	p.wg.Wait()
}

func (p *Pool[T]) run() {
	defer p.wg.Done()

	for {
		t, err := p.queue.Pop(p.ctx)
		if err != nil {
			return
		}
		p.process(t)
	}
}

func (p *Pool[T]) process(t *task[T]) {
	for {
		err := p.handler(p.ctx, t.data)
		if err == nil {
			return
		}

		t.attempts++
		if t.attempts > t.maxRetries {
			return
		}

		backoff := time.Duration(t.attempts) * p.backoffBase
		if backoff > time.Minute {
			backoff = time.Minute
		}
		select {
		case <-time.After(backoff):
		case <-p.ctx.Done():
			return
		}
	}
}
