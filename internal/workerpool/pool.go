// Package workerpool runs fire-and-forget tasks on a fixed number of
// goroutines fed by a bounded queue.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull = errors.New("worker queue is full")
	ErrClosed    = errors.New("worker pool is closed")
)

type Policy string

const (
	// Reject fails Submit at once when the queue is full.
	Reject Policy = "reject"
	// Block makes Submit wait for queue space up to the block timeout.
	Block Policy = "block"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case Reject, Block:
		return p, nil
	}
	return "", fmt.Errorf("unknown queue policy %q", s)
}

type Task func(ctx context.Context)

type Pool struct {
	queue        chan Task
	policy       Policy
	blockTimeout time.Duration
	log          logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func New(size int, queueSize int, policy Policy, blockTimeout time.Duration, log logrus.FieldLogger) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:        make(chan Task, queueSize),
		policy:       policy,
		blockTimeout: blockTimeout,
		log:          log.WithField("source", "workerpool"),
		ctx:          ctx,
		cancel:       cancel,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- task:
		return nil
	default:
	}

	if p.policy != Block {
		return ErrQueueFull
	}

	t := time.NewTimer(p.blockTimeout)
	defer t.Stop()
	select {
	case p.queue <- task:
		return nil
	case <-t.C:
		return ErrQueueFull
	}
}

// Close stops intake and waits until every queued task has run or ctx ends.
// Tasks still running when ctx ends see their context cancelled.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("workerpool.Close: %w", ctx.Err())
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("panic", r).Error("task panicked")
		}
	}()
	task(p.ctx)
}
