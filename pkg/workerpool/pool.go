// Package workerpool runs background jobs on a bounded set of goroutines.
//
// Checkout uses it to send invoices after the response has been written:
//
//	err := pool.Submit("invoices.send", func(ctx context.Context) error {
//	    _, err := invoices.Dispatch(ctx, orderID, groupID)
//	    return err
//	})
//	if errors.Is(err, workerpool.ErrPoolFull) {
//	    // shed the job; the payer can send invoices by hand
//	}
//
// Jobs receive a context that is cancelled when Shutdown's deadline passes.
// Failures and panics are logged and counted, never propagated.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/shashiranjanraj/groupcart/pkg/metrics"
)

// ErrPoolFull is returned by Submit when every worker is busy and the queue
// is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Job is one unit of background work.
type Job func(ctx context.Context) error

type task struct {
	name string
	job  Job
}

// Pool is a bounded goroutine pool.
type Pool struct {
	log    *slog.Logger
	tasks  chan task
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
}

// New starts a Pool with size workers and a queue of 2×size.
func New(size int, log *slog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		log:    log,
		tasks:  make(chan task, size*2),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(name string, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task{name: name, job: job}:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait enqueues job, blocking until there is room or ctx is done.
func (p *Pool) SubmitWait(ctx context.Context, name string, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task{name: name, job: job}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued and running jobs to
// finish. If ctx ends first, running jobs see their context cancelled and
// Shutdown returns ctx.Err() once they have exited. Safe to call twice.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
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
		<-done
		return ctx.Err()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("workerpool: job panicked",
				"job", t.name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			metrics.RecordJob(t.name, "panic")
		}
	}()

	if err := t.job(p.ctx); err != nil {
		p.log.Error("workerpool: job failed", "job", t.name, "error", err)
		metrics.RecordJob(t.name, "failed")
		return
	}
	metrics.RecordJob(t.name, "ok")
}
