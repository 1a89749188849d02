package worker

import (
	"context"
	"log"
	"sync"

	"snip-pin/src/session"
)

// ResultCallback is invoked when a delivery completes (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(res session.Result, err error)

// Pool is a fixed-size delivery worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx  context.Context
	snip session.Snip
	opts session.Options
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to 1 when size<=0; file writes gain
// nothing from parallelism. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				log.Printf("Worker: Delivering snip %s (%d bytes)", j.snip.Rect, len(j.snip.PNG))
				res, err := session.Deliver(j.ctx, j.snip, j.opts)
				log.Printf("Worker: Delivery completed, location=%q, err=%v", res.Location, err)
				if j.cb != nil {
					j.cb(res, err)
				}
			}
		}()
	}
}

// Submit enqueues a delivery if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, snip session.Snip, opts session.Options, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, snip: snip, opts: opts, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
