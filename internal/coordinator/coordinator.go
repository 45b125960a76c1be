// Package coordinator serializes writes to cloud storage. Mutations are
// queued and flushed as one concurrent batch once the queue has been quiet
// for the debounce delay; urgent writes run immediately. At most one batch
// or immediate write is in progress at any time.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"budgettracker/internal/logger"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = time.Second

// ErrClosed is returned by Immediate after Close.
var ErrClosed = errors.New("coordinator: closed")

// Operation is a unit of work for the coordinator. Pending operations that
// share a non-empty Key are coalesced: the latest one replaces the earlier.
type Operation struct {
	Key string
	Run func(ctx context.Context) error
}

// Options configures a Coordinator.
type Options struct {
	Debounce time.Duration
}

// Stats is a snapshot of the coordinator's counters.
type Stats struct {
	Enqueued  int64 `json:"enqueued"`
	Coalesced int64 `json:"coalesced"`
	Flushes   int64 `json:"flushes"`
	Immediate int64 `json:"immediate"`
	Failed    int64 `json:"failed"`
	Pending   int   `json:"pending"`
	Running   bool  `json:"running"`
}

// Coordinator batches and serializes operations. It is safe for concurrent
// use.
type Coordinator struct {
	debounce time.Duration
	log      *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	queue []Operation
	keys  map[string]int
	timer *time.Timer
	// running is non-nil while a batch or immediate operation executes and
	// is closed when it finishes.
	running chan struct{}
	closed  bool
	stats   Stats
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		debounce: opts.Debounce,
		log:      logger.Named("coordinator"),
		ctx:      ctx,
		cancel:   cancel,
		keys:     make(map[string]int),
	}
}

// Enqueue queues op and restarts the debounce timer. Errors of queued
// operations are logged, never returned.
func (c *Coordinator) Enqueue(op Operation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.log.Warnw("Dropping operation enqueued after close", "key", op.Key)
		return
	}

	if op.Key != "" {
		if i, ok := c.keys[op.Key]; ok {
			c.queue[i] = op
			c.stats.Coalesced++
			c.armLocked()
			return
		}
		c.keys[op.Key] = len(c.queue)
	}
	c.queue = append(c.queue, op)
	c.stats.Enqueued++
	c.armLocked()
}

// Immediate runs op as soon as no other work is in progress and returns
// its error. It is never coalesced with queued operations.
func (c *Coordinator) Immediate(ctx context.Context, op Operation) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	c.stats.Immediate++
	c.mu.Unlock()

	if err := c.run(ctx, op); err != nil {
		c.mu.Lock()
		c.stats.Failed++
		c.mu.Unlock()
		return err
	}
	return nil
}

// Flush runs the queued operations now instead of waiting for the timer.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
	return c.flush(ctx)
}

// Close flushes the queue and stops accepting work.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	err := c.Flush(ctx)
	c.cancel()
	return err
}

// Stats returns a snapshot of the counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Pending = len(c.queue)
	s.Running = c.running != nil
	return s
}

func (c *Coordinator) armLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		if err := c.flush(c.ctx); err != nil {
			c.log.Warnw("Debounced flush did not run", "error", err)
		}
	})
}

func (c *Coordinator) flush(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	batch := c.queue
	c.queue = nil
	c.keys = make(map[string]int)
	if len(batch) > 0 {
		c.stats.Flushes++
	}
	c.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	var wg sync.WaitGroup
	var failed atomic.Int64
	for _, op := range batch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.run(ctx, op); err != nil {
				failed.Add(1)
				c.log.Errorw("Queued operation failed", "key", op.Key, "error", err)
			}
		}()
	}
	wg.Wait()

	n := failed.Load()
	c.mu.Lock()
	c.stats.Failed += n
	c.mu.Unlock()

	c.log.Debugw("Flushed queued operations",
		"count", len(batch),
		"failed", n,
		"duration", time.Since(start),
	)
	return nil
}

// acquire waits until no work is in progress and marks the coordinator busy.
func (c *Coordinator) acquire(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.running == nil {
			c.running = make(chan struct{})
			c.mu.Unlock()
			return nil
		}
		done := c.running
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Coordinator) release() {
	c.mu.Lock()
	close(c.running)
	c.running = nil
	c.mu.Unlock()
}

func (c *Coordinator) run(ctx context.Context, op Operation) (err error) {
	if op.Run == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation %q panicked: %v", op.Key, r)
		}
	}()
	return op.Run(ctx)
}
