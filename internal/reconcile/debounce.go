package reconcile

import (
	"context"
	"sync"
	"time"
)

// DefaultQuietPeriod is the trailing-edge delay used when none is configured.
const DefaultQuietPeriod = 1500 * time.Millisecond

// Debouncer runs a task once activity has been quiet for a period. Every Trigger restarts the
// timer. Expired timers queue a fire for a single worker goroutine, so task runs never overlap
// and fires that arrive while a run is in flight collapse into one follow-up run.
type Debouncer struct {
	quiet time.Duration
	task  func(ctx context.Context)
	ctx   context.Context

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool

	fire chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewDebouncer starts the worker. ctx is handed to every task run and is not cancelled by Stop.
func NewDebouncer(ctx context.Context, quiet time.Duration, task func(ctx context.Context)) *Debouncer {
	if ctx == nil {
		ctx = context.Background()
	}
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	d := &Debouncer{
		quiet: quiet,
		task:  task,
		ctx:   ctx,
		fire:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Trigger (re)arms the quiet-period timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.resetLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() { d.expire(gen) })
}

// RunNow drops any armed timer and queues a run immediately.
func (d *Debouncer) RunNow() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.resetLocked()
	d.enqueue()
}

// Cancel drops an armed timer without stopping the debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

// Pending reports whether a timer is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the armed timer and drops queued runs. A run already in flight completes.
// Stop does not wait; use Wait for that.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.resetLocked()
	close(d.quit)
}

// Wait blocks until the worker has exited after Stop.
func (d *Debouncer) Wait() {
	<-d.done
}

func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || gen != d.gen {
		return
	}
	d.timer = nil
	d.enqueue()
}

// resetLocked invalidates the armed timer; a callback that already started sees a stale generation.
func (d *Debouncer) resetLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) enqueue() {
	select {
	case d.fire <- struct{}{}:
	default:
	}
}

func (d *Debouncer) run() {
	defer close(d.done)
	for {
		select {
		case <-d.quit:
			return
		case <-d.fire:
			d.mu.Lock()
			stopped := d.stopped
			d.mu.Unlock()
			if stopped {
				return
			}
			d.task(d.ctx)
		}
	}
}
