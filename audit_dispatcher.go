package goDash

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

type queuedAudit struct {
	ctx   context.Context
	event AuditEvent
}

// auditDispatcher hands session audit events to the sink on its own
// goroutine so a slow sink never holds up Login, Logout or a forced logout.
// Audit disabled means a nil dispatcher; all methods accept nil.
type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool

	queue   chan queuedAudit
	stop    chan struct{}
	stopped sync.WaitGroup
	once    sync.Once

	closing atomic.Bool
	dropped atomic.Uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan queuedAudit, max(cfg.BufferSize, 1)),
		stop:       make(chan struct{}),
	}
	d.stopped.Add(1)
	go d.loop()
	return d
}

func (d *auditDispatcher) loop() {
	defer d.stopped.Done()
	for {
		select {
		case q := <-d.queue:
			d.sink.Emit(q.ctx, q.event)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain forwards everything accepted before Close.
func (d *auditDispatcher) drain() {
	for {
		select {
		case q := <-d.queue:
			d.sink.Emit(q.ctx, q.event)
		default:
			return
		}
	}
}

// Emit queues event. The sink sees ctx's values but not its cancellation,
// since the session change it describes has already committed.
//
// With DropIfFull a full queue drops and counts the event; otherwise Emit
// waits for room, ctx or Close.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closing.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	q := queuedAudit{ctx: context.WithoutCancel(ctx), event: event}

	if d.dropIfFull {
		select {
		case d.queue <- q:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- q:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops intake, delivers what is queued and closes the sink when it is
// an io.Closer. Later calls return immediately.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closing.Store(true)
		close(d.stop)
		d.stopped.Wait()
		if c, ok := d.sink.(io.Closer); ok {
			_ = c.Close()
		}
	})
}

// Dropped reports events discarded on a full queue.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
