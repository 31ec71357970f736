package objtable

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// cancelSweepInterval is how often the dispatcher services queued cancel
// requests between actions, bounding how long a canceled-while-queued
// action can linger (spec §4.1, §5).
const cancelSweepInterval = 50 * time.Millisecond

// dispatcher is the single worker thread that owns all table mutation
// (spec §4.1, §5). Grounded on the teacher's WorkerPool
// (internal/sync/worker.go): a goroutine loop reading off a ready queue
// with a panic-recovery guard around each unit of work, narrowed here to
// exactly one worker because the domain requires strict single-writer
// semantics, not a pool.
type dispatcher struct {
	table    *Table
	executor *executor

	group  *errgroup.Group
	cancel context.CancelFunc
}

func newDispatcher(t *Table) *dispatcher {
	return &dispatcher{table: t, executor: newExecutor(t)}
}

// start launches the dispatch loop and a cancel-sweep ticker, coordinated
// through an errgroup so stop() can wait for both to exit cleanly.
func (d *dispatcher) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	g, gctx := errgroup.WithContext(runCtx)
	d.group = g

	g.Go(func() error {
		d.loop(gctx)
		return nil
	})

	g.Go(func() error {
		d.sweepLoop(gctx)
		return nil
	})
}

// stop cancels the dispatcher's context, wakes a blocked GetNextAction,
// and waits for both goroutines to exit.
func (d *dispatcher) stop() {
	if d.cancel != nil {
		d.cancel()
	}

	d.table.queue.Close()

	if d.group != nil {
		_ = d.group.Wait()
	}
}

func (d *dispatcher) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		action := d.table.queue.GetNextAction()
		if action == nil {
			return
		}

		d.safeExecute(action)
		d.table.queue.recordCompleted()
	}
}

func (d *dispatcher) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(cancelSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.table.queue.ServiceCancelRequests()
		}
	}
}

// safeExecute runs one action's items through the executor behind a
// panic guard, matching the teacher's safeExecuteAction — no exception
// may propagate out of the dispatcher loop (spec §7 "No exceptions
// propagate to the dispatcher loop; all paths return a result code").
func (d *dispatcher) safeExecute(a *Action) {
	defer func() {
		if r := recover(); r != nil {
			d.table.logger.Error("objtable: recovered panic in dispatcher",
				slog.Any("panic", r))
			a.complete(rcInternal(ErrNilAction))
		}
	}()

	if a.isCanceled() {
		a.cancelTerminal(rcCanceledWhileQueued())
		return
	}

	a.markIssued()
	d.executor.performUpdates(a)
}
