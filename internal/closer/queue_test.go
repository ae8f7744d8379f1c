package closer

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/domain"
)

type recordingRunner struct {
	mu        sync.Mutex
	order     []string
	inFlight  int
	maxFlight int
	block     chan struct{}
}

func (r *recordingRunner) Run(ctx context.Context, job domain.CloseJob) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxFlight {
		r.maxFlight = r.inFlight
	}
	r.order = append(r.order, job.ID)
	r.mu.Unlock()

	if r.block != nil {
		<-r.block
	}

	r.mu.Lock()
	r.inFlight--
	r.mu.Unlock()
	return nil
}

func (r *recordingRunner) snapshot() ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...), r.maxFlight
}

func TestEnqueuePositions(t *testing.T) {
	q := NewQueue()
	for i, want := range []int{1, 2, 3} {
		got := q.Enqueue(domain.CloseJob{ID: string(rune('a' + i))})
		if got != want {
			t.Fatalf("Enqueue #%d position = %d, want %d", i+1, got, want)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
}

func TestDequeueFIFO(t *testing.T) {
	q := NewQueue()
	q.Enqueue(domain.CloseJob{ID: "first"})
	q.Enqueue(domain.CloseJob{ID: "second"})
	q.Enqueue(domain.CloseJob{ID: "third"})

	stop := make(chan struct{})
	for _, want := range []string{"first", "second", "third"} {
		job, ok := q.Dequeue(stop)
		if !ok {
			t.Fatal("Dequeue returned false with jobs queued")
		}
		if job.ID != want {
			t.Fatalf("Dequeue = %q, want %q", job.ID, want)
		}
		q.Finish()
	}
}

func TestCurrentProcessing(t *testing.T) {
	q := NewQueue()
	if _, ok := q.CurrentProcessing(); ok {
		t.Fatal("CurrentProcessing reported a job on an idle queue")
	}

	q.Enqueue(domain.CloseJob{ID: "job-1"})
	job, _ := q.Dequeue(make(chan struct{}))
	cur, ok := q.CurrentProcessing()
	if !ok || cur.ID != job.ID {
		t.Fatalf("CurrentProcessing = (%v, %v), want job-1 in flight", cur.ID, ok)
	}

	q.Finish()
	if _, ok := q.CurrentProcessing(); ok {
		t.Fatal("CurrentProcessing still reports a job after Finish")
	}
}

func TestDequeueStopsOnShutdown(t *testing.T) {
	q := NewQueue()
	stop := make(chan struct{})
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(stop)
		done <- ok
	}()

	close(stop)
	q.wake()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("Dequeue returned a job after stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Dequeue did not unblock on stop")
	}
}

// Jobs queued while the worker is busy drain in order, one at a time.
func TestWorkerDrainsInOrderSingleFlight(t *testing.T) {
	q := NewQueue()
	runner := &recordingRunner{block: make(chan struct{})}
	w := NewWorker(q, runner, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	q.Enqueue(domain.CloseJob{ID: "A"})

	// Wait for A to be picked up, then stack B and C behind it.
	waitFor(t, func() bool {
		_, busy := q.CurrentProcessing()
		return busy
	})
	if pos := q.Enqueue(domain.CloseJob{ID: "B"}); pos != 1 {
		t.Fatalf("B position = %d, want 1", pos)
	}
	if pos := q.Enqueue(domain.CloseJob{ID: "C"}); pos != 2 {
		t.Fatalf("C position = %d, want 2", pos)
	}

	close(runner.block)
	waitFor(t, func() bool {
		order, _ := runner.snapshot()
		return len(order) == 3
	})

	order, maxFlight := runner.snapshot()
	if order[0] != "A" || order[1] != "B" || order[2] != "C" {
		t.Fatalf("processing order = %v, want [A B C]", order)
	}
	if maxFlight != 1 {
		t.Fatalf("max in-flight jobs = %d, want 1", maxFlight)
	}
}

type panicRunner struct {
	mu    sync.Mutex
	calls []string
}

func (p *panicRunner) Run(ctx context.Context, job domain.CloseJob) error {
	p.mu.Lock()
	p.calls = append(p.calls, job.ID)
	p.mu.Unlock()
	if job.ID == "boom" {
		panic("job exploded")
	}
	return nil
}

// A panicking job must not kill the worker loop.
func TestWorkerSurvivesPanic(t *testing.T) {
	q := NewQueue()
	runner := &panicRunner{}
	w := NewWorker(q, runner, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	q.Enqueue(domain.CloseJob{ID: "boom"})
	q.Enqueue(domain.CloseJob{ID: "after"})

	waitFor(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return len(runner.calls) == 2
	})
	if _, busy := q.CurrentProcessing(); busy {
		t.Fatal("in-flight marker not cleared after panic")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
