// Package closer owns the ticket close pipeline: a process-wide FIFO
// queue, the single worker that drains it, and the job runner that
// archives and destroys one channel.
package closer

import (
	"sync"

	"github.com/vhecode013/Bot-Atendimento/internal/domain"
)

// Queue is the process-wide ordered FIFO of close jobs. Insertion
// order equals processing order; at most one job is in flight at any
// time because the single worker is the only consumer. State lives in
// memory only; a restart drops unprocessed jobs.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []domain.CloseJob
	current *domain.CloseJob
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a job and returns its 1-based position at enqueue
// time. The position is user-facing progress feedback, not a
// reservation.
func (q *Queue) Enqueue(job domain.CloseJob) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	pos := len(q.jobs)
	q.cond.Signal()
	return pos
}

// Dequeue blocks until a job is available, removes it in FIFO order
// and marks it in flight. It returns false once stop has been closed
// and the queue is empty of wakeups.
func (q *Queue) Dequeue(stop <-chan struct{}) (domain.CloseJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.jobs) == 0 {
		select {
		case <-stop:
			return domain.CloseJob{}, false
		default:
		}
		q.cond.Wait()
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	q.current = &job
	return job, true
}

// Finish clears the in-flight marker after a job completes or fails.
func (q *Queue) Finish() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = nil
}

// Len reports the number of queued (not in-flight) jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// CurrentProcessing exposes the job presently being handled, for
// observability only.
func (q *Queue) CurrentProcessing() (domain.CloseJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return domain.CloseJob{}, false
	}
	return *q.current, true
}

// wake unblocks a waiting consumer so it can observe shutdown.
func (q *Queue) wake() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}
