// ABOUTME: Timestamp-based playback scheduler
// ABOUTME: Orders decoded buffers by play time and drops hopeless stragglers
package player

import (
	"container/heap"
	"context"
	"log"
	"sync"
	"time"

	internalsync "github.com/chrisuthe/sendspin-player/internal/sync"
	"github.com/chrisuthe/sendspin-player/pkg/audio"
)

// Buffers more than this late are dropped; more than this early wait.
const playWindow = 50 * time.Millisecond

// Scheduler manages playback timing. Schedule may be called from any
// goroutine while Run drains the queue.
type Scheduler struct {
	clockSync *internalsync.ClockSync
	output    chan audio.Buffer
	ctx       context.Context
	cancel    context.CancelFunc

	mu    sync.Mutex
	queue *playQueue
	stats SchedulerStats
}

// SchedulerStats tracks scheduler metrics
type SchedulerStats struct {
	Received int64
	Played   int64
	Dropped  int64
}

// NewScheduler creates a playback scheduler
func NewScheduler(clockSync *internalsync.ClockSync) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		clockSync: clockSync,
		queue:     newPlayQueue(),
		output:    make(chan audio.Buffer, 10),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Schedule adds a buffer to the queue
func (s *Scheduler) Schedule(buf audio.Buffer) {
	// Convert server timestamp to local play time
	buf.PlayAt = s.clockSync.ServerToLocalTime(buf.Timestamp)

	s.mu.Lock()
	s.stats.Received++
	heap.Push(s.queue, buf)
	s.mu.Unlock()
}

// Run starts the scheduler loop
func (s *Scheduler) Run() {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.processQueue()
		}
	}
}

// processQueue moves due buffers to the output channel
func (s *Scheduler) processQueue() {
	now := time.Now()

	for {
		buf, ok := s.nextDue(now)
		if !ok {
			return
		}

		select {
		case s.output <- buf:
			s.mu.Lock()
			s.stats.Played++
			s.mu.Unlock()
		case <-s.ctx.Done():
			return
		}
	}
}

// nextDue pops the next playable buffer, dropping buffers past the
// late window. Returns false when the head is still early or the
// queue is empty.
func (s *Scheduler) nextDue(now time.Time) (audio.Buffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.queue.Len() > 0 {
		buf := s.queue.Peek()
		delay := buf.PlayAt.Sub(now)

		switch {
		case delay > playWindow:
			return audio.Buffer{}, false
		case delay < -playWindow:
			heap.Pop(s.queue)
			s.stats.Dropped++
			log.Printf("Dropped late buffer: %v late", -delay)
		default:
			heap.Pop(s.queue)
			return buf, true
		}
	}

	return audio.Buffer{}, false
}

// Output returns the output channel
func (s *Scheduler) Output() <-chan audio.Buffer {
	return s.output
}

// Stats returns scheduler statistics
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cancel()
}

// playQueue is a priority queue ordered by PlayAt
type playQueue struct {
	items []audio.Buffer
}

func newPlayQueue() *playQueue {
	q := &playQueue{}
	heap.Init(q)
	return q
}

// Implement heap.Interface
func (q *playQueue) Len() int { return len(q.items) }

func (q *playQueue) Less(i, j int) bool {
	return q.items[i].PlayAt.Before(q.items[j].PlayAt)
}

func (q *playQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *playQueue) Push(x interface{}) {
	q.items = append(q.items, x.(audio.Buffer))
}

func (q *playQueue) Pop() interface{} {
	n := len(q.items)
	item := q.items[n-1]
	q.items = q.items[:n-1]
	return item
}

func (q *playQueue) Peek() audio.Buffer {
	return q.items[0]
}
