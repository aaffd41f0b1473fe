package engine

import (
	"sync"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/trace"
)

// Command is a request to change the board.
type Command struct {
	Kind      trace.Kind
	At        board.Coordinate // move origin or turned gear
	To        board.Coordinate // move target
	Clockwise bool             // turn direction
}

// TickCommand, MoveCommand and TurnCommand build commands.
func TickCommand() Command { return Command{Kind: trace.KindTick} }

func MoveCommand(from, to board.Coordinate) Command {
	return Command{Kind: trace.KindMove, At: from, To: to}
}

func TurnCommand(at board.Coordinate, clockwise bool) Command {
	return Command{Kind: trace.KindTurn, At: at, Clockwise: clockwise}
}

// Result is what Submit hands back for a command.
type Result struct {
	Record trace.Record
	Err    error
}

type request struct {
	cmd   Command
	reply chan Result // buffered, size 1; nil for fire-and-forget
}

// commandQueue is an unbounded FIFO of requests.
//
// Any goroutine may enqueue; only the Run loop dequeues. A buffered signal
// channel of size 1 coalesces wakeups so Run can wait on it in a select
// together with the context and the tick cadence.
type commandQueue struct {
	mu       sync.Mutex
	requests []request
	closed   bool
	signal   chan struct{}
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		requests: make([]request, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue appends r. Returns false if the queue is closed.
func (q *commandQueue) Enqueue(r request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.requests = append(q.requests, r)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the front request without blocking.
func (q *commandQueue) TryDequeue() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return request{}, false
	}
	r := q.requests[0]
	q.requests[0] = request{} // release the reply channel
	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}
	return r, true
}

// Wait signals that requests may be available. Closed once the queue is
// closed.
func (q *commandQueue) Wait() <-chan struct{} {
	return q.signal
}

func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Close rejects further requests and wakes the Run loop. Requests still
// queued are drained by Close's caller via drain.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// drain removes and returns everything still queued.
func (q *commandQueue) drain() []request {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.requests
	q.requests = nil
	return out
}
