package testcomponent

import (
	"sync"

	"github.com/lanikai/mmport"
)

// Pool is a queue-backed mmport.Pool: a fixed number of BufferHeaders,
// each wrapping payloadSize bytes (zero for headers that carry no
// payload), handed out via Queue().Get and returned
// to the queue -- or diverted elsewhere -- via the installed callback
// when a header's hold count drops to zero.
type Pool struct {
	queue chan mmport.BufferHeader

	mu sync.Mutex
	cb mmport.PoolCallback
}

// NewPool allocates a pool of n buffer headers, each with a payloadSize
// byte buffer (0 for headers with no payload).
func NewPool(n, payloadSize int) *Pool {
	p := &Pool{queue: make(chan mmport.BufferHeader, n)}
	for i := 0; i < n; i++ {
		p.queue <- newBufferHeader(p, payloadSize)
	}
	return p
}

func (p *Pool) Queue() mmport.Queue { return poolQueue{p} }

func (p *Pool) CallbackSet(cb mmport.PoolCallback) {
	p.mu.Lock()
	p.cb = cb
	p.mu.Unlock()
}

// release is called by a BufferHeader when its hold count reaches zero.
// If a callback is installed and declines to keep the buffer (returns
// false), the buffer has already been handed off elsewhere and must not
// be requeued.
func (p *Pool) release(b mmport.BufferHeader) {
	p.mu.Lock()
	cb := p.cb
	p.mu.Unlock()

	if cb != nil && !cb(p, b) {
		return
	}

	select {
	case p.queue <- b:
	default:
		// Pool over-full (shouldn't happen with matched alloc/release) --
		// drop rather than block the releaser.
	}
}

// Close drains the pool's queue. A buffer still in flight when this is
// called keeps its pointer to the pool; releasing it afterwards still runs
// the installed callback, if any, and otherwise puts it back on the queue.
func (p *Pool) Close() {
	for {
		select {
		case <-p.queue:
		default:
			return
		}
	}
}

type poolQueue struct{ p *Pool }

func (q poolQueue) Get() mmport.BufferHeader {
	select {
	case b := <-q.p.queue:
		return b
	default:
		return nil
	}
}
