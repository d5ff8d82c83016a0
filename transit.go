package mmport

import "sync"

// drainGate is the one-shot "drain gate" primitive described in §5: a
// single-count semaphore, initially posted. consume blocks until a post
// is available and takes it; post makes one available (it is only ever
// called when none already is -- see transitGate). The two concrete
// implementations (eventfdGate in transit_linux.go, chanGate in
// chan_gate.go) both satisfy this
// with different backing primitives, but identical observable behavior.
type drainGate interface {
	consume()
	post()
}

// transitGate implements IN_TRANSIT_INCREMENT / IN_TRANSIT_DECREMENT /
// IN_TRANSIT_WAIT from §5: O(1) steady-state cost, blocking only a caller
// that finds a non-empty transit.
type transitGate struct {
	mu    sync.Mutex
	count int32
	gate  drainGate
}

func newTransitGate() *transitGate {
	return &transitGate{gate: newDrainGate()}
}

// increment records one more buffer in transit. On the 0->1 transition it
// consumes the drain gate, closing it to waiters.
func (t *transitGate) increment() {
	t.mu.Lock()
	t.count++
	first := t.count == 1
	t.mu.Unlock()

	if first {
		t.gate.consume()
	}
}

// decrement records one fewer buffer in transit. It is a programmer error
// to call this when the count is already zero; the caller (the buffer
// header callback) is expected to have paired every decrement with a
// prior increment. On the 1->0 transition it posts the drain gate,
// releasing any waiter.
func (t *transitGate) decrement() {
	t.mu.Lock()
	t.count--
	last := t.count == 0
	negative := t.count < 0
	t.mu.Unlock()

	if negative {
		panic("mmport: transit_buffer_headers went negative")
	}
	if last {
		t.gate.post()
	}
}

// wait blocks until the transit count is (or becomes) zero, then returns
// immediately without leaving the gate closed to anyone else -- the
// "peek-block" pattern used by Disable.
func (t *transitGate) wait() {
	t.gate.consume()
	t.gate.post()
}

func (t *transitGate) Count() int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
