package packet

import "sync/atomic"

/*
A Payload is a reference-counted byte buffer backing a buffer header's
payload memory. The port core acquires the owning component on a successful
payload_alloc and releases it on payload_free (see mmport.PayloadAlloc);
Payload gives that acquire/release pair something concrete to count against
so the backing memory -- and whatever owns it -- outlives every holder.

Hold() increments the reference count, Release() decrements it. The release
function runs once, when the count reaches zero, never before and never
twice.

Example usage:

	func consume(p *Payload) {
		defer p.Release()
		process(p.Bytes())
	}

	func produce() {
		data := allocate()
		p := NewPayload(data, onFinalRelease)
		for _, c := range consumers {
			p.Hold()
			go consume(p)
		}
		p.Release() // drop the producer's own hold
	}
*/
type Payload struct {
	data []byte

	count   int32
	release func()
}

// NewPayload wraps data with an initial hold count of 1. release is called
// exactly once, when the count drops to zero.
func NewPayload(data []byte, release func()) *Payload {
	return &Payload{data: data, count: 1, release: release}
}

// Bytes returns the underlying byte buffer. Valid only while the caller
// holds a reference.
func (p *Payload) Bytes() []byte {
	return p.data
}

// Hold increments the reference count.
func (p *Payload) Hold() {
	atomic.AddInt32(&p.count, 1)
}

// Release decrements the reference count. When it reaches zero the release
// hook runs and the backing slice is dropped.
func (p *Payload) Release() {
	if p == nil {
		return
	}
	if atomic.AddInt32(&p.count, -1) == 0 {
		if p.release != nil {
			p.release()
		}
		p.data = nil
	}
}
