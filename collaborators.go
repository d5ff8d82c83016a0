package mmport

// BufferHeader is a descriptor referencing a payload buffer, its length,
// offset, flags, timestamps, and an optional Cmd identifying it as an
// event. Pool and buffer-header allocation live outside this package; the
// core only ever reads and mutates headers through this interface.
type BufferHeader interface {
	Data() []byte
	SetData([]byte)

	Length() uint32
	SetLength(uint32)

	Offset() uint32
	SetOffset(uint32)

	Flags() BufferFlags
	SetFlags(BufferFlags)

	PTS() int64
	SetPTS(int64)

	DTS() int64
	SetDTS(int64)

	Cmd() Cmd
	SetCmd(Cmd)

	AllocSize() uint32

	// Release returns the header to whichever pool it was drawn from.
	Release()
}

// FormatEventBuffer is implemented by a BufferHeader carrying a
// FORMAT_CHANGED event, per EventGet. EventFormat returns the format the
// event announces, and SetEventFormat installs it -- separate from Data
// because a real implementation typically serializes the format into the
// payload rather than holding a Go pointer to it directly.
type FormatEventBuffer interface {
	BufferHeader
	EventFormat() *Format
	SetEventFormat(*Format)
}

// Queue is the minimal surface the core needs to pull buffers out of a
// pool: pool.queue.get() in the terms of the collaborator model.
type Queue interface {
	// Get returns the next available buffer, or nil if the queue is
	// empty.
	Get() BufferHeader
}

// PoolCallback is invoked when a buffer held by a pool has been fully
// consumed downstream and released back to it. The return value follows
// the pool's own convention: true means the buffer should remain in the
// pool (the callback did not resubmit it elsewhere), false means the
// callback has already taken ownership of it.
type PoolCallback func(pool Pool, buffer BufferHeader) bool

// Pool is a set of pre-allocated buffer headers (and optionally payload
// memory) backed by a queue.
type Pool interface {
	Queue() Queue

	// CallbackSet installs (or, with a nil cb, removes) the callback
	// invoked when a buffer is released back to this pool.
	CallbackSet(cb PoolCallback)
}

// Component is the external collaborator that owns a port: it provides
// the action lock that quiesces the component's own worker during
// disable, component-lifetime reference counting, the event pool from
// which event buffers are drawn, a way to raise a component-level error
// event, and pool creation/destruction for core-owned connections.
type Component interface {
	Name() string

	// ActionLock/ActionUnlock quiesce the component's internal worker.
	// Disable holds this around the module Disable call only.
	ActionLock()
	ActionUnlock()

	// Acquire/Release implement component-lifetime reference counting:
	// the component cannot be destroyed while any payload allocated
	// through one of its ports is still outstanding.
	Acquire()
	Release()

	// EventPool is the pool event_get draws event-type buffers from.
	EventPool() Pool

	// Outputs lists the component's output ports, consulted by
	// FormatCommit to cascade a buffer_num/buffer_size clamp from an
	// input port to every output port when the input's format commit
	// succeeds.
	Outputs() []*Port

	// RaiseError notifies the component of a core-detected failure it
	// could not otherwise report synchronously to the caller, such as a
	// failed format commit inside a connected-output forwarding
	// callback.
	RaiseError(err error)

	// CreatePool and DestroyPool allocate and tear down the buffer pool
	// a core-owned connection needs. CreatePool must not be called while
	// any port lock is held (see allocateConnectionPool).
	CreatePool(port *Port, num, size uint32) (Pool, error)
	DestroyPool(pool Pool)
}

// Sink is a one-directional diagnostic observer a port may report
// lifecycle events to. It has no ability to influence port behavior and
// the core never imports an implementation of it; wiring happens purely
// through this interface (see Port.SetEventSink).
type Sink interface {
	PortEvent(port *Port, kind, detail string)
}
