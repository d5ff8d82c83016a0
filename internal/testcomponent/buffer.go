package testcomponent

import (
	"sync"
	"sync/atomic"

	"github.com/lanikai/mmport"
)

// bufferHeader is a reference-counted mmport.BufferHeader, wrapping a
// fixed-size byte payload the same way internal/packet.Payload
// reference-counts a shared payload buffer -- except here the "hold
// count" tracks how many pools/ports have a live reference to the
// header itself, and reaching zero returns the header to its pool
// instead of freeing memory.
type bufferHeader struct {
	pool *Pool

	alloc []byte // nil for a header with no payload
	data  []byte

	length uint32
	offset uint32
	flags  mmport.BufferFlags
	pts    int64
	dts    int64
	cmd    mmport.Cmd

	eventMu     sync.Mutex
	eventFormat *mmport.Format

	holds int32
}

func newBufferHeader(pool *Pool, payloadSize int) *bufferHeader {
	var alloc []byte
	if payloadSize > 0 {
		alloc = make([]byte, payloadSize)
	}
	return &bufferHeader{pool: pool, alloc: alloc, data: alloc, holds: 1}
}

func (b *bufferHeader) Data() []byte     { return b.data }
func (b *bufferHeader) SetData(d []byte) { b.data = d }

func (b *bufferHeader) Length() uint32     { return b.length }
func (b *bufferHeader) SetLength(n uint32) { b.length = n }

func (b *bufferHeader) Offset() uint32     { return b.offset }
func (b *bufferHeader) SetOffset(n uint32) { b.offset = n }

func (b *bufferHeader) Flags() mmport.BufferFlags     { return b.flags }
func (b *bufferHeader) SetFlags(f mmport.BufferFlags) { b.flags = f }

func (b *bufferHeader) PTS() int64     { return b.pts }
func (b *bufferHeader) SetPTS(v int64) { b.pts = v }

func (b *bufferHeader) DTS() int64     { return b.dts }
func (b *bufferHeader) SetDTS(v int64) { b.dts = v }

func (b *bufferHeader) Cmd() mmport.Cmd     { return b.cmd }
func (b *bufferHeader) SetCmd(c mmport.Cmd) { b.cmd = c }

func (b *bufferHeader) AllocSize() uint32 { return uint32(len(b.alloc)) }

// Hold adds one reference, mirroring packet.Payload.Hold -- used when a
// connection wants to keep a buffer reachable from two places at once
// (e.g. while it sits in a pool callback closure).
func (b *bufferHeader) Hold() {
	atomic.AddInt32(&b.holds, 1)
}

func (b *bufferHeader) Release() {
	if atomic.AddInt32(&b.holds, -1) != 0 {
		return
	}

	atomic.StoreInt32(&b.holds, 1)
	b.cmd = mmport.CmdNone
	b.length = 0
	b.offset = 0
	b.flags = 0
	b.pts = 0
	b.dts = 0
	b.data = b.alloc

	b.pool.release(b)
}

func (b *bufferHeader) EventFormat() *mmport.Format {
	b.eventMu.Lock()
	defer b.eventMu.Unlock()
	return b.eventFormat
}

func (b *bufferHeader) SetEventFormat(f *mmport.Format) {
	b.eventMu.Lock()
	b.eventFormat = f
	b.eventMu.Unlock()
}
