package mmport

import "github.com/lanikai/mmport/internal/packet"

// formatChangedEventSize is the minimum alloc_size an event buffer must
// carry to hold a FORMAT_CHANGED event: the new Format plus room for its
// encoded sub-structure. Mirrors the fixed-size MMAL_EVENT_FORMAT_CHANGED_T
// computation in the source; this package doesn't serialize Format into
// the buffer payload, but still enforces the same minimum so a module
// written against the original size expectations keeps working.
const formatChangedEventSize = 128

// PayloadAlloc allocates payload memory for port, preferring the module's
// own allocator (for hardware-contiguous buffers) and falling back to the
// general heap. A successful allocation acquires port's component, which
// is only released again (by payloadFree) when the returned Payload's last
// hold is released -- this keeps the
// component alive for as long as any payload it handed out is still in
// use.
func PayloadAlloc(port *Port, size uint32) *packet.Payload {
	if port == nil || size == 0 {
		return nil
	}

	var data []byte
	if port.module.PayloadAlloc != nil {
		port.core.mu.Lock()
		data = port.module.PayloadAlloc(port, size)
		port.core.mu.Unlock()
	} else {
		data = make([]byte, size)
	}
	if data == nil {
		return nil
	}

	if port.Component != nil {
		port.Component.Acquire()
	}

	released := false
	return packet.NewPayload(data, func() {
		if released {
			return
		}
		released = true
		payloadFree(port, data)
	})
}

func payloadFree(port *Port, data []byte) {
	if port.module.PayloadFree != nil {
		port.core.mu.Lock()
		port.module.PayloadFree(port, data)
		port.core.mu.Unlock()
	}
	if port.Component != nil {
		port.Component.Release()
	}
}

// EventGet draws an event buffer from the owning component's event pool
// and tags it with cmd. FORMAT_CHANGED events additionally require the
// buffer to be able to hold a serialized format, returning ErrNoSpace if
// the pool's buffers are too small.
func EventGet(port *Port, cmd Cmd) (BufferHeader, error) {
	if port == nil || port.Component == nil {
		return nil, ErrInvalid
	}

	pool := port.Component.EventPool()
	if pool == nil {
		return nil, wrap(ErrInvalid, "%s: no event pool", port.Name)
	}

	buffer := pool.Queue().Get()
	if buffer == nil {
		return nil, wrap(ErrNoSpace, "%s: no event buffer available for %v", port.Name, cmd)
	}

	buffer.SetCmd(cmd)
	buffer.SetLength(0)

	if cmd == CmdFormatChanged {
		if buffer.AllocSize() < formatChangedEventSize {
			buffer.Release()
			return nil, wrap(ErrNoSpace, "%s: event buffer too small for format changed (%d/%d)",
				port.Name, buffer.AllocSize(), formatChangedEventSize)
		}
		buffer.SetLength(formatChangedEventSize)
	}

	return buffer, nil
}
