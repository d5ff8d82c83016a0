package mmport

import "time"

// SendBuffer hands buffer to the component through port. Output ports
// never send a non-empty buffer (the length is cleared and logged as a
// caller mistake); every send increments the in-transit count, which
// Disable waits to drain back to zero.
func SendBuffer(port *Port, buffer BufferHeader) error {
	if port == nil || buffer == nil {
		return ErrInvalid
	}

	core := port.core
	core.sendMu.Lock()
	defer core.sendMu.Unlock()

	if !port.IsEnabled {
		return wrap(ErrInvalid, "%s: not enabled", port.Name)
	}

	if len(buffer.Data()) == 0 && !port.Capabilities.Has(CapabilityPassthrough) {
		return wrap(ErrInvalid, "%s: buffer has no data", port.Name)
	}

	if port.Type == PortTypeOutput && buffer.Length() != 0 {
		logger.Debug("%s: given an output buffer with length != 0", port.Name)
		buffer.SetLength(0)
	}

	core.transit.increment()
	if err := port.module.send(port, buffer); err != nil {
		core.transit.decrement()
		return wrap(err, "%s: send", port.Name)
	}

	core.stats.update(StatsDirRX, time.Now())
	return nil
}

// BufferHeaderCallback is invoked by a module when a buffer header it
// was previously sent (via SendBuffer) is ready to hand back -- completed
// on an input port, or filled on an output port. It decrements the
// in-transit count and forwards to whichever callback Enable installed,
// whether that is the client's own callback or one of the core's
// connection-forwarding callbacks.
func (p *Port) BufferHeaderCallback(buffer BufferHeader) {
	core := p.core
	core.transit.decrement()
	core.stats.update(StatsDirTX, time.Now())

	if core.bufferHeaderCallback != nil {
		core.bufferHeaderCallback(p, buffer)
	}
}

// EventSend delivers an out-of-band event buffer (typically drawn from
// EventGet) through port's installed callback. If no callback is
// installed the event is dropped and the buffer released, since there is
// no one downstream able to receive it.
func EventSend(port *Port, buffer BufferHeader) {
	cb := port.core.bufferHeaderCallback
	if cb == nil {
		logger.Error("event lost on %s: no buffer header callback installed", port.Name)
		buffer.Release()
		return
	}
	cb(port, buffer)
}
