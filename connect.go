package mmport

import (
	errors "golang.org/x/xerrors"
)

// Connect joins output to input, the Go analogue of mmal_port_connect.
// The output port's module gets first refusal at managing the connection
// itself (via Module.Connect); if it declines with ErrNotImplemented, the
// core takes over, tagging both ports as core-owned so Enable knows to
// allocate and forward through a shared pool.
func Connect(output, input *Port) error {
	if output == nil || input == nil {
		return ErrInvalid
	}
	if output.Type != PortTypeOutput || input.Type != PortTypeInput {
		return wrap(ErrInvalid, "connect requires an output and an input port, got %v and %v", output.Type, input.Type)
	}

	output.core.mu.Lock()
	input.core.mu.Lock()
	defer input.core.mu.Unlock()
	defer output.core.mu.Unlock()

	if output.core.connectedPort != nil || input.core.connectedPort != nil {
		return wrap(ErrAlreadyConnected, "%s or %s is already connected", output.Name, input.Name)
	}
	if output.IsEnabled || input.IsEnabled {
		return wrap(ErrInvalid, "neither %s nor %s may be enabled to connect", output.Name, input.Name)
	}

	output.core.connectedPort = input
	input.core.connectedPort = output
	output.core.coreOwnsConnection = false
	input.core.coreOwnsConnection = false

	err := output.module.connect(output, input)
	if err == nil {
		output.notify("connect", input.Name)
		input.notify("connect", output.Name)
		return nil
	}
	if err != ErrNotImplemented {
		output.core.connectedPort = nil
		input.core.connectedPort = nil
		return wrap(err, "%s: connect to %s", output.Name, input.Name)
	}

	output.core.coreOwnsConnection = true
	input.core.coreOwnsConnection = true
	output.notify("connect", input.Name)
	input.notify("connect", output.Name)
	return nil
}

// Disconnect tears down a previously established connection. If the
// connection was managed by the output port's module rather than the
// core, the module is given a chance to reject the teardown by returning
// a non-nil, non-ErrNotImplemented error from Connect(port, nil).
func Disconnect(port *Port) error {
	if port == nil {
		return ErrInvalid
	}

	core := port.core
	core.mu.Lock()
	defer core.mu.Unlock()

	other := core.connectedPort
	if other == nil {
		return wrap(ErrNotConnected, "%s", port.Name)
	}

	if port.IsEnabled {
		if err := disableLocked(port); err != nil {
			return wrap(err, "%s: disable before disconnect", port.Name)
		}
		if core.poolForConnection != nil {
			port.Component.DestroyPool(core.poolForConnection)
			core.poolForConnection = nil
		}
	}

	if !core.coreOwnsConnection {
		if err := port.module.connect(port, nil); err != nil && err != ErrNotImplemented {
			return errors.Errorf("%s: disconnect: %w", port.Name, err)
		}
	}

	core.connectedPort = nil
	other.core.connectedPort = nil
	port.notify("disconnect", other.Name)
	other.notify("disconnect", port.Name)
	return nil
}

// connectedInputCB is installed as the buffer header callback on the
// input side of a core-owned connection: a completed buffer simply
// returns to its pool, since the output side is the one re-sending it.
func connectedInputCB(port *Port, buffer BufferHeader) {
	buffer.Release()
}

// connectedOutputCB is installed as the buffer header callback on the
// output side of a core-owned connection. Data buffers are forwarded
// unchanged to the connected input port; a FORMAT_CHANGED event is
// applied to the output's own format, committed, and only then
// forwarded, so the input port observes the new format at the same time
// the buffer carrying it arrives.
func connectedOutputCB(port *Port, buffer BufferHeader) {
	connected := port.core.connectedPort

	if buffer.Cmd() != CmdNone {
		if buffer.Cmd() == CmdFormatChanged {
			forwardFormatChanged(port, connected, buffer)
			return
		}
		// Other event kinds aren't understood by the core-owned
		// forwarding path yet; drop them rather than forward garbage.
		buffer.Release()
		return
	}

	if !port.IsEnabled {
		buffer.Release()
		return
	}

	if err := SendBuffer(connected, buffer); err != nil {
		logger.Error("%s: could not forward buffer to %s: %v", port.Name, connected.Name, err)
		port.notify("send-failure", err.Error())
		buffer.Release()
	}
}

func forwardFormatChanged(port, connected *Port, buffer BufferHeader) {
	event, ok := buffer.(FormatEventBuffer)
	if !ok {
		logger.Error("%s: FORMAT_CHANGED buffer does not carry a format", port.Name)
		buffer.Release()
		return
	}

	FormatFullCopy(port.Format, event.EventFormat())
	err := FormatCommit(port)
	if err != nil {
		logger.Error("format commit failed on %s: %v", port.Name, err)
	} else {
		port.notify("format-changed", port.Format.Encoding.String())
		err = SendBuffer(connected, buffer)
	}

	if err != nil {
		if port.Component != nil {
			port.Component.RaiseError(err)
		}
		buffer.Release()
	}
}

// connectedPoolCB is installed on the shared pool of a core-owned
// connection: when a forwarded buffer is finally released by whatever
// consumed it, this resets the header and pipes it straight back to the
// owning output port rather than leaving it idle in the pool.
func connectedPoolCB(output *Port, pool Pool, buffer BufferHeader) bool {
	buffer.SetCmd(CmdNone)
	buffer.SetLength(0)
	buffer.SetOffset(0)
	buffer.SetFlags(0)
	buffer.SetPTS(0)
	buffer.SetDTS(0)

	err := SendBuffer(output, buffer)
	return err != nil
}
