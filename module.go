package mmport

// BufferHeaderCallback is invoked when a buffer sent to a port has been
// returned by the component, or when an event buffer is delivered. It may
// be invoked on any worker thread.
type BufferHeaderCallback func(port *Port, buffer BufferHeader)

// Module is the function table a component installs on each of its ports.
// Every field is optional; a nil handler makes the core return
// ErrNotImplemented to callers of the corresponding operation. Connect
// returning ErrNotImplemented (the implicit behavior of a nil Connect) is
// not a failure -- it tells the core to manage the connection itself (see
// Connect).
type Module struct {
	SetFormat func(port *Port) error
	Enable    func(port *Port, cb BufferHeaderCallback) error
	Disable   func(port *Port) error
	Send      func(port *Port, buffer BufferHeader) error
	Flush     func(port *Port) error

	// Connect is called on the output port of a pair being connected. A
	// nil handler (or one returning ErrNotImplemented) means the module
	// does not manage connections itself; the core will.
	Connect func(port, other *Port) error

	ParameterGet func(port *Port, param Parameter) error
	ParameterSet func(port *Port, param Parameter) error

	// PayloadAlloc/PayloadFree let a component supply its own payload
	// memory (e.g. hardware-contiguous buffers). When absent the core
	// falls back to the general heap.
	PayloadAlloc func(port *Port, size uint32) []byte
	PayloadFree  func(port *Port, payload []byte)
}

func (m *Module) setFormat(port *Port) error {
	if m == nil || m.SetFormat == nil {
		return ErrNotImplemented
	}
	return m.SetFormat(port)
}

func (m *Module) enable(port *Port, cb BufferHeaderCallback) error {
	if m == nil || m.Enable == nil {
		return ErrNotImplemented
	}
	return m.Enable(port, cb)
}

func (m *Module) disable(port *Port) error {
	if m == nil || m.Disable == nil {
		return ErrNotImplemented
	}
	return m.Disable(port)
}

func (m *Module) send(port *Port, buffer BufferHeader) error {
	if m == nil || m.Send == nil {
		return ErrNotImplemented
	}
	return m.Send(port, buffer)
}

func (m *Module) flush(port *Port) error {
	if m == nil || m.Flush == nil {
		return ErrNotImplemented
	}
	return m.Flush(port)
}

func (m *Module) connect(port, other *Port) error {
	if m == nil || m.Connect == nil {
		return ErrNotImplemented
	}
	return m.Connect(port, other)
}

func (m *Module) parameterGet(port *Port, param Parameter) error {
	if m == nil || m.ParameterGet == nil {
		return ErrNotImplemented
	}
	return m.ParameterGet(port, param)
}

func (m *Module) parameterSet(port *Port, param Parameter) error {
	if m == nil || m.ParameterSet == nil {
		return ErrNotImplemented
	}
	return m.ParameterSet(port, param)
}
