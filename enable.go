package mmport

// Enable starts buffer flow on port. cb receives every buffer header the
// component returns through this port; it must be nil if and only if the
// port is connected (a connected port is fed by the connection's own
// forwarding callback instead).
func Enable(port *Port, cb BufferHeaderCallback) error {
	if port == nil {
		return ErrInvalid
	}

	core := port.core
	core.mu.Lock()
	defer core.mu.Unlock()

	return enableLocked(port, cb)
}

func enableLocked(port *Port, cb BufferHeaderCallback) error {
	core := port.core
	if port.IsEnabled {
		return ErrInvalid
	}

	connected := core.connectedPort

	// Buffer numbers/sizes used are the maxima between connected ports.
	if connected != nil && port.Type == PortTypeOutput {
		connected.core.mu.Lock()
		if connected.BufferNum > port.BufferNum {
			port.BufferNum = connected.BufferNum
		}
		if connected.BufferSize > port.BufferSize {
			port.BufferSize = connected.BufferSize
		}
		connected.core.mu.Unlock()
	}

	if port.BufferNum < port.BufferNumMin {
		return wrap(ErrInvalid, "%s: buffer_num too small (%d/%d)", port.Name, port.BufferNum, port.BufferNumMin)
	}
	if port.BufferSize < port.BufferSizeMin {
		return wrap(ErrInvalid, "%s: buffer_size too small (%d/%d)", port.Name, port.BufferSize, port.BufferSizeMin)
	}

	// cb must be nil if and only if the port is connected.
	if (connected != nil) == (cb != nil) {
		return wrap(ErrInvalid, "%s: callback required iff unconnected", port.Name)
	}

	core.bufferHeaderCallback = cb
	if connected != nil && port.Type == PortTypeInput {
		// Installed before is_enabled is flipped below: a concurrently
		// arriving completion on this input (Port.BufferHeaderCallback,
		// which never takes core.mu) must never observe is_enabled true
		// with no forwarder installed yet, or the buffer is dropped
		// without being released.
		core.bufferHeaderCallback = connectedInputCB
	}

	if err := port.module.enable(port, cb); err != nil {
		return err
	}

	core.sendMu.Lock()
	port.IsEnabled = true
	core.sendMu.Unlock()

	var err error
	if connected != nil && port.Type == PortTypeOutput {
		err = enableLockedConnected(port, connected)
	}

	port.notify("enable", "")
	return err
}

// enableLockedConnected brings up the input side of a core-owned
// connection once the output side has just been enabled, including
// allocating and populating the shared pool if this connection calls for
// core-owned allocation.
func enableLockedConnected(output, input *Port) error {
	outputCore := output.core
	outputCore.bufferHeaderCallback = connectedOutputCB

	input.core.mu.Lock()

	var status error
	if input.IsEnabled && (input.BufferSize != output.BufferSize || input.BufferNum != output.BufferNum) {
		if err := disableLocked(input); err != nil {
			input.core.mu.Unlock()
			return err
		}
	}

	input.BufferSize = output.BufferSize
	input.BufferNum = output.BufferNum

	if !input.IsEnabled {
		if err := enableLocked(input, nil); err != nil {
			status = err
		}
	}

	if status == nil && outputCore.coreOwnsConnection {
		status = allocateConnectionPool(output, input)
	}

	if status != nil && input.IsEnabled {
		disableLocked(input)
	}
	input.core.mu.Unlock()

	if status != nil {
		disableLocked(output)
	}
	return status
}

// allocateConnectionPool creates and installs the shared pool backing a
// core-owned connection, preferring the allocation-capable side when one
// is marked. Both port locks are released for the duration of the actual
// allocation call, regardless of which side owns the pool, since
// Component.CreatePool's contract forbids calling it under either port's
// lock -- then re-acquired in the canonical output-before-input order.
func allocateConnectionPool(output, input *Port) error {
	poolPort := input
	if output.Capabilities.Has(CapabilityAllocation) {
		poolPort = output
	}

	bufferSize := poolPort.BufferSize
	if output.Capabilities.Has(CapabilityPassthrough) {
		bufferSize = 0
	}

	output.core.mu.Unlock()
	input.core.mu.Unlock()

	pool, err := output.Component.CreatePool(poolPort, poolPort.BufferNum, bufferSize)

	output.core.mu.Lock()
	input.core.mu.Lock()

	if err != nil {
		return wrap(err, "%s: create connection pool", poolPort.Name)
	}

	poolPort.core.poolForConnection = pool
	pool.CallbackSet(func(p Pool, buf BufferHeader) bool {
		return connectedPoolCB(output, p, buf)
	})

	return populateFromPool(output, poolPort.core.poolForConnection)
}
