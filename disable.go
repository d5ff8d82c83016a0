package mmport

// Disable stops buffer flow on port, waiting for every buffer currently
// in transit to return before releasing the port lock. If this is the
// output side of a core-owned connection, the connected input port is
// disabled too, and a connection pool held by the port is destroyed with
// Component.DestroyPool after the port lock is released.
func Disable(port *Port) error {
	if port == nil {
		return ErrInvalid
	}

	core := port.core
	core.mu.Lock()

	err := disableLocked(port)

	var pool Pool
	if err == nil {
		pool = core.poolForConnection
	}
	core.poolForConnection = nil

	core.mu.Unlock()

	if err == nil && pool != nil {
		port.Component.DestroyPool(pool)
	}

	return err
}

func disableLocked(port *Port) error {
	core := port.core
	if !port.IsEnabled {
		return wrap(ErrInvalid, "%s: not enabled", port.Name)
	}

	core.sendMu.Lock()
	port.IsEnabled = false
	core.sendMu.Unlock()

	if port.Component != nil {
		port.Component.ActionLock()
	}

	if core.poolForConnection != nil {
		core.poolForConnection.CallbackSet(nil)
	}

	err := port.module.disable(port)

	if port.Component != nil {
		port.Component.ActionUnlock()
	}

	if err != nil {
		core.sendMu.Lock()
		port.IsEnabled = true
		core.sendMu.Unlock()
		return wrap(err, "%s: disable", port.Name)
	}

	logger.Debug("%s waiting for %d buffers left in transit", port.Name, core.transit.Count())
	core.transit.wait()
	logger.Debug("%s has no buffers left in transit", port.Name)

	core.bufferHeaderCallback = nil

	if core.connectedPort != nil && port.Type == PortTypeOutput {
		Disable(core.connectedPort)
	}

	port.notify("disable", "")
	return nil
}
