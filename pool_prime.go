package mmport

// populateFromPool feeds port's full buffer_num worth of buffers drawn
// from pool through SendBuffer, the initial priming step for a
// core-owned connection's output port once its shared pool exists.
func populateFromPool(port *Port, pool Pool) error {
	if port.module.Send == nil {
		return ErrNotImplemented
	}

	queue := pool.Queue()
	for i := uint32(0); i < port.BufferNum; i++ {
		buffer := queue.Get()
		if buffer == nil {
			return wrap(ErrNoMemory, "%s: too few buffers in pool", port.Name)
		}
		if err := SendBuffer(port, buffer); err != nil {
			buffer.Release()
			return wrap(err, "%s: failed to send buffer to port", port.Name)
		}
	}
	return nil
}
