package mmport

// Flush discards any buffers a module is holding internally for this
// port without going through the normal completion path.
func Flush(port *Port) error {
	if port == nil {
		return ErrInvalid
	}

	core := port.core
	core.sendMu.Lock()
	defer core.sendMu.Unlock()

	if err := port.module.flush(port); err != nil {
		return wrap(err, "%s: flush", port.Name)
	}
	return nil
}
