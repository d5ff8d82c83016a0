package mmport

// FormatCommit commits a format previously set up on port.Format, the Go
// analogue of mmal_port_format_commit. It detects a client that replaced
// Port.Format with a new allocation instead of mutating the existing one
// in place (invariant 1): such a call resets Port.Format back to the
// core's own copy and returns ErrFault without invoking the module.
//
// On success, buffer_num/buffer_size are clamped up to their *Min
// counterparts; for an input port, the same clamp is then cascaded onto
// every output port of the component, since an input format change can
// change what its outputs need to hold.
func FormatCommit(port *Port) error {
	if port == nil {
		return ErrInvalid
	}
	core := port.core

	if port.Format != core.formatPtrCopy {
		logger.Error("%s: format has been overwritten, resetting", port.Name)
		port.Format = core.formatPtrCopy
		return ErrFault
	}

	core.mu.Lock()
	defer core.mu.Unlock()

	err := port.module.setFormat(port)
	if err != nil {
		return wrap(err, "%s: set format", port.Name)
	}

	port.refreshName()
	clampBufferLimits(port)

	if port.Type == PortTypeInput && port.Component != nil {
		for _, out := range port.Component.Outputs() {
			clampBufferLimits(out)
		}
	}

	return nil
}

func clampBufferLimits(port *Port) {
	if port.BufferSize < port.BufferSizeMin {
		port.BufferSize = port.BufferSizeMin
	}
	if port.BufferNum < port.BufferNumMin {
		port.BufferNum = port.BufferNumMin
	}
}
