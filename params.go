package mmport

// ParameterID identifies a port parameter. The core itself only
// recognizes ParamCoreStatistics; every other ID is handled entirely by
// the module (or rejected with ErrNotImplemented if the module doesn't
// recognize it either).
type ParameterID uint32

const ParamCoreStatistics ParameterID = 1

// Parameter is the payload exchanged with ParameterGet/ParameterSet.
type Parameter interface {
	ID() ParameterID
}

// CoreStatisticsParam is the sole core-recognized parameter: get fills
// Stats from the requested direction, zeroing the underlying counters
// right after the read if Reset is set; set is never implemented for this
// parameter.
type CoreStatisticsParam struct {
	Dir   StatsDir
	Reset bool
	Stats CoreStatistics
}

func (p *CoreStatisticsParam) ID() ParameterID { return ParamCoreStatistics }

// ParameterGet invokes the module's parameter handler under the port
// lock; if the module has none, or it reports ErrNotImplemented, the core
// handles the parameter itself.
func ParameterGet(port *Port, param Parameter) error {
	if port == nil || param == nil {
		return ErrInvalid
	}

	core := port.core
	core.mu.Lock()
	defer core.mu.Unlock()

	err := port.module.parameterGet(port, param)
	if err == ErrNotImplemented {
		err = corePrivateParameterGet(port, param)
	}
	return err
}

// ParameterSet invokes the module's parameter handler under the port
// lock; if the module has none, or it reports ErrNotImplemented, the core
// handles the parameter itself. No parameter is core-settable.
func ParameterSet(port *Port, param Parameter) error {
	if port == nil || param == nil {
		return ErrInvalid
	}

	core := port.core
	core.mu.Lock()
	defer core.mu.Unlock()

	err := port.module.parameterSet(port, param)
	if err == ErrNotImplemented {
		err = corePrivateParameterSet(port, param)
	}
	return err
}

func corePrivateParameterGet(port *Port, param Parameter) error {
	switch p := param.(type) {
	case *CoreStatisticsParam:
		p.Stats = port.core.stats.snapshot(p.Dir, p.Reset)
		return nil
	default:
		return ErrNotImplemented
	}
}

func corePrivateParameterSet(port *Port, param Parameter) error {
	switch param.ID() {
	default:
		return ErrNotImplemented
	}
}
