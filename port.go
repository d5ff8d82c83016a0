package mmport

import (
	"fmt"
	"sync"

	"github.com/lanikai/mmport/internal/logging"
)

var logger = logging.DefaultLogger.WithTag("mmport")

// Port is the public face of a port: the fields a module or client reads
// and writes directly, mirroring MMAL_PORT_T. Everything requiring
// synchronization or hidden from the module lives in the private core
// instead.
type Port struct {
	Type PortType

	// Index is this port's position within its component's port array of
	// the same Type (e.g. output port 1 of 3).
	Index uint32

	Component Component

	// Format is the port's format descriptor. The core keeps a pointer
	// copy (portCore.formatPtrCopy) to detect a client overwriting this
	// field wholesale instead of mutating it in place -- see FormatCommit.
	Format *Format

	BufferNum            uint32
	BufferNumMin         uint32
	BufferNumRecommended uint32

	BufferSize            uint32
	BufferSizeMin         uint32
	BufferSizeRecommended uint32

	Capabilities Capabilities

	IsEnabled bool

	// Name is computed from Component, Type, and Index by refreshName, at
	// Alloc and after every successful FormatCommit.
	Name string

	module *Module

	core *portCore
}

// portCore is the private face of a port: everything MMAL_PORT_PRIVATE_T
// holds, guarded by locks the module never sees or takes directly.
type portCore struct {
	// mu is "lock": held across most operations in this package. Per the
	// hierarchy in §5, an output port's lock is always acquired before
	// its connected input port's lock.
	mu sync.Mutex

	// sendMu is "send_lock": held across SendBuffer and Flush and around
	// every IsEnabled flip, always acquired after mu if both are needed.
	sendMu sync.Mutex

	transit *transitGate

	stats portStats

	bufferHeaderCallback BufferHeaderCallback

	// formatPtrCopy is the core's own pointer to the Format given to the
	// port at Alloc time, used to detect the client swapping Port.Format
	// for a different allocation (invariant 1).
	formatPtrCopy *Format

	// connectedPort is non-nil once Connect has succeeded; it is the
	// input port on an output port's core, and the output port on an
	// input port's core.
	connectedPort *Port

	// coreOwnsConnection is true on both ports of a connection the core
	// manages itself because the output's module declined Connect.
	coreOwnsConnection bool

	// poolForConnection is the pool backing a core-owned connection. It is
	// set on the core of the port the pool was allocated for: the output
	// if it advertises CapabilityAllocation, otherwise the input.
	poolForConnection Pool

	nameBase string

	eventSink Sink

	actionLocked bool
}

// Alloc constructs a new port of the given type, owned by component, with
// the supplied module vtable. The returned port is disabled and
// disconnected; BufferNumMin/BufferSizeMin and their *Recommended
// counterparts are left to the caller (typically the module, immediately
// after Alloc) to fill in.
func Alloc(component Component, portType PortType, index uint32, module *Module) *Port {
	if module == nil {
		module = &Module{}
	}

	format := NewFormat()

	port := &Port{
		Type:      portType,
		Index:     index,
		Component: component,
		Format:    format,
		module:    module,
		core: &portCore{
			transit:       newTransitGate(),
			formatPtrCopy: format,
		},
	}
	port.refreshName()
	return port
}

// AllocArray constructs count ports of the same type in one call, the Go
// analogue of the source's array-allocation helper used by components
// that expose several ports of a kind (e.g. several outputs).
func AllocArray(component Component, portType PortType, count uint32, module *Module) []*Port {
	ports := make([]*Port, count)
	for i := range ports {
		ports[i] = Alloc(component, portType, uint32(i), module)
	}
	return ports
}

// Free releases a port's core-owned resources. A port must be disabled
// and disconnected before Free; Free does not do either for the caller.
func Free(port *Port) {
	if port == nil {
		return
	}
	port.core.mu.Lock()
	defer port.core.mu.Unlock()

	if port.core.poolForConnection != nil {
		port.Component.DestroyPool(port.core.poolForConnection)
		port.core.poolForConnection = nil
	}
}

// SetBufferHeaderCallback installs the callback the core invokes whenever
// a buffer header sent through this port completes (returns from
// downstream, or -- for an output port -- is ready for the client to
// collect). It is only valid to call this while the port is disabled.
func (p *Port) SetBufferHeaderCallback(cb BufferHeaderCallback) {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()
	p.core.bufferHeaderCallback = cb
}

// SetEventSink installs (or, with nil, removes) the diagnostic observer
// for this port. Safe to call at any time; the sink is never consulted
// for anything but notification.
func (p *Port) SetEventSink(sink Sink) {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()
	p.core.eventSink = sink
}

// InTransit reports how many buffers sent through this port have not yet
// been returned via its buffer header callback.
func (p *Port) InTransit() int32 {
	return p.core.transit.Count()
}

func (p *Port) notify(kind, detail string) {
	sink := p.core.eventSink
	if sink == nil {
		return
	}
	sink.PortEvent(p, kind, detail)
}

// refreshName recomputes Name from Component, Type, and Index, mirroring
// the source's mmal_port_name_update. Called by Alloc and by
// FormatCommit.
func (p *Port) refreshName() {
	base := "unnamed"
	if p.Component != nil && p.Component.Name() != "" {
		base = p.Component.Name()
	}
	p.core.nameBase = base
	p.Name = fmt.Sprintf("%s:%s:%d", base, p.Type.String(), p.Index)
}

func (p *Port) String() string {
	return p.Name
}
