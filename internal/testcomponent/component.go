// Package testcomponent is a reference implementation of the mmport
// Component, Pool, and BufferHeader collaborators, used by the mmport
// package's own tests and by cmd/portdemo. It imports mmport; mmport
// never imports it.
package testcomponent

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/lanikai/mmport"
)

// ModuleFactory builds the mmport.Module (and any ports) for a named
// module kind, given a configuration path string -- the same
// tag:path convention the teacher's source registry used.
type ModuleFactory func(path string) (*Component, error)

var (
	registryMu sync.Mutex
	registry   = map[string]ModuleFactory{}
)

// Register associates tag with a factory, so Open("tag:path") constructs
// a component of that kind.
func Register(tag string, factory ModuleFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = factory
}

// Open parses a "tag:path" spec and invokes the registered factory for
// tag.
func Open(spec string) (*Component, error) {
	registryMu.Lock()
	var tags []string
	for t := range registry {
		tags = append(tags, t)
	}
	registryMu.Unlock()
	sort.Strings(tags)

	parts := strings.SplitN(spec, ":", 2)
	tag := parts[0]
	var path string
	if len(parts) == 2 {
		path = parts[1]
	}

	registryMu.Lock()
	factory, found := registry[tag]
	registryMu.Unlock()
	if !found {
		return nil, errors.Errorf("testcomponent: module type %q not registered (have %v)", tag, tags)
	}
	return factory(path)
}

// Component is a minimal but complete mmport.Component: a named holder
// of input/output ports, an action lock guarding a module's internal
// worker, a refcount keeping the component alive while any payload it
// handed out is outstanding, and an event pool for EventGet.
type Component struct {
	name string

	actionMu sync.Mutex

	refMu    sync.Mutex
	refCount int
	onZero   func()

	eventPool *Pool

	inputs  []*mmport.Port
	outputs []*mmport.Port

	errMu   sync.Mutex
	lastErr error
}

// eventPayloadSize is the payload size of every event pool buffer: large
// enough for mmport.EventGet to accept it for a FORMAT_CHANGED event.
const eventPayloadSize = 256

// New constructs a component named name with an event pool of eventPoolSize
// buffers of eventPayloadSize bytes each. onZero, if non-nil, is called
// when the component's reference count returns to zero after having been
// acquired at least once -- the hook a real implementation would use to
// finally free itself.
func New(name string, eventPoolSize int, onZero func()) *Component {
	return &Component{
		name:      name,
		refCount:  1,
		onZero:    onZero,
		eventPool: NewPool(eventPoolSize, eventPayloadSize),
	}
}

func (c *Component) Name() string { return c.name }

func (c *Component) ActionLock()   { c.actionMu.Lock() }
func (c *Component) ActionUnlock() { c.actionMu.Unlock() }

func (c *Component) Acquire() {
	c.refMu.Lock()
	c.refCount++
	c.refMu.Unlock()
}

func (c *Component) Release() {
	c.refMu.Lock()
	c.refCount--
	zero := c.refCount == 0
	c.refMu.Unlock()

	if zero && c.onZero != nil {
		c.onZero()
	}
}

func (c *Component) EventPool() mmport.Pool { return c.eventPool }

func (c *Component) RaiseError(err error) {
	c.errMu.Lock()
	c.lastErr = err
	c.errMu.Unlock()
}

// LastError returns the most recent error reported via RaiseError, for
// tests to assert against.
func (c *Component) LastError() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

func (c *Component) Outputs() []*mmport.Port { return c.outputs }
func (c *Component) Inputs() []*mmport.Port  { return c.inputs }

// AddInput and AddOutput record a port as belonging to this component so
// Outputs() can serve FormatCommit's output-clamp cascade; they do not
// allocate the port itself.
func (c *Component) AddInput(port *mmport.Port)  { c.inputs = append(c.inputs, port) }
func (c *Component) AddOutput(port *mmport.Port) { c.outputs = append(c.outputs, port) }

func (c *Component) CreatePool(port *mmport.Port, num, size uint32) (mmport.Pool, error) {
	return NewPool(int(num), int(size)), nil
}

func (c *Component) DestroyPool(pool mmport.Pool) {
	if p, ok := pool.(*Pool); ok {
		p.Close()
	}
}
