// Package mmport implements the port subsystem of a multimedia component
// graph: the object that sits on every input, output, and control endpoint
// of a processing component and mediates the flow of buffer headers between
// producers and consumers.
//
// A Port presents a thread-safe public surface (format, buffer
// requirements, enabled flag) while dispatching into a component-supplied
// Module, tracks in-flight ("in transit") buffers so Disable can block
// until every borrowed buffer has come back, and supports connecting two
// ports from different components so the core forwards buffers between
// them automatically, allocating a shared Pool and propagating format
// changes mid-stream.
//
// Component lifecycle, buffer/pool allocation, and the concrete
// codec/hardware behavior behind a Module are external collaborators,
// consumed here only through the interfaces declared in collaborators.go
// and module.go.
package mmport
