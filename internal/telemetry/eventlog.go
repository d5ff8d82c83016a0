package telemetry

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"golang.org/x/net/trace"

	"github.com/lanikai/mmport"
)

// historyLimit bounds how many diagnostic events are retained per port;
// older entries are evicted on a least-recently-added basis by the LRU
// cache rather than growing without bound for a long-running component.
const historyLimit = 256

// DiagnosticEvent is one entry recorded for a port: a lifecycle kind
// ("enable", "disable", "connect", "format-changed", "send-failure", ...)
// plus a free-form detail string and the time it was recorded.
type DiagnosticEvent struct {
	Kind   string
	Detail string
	At     time.Time
}

// eventLog is the per-port diagnostic sink: a trace.EventLog for
// golang.org/x/net/trace's /debug/events introspection, plus a bounded
// history any Server can render into a snapshot.
type eventLog struct {
	mu      sync.Mutex
	trace   trace.EventLog
	history *lru.Cache
	seq     int
}

func newEventLog(family, title string) *eventLog {
	return &eventLog{
		trace:   trace.NewEventLog(family, title),
		history: lru.New(historyLimit),
	}
}

func (e *eventLog) record(kind, detail string) DiagnosticEvent {
	ev := DiagnosticEvent{Kind: kind, Detail: detail, At: time.Now()}

	e.mu.Lock()
	e.seq++
	e.history.Add(e.seq, ev)
	e.trace.Printf("%s: %s", kind, detail)
	e.mu.Unlock()

	return ev
}

func (e *eventLog) errorf(kind, detail string) {
	e.mu.Lock()
	e.seq++
	e.history.Add(e.seq, DiagnosticEvent{Kind: kind, Detail: detail, At: time.Now()})
	e.trace.Errorf("%s: %s", kind, detail)
	e.mu.Unlock()
}

// recent returns the n most recently recorded events, newest first.
func (e *eventLog) recent(n int) []DiagnosticEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]DiagnosticEvent, 0, n)
	for i := e.seq; i > 0 && len(out) < n; i-- {
		v, ok := e.history.Get(i)
		if !ok {
			continue
		}
		out = append(out, v.(DiagnosticEvent))
	}
	return out
}

func (e *eventLog) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trace.Finish()
}

// sink implements mmport.Sink, recording every port lifecycle event into
// that port's eventLog. It is installed with Port.SetEventSink and is a
// pure observer: its PortEvent method never returns a value the port
// core could act on.
type sink struct {
	server *Server
}

func (s *sink) PortEvent(port *mmport.Port, kind, detail string) {
	log := s.server.logFor(port)
	if kind == "send-failure" || kind == "disable-timeout" {
		log.errorf(kind, detail)
		return
	}
	log.record(kind, detail)
}
