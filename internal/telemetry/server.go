package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lanikai/mmport"
	"github.com/lanikai/mmport/internal/logging"
)

var log = logging.DefaultLogger.WithTag("telemetry")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// PortSnapshot is the JSON shape broadcast to every connected dashboard
// client for one tracked port.
type PortSnapshot struct {
	Name      string                 `json:"name"`
	Enabled   bool                   `json:"enabled"`
	InTransit int32                  `json:"inTransit"`
	RX        mmport.CoreStatistics  `json:"rx"`
	TX        mmport.CoreStatistics  `json:"tx"`
	Recent    []DiagnosticEvent      `json:"recent,omitempty"`
}

// Server tracks a fixed set of ports and streams JSON snapshots of them
// to any number of connected websocket clients. Snapshots are only sent
// when Publish is called -- the port core has no timer of its own, so
// whatever drives the stats loop (a CLI, a test) decides the cadence.
type Server struct {
	mu    sync.Mutex
	ports []*mmport.Port
	logs  map[*mmport.Port]*eventLog

	bus *broadcaster

	httpServer *http.Server
}

// NewServer constructs a telemetry server for the given ports. Each port
// gets a telemetry.Sink installed via Port.SetEventSink; the caller is
// not required to do that itself.
func NewServer(addr string, ports ...*mmport.Port) *Server {
	s := &Server{
		ports: ports,
		logs:  make(map[*mmport.Port]*eventLog),
		bus:   newBroadcaster(),
	}

	for _, port := range ports {
		s.logs[port] = newEventLog("mmport/port", port.Name)
		port.SetEventSink(&sink{server: s})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	return s
}

func (s *Server) logFor(port *mmport.Port) *eventLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[port]
	if !ok {
		l = newEventLog("mmport/port", port.Name)
		s.logs[port] = l
	}
	return l
}

// ListenAndServe starts the websocket server, blocking until it is
// stopped with Close or fails.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Close shuts down the websocket server and every per-port event log.
func (s *Server) Close() error {
	s.bus.closeAll()
	s.mu.Lock()
	for _, l := range s.logs {
		l.finish()
	}
	s.mu.Unlock()
	return s.httpServer.Close()
}

// Publish takes a snapshot of every tracked port's state and broadcasts
// it as JSON to all connected clients. Callers drive the cadence -- see
// cmd/portdemo for a periodic caller.
func (s *Server) Publish() {
	s.mu.Lock()
	snapshots := make([]PortSnapshot, 0, len(s.ports))
	for _, port := range s.ports {
		rx := mmport.CoreStatisticsParam{Dir: mmport.StatsDirRX}
		tx := mmport.CoreStatisticsParam{Dir: mmport.StatsDirTX}
		mmport.ParameterGet(port, &rx)
		mmport.ParameterGet(port, &tx)

		snapshots = append(snapshots, PortSnapshot{
			Name:      port.Name,
			Enabled:   port.IsEnabled,
			InTransit: port.InTransit(),
			RX:        rx.Stats,
			TX:        tx.Stats,
			Recent:    s.logs[port].recent(8),
		})
	}
	s.mu.Unlock()

	body, err := json.Marshal(snapshots)
	if err != nil {
		log.Error("marshal snapshot: %v", err)
		return
	}
	s.bus.publish(body)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade: %v", err)
		return
	}
	defer ws.Close()

	ch := s.bus.subscribe(8)
	defer s.bus.unsubscribe(ch)

	for body := range ch {
		ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, body); err != nil {
			log.Warn("write: %v", err)
			return
		}
	}
}
