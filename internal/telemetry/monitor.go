package telemetry

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sarchlab/akita/v4/monitoring"
)

// Reporter is the subset of design.Design's surface the monitor needs.
// Defined here rather than imported from package design to avoid a
// telemetry<->design import cycle (design optionally registers with a
// Monitor at construction time).
type Reporter interface {
	Area(moduleName string) (int, error)
	CellBreakdown(moduleName string) (map[string]int, error)
	TotalToggleCount(moduleName string) (uint64, error)
	ModuleNames() []string
}

// Monitor is a process-wide registry of Design instances, mirroring the
// config.DeviceBuilder.WithMonitor + monitor.RegisterComponent pattern.
// gatesim's designs are not akita sim.Components, though: they are
// never ticked by a DES engine, since event-driven evaluation is out of
// scope here, so Monitor does not call akita's RegisterComponent; it
// keeps an akita *monitoring.Monitor around purely so a caller wiring
// gatesim alongside other akita components in the same process can
// still hand it one shared monitor.
type Monitor struct {
	mu       sync.Mutex
	designs  map[string]Reporter
	akitaMon *monitoring.Monitor
	httpMux  *mux.Router
}

// NewMonitor returns an empty Monitor, with its own backing akita
// monitoring.Monitor for interop with other akita-based components.
func NewMonitor() *Monitor {
	return &Monitor{
		designs:  make(map[string]Reporter),
		akitaMon: monitoring.NewMonitor(),
	}
}

// AkitaMonitor returns the backing akita monitor, for callers that also
// run akita sim.Components in the same process.
func (m *Monitor) AkitaMonitor() *monitoring.Monitor {
	return m.akitaMon
}

// Register records a Design under name for later reporting.
func (m *Monitor) Register(name string, r Reporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.designs[name] = r
}

// Names returns every registered design's name, sorted.
func (m *Monitor) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.designs))
	for name := range m.designs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HTTPHandler returns a gorilla/mux router exposing /metrics, /area, and
// /toggles endpoints over every registered design, for use with
// http.ListenAndServe by a caller (e.g. cmd/gatesim) that opts into the
// optional monitoring HTTP surface.
func (m *Monitor) HTTPHandler() http.Handler {
	if m.httpMux != nil {
		return m.httpMux
	}

	r := mux.NewRouter()
	r.HandleFunc("/metrics", m.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/area/{design}", m.handleArea).Methods(http.MethodGet)
	r.HandleFunc("/toggles/{design}", m.handleToggles).Methods(http.MethodGet)
	m.httpMux = r
	return r
}

func (m *Monitor) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.Names())
}

func (m *Monitor) handleArea(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["design"]
	r, ok := m.lookup(name)
	if !ok {
		http.NotFound(w, req)
		return
	}
	area, err := r.Area("")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"area": area})
}

func (m *Monitor) handleToggles(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["design"]
	r, ok := m.lookup(name)
	if !ok {
		http.NotFound(w, req)
		return
	}
	toggles, err := r.TotalToggleCount("")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]uint64{"toggles": toggles})
}

func (m *Monitor) lookup(name string) (Reporter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.designs[name]
	return r, ok
}
