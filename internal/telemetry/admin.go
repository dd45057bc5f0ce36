package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"slumber/internal/backend"
)

// BackendStatusFunc reports the backend's currently known address and
// observability-only reachability state for the /backend endpoint.
type BackendStatusFunc func() (backend.HostInfo, bool, backend.State)

type AdminServerOptions struct {
	Addr string

	Metrics *MetricsCollector
	Backend BackendStatusFunc
	Logs    interface {
		Snapshot(limit int) []string
	}

	Health func() bool
}

type AdminServer struct {
	opts AdminServerOptions
	srv  *http.Server
}

func NewAdminServer(opts AdminServerOptions) *AdminServer {
	as := &AdminServer{opts: opts}
	as.srv = &http.Server{Addr: opts.Addr, Handler: newAdminMux(as)}
	return as
}

func newAdminMux(as *AdminServer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if as.opts.Health != nil && !as.opts.Health() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(as.opts.Metrics.Snapshot())
	})

	mux.HandleFunc("/backend", func(w http.ResponseWriter, r *http.Request) {
		if as.opts.Backend == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		host, known, state := as.opts.Backend()
		resp := struct {
			Host  string `json:"host,omitempty"`
			Addr  string `json:"addr,omitempty"`
			Known bool   `json:"known"`
			State string `json:"state"`
		}{
			Known: known,
			State: state.String(),
		}
		if known {
			resp.Host = host.Host
			resp.Addr = host.Addr
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		if as.opts.Logs == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		limit := 200
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		if limit <= 0 {
			limit = 200
		}
		if limit > 5000 {
			limit = 5000
		}
		resp := struct {
			Lines   []string `json:"lines"`
			Dropped uint64   `json:"dropped,omitempty"`
		}{
			Lines: as.opts.Logs.Snapshot(limit),
		}
		if d, ok := as.opts.Logs.(interface{ Dropped() uint64 }); ok {
			resp.Dropped = d.Dropped()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	return mux
}

func (a *AdminServer) Start() error {
	return a.srv.ListenAndServe()
}

func (a *AdminServer) Shutdown(ctx context.Context) error {
	return a.srv.Shutdown(ctx)
}
