package dashboard

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/metrics"
	"github.com/ziadkadry99/netviz/internal/viz"
)

// Dashboard serves the browser view of the network and streams new frames
// to it over a websocket.
type Dashboard struct {
	session *viz.Session
	history *history.Store
	metrics *metrics.Collector
	logger  *zap.Logger
}

// New creates a new Dashboard. history and m may be nil.
func New(session *viz.Session, historyStore *history.Store, m *metrics.Collector, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		session: session,
		history: historyStore,
		metrics: m,
		logger:  logger,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/ws/network", d.handleWebSocket)
}
