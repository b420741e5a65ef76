package http

import (
	"net/http"

	"github.com/mauv0809/tt-ratings/internal/config"
	"github.com/mauv0809/tt-ratings/internal/http/handlers"
	"github.com/mauv0809/tt-ratings/internal/insights"
	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/pubsub"
	"github.com/mauv0809/tt-ratings/internal/store"
	"github.com/mauv0809/tt-ratings/internal/syncer"
)

// NewServer wires the HTTP surface. pubsub may be nil, in which case ?async=true is refused.
func NewServer(st store.Store, syncSvc syncer.Service, reader insights.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          st,
		Syncer:         syncSvc,
		Insights:       reader,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("POST /v1/sync/player/{playerId}", Chain(handlers.SyncPlayerHandler(s.Syncer, s.pubsub), paramsMiddleware))
	s.Router.Handle("POST /v1/sync/club/{clubId}", Chain(handlers.SyncClubHandler(s.Syncer, s.pubsub), paramsMiddleware))
	s.Router.Handle("POST /v1/sync/event/{eventId}/player/{playerId}", Chain(handlers.SyncEventHandler(s.Syncer, s.pubsub), paramsMiddleware))
	s.Router.Handle("GET /v1/sync/status", Chain(handlers.SyncStatusHandler(s.Syncer), paramsMiddleware))
	if s.pubsub != nil {
		s.Router.Handle("POST /pubsub/sync", Chain(handlers.SyncPushHandler(s.Syncer, s.pubsub), paramsMiddleware))
	}

	s.Router.Handle("GET /v1/clubs/{clubId}/leaderboard", Chain(handlers.LeaderboardHandler(s.Insights), paramsMiddleware))
	s.Router.Handle("GET /v1/players/{playerId}/overview", Chain(handlers.OverviewHandler(s.Insights), paramsMiddleware))
	s.Router.Handle("GET /v1/players/{playerId}/history", Chain(handlers.HistoryHandler(s.Insights), paramsMiddleware))
	s.Router.Handle("GET /v1/players/{playerId}/consistency", Chain(handlers.ConsistencyHandler(s.Syncer), paramsMiddleware))
	s.Router.Handle("GET /v1/players/{playerId}/avatar", Chain(handlers.GetAvatarHandler(s.Store), paramsMiddleware))
	s.Router.Handle("PUT /v1/players/{playerId}/avatar", Chain(handlers.PutAvatarHandler(s.Store), paramsMiddleware))
	s.Router.Handle("GET /v1/events/{eventId}/player/{playerId}", Chain(handlers.EventInsightsHandler(s.Insights), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
