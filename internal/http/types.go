package http

import (
	"net/http"

	"github.com/mauv0809/tt-ratings/internal/config"
	"github.com/mauv0809/tt-ratings/internal/insights"
	"github.com/mauv0809/tt-ratings/internal/metrics"
	"github.com/mauv0809/tt-ratings/internal/pubsub"
	"github.com/mauv0809/tt-ratings/internal/store"
	"github.com/mauv0809/tt-ratings/internal/syncer"
)

type Server struct {
	Store          store.Store
	Syncer         syncer.Service
	Insights       insights.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
