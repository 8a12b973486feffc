package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxConcurrentScrapes bounds parallel /metrics requests.
const maxConcurrentScrapes = 2

// MetricsHandler serves the default registry. A collector failing to gather
// drops its series from the scrape instead of failing the whole response.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorHandling:       promhttp.ContinueOnError,
			MaxRequestsInFlight: maxConcurrentScrapes,
		}))
}
