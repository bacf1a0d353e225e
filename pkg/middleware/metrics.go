package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the HTTP metrics middleware.
type MetricsConfig struct {
	// Requests is the counter to increment per request.
	Requests *prometheus.CounterVec

	// SkipPaths are not counted.
	SkipPaths []string
}

// Metrics counts completed requests by method, path and status.
func Metrics(config MetricsConfig) fiber.Handler {
	skipMap := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipMap[path] = true
	}

	return func(c fiber.Ctx) error {
		if skipMap[c.Path()] || config.Requests == nil {
			return c.Next()
		}

		err := c.Next()

		config.Requests.WithLabelValues(
			c.Method(),
			c.Path(),
			strconv.Itoa(c.Response().StatusCode()),
		).Inc()

		return err
	}
}

// PrometheusHandler serves the Prometheus scrape endpoint.
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
