package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/evaluation"
)

var (
	// httpRequestsTotal counts handled requests by route and response code
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gradebook_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "path", "code"})

	// httpRequestDuration tracks request latency by route
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gradebook_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"method", "path"})

	// criterionRejections counts criterion changes refused by the weight rules
	criterionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gradebook_criterion_rejections_total",
		Help: "Total criterion changes rejected by reason",
	}, []string{"reason"})
)

func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				// render now so that the recorded status is the one sent
				ctx.Error(err)
			}

			path := ctx.Path()
			if path == "" {
				path = "unmatched"
			}
			method := ctx.Request().Method
			httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(ctx.Response().Status)).Inc()
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// recordRejection counts err when it is a criterion validation failure.
func recordRejection(err error) {
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		return
	}
	reason := "invalid"
	var exceeds *evaluation.ExceedsError
	switch {
	case errors.As(err, &exceeds):
		reason = "exceeds_total"
	case len(vErr.Fields) > 0:
		reason = "invalid_" + vErr.Fields[0].Field
	}
	criterionRejections.WithLabelValues(reason).Inc()
}
