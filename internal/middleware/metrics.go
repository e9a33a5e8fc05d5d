package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts cache operation failures by operation type. The cache
// layer fails open, so this counter is the main signal that Redis is unwell.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "funprofile_redis_errors_total",
	Help: "Total number of Redis operation errors.",
}, []string{"operation"})

// MediaUploads counts media upload attempts by outcome.
var MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "funprofile_media_uploads_total",
	Help: "Total number of media upload attempts by outcome.",
}, []string{"outcome"})

// MediaBytesOptimized tracks bytes saved by image optimization.
var MediaBytesOptimized = promauto.NewCounter(prometheus.CounterOpts{
	Name: "funprofile_media_optimized_bytes_total",
	Help: "Total bytes shaved off images by the optimization pass.",
})

// WalletSimulatedSends counts simulated wallet send transactions.
var WalletSimulatedSends = promauto.NewCounter(prometheus.CounterOpts{
	Name: "funprofile_wallet_simulated_sends_total",
	Help: "Total number of simulated wallet send transactions.",
})

// InitMetrics attaches the prometheus middleware and exposes /metrics.
func InitMetrics(app *fiber.App, serviceName string) {
	prom := fiberprometheus.New(serviceName)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}
