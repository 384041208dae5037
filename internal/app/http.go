package app

import (
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/fridgeshare/internal/clock"
	"github.com/mmynk/fridgeshare/internal/middleware"
	"github.com/mmynk/fridgeshare/internal/service"
	"github.com/mmynk/fridgeshare/pkg/api"
)

// Handler returns the HTTP handler serving the Connect services, the health
// check and, when enabled, the metrics endpoint.
func (a *App) Handler() http.Handler {
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(a.JWT, a.Store),
		middleware.LoggingInterceptor(a.Logger),
	)

	mux := http.NewServeMux()

	ledgerPath, ledgerHandler := api.NewLedgerServiceHandler(
		service.NewLedgerService(a.Store, a.Engine), interceptors)
	mux.Handle(ledgerPath, ledgerHandler)

	purchasePath, purchaseHandler := api.NewPurchaseServiceHandler(
		service.NewPurchaseService(a.Store, clock.RealClock{}), interceptors)
	mux.Handle(purchasePath, purchaseHandler)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	if a.Config.Metrics.Enabled {
		mux.Handle(a.Config.Metrics.Path, promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	}

	return requestLogger(a.Logger, corsMiddleware(mux))
}

// requestLogger logs every request at debug level; RPC outcomes are logged by
// the Connect interceptor.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
