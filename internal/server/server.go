package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cardledger/internal/account"
	"cardledger/internal/catalog"
	"cardledger/internal/crafting"
	"cardledger/internal/database"
	"cardledger/internal/gacha"
	"cardledger/internal/handler"
	"cardledger/internal/ledger"
	"cardledger/internal/logger"
	"cardledger/internal/market"
	"cardledger/internal/metrics"
	"cardledger/internal/order"
)

// Services bundles the engine services the router exposes.
type Services struct {
	Ledger   ledger.Service
	Gacha    gacha.Service
	Crafting crafting.Service
	Market   market.Service
	Order    order.Service
	Account  account.Service
}

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, cat *catalog.Catalog, services Services) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Catalog routes (read-only reference data)
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/cards", handler.HandleSearchCatalog(cat))
			r.Get("/card", handler.HandleGetCard(cat))
		})

		// Box inspection routes
		r.Route("/box", func(r chi.Router) {
			r.Get("/", handler.HandleGetBox(services.Ledger))
			r.Get("/stack", handler.HandleGetStack(services.Ledger))
		})

		// Draw routes
		r.Post("/gacha/pull", handler.HandlePull(services.Gacha))

		// Crafting routes
		r.Route("/craft", func(r chi.Router) {
			r.Post("/compose", handler.HandleCompose(services.Crafting))
			r.Post("/decompose", handler.HandleDecompose(services.Crafting))
		})

		// Market routes
		r.Route("/market", func(r chi.Router) {
			r.Get("/listings", handler.HandleBrowseListings(services.Market))
			r.Get("/listings/seller", handler.HandleSellerListings(services.Market))
			r.Get("/trades", handler.HandleTradeHistory(services.Market))
			r.Post("/list", handler.HandleList(services.Market))
			r.Post("/buy", handler.HandleBuy(services.Market))
			r.Post("/delist", handler.HandleDelist(services.Market))
		})

		// Order routes
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", handler.HandlePendingOrders(services.Order))
			r.Post("/complete", handler.HandleCompleteOrder(services.Order))
			r.Post("/cancel", handler.HandleCancelOrder(services.Order))
		})

		// Player profile route
		r.Get("/player", handler.HandleGetProfile(services.Account))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool: dbPool,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Generate unique request ID
		requestID := logger.GenerateRequestID()

		// Add request ID to context
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		// Get scoped logger
		log := logger.FromContext(ctx)

		// Log request start with details
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		// Wrap response writer to capture status code
		rw := newResponseWriter(w)

		// Process request
		next.ServeHTTP(rw, r)

		// Log request completion with metrics
		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
