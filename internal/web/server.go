package web

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/crypto_mining_pool/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router    *http.ServeMux
	server    *http.Server
	cache     *usecase.PriceCache
	estimator *usecase.EarningsEstimator
	pool      *usecase.PoolStatistics
	hub       *Hub
	logger    *zap.Logger
}

func NewServer(
	port int,
	cache *usecase.PriceCache,
	estimator *usecase.EarningsEstimator,
	pool *usecase.PoolStatistics,
	hub *Hub,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:    http.NewServeMux(),
		cache:     cache,
		estimator: estimator,
		pool:      pool,
		hub:       hub,
		logger:    logger.With(zap.String("component", "web")),
	}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.withRequestID(s.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// Market data
	s.router.HandleFunc("GET /api/coins", s.handleCoins)
	s.router.HandleFunc("GET /api/prices", s.handlePrices)
	s.router.HandleFunc("GET /api/network-stats/{coin}", s.handleNetworkStats)

	// Earnings
	s.router.HandleFunc("POST /api/estimate", s.handleEstimate)
	s.router.HandleFunc("POST /api/earnings-calculator", s.handleEarningsCalculator)
	s.router.HandleFunc("POST /api/profitability", s.handleProfitability)

	// Pool
	s.router.HandleFunc("GET /api/pool-stats/{coin}", s.handleGetPoolStats)
	s.router.HandleFunc("POST /api/pool-stats/{coin}", s.handleUpdatePoolStats)

	// Live prices
	s.router.HandleFunc("GET /ws/prices", s.handlePriceStream)
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("Request served",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
