package devnet

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// HTTPConfig configures the JSON-RPC HTTP server
type HTTPConfig struct {
	AllowedOrigins    []string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultHTTPConfig allows any origin, like local dev nodes usually do
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		AllowedOrigins:    []string{"*"},
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ShutdownTimeout:   5 * time.Second,
	}
}

// Server exposes a chain over HTTP JSON-RPC with /metrics and /healthz
type Server struct {
	chain  *Chain
	rpc    *rpc.Server
	srv    *http.Server
	cfg    HTTPConfig
	log    *slog.Logger
	router *mux.Router
}

// NewServer builds the HTTP handler tree for chain. gatherer serves /metrics.
func NewServer(chain *Chain, cfg HTTPConfig, gatherer prometheus.Gatherer, log *slog.Logger) (*Server, error) {
	rpcSrv, err := NewRPCServer(chain)
	if err != nil {
		return nil, err
	}

	s := &Server{
		chain:  chain,
		rpc:    rpcSrv,
		cfg:    cfg,
		log:    log.With("component", "devnet-rpc"),
		router: mux.NewRouter(),
	}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	s.router.Handle("/", rpcSrv).Methods(http.MethodPost)

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(s.router)

	s.srv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Serve accepts connections on l until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving JSON-RPC", "addr", l.Addr().String(), "chainId", s.chain.ChainConfigID())
		errCh <- s.srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		s.rpc.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	// make sure the server is closed even if shutdown timed out
	_ = s.srv.Close()
	s.rpc.Stop()
	<-errCh
	s.log.Info("JSON-RPC server stopped")
	return err
}

type healthResponse struct {
	Status  string `json:"status"`
	ChainID uint64 `json:"chainId"`
	Block   uint64 `json:"block"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	block, err := s.chain.BlockNumber(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: err.Error(), ChainID: s.chain.ChainConfigID()})
		return
	}
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", ChainID: s.chain.ChainConfigID(), Block: block})
}
