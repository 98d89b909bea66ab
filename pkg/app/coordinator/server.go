// Package coordinator implements app.Runner for the coordinator process.
package coordinator

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsafe/goldengate-middleware/pkg/actor"
	"github.com/chainsafe/goldengate-middleware/pkg/api"
	"github.com/chainsafe/goldengate-middleware/pkg/app/httpserver"
	"github.com/chainsafe/goldengate-middleware/pkg/auth"
	"github.com/chainsafe/goldengate-middleware/pkg/config"
	"github.com/chainsafe/goldengate-middleware/pkg/coordinator"
	"github.com/chainsafe/goldengate-middleware/pkg/db"
	"github.com/chainsafe/goldengate-middleware/pkg/ethereum"
	"github.com/chainsafe/goldengate-middleware/pkg/intentstore"
	"github.com/chainsafe/goldengate-middleware/pkg/lifecycle"
	"github.com/chainsafe/goldengate-middleware/pkg/pgutil"
	"github.com/chainsafe/goldengate-middleware/pkg/reconciler"
	"github.com/chainsafe/goldengate-middleware/pkg/watcher"
)

// StateStore keeps checkpoints, nonces and submissions. Both *db.Store and
// *db.MemoryStore satisfy it.
type StateStore interface {
	watcher.CheckpointStore
	ethereum.NonceStore
	actor.SubmissionStore
	api.SubmissionLister
}

// Server holds configuration for the coordinator process.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new coordinator Server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run starts the coordinator and the operational HTTP server.
// It blocks until an OS shutdown signal is received or a fatal server error occurs.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("nil config")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging, "coordinator")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting GoldenGate coordinator", zap.Int("chains", len(cfg.Chains)))

	intents, state, closeStores, err := s.openStores(logger)
	if err != nil {
		return err
	}
	defer closeStores()

	clients := make(map[uint64]*ethereum.Client, len(cfg.Chains))
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()
	gateways := make(map[uint64]actor.Gateway, len(cfg.Chains))
	sources := make(map[uint64]watcher.Source, len(cfg.Chains))
	views := make(map[uint64]reconciler.ViewSource, len(cfg.Chains))
	for i := range cfg.Chains {
		chain := &cfg.Chains[i]
		client, err := ethereum.NewClient(ctx, chain, state, logger)
		if err != nil {
			return fmt.Errorf("initialize %s client: %w", chain.Name, err)
		}
		clients[chain.ChainID] = client
		gateways[chain.ChainID] = client
		sources[chain.ChainID] = client
		views[chain.ChainID] = client
	}

	engine := lifecycle.NewEngine(intents, logger)
	submitter := actor.NewSubmitter(gateways, state, logger)

	streams, err := coordinator.NewStreams(cfg, sources, state, logger)
	if err != nil {
		return fmt.Errorf("create event streams: %w", err)
	}
	rec := reconciler.New(engine, views, logger)
	coord := coordinator.New(cfg, coordinator.DefaultOptions(), engine, streams, rec, submitter, logger)

	var acceptor api.Acceptor
	if cfg.User.Enabled {
		signer, err := ethereum.NewSigner(cfg.User.Signer)
		if err != nil {
			return fmt.Errorf("initialize user signer: %w", err)
		}
		user := actor.NewUserDriver(&cfg.User, engine, submitter, signer, logger)
		coord.AddActor(user)
		acceptor = user
		logger.Info("User role enabled",
			zap.String("address", user.Address().Hex()),
			zap.String("accept_policy", cfg.User.AcceptPolicy))
	}
	if cfg.Solver.Enabled {
		signer, err := ethereum.NewSigner(cfg.Solver.Signer)
		if err != nil {
			return fmt.Errorf("initialize solver signer: %w", err)
		}
		solver := actor.NewSolverDriver(&cfg.Solver, engine, submitter, signer, logger)
		coord.AddActor(solver)
		logger.Info("Solver role enabled", zap.String("address", solver.Address().Hex()))
	}

	var validator *auth.TokenValidator
	if cfg.Admin.Enabled {
		if validator, err = auth.NewTokenValidator(cfg.Admin.JWTSecret, cfg.Admin.Issuer); err != nil {
			return fmt.Errorf("initialize admin auth: %w", err)
		}
	}

	if err := coord.Start(ctx); err != nil {
		return fmt.Errorf("start coordinator: %w", err)
	}
	defer coord.Stop()

	svc := api.NewLog(api.NewService(engine.Store(), state, coord, acceptor), logger)
	router := NewRouter(cfg, svc, coord, validator, logger)

	return httpserver.ServeAndWait(ctx, logger, httpserver.New(&cfg.Server, router), cfg.Shutdown.Timeout)
}

// openStores connects to PostgreSQL when the database is enabled and falls back
// to in-memory stores otherwise
func (s *Server) openStores(logger *zap.Logger) (intentstore.Store, StateStore, func(), error) {
	if !s.cfg.Database.Enabled {
		logger.Warn("Database disabled, state is kept in memory and lost on restart")
		return intentstore.NewMemoryStore(), db.NewMemoryStore(), func() {}, nil
	}

	bunDB, err := pgutil.ConnectDB(&s.cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect coordinator db: %w", err)
	}
	logger.Info("Database connection established", zap.String("database", s.cfg.Database.Database))
	return intentstore.NewPGStore(bunDB), db.NewStore(bunDB), func() { _ = bunDB.Close() }, nil
}

// ReadinessChecker reports whether the coordinator is running
type ReadinessChecker interface {
	IsReady() bool
}

// NewRouter builds the operational and API routes
func NewRouter(cfg *config.Config, svc api.Service, ready ReadinessChecker, validator *auth.TokenValidator, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(httpserver.RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if !ready.IsReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT_READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics enabled", zap.String("path", "/metrics"))
	}

	r.Route("/api/v1", func(r chi.Router) {
		api.RegisterRoutes(r, svc, validator, logger)
	})
	if validator != nil {
		logger.Info("Admin API enabled")
	}

	return r
}
