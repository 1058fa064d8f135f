package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonschema"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/metrics"
	"github.com/sailwallet/txengine/internal/tracker"
	"github.com/sailwallet/txengine/internal/txstore"
)

// TrackRequester schedules confirmation polling for broadcast
// transactions.
type TrackRequester interface {
	Track(ctx context.Context, p tracker.Payload) error
}

// TransactionStore persists executed transactions beyond the lifetime
// of their in-memory flow.
type TransactionStore interface {
	Create(ctx context.Context, rec txstore.Record) error
	GetByID(ctx context.Context, id uuid.UUID) (txstore.Record, error)
}

// Server exposes transaction flows over HTTP.
type Server struct {
	logger *logrus.Logger
	port   int64
	deps   engine.Dependencies
	schema *jsonschema.Schema
	flows  *flowRegistry
	store  TransactionStore
	tracks TrackRequester

	e *echo.Echo
}

func NewServer(
	logger *logrus.Logger,
	port int64,
	deps engine.Dependencies,
	store TransactionStore,
	tracks TrackRequester,
) (*Server, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger: logger,
		port:   port,
		deps:   deps,
		schema: schema,
		flows:  newFlowRegistry(),
		store:  store,
		tracks: tracks,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(metrics.HTTPMiddleware())

	e.GET("/healthz", s.health)
	v1 := e.Group("/v1")
	v1.POST("/transactions", s.createTransaction)
	v1.GET("/transactions/:id", s.getTransaction)
	v1.PUT("/transactions/:id/amount", s.updateAmount)
	v1.PUT("/transactions/:id/fee-level", s.updateFeeLevel)
	v1.POST("/transactions/:id/validate", s.validateTransaction)
	v1.POST("/transactions/:id/execute", s.executeTransaction)
	v1.DELETE("/transactions/:id", s.deleteTransaction)

	s.e = e
	return s, nil
}

// Handler exposes the route tree for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}

// Run serves until the listener fails or Stop is called. It also
// prunes abandoned flows in the background.
func (s *Server) Run(ctx context.Context) error {
	go s.pruneLoop(ctx)
	return s.e.Start(fmt.Sprintf(":%d", s.port))
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

const flowMaxAge = time.Hour

func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := s.flows.prune(flowMaxAge); dropped > 0 {
				s.logger.WithField("count", dropped).Info("pruned stale flows")
			}
		}
	}
}

func trackRequest(id uuid.UUID, entry *flowEntry, res engine.TransactionResult) tracker.Payload {
	return tracker.Payload{
		RecordID:    id,
		Chain:       entry.source.Chain,
		TxHash:      res.TxHash,
		BroadcastAt: time.Now(),
	}
}
