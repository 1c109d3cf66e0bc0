// Package core provides the HTTP surface for hostfacts. It exposes instance
// facts and a health endpoint on a chi router. Secrets are never served.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hostfacts/internal/metadata"
)

// InstanceFacts is the subset of the EC2 namespace the server reads.
type InstanceFacts interface {
	GetInstanceID(ctx context.Context) metadata.Fact
	GetInstanceRegion(ctx context.Context) (metadata.Region, bool)
}

// Server encapsulates the dependencies of the HTTP surface.
type Server struct {
	Facts        InstanceFacts
	Logger       *slog.Logger
	HealthProbes []HealthProbe

	router *chi.Mux
}

// NewServer creates a Server and mounts its routes.
func NewServer(facts InstanceFacts, logger *slog.Logger, probes ...HealthProbe) (*Server, error) {
	if facts == nil {
		return nil, fmt.Errorf("instance facts must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Facts:        facts,
		Logger:       logger,
		HealthProbes: probes,
		router:       chi.NewRouter(),
	}
	s.MountRoutes()
	return s, nil
}

// Handler returns the http.Handler for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}
