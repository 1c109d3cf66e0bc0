package core

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"hostfacts/internal/metadata"
	"hostfacts/internal/secrets"
	"hostfacts/internal/types"
)

// instanceResponse is the body of GET /v1/instance.
type instanceResponse struct {
	InstanceID    string       `json:"instance_id"`
	InstanceState string       `json:"instance_state"`
	Region        *regionField `json:"region"`
}

type regionField struct {
	Name        string `json:"name"`
	Partition   string `json:"partition"`
	DisplayName string `json:"display_name,omitempty"`
}

// HandleInstance reports the instance ID and region. An unknown instance ID
// is still a 200; the state field tells the caller what happened.
func (s *Server) HandleInstance(w http.ResponseWriter, r *http.Request) {
	id := s.Facts.GetInstanceID(r.Context())

	resp := instanceResponse{
		InstanceID:    id.Value,
		InstanceState: id.State.String(),
	}
	if region, ok := s.Facts.GetInstanceRegion(r.Context()); ok {
		resp.Region = &regionField{
			Name:        region.Name,
			Partition:   region.Partition,
			DisplayName: region.DisplayName,
		}
	}

	JSON(w, r, http.StatusOK, resp)
}

// metadataProbe reports unhealthy while the instance ID is unknown.
type metadataProbe struct {
	facts InstanceFacts
}

// NewMetadataProbe returns a HealthProbe backed by the instance ID lookup.
// Hosts off EC2 report healthy.
func NewMetadataProbe(facts InstanceFacts) HealthProbe {
	return metadataProbe{facts: facts}
}

func (p metadataProbe) Name() string { return "metadata" }

func (p metadataProbe) Check(ctx context.Context) error {
	if f := p.facts.GetInstanceID(ctx); f.State == metadata.StateUnknown {
		return types.NewAppError(types.ErrCodeMetadataUnavailable, "instance metadata service unavailable", nil)
	}
	return nil
}

// breakerProbe reports unhealthy while the secrets store breaker is open.
type breakerProbe struct {
	store *secrets.BreakerStore
}

// NewSecretsStoreProbe returns a HealthProbe for store. Stores without a
// circuit breaker have nothing to report and return nil.
func NewSecretsStoreProbe(store secrets.Store) HealthProbe {
	bs, ok := store.(*secrets.BreakerStore)
	if !ok {
		return nil
	}
	return breakerProbe{store: bs}
}

func (p breakerProbe) Name() string { return "secrets_store" }

func (p breakerProbe) Check(context.Context) error {
	if state := p.store.State(); state == gobreaker.StateOpen {
		return types.NewAppError(types.ErrCodeSecretStoreUnavailable,
			fmt.Sprintf("secrets store circuit breaker is %s", state), nil)
	}
	return nil
}
