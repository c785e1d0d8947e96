package handlers

import (
	"github.com/arklabs/arkgw/internal/a2a"
	"github.com/arklabs/arkgw/internal/openai"
	"github.com/arklabs/arkgw/internal/query"
	"github.com/arklabs/arkgw/internal/registry"
)

// Handlers holds all the HTTP handler components
type Handlers struct {
	Health  *HealthHandler
	Agents  *AgentsHandler
	Queries *QueriesHandler
	OpenAI  *OpenAIHandler
}

// Base holds common dependencies for all handlers
type Base struct {
	Registry   *registry.Registry
	Driver     *query.Driver
	RouteTable *a2a.RouteTable
	Proxy      *openai.StreamProxy
}

// NewHandlers creates a new Handlers instance with all handler components
func NewHandlers(base *Base) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(),
		Agents:  NewAgentsHandler(base),
		Queries: NewQueriesHandler(base),
		OpenAI:  NewOpenAIHandler(base),
	}
}
