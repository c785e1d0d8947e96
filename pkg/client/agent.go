package client

import (
	"context"
	"net/url"

	"github.com/arklabs/arkgw/pkg/client/api"
)

// Agent defines the A2A discovery operations
type Agent interface {
	ListAgents(ctx context.Context, capability string) ([]api.AgentSummary, error)
}

// agentClient handles agent-related requests
type agentClient struct {
	client *BaseClient
}

// NewAgentClient creates a new agent client
func NewAgentClient(client *BaseClient) Agent {
	return &agentClient{client: client}
}

// ListAgents lists the agents served on the A2A surface. A non-empty
// capability narrows the listing to agents with a matching skill name.
func (c *agentClient) ListAgents(ctx context.Context, capability string) ([]api.AgentSummary, error) {
	path := "/a2a/agents"
	if capability != "" {
		path += "?capability=" + url.QueryEscape(capability)
	}

	resp, err := c.client.Get(ctx, path, c.client.GetUserIDOrDefault(""))
	if err != nil {
		return nil, err
	}

	var agents []api.AgentSummary
	if err := DecodeResponse(resp, &agents); err != nil {
		return nil, err
	}

	return agents, nil
}
