package client

import (
	"context"

	"github.com/arklabs/arkgw/pkg/client/api"
	"github.com/arklabs/arkgw/pkg/sse"
)

// Completions defines the OpenAI-compatible operations
type Completions interface {
	ListModels(ctx context.Context) (*api.ModelList, error)
	CreateChatCompletion(ctx context.Context, request *api.ChatCompletionRequest) (*api.ChatCompletion, error)
	StreamChatCompletion(ctx context.Context, request *api.ChatCompletionRequest) (<-chan *sse.Event, error)
}

// completionsClient handles the OpenAI-compatible requests
type completionsClient struct {
	client *BaseClient
}

// NewCompletionsClient creates a new completions client
func NewCompletionsClient(client *BaseClient) Completions {
	return &completionsClient{client: client}
}

// ListModels lists every addressable target as an OpenAI model entry
func (c *completionsClient) ListModels(ctx context.Context) (*api.ModelList, error) {
	resp, err := c.client.Get(ctx, "/openai/v1/models", "")
	if err != nil {
		return nil, err
	}

	var models api.ModelList
	if err := DecodeResponse(resp, &models); err != nil {
		return nil, err
	}

	return &models, nil
}

// CreateChatCompletion runs a chat completion to completion and returns the
// final response. The request's Stream flag is ignored.
func (c *completionsClient) CreateChatCompletion(ctx context.Context, request *api.ChatCompletionRequest) (*api.ChatCompletion, error) {
	req := *request
	req.Stream = false

	resp, err := c.client.Post(ctx, "/openai/v1/chat/completions", &req, c.client.GetUserIDOrDefault(""))
	if err != nil {
		return nil, err
	}

	var completion api.ChatCompletion
	if err := DecodeResponse(resp, &completion); err != nil {
		return nil, err
	}

	return &completion, nil
}

// StreamChatCompletion runs a streamed chat completion. The returned channel
// yields one event per SSE frame, including the terminal [DONE] sentinel, and
// closes when the server ends the stream.
func (c *completionsClient) StreamChatCompletion(ctx context.Context, request *api.ChatCompletionRequest) (<-chan *sse.Event, error) {
	req := *request
	req.Stream = true

	resp, err := c.client.Post(ctx, "/openai/v1/chat/completions", &req, c.client.GetUserIDOrDefault(""))
	if err != nil {
		return nil, err
	}

	return sse.StreamSseResponse(resp.Body), nil
}
