package api

import (
	"github.com/arklabs/arkgw/internal/openai"
	"github.com/arklabs/arkgw/internal/version"
)

// Common types

// APIError represents an error response from the API
type APIError struct {
	Error string `json:"error"`
}

// VersionResponse represents the version information
type VersionResponse = version.Info

// AgentSummary is one row of the A2A discovery listing. The host field is a
// legacy constant some clients still key on.
type AgentSummary struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Capabilities []string          `json:"capabilities"`
	Host         string            `json:"host"`
	AgentCard    string            `json:"agent-card"`
	CreatedAt    string            `json:"created_at"`
	Metadata     map[string]string `json:"metadata"`
}

// CancelQueryResponse acknowledges a cancellation request.
type CancelQueryResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// OpenAI-compatible types

type ChatCompletionRequest = openai.ChatCompletionRequest

type ChatCompletion = openai.ChatCompletion

type ChatCompletionChunk = openai.ChatCompletionChunk

type ModelList = openai.ModelList

type ModelEntry = openai.ModelEntry
