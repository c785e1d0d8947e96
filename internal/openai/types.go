// Package openai translates between the OpenAI chat completions surface and
// Query records. Response types are declared locally rather than reusing the
// SDK's: completions grown out of queries carry a provider extension field
// ("ark") the SDK types have no room for.
package openai

import (
	"encoding/json"
)

// ChatCompletionRequest is the accepted subset of the OpenAI chat completions
// request. Messages stay raw until validated so token accounting can see the
// original shapes.
type ChatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    json.RawMessage   `json:"messages"`
	Temperature float64           `json:"temperature,omitempty"`
	MaxTokens   *int64            `json:"max_tokens,omitempty"`
	Stream      bool              `json:"stream,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ArkMetadata is the provider extension carried under the "ark" key, both in
// request metadata (as a JSON string) and in responses.
type ArkMetadata struct {
	Annotations map[string]string `json:"annotations,omitempty"`
}

type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Choice struct {
	Index        int               `json:"index"`
	Message      CompletionMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// ChatCompletion is the OpenAI-compatible response body.
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []Choice     `json:"choices"`
	Usage   Usage        `json:"usage"`
	Ark     *ArkMetadata `json:"ark,omitempty"`
}

type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// ChatCompletionChunk is one SSE frame of a streamed completion.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
	Ark     *ArkMetadata  `json:"ark,omitempty"`
}

// ErrorDetail matches the OpenAI error envelope.
type ErrorDetail struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ModelEntry is one row of the /models listing.
type ModelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type ModelList struct {
	Object string       `json:"object"`
	Data   []ModelEntry `json:"data"`
}
