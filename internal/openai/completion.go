package openai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/utils"
)

// promptText flattens the request messages into the text used for prompt
// token accounting. String contents contribute directly; structured contents
// contribute their JSON rendering.
func promptText(messages json.RawMessage) string {
	var entries []struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(messages, &entries); err != nil {
		return ""
	}

	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Content) == 0 {
			parts = append(parts, "")
			continue
		}
		var s string
		if err := json.Unmarshal(entry.Content, &s); err == nil {
			parts = append(parts, s)
			continue
		}
		parts = append(parts, string(entry.Content))
	}
	return strings.Join(parts, " ")
}

// NewCompletion shapes a finished query into an OpenAI chat completion. Token
// usage is approximated with word counts; the upstream execution engine does
// not report real token counts through query status. Query annotations ride
// along in the ark extension.
func NewCompletion(q *v1alpha1.Query, model string, messages json.RawMessage) ChatCompletion {
	content := ""
	if len(q.Status.Responses) > 0 {
		content = q.Status.Responses[0].Content
	}

	promptTokens := utils.CountWords(promptText(messages))
	completionTokens := utils.CountWords(content)

	completion := ChatCompletion{
		ID:      q.Name,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []Choice{
			{
				Index:        0,
				Message:      CompletionMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
	if len(q.Annotations) > 0 {
		completion.Ark = &ArkMetadata{Annotations: q.Annotations}
	}
	return completion
}

// SingleChunkSSE renders a complete completion as a one-chunk SSE stream.
// Used when the caller asked to stream but no streaming backend is available:
// per the OpenAI spec the whole response goes out as a single chunk, usage
// included, followed by the DONE sentinel.
func SingleChunkSSE(completion ChatCompletion) ([]string, error) {
	content := ""
	if len(completion.Choices) > 0 {
		content = completion.Choices[0].Message.Content
	}

	usage := completion.Usage
	chunk := ChatCompletionChunk{
		ID:      completion.ID,
		Object:  "chat.completion.chunk",
		Created: completion.Created,
		Model:   completion.Model,
		Choices: []ChunkChoice{
			{
				Index:        0,
				Delta:        ChunkDelta{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: &usage,
		Ark:   completion.Ark,
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion chunk: %w", err)
	}

	return []string{
		fmt.Sprintf("data: %s\n\n", data),
		"data: [DONE]\n\n",
	}, nil
}
