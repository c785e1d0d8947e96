package v1alpha1

import (
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

const (
	// QueryTypeUser represents a query whose input is a plain string that gets
	// converted to a single message with role="user".
	QueryTypeUser = "user"
	// QueryTypeMessages represents a query whose input is an ordered array of
	// OpenAI chat messages.
	QueryTypeMessages = "messages"
)

// Query phases reported by the query controller.
const (
	QueryPhasePending  = "pending"
	QueryPhaseRunning  = "running"
	QueryPhaseDone     = "done"
	QueryPhaseError    = "error"
	QueryPhaseCanceled = "canceled"
)

type QuerySpec struct {
	// +kubebuilder:validation:Optional
	// +kubebuilder:validation:Enum=user;messages
	// +kubebuilder:default=user
	Type string `json:"type,omitempty"`
	// +kubebuilder:validation:Required
	// +kubebuilder:pruning:PreserveUnknownFields
	// +kubebuilder:validation:Schemaless
	// Input is a string (type=user) or []openai.ChatCompletionMessageParamUnion (type=messages).
	Input runtime.RawExtension `json:"input"`
	// +kubebuilder:validation:Optional
	Targets []QueryTarget `json:"targets,omitempty"`
	// +kubebuilder:validation:Optional
	Memory *MemoryRef `json:"memory,omitempty"`
	// +kubebuilder:validation:Optional
	// +kubebuilder:validation:MinLength=1
	SessionId string `json:"sessionId,omitempty"`
	// +kubebuilder:validation:Optional
	// +kubebuilder:default="720h"
	TTL *metav1.Duration `json:"ttl,omitempty"`
	// +kubebuilder:default="5m"
	// Timeout for query execution (e.g., "30s", "5m", "1h")
	Timeout *metav1.Duration `json:"timeout,omitempty"`
	// +kubebuilder:validation:Optional
	// When true, indicates intent to cancel the query
	Cancel bool `json:"cancel,omitempty"`
}

// Response defines a response from a single query target.
type Response struct {
	Target  QueryTarget `json:"target,omitempty"`
	Content string      `json:"content,omitempty"`
	Raw     string      `json:"raw,omitempty"`
	Phase   string      `json:"phase,omitempty"`
}

type TokenUsage struct {
	PromptTokens     int64 `json:"promptTokens,omitempty"`
	CompletionTokens int64 `json:"completionTokens,omitempty"`
	TotalTokens      int64 `json:"totalTokens,omitempty"`
}

type QueryStatus struct {
	// +kubebuilder:default="pending"
	// +kubebuilder:validation:Enum=pending;running;error;done;canceled
	Phase string `json:"phase,omitempty"`
	// +kubebuilder:validation:Optional
	Message string `json:"message,omitempty"`
	// +kubebuilder:validation:Optional
	Conditions []metav1.Condition `json:"conditions,omitempty" patchStrategy:"merge" patchMergeKey:"type"`
	Responses  []Response         `json:"responses,omitempty"`
	TokenUsage TokenUsage         `json:"tokenUsage,omitempty"`
	// +kubebuilder:validation:Optional
	Duration *metav1.Duration `json:"duration,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Type",type=string,JSONPath=`.spec.type`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// Query is the Schema for the queries API.
type Query struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   QuerySpec   `json:"spec,omitempty"`
	Status QueryStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true
type QueryList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Query `json:"items"`
}

// GetInputString returns the input as a string when type="user" or type is empty.
func (q *QuerySpec) GetInputString() (string, error) {
	if q.Type != "" && q.Type != QueryTypeUser {
		return "", fmt.Errorf("cannot get string input for type=%s, expected type=%s or empty", q.Type, QueryTypeUser)
	}

	var inputString string
	if err := json.Unmarshal(q.Input.Raw, &inputString); err != nil {
		return "", fmt.Errorf("failed to unmarshal input as string: %w", err)
	}

	return inputString, nil
}

// GetInputMessages returns the input as OpenAI chat messages when type="messages".
func (q *QuerySpec) GetInputMessages() ([]openai.ChatCompletionMessageParamUnion, error) {
	if q.Type != QueryTypeMessages {
		return nil, fmt.Errorf("cannot get message input for type=%s, expected type=%s", q.Type, QueryTypeMessages)
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if err := json.Unmarshal(q.Input.Raw, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal input as messages: %w", err)
	}

	return messages, nil
}

// SetInputString sets the input as a string and marks the query type=user.
func (q *QuerySpec) SetInputString(input string) error {
	inputBytes, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal string input: %w", err)
	}

	if q.Type == "" {
		q.Type = QueryTypeUser
	}
	q.Input.Raw = inputBytes
	return nil
}

// SetInputMessages sets the input to raw OpenAI chat messages and marks the
// query type=messages. The messages are stored verbatim; the query controller
// is responsible for interpreting them.
func (q *QuerySpec) SetInputMessages(messages []openai.ChatCompletionMessageParamUnion) error {
	inputBytes, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal message input: %w", err)
	}

	q.Type = QueryTypeMessages
	q.Input.Raw = inputBytes
	return nil
}

func init() {
	SchemeBuilder.Register(&Query{}, &QueryList{})
}
