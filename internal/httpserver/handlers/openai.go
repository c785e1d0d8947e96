package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	openaisdk "github.com/openai/openai-go"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/annotations"
	"github.com/arklabs/arkgw/internal/metrics"
	"github.com/arklabs/arkgw/internal/openai"
	"github.com/arklabs/arkgw/internal/query"
)

// OpenAIHandler serves the OpenAI-compatible surface: chat completions backed
// by query records, and the model listing assembled from the registry.
type OpenAIHandler struct {
	*Base
}

func NewOpenAIHandler(base *Base) *OpenAIHandler {
	return &OpenAIHandler{Base: base}
}

// respondOpenAIError writes the OpenAI error envelope.
func respondOpenAIError(w http.ResponseWriter, status int, message, errType, code string) {
	RespondWithJSON(w, status, openai.ErrorResponse{Error: openai.ErrorDetail{
		Message: message,
		Type:    errType,
		Code:    code,
	}})
}

// respondDetail writes the bare detail envelope used for failures of queries
// that were already accepted and executed.
func respondDetail(w http.ResponseWriter, status int, detail interface{}) {
	RespondWithJSON(w, status, map[string]interface{}{"detail": detail})
}

// queryAnnotations resolves the annotations to stamp on the query: the ark
// metadata extension merged with the streaming marker when the client asked
// for a stream.
func queryAnnotations(req *openai.ChatCompletionRequest) (map[string]string, error) {
	out := map[string]string{}
	if raw, ok := req.Metadata["ark"]; ok && raw != "" {
		var meta openai.ArkMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, err
		}
		for k, v := range meta.Annotations {
			out[k] = v
		}
	}
	if req.Stream {
		out[annotations.StreamingEnabled] = "true"
	}
	return out, nil
}

// HandleChatCompletions accepts an OpenAI chat completions request, runs it as
// a query against the addressed target, and answers in the OpenAI shape. With
// stream=true the response is SSE, proxied from the streaming service when the
// cluster runs one and emitted as a single chunk otherwise.
func (h *OpenAIHandler) HandleChatCompletions(w ErrorResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := ctrllog.FromContext(ctx).WithName("openai-handler")

	var req openai.ChatCompletionRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		respondOpenAIError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err), "invalid_request_error", "invalid_value")
		return
	}
	if req.Model == "" {
		respondOpenAIError(w, http.StatusBadRequest, "model is required", "invalid_request_error", "invalid_value")
		return
	}

	var messages []openaisdk.ChatCompletionMessageParamUnion
	if len(req.Messages) == 0 {
		respondOpenAIError(w, http.StatusBadRequest, "messages is required", "invalid_request_error", "invalid_value")
		return
	}
	if err := json.Unmarshal(req.Messages, &messages); err != nil {
		respondOpenAIError(w, http.StatusBadRequest, fmt.Sprintf("Invalid messages: %v", err), "invalid_request_error", "invalid_value")
		return
	}

	annots, err := queryAnnotations(&req)
	if err != nil {
		respondOpenAIError(w, http.StatusBadRequest, fmt.Sprintf("Invalid Ark metadata: %s", err), "invalid_request_error", "invalid_ark_metadata")
		return
	}

	target := openai.ParseModelTarget(req.Model)
	q := &v1alpha1.Query{
		ObjectMeta: metav1.ObjectMeta{
			Name:        query.NewName(query.CompletionNamePrefix),
			Annotations: annots,
		},
		Spec: v1alpha1.QuerySpec{
			Targets: []v1alpha1.QueryTarget{target},
		},
	}
	if err := q.Spec.SetInputMessages(messages); err != nil {
		respondOpenAIError(w, http.StatusBadRequest, fmt.Sprintf("Invalid messages: %v", err), "invalid_request_error", "invalid_value")
		return
	}

	log.Info("creating query for chat completion", "query", q.Name, "model", req.Model, "stream", req.Stream)
	if err := h.Registry.CreateQuery(ctx, q); err != nil {
		log.Error(err, "failed to create query", "query", q.Name)
		respondOpenAIError(w, http.StatusInternalServerError, "Failed to create query", "server_error", "internal_error")
		return
	}
	metrics.QueriesCreated.WithLabelValues("openai").Inc()

	if req.Stream {
		h.streamCompletion(w, r, q.Name, req.Model, req.Messages)
		return
	}

	done, err := h.Driver.WaitForCompletion(ctx, q.Name)
	if err != nil {
		h.respondCompletionError(w, log, q.Name, err)
		return
	}
	if len(done.Status.Responses) == 0 {
		respondDetail(w, http.StatusInternalServerError, "No response received")
		return
	}

	RespondWithJSON(w, http.StatusOK, openai.NewCompletion(done, req.Model, req.Messages))
}

func (h *OpenAIHandler) respondCompletionError(w http.ResponseWriter, log logr.Logger, queryName string, err error) {
	var execErr *query.ExecutionError
	var timeoutErr *query.TimeoutError
	switch {
	case errors.As(err, &execErr):
		log.Error(err, "query execution failed", "query", queryName)
		respondDetail(w, http.StatusInternalServerError, execErr)
	case errors.As(err, &timeoutErr):
		respondDetail(w, http.StatusGatewayTimeout, fmt.Sprintf("Query %s timed out after 5 minutes", queryName))
	default:
		log.Error(err, "query polling failed", "query", queryName)
		respondDetail(w, http.StatusInternalServerError, err.Error())
	}
}

// streamCompletion serves the SSE response. With a streaming service
// configured the chunks are proxied live; otherwise the query is polled to
// completion and the result goes out as a single chunk.
func (h *OpenAIHandler) streamCompletion(w http.ResponseWriter, r *http.Request, queryName, model string, messages json.RawMessage) {
	ctx := r.Context()
	log := ctrllog.FromContext(ctx).WithName("openai-handler")

	cfg := h.Registry.GetStreamingConfig(ctx)
	if cfg.Enabled {
		writeSSEHeaders(w)
		url := h.Proxy.StreamURL(cfg.BaseURL, queryName)
		if err := h.Proxy.Proxy(ctx, url, w); err != nil {
			// Headers are out; all we can do is log.
			log.Error(err, "streaming proxy failed", "query", queryName)
		}
		return
	}

	done, err := h.Driver.WaitForCompletion(ctx, queryName)
	if err != nil {
		h.respondCompletionError(w, log, queryName, err)
		return
	}
	if len(done.Status.Responses) == 0 {
		respondDetail(w, http.StatusInternalServerError, "No response received")
		return
	}

	frames, err := openai.SingleChunkSSE(openai.NewCompletion(done, model, messages))
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeSSEHeaders(w)
	for _, frame := range frames {
		if _, err := fmt.Fprint(w, frame); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

func writeSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
}

// HandleListModels lists every addressable target as an OpenAI model entry.
// A failure listing one kind drops that kind from the response rather than
// failing the whole request.
func (h *OpenAIHandler) HandleListModels(w ErrorResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := ctrllog.FromContext(ctx).WithName("openai-handler").WithValues("operation", "list-models")

	entries := []openai.ModelEntry{}

	appendEntries := func(kind string, metas []metav1.ObjectMeta, err error) {
		if err != nil {
			log.Error(err, "failed to list resources", "kind", kind)
			return
		}
		for _, meta := range metas {
			created := meta.CreationTimestamp.Unix()
			if meta.CreationTimestamp.IsZero() {
				created = time.Now().Unix()
			}
			entries = append(entries, openai.ModelEntry{
				ID:      fmt.Sprintf("%s/%s", kind, meta.Name),
				Object:  "model",
				Created: created,
				OwnedBy: "ark",
			})
		}
	}

	agents, err := h.Registry.ListAgents(ctx)
	appendEntries(v1alpha1.TargetTypeAgent, objectMetas(agents, func(a v1alpha1.Agent) metav1.ObjectMeta { return a.ObjectMeta }), err)

	teams, err := h.Registry.ListTeams(ctx)
	appendEntries(v1alpha1.TargetTypeTeam, objectMetas(teams, func(t v1alpha1.Team) metav1.ObjectMeta { return t.ObjectMeta }), err)

	models, err := h.Registry.ListModels(ctx)
	appendEntries(v1alpha1.TargetTypeModel, objectMetas(models, func(m v1alpha1.Model) metav1.ObjectMeta { return m.ObjectMeta }), err)

	tools, err := h.Registry.ListTools(ctx)
	appendEntries(v1alpha1.TargetTypeTool, objectMetas(tools, func(t v1alpha1.Tool) metav1.ObjectMeta { return t.ObjectMeta }), err)

	RespondWithJSON(w, http.StatusOK, openai.ModelList{Object: "list", Data: entries})
}

func objectMetas[T any](items []T, meta func(T) metav1.ObjectMeta) []metav1.ObjectMeta {
	out := make([]metav1.ObjectMeta, 0, len(items))
	for _, item := range items {
		out = append(out, meta(item))
	}
	return out
}
