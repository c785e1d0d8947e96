package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arklabs/arkgw/pkg/client/api"
)

func newStubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK")) //nolint:errcheck
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"version": "1.2.3", "gitCommit": "abc123"}) //nolint:errcheck
	})

	mux.HandleFunc("/a2a/agents", func(w http.ResponseWriter, r *http.Request) {
		agents := []api.AgentSummary{
			{Name: "researcher", Capabilities: []string{"search"}, Host: "localhost"},
		}
		if r.URL.Query().Get("capability") == "nothing" {
			agents = nil
		}
		json.NewEncoder(w).Encode(agents) //nolint:errcheck
	})

	mux.HandleFunc("/openai/v1/models", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ModelList{ //nolint:errcheck
			Object: "list",
			Data:   []api.ModelEntry{{ID: "agent/researcher", Object: "model", OwnedBy: "ark"}},
		})
	})

	mux.HandleFunc("/openai/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req api.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Write([]byte("data: {\"id\":\"openai-query-abc\",\"object\":\"chat.completion.chunk\"}\n\n")) //nolint:errcheck
			w.Write([]byte("data: [DONE]\n\n"))                                                            //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(api.ChatCompletion{ID: "openai-query-abc", Object: "chat.completion"}) //nolint:errcheck
	})

	mux.HandleFunc("/api/queries/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.APIError{Error: "query not found: queries.ark.arklabs.dev \"missing\" not found"}) //nolint:errcheck
	})

	mux.HandleFunc("/api/queries/q1/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(api.CancelQueryResponse{Name: "q1", Status: "canceling"}) //nolint:errcheck
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthAndVersion(t *testing.T) {
	srv := newStubServer(t)
	cs := New(srv.URL)

	require.NoError(t, cs.Health.Get(context.Background()))

	v, err := cs.Version.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.Version)
	assert.Equal(t, "abc123", v.GitCommit)
}

func TestListAgents(t *testing.T) {
	srv := newStubServer(t)
	cs := New(srv.URL)

	agents, err := cs.Agent.ListAgents(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "researcher", agents[0].Name)

	agents, err = cs.Agent.ListAgents(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestListModels(t *testing.T) {
	srv := newStubServer(t)
	cs := New(srv.URL)

	models, err := cs.Completions.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models.Data, 1)
	assert.Equal(t, "agent/researcher", models.Data[0].ID)
}

func TestCreateChatCompletion(t *testing.T) {
	srv := newStubServer(t)
	cs := New(srv.URL)

	completion, err := cs.Completions.CreateChatCompletion(context.Background(), &api.ChatCompletionRequest{
		Model:    "agent/researcher",
		Messages: json.RawMessage(`[{"role":"user","content":"hi"}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "openai-query-abc", completion.ID)
}

func TestStreamChatCompletion(t *testing.T) {
	srv := newStubServer(t)
	cs := New(srv.URL)

	events, err := cs.Completions.StreamChatCompletion(context.Background(), &api.ChatCompletionRequest{
		Model:    "agent/researcher",
		Messages: json.RawMessage(`[{"role":"user","content":"hi"}]`),
	})
	require.NoError(t, err)

	var frames []string
	for ev := range events {
		frames = append(frames, string(ev.Data))
	}
	require.Len(t, frames, 2)
	assert.Contains(t, frames[0], "chat.completion.chunk")
	assert.Equal(t, "[DONE]", frames[1])
}

func TestCancelQuery(t *testing.T) {
	srv := newStubServer(t)
	cs := New(srv.URL)

	ack, err := cs.Query.CancelQuery(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, "canceling", ack.Status)
}

func TestErrorEnvelope(t *testing.T) {
	srv := newStubServer(t)
	cs := New(srv.URL)

	_, err := cs.Query.GetQuery(context.Background(), "missing")
	require.Error(t, err)

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusNotFound, clientErr.StatusCode)
	assert.Contains(t, clientErr.Message, "query not found")
}
