package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
)

// StreamProxy forwards token chunks from the cluster streaming service to an
// SSE client. The connect phase is bounded; an established stream is read
// until the service closes it, however long the query runs.
type StreamProxy struct {
	client *http.Client
}

func NewStreamProxy() *StreamProxy {
	return &StreamProxy{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			},
		},
	}
}

// StreamURL builds the streaming service URL for a query. from-beginning
// replays chunks produced before we connected; wait-for-query holds the
// connection open while the query spins up.
func (p *StreamProxy) StreamURL(baseURL, queryName string) string {
	return fmt.Sprintf("%s/stream/%s?from-beginning=true&wait-for-query=30s", baseURL, queryName)
}

// Proxy streams SSE frames from streamingURL to w, flushing after every
// frame. A non-2xx upstream answer becomes a single SSE error frame and ends
// the stream.
func (p *StreamProxy) Proxy(ctx context.Context, streamingURL string, w io.Writer) error {
	log := ctrllog.FromContext(ctx).WithName("stream-proxy")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamingURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build streaming request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to streaming service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		frame := errorFrame(resp, log)
		if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
			return err
		}
		flush(w)
		return nil
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", line); err != nil {
			return err
		}
		flush(w)
	}
	return scanner.Err()
}

// errorFrame shapes an upstream failure into the OpenAI error envelope. The
// streaming service emits that envelope itself on errors; anything else gets
// a synthesized server_error.
func errorFrame(resp *http.Response, log logr.Logger) []byte {
	fallback := func() []byte {
		data, _ := json.Marshal(ErrorResponse{Error: ErrorDetail{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			Type:    "server_error",
			Code:    "server_error",
		}})
		return data
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Info("failed to read streaming error response, using default error format", "error", err.Error())
		return fallback()
	}

	var upstream struct {
		Error struct {
			Message *string `json:"message"`
			Type    *string `json:"type"`
			Code    string  `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &upstream); err != nil || upstream.Error.Message == nil || upstream.Error.Type == nil {
		log.Info("failed to parse error response structure, using default error format")
		return fallback()
	}

	code := upstream.Error.Code
	if code == "" {
		code = "server_error"
	}
	data, _ := json.Marshal(ErrorResponse{Error: ErrorDetail{
		Status:  resp.StatusCode,
		Message: *upstream.Error.Message,
		Type:    *upstream.Error.Type,
		Code:    code,
	}})
	return data
}

func flush(w io.Writer) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
