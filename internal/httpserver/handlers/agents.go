package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/arklabs/arkgw/pkg/client/api"
)

// AgentsHandler serves the A2A discovery listing.
type AgentsHandler struct {
	*Base
}

func NewAgentsHandler(base *Base) *AgentsHandler {
	return &AgentsHandler{Base: base}
}

// HandleListAgents lists all routed agents. A capability query parameter
// narrows the listing to agents with a matching skill name.
func (h *AgentsHandler) HandleListAgents(w ErrorResponseWriter, r *http.Request) {
	log := ctrllog.FromContext(r.Context()).WithName("agents-handler").WithValues("operation", "list")

	capability := r.URL.Query().Get("capability")

	cards := h.RouteTable.Cards()
	summaries := make([]api.AgentSummary, 0, len(cards))
	for _, card := range cards {
		capabilities := make([]string, 0, len(card.Skills))
		matched := capability == ""
		for _, skill := range card.Skills {
			capabilities = append(capabilities, skill.Name)
			if capability != "" && strings.Contains(skill.Name, capability) {
				matched = true
			}
		}
		if !matched {
			continue
		}

		summaries = append(summaries, api.AgentSummary{
			Name:         card.Name,
			Description:  card.Description,
			Capabilities: capabilities,
			Host:         "localhost",
			AgentCard:    fmt.Sprintf("/a2a/agent/%s/.well-known/agent.json", card.Name),
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			Metadata: map[string]string{
				"type":    "analytical",
				"version": card.Version,
			},
		})
	}

	log.V(1).Info("listed agents", "count", len(summaries))
	RespondWithJSON(w, http.StatusOK, summaries)
}
