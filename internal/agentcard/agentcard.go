// Package agentcard projects cluster agent records into A2A agent cards.
package agentcard

import (
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/utils/ptr"
	"trpc.group/trpc-go/trpc-a2a-go/server"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/annotations"
)

// CardVersion is advertised in every projected card.
const CardVersion = "1.0.0"

// Projector turns Agent records into agent cards advertising the gateway's
// external URL. Projection is deterministic: equal inputs produce equal cards.
type Projector struct {
	baseURL string
	log     logr.Logger
}

// NewProjector builds a projector. baseURL is the externally reachable
// gateway base, e.g. "http://gateway.example.com:8000".
func NewProjector(baseURL string, log logr.Logger) *Projector {
	return &Projector{baseURL: baseURL, log: log.WithName("agentcard")}
}

// ExternalURL returns the advertised A2A endpoint for an agent. The trailing
// slash is part of the contract: well-known card paths resolve relative to it.
func (p *Projector) ExternalURL(agentName string) string {
	return fmt.Sprintf("%s/a2a/agent/%s/", p.baseURL, agentName)
}

// skillAnnotation is the JSON shape of one entry under the skills annotation.
type skillAnnotation struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Card projects an Agent into its A2A card.
func (p *Projector) Card(agent *v1alpha1.Agent) server.AgentCard {
	description := agent.Spec.Description
	if description == "" {
		description = "No description"
	}

	skills := p.parseSkills(agent)

	// The default skill keys off the legacy single-skill annotation, not off
	// whether any skills parsed. Agents carrying only the plural annotation
	// get the default skill appended alongside their declared ones.
	if agent.Annotations[annotations.Skill] == "" {
		skills = append(skills, server.AgentSkill{
			ID:          fmt.Sprintf("%s-default-skill", agent.Name),
			Name:        "General",
			Description: ptr.To("General agent capabilities"),
			Tags:        []string{"general"},
		})
	}

	return server.AgentCard{
		Name:        agent.Name,
		Description: description,
		URL:         p.ExternalURL(agent.Name),
		Version:     CardVersion,
		Capabilities: server.AgentCapabilities{
			Streaming:              ptr.To(true),
			PushNotifications:      ptr.To(false),
			StateTransitionHistory: ptr.To(false),
		},
		Skills:             skills,
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
	}
}

// parseSkills decodes the skills annotation. Entries that are not objects or
// fail to decode are dropped with a warning; a missing id is synthesized from
// the agent name and the entry's position.
func (p *Projector) parseSkills(agent *v1alpha1.Agent) []server.AgentSkill {
	raw := agent.Annotations[annotations.Skills]
	if raw == "" {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		p.log.Info("unable to parse skills annotation", "agent", agent.Name, "error", err.Error())
		return nil
	}

	var skills []server.AgentSkill
	for idx, entry := range entries {
		var skill skillAnnotation
		if err := json.Unmarshal(entry, &skill); err != nil {
			p.log.Info("unable to recover skill from annotation", "agent", agent.Name, "index", idx, "error", err.Error())
			continue
		}
		if skill.ID == "" {
			skill.ID = fmt.Sprintf("%s-skill-%d", agent.Name, idx)
		}
		out := server.AgentSkill{
			ID:   skill.ID,
			Name: skill.Name,
			Tags: skill.Tags,
		}
		if skill.Description != "" {
			out.Description = ptr.To(skill.Description)
		}
		skills = append(skills, out)
	}
	return skills
}

// Equal reports whether two cards are equivalent for reconcile purposes.
// Cards round-trip through JSON so pointer fields compare by value.
func Equal(a, b server.AgentCard) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}
