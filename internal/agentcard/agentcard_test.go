package agentcard_test

import (
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/agentcard"
	"github.com/arklabs/arkgw/internal/annotations"
)

func newAgent(name string, anns map[string]string) *v1alpha1.Agent {
	return &v1alpha1.Agent{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   "ark",
			Annotations: anns,
		},
		Spec: v1alpha1.AgentSpec{Description: "does research"},
	}
}

func TestCardBasics(t *testing.T) {
	p := agentcard.NewProjector("http://localhost:8000", logr.Discard())
	card := p.Card(newAgent("researcher", nil))

	require.Equal(t, "researcher", card.Name)
	require.Equal(t, "does research", card.Description)
	require.Equal(t, "http://localhost:8000/a2a/agent/researcher/", card.URL)
	require.Equal(t, "1.0.0", card.Version)
	require.Equal(t, []string{"text"}, card.DefaultInputModes)
	require.Equal(t, []string{"text"}, card.DefaultOutputModes)
	require.NotNil(t, card.Capabilities.Streaming)
	require.True(t, *card.Capabilities.Streaming)
	require.NotNil(t, card.Capabilities.PushNotifications)
	require.False(t, *card.Capabilities.PushNotifications)
}

func TestCardDescriptionFallback(t *testing.T) {
	p := agentcard.NewProjector("http://localhost:8000", logr.Discard())
	agent := newAgent("bare", nil)
	agent.Spec.Description = ""

	require.Equal(t, "No description", p.Card(agent).Description)
}

func TestCardDefaultSkill(t *testing.T) {
	p := agentcard.NewProjector("http://localhost:8000", logr.Discard())
	card := p.Card(newAgent("researcher", nil))

	require.Len(t, card.Skills, 1)
	skill := card.Skills[0]
	require.Equal(t, "researcher-default-skill", skill.ID)
	require.Equal(t, "General", skill.Name)
	require.Equal(t, "General agent capabilities", *skill.Description)
	require.Equal(t, []string{"general"}, skill.Tags)
}

func TestCardSkillsAnnotation(t *testing.T) {
	p := agentcard.NewProjector("http://localhost:8000", logr.Discard())
	agent := newAgent("researcher", map[string]string{
		annotations.Skills: `[
			{"id": "web-search", "name": "Web Search", "description": "Searches the web", "tags": ["search"]},
			{"name": "Summarize"},
			"not an object",
			{"id": "", "name": "Cite Sources"}
		]`,
		annotations.Skill: `{"name": "legacy"}`,
	})

	card := p.Card(agent)
	require.Len(t, card.Skills, 3)

	require.Equal(t, "web-search", card.Skills[0].ID)
	require.Equal(t, "Web Search", card.Skills[0].Name)
	require.Equal(t, "Searches the web", *card.Skills[0].Description)

	// Missing ids are synthesized from the agent name and position.
	require.Equal(t, "researcher-skill-1", card.Skills[1].ID)
	require.Equal(t, "researcher-skill-3", card.Skills[2].ID)
}

func TestCardDefaultSkillKeysOffLegacyAnnotation(t *testing.T) {
	p := agentcard.NewProjector("http://localhost:8000", logr.Discard())

	// Plural skills annotation alone does not suppress the default skill.
	agent := newAgent("researcher", map[string]string{
		annotations.Skills: `[{"name": "Summarize"}]`,
	})
	card := p.Card(agent)
	require.Len(t, card.Skills, 2)
	require.Equal(t, "researcher-default-skill", card.Skills[1].ID)

	// The legacy single-skill annotation does.
	agent = newAgent("researcher", map[string]string{
		annotations.Skills: `[{"name": "Summarize"}]`,
		annotations.Skill:  `{"name": "Summarize"}`,
	})
	card = p.Card(agent)
	require.Len(t, card.Skills, 1)
	require.Equal(t, "researcher-skill-0", card.Skills[0].ID)
}

func TestCardMalformedSkillsAnnotation(t *testing.T) {
	p := agentcard.NewProjector("http://localhost:8000", logr.Discard())
	agent := newAgent("researcher", map[string]string{
		annotations.Skills: `{not json`,
	})

	card := p.Card(agent)
	require.Len(t, card.Skills, 1)
	require.Equal(t, "researcher-default-skill", card.Skills[0].ID)
}

func TestEqualIsDeterministic(t *testing.T) {
	p := agentcard.NewProjector("http://localhost:8000", logr.Discard())
	agent := newAgent("researcher", map[string]string{
		annotations.Skills: `[{"name": "Summarize", "tags": ["text"]}]`,
	})

	a := p.Card(agent)
	b := p.Card(agent)
	require.True(t, agentcard.Equal(a, b))

	agent.Spec.Description = "changed"
	require.False(t, agentcard.Equal(a, p.Card(agent)))
}

func TestExternalURLShape(t *testing.T) {
	p := agentcard.NewProjector("https://gw.example.com:443/api", logr.Discard())
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("agent-%d", i)
		require.Equal(t,
			fmt.Sprintf("https://gw.example.com:443/api/a2a/agent/%s/", name),
			p.ExternalURL(name))
	}
}
