// Package annotations defines the annotation keys the gateway reads from and
// writes to cluster resources.
package annotations

const (
	// Skills holds a JSON array of skill definitions projected into an
	// agent's A2A card. Each entry needs at least a name; missing ids are
	// synthesized from the agent name and position.
	Skills = "a2a.arklabs.dev/skills"

	// Skill is the legacy single-skill key. Its presence (not the plural
	// key's) decides whether the default skill fallback applies.
	Skill = "a2a.arklabs.dev/skill"

	// StreamingEnabled marks a query for token-level streaming through the
	// cluster streaming service.
	StreamingEnabled = "streaming.arklabs.dev/enabled"
)
