package openai

import (
	"strings"

	"github.com/arklabs/arkgw/api/v1alpha1"
)

// ParseModelTarget maps an OpenAI model identifier onto a query target.
// "agent/researcher" addresses the researcher agent; the same goes for
// "team/", "model/", and "tool/" prefixes. Anything else is treated as a
// plain model name.
func ParseModelTarget(model string) v1alpha1.QueryTarget {
	kind, name, found := strings.Cut(model, "/")
	if found {
		switch kind {
		case v1alpha1.TargetTypeAgent, v1alpha1.TargetTypeTeam, v1alpha1.TargetTypeModel, v1alpha1.TargetTypeTool:
			return v1alpha1.QueryTarget{Type: kind, Name: name}
		}
	}
	return v1alpha1.QueryTarget{Type: v1alpha1.TargetTypeModel, Name: model}
}
