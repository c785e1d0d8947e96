package v1alpha1

// QueryTarget identifies a single resource a query is routed to.
type QueryTarget struct {
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:Enum=agent;team;model;tool
	Type string `json:"type"`
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`
}

// MemoryRef points a query at a memory service for conversation history.
type MemoryRef struct {
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`
	// +kubebuilder:validation:Optional
	Namespace string `json:"namespace,omitempty"`
}

// ModelRef references the model backing an agent or team.
type ModelRef struct {
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`
	// +kubebuilder:validation:Optional
	Namespace string `json:"namespace,omitempty"`
}

const (
	// Target type values accepted by QueryTarget.Type.
	TargetTypeAgent = "agent"
	TargetTypeTeam  = "team"
	TargetTypeModel = "model"
	TargetTypeTool  = "tool"
)
