package client

// ClientSet contains all the sub-clients for different resource types
type ClientSet struct {
	baseClient *BaseClient

	Health      Health
	Version     Version
	Agent       Agent
	Query       Query
	Completions Completions
}

// New creates a new arkgw client set
func New(baseURL string, options ...ClientOption) *ClientSet {
	baseClient := NewBaseClient(baseURL, options...)

	return &ClientSet{
		baseClient:  baseClient,
		Health:      NewHealthClient(baseClient),
		Version:     NewVersionClient(baseClient),
		Agent:       NewAgentClient(baseClient),
		Query:       NewQueryClient(baseClient),
		Completions: NewCompletionsClient(baseClient),
	}
}
