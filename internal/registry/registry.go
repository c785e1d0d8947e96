// Package registry is the gateway's read/write surface over the cluster's
// agent platform resources. Everything is scoped to a single namespace.
package registry

import (
	"context"
	"fmt"
	"strconv"

	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/utils"
)

// StreamingConfigMapName is the well-known ConfigMap consulted for
// token-streaming support.
const StreamingConfigMapName = "arkgw-streaming-config"

// StreamingConfig describes whether the cluster runs a streaming service the
// gateway can proxy chunks from.
type StreamingConfig struct {
	Enabled bool
	BaseURL string
}

// Registry wraps a controller-runtime client with the operations the gateway
// needs. It is safe for concurrent use.
type Registry struct {
	client    client.Client
	namespace string
}

func NewRegistry(cl client.Client, namespace string) *Registry {
	return &Registry{client: cl, namespace: namespace}
}

// Namespace returns the namespace all operations are scoped to.
func (r *Registry) Namespace() string {
	return r.namespace
}

// IsNotFound reports whether err is a Kubernetes not-found error.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

func (r *Registry) ListAgents(ctx context.Context) ([]v1alpha1.Agent, error) {
	var list v1alpha1.AgentList
	if err := r.client.List(ctx, &list, client.InNamespace(r.namespace)); err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return list.Items, nil
}

func (r *Registry) GetAgent(ctx context.Context, name string) (*v1alpha1.Agent, error) {
	var agent v1alpha1.Agent
	if err := r.client.Get(ctx, types.NamespacedName{Namespace: r.namespace, Name: name}, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *Registry) ListTeams(ctx context.Context) ([]v1alpha1.Team, error) {
	var list v1alpha1.TeamList
	if err := r.client.List(ctx, &list, client.InNamespace(r.namespace)); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return list.Items, nil
}

func (r *Registry) ListModels(ctx context.Context) ([]v1alpha1.Model, error) {
	var list v1alpha1.ModelList
	if err := r.client.List(ctx, &list, client.InNamespace(r.namespace)); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return list.Items, nil
}

func (r *Registry) ListTools(ctx context.Context) ([]v1alpha1.Tool, error) {
	var list v1alpha1.ToolList
	if err := r.client.List(ctx, &list, client.InNamespace(r.namespace)); err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return list.Items, nil
}

func (r *Registry) ListMemories(ctx context.Context) ([]v1alpha1.Memory, error) {
	var list v1alpha1.MemoryList
	if err := r.client.List(ctx, &list, client.InNamespace(r.namespace)); err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	return list.Items, nil
}

func (r *Registry) CreateQuery(ctx context.Context, query *v1alpha1.Query) error {
	query.Namespace = r.namespace
	if err := r.client.Create(ctx, query); err != nil {
		return fmt.Errorf("failed to create query %s: %w", utils.GetObjectRef(query), err)
	}
	return nil
}

func (r *Registry) GetQuery(ctx context.Context, name string) (*v1alpha1.Query, error) {
	var query v1alpha1.Query
	if err := r.client.Get(ctx, types.NamespacedName{Namespace: r.namespace, Name: name}, &query); err != nil {
		return nil, err
	}
	return &query, nil
}

// CancelQuery flags a query for cancellation by patching spec.cancel=true.
// The query controller observes the flag and transitions the query to the
// canceled phase.
func (r *Registry) CancelQuery(ctx context.Context, name string) error {
	query, err := r.GetQuery(ctx, name)
	if err != nil {
		return err
	}
	patch := client.MergeFrom(query.DeepCopy())
	query.Spec.Cancel = true
	if err := r.client.Patch(ctx, query, patch); err != nil {
		return fmt.Errorf("failed to cancel query %s: %w", name, err)
	}
	return nil
}

func (r *Registry) DeleteQuery(ctx context.Context, name string) error {
	query := &v1alpha1.Query{}
	query.Namespace = r.namespace
	query.Name = name
	if err := r.client.Delete(ctx, query); err != nil && !errors.IsNotFound(err) {
		return fmt.Errorf("failed to delete query %s: %w", name, err)
	}
	return nil
}

// GetStreamingConfig resolves the cluster streaming configuration. A missing
// ConfigMap or unparseable enabled flag means streaming is off; that is not
// an error.
func (r *Registry) GetStreamingConfig(ctx context.Context) StreamingConfig {
	log := ctrllog.FromContext(ctx).WithName("streaming-config")
	ref := client.ObjectKey{Namespace: r.namespace, Name: StreamingConfigMapName}

	enabled, err := utils.GetConfigMapValue(ctx, r.client, ref, "enabled")
	if err != nil {
		log.V(1).Info("streaming config not available", "reason", err.Error())
		return StreamingConfig{}
	}
	on, err := strconv.ParseBool(enabled)
	if err != nil || !on {
		return StreamingConfig{}
	}

	baseURL, err := utils.GetConfigMapValue(ctx, r.client, ref, "base-url")
	if err != nil || baseURL == "" {
		log.Info("streaming enabled but base-url missing, treating as disabled")
		return StreamingConfig{}
	}
	return StreamingConfig{Enabled: true, BaseURL: baseURL}
}
