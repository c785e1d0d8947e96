package a2a

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/arklabs/arkgw/internal/agentcard"
	"github.com/arklabs/arkgw/internal/metrics"
	"github.com/arklabs/arkgw/internal/registry"
)

// HandlerFactory builds the HTTP handler serving one agent's A2A endpoint.
type HandlerFactory func(agentName string, card server.AgentCard) (http.Handler, error)

// NewHandlerFactory returns the production factory: a per-agent A2A server
// with an in-memory task manager backed by the shared executor.
func NewHandlerFactory(executor *Executor) HandlerFactory {
	return func(agentName string, card server.AgentCard) (http.Handler, error) {
		taskManager, err := taskmanager.NewMemoryTaskManager(NewMessageProcessor(agentName, executor))
		if err != nil {
			return nil, fmt.Errorf("failed to create task manager: %w", err)
		}
		srv, err := server.NewA2AServer(card, taskManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create A2A server: %w", err)
		}
		return srv.Handler(), nil
	}
}

// Reconciler converges the route table on the cluster's agents. Each sync
// lists agents, projects their cards, and swaps in a fresh table only when
// something changed. Routes whose cards are unchanged are carried over, so
// their task managers keep serving in-flight tasks.
type Reconciler struct {
	reg       *registry.Registry
	projector *agentcard.Projector
	table     *RouteTable
	factory   HandlerFactory
	interval  time.Duration
}

func NewReconciler(
	reg *registry.Registry,
	projector *agentcard.Projector,
	table *RouteTable,
	factory HandlerFactory,
	interval time.Duration,
) *Reconciler {
	return &Reconciler{
		reg:       reg,
		projector: projector,
		table:     table,
		factory:   factory,
		interval:  interval,
	}
}

// Start syncs immediately, then keeps syncing on the configured interval
// until the context ends. Sync errors are logged and the loop continues.
func (r *Reconciler) Start(ctx context.Context) error {
	log := ctrllog.FromContext(ctx).WithName("a2a-reconciler")
	log.Info("starting periodic registry sync", "interval", r.interval)

	if err := r.Sync(ctx); err != nil {
		log.Error(err, "initial registry sync failed")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopped periodic registry sync")
			return nil
		case <-ticker.C:
			if err := r.Sync(ctx); err != nil {
				log.Error(err, "registry sync failed")
			}
		}
	}
}

// Sync performs one reconcile pass.
func (r *Reconciler) Sync(ctx context.Context) error {
	log := ctrllog.FromContext(ctx).WithName("a2a-reconciler")

	agents, err := r.reg.ListAgents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	current := r.table.Routes()
	next := make(map[string]Route, len(agents))
	changed := false

	for i := range agents {
		agent := &agents[i]
		card := r.projector.Card(agent)

		if existing, ok := current[agent.Name]; ok && agentcard.Equal(existing.Card, card) {
			next[agent.Name] = existing
			continue
		}

		handler, err := r.factory(agent.Name, card)
		if err != nil {
			log.Error(err, "failed to build agent handler", "agent", agent.Name)
			continue
		}
		next[agent.Name] = Route{Card: card, Handler: handler}
		log.Info("added/updated agent", "agent", agent.Name)
		changed = true
	}

	for name := range current {
		if _, ok := next[name]; !ok {
			log.Info("removed agent", "agent", name)
			changed = true
		}
	}

	metrics.ActiveAgents.Set(float64(len(next)))

	if !changed {
		log.V(1).Info("no agent changes detected, routes unchanged")
		return nil
	}

	r.table.Swap(next)
	names := make([]string, 0, len(next))
	for name := range next {
		names = append(names, name)
	}
	log.Info("updated routes", "activeAgents", names)
	return nil
}
