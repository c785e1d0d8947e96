package a2a

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"trpc.group/trpc-go/trpc-a2a-go/server"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/agentcard"
	"github.com/arklabs/arkgw/internal/registry"
)

type countingFactory struct {
	builds int
}

func (f *countingFactory) build(agentName string, card server.AgentCard) (http.Handler, error) {
	f.builds++
	return namedHandler(agentName), nil
}

func newTestReconciler(t *testing.T, agents ...client.Object) (*Reconciler, *RouteTable, client.Client, *countingFactory) {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, v1alpha1.AddToScheme(scheme))
	cl := fake.NewClientBuilder().WithScheme(scheme).WithObjects(agents...).Build()

	table := NewRouteTable("/a2a/agent")
	factory := &countingFactory{}
	rec := NewReconciler(
		registry.NewRegistry(cl, "ark"),
		agentcard.NewProjector("http://localhost:8000", logr.Discard()),
		table,
		factory.build,
		10*time.Millisecond,
	)
	return rec, table, cl, factory
}

func agentObj(name, description string) *v1alpha1.Agent {
	return &v1alpha1.Agent{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "ark"},
		Spec:       v1alpha1.AgentSpec{Description: description},
	}
}

func TestSyncAddsAgents(t *testing.T) {
	rec, table, _, factory := newTestReconciler(t,
		agentObj("researcher", "researches"),
		agentObj("writer", "writes"))

	require.NoError(t, rec.Sync(context.Background()))

	require.Len(t, table.Routes(), 2)
	require.Equal(t, 2, factory.builds)

	route, ok := table.Get("researcher")
	require.True(t, ok)
	require.Equal(t, "http://localhost:8000/a2a/agent/researcher/", route.Card.URL)
}

func TestSyncIsIdempotent(t *testing.T) {
	rec, table, _, factory := newTestReconciler(t, agentObj("researcher", "researches"))

	require.NoError(t, rec.Sync(context.Background()))
	first, _ := table.Get("researcher")

	// No changes: same snapshot, no rebuilds.
	require.NoError(t, rec.Sync(context.Background()))
	second, _ := table.Get("researcher")
	require.Equal(t, 1, factory.builds)
	require.Equal(t, first.Card, second.Card)
}

func TestSyncRemovesDeletedAgents(t *testing.T) {
	agent := agentObj("researcher", "researches")
	rec, table, cl, _ := newTestReconciler(t, agent, agentObj("writer", "writes"))

	require.NoError(t, rec.Sync(context.Background()))
	require.Len(t, table.Routes(), 2)

	require.NoError(t, cl.Delete(context.Background(), agent))
	require.NoError(t, rec.Sync(context.Background()))

	require.Len(t, table.Routes(), 1)
	_, ok := table.Get("researcher")
	require.False(t, ok)
}

func TestSyncRebuildsOnCardChange(t *testing.T) {
	agent := agentObj("researcher", "researches")
	rec, table, cl, factory := newTestReconciler(t, agent)

	require.NoError(t, rec.Sync(context.Background()))
	require.Equal(t, 1, factory.builds)

	got := &v1alpha1.Agent{}
	require.NoError(t, cl.Get(context.Background(), client.ObjectKeyFromObject(agent), got))
	got.Spec.Description = "now with citations"
	require.NoError(t, cl.Update(context.Background(), got))

	require.NoError(t, rec.Sync(context.Background()))
	require.Equal(t, 2, factory.builds)

	route, _ := table.Get("researcher")
	require.Equal(t, "now with citations", route.Card.Description)
}

func TestSyncKeepsUnchangedRoutesAcrossChanges(t *testing.T) {
	rec, table, cl, factory := newTestReconciler(t, agentObj("researcher", "researches"))

	require.NoError(t, rec.Sync(context.Background()))
	before, _ := table.Get("researcher")

	require.NoError(t, cl.Create(context.Background(), agentObj("writer", "writes")))
	require.NoError(t, rec.Sync(context.Background()))

	// Only the new agent got a handler build; the untouched route is the
	// same value carried over.
	require.Equal(t, 2, factory.builds)
	after, _ := table.Get("researcher")
	require.Equal(t, before.Card, after.Card)
}

func TestStartConvergesAndStops(t *testing.T) {
	rec, table, cl, _ := newTestReconciler(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, rec.Start(ctx))
	}()

	require.NoError(t, cl.Create(context.Background(), agentObj("late-arrival", "late")))
	require.Eventually(t, func() bool {
		_, ok := table.Get("late-arrival")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
