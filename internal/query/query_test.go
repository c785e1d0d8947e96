package query_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/query"
	"github.com/arklabs/arkgw/internal/registry"
)

func newDriver(t *testing.T, objs ...client.Object) (*query.Driver, *registry.Registry) {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, v1alpha1.AddToScheme(scheme))
	cl := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).Build()
	reg := registry.NewRegistry(cl, "ark")

	d := query.NewDriver(reg)
	d.PollInterval = 5 * time.Millisecond
	d.CompletionInterval = 5 * time.Millisecond
	return d, reg
}

func queryInPhase(name, phase string, responses ...v1alpha1.Response) *v1alpha1.Query {
	return &v1alpha1.Query{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "ark"},
		Status: v1alpha1.QueryStatus{
			Phase:     phase,
			Responses: responses,
		},
	}
}

func TestNewName(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 10000; i++ {
		name := query.NewName(query.TaskNamePrefix)
		require.True(t, strings.HasPrefix(name, "a2agw-query-"))
		require.Len(t, strings.TrimPrefix(name, "a2agw-query-"), 8)
		require.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestPostQuery(t *testing.T) {
	d, reg := newDriver(t)

	target := v1alpha1.QueryTarget{Type: v1alpha1.TargetTypeAgent, Name: "researcher"}
	name, err := d.PostQuery(context.Background(), target, "what is the answer", 60*time.Second)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(name, query.TaskNamePrefix))

	created, err := reg.GetQuery(context.Background(), name)
	require.NoError(t, err)
	require.Equal(t, []v1alpha1.QueryTarget{target}, created.Spec.Targets)
	require.Equal(t, 60*time.Second, created.Spec.Timeout.Duration)

	input, err := created.Spec.GetInputString()
	require.NoError(t, err)
	require.Equal(t, "what is the answer", input)
}

func TestWaitForQueryDone(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhaseDone,
		v1alpha1.Response{Content: "42"}))

	content, err := d.WaitForQuery(context.Background(), "q1", time.Second)
	require.NoError(t, err)
	require.Equal(t, "42", content)
}

func TestWaitForQueryDoneWithoutResponses(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhaseDone))

	content, err := d.WaitForQuery(context.Background(), "q1", time.Second)
	require.NoError(t, err)
	require.Equal(t, "Query completed but no response available", content)
}

func TestWaitForQueryDoneEmptyContent(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhaseDone,
		v1alpha1.Response{Content: ""}))

	content, err := d.WaitForQuery(context.Background(), "q1", time.Second)
	require.NoError(t, err)
	require.Equal(t, "No response content", content)
}

func TestWaitForQueryError(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhaseError,
		v1alpha1.Response{Content: "model unavailable"}))

	_, err := d.WaitForQuery(context.Background(), "q1", time.Second)
	require.EqualError(t, err, "Query error: model unavailable")
}

func TestWaitForQueryErrorWithoutDetail(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhaseError))

	_, err := d.WaitForQuery(context.Background(), "q1", time.Second)
	require.EqualError(t, err, "Query error: Query failed")
}

func TestWaitForQueryTimeout(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhaseRunning))

	_, err := d.WaitForQuery(context.Background(), "q1", 30*time.Millisecond)
	var timeoutErr *query.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestWaitForQueryContextCancel(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhaseRunning))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.WaitForQuery(ctx, "q1", time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWaitForCompletionDone(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhaseDone,
		v1alpha1.Response{Content: "hello"}))

	q, err := d.WaitForCompletion(context.Background(), "q1")
	require.NoError(t, err)
	require.Equal(t, "hello", q.Status.Responses[0].Content)
}

func TestWaitForCompletionError(t *testing.T) {
	agentTarget := v1alpha1.QueryTarget{Type: v1alpha1.TargetTypeAgent, Name: "researcher"}
	teamTarget := v1alpha1.QueryTarget{Type: v1alpha1.TargetTypeTeam, Name: "reviewers"}

	tests := []struct {
		name        string
		status      v1alpha1.QueryStatus
		wantMessage string
		wantErrors  int
	}{
		{
			name: "single target error",
			status: v1alpha1.QueryStatus{
				Phase:     v1alpha1.QueryPhaseError,
				Responses: []v1alpha1.Response{{Target: agentTarget, Content: "boom"}},
			},
			wantMessage: "boom",
			wantErrors:  0,
		},
		{
			name: "multiple target errors",
			status: v1alpha1.QueryStatus{
				Phase: v1alpha1.QueryPhaseError,
				Responses: []v1alpha1.Response{
					{Target: agentTarget, Content: "boom"},
					{Target: teamTarget, Content: "also boom"},
				},
			},
			wantMessage: "boom",
			wantErrors:  2,
		},
		{
			name: "status message fallback",
			status: v1alpha1.QueryStatus{
				Phase:   v1alpha1.QueryPhaseError,
				Message: "controller gave up",
			},
			wantMessage: "controller gave up",
			wantErrors:  0,
		},
		{
			name:        "no detail at all",
			status:      v1alpha1.QueryStatus{Phase: v1alpha1.QueryPhaseError},
			wantMessage: "Query execution failed: No error details available",
			wantErrors:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &v1alpha1.Query{
				ObjectMeta: metav1.ObjectMeta{Name: "q1", Namespace: "ark"},
				Status:     tt.status,
			}
			d, _ := newDriver(t, q)

			_, err := d.WaitForCompletion(context.Background(), "q1")
			var execErr *query.ExecutionError
			require.ErrorAs(t, err, &execErr)
			require.Equal(t, tt.wantMessage, execErr.Message)
			require.Len(t, execErr.Errors, tt.wantErrors)
		})
	}
}

func TestWaitForCompletionTimesOut(t *testing.T) {
	d, _ := newDriver(t, queryInPhase("q1", v1alpha1.QueryPhasePending))
	d.CompletionAttempts = 3

	_, err := d.WaitForCompletion(context.Background(), "q1")
	var timeoutErr *query.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}
