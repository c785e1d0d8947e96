package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/registry"
)

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, v1alpha1.AddToScheme(scheme))
	return scheme
}

func newFakeClient(t *testing.T, objs ...client.Object) client.Client {
	t.Helper()
	return fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithObjects(objs...).
		Build()
}

func TestListAgentsScopedToNamespace(t *testing.T) {
	inNS := &v1alpha1.Agent{
		ObjectMeta: metav1.ObjectMeta{Name: "researcher", Namespace: "ark"},
	}
	otherNS := &v1alpha1.Agent{
		ObjectMeta: metav1.ObjectMeta{Name: "stranger", Namespace: "elsewhere"},
	}
	reg := registry.NewRegistry(newFakeClient(t, inNS, otherNS), "ark")

	agents, err := reg.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, "researcher", agents[0].Name)
}

func TestGetAgentNotFound(t *testing.T) {
	reg := registry.NewRegistry(newFakeClient(t), "ark")

	_, err := reg.GetAgent(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, registry.IsNotFound(err))
}

func TestCreateAndGetQuery(t *testing.T) {
	reg := registry.NewRegistry(newFakeClient(t), "ark")

	query := &v1alpha1.Query{
		ObjectMeta: metav1.ObjectMeta{Name: "a2agw-query-deadbeef"},
		Spec: v1alpha1.QuerySpec{
			Targets: []v1alpha1.QueryTarget{{Type: v1alpha1.TargetTypeAgent, Name: "researcher"}},
		},
	}
	require.NoError(t, query.Spec.SetInputString("hello"))
	require.NoError(t, reg.CreateQuery(context.Background(), query))

	got, err := reg.GetQuery(context.Background(), "a2agw-query-deadbeef")
	require.NoError(t, err)
	require.Equal(t, "ark", got.Namespace)

	input, err := got.Spec.GetInputString()
	require.NoError(t, err)
	require.Equal(t, "hello", input)
}

func TestCancelQuerySetsFlag(t *testing.T) {
	query := &v1alpha1.Query{
		ObjectMeta: metav1.ObjectMeta{Name: "a2agw-query-cafebabe", Namespace: "ark"},
	}
	reg := registry.NewRegistry(newFakeClient(t, query), "ark")

	require.NoError(t, reg.CancelQuery(context.Background(), "a2agw-query-cafebabe"))

	got, err := reg.GetQuery(context.Background(), "a2agw-query-cafebabe")
	require.NoError(t, err)
	require.True(t, got.Spec.Cancel)
}

func TestCancelQueryMissing(t *testing.T) {
	reg := registry.NewRegistry(newFakeClient(t), "ark")

	err := reg.CancelQuery(context.Background(), "nope")
	require.True(t, registry.IsNotFound(err))
}

func TestDeleteQueryIdempotent(t *testing.T) {
	query := &v1alpha1.Query{
		ObjectMeta: metav1.ObjectMeta{Name: "a2agw-query-0badf00d", Namespace: "ark"},
	}
	reg := registry.NewRegistry(newFakeClient(t, query), "ark")

	require.NoError(t, reg.DeleteQuery(context.Background(), "a2agw-query-0badf00d"))
	require.NoError(t, reg.DeleteQuery(context.Background(), "a2agw-query-0badf00d"))
}

func TestGetStreamingConfig(t *testing.T) {
	tests := []struct {
		name string
		cm   *corev1.ConfigMap
		want registry.StreamingConfig
	}{
		{
			name: "absent configmap means disabled",
			want: registry.StreamingConfig{},
		},
		{
			name: "enabled with base url",
			cm: &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{Name: registry.StreamingConfigMapName, Namespace: "ark"},
				Data: map[string]string{
					"enabled":  "true",
					"base-url": "http://ark-streaming:8080",
				},
			},
			want: registry.StreamingConfig{Enabled: true, BaseURL: "http://ark-streaming:8080"},
		},
		{
			name: "enabled but no base url",
			cm: &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{Name: registry.StreamingConfigMapName, Namespace: "ark"},
				Data:       map[string]string{"enabled": "true"},
			},
			want: registry.StreamingConfig{},
		},
		{
			name: "explicitly disabled",
			cm: &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{Name: registry.StreamingConfigMapName, Namespace: "ark"},
				Data: map[string]string{
					"enabled":  "false",
					"base-url": "http://ark-streaming:8080",
				},
			},
			want: registry.StreamingConfig{},
		},
		{
			name: "garbage enabled flag",
			cm: &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{Name: registry.StreamingConfigMapName, Namespace: "ark"},
				Data: map[string]string{
					"enabled":  "yes please",
					"base-url": "http://ark-streaming:8080",
				},
			},
			want: registry.StreamingConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var objs []client.Object
			if tt.cm != nil {
				objs = append(objs, tt.cm)
			}
			reg := registry.NewRegistry(newFakeClient(t, objs...), "ark")
			require.Equal(t, tt.want, reg.GetStreamingConfig(context.Background()))
		})
	}
}
