package utils

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// GetResourceNamespace returns the namespace the gateway operates in: the
// NAMESPACE environment variable, then the mounted service account namespace,
// then "default".
func GetResourceNamespace() string {
	if val := os.Getenv("NAMESPACE"); val != "" {
		return val
	}
	if data, err := os.ReadFile(serviceAccountNamespaceFile); err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			return ns
		}
	}
	return "default"
}

// ResourceRefString formats namespace and name as a "namespace/name" reference.
func ResourceRefString(namespace, name string) string {
	return fmt.Sprintf("%s/%s", namespace, name)
}

// GetObjectRef formats a Kubernetes object reference as "namespace/name".
func GetObjectRef(obj client.Object) string {
	return ResourceRefString(obj.GetNamespace(), obj.GetName())
}

