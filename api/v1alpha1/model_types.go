package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ModelSpec defines the desired state of a Model.
type ModelSpec struct {
	// +kubebuilder:validation:Optional
	// +kubebuilder:validation:Enum=openai;azure;bedrock;generic
	Provider string `json:"provider,omitempty"`
	// +kubebuilder:validation:Optional
	// Model is the provider-side model identifier, e.g. "gpt-4o".
	Model string `json:"model,omitempty"`
	// +kubebuilder:validation:Optional
	BaseURL string `json:"baseUrl,omitempty"`
}

// ModelStatus defines the observed state of a Model.
type ModelStatus struct {
	// +kubebuilder:validation:Optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// Model is the Schema for the models API.
type Model struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ModelSpec   `json:"spec,omitempty"`
	Status ModelStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ModelList contains a list of Model.
type ModelList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Model `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Model{}, &ModelList{})
}
