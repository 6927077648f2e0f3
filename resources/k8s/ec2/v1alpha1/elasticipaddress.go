package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ElasticIPAddress represents an ACK EC2 ElasticIPAddress resource.
// +kubebuilder:object:root=true
type ElasticIPAddress struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ElasticIPAddressSpec   `json:"spec,omitempty"`
	Status ElasticIPAddressStatus `json:"status,omitempty"`
}

// ElasticIPAddressSpec defines the desired state of an ElasticIPAddress.
type ElasticIPAddressSpec struct {
	// Address is a specific address to recover from the address pool.
	Address *string `json:"address,omitempty"`

	// PublicIPv4Pool is the ID of an address pool to allocate from.
	PublicIPv4Pool *string `json:"publicIPv4Pool,omitempty"`

	// Tags are key-value pairs to categorize resources.
	Tags []*Tag `json:"tags,omitempty"`
}

// ElasticIPAddressStatus defines the observed state of an ElasticIPAddress.
type ElasticIPAddressStatus struct {
	// ACKResourceMetadata contains ACK-specific metadata.
	ACKResourceMetadata *ACKResourceMetadata `json:"ackResourceMetadata,omitempty"`

	// Conditions represent the latest available observations.
	Conditions []*Condition `json:"conditions,omitempty"`

	// AllocationID is the allocation ID of the address.
	AllocationID *string `json:"allocationID,omitempty"`

	// PublicIP is the allocated public IPv4 address.
	PublicIP *string `json:"publicIP,omitempty"`
}
