package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// NATGateway represents an ACK EC2 NATGateway resource.
// +kubebuilder:object:root=true
type NATGateway struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   NATGatewaySpec   `json:"spec,omitempty"`
	Status NATGatewayStatus `json:"status,omitempty"`
}

// NATGatewaySpec defines the desired state of a NATGateway. A public
// gateway needs an elastic IP allocation (AllocationID or AllocationRef)
// and the public subnet it lives in (SubnetID or SubnetRef).
type NATGatewaySpec struct {
	// AllocationID is the allocation ID of the elastic IP backing the gateway.
	AllocationID *string `json:"allocationID,omitempty"`

	// AllocationRef is a reference to an ElasticIPAddress resource.
	AllocationRef *AWSResourceReferenceWrapper `json:"allocationRef,omitempty"`

	// ConnectivityType is "public" or "private".
	ConnectivityType *string `json:"connectivityType,omitempty"`

	// SubnetID is the ID of the subnet hosting the gateway.
	SubnetID *string `json:"subnetID,omitempty"`

	// SubnetRef is a reference to a Subnet resource.
	SubnetRef *AWSResourceReferenceWrapper `json:"subnetRef,omitempty"`

	// Tags are key-value pairs to categorize resources.
	Tags []*Tag `json:"tags,omitempty"`
}

// NATGatewayStatus defines the observed state of a NATGateway.
type NATGatewayStatus struct {
	// ACKResourceMetadata contains ACK-specific metadata.
	ACKResourceMetadata *ACKResourceMetadata `json:"ackResourceMetadata,omitempty"`

	// Conditions represent the latest available observations.
	Conditions []*Condition `json:"conditions,omitempty"`

	// NATGatewayID is the ID of the NAT gateway.
	NATGatewayID *string `json:"natGatewayID,omitempty"`

	// State is the current state of the gateway.
	State *string `json:"state,omitempty"`

	// VPCID is the ID of the VPC the gateway's subnet belongs to.
	VPCID *string `json:"vpcID,omitempty"`
}
