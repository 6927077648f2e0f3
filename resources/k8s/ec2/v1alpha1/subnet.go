package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Subnet is the ACK EC2 Subnet resource. Planned subnets set the zone by
// name, an IPv4 CIDR block, and the public-IP launch flag; the owning VPC
// is addressed by reference, never by ID, since no IDs exist at plan time.
// +kubebuilder:object:root=true
type Subnet struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   SubnetSpec   `json:"spec,omitempty"`
	Status SubnetStatus `json:"status,omitempty"`
}

// SubnetSpec is the desired state of a Subnet.
type SubnetSpec struct {
	// AvailabilityZone places the subnet, by zone name.
	AvailabilityZone *string `json:"availabilityZone,omitempty"`

	// CIDRBlock is the subnet's IPv4 CIDR block.
	CIDRBlock *string `json:"cidrBlock,omitempty"`

	// VPCID identifies an existing VPC directly.
	VPCID *string `json:"vpcID,omitempty"`

	// VPCRef resolves the owning VPC by manifest name.
	VPCRef *AWSResourceReferenceWrapper `json:"vpcRef,omitempty"`

	// MapPublicIPOnLaunch gives instances launched here a public IP.
	MapPublicIPOnLaunch *bool `json:"mapPublicIPOnLaunch,omitempty"`

	// Tags on the subnet.
	Tags []*Tag `json:"tags,omitempty"`
}

// SubnetStatus is the state the controller observed.
type SubnetStatus struct {
	// ACKResourceMetadata is controller bookkeeping, including the ARN.
	ACKResourceMetadata *ACKResourceMetadata `json:"ackResourceMetadata,omitempty"`

	// Conditions hold the latest reconciliation observations.
	Conditions []*Condition `json:"conditions,omitempty"`

	// SubnetID is the created subnet's ID.
	SubnetID *string `json:"subnetID,omitempty"`

	// AvailableIPAddressCount is how many addresses remain unassigned.
	AvailableIPAddressCount *int64 `json:"availableIPAddressCount,omitempty"`

	// State is the subnet lifecycle state.
	State *string `json:"state,omitempty"`
}
