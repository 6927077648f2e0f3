package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// VPC represents an ACK EC2 VPC resource.
// +kubebuilder:object:root=true
type VPC struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   VPCSpec   `json:"spec,omitempty"`
	Status VPCStatus `json:"status,omitempty"`
}

// VPCSpec defines the desired state of a VPC.
type VPCSpec struct {
	// CIDRBlocks are the IPv4 CIDR blocks for the VPC.
	CIDRBlocks []*string `json:"cidrBlocks,omitempty"`

	// EnableDNSHostnames indicates whether instances have DNS hostnames.
	EnableDNSHostnames *bool `json:"enableDNSHostnames,omitempty"`

	// EnableDNSSupport indicates whether DNS resolution is supported.
	EnableDNSSupport *bool `json:"enableDNSSupport,omitempty"`

	// InstanceTenancy is the tenancy option for instances (default, dedicated, host).
	InstanceTenancy *string `json:"instanceTenancy,omitempty"`

	// Tags are key-value pairs to categorize resources.
	Tags []*Tag `json:"tags,omitempty"`
}

// VPCStatus defines the observed state of a VPC.
type VPCStatus struct {
	// ACKResourceMetadata contains ACK-specific metadata.
	ACKResourceMetadata *ACKResourceMetadata `json:"ackResourceMetadata,omitempty"`

	// Conditions represent the latest available observations.
	Conditions []*Condition `json:"conditions,omitempty"`

	// VPCID is the ID of the VPC.
	VPCID *string `json:"vpcID,omitempty"`

	// CIDRBlockAssociationSet describes the CIDR block associations.
	CIDRBlockAssociationSet []*VPCCIDRBlockAssociation `json:"cidrBlockAssociationSet,omitempty"`

	// DHCPOptionsID is the ID of the DHCP options set.
	DHCPOptionsID *string `json:"dhcpOptionsID,omitempty"`

	// IsDefault indicates whether this is the default VPC.
	IsDefault *bool `json:"isDefault,omitempty"`

	// OwnerID is the ID of the AWS account that owns the VPC.
	OwnerID *string `json:"ownerID,omitempty"`

	// State is the current state of the VPC.
	State *string `json:"state,omitempty"`
}

// VPCCIDRBlockAssociation describes a CIDR block association.
type VPCCIDRBlockAssociation struct {
	// AssociationID is the association ID.
	AssociationID *string `json:"associationID,omitempty"`

	// CIDRBlock is the IPv4 CIDR block.
	CIDRBlock *string `json:"cidrBlock,omitempty"`

	// CIDRBlockState describes the state of the CIDR block.
	CIDRBlockState *VPCCIDRBlockState `json:"cidrBlockState,omitempty"`
}

// VPCCIDRBlockState describes the state of a CIDR block.
type VPCCIDRBlockState struct {
	// State is the state of the CIDR block.
	State *string `json:"state,omitempty"`

	// StatusMessage is a message about the status.
	StatusMessage *string `json:"statusMessage,omitempty"`
}
