package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// RouteTable represents an ACK EC2 RouteTable resource.
// +kubebuilder:object:root=true
type RouteTable struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   RouteTableSpec   `json:"spec,omitempty"`
	Status RouteTableStatus `json:"status,omitempty"`
}

// RouteTableSpec defines the desired state of a RouteTable. Routes are
// inlined in the spec, and SubnetRefs carries the subnet associations.
type RouteTableSpec struct {
	// VPCID is the ID of the VPC that owns the table.
	VPCID *string `json:"vpcID,omitempty"`

	// VPCRef is a reference to a VPC resource.
	VPCRef *AWSResourceReferenceWrapper `json:"vpcRef,omitempty"`

	// Routes are the routes in the table.
	Routes []*CreateRouteInput `json:"routes,omitempty"`

	// SubnetRefs are references to the subnets associated with the table.
	SubnetRefs []*AWSResourceReferenceWrapper `json:"subnetRefs,omitempty"`

	// Tags are key-value pairs to categorize resources.
	Tags []*Tag `json:"tags,omitempty"`
}

// CreateRouteInput describes one route. Exactly one target field should
// be set.
type CreateRouteInput struct {
	// DestinationCIDRBlock is the IPv4 destination of the route.
	DestinationCIDRBlock *string `json:"destinationCIDRBlock,omitempty"`

	// GatewayID is the ID of an internet gateway target.
	GatewayID *string `json:"gatewayID,omitempty"`

	// GatewayRef is a reference to an InternetGateway resource.
	GatewayRef *AWSResourceReferenceWrapper `json:"gatewayRef,omitempty"`

	// NATGatewayID is the ID of a NAT gateway target.
	NATGatewayID *string `json:"natGatewayID,omitempty"`

	// NATGatewayRef is a reference to a NATGateway resource.
	NATGatewayRef *AWSResourceReferenceWrapper `json:"natGatewayRef,omitempty"`
}

// RouteTableStatus defines the observed state of a RouteTable.
type RouteTableStatus struct {
	// ACKResourceMetadata contains ACK-specific metadata.
	ACKResourceMetadata *ACKResourceMetadata `json:"ackResourceMetadata,omitempty"`

	// Conditions represent the latest available observations.
	Conditions []*Condition `json:"conditions,omitempty"`

	// RouteTableID is the ID of the route table.
	RouteTableID *string `json:"routeTableID,omitempty"`

	// OwnerID is the ID of the AWS account that owns the table.
	OwnerID *string `json:"ownerID,omitempty"`
}
