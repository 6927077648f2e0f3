// Package topology defines the declarative input for the netwire-aws
// planner: a small spec naming an address block, subnet counts, gateway
// flags, and the naming inputs. Specs load from YAML or HCL files and are
// validated before any planning happens.
package topology

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Spec describes one network topology. The zero value is not usable; load
// specs with Load or fill every required field and call Validate.
type Spec struct {
	// Ecosystem names the system the network belongs to. It becomes the
	// Class tag and the prefix of every resource name.
	Ecosystem string `yaml:"ecosystem" hcl:"ecosystem" validate:"required,hostname_rfc1123"`

	// Instance distinguishes planning runs, typically a timestamp token.
	// The Instance tag is "{ecosystem}-{instance}".
	Instance string `yaml:"instance" hcl:"instance" validate:"required,hostname_rfc1123"`

	// Description is free text carried into every node's Desc tag.
	Description string `yaml:"description" hcl:"description" validate:"required"`

	// Region selects the zone set. Optional when Zones is given.
	Region string `yaml:"region" hcl:"region,optional" validate:"required_without=Zones"`

	// Zones overrides zone resolution with an explicit ordered list.
	Zones []string `yaml:"zones,omitempty" hcl:"zones,optional" validate:"omitempty,min=1,dive,required"`

	// AddressBlock is the VPC CIDR, subdivided into 2^SubnetBits subnet
	// blocks.
	AddressBlock string `yaml:"address_block" hcl:"address_block" validate:"required,cidrv4"`

	// SubnetBits is the number of extra prefix bits each subnet gets.
	SubnetBits int `yaml:"subnet_bits" hcl:"subnet_bits" validate:"min=0,max=16"`

	PrivateSubnets int `yaml:"private_subnets" hcl:"private_subnets,optional" validate:"min=0"`
	PublicSubnets  int `yaml:"public_subnets" hcl:"public_subnets,optional" validate:"min=0"`

	// PublicGateway controls the internet gateway and the public default
	// route. Defaults to true when omitted.
	PublicGateway *bool `yaml:"public_gateway,omitempty" hcl:"public_gateway,optional"`

	// PrivateGateway controls the per-subnet NAT chains for private
	// subnets. Requires PublicGateway.
	PrivateGateway bool `yaml:"private_gateway" hcl:"private_gateway,optional"`
}

// CreatePublicGateway reports the public gateway flag with its default
// applied.
func (s *Spec) CreatePublicGateway() bool {
	return s.PublicGateway == nil || *s.PublicGateway
}

var validate = validator.New()

// Validate checks field-level constraints. Topology-level rules (CIDR
// capacity, gateway combinations) belong to the planner, which checks them
// before emitting any node.
func (s *Spec) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid topology spec: %s", strings.Join(msgs, "; "))
}

// formatFieldError turns a validator error into a message that names the
// file field rather than the Go field.
func formatFieldError(e validator.FieldError) string {
	field := fieldNames[e.Field()]
	if field == "" {
		field = e.Field()
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when zones is not set", field)
	case "cidrv4":
		return fmt.Sprintf("%s must be an IPv4 CIDR, got %q", field, e.Value())
	case "hostname_rfc1123":
		return fmt.Sprintf("%s may only contain letters, digits, and hyphens, got %q", field, e.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

// fieldNames maps Go field names to the names used in topology files.
var fieldNames = map[string]string{
	"Ecosystem":      "ecosystem",
	"Instance":       "instance",
	"Description":    "description",
	"Region":         "region",
	"Zones":          "zones",
	"AddressBlock":   "address_block",
	"SubnetBits":     "subnet_bits",
	"PrivateSubnets": "private_subnets",
	"PublicSubnets":  "public_subnets",
	"PublicGateway":  "public_gateway",
	"PrivateGateway": "private_gateway",
}
