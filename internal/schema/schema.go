// Package schema provides offline CloudFormation schema validation for the
// resource types the planner emits. It checks required properties, property
// types, and allowed values without calling AWS.
package schema

import (
	"fmt"
	"strings"

	"github.com/lex00/cloudformation-schema-go/intrinsics"

	netwire "github.com/lex00/netwire-aws-go"
)

// Options configures schema validation.
type Options struct {
	// Strict reports unknown properties as warnings.
	Strict bool
}

// Finding is a single schema issue tied to a resource property.
type Finding struct {
	Resource string
	Property string
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s.%s: %s", f.Resource, f.Property, f.Message)
}

// Result contains schema validation results.
type Result struct {
	Valid    bool
	Errors   []Finding
	Warnings []Finding
}

// ValidateTemplate validates a CloudFormation template against the known
// resource schemas.
func ValidateTemplate(template *netwire.Template, opts Options) *Result {
	result := &Result{Valid: true}

	for name, resource := range template.Resources {
		errors, warnings := validateResource(name, resource, opts)
		result.Errors = append(result.Errors, errors...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}
	return result
}

func validateResource(name string, resource netwire.ResourceDef, opts Options) ([]Finding, []Finding) {
	var errors, warnings []Finding

	if !isValidResourceType(resource.Type) {
		errors = append(errors, Finding{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("invalid resource type format: %s", resource.Type),
		})
	}

	schema, ok := resourceSchemas[resource.Type]
	if !ok {
		// CloudFormation grows resource types faster than this table;
		// unknown types are a warning, not an error.
		warnings = append(warnings, Finding{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("unknown resource type: %s (schema not available for validation)", resource.Type),
		})
		return errors, warnings
	}

	for _, required := range schema.Required {
		if _, exists := resource.Properties[required]; !exists {
			errors = append(errors, Finding{
				Resource: name,
				Property: required,
				Message:  fmt.Sprintf("missing required property: %s", required),
			})
		}
	}

	for propName, propValue := range resource.Properties {
		propSchema, ok := schema.Properties[propName]
		if !ok {
			if opts.Strict {
				warnings = append(warnings, Finding{
					Resource: name,
					Property: propName,
					Message:  fmt.Sprintf("unknown property: %s", propName),
				})
			}
			continue
		}
		errors = append(errors, validateProperty(name, propName, propValue, propSchema)...)
	}

	return errors, warnings
}

// isValidResourceType checks the AWS::Service::Resource format.
func isValidResourceType(resourceType string) bool {
	if strings.HasPrefix(resourceType, "Custom::") {
		return true
	}
	parts := strings.Split(resourceType, "::")
	if len(parts) != 3 {
		return false
	}
	return parts[0] == "AWS" || parts[0] == "Alexa"
}

func validateProperty(resource, property string, value any, schema PropertySchema) []Finding {
	var errors []Finding

	if !isValidType(value, schema.Type) {
		errors = append(errors, Finding{
			Resource: resource,
			Property: property,
			Message:  fmt.Sprintf("expected type %s", schema.Type),
		})
	}

	if len(schema.AllowedValues) > 0 {
		if strVal, ok := value.(string); ok {
			found := false
			for _, allowed := range schema.AllowedValues {
				if strVal == allowed {
					found = true
					break
				}
			}
			if !found {
				errors = append(errors, Finding{
					Resource: resource,
					Property: property,
					Message:  fmt.Sprintf("value %q not in allowed values: %v", strVal, schema.AllowedValues),
				})
			}
		}
	}

	return errors
}

// isValidType checks a value against the expected schema type. Intrinsic
// functions resolve at deploy time and are always accepted, whether typed
// or map-encoded.
func isValidType(value any, expectedType string) bool {
	switch value.(type) {
	case intrinsics.Ref, intrinsics.GetAtt, intrinsics.Sub:
		return true
	}
	if m, ok := value.(map[string]any); ok {
		for key := range m {
			if strings.HasPrefix(key, "Fn::") || key == "Ref" {
				return true
			}
		}
	}

	switch expectedType {
	case "String":
		_, ok := value.(string)
		return ok
	case "Integer":
		switch value.(type) {
		case int, int32, int64, float64:
			return true
		}
		return false
	case "Boolean":
		_, ok := value.(bool)
		return ok
	case "List":
		switch value.(type) {
		case []any, []string:
			return true
		}
		return false
	case "Map":
		_, ok := value.(map[string]any)
		return ok
	case "Json":
		return true
	default:
		return true
	}
}

// ResourceSchema defines the schema for a resource type.
type ResourceSchema struct {
	Type       string
	Required   []string
	Properties map[string]PropertySchema
}

// PropertySchema defines the schema for a property.
type PropertySchema struct {
	Type          string
	Required      bool
	AllowedValues []string
}

// resourceSchemas covers the EC2 networking types the renderer emits.
var resourceSchemas = map[string]ResourceSchema{
	"AWS::EC2::VPC": {
		Type:     "AWS::EC2::VPC",
		Required: []string{"CidrBlock"},
		Properties: map[string]PropertySchema{
			"CidrBlock":          {Type: "String", Required: true},
			"EnableDnsSupport":   {Type: "Boolean"},
			"EnableDnsHostnames": {Type: "Boolean"},
			"InstanceTenancy":    {Type: "String", AllowedValues: []string{"default", "dedicated", "host"}},
			"Tags":               {Type: "List"},
		},
	},
	"AWS::EC2::Subnet": {
		Type:     "AWS::EC2::Subnet",
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId":               {Type: "String", Required: true},
			"CidrBlock":           {Type: "String"},
			"AvailabilityZone":    {Type: "String"},
			"MapPublicIpOnLaunch": {Type: "Boolean"},
			"Tags":                {Type: "List"},
		},
	},
	"AWS::EC2::InternetGateway": {
		Type: "AWS::EC2::InternetGateway",
		Properties: map[string]PropertySchema{
			"Tags": {Type: "List"},
		},
	},
	"AWS::EC2::VPCGatewayAttachment": {
		Type:     "AWS::EC2::VPCGatewayAttachment",
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId":             {Type: "String", Required: true},
			"InternetGatewayId": {Type: "String"},
			"VpnGatewayId":      {Type: "String"},
		},
	},
	"AWS::EC2::EIP": {
		Type: "AWS::EC2::EIP",
		Properties: map[string]PropertySchema{
			"Domain": {Type: "String", AllowedValues: []string{"vpc", "standard"}},
			"Tags":   {Type: "List"},
		},
	},
	"AWS::EC2::NatGateway": {
		Type:     "AWS::EC2::NatGateway",
		Required: []string{"SubnetId"},
		Properties: map[string]PropertySchema{
			"SubnetId":         {Type: "String", Required: true},
			"AllocationId":     {Type: "String"},
			"ConnectivityType": {Type: "String", AllowedValues: []string{"public", "private"}},
			"Tags":             {Type: "List"},
		},
	},
	"AWS::EC2::RouteTable": {
		Type:     "AWS::EC2::RouteTable",
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId": {Type: "String", Required: true},
			"Tags":  {Type: "List"},
		},
	},
	"AWS::EC2::Route": {
		Type:     "AWS::EC2::Route",
		Required: []string{"RouteTableId"},
		Properties: map[string]PropertySchema{
			"RouteTableId":             {Type: "String", Required: true},
			"DestinationCidrBlock":     {Type: "String"},
			"DestinationIpv6CidrBlock": {Type: "String"},
			"GatewayId":                {Type: "String"},
			"NatGatewayId":             {Type: "String"},
		},
	},
	"AWS::EC2::SubnetRouteTableAssociation": {
		Type:     "AWS::EC2::SubnetRouteTableAssociation",
		Required: []string{"RouteTableId", "SubnetId"},
		Properties: map[string]PropertySchema{
			"RouteTableId": {Type: "String", Required: true},
			"SubnetId":     {Type: "String", Required: true},
		},
	},
}
