package zones

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	netwire "github.com/lex00/netwire-aws-go"
)

// EC2API is the slice of the EC2 client the directory uses.
type EC2API interface {
	DescribeAvailabilityZones(ctx context.Context, params *awsec2.DescribeAvailabilityZonesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeAvailabilityZonesOutput, error)
}

// EC2Directory resolves zones with a live DescribeAvailabilityZones call.
type EC2Directory struct {
	api EC2API
}

// NewEC2Directory creates a directory over an EC2 client.
func NewEC2Directory(api EC2API) *EC2Directory {
	return &EC2Directory{api: api}
}

// Resolve lists the available zones of the client's region, sorted by name
// so index-based placement stays stable across calls. Only plain
// availability zones count; local and wavelength zones are excluded.
func (d *EC2Directory) Resolve(ctx context.Context, region string) ([]netwire.Zone, error) {
	filters := []types.Filter{
		{Name: aws.String("state"), Values: []string{"available"}},
		{Name: aws.String("zone-type"), Values: []string{"availability-zone"}},
	}
	if region != "" {
		filters = append(filters, types.Filter{
			Name: aws.String("region-name"), Values: []string{region},
		})
	}

	out, err := d.api.DescribeAvailabilityZones(ctx, &awsec2.DescribeAvailabilityZonesInput{
		Filters: filters,
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeAvailabilityZones: %w", err)
	}

	names := make([]string, 0, len(out.AvailabilityZones))
	for _, az := range out.AvailabilityZones {
		names = append(names, aws.ToString(az.ZoneName))
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, &netwire.ZoneResolutionError{Region: region}
	}

	zones := make([]netwire.Zone, 0, len(names))
	for _, name := range names {
		zones = append(zones, netwire.NewZone(name))
	}
	return zones, nil
}

// LoadAWSConfig loads an AWS config with optional profile and region
// overrides, for wiring an EC2Directory from the CLI.
func LoadAWSConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return cfg, nil
}

// NewEC2Client builds the real EC2 client for an EC2Directory.
func NewEC2Client(cfg aws.Config) EC2API {
	return awsec2.NewFromConfig(cfg)
}
