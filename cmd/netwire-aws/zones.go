package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/internal/zones"
)

func newZonesCmd() *cobra.Command {
	var (
		outputFormat string
		live         bool
		profile      string
	)

	cmd := &cobra.Command{
		Use:   "zones [region]",
		Short: "List availability zones for a region",
		Long: `Zones lists the ordered availability zone list the planner would place
subnets into. Without a region argument it lists the regions the built-in
table knows about.

By default zones come from the built-in region table; --live resolves
them with an EC2 DescribeAvailabilityZones call against the current AWS
credentials instead.

Examples:
    netwire-aws zones
    netwire-aws zones eu-west-1
    netwire-aws zones eu-west-1 --live --profile staging`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listRegions(outputFormat)
			}
			return runZones(cmd.Context(), args[0], outputFormat, live, profile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&live, "live", false, "Resolve zones with a live EC2 DescribeAvailabilityZones call")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS shared config profile for --live")

	return cmd
}

func runZones(ctx context.Context, region, format string, live bool, profile string) error {
	dir := zones.Static()
	if live {
		cfg, err := zones.LoadAWSConfig(ctx, profile, region)
		if err != nil {
			return err
		}
		dir = zones.NewEC2Directory(zones.NewEC2Client(cfg))
	}

	zoneList, err := dir.Resolve(ctx, region)
	if err != nil {
		return err
	}

	result := netwire.ZoneListResult{Region: region, Zones: zoneList}

	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "text":
		for _, zone := range result.Zones {
			fmt.Println(zone.Name)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}

func listRegions(format string) error {
	regions := zones.Regions()
	sort.Strings(regions)

	switch format {
	case "json":
		data, err := json.MarshalIndent(map[string][]string{"regions": regions}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "text":
		for _, region := range regions {
			fmt.Println(region)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
