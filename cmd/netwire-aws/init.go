package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lex00/netwire-aws-go/internal/zones"
	"github.com/lex00/netwire-aws-go/topology"
)

// validProjectName matches valid project names. The name becomes the
// ecosystem value in the scaffold, so it must satisfy the spec's RFC 1123
// constraint: letters, digits, and hyphens, with no trailing hyphen.
var validProjectName = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

func newInitCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Create a new netwire-aws project",
		Long: `Init creates a new project directory with a topology.yaml configured.

The project is created in a subdirectory with the given name. With
--interactive the topology values are prompted for; otherwise a commented
starter topology is written.

Examples:
    netwire-aws init core-network             # Creates ./core-network/
    netwire-aws init staging-vpc -i           # Prompts for topology values`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(".", args[0], interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for topology values")

	return cmd
}

// runInit creates a new project in {workspaceDir}/{projectName}/
func runInit(workspaceDir, projectName string, interactive bool) error {
	if !validProjectName.MatchString(projectName) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, and hyphens", projectName)
	}

	projectPath := filepath.Join(workspaceDir, projectName)
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("project already exists: %s", projectPath)
	}

	if err := os.MkdirAll(projectPath, 0755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	var topo []byte
	var err error
	if interactive {
		topo, err = promptTopology(projectName)
	} else {
		topo = starterTopology(projectName)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(projectPath, "topology.yaml"), topo, 0644); err != nil {
		return fmt.Errorf("writing topology.yaml: %w", err)
	}

	gitignore := `# Plan output
plan.json
plan.yaml
template.json
template.yaml
manifests.yaml

# IDE
.idea/
.vscode/
*.swp
*.swo

# OS
.DS_Store
Thumbs.db
`
	if err := os.WriteFile(filepath.Join(projectPath, ".gitignore"), []byte(gitignore), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Printf("Created project: %s/\n", projectPath)
	fmt.Printf("  ├── topology.yaml\n")
	fmt.Printf("  └── .gitignore\n")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  netwire-aws plan %s/topology.yaml\n", projectName)
	fmt.Println()

	return nil
}

// starterTopology is the commented scaffold written by non-interactive
// init. It plans as-is.
func starterTopology(name string) []byte {
	return []byte(fmt.Sprintf(`# netwire-aws topology for %s.
#
# The address block is split into 2^subnet_bits equal subnet blocks;
# private subnets take the low blocks, public subnets the next ones.
ecosystem: %s
instance: "001"
description: %s network
region: us-west-2

address_block: 10.0.0.0/16
subnet_bits: 4

private_subnets: 2
public_subnets: 2

# public_gateway defaults to true; private_gateway adds one NAT chain
# per private subnet and requires the public gateway.
private_gateway: true
`, name, name, name))
}

// promptTopology collects topology values interactively and validates
// them before writing.
func promptTopology(name string) ([]byte, error) {
	regions := zones.Regions()
	sort.Strings(regions)

	spec := topology.Spec{Ecosystem: name, Instance: "001"}

	qs := []*survey.Question{
		{
			Name:     "ecosystem",
			Prompt:   &survey.Input{Message: "Ecosystem name:", Default: name},
			Validate: survey.Required,
		},
		{
			Name:     "description",
			Prompt:   &survey.Input{Message: "Description:", Default: name + " network"},
			Validate: survey.Required,
		},
		{
			Name:   "region",
			Prompt: &survey.Select{Message: "Region:", Options: regions, Default: "us-west-2"},
		},
		{
			Name:     "addressBlock",
			Prompt:   &survey.Input{Message: "Address block (CIDR):", Default: "10.0.0.0/16"},
			Validate: survey.Required,
		},
		{
			Name:   "subnetBits",
			Prompt: &survey.Input{Message: "Subnet bits:", Default: "4"},
		},
		{
			Name:   "privateSubnets",
			Prompt: &survey.Input{Message: "Private subnets:", Default: "2"},
		},
		{
			Name:   "publicSubnets",
			Prompt: &survey.Input{Message: "Public subnets:", Default: "2"},
		},
	}

	answers := struct {
		Ecosystem      string
		Description    string
		Region         string
		AddressBlock   string
		SubnetBits     string
		PrivateSubnets string
		PublicSubnets  string
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return nil, err
	}

	spec.Ecosystem = answers.Ecosystem
	spec.Description = answers.Description
	spec.Region = answers.Region
	spec.AddressBlock = answers.AddressBlock

	var err error
	if spec.SubnetBits, err = strconv.Atoi(answers.SubnetBits); err != nil {
		return nil, fmt.Errorf("subnet bits must be a number: %w", err)
	}
	if spec.PrivateSubnets, err = strconv.Atoi(answers.PrivateSubnets); err != nil {
		return nil, fmt.Errorf("private subnets must be a number: %w", err)
	}
	if spec.PublicSubnets, err = strconv.Atoi(answers.PublicSubnets); err != nil {
		return nil, fmt.Errorf("public subnets must be a number: %w", err)
	}

	if spec.PrivateSubnets > 0 {
		if err := survey.AskOne(&survey.Confirm{
			Message: "Create NAT egress for private subnets?",
			Default: true,
		}, &spec.PrivateGateway); err != nil {
			return nil, err
		}
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return yaml.Marshal(&spec)
}
