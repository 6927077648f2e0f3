package topology

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a topology spec. The format follows the file
// extension: .yaml/.yml or .hcl.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}

	var spec *Spec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		spec, err = parseYAML(data)
	case ".hcl":
		spec, err = parseHCL(path, data)
	default:
		return nil, fmt.Errorf("unsupported topology format %q (use .yaml, .yml, or .hcl)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseYAML(data []byte) (*Spec, error) {
	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing topology yaml: %w", err)
	}
	return &spec, nil
}

func parseHCL(filename string, data []byte) (*Spec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing topology hcl: %s", diags.Error())
	}

	var spec Spec
	if diags := gohcl.DecodeBody(file.Body, nil, &spec); diags.HasErrors() {
		return nil, fmt.Errorf("decoding topology hcl: %s", diags.Error())
	}
	return &spec, nil
}
