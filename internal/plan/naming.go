package plan

import (
	"fmt"

	netwire "github.com/lex00/netwire-aws-go"
	"github.com/lex00/netwire-aws-go/topology"
)

// namer derives the deterministic names and tag sets every node carries.
// Pure string formatting; the same inputs always produce the same tags.
type namer struct {
	ecosystem   string
	instance    string
	description string
}

func newNamer(spec *topology.Spec) *namer {
	return &namer{
		ecosystem:   spec.Ecosystem,
		instance:    fmt.Sprintf("%s-%s", spec.Ecosystem, spec.Instance),
		description: spec.Description,
	}
}

// singletonName names one-per-topology resources: "{ecosystem}-{kind}".
func (n *namer) singletonName(kind string) string {
	return fmt.Sprintf("%s-%s", n.ecosystem, kind)
}

// ordinalName names per-ordinal resources with a two-digit zero-padded
// ordinal and the zone suffix: "{ecosystem}-{kind}-{NN}-{suffix}".
func (n *namer) ordinalName(kind string, ordinal int, zone netwire.Zone) string {
	return fmt.Sprintf("%s-%s-%02d-%s", n.ecosystem, kind, ordinal, zone.Suffix)
}

// tags builds the tag set for a node. Class is the raw ecosystem name,
// Instance is "{ecosystem}-{instance}", and Desc appends the node phrase
// to the topology description.
func (n *namer) tags(name, phrase string) netwire.TagSet {
	return netwire.TagSet{
		Name:     name,
		Class:    n.ecosystem,
		Instance: n.instance,
		Desc:     fmt.Sprintf("%s: %s", n.description, phrase),
	}
}

// ordinalPhrase is the Desc fragment for per-ordinal resources, always
// naming the ordinal and the zone.
func ordinalPhrase(what string, ordinal int, zone netwire.Zone) string {
	return fmt.Sprintf("%s %02d in %s", what, ordinal, zone.Name)
}
