// Package prompt holds the instruction variants sent to the completion
// provider. Each variant pins down a response dialect; the parser and
// normalizer stay authoritative over whatever actually comes back.
package prompt

import (
	"fmt"
	"strings"
)

// DefaultVariant is used when no variant is configured.
const DefaultVariant = "structured"

// Variant is a named system instruction.
type Variant struct {
	Name string
	Text string
}

var variants = []Variant{
	{Name: "structured", Text: structuredText},
	{Name: "lines", Text: linesText},
	{Name: "scalper", Text: scalperText},
	{Name: "swing", Text: swingText},
}

// Lookup returns the variant with the given name. Matching ignores case.
func Lookup(name string) (Variant, error) {
	if name == "" {
		name = DefaultVariant
	}
	for _, v := range variants {
		if strings.EqualFold(v.Name, name) {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("unknown prompt variant %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Default returns the default variant.
func Default() Variant {
	v, _ := Lookup(DefaultVariant)
	return v
}

// Names returns the known variant names in registration order.
func Names() []string {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.Name
	}
	return names
}
