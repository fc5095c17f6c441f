package reporter

import (
	"github.com/jantimon/gql-safeguard-go/internal/model"
	"github.com/jantimon/gql-safeguard-go/internal/registry"
)

// JSONSelection is the machine-readable form of a single selection node,
// used by the `json` subcommand's registry dump.
type JSONSelection struct {
	Kind          string          `json:"kind"` // "field" | "inlineFragment" | "fragmentSpread"
	Name          string          `json:"name,omitempty"`
	Alias         string          `json:"alias,omitempty"`
	TypeCondition string          `json:"typeCondition,omitempty"`
	Directives    []string        `json:"directives,omitempty"`
	Children      []JSONSelection `json:"children,omitempty"`
}

// JSONOperation is the machine-readable form of one operation definition.
type JSONOperation struct {
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	File       string          `json:"file"`
	Line       int             `json:"line"`
	Col        int             `json:"col"`
	Directives []string        `json:"directives,omitempty"`
	Selections []JSONSelection `json:"selections"`
}

// JSONFragment is the machine-readable form of one fragment definition.
type JSONFragment struct {
	Name          string          `json:"name"`
	TypeCondition string          `json:"typeCondition"`
	File          string          `json:"file"`
	Line          int             `json:"line"`
	Col           int             `json:"col"`
	Directives    []string        `json:"directives,omitempty"`
	Selections    []JSONSelection `json:"selections"`
}

// RegistryDump is the top-level shape emitted by the `json` subcommand.
type RegistryDump struct {
	Operations []JSONOperation `json:"operations"`
	Fragments  []JSONFragment  `json:"fragments"`
}

// BuildRegistryDump serializes every ingested operation and fragment,
// with directive annotations, for machine consumption.
func BuildRegistryDump(reg *registry.Registry) RegistryDump {
	var dump RegistryDump
	for _, op := range reg.Operations() {
		dump.Operations = append(dump.Operations, JSONOperation{
			Name:       op.Name,
			Kind:       op.Kind.String(),
			File:       op.File,
			Line:       op.Position.Line,
			Col:        op.Position.Column,
			Directives: directiveNames(op.Directives),
			Selections: jsonSelections(op.Selections),
		})
	}
	for _, f := range reg.Fragments() {
		dump.Fragments = append(dump.Fragments, JSONFragment{
			Name:          f.Name,
			TypeCondition: f.TypeCondition,
			File:          f.File,
			Line:          f.Position.Line,
			Col:           f.Position.Column,
			Directives:    directiveNames(f.Directives),
			Selections:    jsonSelections(f.Selections),
		})
	}
	return dump
}

func directiveNames(dirs []model.Directive) []string {
	if len(dirs) == 0 {
		return nil
	}
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.RawName
	}
	return names
}

func jsonSelections(sels []model.Selection) []JSONSelection {
	out := make([]JSONSelection, 0, len(sels))
	for _, sel := range sels {
		out = append(out, jsonSelection(sel))
	}
	return out
}

func jsonSelection(sel model.Selection) JSONSelection {
	switch s := sel.(type) {
	case *model.Field:
		return JSONSelection{
			Kind:       "field",
			Name:       s.Name,
			Alias:      s.Alias,
			Directives: directiveNames(s.Directives),
			Children:   jsonSelections(s.Children),
		}
	case *model.InlineFragment:
		return JSONSelection{
			Kind:          "inlineFragment",
			TypeCondition: s.TypeCondition,
			Directives:    directiveNames(s.Directives),
			Children:      jsonSelections(s.Children),
		}
	case *model.FragmentSpread:
		return JSONSelection{
			Kind:       "fragmentSpread",
			Name:       s.Name,
			Directives: directiveNames(s.Directives),
		}
	default:
		return JSONSelection{Kind: "unknown"}
	}
}
