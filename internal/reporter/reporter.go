// Package reporter renders validation findings as a human-readable
// selection tree (with ❌ markers and directive annotations) and as the
// stable JSON shape the CLI's --json flag emits.
package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jantimon/gql-safeguard-go/internal/model"
	"github.com/jantimon/gql-safeguard-go/internal/registry"
	"github.com/jantimon/gql-safeguard-go/internal/validator"
)

// HintBlock is the fixed text appended to the human-readable report
// whenever at least one validation error was emitted, explaining why
// @catch is required.
const HintBlock = `
@catch is required around any field that can throw because server-side
rendering does not run React error boundaries: an uncaught field error
during SSR crashes the entire render instead of degrading gracefully.
See https://www.apollographql.com/docs/kotlin/advanced/error-handling for
background on field-level error semantics.`

// Render produces the text tree for a single operation, marking
// offending nodes with ❌ and annotating directives. Fragment spreads
// whose expansion contains a marked node are always expanded inline
// under a "Fragment Content:" block; showTrees forces expansion even
// when nothing inside is marked.
func Render(op *model.OperationDef, findings []validator.Finding, reg *registry.Registry, showTrees bool) string {
	marked := make(map[model.Selection]bool, len(findings))
	fragDefMarked := make(map[string]bool)
	opLevelMarked := false

	for _, f := range findings {
		switch {
		case f.Node != nil:
			marked[f.Node] = true
		case f.FieldName == "query level":
			opLevelMarked = true
		case strings.HasPrefix(f.FieldName, "fragment "):
			fragDefMarked[f.FragmentName] = true
		}
	}

	var b strings.Builder
	header := fmt.Sprintf("%s %s", op.Kind, op.Name)
	if opLevelMarked {
		header = "❌ " + header
	}
	header += directiveAnnotations(op.Directives)
	b.WriteString(header)
	b.WriteByte('\n')

	for _, sel := range op.Selections {
		renderSelection(&b, sel, 1, marked, fragDefMarked, reg, showTrees, map[string]bool{})
	}

	return b.String()
}

func renderSelection(b *strings.Builder, sel model.Selection, depth int, marked map[model.Selection]bool, fragDefMarked map[string]bool, reg *registry.Registry, showTrees bool, visiting map[string]bool) {
	indent := strings.Repeat("  ", depth)

	switch s := sel.(type) {
	case *model.Field:
		writeLine(b, indent, marked[s], s.DisplayName(), s.Directives)
		for _, child := range s.Children {
			renderSelection(b, child, depth+1, marked, fragDefMarked, reg, showTrees, visiting)
		}

	case *model.InlineFragment:
		label := "..."
		if s.TypeCondition != "" {
			label = "... on " + s.TypeCondition
		}
		writeLine(b, indent, marked[s], label, s.Directives)
		for _, child := range s.Children {
			renderSelection(b, child, depth+1, marked, fragDefMarked, reg, showTrees, visiting)
		}

	case *model.FragmentSpread:
		writeLine(b, indent, marked[s], "..."+s.Name, s.Directives)

		frag := reg.LookupFragment(s.Name)
		if frag == nil {
			b.WriteString(indent + "  (fragment not found)\n")
			return
		}
		if visiting[s.Name] {
			return
		}
		if !showTrees && !fragDefMarked[s.Name] && !subtreeHasMarks(frag.Selections, marked, reg, map[string]bool{s.Name: true}) {
			return
		}

		fragLabel := "Fragment Content:"
		if fragDefMarked[s.Name] {
			fragLabel = "❌ " + fragLabel
		}
		b.WriteString(indent + "  " + fragLabel + directiveAnnotations(frag.Directives) + "\n")

		nextVisiting := make(map[string]bool, len(visiting)+1)
		for k := range visiting {
			nextVisiting[k] = true
		}
		nextVisiting[s.Name] = true
		for _, child := range frag.Selections {
			renderSelection(b, child, depth+2, marked, fragDefMarked, reg, showTrees, nextVisiting)
		}
	}
}

func writeLine(b *strings.Builder, indent string, isMarked bool, label string, dirs []model.Directive) {
	marker := ""
	if isMarked {
		marker = "❌ "
	}
	b.WriteString(indent + marker + label + directiveAnnotations(dirs) + "\n")
}

func directiveAnnotations(dirs []model.Directive) string {
	var parts []string
	for _, d := range dirs {
		switch d.Kind {
		case model.Catch:
			parts = append(parts, "[\U0001F9E4 @catch]")
		case model.ThrowOnFieldError:
			parts = append(parts, "[☄️ @throwOnFieldError]")
		case model.RequiredThrow:
			parts = append(parts, "[☄️ @required(action: THROW)]")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// BuildValidationErrors converts one operation's findings into
// model.ValidationError records, rendering the operation's tree once
// and attaching it to every finding raised against that operation.
func BuildValidationErrors(result validator.OperationResult, reg *registry.Registry, showTrees bool) []model.ValidationError {
	if len(result.Findings) == 0 {
		return nil
	}
	tree := Render(result.Operation, result.Findings, reg, showTrees)
	errs := make([]model.ValidationError, 0, len(result.Findings))
	for _, f := range result.Findings {
		errs = append(errs, model.ValidationError{
			File:          result.Operation.File,
			OperationName: f.OperationName,
			FragmentName:  f.FragmentName,
			FieldName:     f.FieldName,
			Kind:          f.Kind,
			Position:      f.Position,
			Tree:          tree,
		})
	}
	return errs
}

// RenderReport produces the full human-readable report across every
// operation result: one tree per offending operation, followed by the
// fixed hint block when at least one error was found.
func RenderReport(results []validator.OperationResult, reg *registry.Registry, showTrees bool) string {
	var b strings.Builder
	anyErrors := false
	for _, r := range results {
		if len(r.Findings) == 0 {
			continue
		}
		anyErrors = true
		b.WriteString(Render(r.Operation, r.Findings, reg, showTrees))
		b.WriteByte('\n')
	}
	if anyErrors {
		b.WriteString(HintBlock)
		b.WriteByte('\n')
	}
	return b.String()
}

// JSONError is one element of the validate --json "errors" array. Field
// order and names are part of the stable JSON contract.
type JSONError struct {
	FileName  string `json:"fileName"`
	Reason    string `json:"reason"`
	Name      string `json:"name"`
	Field     string `json:"field"`
	QueryTree string `json:"queryTree"`
	Line      int    `json:"line"`
	Col       int    `json:"col"`
}

// JSONReport is the top-level shape emitted by validate --json.
type JSONReport struct {
	Errors []JSONError `json:"errors"`
	Hint   string      `json:"hint"`
}

// BuildJSON assembles the stable JSON report from every operation's
// results, sorted deterministically.
func BuildJSON(results []validator.OperationResult, reg *registry.Registry, showTrees bool) JSONReport {
	var all []model.ValidationError
	for _, r := range results {
		all = append(all, BuildValidationErrors(r, reg, showTrees)...)
	}
	sortValidationErrors(all)

	report := JSONReport{Hint: ""}
	if len(all) > 0 {
		report.Hint = strings.TrimSpace(HintBlock)
	}
	for _, e := range all {
		report.Errors = append(report.Errors, JSONError{
			FileName:  e.File,
			Reason:    e.Kind.String(),
			Name:      e.OperationName,
			Field:     e.FieldName,
			QueryTree: e.Tree,
			Line:      e.Position.Line,
			Col:       e.Position.Column,
		})
	}
	return report
}

func sortValidationErrors(errs []model.ValidationError) {
	sort.Slice(errs, func(i, j int) bool { return errs[i].Less(errs[j]) })
}

// subtreeHasMarks reports whether any selection reachable from sels
// (expanding fragment spreads, guarded against cycles by visiting) is a
// marked node.
func subtreeHasMarks(sels []model.Selection, marked map[model.Selection]bool, reg *registry.Registry, visiting map[string]bool) bool {
	for _, sel := range sels {
		if marked[sel] {
			return true
		}
		switch s := sel.(type) {
		case *model.Field:
			if subtreeHasMarks(s.Children, marked, reg, visiting) {
				return true
			}
		case *model.InlineFragment:
			if subtreeHasMarks(s.Children, marked, reg, visiting) {
				return true
			}
		case *model.FragmentSpread:
			if visiting[s.Name] {
				continue
			}
			frag := reg.LookupFragment(s.Name)
			if frag == nil {
				continue
			}
			nextVisiting := make(map[string]bool, len(visiting)+1)
			for k := range visiting {
				nextVisiting[k] = true
			}
			nextVisiting[s.Name] = true
			if subtreeHasMarks(frag.Selections, marked, reg, nextVisiting) {
				return true
			}
		}
	}
	return false
}
