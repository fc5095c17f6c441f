// Package validator implements the protection analysis: for every
// throwing directive reachable from an operation's effective selection
// tree (fragment spreads expanded on demand), decide whether an
// enclosing @catch protects it.
package validator

import (
	"github.com/jantimon/gql-safeguard-go/internal/diag"
	"github.com/jantimon/gql-safeguard-go/internal/model"
	"github.com/jantimon/gql-safeguard-go/internal/registry"
)

// Finding is one unprotected-directive occurrence, still carrying the
// Selection node it was raised against so the reporter can mark it in
// the rendered tree. FieldName "query level" and "fragment <name>" are
// the two cases with no single owning field (see ValidateOperation).
type Finding struct {
	OperationName string
	FragmentName  string
	FieldName     string
	Kind          model.DirectiveKind
	Position      model.Position
	Node          model.Selection // nil for operation-level and fragment-definition-level findings
}

// ValidateOperation walks op's effective selection tree (with fragment
// spreads expanded lazily via reg) and returns every unprotected
// throwing-directive finding. Missing-fragment diagnostics are reported
// to sink; they do not themselves produce a Finding.
func ValidateOperation(op *model.OperationDef, reg *registry.Registry, sink *diag.Sink) []Finding {
	v := &opVisitor{op: op, reg: reg, sink: sink}

	opCatch := hasCatch(op.Directives)
	covered := opCatch
	if !op.IgnoreMark {
		v.emitDirectiveErrors(op.Directives, covered, "query level", "")
	}

	for _, sel := range op.Selections {
		v.visit(sel, covered, map[string]bool{})
	}
	return v.findings
}

type opVisitor struct {
	op       *model.OperationDef
	reg      *registry.Registry
	sink     *diag.Sink
	findings []Finding
}

// emitDirectiveErrors records a Finding for every throwing directive in
// dirs, unless covered is true. fieldName/fragmentName describe the
// owning node for the Error record; the Finding carries no Node.
func (v *opVisitor) emitDirectiveErrors(dirs []model.Directive, covered bool, fieldName, fragmentName string) {
	if covered {
		return
	}
	for _, d := range dirs {
		if !d.Kind.Throwing() {
			continue
		}
		v.findings = append(v.findings, Finding{
			OperationName: v.op.Name,
			FragmentName:  fragmentName,
			FieldName:     fieldName,
			Kind:          d.Kind,
			Position:      d.Position,
		})
	}
}

func hasCatch(dirs []model.Directive) bool {
	for _, d := range dirs {
		if d.Kind == model.Catch {
			return true
		}
	}
	return false
}

// visit descends into a single selection under the given inherited
// coverage and active fragment-expansion visiting set.
func (v *opVisitor) visit(sel model.Selection, covered bool, visiting map[string]bool) {
	switch s := sel.(type) {
	case *model.Field:
		fieldCovered := covered || hasCatch(s.Directives)
		if !s.Ignored() {
			v.emitFieldErrors(s, fieldCovered)
		}
		for _, child := range s.Children {
			v.visit(child, fieldCovered, visiting)
		}

	case *model.InlineFragment:
		inlineCovered := covered || hasCatch(s.Directives)
		if !s.Ignored() {
			v.emitInlineErrors(s, inlineCovered)
		}
		for _, child := range s.Children {
			v.visit(child, inlineCovered, visiting)
		}

	case *model.FragmentSpread:
		v.visitSpread(s, covered, visiting)
	}
}

func (v *opVisitor) emitFieldErrors(f *model.Field, covered bool) {
	if covered {
		return
	}
	for _, d := range f.Directives {
		if !d.Kind.Throwing() {
			continue
		}
		v.findings = append(v.findings, Finding{
			OperationName: v.op.Name,
			FieldName:     f.DisplayName(),
			Kind:          d.Kind,
			Position:      d.Position,
			Node:          f,
		})
	}
}

func (v *opVisitor) emitInlineErrors(i *model.InlineFragment, covered bool) {
	if covered {
		return
	}
	for _, d := range i.Directives {
		if !d.Kind.Throwing() {
			continue
		}
		v.findings = append(v.findings, Finding{
			OperationName: v.op.Name,
			FieldName:     "inline fragment",
			Kind:          d.Kind,
			Position:      d.Position,
			Node:          i,
		})
	}
}

func (v *opVisitor) visitSpread(s *model.FragmentSpread, covered bool, visiting map[string]bool) {
	// A spread's own @catch protects its own throwing directives, the
	// same way a field's own @catch protects that field's directives
	// (see SPEC_FULL.md's resolved open question).
	enteredCovered := covered || hasCatch(s.Directives)
	if !s.Ignored() && !enteredCovered {
		for _, d := range s.Directives {
			if !d.Kind.Throwing() {
				continue
			}
			v.findings = append(v.findings, Finding{
				OperationName: v.op.Name,
				FieldName:     "..." + s.Name,
				Kind:          d.Kind,
				Position:      d.Position,
				Node:          s,
			})
		}
	}

	frag := v.reg.LookupFragment(s.Name)
	if frag == nil {
		v.sink.Report(diag.Diagnostic{
			Kind:   diag.MissingFragment,
			File:   v.op.File,
			Detail: "fragment \"" + s.Name + "\" referenced by operation \"" + v.op.Name + "\" was not found",
			Line:   s.Position.Line,
			Column: s.Position.Column,
		})
		return
	}
	if visiting[s.Name] {
		return // cycle: safe to stop, already on this path
	}

	// Per §4.E.4, the fragment definition's own throwing directives are
	// checked against coverage from the ancestor chain plus the spread
	// site only -- the fragment's own @catch protects its children, not
	// itself.
	if !frag.Ignored() && !enteredCovered {
		for _, d := range frag.Directives {
			if !d.Kind.Throwing() {
				continue
			}
			v.findings = append(v.findings, Finding{
				OperationName: v.op.Name,
				FragmentName:  frag.Name,
				FieldName:     "fragment " + frag.Name,
				Kind:          d.Kind,
				Position:      d.Position,
			})
		}
	}

	childCovered := enteredCovered || hasCatch(frag.Directives)

	nextVisiting := make(map[string]bool, len(visiting)+1)
	for k := range visiting {
		nextVisiting[k] = true
	}
	nextVisiting[s.Name] = true

	for _, child := range frag.Selections {
		v.visit(child, childCovered, nextVisiting)
	}
}
