// Package gqlsource parses an extracted GraphQL payload with gqlparser's
// schema-less query parser and lowers the result into the compact
// internal/model AST the validator walks, rebasing every position from
// "offset within the payload" to "line/column within the original
// TypeScript/TSX file".
package gqlsource

import (
	"fmt"

	"github.com/jantimon/gql-safeguard-go/internal/model"
	"github.com/jantimon/gql-safeguard-go/internal/span"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseError wraps a gqlparser failure for a single payload; the caller
// treats it as non-fatal and skips just that payload.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: graphql parse error: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Lowered is the result of parsing and lowering one tagged-template
// payload.
type Lowered struct {
	Operations []*model.OperationDef
	Fragments  []*model.FragmentDef
}

// Lower parses payload (the raw text between the backticks) and lowers
// every operation and fragment definition it contains, rebasing all
// positions using startLine/startColumn (the payload's position within
// file).
func Lower(file string, payload string, startLine, startColumn int) (*Lowered, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: file, Input: payload})
	if err != nil {
		return nil, &ParseError{File: file, Line: startLine, Err: err}
	}

	lines := span.SplitLines(payload)
	l := &lowerer{file: file, startLine: startLine, startColumn: startColumn, lines: lines}

	out := &Lowered{}
	for _, op := range doc.Operations {
		out.Operations = append(out.Operations, l.lowerOperation(op))
	}
	for _, frag := range doc.Fragments {
		out.Fragments = append(out.Fragments, l.lowerFragment(frag, payload))
	}
	return out, nil
}

type lowerer struct {
	file        string
	startLine   int
	startColumn int
	lines       []string
}

func (l *lowerer) rebase(p *ast.Position) model.Position {
	if p == nil {
		return model.Position{File: l.file, Line: l.startLine, Column: l.startColumn}
	}
	line := l.startLine + p.Line - 1
	column := p.Column
	if p.Line == 1 {
		column = l.startColumn + p.Column - 1
	}
	return model.Position{File: l.file, Line: line, Column: column}
}

// ignoredBefore reports whether the line immediately preceding p (in
// payload-internal line numbers, i.e. before rebasing) carries the
// ignore-comment marker.
func (l *lowerer) ignoredBefore(p *ast.Position) bool {
	if p == nil {
		return false
	}
	return span.IgnoredAtLine(l.lines, p.Line)
}

func (l *lowerer) lowerDirectives(dirs ast.DirectiveList) []model.Directive {
	out := make([]model.Directive, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, model.Directive{
			Kind:     classify(d),
			RawName:  d.Name,
			Position: l.rebase(d.Position),
		})
	}
	return out
}

// classify normalizes a directive by name: @catch, @throwOnFieldError,
// and @required (action-gated) are recognized; everything else is Other.
func classify(d *ast.Directive) model.DirectiveKind {
	switch d.Name {
	case "catch":
		return model.Catch
	case "throwOnFieldError":
		return model.ThrowOnFieldError
	case "required":
		if requiredActionIsThrow(d) {
			return model.RequiredThrow
		}
		return model.Other
	default:
		return model.Other
	}
}

func requiredActionIsThrow(d *ast.Directive) bool {
	for _, arg := range d.Arguments {
		if arg.Name != "action" {
			continue
		}
		if arg.Value == nil {
			return false
		}
		return arg.Value.Raw == "THROW"
	}
	return false
}

func operationKind(op ast.Operation) model.OperationKind {
	switch op {
	case ast.Mutation:
		return model.Mutation
	case ast.Subscription:
		return model.Subscription
	default:
		return model.Query
	}
}

func (l *lowerer) lowerOperation(op *ast.OperationDefinition) *model.OperationDef {
	return &model.OperationDef{
		Name:       op.Name,
		Kind:       operationKind(op.Operation),
		Directives: l.lowerDirectives(op.Directives),
		Selections: l.lowerSelectionSet(op.SelectionSet),
		File:       l.file,
		Position:   l.rebase(op.Position),
		IgnoreMark: l.ignoredBefore(op.Position),
	}
}

func (l *lowerer) lowerFragment(frag *ast.FragmentDefinition, payload string) *model.FragmentDef {
	return &model.FragmentDef{
		Name:          frag.Name,
		TypeCondition: frag.TypeCondition,
		Directives:    l.lowerDirectives(frag.Directives),
		Selections:    l.lowerSelectionSet(frag.SelectionSet),
		File:          l.file,
		Position:      l.rebase(frag.Position),
		IgnoreMark:    l.ignoredBefore(frag.Position),
		Raw:           payload,
	}
}

func (l *lowerer) lowerSelectionSet(set ast.SelectionSet) []model.Selection {
	out := make([]model.Selection, 0, len(set))
	for _, sel := range set {
		out = append(out, l.lowerSelection(sel))
	}
	return out
}

func (l *lowerer) lowerSelection(sel ast.Selection) model.Selection {
	switch s := sel.(type) {
	case *ast.Field:
		alias := s.Alias
		if alias == "" {
			alias = s.Name
		}
		return &model.Field{
			Name:       s.Name,
			Alias:      alias,
			Directives: l.lowerDirectives(s.Directives),
			Children:   l.lowerSelectionSet(s.SelectionSet),
			Position:   l.rebase(s.Position),
			IgnoreMark: l.ignoredBefore(s.Position),
		}
	case *ast.InlineFragment:
		return &model.InlineFragment{
			TypeCondition: s.TypeCondition,
			Directives:    l.lowerDirectives(s.Directives),
			Children:      l.lowerSelectionSet(s.SelectionSet),
			Position:      l.rebase(s.Position),
			IgnoreMark:    l.ignoredBefore(s.Position),
		}
	case *ast.FragmentSpread:
		return &model.FragmentSpread{
			Name:       s.Name,
			Directives: l.lowerDirectives(s.Directives),
			Position:   l.rebase(s.Position),
			IgnoreMark: l.ignoredBefore(s.Position),
		}
	default:
		// gqlparser's schema-less query parser only ever produces the
		// three selection kinds above.
		return &model.Field{Name: "", Position: l.rebase(nil)}
	}
}
