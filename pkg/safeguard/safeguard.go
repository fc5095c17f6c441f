// Package safeguard wires the pipeline together: walk the project tree,
// pluck gql/graphql tagged templates out of every matched file, lower and
// ingest them into a shared registry, then validate every operation's
// protection and produce a Result the CLI can render as text or JSON.
package safeguard

import (
	"fmt"
	"runtime"

	"github.com/jantimon/gql-safeguard-go/internal/diag"
	"github.com/jantimon/gql-safeguard-go/internal/gqlsource"
	"github.com/jantimon/gql-safeguard-go/internal/pluck"
	"github.com/jantimon/gql-safeguard-go/internal/registry"
	"github.com/jantimon/gql-safeguard-go/internal/validator"
	"github.com/jantimon/gql-safeguard-go/internal/walker"
	"github.com/sourcegraph/conc/pool"
)

// Options configures a single validation run.
type Options struct {
	Cwd           string
	Patterns      []string
	Ignores       []string
	MaxGoroutines int // 0 = GOMAXPROCS
}

// Result is everything a reporter needs to render text or JSON output.
type Result struct {
	Registry   *registry.Registry
	Operations []validator.OperationResult
	Diagnostics []diag.Diagnostic
	FilesSeen   int
}

// HasErrors reports whether any operation produced an unprotected-directive
// finding; the CLI uses this to pick its exit code.
func (r *Result) HasErrors() bool {
	for _, op := range r.Operations {
		if len(op.Findings) > 0 {
			return true
		}
	}
	return false
}

// Run executes the full pipeline: walk, extract, lower+ingest (in
// parallel, barrier at the end of ingestion so every fragment is visible
// before validation starts), then validate (in parallel).
func Run(opts Options) (*Result, error) {
	sink := diag.NewSink()
	maxGoroutines := opts.MaxGoroutines
	if maxGoroutines <= 0 {
		maxGoroutines = runtime.GOMAXPROCS(0)
	}

	files, ioErrs := walker.Walk(walker.Options{Root: opts.Cwd, Patterns: opts.Patterns, Ignores: opts.Ignores})
	for _, e := range ioErrs {
		sink.Report(diag.Diagnostic{Kind: diag.IOError, File: e.Path, Detail: e.Error()})
	}

	reg := registry.New()

	p := pool.New().WithMaxGoroutines(maxGoroutines)
	for _, file := range files {
		file := file
		p.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					sink.Report(diag.Diagnostic{Kind: diag.IOError, File: file, Detail: fmt.Sprintf("recovered from panic while ingesting file: %v", r)})
				}
			}()
			ingestFile(file, reg, sink)
		})
	}
	p.Wait()

	results := validator.ValidateAll(reg, sink, maxGoroutines)

	return &Result{
		Registry:    reg,
		Operations:  results,
		Diagnostics: sink.All(),
		FilesSeen:   len(files),
	}, nil
}

// ingestFile extracts every tagged-template payload from file, lowers it,
// and inserts the resulting operations/fragments into reg. Every failure
// mode is reported to sink and skips just the offending payload or file.
func ingestFile(file string, reg *registry.Registry, sink *diag.Sink) {
	content, ioErr := walker.ReadFile(file)
	if ioErr != nil {
		sink.Report(diag.Diagnostic{Kind: diag.IOError, File: file, Detail: ioErr.Error()})
		return
	}

	extractor := pluck.New()
	templates, err := extractor.Extract(content)
	if err != nil {
		sink.Report(diag.Diagnostic{Kind: diag.HostParseError, File: file, Detail: err.Error()})
		return
	}

	sink.Report(diag.Diagnostic{Kind: diag.FileProcessed, File: file, Detail: fmt.Sprintf("%d payload(s) found", len(templates))})

	for _, tmpl := range templates {
		if tmpl.Interpolated {
			continue
		}
		lowered, err := gqlsource.Lower(file, tmpl.Content, tmpl.StartLine, tmpl.StartColumn)
		if err != nil {
			sink.Report(diag.Diagnostic{Kind: diag.GraphQLParseError, File: file, Detail: err.Error(), Line: tmpl.StartLine})
			continue
		}
		for _, frag := range lowered.Fragments {
			if conflict, ok := reg.InsertFragment(frag); ok {
				sink.Report(diag.Diagnostic{
					Kind:   diag.FragmentNameConflict,
					File:   file,
					Detail: fmt.Sprintf("fragment %q redefined (first seen in %s)", conflict.Name, conflict.FirstFile),
				})
			}
		}
		for _, op := range lowered.Operations {
			reg.InsertOperation(op)
		}
	}
}
