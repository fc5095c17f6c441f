// Package diag collects the non-fatal diagnostics the pipeline produces
// while it walks a source tree: host parse failures, GraphQL parse
// failures, missing fragments, fragment-name conflicts, and (when
// --verbose is set) a line per file processed. None of these affect the
// validate exit code or the JSON error report; they are surfaced to
// stderr, the way the teacher's CLI writes ad hoc fmt.Fprintf(os.Stderr,
// ...) diagnostics rather than reaching for a logging framework.
package diag

import (
	"fmt"
	"sort"
	"sync"
)

// Kind identifies the taxonomy of a non-fatal diagnostic.
type Kind string

const (
	HostParseError       Kind = "HostParseError"
	GraphQLParseError    Kind = "GraphQLParseError"
	IOError              Kind = "IOError"
	MissingFragment      Kind = "MissingFragment"
	FragmentNameConflict Kind = "FragmentNameConflict"
	FileProcessed        Kind = "FileProcessed"
)

// Diagnostic is one non-fatal event.
type Diagnostic struct {
	Kind   Kind
	File   string
	Detail string
	Line   int
	Column int
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s: %s (%s:%d:%d)", d.Kind, d.Detail, d.File, d.Line, d.Column)
	}
	if d.File != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Detail, d.File)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
}

// Sink is a thread-safe diagnostic collector shared across the worker pool
// during both the ingestion and validation stages.
type Sink struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report records one diagnostic. Safe to call from any goroutine.
func (s *Sink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// Reportf is a convenience wrapper for the common file-scoped case.
func (s *Sink) Reportf(kind Kind, file string, format string, args ...interface{}) {
	s.Report(Diagnostic{Kind: kind, File: file, Detail: fmt.Sprintf(format, args...)})
}

// All returns a stable-ordered snapshot of every diagnostic reported so
// far: sorted by kind, then file, then detail so repeated runs against the
// same tree print identically regardless of goroutine scheduling.
func (s *Sink) All() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Detail < out[j].Detail
	})
	return out
}

// Empty reports whether no diagnostics have been recorded.
func (s *Sink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}
