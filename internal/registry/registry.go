// Package registry holds the concurrent, cross-file symbol tables built
// during ingestion: fragment name -> definition, and a list of operation
// definitions. Fragment writers are sharded by an FNV hash of the name so
// that concurrent inserts from different worker-pool goroutines rarely
// contend on the same lock; operations are appended to one list under a
// single mutex. After ingestion completes the registry is only read,
// though lookups still take the shard lock.
package registry

import (
	"hash/fnv"
	"sort"
	"sync"

	"github.com/jantimon/gql-safeguard-go/internal/model"
)

const shardCount = 32

// Conflict records two differing definitions of the same fragment name;
// it is a diagnosable condition, not a hard failure.
type Conflict struct {
	Name       string
	FirstFile  string
	SecondFile string
}

type fragmentShard struct {
	mu    sync.Mutex
	items map[string]*model.FragmentDef
}

// Registry is the authoritative, concurrency-safe store of every
// fragment and operation definition discovered across the project.
type Registry struct {
	fragShards [shardCount]*fragmentShard

	opMu  sync.Mutex
	ops   []*model.OperationDef

	conflictMu sync.Mutex
	conflicts  []Conflict
}

// New creates an empty Registry ready for concurrent ingestion.
func New() *Registry {
	r := &Registry{}
	for i := range r.fragShards {
		r.fragShards[i] = &fragmentShard{items: make(map[string]*model.FragmentDef)}
	}
	return r
}

func shardFor(name string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return int(h.Sum32()) % shardCount
}

// InsertFragment adds a fragment definition. Re-inserting a
// content-identical fragment under the same name is a no-op; inserting a
// different body under an already-used name records a Conflict, keeps the
// new definition (last-writer-wins for lookups), and returns that Conflict
// (and true) so the caller can attribute it to the exact file that
// triggered it without re-scanning the whole conflict list, which would
// race under concurrent ingestion.
func (r *Registry) InsertFragment(f *model.FragmentDef) (Conflict, bool) {
	shard := r.fragShards[shardFor(f.Name)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	existing, ok := shard.items[f.Name]
	if !ok {
		shard.items[f.Name] = f
		return Conflict{}, false
	}
	if existing.Raw == f.Raw {
		return Conflict{}, false
	}
	c := Conflict{Name: f.Name, FirstFile: existing.File, SecondFile: f.File}
	r.recordConflict(c)
	shard.items[f.Name] = f
	return c, true
}

func (r *Registry) recordConflict(c Conflict) {
	r.conflictMu.Lock()
	defer r.conflictMu.Unlock()
	r.conflicts = append(r.conflicts, c)
}

// LookupFragment returns the canonical fragment definition for name, or
// nil if none was ingested.
func (r *Registry) LookupFragment(name string) *model.FragmentDef {
	shard := r.fragShards[shardFor(name)]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.items[name]
}

// InsertOperation appends an operation definition to the registry's list.
// Nothing is keyed or deduplicated: every inserted definition is kept,
// including two with the same (file, name, position).
func (r *Registry) InsertOperation(op *model.OperationDef) {
	r.opMu.Lock()
	defer r.opMu.Unlock()
	r.ops = append(r.ops, op)
}

// Operations returns every ingested operation, sorted by (file, line,
// column, name) for deterministic iteration during validation.
func (r *Registry) Operations() []*model.OperationDef {
	r.opMu.Lock()
	ops := make([]*model.OperationDef, len(r.ops))
	copy(ops, r.ops)
	r.opMu.Unlock()

	sort.Slice(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Position.Line != b.Position.Line {
			return a.Position.Line < b.Position.Line
		}
		if a.Position.Column != b.Position.Column {
			return a.Position.Column < b.Position.Column
		}
		return a.Name < b.Name
	})
	return ops
}

// Fragments returns every canonical fragment definition, sorted by name.
func (r *Registry) Fragments() []*model.FragmentDef {
	var out []*model.FragmentDef
	for _, shard := range r.fragShards {
		shard.mu.Lock()
		for _, f := range shard.items {
			out = append(out, f)
		}
		shard.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Conflicts returns every recorded fragment-name conflict, sorted by
// name per the spec's ordering guarantee.
func (r *Registry) Conflicts() []Conflict {
	r.conflictMu.Lock()
	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	r.conflictMu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
