package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/jantimon/gql-safeguard-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FragmentIdempotentInsert(t *testing.T) {
	r := New()
	f := &model.FragmentDef{Name: "F", File: "a.ts", Raw: "fragment F on User { id }"}
	r.InsertFragment(f)
	r.InsertFragment(&model.FragmentDef{Name: "F", File: "a.ts", Raw: "fragment F on User { id }"})

	assert.Len(t, r.Conflicts(), 0)
	require.NotNil(t, r.LookupFragment("F"))
}

func TestRegistry_FragmentConflict(t *testing.T) {
	r := New()
	r.InsertFragment(&model.FragmentDef{Name: "F", File: "a.ts", Raw: "fragment F on User { id }"})
	r.InsertFragment(&model.FragmentDef{Name: "F", File: "b.ts", Raw: "fragment F on User { id name }"})

	conflicts := r.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "F", conflicts[0].Name)
}

func TestRegistry_LookupMissing(t *testing.T) {
	r := New()
	assert.Nil(t, r.LookupFragment("Missing"))
}

func TestRegistry_OperationsSortedDeterministically(t *testing.T) {
	r := New()
	r.InsertOperation(&model.OperationDef{Name: "B", File: "z.ts", Position: model.Position{Line: 1, Column: 1}})
	r.InsertOperation(&model.OperationDef{Name: "A", File: "a.ts", Position: model.Position{Line: 5, Column: 1}})
	r.InsertOperation(&model.OperationDef{Name: "C", File: "a.ts", Position: model.Position{Line: 1, Column: 1}})

	ops := r.Operations()
	require.Len(t, ops, 3)
	assert.Equal(t, "C", ops[0].Name)
	assert.Equal(t, "A", ops[1].Name)
	assert.Equal(t, "B", ops[2].Name)
}

func TestRegistry_ConcurrentInserts(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.InsertFragment(&model.FragmentDef{
				Name: fmt.Sprintf("Frag%d", i%20),
				File: fmt.Sprintf("file%d.ts", i),
				Raw:  fmt.Sprintf("fragment Frag%d on User { id }", i%20),
			})
			r.InsertOperation(&model.OperationDef{
				Name: fmt.Sprintf("Op%d", i),
				File: fmt.Sprintf("file%d.ts", i),
			})
		}()
	}
	wg.Wait()

	assert.Len(t, r.Operations(), 200)
	assert.LessOrEqual(t, len(r.Fragments()), 20)
}
