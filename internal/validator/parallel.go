package validator

import (
	"runtime"

	"github.com/jantimon/gql-safeguard-go/internal/diag"
	"github.com/jantimon/gql-safeguard-go/internal/model"
	"github.com/jantimon/gql-safeguard-go/internal/registry"
	"github.com/sourcegraph/conc/pool"
)

// OperationResult pairs an operation with the findings raised against
// it, still carrying each Finding's Selection node so a reporter can
// mark the tree before the final model.ValidationError is built.
type OperationResult struct {
	Operation *model.OperationDef
	Findings  []Finding
}

// ValidateAll runs ValidateOperation across every operation in reg in
// parallel, using a bounded worker pool the same way the example
// corpus's concurrent scanners do (pool.NewWithResults + WithMaxGoroutines).
// A panic inside one operation's validation is recovered and reported
// as a diagnostic for that operation rather than aborting the run.
func ValidateAll(reg *registry.Registry, sink *diag.Sink, maxGoroutines int) []OperationResult {
	ops := reg.Operations()
	if maxGoroutines <= 0 {
		maxGoroutines = runtime.GOMAXPROCS(0)
	}

	p := pool.NewWithResults[OperationResult]().WithMaxGoroutines(maxGoroutines)

	for _, op := range ops {
		op := op
		p.Go(func() (result OperationResult) {
			defer func() {
				if r := recover(); r != nil {
					sink.Report(diag.Diagnostic{
						Kind:   diag.IOError,
						File:   op.File,
						Detail: "recovered from panic while validating operation",
					})
					result = OperationResult{Operation: op}
				}
			}()
			return OperationResult{Operation: op, Findings: ValidateOperation(op, reg, sink)}
		})
	}

	return p.Wait()
}
