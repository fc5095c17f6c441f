// Package runner drives a generator, runs the validation pipeline
// in-process against its output, and times/measures the result.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jantimon/gql-safeguard-go/benchmark/internal/generator"
	"github.com/jantimon/gql-safeguard-go/pkg/safeguard"
)

// BenchmarkResult captures timing, memory, and scan stats for one run.
type BenchmarkResult struct {
	Name           string
	FileCount      int
	TagCount       int
	TotalLOC       int
	GenerationTime time.Duration
	ValidationTime time.Duration
	MemoryUsed     uint64
	OperationCount int
	FindingCount   int
	Errors         []error
}

// Runner generates a synthetic tree and scans it with the validation
// pipeline, the way the teacher's runner shelled out to a built binary;
// here the pipeline runs in-process since it is a library this module
// owns directly.
type Runner struct {
	outputDir string
	keepFiles bool
	verbose   bool
}

func NewRunner(outputDir string, keepFiles, verbose bool) *Runner {
	return &Runner{outputDir: outputDir, keepFiles: keepFiles, verbose: verbose}
}

func (r *Runner) Run(ctx context.Context, name string, gen generator.Generator) (*BenchmarkResult, error) {
	result := &BenchmarkResult{Name: name}

	testDir := filepath.Join(r.outputDir, name)
	if err := os.RemoveAll(testDir); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("cleaning test directory: %w", err)
	}
	if err := os.MkdirAll(testDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating test directory: %w", err)
	}
	if !r.keepFiles {
		defer func() {
			if err := os.RemoveAll(testDir); err != nil {
				r.log("warning: failed to clean up test directory: %v", err)
			}
		}()
	}

	r.log("generating test files for %s...", name)
	genStart := time.Now()
	if err := gen.Generate(ctx, testDir); err != nil {
		return nil, fmt.Errorf("generating test files: %w", err)
	}
	result.GenerationTime = time.Since(genStart)

	stats := gen.GetStats()
	result.FileCount = stats.FileCount
	result.TagCount = stats.TagCount
	result.TotalLOC = stats.TotalLOC

	r.log("generated %d files, %d gql tags, %d lines", result.FileCount, result.TagCount, result.TotalLOC)

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	r.log("validating %s...", name)
	validateStart := time.Now()
	scan, err := safeguard.Run(safeguard.Options{Cwd: testDir})
	result.ValidationTime = time.Since(validateStart)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("validation failed: %w", err))
		return result, nil
	}

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)
	result.MemoryUsed = memAfter.Alloc - memBefore.Alloc

	result.OperationCount = len(scan.Operations)
	for _, op := range scan.Operations {
		result.FindingCount += len(op.Findings)
	}

	r.log("validation completed in %v (%d findings across %d operations)", result.ValidationTime, result.FindingCount, result.OperationCount)
	return result, nil
}

// RunAll runs every standard size in increasing order.
func (r *Runner) RunAll(ctx context.Context, seed int64) ([]*BenchmarkResult, error) {
	sizes := []generator.Size{generator.Tiny, generator.Mid, generator.Large}

	results := make([]*BenchmarkResult, 0, len(sizes))
	for _, size := range sizes {
		gen := generator.New(size, seed)
		result, err := r.Run(ctx, gen.Name(), gen)
		if err != nil {
			r.log("error running %s: %v", size, err)
			result = &BenchmarkResult{Name: gen.Name(), Errors: []error{err}}
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		fmt.Printf(format+"\n", args...)
	}
}
