// Command benchmark generates synthetic TypeScript trees at several
// scales and times the validation pipeline against each.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jantimon/gql-safeguard-go/benchmark/internal/generator"
	"github.com/jantimon/gql-safeguard-go/benchmark/internal/report"
	"github.com/jantimon/gql-safeguard-go/benchmark/internal/runner"
)

var (
	testSet    string
	outputDir  string
	keepFiles  bool
	jsonOutput bool
	jsonPath   string
	verbose    bool
	seed       int64
)

func init() {
	flag.StringVar(&testSet, "test-set", "all", "test set to run: tiny, mid, large, or all")
	flag.StringVar(&outputDir, "output-dir", "benchmark-output", "directory for generated test files")
	flag.BoolVar(&keepFiles, "keep-files", false, "don't delete generated files after the run")
	flag.BoolVar(&jsonOutput, "json", false, "output results as JSON")
	flag.StringVar(&jsonPath, "json-path", "", "path to save JSON output (defaults to stdout)")
	flag.BoolVar(&verbose, "verbose", true, "verbose output")
	flag.Int64Var(&seed, "seed", 1, "random seed for generated trees")
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\ninterrupted, cleaning up...")
		cancel()
	}()

	r := runner.NewRunner(outputDir, keepFiles, verbose)

	var results []*runner.BenchmarkResult
	switch strings.ToLower(testSet) {
	case "all":
		var err error
		results, err = r.RunAll(ctx, seed)
		if err != nil {
			return err
		}
	case "tiny", "mid", "large":
		size := map[string]generator.Size{"tiny": generator.Tiny, "mid": generator.Mid, "large": generator.Large}[strings.ToLower(testSet)]
		gen := generator.New(size, seed)
		result, err := r.Run(ctx, gen.Name(), gen)
		if err != nil {
			return err
		}
		results = []*runner.BenchmarkResult{result}
	default:
		return fmt.Errorf("unknown test set: %s (use tiny, mid, large, or all)", testSet)
	}

	reporter := report.NewReporter(jsonOutput, jsonPath)
	if err := reporter.Generate(results); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	if !jsonOutput {
		fmt.Println("\nbenchmark completed")
		if keepFiles {
			if absPath, err := filepath.Abs(outputDir); err == nil {
				fmt.Printf("test files kept in: %s\n", absPath)
			}
		}

		errorCount := 0
		for _, res := range results {
			errorCount += len(res.Errors)
		}
		if errorCount > 0 {
			fmt.Printf("\nwarning: %d errors encountered during benchmarks\n", errorCount)
			return fmt.Errorf("%d errors encountered", errorCount)
		}
	}

	return nil
}
