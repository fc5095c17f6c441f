// Package report formats a set of benchmark results as a table or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jantimon/gql-safeguard-go/benchmark/internal/runner"
)

type Reporter struct {
	jsonOutput bool
	outputPath string
}

func NewReporter(jsonOutput bool, outputPath string) *Reporter {
	return &Reporter{jsonOutput: jsonOutput, outputPath: outputPath}
}

type JSONReport struct {
	Timestamp  time.Time         `json:"timestamp"`
	System     SystemInfo        `json:"system"`
	Benchmarks []BenchmarkReport `json:"benchmarks"`
	Summary    Summary           `json:"summary"`
}

type SystemInfo struct {
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	CPUCount     int    `json:"cpu_count"`
	GoVersion    string `json:"go_version"`
}

type BenchmarkReport struct {
	Name               string   `json:"name"`
	FileCount          int      `json:"file_count"`
	TagCount           int      `json:"tag_count"`
	TotalLOC           int      `json:"total_loc"`
	GenerationTimeMs   int64    `json:"generation_time_ms"`
	ValidationTimeMs   int64    `json:"validation_time_ms"`
	MemoryUsedBytes    uint64   `json:"memory_used_bytes"`
	OperationCount     int      `json:"operation_count"`
	FindingCount       int      `json:"finding_count"`
	TagsPerSecond      float64  `json:"tags_per_second"`
	OperationsPerSecond float64 `json:"operations_per_second"`
	ErrorCount         int      `json:"error_count"`
	Errors             []string `json:"errors,omitempty"`
}

type Summary struct {
	TotalFiles          int     `json:"total_files"`
	TotalTags           int     `json:"total_tags"`
	TotalFindings        int     `json:"total_findings"`
	TotalValidationMs    int64   `json:"total_validation_ms"`
	AverageTagsPerSecond float64 `json:"average_tags_per_second"`
}

func (r *Reporter) Generate(results []*runner.BenchmarkResult) error {
	if r.jsonOutput {
		return r.generateJSON(results)
	}
	return r.generateTable(results)
}

func (r *Reporter) generateTable(results []*runner.BenchmarkResult) error {
	fmt.Println("\n" + strings.Repeat("=", 120))
	fmt.Println("BENCHMARK RESULTS")
	fmt.Println(strings.Repeat("=", 120))
	fmt.Printf("Generated at: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Test Set\tFiles\tTags\tLOC\tGenerate\tValidate\tTags/s\tFindings\tMemory\tStatus")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	var totalFiles, totalTags, totalLOC, totalFindings int
	var totalValidationTime time.Duration

	for _, res := range results {
		status := "ok"
		if len(res.Errors) > 0 {
			status = fmt.Sprintf("%d errors", len(res.Errors))
		}

		validateSeconds := res.ValidationTime.Seconds()
		tagsPerSec := float64(res.TagCount) / validateSeconds

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%v\t%.1f\t%d\t%s\t%s\n",
			res.Name,
			res.FileCount,
			res.TagCount,
			res.TotalLOC,
			res.GenerationTime.Round(time.Millisecond),
			res.ValidationTime.Round(time.Millisecond),
			tagsPerSec,
			res.FindingCount,
			formatBytes(res.MemoryUsed),
			status,
		)

		totalFiles += res.FileCount
		totalTags += res.TagCount
		totalLOC += res.TotalLOC
		totalFindings += res.FindingCount
		totalValidationTime += res.ValidationTime
	}

	fmt.Fprintln(w, strings.Repeat("-", 110))
	avgTagsPerSec := float64(totalTags) / totalValidationTime.Seconds()
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t\t%v\t%.1f\t%d\t\t\n",
		totalFiles, totalTags, totalLOC,
		totalValidationTime.Round(time.Millisecond), avgTagsPerSec, totalFindings,
	)
	w.Flush()

	for _, res := range results {
		if len(res.Errors) > 0 {
			fmt.Printf("\nerrors for %s:\n", res.Name)
			for _, err := range res.Errors {
				fmt.Printf("  - %v\n", err)
			}
		}
	}

	fmt.Println(strings.Repeat("=", 120))
	return nil
}

func (r *Reporter) generateJSON(results []*runner.BenchmarkResult) error {
	report := JSONReport{
		Timestamp:  time.Now(),
		System:     getSystemInfo(),
		Benchmarks: make([]BenchmarkReport, len(results)),
	}

	var totalFiles, totalTags, totalFindings int
	var totalValidationMs int64

	for i, res := range results {
		validateSeconds := res.ValidationTime.Seconds()

		br := BenchmarkReport{
			Name:                res.Name,
			FileCount:           res.FileCount,
			TagCount:            res.TagCount,
			TotalLOC:            res.TotalLOC,
			GenerationTimeMs:    res.GenerationTime.Milliseconds(),
			ValidationTimeMs:    res.ValidationTime.Milliseconds(),
			MemoryUsedBytes:     res.MemoryUsed,
			OperationCount:      res.OperationCount,
			FindingCount:        res.FindingCount,
			TagsPerSecond:       float64(res.TagCount) / validateSeconds,
			OperationsPerSecond: float64(res.OperationCount) / validateSeconds,
			ErrorCount:          len(res.Errors),
		}

		if len(res.Errors) > 0 {
			br.Errors = make([]string, len(res.Errors))
			for j, err := range res.Errors {
				br.Errors[j] = err.Error()
			}
		}

		report.Benchmarks[i] = br
		totalFiles += res.FileCount
		totalTags += res.TagCount
		totalFindings += res.FindingCount
		totalValidationMs += res.ValidationTime.Milliseconds()
	}

	totalValidationSeconds := float64(totalValidationMs) / 1000.0
	report.Summary = Summary{
		TotalFiles:           totalFiles,
		TotalTags:            totalTags,
		TotalFindings:        totalFindings,
		TotalValidationMs:    totalValidationMs,
		AverageTagsPerSecond: float64(totalTags) / totalValidationSeconds,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	if r.outputPath != "" {
		return os.WriteFile(r.outputPath, data, 0o644)
	}
	fmt.Println(string(data))
	return nil
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func getSystemInfo() SystemInfo {
	return SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUCount:     runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}
}
