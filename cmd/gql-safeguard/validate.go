package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jantimon/gql-safeguard-go/internal/config"
	"github.com/jantimon/gql-safeguard-go/internal/diag"
	"github.com/jantimon/gql-safeguard-go/internal/walker"
	"github.com/jantimon/gql-safeguard-go/internal/reporter"
	"github.com/jantimon/gql-safeguard-go/pkg/safeguard"
	"github.com/spf13/cobra"
)

var (
	patternFlag   string
	ignoreFlag    string
	cwdFlag       string
	showTreesFlag bool
	jsonFlag      bool
	noColorFlag   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [PATH]",
	Short: "Scan PATH (default: current directory) and report unprotected throwing directives",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&patternFlag, "pattern", "", "comma-list of include globs (default \"**/*.ts,**/*.tsx\")")
	validateCmd.Flags().StringVar(&ignoreFlag, "ignore", "", "comma-list of additional exclude globs")
	validateCmd.Flags().StringVar(&cwdFlag, "cwd", "", "working directory for the scan (default: PATH or \".\")")
	validateCmd.Flags().BoolVar(&showTreesFlag, "show-trees", false, "include fragment dependency trees in the text output")
	validateCmd.Flags().BoolVar(&jsonFlag, "json", false, "emit machine-readable JSON to stdout")
	validateCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "disable ANSI color in the text report")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cwd := "."
	if len(args) == 1 {
		cwd = args[0]
	}
	if cwdFlag != "" {
		cwd = cwdFlag
	}

	cfg, err := resolveProjectConfig(cwd)
	if err != nil {
		return err
	}

	opts := safeguard.Options{Cwd: cwd, Patterns: cfg.Pattern, Ignores: cfg.Ignore}
	if patternFlag != "" {
		opts.Patterns = splitCSV(patternFlag)
	}
	if ignoreFlag != "" {
		opts.Ignores = splitCSV(ignoreFlag)
	}

	showTrees := cfg.ShowTrees || showTreesFlag
	asJSON := cfg.JSON || jsonFlag
	noColor := cfg.NoColor || noColorFlag
	isVerbose := cfg.Verbose || verbose

	result, err := safeguard.Run(opts)
	if err != nil {
		return fmt.Errorf("running validation: %w", err)
	}

	if isVerbose {
		for _, d := range result.Diagnostics {
			fmt.Fprintln(os.Stderr, d.String())
		}
	} else {
		for _, d := range result.Diagnostics {
			if d.Kind == diag.FileProcessed {
				continue
			}
			fmt.Fprintln(os.Stderr, d.String())
		}
	}

	if asJSON {
		report := reporter.BuildJSON(result.Operations, result.Registry, showTrees)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding JSON report: %w", err)
		}
	} else {
		color.NoColor = noColor || color.NoColor
		text := reporter.RenderReport(result.Operations, result.Registry, showTrees)
		if text == "" {
			color.Green("no unprotected throwing directives found across %d file(s)\n", result.FilesSeen)
		} else {
			fmt.Print(text)
		}
	}

	if result.HasErrors() {
		os.Exit(1)
	}
	return nil
}

// resolveProjectConfig loads --config if given, otherwise discovers a
// gqlsafeguard.config.* file starting from cwd; a missing config file is
// not an error, since every field has a usable default.
func resolveProjectConfig(cwd string) (*config.ProjectConfig, error) {
	if cfgFile != "" {
		cfg, err := config.LoadFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", cfgFile, err)
		}
		return cfg, nil
	}

	path, err := config.DiscoverConfig(cwd)
	if err != nil {
		return &config.ProjectConfig{Pattern: walker.DefaultPatterns, Ignore: walker.DefaultIgnores}, nil
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
