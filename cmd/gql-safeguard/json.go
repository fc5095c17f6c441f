package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jantimon/gql-safeguard-go/internal/reporter"
	"github.com/jantimon/gql-safeguard-go/pkg/safeguard"
	"github.com/spf13/cobra"
)

var jsonCmd = &cobra.Command{
	Use:   "json [PATH]",
	Short: "Emit the ingested operations and fragments, with directive annotations, as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJSON,
}

func init() {
	jsonCmd.Flags().StringVar(&patternFlag, "pattern", "", "comma-list of include globs (default \"**/*.ts,**/*.tsx\")")
	jsonCmd.Flags().StringVar(&ignoreFlag, "ignore", "", "comma-list of additional exclude globs")
	jsonCmd.Flags().StringVar(&cwdFlag, "cwd", "", "working directory for the scan (default: PATH or \".\")")
}

func runJSON(cmd *cobra.Command, args []string) error {
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

	result, err := safeguard.Run(opts)
	if err != nil {
		return fmt.Errorf("running scan: %w", err)
	}

	dump := reporter.BuildRegistryDump(result.Registry)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}
