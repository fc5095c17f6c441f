package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:     "gql-safeguard",
	Short:   "Verify every throwing GraphQL directive is protected by @catch",
	Long: `gql-safeguard scans a TypeScript/TSX project for gql/graphql tagged
template literals and checks that every @throwOnFieldError and
@required(action: THROW) directive is reachable only through an enclosing
@catch, following fragment spreads across files.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: auto-discover gqlsafeguard.config.{yaml,yml,ts,js})")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "emit per-file processing diagnostics to stderr")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(jsonCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
