package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

// TypeScriptLoader loads a gqlsafeguard.config.ts by transpiling it to
// CommonJS with esbuild and evaluating the result in a spawned node
// process, the same two-step pipeline as the teacher's TypeScriptLoader.
type TypeScriptLoader struct{}

func (l *TypeScriptLoader) CanLoad(path string) bool {
	ext := extensionOf(path)
	return ext == ".ts" || ext == ".mts" || ext == ".cts"
}

func (l *TypeScriptLoader) Load(path string) (*ProjectConfig, error) {
	jsCode, err := l.transpile(path)
	if err != nil {
		return nil, fmt.Errorf("transpiling TypeScript: %w", err)
	}
	return evaluateConfigScript(jsCode, path)
}

func (l *TypeScriptLoader) transpile(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading TypeScript file: %w", err)
	}

	result := api.Transform(string(contents), api.TransformOptions{
		Loader:     api.LoaderTS,
		Format:     api.FormatCommonJS,
		Target:     api.ES2020,
		Sourcefile: path,
	})
	if len(result.Errors) > 0 {
		var msg string
		for _, e := range result.Errors {
			msg += fmt.Sprintf("%v: %s\n", e.Location, e.Text)
		}
		return "", fmt.Errorf("TypeScript compilation errors:\n%s", msg)
	}
	return string(result.Code), nil
}

// JavaScriptLoader loads a gqlsafeguard.config.js directly, skipping the
// esbuild transpile step the TypeScript loader needs.
type JavaScriptLoader struct{}

func (l *JavaScriptLoader) CanLoad(path string) bool {
	ext := extensionOf(path)
	return ext == ".js" || ext == ".mjs" || ext == ".cjs"
}

func (l *JavaScriptLoader) Load(path string) (*ProjectConfig, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading JavaScript file: %w", err)
	}
	return evaluateConfigScript(string(contents), path)
}

func hasNode() bool {
	return exec.Command("node", "--version").Run() == nil
}

// evaluateConfigScript runs jsCode (already CommonJS) under node inside a
// wrapper that prints its default export as JSON, then decodes that JSON
// into a ProjectConfig. originalPath's directory becomes node's working
// directory; the script itself runs from a temporary file, so relative
// require() paths resolve against the temp directory, not the config
// file's directory.
func evaluateConfigScript(jsCode, originalPath string) (*ProjectConfig, error) {
	if !hasNode() {
		return nil, fmt.Errorf("node not found on PATH; required to evaluate %s", originalPath)
	}

	const wrapper = `
%s

const exported = module.exports.default || module.exports;
console.log(JSON.stringify(exported));
`
	script := fmt.Sprintf(wrapper, jsCode)

	tempFile, err := os.CreateTemp("", "gql-safeguard-config-*.js")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.WriteString(script); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	tempFile.Close()

	cmd := exec.Command("node", tempFile.Name())
	cmd.Dir = filepath.Dir(originalPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("node execution error: %s\n%s", err, stderr.String())
	}

	var cfg ProjectConfig
	if err := json.Unmarshal(stdout.Bytes(), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config JSON: %w", err)
	}
	return &cfg, nil
}
