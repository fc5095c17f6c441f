// Package walker discovers the TypeScript/TSX source files a project scan
// should read, the way the teacher's loader resolves include/exclude glob
// patterns (internal/loader/documents_file.go) but walking the tree itself
// with doublestar so "**" patterns actually recurse, instead of relying on
// path/filepath.Glob's single-level "*".
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnores are unioned with any caller-supplied exclude patterns,
// mirroring the defaults named in the CLI's --ignore flag.
var DefaultIgnores = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/.yarn/**",
	"**/.swc/**",
	"**/*.xcassets/**",
}

// DefaultPatterns is the include-glob default when --pattern is omitted.
var DefaultPatterns = []string{"**/*.ts", "**/*.tsx"}

// Options configures a single walk.
type Options struct {
	Root     string   // directory to walk; files are matched with paths relative to this
	Patterns []string // include globs, relative to Root
	Ignores  []string // additional exclude globs, unioned with DefaultIgnores
}

// IOError wraps a single path's failure to stat or read during the walk;
// it is collected, not fatal, so one unreadable file never aborts a scan.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Walk returns every regular file under opts.Root matching at least one
// include pattern and no ignore pattern, sorted lexically for deterministic
// downstream ordering. Unreadable entries are appended to errs rather than
// aborting the scan.
func Walk(opts Options) (files []string, errs []*IOError) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	ignores := append(append([]string{}, DefaultIgnores...), opts.Ignores...)

	root := opts.Root
	if root == "" {
		root = "."
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, &IOError{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && matchesAny(rel, dirIgnorePatterns(ignores)) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(rel, ignores) {
			return nil
		}
		if !matchesAny(rel, patterns) {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			errs = append(errs, &IOError{Path: path, Err: statErr})
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		errs = append(errs, &IOError{Path: root, Err: walkErr})
	}

	return files, errs
}

// dirIgnorePatterns strips a trailing "/**" from each pattern so it can be
// matched against a bare directory path (no trailing slash), letting
// "**/node_modules/**" prune the node_modules directory itself rather than
// only the files beneath it.
func dirIgnorePatterns(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		if trimmed, ok := trimSuffix(p, "/**"); ok {
			out[i] = trimmed
		} else {
			out[i] = p
		}
	}
	return out
}

func trimSuffix(s, suffix string) (string, bool) {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)], true
	}
	return s, false
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, path)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// ReadFile reads a single file's content, translating a missing/unreadable
// file into the same *IOError shape Walk produces so callers can funnel
// both through one diagnostic path.
func ReadFile(path string) (string, *IOError) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	return string(b), nil
}
