// Package generator synthesizes TypeScript trees of gql-tagged operations
// and fragments at a chosen scale, mixing protected, unprotected, and
// ignore-marked fragment spreads so a benchmark run exercises the full pipeline
// the way a real component library would.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// Stats summarizes what a Generate call wrote to disk.
type Stats struct {
	FileCount      int
	TagCount       int
	TotalLOC       int
	UnprotectedTag int // tags expected to produce at least one finding; TreeGenerator leaves it 0
}

// Generator produces a synthetic project tree under dir.
type Generator interface {
	Generate(ctx context.Context, dir string) error
	GetStats() Stats
	Name() string
}

// Size picks the scale of a generated tree, the way the teacher's
// tiny/mid/large generators did with one file each; here it is a
// parameter on a single generator instead of three near-duplicate files.
type Size int

const (
	Tiny Size = iota
	Mid
	Large
)

func (s Size) String() string {
	switch s {
	case Mid:
		return "mid"
	case Large:
		return "large"
	default:
		return "tiny"
	}
}

// componentCount is the number of component files generated per size.
func (s Size) componentCount() int {
	switch s {
	case Mid:
		return 40
	case Large:
		return 400
	default:
		return 5
	}
}

// TreeGenerator is the single Generator implementation, parameterized by
// Size and a random seed for reproducibility.
type TreeGenerator struct {
	size  Size
	seed  int64
	rng   *rand.Rand
	stats Stats
}

func New(size Size, seed int64) *TreeGenerator {
	return &TreeGenerator{size: size, seed: seed, rng: rand.New(rand.NewSource(seed))}
}

func (g *TreeGenerator) Name() string { return g.size.String() + "-ts" }

func (g *TreeGenerator) GetStats() Stats { return g.stats }

// Generate writes a "fragments" package of shared fragments (two of the
// three with a throwing directive on one of their fields) and a
// "components" package of files spreading those fragments, roughly a third
// each spread plainly, spread with @catch, and spread under the ignore
// comment. The ignore comment marks only the spread itself, so a throwing
// field inside the fragment is still reported for those components.
func (g *TreeGenerator) Generate(ctx context.Context, dir string) error {
	fragNames, err := g.writeFragments(dir)
	if err != nil {
		return err
	}

	count := g.size.componentCount()
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := g.writeComponent(dir, i, fragNames); err != nil {
			return err
		}
	}
	return nil
}

func (g *TreeGenerator) writeFragments(dir string) ([]string, error) {
	names := []string{"UserBasicInfo", "PostSummary", "CommentDetails"}
	bodies := map[string]string{
		"UserBasicInfo": "fragment UserBasicInfo on User {\n  id\n  username\n  avatar @throwOnFieldError\n}",
		"PostSummary":   "fragment PostSummary on Post {\n  id\n  title\n  excerpt\n}",
		"CommentDetails": "fragment CommentDetails on Comment {\n  id\n  content\n  author {\n    id\n    username @required(action: THROW)\n  }\n}",
	}

	var b strings.Builder
	b.WriteString("import { gql } from '@apollo/client';\n\n")
	for _, name := range names {
		b.WriteString(fmt.Sprintf("export const %s = gql`\n  %s\n`;\n\n", name, bodies[name]))
	}

	if err := g.writeFile(filepath.Join(dir, "src", "fragments", "shared.ts"), b.String()); err != nil {
		return nil, err
	}
	return names, nil
}

func (g *TreeGenerator) writeComponent(dir string, i int, fragNames []string) error {
	name := fmt.Sprintf("Component%d", i)
	frag := fragNames[g.rng.Intn(len(fragNames))]

	mode := g.rng.Intn(3)
	var spread string
	switch mode {
	case 0: // unprotected: throwing fields inside the fragment (if any) are reported
		spread = fmt.Sprintf("...%s", frag)
	case 1: // protected
		spread = fmt.Sprintf("...%s @catch", frag)
	default: // ignore comment above the spread; it does not cover the fragment's fields
		spread = fmt.Sprintf("# gql-safeguard-ignore\n    ...%s", frag)
	}

	query := fmt.Sprintf(`query Get%s($id: ID!) {
  user(id: $id) {
    %s
  }
}`, name, spread)

	content := fmt.Sprintf(`import React from 'react';
import { gql } from '@apollo/client';

const Get%sQuery = gql`+"`"+`
  %s
`+"`"+`;

export const %s: React.FC<{ id: string }> = ({ id }) => {
  return null;
};
`, name, query, name)

	return g.writeFile(filepath.Join(dir, "src", "components", name+".tsx"), content)
}

func (g *TreeGenerator) writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	g.stats.FileCount++
	g.stats.TotalLOC += strings.Count(content, "\n") + 1
	g.stats.TagCount += strings.Count(content, "gql`")
	return os.WriteFile(path, []byte(content), 0o644)
}
