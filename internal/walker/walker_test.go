package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("// stub\n"), 0o644))
	}
}

func TestWalk_FindsMatchingFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"a.ts",
		"src/b.tsx",
		"src/deep/nested/c.ts",
		"README.md",
	})

	files, errs := Walk(Options{Root: root})
	assert.Len(t, errs, 0)
	assert.Len(t, files, 3)
}

func TestWalk_PrunesDefaultIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"src/app.ts",
		"node_modules/react/index.ts",
		".git/hooks/pre-commit.ts",
	})

	files, _ := Walk(Options{Root: root})
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "app.ts")
}

func TestWalk_CustomPatternNarrowsMatches(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a.ts", "b.tsx"})

	files, _ := Walk(Options{Root: root, Patterns: []string{"**/*.tsx"}})
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "b.tsx")
}

func TestWalk_CustomIgnoreIsUnionedWithDefaults(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"src/keep.ts",
		"fixtures/skip.ts",
		"node_modules/lib/skip2.ts",
	})

	files, _ := Walk(Options{Root: root, Ignores: []string{"**/fixtures/**"}})
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "keep.ts")
}

func TestWalk_ReportsUnreadablePathWithoutAborting(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a.ts"})

	files, errs := Walk(Options{Root: filepath.Join(root, "missing")})
	assert.Len(t, files, 0)
	require.Len(t, errs, 1)
}

func TestReadFile_MissingFileReturnsIOError(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.ts"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "nope.ts")
}
