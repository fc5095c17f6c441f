package safeguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestRun_FindsUnprotectedThrowAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "fragments/user.ts", "export const UserFields = gql`\n  fragment UserFields on User {\n    name @required(action: THROW)\n  }\n`;\n")
	writeFile(t, root, "pages/profile.ts", "export const ProfileQuery = gql`\n  query Profile {\n    user {\n      ...UserFields\n    }\n  }\n`;\n")

	result, err := Run(Options{Cwd: root})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesSeen)
	assert.True(t, result.HasErrors())

	var found bool
	for _, op := range result.Operations {
		if op.Operation.Name == "Profile" {
			require.Len(t, op.Findings, 1)
			found = true
		}
	}
	assert.True(t, found)
}

func TestRun_CatchProtectsAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "fragments/user.ts", "export const UserFields = gql`\n  fragment UserFields on User {\n    name @required(action: THROW)\n  }\n`;\n")
	writeFile(t, root, "pages/profile.ts", "export const ProfileQuery = gql`\n  query Profile {\n    user @catch {\n      ...UserFields\n    }\n  }\n`;\n")

	result, err := Run(Options{Cwd: root})
	require.NoError(t, err)
	assert.False(t, result.HasErrors())
}

func TestRun_IgnoresNonMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# not typescript\n")
	writeFile(t, root, "node_modules/lib/index.ts", "export const Q = gql`query Q { user { id @throwOnFieldError } }`;\n")
	writeFile(t, root, "src/app.ts", "export const Q2 = gql`query Q2 @catch { user { id } }`;\n")

	result, err := Run(Options{Cwd: root})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesSeen)
	assert.False(t, result.HasErrors())
}

func TestRun_ReportsMissingFragmentAsDiagnostic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "export const Q = gql`query Q { user { ...Ghost } }`;\n")

	result, err := Run(Options{Cwd: root})
	require.NoError(t, err)
	assert.False(t, result.HasErrors())

	var sawMissing bool
	for _, d := range result.Diagnostics {
		if d.Detail != "" && d.Kind == "MissingFragment" {
			sawMissing = true
		}
	}
	assert.True(t, sawMissing)
}
