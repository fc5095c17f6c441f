package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverConfig_FindsFileInStartDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "gqlsafeguard.config.yaml"), []byte("pattern: []\n"), 0o644))

	found, err := DiscoverConfig(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "gqlsafeguard.config.yaml"), found)
}

func TestDiscoverConfig_WalksUpToAncestor(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "gqlsafeguard.config.yml"), []byte("verbose: true\n"), 0o644))

	found, err := DiscoverConfig(sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "gqlsafeguard.config.yml"), found)
}

func TestDiscoverConfig_NoneFoundReturnsError(t *testing.T) {
	root := t.TempDir()
	_, err := DiscoverConfig(root)
	assert.Error(t, err)
}

func TestYAMLLoader_ParsesFieldsAndExpandsEnvVars(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gqlsafeguard.config.yaml")
	os.Setenv("GQL_SAFEGUARD_TEST_CWD", "packages/app")
	defer os.Unsetenv("GQL_SAFEGUARD_TEST_CWD")

	content := `
pattern:
  - "**/*.ts"
  - "**/*.tsx"
ignore:
  - "**/__generated__/**"
cwd: "${GQL_SAFEGUARD_TEST_CWD}"
showTrees: true
verbose: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := &YAMLLoader{}
	assert.True(t, loader.CanLoad(path))

	cfg, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.ts", "**/*.tsx"}, cfg.Pattern)
	assert.Equal(t, []string{"**/__generated__/**"}, cfg.Ignore)
	assert.Equal(t, "packages/app", cfg.Cwd)
	assert.True(t, cfg.ShowTrees)
}

func TestYAMLLoader_RejectsNonYAMLExtension(t *testing.T) {
	loader := &YAMLLoader{}
	assert.False(t, loader.CanLoad("gqlsafeguard.config.ts"))
	assert.False(t, loader.CanLoad("gqlsafeguard.config.js"))
}

func TestLoaderRegistry_DispatchesByExtensionAndResolvesCwd(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gqlsafeguard.config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cwd: \"src\"\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src"), cfg.Cwd)
}

func TestLoaderRegistry_UnsupportedExtensionErrors(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gqlsafeguard.config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestTypeScriptLoader_EvaluatesExportedConfig(t *testing.T) {
	if !hasNode() {
		t.Skip("node is not available in this environment")
	}

	root := t.TempDir()
	path := filepath.Join(root, "gqlsafeguard.config.ts")
	content := `
const config = {
	pattern: ["**/*.tsx"],
	showTrees: true,
};

export default config;
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := &TypeScriptLoader{}
	require.True(t, loader.CanLoad(path))

	cfg, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.tsx"}, cfg.Pattern)
	assert.True(t, cfg.ShowTrees)
}

func TestJavaScriptLoader_EvaluatesExportedConfig(t *testing.T) {
	if !hasNode() {
		t.Skip("node is not available in this environment")
	}

	root := t.TempDir()
	path := filepath.Join(root, "gqlsafeguard.config.js")
	content := `
module.exports = {
	pattern: ["**/*.ts"],
	verbose: true,
};
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := &JavaScriptLoader{}
	require.True(t, loader.CanLoad(path))

	cfg, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.ts"}, cfg.Pattern)
	assert.True(t, cfg.Verbose)
}
