package reporter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jantimon/gql-safeguard-go/internal/diag"
	"github.com/jantimon/gql-safeguard-go/internal/gqlsource"
	"github.com/jantimon/gql-safeguard-go/internal/model"
	"github.com/jantimon/gql-safeguard-go/internal/registry"
	"github.com/jantimon/gql-safeguard-go/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingest(t *testing.T, reg *registry.Registry, file, payload string) *model.OperationDef {
	t.Helper()
	res, err := gqlsource.Lower(file, payload, 1, 1)
	require.NoError(t, err)
	for _, f := range res.Fragments {
		reg.InsertFragment(f)
	}
	var op *model.OperationDef
	for _, o := range res.Operations {
		reg.InsertOperation(o)
		if op == nil {
			op = o
		}
	}
	return op
}

func TestRender_MarksUnprotectedField(t *testing.T) {
	reg := registry.New()
	op := ingest(t, reg, "a.ts", `query Q { user { avatar @throwOnFieldError } }`)
	findings := validator.ValidateOperation(op, reg, diag.NewSink())
	require.Len(t, findings, 1)

	tree := Render(op, findings, reg, false)
	assert.Contains(t, tree, "query Q")
	assert.Contains(t, tree, "❌ avatar [☄️ @throwOnFieldError]")
}

func TestRender_ExpandsFragmentContainingOffense(t *testing.T) {
	reg := registry.New()
	ingest(t, reg, "frag.ts", `fragment F on User { name @required(action: THROW) }`)
	op := ingest(t, reg, "a.ts", `query Q { user { ...F } }`)
	findings := validator.ValidateOperation(op, reg, diag.NewSink())
	require.Len(t, findings, 1)

	tree := Render(op, findings, reg, false)
	assert.Contains(t, tree, "...F")
	assert.Contains(t, tree, "Fragment Content:")
	assert.Contains(t, tree, "❌ name [☄️ @required(action: THROW)]")
}

func TestRender_NoExpansionWhenFragmentClean(t *testing.T) {
	reg := registry.New()
	ingest(t, reg, "frag.ts", `fragment F on User { name }`)
	op := ingest(t, reg, "a.ts", `query Q @catch { user { ...F } }`)
	findings := validator.ValidateOperation(op, reg, diag.NewSink())
	assert.Len(t, findings, 0)

	tree := Render(op, findings, reg, false)
	assert.NotContains(t, tree, "Fragment Content:")
}

func TestRender_ShowTreesForcesExpansionEvenWithoutOffense(t *testing.T) {
	reg := registry.New()
	ingest(t, reg, "frag.ts", `fragment F on User { name }`)
	op := ingest(t, reg, "a.ts", `query Q @catch { user { ...F } }`)
	findings := validator.ValidateOperation(op, reg, diag.NewSink())

	tree := Render(op, findings, reg, true)
	assert.Contains(t, tree, "Fragment Content:")
}

func TestRender_MarksOperationLevelThrow(t *testing.T) {
	reg := registry.New()
	op := ingest(t, reg, "a.ts", `query Q @throwOnFieldError { user { id } }`)
	findings := validator.ValidateOperation(op, reg, diag.NewSink())
	require.Len(t, findings, 1)

	tree := Render(op, findings, reg, false)
	assert.True(t, strings.HasPrefix(tree, "❌ query Q"))
}

func TestRender_MarksFragmentDefinitionLevelThrow(t *testing.T) {
	reg := registry.New()
	ingest(t, reg, "frag.ts", `fragment F on User @catch @throwOnFieldError { id }`)
	op := ingest(t, reg, "a.ts", `query Q { user { ...F } }`)
	findings := validator.ValidateOperation(op, reg, diag.NewSink())
	require.Len(t, findings, 1)

	tree := Render(op, findings, reg, false)
	assert.Contains(t, tree, "❌ Fragment Content:")
}

func TestBuildJSON_SchemaShape(t *testing.T) {
	reg := registry.New()
	op := ingest(t, reg, "a.ts", `query Q { user { avatar @throwOnFieldError } }`)
	findings := validator.ValidateOperation(op, reg, diag.NewSink())
	results := []validator.OperationResult{{Operation: op, Findings: findings}}

	report := BuildJSON(results, reg, false)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "a.ts", report.Errors[0].FileName)
	assert.Equal(t, "throwOnFieldError", report.Errors[0].Reason)
	assert.Equal(t, "Q", report.Errors[0].Name)
	assert.Equal(t, "avatar", report.Errors[0].Field)
	assert.NotEmpty(t, report.Errors[0].QueryTree)
	assert.NotEmpty(t, report.Hint)

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"fileName":"a.ts"`)
}

func TestBuildJSON_NoErrorsEmptyHint(t *testing.T) {
	reg := registry.New()
	op := ingest(t, reg, "a.ts", `query Q @catch { user { avatar @throwOnFieldError } }`)
	findings := validator.ValidateOperation(op, reg, diag.NewSink())
	results := []validator.OperationResult{{Operation: op, Findings: findings}}

	report := BuildJSON(results, reg, false)
	assert.Len(t, report.Errors, 0)
	assert.Equal(t, "", report.Hint)
}

func TestRenderReport_AppendsHintOnlyWhenErrors(t *testing.T) {
	reg := registry.New()
	clean := ingest(t, reg, "a.ts", `query Clean @catch { user { avatar @throwOnFieldError } }`)
	dirty := ingest(t, reg, "b.ts", `query Dirty { user { avatar @throwOnFieldError } }`)

	cleanResult := validator.OperationResult{Operation: clean, Findings: validator.ValidateOperation(clean, reg, diag.NewSink())}
	dirtyResult := validator.OperationResult{Operation: dirty, Findings: validator.ValidateOperation(dirty, reg, diag.NewSink())}

	onlyClean := RenderReport([]validator.OperationResult{cleanResult}, reg, false)
	assert.NotContains(t, onlyClean, "@catch is required")

	withDirty := RenderReport([]validator.OperationResult{cleanResult, dirtyResult}, reg, false)
	assert.Contains(t, withDirty, "@catch is required")
	assert.Contains(t, withDirty, "query Dirty")
}

func TestBuildRegistryDump(t *testing.T) {
	reg := registry.New()
	ingest(t, reg, "frag.ts", `fragment F on User { id }`)
	ingest(t, reg, "a.ts", `query Q { user { ...F @catch } }`)

	dump := BuildRegistryDump(reg)
	require.Len(t, dump.Operations, 1)
	require.Len(t, dump.Fragments, 1)
	assert.Equal(t, "Q", dump.Operations[0].Name)
	assert.Equal(t, "query", dump.Operations[0].Kind)
	require.Len(t, dump.Operations[0].Selections, 1)
	userSel := dump.Operations[0].Selections[0]
	require.Len(t, userSel.Children, 1)
	assert.Equal(t, "fragmentSpread", userSel.Children[0].Kind)
	assert.Contains(t, userSel.Children[0].Directives, "catch")

	raw, err := json.Marshal(dump)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name":"F"`)
}
