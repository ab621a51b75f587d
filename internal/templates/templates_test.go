package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTemplates_Load(t *testing.T) {
	t.Parallel()

	tmpl, err := CheckTemplates()

	require.NoError(t, err)
	assert.NotNil(t, tmpl)

	// Verify all expected templates are loaded
	expectedTemplates := []string{
		"check.go",
		"check_test.go",
	}

	for _, name := range expectedTemplates {
		assert.NotNil(t, tmpl.Lookup(name), "template %s should be loaded", name)
	}
}

func TestTemplateFiles_Check(t *testing.T) {
	t.Parallel()

	files, err := TemplateFiles("check")

	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, "check.go")
	assert.Contains(t, files, "check_test.go")
}

func TestTemplateFiles_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := TemplateFiles("plugin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scaffold kind")
}

func TestCheckTemplates_Render(t *testing.T) {
	t.Parallel()

	tmpl, err := CheckTemplates()
	require.NoError(t, err)

	data := CheckData{
		Package:      "vendorchecks",
		CheckID:      "vendor/em_square",
		FuncName:     "emSquareCheck",
		Description:  "Checking the em square.",
		Rationale:    "A wrong em square breaks layout.",
		Severity:     6,
		Experimental: true,
		Conditions:   []string{"has_head_table", "not is_variable_font"},
	}

	var sb strings.Builder
	require.NoError(t, tmpl.ExecuteTemplate(&sb, "check.go", data))
	out := sb.String()

	assert.Contains(t, out, "package vendorchecks")
	assert.Contains(t, out, `ID:          "vendor/em_square"`)
	assert.Contains(t, out, `Description: "Checking the em square."`)
	assert.Contains(t, out, "values.MustNewSeverity(6)")
	assert.Contains(t, out, "Experimental: true")
	assert.Contains(t, out, `"has_head_table"`)
	assert.Contains(t, out, `"not is_variable_font"`)
	assert.Contains(t, out, "func emSquareCheck() *callable.Check")

	sb.Reset()
	require.NoError(t, tmpl.ExecuteTemplate(&sb, "check_test.go", data))
	testOut := sb.String()

	assert.Contains(t, testOut, "package vendorchecks")
	assert.Contains(t, testOut, "func Test_emSquareCheck")
	assert.Contains(t, testOut, `checktest.Run(t, profile, "vendor/em_square", seed)`)
}

func TestCheckTemplates_RenderMinimal(t *testing.T) {
	t.Parallel()

	tmpl, err := CheckTemplates()
	require.NoError(t, err)

	data := CheckData{
		Package:     "opentype",
		CheckID:     "opentype/minimal",
		FuncName:    "minimalCheck",
		Description: "A minimal check.",
	}

	var sb strings.Builder
	require.NoError(t, tmpl.ExecuteTemplate(&sb, "check.go", data))
	out := sb.String()

	assert.NotContains(t, out, "values.MustNewSeverity")
	assert.NotContains(t, out, "Experimental")
	assert.NotContains(t, out, "Conditions")
	assert.NotContains(t, out, `"github.com/fontkiln/fontkiln/internal/domain/values"`)
}
