// Package templates provides embedded templates for check scaffolding.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed check/*.tmpl
var checkTemplates embed.FS

// CheckData contains the data used to render check stub templates.
type CheckData struct {
	// Package is the Go package the stub lands in (e.g., "opentype")
	Package string
	// CheckID is the stable check identifier (e.g., "vendor/my_check")
	CheckID string
	// FuncName is the constructor name (e.g., "myCheckCheck")
	FuncName string
	// Description is the one-line check description
	Description string
	// Rationale explains why the check matters (optional)
	Rationale string
	// Severity grades the check 1..10; 0 leaves it ungraded
	Severity int
	// Experimental marks the check as not yet enforced
	Experimental bool
	// Conditions are the condition names gating the check
	Conditions []string
}

// CheckTemplates returns the parsed check stub templates.
func CheckTemplates() (*template.Template, error) {
	tmpl := template.New("")

	err := fs.WalkDir(checkTemplates, "check", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := checkTemplates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		// Use filename without .tmpl as template name
		name := strings.TrimPrefix(path, "check/")
		name = strings.TrimSuffix(name, ".tmpl")

		_, err = tmpl.New(name).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return tmpl, nil
}

// TemplateFiles returns the list of file names a scaffold consists of.
func TemplateFiles(kind string) ([]string, error) {
	switch kind {
	case "check":
		return []string{
			"check.go",
			"check_test.go",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported scaffold kind: %s", kind)
	}
}
