package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
)

//go:embed schema/document.schema.json
var documentSchemaJSON string

// documentSchema is compiled once; a broken embedded schema is a build
// defect, so compilation failure panics at startup.
var documentSchema = mustCompileSchema()

// supportedAPIVersions gates which document revisions this build reads.
const supportedAPIVersions = "^1.0"

var apiVersionConstraint = mustConstraint(supportedAPIVersions)

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("document.schema.json", strings.NewReader(documentSchemaJSON)); err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return compiler.MustCompile("document.schema.json")
}

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(fmt.Sprintf("config: apiVersion constraint: %v", err))
	}
	return c
}

// validateShape checks the decoded document against the embedded
// schema, before any Go types see it, so errors point at the YAML the
// user wrote.
func validateShape(raw any) error {
	if err := documentSchema.Validate(raw); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return formatSchemaError(verr)
		}
		return err
	}
	return nil
}

// formatSchemaError flattens a validation error tree into one message
// listing every leaf failure with its document location.
func formatSchemaError(err *jsonschema.ValidationError) error {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		messages = append(messages, err.Message)
	}
	return apperrors.NewConfigurationError("document",
		fmt.Sprintf("schema validation failed:\n  - %s", strings.Join(messages, "\n  - ")), nil)
}

// checkAPIVersion gates the document's declared format revision.
func checkAPIVersion(raw string) error {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return apperrors.NewConfigurationError("apiVersion",
			fmt.Sprintf("%q is not a semantic version", raw), err)
	}
	if !apiVersionConstraint.Check(v) {
		return apperrors.NewConfigurationError("apiVersion",
			fmt.Sprintf("version %s is not supported (this build reads %s)", raw, supportedAPIVersions), nil)
	}
	return nil
}
