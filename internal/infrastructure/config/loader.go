package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
)

// MaxDocumentSize caps how much of a configuration file the loader
// reads. Run configurations are small; anything larger is a mistake.
const MaxDocumentSize = 1 << 20

// Loader reads run configuration documents from disk.
type Loader struct{}

// NewLoader creates a document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads, validates and substitutes the document at path.
func (l *Loader) Load(path string) (*Document, error) {
	// Security: os.OpenRoot confines the open to the document's own
	// directory, preventing path traversal through symlinks.
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration directory: %w", err)
	}
	defer func() {
		_ = root.Close()
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return l.LoadFromReader(file)
}

// LoadFromReader reads a document from r. The pipeline is: size cap,
// schema validation on the raw YAML shape, decode, apiVersion gate,
// variable substitution. Schema first means a misshapen document fails
// with its YAML location, not with a Go decoding error.
func (l *Loader) LoadFromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, apperrors.NewConfigurationError("document",
			fmt.Sprintf("configuration exceeds %d bytes", MaxDocumentSize), nil)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewConfigurationError("document", "cannot parse YAML", err)
	}
	if err := validateShape(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewConfigurationError("document", "cannot decode configuration", err)
	}

	if err := checkAPIVersion(doc.APIVersion); err != nil {
		return nil, err
	}

	if err := NewVariableSubstitutor(doc.Vars).SubstituteDocument(&doc); err != nil {
		return nil, apperrors.NewConfigurationError("vars", "variable substitution failed", err)
	}

	return &doc, nil
}
