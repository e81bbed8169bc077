package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/open-edge-platform/trust-package-builder/internal/trustpackage"
)

//go:embed schema.json
var schemaJSON string

var templateSchema = jsonschema.MustCompileString("config/schema.json", schemaJSON)

// MirrorConfig selects the Debian mirror used by offline fetches.
type MirrorConfig struct {
	URL     string `yaml:"url"`
	Suite   string `yaml:"suite"`
	Arch    string `yaml:"arch"`
	Keyring string `yaml:"keyring"`
}

// BuildTemplate is the optional YAML build template. Environment variables
// and command-line flags override its values.
type BuildTemplate struct {
	Runtime   string       `yaml:"runtime"`
	Package   string       `yaml:"package"`
	Validator string       `yaml:"validator"`
	Mirror    MirrorConfig `yaml:"mirror"`
}

// DefaultTemplate returns the built-in defaults. Runtime is left empty so
// container.ResolveRuntime owns the docker default.
func DefaultTemplate() *BuildTemplate {
	return &BuildTemplate{
		Package: "ca-certificates",
		Mirror: MirrorConfig{
			URL:   "https://deb.debian.org/debian",
			Suite: "stable",
			Arch:  "amd64",
		},
	}
}

// LoadTemplate reads a build template, validates it against the embedded
// schema and merges it over the defaults.
func LoadTemplate(path string) (*BuildTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}

	if err := validateTemplate(data); err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}

	template := DefaultTemplate()
	if err := yaml.Unmarshal(data, template); err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}
	return template, nil
}

func validateTemplate(data []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting template to JSON: %w", err)
	}

	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("parsing template JSON: %w", err)
	}
	if doc == nil {
		return nil
	}

	if err := templateSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto the template. The container
// runtime is resolved separately via container.ResolveRuntime so flags keep
// precedence over the CTR environment variable.
func (t *BuildTemplate) ApplyEnv() {
	if validator := os.Getenv(trustpackage.ValidatorEnvVar); validator != "" {
		t.Validator = validator
	}
}
