package trustpackage

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/open-edge-platform/trust-package-builder/internal/utils/logger"
	"github.com/open-edge-platform/trust-package-builder/internal/utils/shell"
)

// ValidatorEnvVar names the environment variable holding the path to the
// external trust package validator binary.
const ValidatorEnvVar = "BIN_VALIDATE_TRUST_PACKAGE"

//go:embed schema.json
var schemaJSON string

var artifactSchema = jsonschema.MustCompileString("trustpackage/schema.json", schemaJSON)

// ValidateFile checks that the file at path is a valid trust package
// artifact: well-formed JSON carrying exactly the three documented keys.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading artifact %s: %w", path, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("artifact %s is not valid JSON: %w", path, err)
	}

	if err := artifactSchema.Validate(doc); err != nil {
		return fmt.Errorf("artifact %s failed schema validation: %w", path, err)
	}
	return nil
}

// RunExternalValidator invokes the external validator binary on the artifact
// at path. bin usually comes from the ValidatorEnvVar environment variable.
func RunExternalValidator(bin string, path string) error {
	log := logger.Logger()

	if bin == "" {
		return fmt.Errorf("%s is not set", ValidatorEnvVar)
	}

	log.Infof("Validating %s with %s", path, bin)
	if _, err := shell.ExecCmd(fmt.Sprintf("%q %q", bin, path), nil); err != nil {
		return fmt.Errorf("trust package validation failed: %w", err)
	}
	return nil
}
