package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/open-edge-platform/trust-package-builder/internal/trustpackage"
)

func writeValidArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package.json")
	pkg := trustpackage.New("PEM DATA", "20230311")
	if err := pkg.Write(path); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}
	return path
}

func TestValidateCommandAcceptsValidArtifact(t *testing.T) {
	t.Setenv(trustpackage.ValidatorEnvVar, "")

	if err := runRoot("validate", writeValidArtifact(t)); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
}

func TestValidateCommandRunsExternalValidator(t *testing.T) {
	t.Setenv(trustpackage.ValidatorEnvVar, "true")
	if err := runRoot("validate", writeValidArtifact(t)); err != nil {
		t.Fatalf("validate with external validator failed: %v", err)
	}

	t.Setenv(trustpackage.ValidatorEnvVar, "false")
	if err := runRoot("validate", writeValidArtifact(t)); err == nil {
		t.Fatal("Expected failing external validator to propagate")
	}
}

func TestValidateCommandRequiresArgument(t *testing.T) {
	out, err := runRootCapture("validate")
	if err == nil {
		t.Fatal("Expected error for missing artifact argument")
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("Expected usage message for missing argument, got: %s", out)
	}
}

func TestValidateCommandRejectsBadArtifact(t *testing.T) {
	t.Setenv(trustpackage.ValidatorEnvVar, "")

	path := filepath.Join(t.TempDir(), "package.json")
	content := `{"name":"cert-manager-package-debian","bundle":"PEM","version":"1.0","extra":true}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	if err := runRoot("validate", path); err == nil {
		t.Fatal("Expected schema validation to fail")
	}
}
