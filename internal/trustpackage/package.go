package trustpackage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PackageName is the constant artifact name consumed downstream.
const PackageName = "cert-manager-package-debian"

// versionSuffix is appended to the Debian package version to form the
// artifact version, leaving room for artifact-level revisions of the same
// upstream bundle.
const versionSuffix = ".0"

// Package is the trust package artifact: the CA bundle extracted from the
// Debian ca-certificates package plus its derived version.
type Package struct {
	Name    string `json:"name"`
	Bundle  string `json:"bundle"`
	Version string `json:"version"`
}

// New assembles an artifact from a raw PEM bundle and the installed Debian
// package version. The artifact version is the Debian version plus the fixed
// suffix.
func New(bundle string, debianVersion string) Package {
	return Package{
		Name:    PackageName,
		Bundle:  bundle,
		Version: debianVersion + versionSuffix,
	}
}

// NewPinned assembles an artifact for an explicitly requested target version.
// The artifact carries the target version exactly as given.
func NewPinned(bundle string, targetVersion string) Package {
	return Package{
		Name:    PackageName,
		Bundle:  bundle,
		Version: targetVersion,
	}
}

// DebianVersion strips the trailing patch component from a target artifact
// version, yielding the version to hand to the package installer. A target
// without a patch component is passed through unchanged.
func DebianVersion(targetVersion string) string {
	idx := strings.LastIndex(targetVersion, ".")
	if idx < 0 {
		return targetVersion
	}
	return targetVersion[:idx]
}

// Write serializes the artifact as JSON to path with a trailing newline.
func (p Package) Write(path string) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling trust package: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing trust package to %s: %w", path, err)
	}
	return nil
}

// Load reads and parses an artifact from path.
func Load(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trust package %s: %w", path, err)
	}
	var p Package
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing trust package %s: %w", path, err)
	}
	return &p, nil
}
