package debutils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/open-edge-platform/trust-package-builder/internal/ospackage"
)

// ParsePackagesIndex parses a Debian Packages index (the decompressed form)
// into package records. Stanzas are separated by blank lines; continuation
// lines and fields we do not need are skipped.
func ParsePackagesIndex(r io.Reader) ([]ospackage.PackageInfo, error) {
	var packages []ospackage.PackageInfo
	var current ospackage.PackageInfo

	flush := func() {
		if current.Name != "" {
			packages = append(packages, current)
		}
		current = ospackage.PackageInfo{}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			flush()
			continue
		}
		// Continuation lines belong to multi-line fields (e.g. Description).
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "Package":
			current.Name = value
		case "Version":
			current.Version = value
		case "Architecture":
			current.Arch = value
		case "Filename":
			current.URL = value
		case "SHA256":
			current.Checksum = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading Packages index: %w", err)
	}
	flush()

	return packages, nil
}

// ResolveLatest returns the highest-versioned entry for the named package.
func ResolveLatest(name string, packages []ospackage.PackageInfo) (ospackage.PackageInfo, bool) {
	var best ospackage.PackageInfo
	found := false
	for _, pkg := range packages {
		if pkg.Name != name {
			continue
		}
		if !found || CompareVersions(pkg.Version, best.Version) > 0 {
			best = pkg
			found = true
		}
	}
	return best, found
}

// ResolveExact returns the entry matching the named package at exactly the
// given Debian version.
func ResolveExact(name string, version string, packages []ospackage.PackageInfo) (ospackage.PackageInfo, bool) {
	for _, pkg := range packages {
		if pkg.Name == name && pkg.Version == version {
			return pkg, true
		}
	}
	return ospackage.PackageInfo{}, false
}
