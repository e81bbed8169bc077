package debutils_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/open-edge-platform/trust-package-builder/internal/ospackage"
	"github.com/open-edge-platform/trust-package-builder/internal/ospackage/debutils"
)

const samplePackagesIndex = `Package: ca-certificates
Version: 20230311+deb12u1
Architecture: all
Depends: openssl (>= 1.1.1), debconf (>= 0.5) | debconf-2.0
Filename: pool/main/c/ca-certificates/ca-certificates_20230311+deb12u1_all.deb
SHA256: 5308b9bd88eebe2a48be3168cb3d87677aaec5da9c63ad0cf561a29b8219115c
Description: Common CA certificates
 Contains the certificate authorities shipped with Mozilla's browser.
 .
 This is a multi-line description.
Maintainer: Julien Cristau <jcristau@debian.org>

Package: openssl
Version: 3.0.11-1~deb12u2
Architecture: amd64
Filename: pool/main/o/openssl/openssl_3.0.11-1~deb12u2_amd64.deb
SHA256: fedcba0987654321fedcba0987654321fedcba0987654321fedcba0987654321
Description: Secure Sockets Layer toolkit

`

// TestParsePackagesIndex tests parsing of Debian repository metadata
func TestParsePackagesIndex(t *testing.T) {
	packages, err := debutils.ParsePackagesIndex(strings.NewReader(samplePackagesIndex))
	if err != nil {
		t.Fatalf("ParsePackagesIndex failed: %v", err)
	}

	expected := []ospackage.PackageInfo{
		{
			Name:     "ca-certificates",
			Version:  "20230311+deb12u1",
			Arch:     "all",
			URL:      "pool/main/c/ca-certificates/ca-certificates_20230311+deb12u1_all.deb",
			Checksum: "5308b9bd88eebe2a48be3168cb3d87677aaec5da9c63ad0cf561a29b8219115c",
		},
		{
			Name:     "openssl",
			Version:  "3.0.11-1~deb12u2",
			Arch:     "amd64",
			URL:      "pool/main/o/openssl/openssl_3.0.11-1~deb12u2_amd64.deb",
			Checksum: "fedcba0987654321fedcba0987654321fedcba0987654321fedcba0987654321",
		},
	}
	if diff := cmp.Diff(expected, packages); diff != "" {
		t.Errorf("Parsed packages mismatch (-want +got):\n%s", diff)
	}
}

// TestResolveLatest tests version comparison through package resolution
func TestResolveLatest(t *testing.T) {
	testCases := []struct {
		name     string
		packages []ospackage.PackageInfo
		want     string
		expected string
	}{
		{
			name: "basic version comparison",
			packages: []ospackage.PackageInfo{
				{Name: "pkg", Version: "1.0"},
				{Name: "pkg", Version: "1.1"},
			},
			want:     "pkg",
			expected: "1.1",
		},
		{
			name: "debian version with epoch",
			packages: []ospackage.PackageInfo{
				{Name: "pkg", Version: "2.0"},
				{Name: "pkg", Version: "1:1.0"},
			},
			want:     "pkg",
			expected: "1:1.0", // Epoch makes 1:1.0 > 2.0
		},
		{
			name: "tilde version handling",
			packages: []ospackage.PackageInfo{
				{Name: "pkg", Version: "1.0"},
				{Name: "pkg", Version: "1.0~rc1"},
			},
			want:     "pkg",
			expected: "1.0", // 1.0 > 1.0~rc1
		},
		{
			name: "binNMU suffix",
			packages: []ospackage.PackageInfo{
				{Name: "pkg", Version: "6.6.4-5+b1"},
				{Name: "pkg", Version: "6.6.4-5"},
			},
			want:     "pkg",
			expected: "6.6.4-5+b1",
		},
		{
			name: "other packages ignored",
			packages: []ospackage.PackageInfo{
				{Name: "other", Version: "9.9"},
				{Name: "pkg", Version: "1.0"},
			},
			want:     "pkg",
			expected: "1.0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pkg, found := debutils.ResolveLatest(tc.want, tc.packages)
			if !found {
				t.Fatal("Package not found")
			}
			if pkg.Version != tc.expected {
				t.Errorf("Expected version %s, got %s", tc.expected, pkg.Version)
			}
		})
	}
}

func TestResolveLatestMissingPackage(t *testing.T) {
	if _, found := debutils.ResolveLatest("nope", nil); found {
		t.Error("Expected package not to be found")
	}
}

func TestResolveExact(t *testing.T) {
	packages := []ospackage.PackageInfo{
		{Name: "ca-certificates", Version: "20210119"},
		{Name: "ca-certificates", Version: "20230311"},
	}

	pkg, found := debutils.ResolveExact("ca-certificates", "20210119", packages)
	if !found {
		t.Fatal("Expected exact version to be found")
	}
	if pkg.Version != "20210119" {
		t.Errorf("Expected version 20210119, got %s", pkg.Version)
	}

	if _, found := debutils.ResolveExact("ca-certificates", "19700101", packages); found {
		t.Error("Expected missing version not to be found")
	}
}
