package main

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/open-edge-platform/trust-package-builder/internal/inspect"
	"github.com/open-edge-platform/trust-package-builder/internal/trustpackage"
)

func writeInspectableArtifact(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Inspect Test Root CA"},
		NotBefore:             time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:              time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}
	bundle := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))

	path := filepath.Join(t.TempDir(), "package.json")
	pkg := trustpackage.New(bundle, "20230311")
	if err := pkg.Write(path); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}
	return path
}

func TestInspectCommandTextOutput(t *testing.T) {
	path := writeInspectableArtifact(t)

	root := createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"inspect", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	if !strings.Contains(out.String(), "Inspect Test Root CA") {
		t.Errorf("Expected subject in text output, got:\n%s", out.String())
	}
}

func TestInspectCommandJSONOutput(t *testing.T) {
	path := writeInspectableArtifact(t)

	root := createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"inspect", "--format", "json", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	var report inspect.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, out.String())
	}
	if report.Name != trustpackage.PackageName {
		t.Errorf("Expected report name %q, got %q", trustpackage.PackageName, report.Name)
	}
	if len(report.Certificates) != 1 {
		t.Fatalf("Expected 1 certificate, got %d", len(report.Certificates))
	}
	if len(report.Certificates[0].FingerprintSHA256) != 64 {
		t.Errorf("Unexpected fingerprint: %q", report.Certificates[0].FingerprintSHA256)
	}
}

func TestInspectCommandRejectsUnknownFormat(t *testing.T) {
	path := writeInspectableArtifact(t)

	if err := runRoot("inspect", "--format", "xml", path); err == nil {
		t.Fatal("Expected error for unknown format")
	}
}
