package inspect

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"time"

	"github.com/open-edge-platform/trust-package-builder/internal/trustpackage"
)

// CertificateInfo summarizes one certificate from the bundle.
type CertificateInfo struct {
	Subject           string `json:"subject"`
	NotBefore         string `json:"notBefore"`
	NotAfter          string `json:"notAfter"`
	FingerprintSHA256 string `json:"fingerprintSHA256"`
}

// Report is the inspection result for a trust package artifact.
type Report struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Certificates []CertificateInfo `json:"certificates"`
}

// InspectPackage parses every certificate in the artifact's bundle.
func InspectPackage(pkg *trustpackage.Package) (*Report, error) {
	certs, err := inspectBundle([]byte(pkg.Bundle))
	if err != nil {
		return nil, err
	}
	return &Report{
		Name:         pkg.Name,
		Version:      pkg.Version,
		Certificates: certs,
	}, nil
}

func inspectBundle(bundle []byte) ([]CertificateInfo, error) {
	var infos []CertificateInfo
	rest := bundle
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate %d: %w", len(infos), err)
		}

		fingerprint := sha256.Sum256(cert.Raw)
		infos = append(infos, CertificateInfo{
			Subject:           cert.Subject.String(),
			NotBefore:         cert.NotBefore.UTC().Format(time.RFC3339),
			NotAfter:          cert.NotAfter.UTC().Format(time.RFC3339),
			FingerprintSHA256: fmt.Sprintf("%X", fingerprint),
		})
	}

	if len(infos) == 0 {
		return nil, fmt.Errorf("bundle contains no certificates")
	}
	return infos, nil
}

// RenderText writes a human-readable listing of the report.
func RenderText(w io.Writer, report *Report) error {
	if _, err := fmt.Fprintf(w, "%s %s: %d certificates\n",
		report.Name, report.Version, len(report.Certificates)); err != nil {
		return err
	}
	for _, cert := range report.Certificates {
		if _, err := fmt.Fprintf(w, "  %s\n    valid %s .. %s\n    sha256 %s\n",
			cert.Subject, cert.NotBefore, cert.NotAfter, cert.FingerprintSHA256); err != nil {
			return err
		}
	}
	return nil
}
