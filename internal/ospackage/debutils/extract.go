package debutils

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/blakesmith/ar"

	"github.com/open-edge-platform/trust-package-builder/internal/utils/logger"
)

// certDir is where the ca-certificates data member ships the individual PEM
// files that update-ca-certificates concatenates at install time.
const certDir = "usr/share/ca-certificates/"

// ExtractTrustBundle reads a ca-certificates .deb and rebuilds the
// concatenated CA bundle from the certificate files in its data member,
// sorted by path the way update-ca-certificates does.
func ExtractTrustBundle(debPath string) ([]byte, error) {
	log := logger.Logger()

	f, err := os.Open(debPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open deb file: %w", err)
	}
	defer f.Close()

	dataReader, dataName, err := openDataMember(f)
	if err != nil {
		return nil, err
	}
	defer dataReader.Close()

	certs, err := collectCertificates(tar.NewReader(dataReader))
	if err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", dataName, debPath, err)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found under %s in %s", certDir, debPath)
	}

	paths := make([]string, 0, len(certs))
	for path := range certs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var bundle []byte
	for _, path := range paths {
		content := certs[path]
		bundle = append(bundle, content...)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			bundle = append(bundle, '\n')
		}
	}

	log.Debugf("Rebuilt bundle from %d certificate files in %s", len(paths), debPath)
	return bundle, nil
}

// openDataMember walks the outer ar archive until it finds the data.tar
// member and returns a decompressing reader over it.
func openDataMember(r io.Reader) (io.ReadCloser, string, error) {
	arReader := ar.NewReader(r)
	for {
		header, err := arReader.Next()
		if err == io.EOF {
			return nil, "", fmt.Errorf("deb archive has no data.tar member")
		}
		if err != nil {
			return nil, "", fmt.Errorf("reading deb archive: %w", err)
		}

		name := strings.TrimSpace(header.Name)
		if !strings.HasPrefix(name, "data.tar") {
			continue
		}

		decompressed, err := DecompressReader(name, arReader)
		if err != nil {
			return nil, "", err
		}
		return decompressed, name, nil
	}
}

func collectCertificates(tarReader *tar.Reader) (map[string][]byte, error) {
	certs := make(map[string][]byte)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		path := strings.TrimPrefix(header.Name, "./")
		if !strings.HasPrefix(path, certDir) || !strings.HasSuffix(path, ".crt") {
			continue
		}

		content, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", header.Name, err)
		}
		certs[path] = content
	}
	return certs, nil
}
