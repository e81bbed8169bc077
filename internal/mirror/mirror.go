package mirror

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/schollz/progressbar/v3"

	"github.com/open-edge-platform/trust-package-builder/internal/ospackage"
	"github.com/open-edge-platform/trust-package-builder/internal/ospackage/debutils"
	"github.com/open-edge-platform/trust-package-builder/internal/utils/logger"
	"github.com/open-edge-platform/trust-package-builder/internal/utils/network"
)

// Mirror addresses one suite/architecture of a Debian package mirror.
type Mirror struct {
	BaseURL string
	Suite   string
	Arch    string
	Client  *http.Client
}

// New builds a Mirror for the given base URL, suite and architecture.
func New(baseURL string, suite string, arch string) *Mirror {
	return &Mirror{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Suite:   suite,
		Arch:    arch,
		Client:  network.NewSecureHTTPClient(),
	}
}

// indexNames lists the compressed index variants mirrors commonly serve, in
// preference order.
var indexNames = []string{"Packages.xz", "Packages.gz"}

func (m *Mirror) indexURL(name string) string {
	return m.BaseURL + "/dists/" + m.Suite + "/main/binary-" + m.Arch + "/" + name
}

// FetchIndex downloads and parses the Packages index for the mirror's suite
// and architecture, trying each compressed variant in turn.
func (m *Mirror) FetchIndex() ([]ospackage.PackageInfo, error) {
	log := logger.Logger()

	var lastErr error
	for _, name := range indexNames {
		url := m.indexURL(name)
		resp, err := m.Client.Get(url)
		if err != nil {
			lastErr = fmt.Errorf("fetching %s: %w", url, err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("fetching %s: bad status %s", url, resp.Status)
			continue
		}

		log.Debugf("Using package index %s", url)
		reader, err := debutils.DecompressReader(name, resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		packages, err := debutils.ParsePackagesIndex(reader)
		reader.Close()
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		log.Infof("Parsed %d package entries from %s/%s", len(packages), m.Suite, m.Arch)
		return packages, nil
	}
	return nil, fmt.Errorf("no usable Packages index for %s/%s: %w", m.Suite, m.Arch, lastErr)
}

// VerifyInRelease fetches the suite's clearsigned InRelease file and checks
// its signature against the armored keyring at keyringPath.
func (m *Mirror) VerifyInRelease(keyringPath string) error {
	log := logger.Logger()

	keyringFile, err := os.Open(keyringPath)
	if err != nil {
		return fmt.Errorf("opening keyring %s: %w", keyringPath, err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		return fmt.Errorf("parsing keyring %s: %w", keyringPath, err)
	}

	url := m.BaseURL + "/dists/" + m.Suite + "/InRelease"
	resp, err := m.Client.Get(url)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: bad status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", url, err)
	}

	block, _ := clearsign.Decode(data)
	if block == nil {
		return fmt.Errorf("%s is not a clearsigned document", url)
	}

	signer, err := openpgp.CheckDetachedSignature(keyring,
		bytes.NewReader(block.Bytes), block.ArmoredSignature.Body, nil)
	if err != nil {
		return fmt.Errorf("InRelease signature verification failed: %w", err)
	}

	log.Infof("Verified InRelease signature for %s (key %X)", m.Suite, signer.PrimaryKey.KeyId)
	return nil
}

// Download fetches the package's .deb into destDir, showing a progress bar,
// and verifies its SHA256 digest against the index entry when present. It
// returns the path of the downloaded file.
func (m *Mirror) Download(pkg ospackage.PackageInfo, destDir string) (string, error) {
	log := logger.Logger()

	url := m.BaseURL + "/" + strings.TrimPrefix(pkg.URL, "/")
	name := path.Base(pkg.URL)

	resp, err := m.Client.Get(url)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: bad status %s", url, resp.Status)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", destDir, err)
	}
	destPath := filepath.Join(destDir, name)
	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer out.Close()

	bar := progressbar.DefaultBytes(resp.ContentLength,
		fmt.Sprintf("downloading %s", name))
	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hash, bar), resp.Body); err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	bar.Finish()

	if pkg.Checksum != "" {
		digest := hex.EncodeToString(hash.Sum(nil))
		if digest != pkg.Checksum {
			return "", fmt.Errorf("checksum mismatch for %s: got %s, want %s",
				name, digest, pkg.Checksum)
		}
		log.Debugf("Verified SHA256 of %s", name)
	}

	return destPath, nil
}
