package container

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/open-edge-platform/trust-package-builder/internal/utils/logger"
	"github.com/open-edge-platform/trust-package-builder/internal/utils/shell"
)

// RuntimeEnvVar names the environment variable selecting the container
// runtime binary.
const RuntimeEnvVar = "CTR"

// DefaultRuntime is used when neither the flag nor RuntimeEnvVar is set.
const DefaultRuntime = "docker"

const (
	exportMount = "/trust-package-export"
	bundleFile  = "ca-certificates.crt"
	versionFile = "version.txt"
)

// ResolveRuntime picks the container runtime binary: explicit override first,
// then the CTR environment variable, then the template fallback, then the
// default.
func ResolveRuntime(override string, fallback string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv(RuntimeEnvVar); env != "" {
		return env
	}
	if fallback != "" {
		return fallback
	}
	return DefaultRuntime
}

// Runtime drives a container runtime binary (docker, podman, nerdctl).
type Runtime struct {
	Bin string
}

// NewRuntime checks that the runtime binary is available on the host.
func NewRuntime(bin string) (*Runtime, error) {
	if !shell.IsCommandExist(bin) {
		return nil, fmt.Errorf("container runtime %q not found on host", bin)
	}
	return &Runtime{Bin: bin}, nil
}

// InstallScript builds the shell script executed inside the source image:
// install the (optionally pinned) package, export the generated bundle and
// the installed package version to the bind mount.
func InstallScript(pkg string, pinnedVersion string) string {
	spec := pkg
	if pinnedVersion != "" {
		spec = pkg + "=" + pinnedVersion
	}
	steps := []string{
		"apt-get update",
		"apt-get install -y --no-install-recommends --allow-downgrades " + spec,
		"cp /etc/ssl/certs/ca-certificates.crt " + exportMount + "/" + bundleFile,
		"dpkg-query --showformat='${Version}' --show " + pkg + " > " + exportMount + "/" + versionFile,
	}
	return strings.Join(steps, " && ")
}

// singleQuote wraps s in single quotes for the host shell so the container's
// sh -c receives it verbatim. Single quotes inside s are carried through with
// the '\'' idiom.
func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// proxyFlags turns host proxy environment variables into runtime -e flags so
// apt inside the container can reach the mirrors.
func proxyFlags() string {
	proxyEnv := shell.GetOSProxyEnvirons()
	keys := make([]string, 0, len(proxyEnv))
	for key := range proxyEnv {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var flags strings.Builder
	for _, key := range keys {
		flags.WriteString(fmt.Sprintf(" -e %s=%s", key, proxyEnv[key]))
	}
	return flags.String()
}

// ExtractBundle runs the source image once with workDir bind-mounted,
// installing pkg (pinned to pinnedVersion when non-empty) and exporting the
// CA bundle. It returns the raw bundle contents and the installed Debian
// package version.
func (r *Runtime) ExtractBundle(image string, pkg string, pinnedVersion string, workDir string) (string, string, error) {
	log := logger.Logger()

	name := "trust-package-" + uuid.NewString()
	script := InstallScript(pkg, pinnedVersion)
	cmdStr := fmt.Sprintf("%s run --rm --name %s%s -v %s:%s %s /bin/sh -c %s",
		r.Bin, name, proxyFlags(), workDir, exportMount, image, singleQuote(script))

	log.Infof("Extracting %s from %s", pkg, image)
	if _, err := shell.ExecCmdWithStream(cmdStr, nil); err != nil {
		return "", "", fmt.Errorf("failed to extract trust bundle from %s: %w", image, err)
	}

	bundle, err := os.ReadFile(filepath.Join(workDir, bundleFile))
	if err != nil {
		return "", "", fmt.Errorf("reading exported bundle: %w", err)
	}
	version, err := os.ReadFile(filepath.Join(workDir, versionFile))
	if err != nil {
		return "", "", fmt.Errorf("reading exported package version: %w", err)
	}

	versionStr := strings.TrimSpace(string(version))
	if versionStr == "" {
		return "", "", fmt.Errorf("exported package version for %s is empty", pkg)
	}

	log.Infof("Extracted %s version %s (%d bytes bundle)", pkg, versionStr, len(bundle))
	return string(bundle), versionStr, nil
}
