package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/trust-package-builder/internal/mirror"
	"github.com/open-edge-platform/trust-package-builder/internal/ospackage"
	"github.com/open-edge-platform/trust-package-builder/internal/ospackage/debutils"
	"github.com/open-edge-platform/trust-package-builder/internal/trustpackage"
	"github.com/open-edge-platform/trust-package-builder/internal/utils/logger"
)

// Fetch command flags
var (
	fetchSuite        string
	fetchArch         string
	fetchKeyring      string
	fetchPackage      string
	fetchTemplate     string
	fetchSkipValidate bool
	fetchKeepWorkdir  bool
)

// createFetchCommand creates the fetch subcommand
func createFetchCommand() *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch MIRROR_URL DEST_FILE [TARGET_VERSION]",
		Short: "builds a trust package directly from a Debian mirror",
		Long: `Fetch resolves the ca-certificates package in the mirror's
		Packages index, downloads the .deb, rebuilds the CA bundle from
		its data member and writes the same JSON trust package artifact
		the build command produces, without needing a container runtime.
		With --keyring the mirror's InRelease file is verified first.`,
		Args: cobra.RangeArgs(2, 3),

		RunE: executeFetch,
	}

	fetchCmd.Flags().StringVar(&fetchSuite, "suite", "",
		"Mirror suite (default: stable)")
	fetchCmd.Flags().StringVar(&fetchArch, "arch", "",
		"Package architecture (default: amd64)")
	fetchCmd.Flags().StringVar(&fetchKeyring, "keyring", "",
		"Armored OpenPGP keyring for InRelease verification")
	fetchCmd.Flags().StringVar(&fetchPackage, "package", "",
		"Debian package carrying the trust bundle (default: ca-certificates)")
	fetchCmd.Flags().StringVar(&fetchTemplate, "config", "",
		"Optional YAML build template")
	fetchCmd.Flags().BoolVar(&fetchSkipValidate, "skip-validate", false,
		"Skip artifact validation")
	fetchCmd.Flags().BoolVar(&fetchKeepWorkdir, "keep-workdir", false,
		"Keep the temporary work directory for debugging")
	return fetchCmd
}

// resolveEntry picks the index entry to download: the exact pinned Debian
// version when a target version is given, the highest version otherwise.
func resolveEntry(packages []ospackage.PackageInfo, name string, targetVersion string) (ospackage.PackageInfo, bool) {
	if targetVersion != "" {
		return debutils.ResolveExact(name, trustpackage.DebianVersion(targetVersion), packages)
	}
	return debutils.ResolveLatest(name, packages)
}

// executeFetch handles the fetch command execution logic
func executeFetch(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	mirrorURL := args[0]
	destFile := args[1]
	targetVersion := ""
	if len(args) == 3 {
		targetVersion = args[2]
	}

	cmd.SilenceUsage = true

	template, err := loadBuildTemplate(fetchTemplate)
	if err != nil {
		return err
	}
	if fetchSuite != "" {
		template.Mirror.Suite = fetchSuite
	}
	if fetchArch != "" {
		template.Mirror.Arch = fetchArch
	}
	if fetchKeyring != "" {
		template.Mirror.Keyring = fetchKeyring
	}
	if fetchPackage != "" {
		template.Package = fetchPackage
	}

	m := mirror.New(mirrorURL, template.Mirror.Suite, template.Mirror.Arch)

	if template.Mirror.Keyring != "" {
		if err := m.VerifyInRelease(template.Mirror.Keyring); err != nil {
			return err
		}
	}

	packages, err := m.FetchIndex()
	if err != nil {
		return err
	}

	pkg := template.Package
	entry, found := resolveEntry(packages, pkg, targetVersion)
	if !found {
		if targetVersion != "" {
			return fmt.Errorf("package %s version %s not found in %s/%s",
				pkg, trustpackage.DebianVersion(targetVersion),
				template.Mirror.Suite, template.Mirror.Arch)
		}
		return fmt.Errorf("package %s not found in %s/%s",
			pkg, template.Mirror.Suite, template.Mirror.Arch)
	}
	log.Infof("Resolved %s %s (%s)", entry.Name, entry.Version, entry.URL)

	workDir, err := os.MkdirTemp("", "trust-package-")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer func() {
		if fetchKeepWorkdir {
			log.Infof("Keeping work directory %s", workDir)
			return
		}
		if err := os.RemoveAll(workDir); err != nil {
			log.Errorf("Failed to remove work directory %s: %v", workDir, err)
		}
	}()

	debPath, err := m.Download(entry, workDir)
	if err != nil {
		return err
	}

	bundle, err := debutils.ExtractTrustBundle(debPath)
	if err != nil {
		return err
	}

	var artifact trustpackage.Package
	if targetVersion != "" {
		artifact = trustpackage.NewPinned(string(bundle), targetVersion)
	} else {
		artifact = trustpackage.New(string(bundle), entry.Version)
	}
	if err := artifact.Write(destFile); err != nil {
		return err
	}
	log.Infof("Wrote trust package version %s to %s", artifact.Version, destFile)

	if fetchSkipValidate {
		log.Warnf("Skipping validation of %s", destFile)
		return nil
	}
	if err := trustpackage.ValidateFile(destFile); err != nil {
		return err
	}
	if template.Validator == "" {
		log.Infof("No external validator configured, schema check only")
		return nil
	}
	return trustpackage.RunExternalValidator(template.Validator, destFile)
}
