package ospackage

// PackageInfo holds everything you need to fetch + verify one artifact.
type PackageInfo struct {
	Name     string // e.g. "ca-certificates"
	Version  string // e.g. "20230311+deb12u1"
	Arch     string // e.g. "amd64", "all"
	URL      string // pool-relative Filename from the repository index
	Checksum string // SHA256 digest from the repository index
}
