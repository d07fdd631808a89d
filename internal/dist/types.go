package dist

import "strings"

// Source records which resolution step produced a Spec.
type Source string

const (
	SourceWrapper Source = "wrapper"
	SourcePin     Source = "pin"
	SourceLatest  Source = "latest"
)

// Checksum is an expected digest of a downloaded archive.
type Checksum struct {
	Algorithm string `json:"algorithm,omitempty"`
	Hex       string `json:"hex,omitempty"`
}

// IsZero reports whether no checksum is known.
func (c Checksum) IsZero() bool {
	return strings.TrimSpace(c.Hex) == ""
}

// Spec is the resolved distribution to run.
type Spec struct {
	Version  string   `json:"version"`
	URL      string   `json:"url"`
	Checksum Checksum `json:"checksum,omitempty"`
	Source   Source   `json:"source"`
}

type archiveFormat string

const (
	archiveFormatZip   archiveFormat = "zip"
	archiveFormatTarGz archiveFormat = "tar.gz"
)

var archiveSuffixes = []struct {
	suffix string
	format archiveFormat
}{
	{".zip", archiveFormatZip},
	{".tar.gz", archiveFormatTarGz},
	{".tgz", archiveFormatTarGz},
}

// archiveStem strips the compression suffix from an archive file name.
func archiveStem(name string) (string, archiveFormat) {
	lower := strings.ToLower(name)
	for _, s := range archiveSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return name[:len(name)-len(s.suffix)], s.format
		}
	}
	return name, ""
}

// ArchiveStem returns name without its archive suffix, or name unchanged when
// it is not a supported archive.
func ArchiveStem(name string) string {
	stem, _ := archiveStem(name)
	return stem
}
