package manifest

// LocalManifestFile is the name of the manifest stored in each package slot.
const LocalManifestFile = "mip.json"

// Index is the decoded package index.
type Index struct {
	Packages []IndexEntry `json:"packages"`
}

// IndexEntry describes one available package variant.
type IndexEntry struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	MhlURL       string   `json:"mhl_url,omitempty"`
	Filename     string   `json:"filename,omitempty"`
	Dependencies []string `json:"dependencies"`
	Architecture string   `json:"architecture,omitempty"`
}

// Locator returns where the package archive can be fetched from.
// mhl_url wins over filename when both are present.
func (e IndexEntry) Locator() string {
	if e.MhlURL != "" {
		return e.MhlURL
	}
	return e.Filename
}

// LocalManifest is the mip.json shipped inside a package.
type LocalManifest struct {
	Package        string   `json:"package,omitempty"`
	Version        string   `json:"version,omitempty"`
	Dependencies   []string `json:"dependencies"`
	ExposedSymbols []string `json:"exposed_symbols"`
}
