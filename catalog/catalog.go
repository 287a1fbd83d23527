package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FormatDef is one entry of a format catalog: the regex a covertext
// matches and the fixed length its DFA is ranked over.
type FormatDef struct {
	Regex      string `json:"regex"`
	FixedSlice int    `json:"fixed_slice"`
}

// Catalog is a release's full set of named formats, e.g. the contents of
// a "20131224.json" definitions file.
type Catalog struct {
	Release string
	Formats map[string]FormatDef
}

// Load reads and parses the JSON definitions file at path. The release
// identifier defaults to the file's base name with its extension
// stripped, matching the convention of naming catalog files after the
// release they describe (e.g. "20131224.json" -> release "20131224").
func Load(path string) (*Catalog, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var formats map[string]FormatDef
	if err := json.Unmarshal(bin, &formats); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}
	base := filepath.Base(path)
	release := base[:len(base)-len(filepath.Ext(base))]
	return &Catalog{Release: release, Formats: formats}, nil
}

// Get looks up a format by name.
func (c *Catalog) Get(name string) (FormatDef, error) {
	def, ok := c.Formats[name]
	if !ok {
		return FormatDef{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return def, nil
}
