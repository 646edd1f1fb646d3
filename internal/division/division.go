// Package division provides the ordered list of administrative divisions
// (départements) the dataset is partitioned by.
package division

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed departements.yaml
var embedded []byte

// Division is one administrative division.
type Division struct {
	Code   string `yaml:"code" json:"code"`
	Nom    string `yaml:"nom" json:"nom"`
	Region string `yaml:"region" json:"region,omitempty"`
}

// Default returns the embedded département list.
func Default() ([]Division, error) {
	return parse(embedded, "embedded departements.yaml")
}

// Load returns the divisions listed in the YAML file at path, or the
// embedded list when path is empty.
func Load(path string) ([]Division, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "division: read %s", path)
	}
	return parse(data, path)
}

func parse(data []byte, source string) ([]Division, error) {
	var divs []Division
	if err := yaml.Unmarshal(data, &divs); err != nil {
		return nil, eris.Wrapf(err, "division: parse %s", source)
	}
	seen := make(map[string]bool, len(divs))
	for i, d := range divs {
		if d.Code == "" {
			return nil, eris.Errorf("division: %s entry %d has no code", source, i)
		}
		if seen[d.Code] {
			return nil, eris.Errorf("division: %s lists %q twice", source, d.Code)
		}
		seen[d.Code] = true
	}
	return divs, nil
}

// Filter keeps the divisions whose code is in codes, preserving list order.
// An empty codes slice keeps everything.
func Filter(divs []Division, codes []string) ([]Division, error) {
	if len(codes) == 0 {
		return divs, nil
	}
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []Division
	for _, d := range divs {
		if want[d.Code] {
			out = append(out, d)
			delete(want, d.Code)
		}
	}
	for c := range want {
		return nil, eris.Errorf("division: unknown code %q", c)
	}
	return out, nil
}
