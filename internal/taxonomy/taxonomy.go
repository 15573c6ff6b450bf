// Package taxonomy holds the curated suggestion vocabulary for the
// structured metadata fields. Legal agreement types and jurisdictions are
// open-ended, so these lists only seed the extraction prompt and UI pickers;
// they never reject a value.
package taxonomy

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed suggestions.yaml
var suggestionsYAML []byte

type Suggestions struct {
	AgreementTypes  []string `yaml:"agreement_types" json:"agreement_types"`
	GoverningLaws   []string `yaml:"governing_laws" json:"governing_laws"`
	Geographies     []string `yaml:"geographies" json:"geographies"`
	IndustrySectors []string `yaml:"industry_sectors" json:"industry_sectors"`
}

func Load() (*Suggestions, error) {
	var s Suggestions
	if err := yaml.Unmarshal(suggestionsYAML, &s); err != nil {
		return nil, fmt.Errorf("parse suggestions yaml: %w", err)
	}
	if len(s.AgreementTypes) == 0 {
		return nil, fmt.Errorf("suggestions yaml has no agreement types")
	}
	return &s, nil
}
