// Package risk holds the content of the risk-management page.
package risk

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed measures.yaml
var measuresYAML []byte

// Page is the risk-management placeholder page.
type Page struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Heading     string   `yaml:"heading" json:"heading"`
	Measures    []string `yaml:"measures" json:"measures"`
	Footer      string   `yaml:"footer" json:"footer"`
}

// Load returns the embedded risk-management page.
func Load() (Page, error) {
	return Parse(measuresYAML)
}

// Parse decodes a risk-management page document.
func Parse(data []byte) (Page, error) {
	var page Page
	if err := yaml.Unmarshal(data, &page); err != nil {
		return Page{}, fmt.Errorf("failed to parse risk page: %w", err)
	}
	if strings.TrimSpace(page.Title) == "" {
		return Page{}, fmt.Errorf("risk page has no title")
	}
	return page, nil
}
