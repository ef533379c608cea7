// Package variant distinguishes truly distinct sellable items from
// cosmetic feature tags of the same item. Rows sharing a catalog number
// and base name are partitioned by retailer/convention exclusivity;
// sets that differ only by cosmetic features are search noise, not
// separate identities.
package variant

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed patterns.yaml
var patternsYAML []byte

// Pattern is one entry of an ordered lookup table: a lowercase substring
// to search for and the tag it maps to. Unless lists suppressor phrases
// whose presence cancels the match.
type Pattern struct {
	Match  string   `yaml:"match"`
	Label  string   `yaml:"label"`
	Unless []string `yaml:"unless"`
}

// Patterns is the full classification table set. Order within each
// section is the matching order; conventions are always checked before
// special editions, and special editions before retailers.
type Patterns struct {
	Conventions []Pattern `yaml:"conventions"`
	Special     []Pattern `yaml:"special"`
	Retailers   []Pattern `yaml:"retailers"`
	Features    []Pattern `yaml:"features"`
}

// tables is the package-wide pattern set, decoded once at init. The
// embedded YAML document is the single source of truth for every lookup
// path that needs these phrases.
var tables = mustLoadPatterns()

func mustLoadPatterns() *Patterns {
	p, err := LoadPatterns(patternsYAML)
	if err != nil {
		panic(fmt.Sprintf("variant: embedded patterns are invalid: %v", err))
	}
	return p
}

// LoadPatterns decodes a pattern table document.
func LoadPatterns(data []byte) (*Patterns, error) {
	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding pattern tables: %w", err)
	}
	if len(p.Features) == 0 || len(p.Retailers) == 0 {
		return nil, fmt.Errorf("pattern tables missing required sections")
	}
	return &p, nil
}

// Tables returns the active pattern set.
func Tables() *Patterns {
	return tables
}

// matches reports whether the pattern fires on the given lowercase text.
func (p *Pattern) matches(text string) bool {
	if !strings.Contains(text, p.Match) {
		return false
	}
	for _, suppressor := range p.Unless {
		if strings.Contains(text, suppressor) {
			return false
		}
	}
	return true
}
