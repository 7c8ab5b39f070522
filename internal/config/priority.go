package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// PriorityFile is the YAML layout of a priority rules file. A tier that is
// omitted keeps the built-in patterns; an empty list disables the tier.
type PriorityFile struct {
	Critical    []string `yaml:"critical"`
	Operational []string `yaml:"operational"`
}

// DefaultPriorityRulesPath returns the per-user rules location.
func DefaultPriorityRulesPath() string {
	return filepath.Join(xdg.ConfigHome, "notam-briefing", "priority.yaml")
}

// LoadPriorityRules reads ranking rules from path. An empty path means the
// default location, which may be absent; an explicit path must exist.
func LoadPriorityRules(path string) (domain.PriorityRules, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPriorityRulesPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultPriorityRules(), nil
		}
		return domain.PriorityRules{}, fmt.Errorf("reading priority rules: %w", err)
	}

	var file PriorityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.PriorityRules{}, fmt.Errorf("parsing priority rules %s: %w", path, err)
	}

	critical := file.Critical
	if critical == nil {
		critical = domain.DefaultCriticalPatterns
	}
	operational := file.Operational
	if operational == nil {
		operational = domain.DefaultOperationalPatterns
	}

	rules, err := domain.CompilePriorityRules(critical, operational)
	if err != nil {
		return domain.PriorityRules{}, fmt.Errorf("priority rules %s: %w", path, err)
	}
	return rules, nil
}
