package normalizer

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed data/rules.yaml
var rulesYAML []byte

// RulesConfig holds the normalization rules loaded from the embedded YAML.
type RulesConfig struct {
	LinePrefixes  []string          `yaml:"line_prefixes"`
	Abbreviations map[string]string `yaml:"abbreviations"`
}

// LoadRulesConfig parses the embedded rules file.
func LoadRulesConfig() (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(rulesYAML, config); err != nil {
		return nil, err
	}
	return config, nil
}
