package classify

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed triggers.yaml
var defaultTriggersYAML []byte

// Triggers holds the keyword lists that drive intent rules
type Triggers struct {
	Symptom     []string `yaml:"symptom"`
	Cause       []string `yaml:"cause"`
	Acompany    []string `yaml:"acompany"`
	Food        []string `yaml:"food"`
	Drug        []string `yaml:"drug"`
	Prevent     []string `yaml:"prevent"`
	Lasttime    []string `yaml:"lasttime"`
	Cureway     []string `yaml:"cureway"`
	Cureprob    []string `yaml:"cureprob"`
	Easyget     []string `yaml:"easyget"`
	Check       []string `yaml:"check"`
	Belong      []string `yaml:"belong"`
	DrugDisease []string `yaml:"drug_disease"`
	Producer    []string `yaml:"producer"`
	Cure        []string `yaml:"cure"`
}

// DefaultTriggers returns the built-in keyword lists
func DefaultTriggers() *Triggers {
	var t Triggers
	if err := yaml.Unmarshal(defaultTriggersYAML, &t); err != nil {
		panic(fmt.Sprintf("classify: bad built-in triggers: %v", err))
	}
	return &t
}

// LoadTriggers reads a YAML trigger file. Lists missing from the file keep
// their built-in values.
func LoadTriggers(path string) (*Triggers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read triggers: %w", err)
	}

	t := DefaultTriggers()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse triggers: %w", err)
	}
	return t, nil
}
