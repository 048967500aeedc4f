package routing

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of a rules document.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rules YAML file. Rules that fail validation are dropped
// with a warning rather than failing the load, so one bad rule cannot take
// routing down; the surviving rules keep their file order.
func LoadRules(path string, logger *slog.Logger) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routing: read rules file: %w", err)
	}
	return ParseRules(data, logger)
}

// ParseRules decodes and validates a rules YAML document.
func ParseRules(data []byte, logger *slog.Logger) ([]Rule, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("routing: parse rules: %w", err)
	}

	valid := make([]Rule, 0, len(file.Rules))
	for _, r := range file.Rules {
		if err := r.Validate(); err != nil {
			logger.Warn("routing: dropping invalid rule",
				slog.String("rule_id", r.ID),
				slog.String("name", r.Name),
				slog.String("error", err.Error()))
			continue
		}
		valid = append(valid, r)
	}
	return valid, nil
}
