package config

import (
	"fmt"
	"os"

	"antilurk/internal/domain"

	"gopkg.in/yaml.v3"
)

// Puzzles is the configured challenge set
type Puzzles struct {
	Puzzles []domain.Puzzle `yaml:"puzzles"`
}

// LoadPuzzles reads and validates the puzzles YAML file
func LoadPuzzles(path string) (*Puzzles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzles file: %w", err)
	}
	return ParsePuzzles(data)
}

// ParsePuzzles parses puzzle configuration from YAML bytes
func ParsePuzzles(data []byte) (*Puzzles, error) {
	var cfg Puzzles
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse puzzles config: %w", err)
	}

	for _, p := range cfg.Puzzles {
		if err := validatePuzzle(p); err != nil {
			return nil, fmt.Errorf("puzzle %q: %w", p.ID, err)
		}
	}

	return &cfg, nil
}

func validatePuzzle(p domain.Puzzle) error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.Type != "arithmetic" && p.Type != "common_sense" {
		return fmt.Errorf("type must be arithmetic or common_sense, got %q", p.Type)
	}
	if p.Question == "" {
		return fmt.Errorf("question is required")
	}
	if len(p.Choices) < 3 || len(p.Choices) > 4 {
		return fmt.Errorf("must have 3 to 4 choices, got %d", len(p.Choices))
	}

	correct := 0
	for _, c := range p.Choices {
		if c.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("exactly one correct choice required, found %d", correct)
	}

	return nil
}
