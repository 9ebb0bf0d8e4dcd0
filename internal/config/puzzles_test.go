package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePuzzles(t *testing.T) {
	cfg, err := ParsePuzzles([]byte(`
puzzles:
  - id: arith-001
    type: arithmetic
    question: "What is 7 + 5?"
    choices:
      - text: "10"
      - text: "12"
        is_correct: true
      - text: "14"
`))

	assert.NoError(t, err)
	assert.Len(t, cfg.Puzzles, 1)
	assert.Equal(t, "arith-001", cfg.Puzzles[0].ID)
	assert.Equal(t, 1, cfg.Puzzles[0].CorrectIndex())
}

func TestParsePuzzles_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no correct choice",
			yaml: `
puzzles:
  - id: p1
    type: arithmetic
    question: "?"
    choices:
      - text: "a"
      - text: "b"
      - text: "c"
`,
		},
		{
			name: "two correct choices",
			yaml: `
puzzles:
  - id: p1
    type: arithmetic
    question: "?"
    choices:
      - text: "a"
        is_correct: true
      - text: "b"
        is_correct: true
      - text: "c"
`,
		},
		{
			name: "too few choices",
			yaml: `
puzzles:
  - id: p1
    type: arithmetic
    question: "?"
    choices:
      - text: "a"
        is_correct: true
      - text: "b"
`,
		},
		{
			name: "too many choices",
			yaml: `
puzzles:
  - id: p1
    type: arithmetic
    question: "?"
    choices:
      - text: "a"
        is_correct: true
      - text: "b"
      - text: "c"
      - text: "d"
      - text: "e"
`,
		},
		{
			name: "unknown type",
			yaml: `
puzzles:
  - id: p1
    type: riddle
    question: "?"
    choices:
      - text: "a"
        is_correct: true
      - text: "b"
      - text: "c"
`,
		},
		{
			name: "missing id",
			yaml: `
puzzles:
  - type: arithmetic
    question: "?"
    choices:
      - text: "a"
        is_correct: true
      - text: "b"
      - text: "c"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePuzzles([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParsePuzzles_Empty(t *testing.T) {
	cfg, err := ParsePuzzles([]byte("puzzles: []"))

	assert.NoError(t, err)
	assert.Empty(t, cfg.Puzzles)
}
