package domain

// Choice is a single answer option in a puzzle
type Choice struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"is_correct"`
}

// Puzzle is a verification question with multiple choices
type Puzzle struct {
	ID       string   `yaml:"id"`
	Type     string   `yaml:"type"`
	Question string   `yaml:"question"`
	Choices  []Choice `yaml:"choices"`
}

// CorrectIndex returns the index of the correct choice, or -1 if none
func (p *Puzzle) CorrectIndex() int {
	for i, c := range p.Choices {
		if c.Correct {
			return i
		}
	}
	return -1
}
