package quiz

import "fmt"

// QuestionType tags how a question is answered and graded.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeFillInBlank    QuestionType = "fill_in_blank"
	TypeOpenEnded      QuestionType = "open_ended"

	// TypeClassic is the legacy label for free-form questions. It is graded
	// exactly like TypeOpenEnded.
	TypeClassic QuestionType = "classic"
)

// Valid reports whether t is one of the four canonical question types.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeFillInBlank, TypeOpenEnded:
		return true
	}
	return false
}

// Canonical folds legacy labels onto their canonical type.
func (t QuestionType) Canonical() QuestionType {
	if t == TypeClassic {
		return TypeOpenEnded
	}
	return t
}

// Difficulty is the requested or self-assessed difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty parses s, defaulting to medium when s is empty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", Invalid("difficulty", "unknown difficulty %q", s)
}

// Format is the exam format requested by the learner. It selects the
// palette of question types a quiz may contain.
type Format string

const (
	FormatTest    Format = "test"
	FormatClassic Format = "classic"
	FormatMixed   Format = "mixed"
)

var palettes = map[Format][]QuestionType{
	FormatTest:    {TypeMultipleChoice},
	FormatClassic: {TypeOpenEnded},
	FormatMixed:   {TypeMultipleChoice, TypeTrueFalse, TypeOpenEnded},
}

// ParseFormat parses s, defaulting to mixed when s is empty.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if f == "" {
		return FormatMixed, nil
	}
	if _, ok := palettes[f]; !ok {
		return "", Invalid("examFormat", "unknown exam format %q", s)
	}
	return f, nil
}

// Palette returns the allowed question types for the format, in
// round-robin order.
func (f Format) Palette() []QuestionType {
	p, ok := palettes[f]
	if !ok {
		p = palettes[FormatMixed]
	}
	out := make([]QuestionType, len(p))
	copy(out, p)
	return out
}

// TypeFor returns the question type assigned to the question at index i.
func (f Format) TypeFor(i int) QuestionType {
	p := f.Palette()
	return p[i%len(p)]
}

// Allows reports whether questions of type t may appear in the format.
func (f Format) Allows(t QuestionType) bool {
	for _, pt := range f.Palette() {
		if pt == t.Canonical() {
			return true
		}
	}
	return false
}

func (f Format) String() string { return string(f) }

// QuestionID returns the id assigned to the i-th question (0-based) of a
// generated quiz.
func QuestionID(i int) string {
	return fmt.Sprintf("q%d", i+1)
}
