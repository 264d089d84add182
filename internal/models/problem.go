package models

// Example is one worked input/output pair shown in a problem statement.
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// TestCase pairs an invocation snippet with the output it must produce.
type TestCase struct {
	Call     string `json:"call"`
	Expected string `json:"expected"`
}

// Problem is one catalog entry. The catalog is loaded once at startup and
// never mutated, so problems are shared freely across requests.
type Problem struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Concept     string     `json:"concept,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Image       string     `json:"image,omitempty"`
	Examples    []Example  `json:"examples,omitempty"`
	Constraints []string   `json:"constraints,omitempty"`
	StarterCode string     `json:"starter_code,omitempty"`
	Answer      string     `json:"-"`
	TestCases   []TestCase `json:"-"`
}

type ProblemListItem struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Difficulty string   `json:"difficulty"`
	Concept    string   `json:"concept,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	IsSolved   bool     `json:"is_solved"`
}

// ProblemDetail is the full statement sent to clients. The canonical answer
// and the expected test outputs never leave the server.
type ProblemDetail struct {
	Problem
	HasAnswer bool `json:"has_answer"`
	HasTests  bool `json:"has_tests"`
	IsSolved  bool `json:"is_solved"`
}

func NewProblemListItem(p Problem, solved bool) ProblemListItem {
	return ProblemListItem{
		ID:         p.ID,
		Title:      p.Title,
		Difficulty: p.Difficulty,
		Concept:    p.Concept,
		Tags:       p.Tags,
		IsSolved:   solved,
	}
}

func NewProblemDetail(p Problem, solved bool) ProblemDetail {
	return ProblemDetail{
		Problem:   p,
		HasAnswer: p.Answer != "",
		HasTests:  len(p.TestCases) > 0,
		IsSolved:  solved,
	}
}
