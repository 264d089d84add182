package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"bananaprep/internal/models"
)

var ErrNotFound = errors.New("problem not found")

// Catalog is the ordered, read-only set of problems. Problems are addressed
// by their position in the source file.
type Catalog struct {
	problems []models.Problem
}

// rawProblem mirrors the problems.json field names.
type rawProblem struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  string            `json:"difficulty"`
	Concept     string            `json:"concept"`
	Tags        []string          `json:"tags"`
	Image       string            `json:"image"`
	Examples    []models.Example  `json:"examples"`
	Constraints []string          `json:"constraints"`
	StarterCode string            `json:"starterCode"`
	Answer      string            `json:"answer"`
	TestCases   map[string]string `json:"testCases"`
}

// Load reads the problem catalog from a JSON array on disk. It is called
// once at startup; the returned catalog is immutable.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problems file: %w", err)
	}

	var raw []rawProblem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse problems file: %w", err)
	}

	problems := make([]models.Problem, len(raw))
	for i, rp := range raw {
		problems[i] = rp.toProblem(i)
	}

	return &Catalog{problems: problems}, nil
}

func (rp rawProblem) toProblem(id int) models.Problem {
	difficulty := strings.ToLower(strings.TrimSpace(rp.Difficulty))
	switch difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		difficulty = models.DifficultyEasy
	}

	return models.Problem{
		ID:          id,
		Title:       rp.Title,
		Description: rp.Description,
		Difficulty:  difficulty,
		Concept:     rp.Concept,
		Tags:        rp.Tags,
		Image:       rp.Image,
		Examples:    rp.Examples,
		Constraints: rp.Constraints,
		StarterCode: rp.StarterCode,
		Answer:      rp.Answer,
		TestCases:   orderedTestCases(rp.TestCases),
	}
}

// orderedTestCases turns the test1/solution1, test2/solution2, ... key
// pairs into a list ordered by index. Pairs with a missing half are skipped.
func orderedTestCases(tc map[string]string) []models.TestCase {
	if len(tc) == 0 {
		return nil
	}

	count := 0
	for key := range tc {
		if strings.HasPrefix(key, "test") {
			count++
		}
	}

	cases := make([]models.TestCase, 0, count)
	for i := 1; i <= count; i++ {
		call, ok := tc["test"+strconv.Itoa(i)]
		expected, ok2 := tc["solution"+strconv.Itoa(i)]
		if !ok || !ok2 {
			continue
		}
		cases = append(cases, models.TestCase{Call: call, Expected: expected})
	}

	if len(cases) == 0 {
		return nil
	}
	return cases
}

func (c *Catalog) All() []models.Problem {
	return c.problems
}

func (c *Catalog) Get(id int) (*models.Problem, error) {
	if id < 0 || id >= len(c.problems) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return &c.problems[id], nil
}

func (c *Catalog) Len() int {
	return len(c.problems)
}
