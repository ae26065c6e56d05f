package service

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"geoquiz/internal/model"
)

// QuestionService builds the multiple-choice question set for a round.
// Question IDs come from one monotonic counter for the life of the
// instance, so they never collide across categories or rounds; answer
// records are keyed by them. One instance is wired per process.
type QuestionService struct {
	mu     sync.Mutex
	rng    *rand.Rand
	nextID atomic.Int64
}

// NewQuestionService creates a generator drawing entropy from rng.
func NewQuestionService(rng *rand.Rand) *QuestionService {
	return &QuestionService{rng: rng}
}

// categorySpec names what a category needs from a country and how to
// phrase its question. fact is the single value being asked about;
// distractors are drawn from the distinct facts of the whole pool.
type categorySpec struct {
	qualifies func(c *model.Country) bool
	fact      func(c *model.Country) string
	prompt    func(c *model.Country) string
}

func specFor(category model.Category) categorySpec {
	switch category {
	case model.CategoryFlag:
		return categorySpec{
			qualifies: func(c *model.Country) bool { return c.Name != "" && c.FlagURL != "" },
			fact:      func(c *model.Country) string { return c.Name },
			prompt:    func(c *model.Country) string { return "Which country does this flag belong to?" },
		}
	case model.CategoryCapital:
		return categorySpec{
			qualifies: func(c *model.Country) bool { return c.Name != "" && c.Capital != "" },
			fact:      func(c *model.Country) string { return c.Capital },
			prompt:    func(c *model.Country) string { return fmt.Sprintf("What is the capital of %s?", c.Name) },
		}
	case model.CategoryRegion:
		return categorySpec{
			qualifies: func(c *model.Country) bool { return c.Name != "" && c.Region != "" },
			fact:      func(c *model.Country) string { return c.Region },
			prompt:    func(c *model.Country) string { return fmt.Sprintf("Which region is %s located in?", c.Name) },
		}
	case model.CategoryCurrency:
		return categorySpec{
			qualifies: func(c *model.Country) bool { return c.Name != "" && len(c.Currencies) > 0 },
			fact:      func(c *model.Country) string { return c.Currencies[0] },
			prompt:    func(c *model.Country) string { return fmt.Sprintf("Which currency is used in %s?", c.Name) },
		}
	default:
		return categorySpec{
			qualifies: func(c *model.Country) bool { return c.Name != "" && len(c.Languages) > 0 },
			fact:      func(c *model.Country) string { return c.Languages[0] },
			prompt:    func(c *model.Country) string { return fmt.Sprintf("Which language is spoken in %s?", c.Name) },
		}
	}
}

// Build produces at most target questions for the category. A pool smaller
// than target yields a shorter round rather than padding or failing; a
// subject whose fact has fewer than three distinct distractors in the pool
// is skipped entirely rather than emitted with short options. Zero
// qualifying countries yields an empty set.
func (s *QuestionService) Build(countries []model.Country, category model.Category, target int) []model.Question {
	if target <= 0 {
		return nil
	}
	spec := specFor(category)

	pool := make([]*model.Country, 0, len(countries))
	for i := range countries {
		if spec.qualifies(&countries[i]) {
			pool = append(pool, &countries[i])
		}
	}
	if len(pool) == 0 {
		return nil
	}

	// Distinct fact values across the qualifying pool; the distractor
	// universe never contains fabricated values.
	universe := make([]string, 0, len(pool))
	seen := make(map[string]bool, len(pool))
	for _, c := range pool {
		if f := spec.fact(c); !seen[f] {
			seen[f] = true
			universe = append(universe, f)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := target
	if len(pool) < count {
		count = len(pool)
	}
	subjects := s.pickCountries(pool, count)

	questions := make([]model.Question, 0, count)
	for _, c := range subjects {
		answer := spec.fact(c)

		candidates := make([]string, 0, len(universe)-1)
		for _, v := range universe {
			if v != answer {
				candidates = append(candidates, v)
			}
		}
		if len(candidates) < model.OptionCount-1 {
			continue
		}

		options := append(s.pickStrings(candidates, model.OptionCount-1), answer)
		s.rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		q := model.Question{
			ID:       s.nextID.Add(1),
			Category: category,
			Prompt:   spec.prompt(c),
			Options:  options,
			Answer:   answer,
		}
		if category == model.CategoryFlag {
			q.FlagURL = c.FlagURL
		}
		questions = append(questions, q)
	}
	return questions
}

// pickCountries samples n countries without replacement.
func (s *QuestionService) pickCountries(pool []*model.Country, n int) []*model.Country {
	shuffled := append([]*model.Country(nil), pool...)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// pickStrings samples n values without replacement.
func (s *QuestionService) pickStrings(values []string, n int) []string {
	shuffled := append([]string(nil), values...)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return append([]string(nil), shuffled[:n]...)
}
