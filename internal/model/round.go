package model

// RoundStatus is the lifecycle state of the active round.
type RoundStatus string

const (
	RoundLoading  RoundStatus = "loading"
	RoundReady    RoundStatus = "ready"
	RoundComplete RoundStatus = "complete"
	RoundError    RoundStatus = "error"
)

// Round is the descriptor of one play-through. QuestionIDs may be shorter
// than TargetCount when the qualifying pool is too small. Selection holds
// the transient in-flight pick for the current question; navigation resets
// it so a stale highlight never leaks between questions.
type Round struct {
	ID           string      `json:"id"`
	Category     Category    `json:"category"`
	QuestionIDs  []int64     `json:"questionIds"`
	TargetCount  int         `json:"targetCount"`
	Status       RoundStatus `json:"status"`
	CurrentIndex int         `json:"currentIndex"`
	Selection    string      `json:"selection,omitempty"`
}

// Clamp bounds i into the round's valid question index range.
func (r *Round) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if max := len(r.QuestionIDs) - 1; i > max {
		if max < 0 {
			return 0
		}
		return max
	}
	return i
}

// AnswerRecord is the player's choice for one question. At most one per
// question per round; once written it stands until a new round clears the
// whole map. Category guards against records from a prior round's category
// leaking into the score.
type AnswerRecord struct {
	Choice   string   `json:"choice"`
	Correct  bool     `json:"correct"`
	Category Category `json:"category"`
}

// RoundScore counts correct answers belonging to the round's own category.
func RoundScore(r *Round, answers map[int64]AnswerRecord) int {
	if r == nil {
		return 0
	}
	score := 0
	for _, qid := range r.QuestionIDs {
		if a, ok := answers[qid]; ok && a.Correct && a.Category == r.Category {
			score++
		}
	}
	return score
}

// AnsweredCount counts questions of this round answered in its category,
// correct or not. The round completes when it reaches the actual question
// count.
func AnsweredCount(r *Round, answers map[int64]AnswerRecord) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, qid := range r.QuestionIDs {
		if a, ok := answers[qid]; ok && a.Category == r.Category {
			n++
		}
	}
	return n
}

// OptionState is the display state of a single option.
type OptionState string

const (
	OptionIdle            OptionState = "idle"
	OptionSelected        OptionState = "selected"
	OptionCorrect         OptionState = "correct"
	OptionCorrectSelected OptionState = "correct selected"
	OptionWrongSelected   OptionState = "wrong selected"
)

// StateForOption derives the display state of one option from the question,
// the recorded answer if any, and the transient uncommitted selection. On an
// answered question the correct option is always revealed, whatever the
// player picked.
func StateForOption(q *Question, rec *AnswerRecord, transient, opt string) OptionState {
	if rec == nil {
		if opt == transient && transient != "" {
			return OptionSelected
		}
		return OptionIdle
	}
	isChoice := opt == rec.Choice
	if opt == q.Answer {
		if isChoice {
			return OptionCorrectSelected
		}
		return OptionCorrect
	}
	if isChoice {
		return OptionWrongSelected
	}
	return OptionIdle
}
