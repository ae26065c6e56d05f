package model

// Category is a quiz topic. Rounds are played one category at a time,
// cycling through RotationOrder on replay.
type Category string

const (
	CategoryFlag     Category = "flag"
	CategoryCapital  Category = "capital"
	CategoryRegion   Category = "region"
	CategoryCurrency Category = "currency"
	CategoryLanguage Category = "language"
)

// RotationOrder is the fixed cyclic play order.
var RotationOrder = []Category{
	CategoryFlag,
	CategoryCapital,
	CategoryRegion,
	CategoryCurrency,
	CategoryLanguage,
}

// ParseCategory returns the category for s, or false if unrecognized.
func ParseCategory(s string) (Category, bool) {
	for _, c := range RotationOrder {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// OptionCount is the number of choices per question: one correct answer
// plus three distractors.
const OptionCount = 4

// Question is a generated multiple-choice question. Answer is always one
// of Options; Options are pairwise distinct and pre-shuffled. FlagURL is
// set only for flag questions.
type Question struct {
	ID       int64    `json:"id"`
	Category Category `json:"category"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	FlagURL  string   `json:"flagUrl,omitempty"`
}
