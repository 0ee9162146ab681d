// words/words.go
package words

import (
	"errors"
	"math/rand"

	"github.com/wfunc/drawguess/models"
)

var ErrNotEnoughWords = errors.New("not enough words in source")

// Source yields candidate secret words with their hint text. The engine
// never picks words itself; whoever starts a round asks a Source first.
type Source interface {
	// One returns a single candidate, optionally tuned by difficulty level.
	One(level int) (*models.WordHint, error)
	// Group returns count distinct candidates.
	Group(count int) ([]models.WordHint, error)
}

// SimpleSource serves from a fixed built-in table.
type SimpleSource struct {
	words []models.WordHint
}

func NewSimpleSource() *SimpleSource {
	return &SimpleSource{
		words: []models.WordHint{
			{Word: "lighthouse", Hint: "a building by the sea"},
			{Word: "submarine", Hint: "travels underwater"},
			{Word: "windmill", Hint: "spins in the countryside"},
			{Word: "telescope", Hint: "for looking far away"},
			{Word: "campfire", Hint: "warm at night outdoors"},
			{Word: "penguin", Hint: "a bird that cannot fly"},
			{Word: "umbrella", Hint: "useful on rainy days"},
			{Word: "volcano", Hint: "a mountain with a temper"},
			{Word: "scarecrow", Hint: "stands in a field"},
			{Word: "jellyfish", Hint: "drifts in the ocean"},
			{Word: "hammock", Hint: "sleep between two trees"},
			{Word: "accordion", Hint: "a musical instrument"},
			{Word: "snowman", Hint: "melts in spring"},
			{Word: "drawbridge", Hint: "part of a castle"},
		},
	}
}

func (s *SimpleSource) One(level int) (*models.WordHint, error) {
	w := s.words[rand.Intn(len(s.words))]
	return &w, nil
}

func (s *SimpleSource) Group(count int) ([]models.WordHint, error) {
	if count > len(s.words) {
		return nil, ErrNotEnoughWords
	}

	group := make([]models.WordHint, 0, count)
	for _, i := range distinctInts(0, len(s.words), count) {
		group = append(group, s.words[i])
	}
	return group, nil
}

// distinctInts draws count distinct integers from [min, max).
func distinctInts(min, max, count int) []int {
	picked := make(map[int]struct{}, count)
	result := make([]int, 0, count)
	for len(result) < count {
		v := min + rand.Intn(max-min)
		if _, dup := picked[v]; dup {
			continue
		}
		picked[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
