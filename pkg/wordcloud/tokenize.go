package wordcloud

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Word is a token with its frequency in the source text.
type Word struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be
		because been before being below between both but by can could did do does doing down during
		each few for from further had has have having he her here hers him his how i if in into is it
		its just me more most my no nor not of off on once only or other our ours out over own same she
		should so some such than that the their theirs them then there these they this those through to
		too under until up very was we were what when where which while who whom why will with you your
		yours vs`) {
		stopWords[w] = struct{}{}
	}
}

// tokenize splits text on anything that is not a letter or a digit and
// lower-cases the result.
func tokenize(text string) []string {
	lower := cases.Lower(language.Und).String(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// rank counts tokens of text, drops stop words and single-rune tokens, and
// returns at most limit words ordered by count, ties by first appearance.
func rank(text string, limit int) []Word {
	counts := map[string]int{}
	order := map[string]int{}
	for _, tok := range tokenize(text) {
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, seen := order[tok]; !seen {
			order[tok] = len(order)
		}
		counts[tok]++
	}

	words := make([]Word, 0, len(counts))
	for text, n := range counts {
		words = append(words, Word{Text: text, Count: n})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return order[words[i].Text] < order[words[j].Text]
	})
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words
}
