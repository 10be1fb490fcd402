package resolver

import (
	"strings"
	"unicode"

	"github.com/voxlaunch/voxlaunch/internal/types"
)

var launchVerbs = map[string]struct{}{
	"open":   {},
	"launch": {},
	"start":  {},
	"run":    {},
}

var closeVerbs = map[string]struct{}{
	"close": {},
	"quit":  {},
	"exit":  {},
	"stop":  {},
	"kill":  {},
}

// fillerWords are dropped from the application phrase. "open up the calculator
// app" and "open calculator" resolve identically.
var fillerWords = map[string]struct{}{
	"the":         {},
	"a":           {},
	"an":          {},
	"my":          {},
	"up":          {},
	"app":         {},
	"application": {},
	"please":      {},
}

// normalize case-folds the utterance, strips punctuation and collapses
// whitespace.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// splitIntent pulls the leading verb off a normalized utterance. The verb
// determines the intent kind; the remainder, minus filler words, is the
// application phrase.
func splitIntent(normalized string) (types.Intent, string) {
	words := strings.Fields(normalized)
	if len(words) == 0 {
		return types.IntentUnknown, ""
	}

	var intent types.Intent
	if _, ok := launchVerbs[words[0]]; ok {
		intent = types.IntentLaunch
	} else if _, ok := closeVerbs[words[0]]; ok {
		intent = types.IntentClose
	} else {
		return types.IntentUnknown, ""
	}

	var phrase []string
	for _, w := range words[1:] {
		if _, skip := fillerWords[w]; skip {
			continue
		}
		phrase = append(phrase, w)
	}
	return intent, strings.Join(phrase, " ")
}
