package query

import (
	"regexp"
	"strings"
)

// Normalization is pure and deterministic: the same raw query always
// yields the same cleaned text, and re-normalizing an already-normalized
// query is a no-op. No input, including the empty string, can fail.

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// Word tokens plus individual CJK ideographs; punctuation is dropped.
	tokenRegex = regexp.MustCompile(`\b\w+\b|[\x{4e00}-\x{9fff}]`)
)

// fullwidthToASCII folds full-width punctuation and digits to their
// half-width equivalents.
var fullwidthToASCII = strings.NewReplacer(
	"，", ",", "。", ".", "！", "!", "？", "?",
	"【", "[", "】", "]", "（", "(", "）", ")",
	"％", "%", "＃", "#", "＠", "@", "＆", "&",
	"１", "1", "２", "2", "３", "3", "４", "4", "５", "5",
	"６", "6", "７", "7", "８", "8", "９", "9", "０", "0",
)

// spellFixes are whole-word typo corrections applied after lowercasing.
var spellFixes = []struct {
	pattern *regexp.Regexp
	fix     string
}{
	{regexp.MustCompile(`\bparfume\b`), "perfume"},
	{regexp.MustCompile(`\bpefume\b`), "perfume"},
	{regexp.MustCompile(`\bperfum\b`), "perfume"},
	{regexp.MustCompile(`\bfragance\b`), "fragrance"},
	{regexp.MustCompile(`\bfrangrance\b`), "fragrance"},
	{regexp.MustCompile(`\bcolonge\b`), "cologne"},
	{regexp.MustCompile(`\bscnet\b`), "scent"},
}

// enStopwords and cnStopwords are the common function words stripped
// from queries before extraction and ranking.
var enStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "at": {}, "on": {}, "in": {},
	"of": {}, "to": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
}

var cnStopwords = map[string]struct{}{
	"的": {}, "了": {}, "是": {}, "我": {}, "想要": {}, "买": {},
	"需要": {}, "在": {}, "一台": {}, "一个": {},
}

// Normalize cleans a raw user query: strips HTML-like tags, folds
// full-width punctuation, lowercases, fixes common typos, collapses
// whitespace, and removes stopwords. Returns "" for empty input.
func Normalize(text string) string {
	text = htmlTagRegex.ReplaceAllString(text, "")
	text = fullwidthToASCII.Replace(text)
	text = strings.ToLower(text)
	for _, sf := range spellFixes {
		text = sf.pattern.ReplaceAllString(text, sf.fix)
	}
	text = strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
	return removeStopwords(text)
}

func removeStopwords(text string) string {
	tokens := tokenRegex.FindAllString(text, -1)
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, ok := enStopwords[tok]; ok {
			continue
		}
		if _, ok := cnStopwords[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
