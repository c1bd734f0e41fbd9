// Package textfilter prepares message text for display: it masks words from
// a bad-word list and splits the result into plain and link segments.
package textfilter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	linkPattern = regexp.MustCompile(`https?://[^\s]+`)
)

// DefaultWords is the bad-word list used when none is configured.
var DefaultWords = []string{"kötü", "kelime", "küfür", "aptal", "salak", "mal", "gerizekalı"}

// Segment is a run of displayable text.
type Segment struct {
	Text string `json:"text"`
	Link bool   `json:"link,omitempty"`
}

// Filter masks configured words. Matching is case-insensitive and only
// whole words are masked.
type Filter struct {
	words map[string]struct{}
}

// New creates a Filter for words. Blank entries are ignored.
func New(words []string) *Filter {
	f := &Filter{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		f.words[w] = struct{}{}
	}
	return f
}

// Mask replaces every listed word in text with asterisks of the same rune length.
func (f *Filter) Mask(text string) string {
	if len(f.words) == 0 {
		return text
	}

	return wordPattern.ReplaceAllStringFunc(text, func(word string) string {
		if _, ok := f.words[strings.ToLower(word)]; !ok {
			return word
		}
		return strings.Repeat("*", utf8.RuneCountInString(word))
	})
}

// Apply masks text and splits it into segments.
func (f *Filter) Apply(text string) []Segment {
	return Linkify(f.Mask(text))
}

// Linkify splits text into plain segments and http(s) link segments.
func Linkify(text string) []Segment {
	var segments []Segment

	last := 0
	for _, loc := range linkPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: text[loc[0]:loc[1]], Link: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}

	return segments
}
