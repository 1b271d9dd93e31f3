package captions

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// sentenceBoundary treats any run of terminal punctuation as one boundary.
var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// DefaultBreakWords are the coordinating conjunctions that close a phrase.
var DefaultBreakWords = []string{"and", "but", "or", "so"}

// SegmentOptions controls how a passage is cut into display phrases.
type SegmentOptions struct {
	// MaxWordsPerPhrase flushes a phrase once it holds this many words.
	MaxWordsPerPhrase int `json:"max_words_per_phrase" yaml:"max_words_per_phrase"`

	// MaxCharsPerPhrase flushes before a word that would push the phrase past
	// this many characters. Zero disables the cap.
	MaxCharsPerPhrase int `json:"max_chars_per_phrase" yaml:"max_chars_per_phrase"`

	// BreakWords close the phrase they appear in (the word stays in that phrase).
	BreakWords []string `json:"break_words" yaml:"break_words"`

	// MinTrailingWords keeps a sentence whole when its greedy split is a single
	// phrase followed by a tail shorter than this many words.
	MinTrailingWords int `json:"min_trailing_words" yaml:"min_trailing_words"`
}

// DefaultSegmentOptions returns the 4-word, conjunction-breaking configuration.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{
		MaxWordsPerPhrase: 4,
		BreakWords:        append([]string(nil), DefaultBreakWords...),
		MinTrailingWords:  2,
	}
}

func (o SegmentOptions) withDefaults() SegmentOptions {
	if o.MaxWordsPerPhrase <= 0 {
		o.MaxWordsPerPhrase = 4
	}
	if o.BreakWords == nil {
		o.BreakWords = DefaultBreakWords
	}
	if o.MinTrailingWords < 0 {
		o.MinTrailingWords = 0
	}
	return o
}

// TextPhrase is one display unit cut from a passage.
type TextPhrase struct {
	Content  string `json:"content"`
	Index    int    `json:"index"`
	Sentence int    `json:"sentence"`
}

// Sentence groups the phrases cut from one sentence of the passage.
type Sentence struct {
	Index   int          `json:"index"`
	Text    string       `json:"text"`
	Phrases []TextPhrase `json:"phrases"`
}

// SplitSentences splits text on terminal punctuation and drops empty fragments.
// Whitespace inside each sentence is collapsed to single spaces.
func SplitSentences(text string) []string {
	var sentences []string
	for _, part := range sentenceBoundary.Split(text, -1) {
		words := strings.Fields(part)
		if len(words) == 0 {
			continue
		}
		sentences = append(sentences, strings.Join(words, " "))
	}
	return sentences
}

// Segment cuts a passage into sentences and each sentence into short phrases.
// Phrase indices run across the whole passage.
func Segment(text string, opts SegmentOptions) ([]Sentence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	opts = opts.withDefaults()

	breaks := make(map[string]struct{}, len(opts.BreakWords))
	for _, w := range opts.BreakWords {
		breaks[strings.ToLower(w)] = struct{}{}
	}

	var sentences []Sentence
	next := 0
	for _, s := range SplitSentences(text) {
		parts := splitSentence(s, opts, breaks)
		sentence := Sentence{Index: len(sentences), Text: s}
		for _, p := range parts {
			sentence.Phrases = append(sentence.Phrases, TextPhrase{
				Content:  p,
				Index:    next,
				Sentence: sentence.Index,
			})
			next++
		}
		sentences = append(sentences, sentence)
	}
	if len(sentences) == 0 {
		return nil, ErrEmptyInput
	}
	return sentences, nil
}

// SegmentPhrases is Segment flattened to the ordered phrase list.
func SegmentPhrases(text string, opts SegmentOptions) ([]TextPhrase, error) {
	sentences, err := Segment(text, opts)
	if err != nil {
		return nil, err
	}
	return Flatten(sentences), nil
}

// Flatten returns the phrases of all sentences in order.
func Flatten(sentences []Sentence) []TextPhrase {
	var phrases []TextPhrase
	for _, s := range sentences {
		phrases = append(phrases, s.Phrases...)
	}
	return phrases
}

func splitSentence(sentence string, opts SegmentOptions, breaks map[string]struct{}) []string {
	words := strings.Fields(sentence)

	var phrases [][]string
	var current []string
	chars := 0
	for _, word := range words {
		if opts.MaxCharsPerPhrase > 0 && len(current) > 0 && chars+1+utf8.RuneCountInString(word) > opts.MaxCharsPerPhrase {
			phrases = append(phrases, current)
			current, chars = nil, 0
		}
		if len(current) > 0 {
			chars++
		}
		current = append(current, word)
		chars += utf8.RuneCountInString(word)

		if len(current) >= opts.MaxWordsPerPhrase || isBreakWord(word, breaks) {
			phrases = append(phrases, current)
			current, chars = nil, 0
		}
	}
	if len(current) > 0 {
		phrases = append(phrases, current)
	}

	if len(phrases) == 1 || keepWhole(phrases, sentence, opts) {
		return []string{sentence}
	}

	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = strings.Join(p, " ")
	}
	return out
}

// keepWhole reports whether a two-phrase split ends in an orphan tail short
// enough to fold back into the sentence.
func keepWhole(phrases [][]string, sentence string, opts SegmentOptions) bool {
	if len(phrases) != 2 || len(phrases[1]) >= opts.MinTrailingWords {
		return false
	}
	return opts.MaxCharsPerPhrase <= 0 || utf8.RuneCountInString(sentence) <= opts.MaxCharsPerPhrase
}

func isBreakWord(word string, breaks map[string]struct{}) bool {
	_, ok := breaks[strings.ToLower(strings.TrimRight(word, ",;:"))]
	return ok
}
