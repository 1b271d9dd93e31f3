package elevenlabs

import (
	"regexp"
	"strings"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// SplitTextByCharLimit splits text into blocks of at most charLimit bytes,
// keeping sentences whole. A sentence longer than the limit is split by
// words, and a single word longer than the limit becomes its own block.
func SplitTextByCharLimit(text string, charLimit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if charLimit <= 0 || len(text) <= charLimit {
		return []string{text}
	}

	var blocks []string
	current := ""
	add := func(piece string) {
		switch {
		case current == "":
			current = piece
		case len(current)+1+len(piece) <= charLimit:
			current += " " + piece
		default:
			blocks = append(blocks, current)
			current = piece
		}
	}

	for _, sentence := range splitSentences(text) {
		if len(sentence) <= charLimit {
			add(sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			add(word)
		}
	}
	if current != "" {
		blocks = append(blocks, current)
	}
	return blocks
}

// splitSentences keeps the terminal punctuation with each sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
