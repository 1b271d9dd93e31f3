package captions

import (
	"fmt"
	"math"
	"strings"
)

// Policy selects how the total duration is shared between phrases.
type Policy string

const (
	// PolicyEqual splits the duration equally across sentences, then equally
	// across the phrases of each sentence.
	PolicyEqual Policy = "equal"

	// PolicyWords weights every phrase by its word count.
	PolicyWords Policy = "words"

	// PolicyChars weights every phrase by its character count.
	PolicyChars Policy = "chars"
)

// IsValid reports whether p is a known allocation policy.
func (p Policy) IsValid() bool {
	switch p {
	case PolicyEqual, PolicyWords, PolicyChars:
		return true
	}
	return false
}

// TimedPhrase is a phrase with its on-screen window in seconds.
type TimedPhrase struct {
	Text     string  `json:"text"`
	Index    int     `json:"index"`
	Sentence int     `json:"sentence"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
}

// Duration is End minus Start.
func (p TimedPhrase) Duration() float64 {
	return p.End - p.Start
}

// Allocate assigns contiguous windows over [0, total] to every phrase of the
// given sentences. An empty policy means PolicyEqual.
func Allocate(sentences []Sentence, total float64, policy Policy) ([]TimedPhrase, error) {
	if err := checkDuration(total); err != nil {
		return nil, err
	}
	phrases := Flatten(sentences)
	if len(phrases) == 0 {
		return nil, ErrEmptyInput
	}

	switch policy {
	case "", PolicyEqual:
		return allocateGroups(sentences, total), nil
	case PolicyWords, PolicyChars:
		return allocateWeighted(phrases, total, policy), nil
	default:
		return nil, fmt.Errorf("captions: unknown allocation policy %q", policy)
	}
}

// AllocateFlat assigns contiguous windows to a flat phrase list, ignoring
// sentence grouping. With PolicyEqual each phrase gets total/len(phrases).
func AllocateFlat(phrases []TextPhrase, total float64, policy Policy) ([]TimedPhrase, error) {
	if err := checkDuration(total); err != nil {
		return nil, err
	}
	if len(phrases) == 0 {
		return nil, ErrEmptyInput
	}

	switch policy {
	case "", PolicyEqual:
		out := make([]TimedPhrase, len(phrases))
		n := float64(len(phrases))
		for i, p := range phrases {
			out[i] = timed(p, total*float64(i)/n, total*float64(i+1)/n)
		}
		out[len(out)-1].End = total
		return out, nil
	case PolicyWords, PolicyChars:
		return allocateWeighted(phrases, total, policy), nil
	default:
		return nil, fmt.Errorf("captions: unknown allocation policy %q", policy)
	}
}

func checkDuration(total float64) error {
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return fmt.Errorf("%w: %v seconds", ErrInvalidDuration, total)
	}
	return nil
}

func allocateGroups(sentences []Sentence, total float64) []TimedPhrase {
	var groups []Sentence
	for _, s := range sentences {
		if len(s.Phrases) > 0 {
			groups = append(groups, s)
		}
	}

	var out []TimedPhrase
	n := float64(len(groups))
	for i, s := range groups {
		start := total * float64(i) / n
		end := total * float64(i+1) / n
		if i == len(groups)-1 {
			end = total
		}
		k := float64(len(s.Phrases))
		for j, p := range s.Phrases {
			ps := start + (end-start)*float64(j)/k
			pe := start + (end-start)*float64(j+1)/k
			if j == len(s.Phrases)-1 {
				pe = end
			}
			out = append(out, timed(p, ps, pe))
		}
	}
	return out
}

func allocateWeighted(phrases []TextPhrase, total float64, policy Policy) []TimedPhrase {
	weights := make([]float64, len(phrases))
	var sum float64
	for i, p := range phrases {
		w := float64(len(strings.Fields(p.Content)))
		if policy == PolicyChars {
			w = float64(len([]rune(p.Content)))
		}
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		sum += w
	}

	out := make([]TimedPhrase, len(phrases))
	var cum float64
	for i, p := range phrases {
		start := total * cum / sum
		cum += weights[i]
		out[i] = timed(p, start, total*cum/sum)
	}
	out[len(out)-1].End = total
	return out
}

func timed(p TextPhrase, start, end float64) TimedPhrase {
	return TimedPhrase{
		Text:     p.Content,
		Index:    p.Index,
		Sentence: p.Sentence,
		Start:    start,
		End:      end,
	}
}
