package captions

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SRTOptions controls subtitle text layout.
type SRTOptions struct {
	// MaxCharsPerLine wraps cue text at word boundaries. Zero disables wrapping.
	MaxCharsPerLine int `json:"max_chars_per_line" yaml:"max_chars_per_line"`
	// MaxLines caps the wrapped lines; overflow words join the last line.
	MaxLines  int  `json:"max_lines" yaml:"max_lines"`
	Uppercase bool `json:"uppercase" yaml:"uppercase"`
}

// DefaultSRTOptions wraps at 42 characters over at most 2 lines.
func DefaultSRTOptions() SRTOptions {
	return SRTOptions{MaxCharsPerLine: 42, MaxLines: 2}
}

// SRTCue is one parsed subtitle block.
type SRTCue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm, truncating to the millisecond.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	// the epsilon keeps values like 1.001 from truncating to 1.000
	ms := int64(math.Floor(seconds*1000 + 1e-6))
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}

// ParseTimestamp converts HH:MM:SS,mmm (or HH:MM:SS.mmm) to seconds.
func ParseTimestamp(ts string) (float64, error) {
	ts = strings.ReplaceAll(strings.TrimSpace(ts), ",", ".")
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time format: expected HH:MM:SS,mmm, got %q", ts)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours: %w", err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes: %w", err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds: %w", err)
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}

// WriteSRT writes one 1-indexed block per phrase in the given order.
func WriteSRT(w io.Writer, phrases []TimedPhrase, opts SRTOptions) error {
	bw := bufio.NewWriter(w)
	for i, p := range phrases {
		text := p.Text
		if opts.Uppercase {
			text = strings.ToUpper(text)
		}
		lines := wrapLines(text, opts.MaxCharsPerLine, opts.MaxLines)
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatTimestamp(p.Start), FormatTimestamp(p.End), strings.Join(lines, "\n")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatSRT is WriteSRT into a string.
func FormatSRT(phrases []TimedPhrase, opts SRTOptions) string {
	var b strings.Builder
	_ = WriteSRT(&b, phrases, opts)
	return b.String()
}

// ParseSRT reads subtitle blocks. Multi-line cue text is joined with spaces.
func ParseSRT(r io.Reader) ([]SRTCue, error) {
	var (
		cues  []SRTCue
		block []string
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseBlock(block)
		block = block[:0]
		if err != nil {
			return fmt.Errorf("srt block %d: %w", len(cues)+1, err)
		}
		cues = append(cues, cue)
		return nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

func parseBlock(lines []string) (SRTCue, error) {
	if len(lines) < 2 {
		return SRTCue{}, fmt.Errorf("expected index and timing lines, got %d lines", len(lines))
	}
	index, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(lines[0], "\uFEFF")))
	if err != nil {
		return SRTCue{}, fmt.Errorf("invalid index %q: %w", lines[0], err)
	}
	start, end, ok := strings.Cut(lines[1], " --> ")
	if !ok {
		return SRTCue{}, fmt.Errorf("invalid timing line %q", lines[1])
	}
	s, err := ParseTimestamp(start)
	if err != nil {
		return SRTCue{}, err
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return SRTCue{}, err
	}
	return SRTCue{Index: index, Start: s, End: e, Text: strings.Join(lines[2:], " ")}, nil
}

// wrapLines breaks text into lines of at most maxChars characters. Once
// maxLines lines exist, remaining words are appended to the last one.
func wrapLines(text string, maxChars, maxLines int) []string {
	words := strings.Fields(text)
	if maxChars <= 0 || len(words) == 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	var current strings.Builder
	width := 0 // characters in current
	for i, word := range words {
		n := utf8.RuneCountInString(word)
		if width > 0 && width+1+n > maxChars {
			lines = append(lines, current.String())
			current.Reset()
			width = 0
			if maxLines > 0 && len(lines) >= maxLines {
				lines[len(lines)-1] += " " + strings.Join(words[i:], " ")
				return lines
			}
		}
		if width > 0 {
			current.WriteByte(' ')
			width++
		}
		current.WriteString(word)
		width += n
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
