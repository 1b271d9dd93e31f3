package captions

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func contents(phrases []TextPhrase) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = p.Content
	}
	return out
}

func TestSegmentPhrases(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts SegmentOptions
		want []string
	}{
		{
			name: "short sentences stay whole",
			text: "Mark's world crumbled. A failing grade stared back.",
			opts: DefaultSegmentOptions(),
			want: []string{"Mark's world crumbled", "A failing grade stared back"},
		},
		{
			name: "long sentence splits every four words",
			text: "The quick brown fox jumps over the lazy dog again today.",
			opts: DefaultSegmentOptions(),
			want: []string{"The quick brown fox", "jumps over the lazy", "dog again today"},
		},
		{
			name: "break word closes the phrase",
			text: "He ran and she walked home.",
			opts: DefaultSegmentOptions(),
			want: []string{"He ran and", "she walked home"},
		},
		{
			name: "break word matched ignoring case and trailing comma",
			text: "Rain fell, But we stayed outside.",
			opts: DefaultSegmentOptions(),
			want: []string{"Rain fell, But", "we stayed outside"},
		},
		{
			name: "no break words",
			text: "Cats and dogs play together.",
			opts: SegmentOptions{MaxWordsPerPhrase: 3, BreakWords: []string{}},
			want: []string{"Cats and dogs", "play together"},
		},
		{
			name: "char cap flushes early",
			text: "Extraordinary circumstances demanded immediate action.",
			opts: SegmentOptions{MaxWordsPerPhrase: 4, MaxCharsPerPhrase: 30, MinTrailingWords: 2},
			want: []string{"Extraordinary circumstances", "demanded immediate action"},
		},
		{
			name: "single word longer than cap is kept",
			text: "Supercalifragilisticexpialidocious.",
			opts: SegmentOptions{MaxCharsPerPhrase: 10},
			want: []string{"Supercalifragilisticexpialidocious"},
		},
		{
			name: "orphan tail kept when trailing rule disabled",
			text: "A failing grade stared back.",
			opts: SegmentOptions{MaxWordsPerPhrase: 4, MinTrailingWords: 0},
			want: []string{"A failing grade stared", "back"},
		},
		{
			name: "char cap counts characters not bytes",
			text: "éé éé éé.",
			opts: SegmentOptions{MaxWordsPerPhrase: 10, MaxCharsPerPhrase: 10},
			want: []string{"éé éé éé"},
		},
		{
			name: "char cap with accented words",
			text: "Café crème brûlée déjà vu.",
			opts: SegmentOptions{MaxWordsPerPhrase: 10, MaxCharsPerPhrase: 11},
			want: []string{"Café crème", "brûlée déjà", "vu"},
		},
		{
			name: "repeated punctuation and whitespace",
			text: "Wait!!!   What?\n\nNo...",
			opts: DefaultSegmentOptions(),
			want: []string{"Wait", "What", "No"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phrases, err := SegmentPhrases(tt.text, tt.opts)
			if err != nil {
				t.Fatalf("SegmentPhrases() error = %v", err)
			}
			if got := contents(phrases); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SegmentPhrases() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\t", "...!?"} {
		if _, err := Segment(text, DefaultSegmentOptions()); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Segment(%q) error = %v, want ErrEmptyInput", text, err)
		}
	}
}

func TestSegmentIndicesAndRejoin(t *testing.T) {
	text := "Once upon a time there lived a king and a queen. They had no children, so they prayed every single night!"
	sentences, err := Segment(text, DefaultSegmentOptions())
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(sentences))
	}

	next := 0
	for si, s := range sentences {
		if s.Index != si {
			t.Errorf("sentence %d has Index %d", si, s.Index)
		}
		var words []string
		for _, p := range s.Phrases {
			if p.Index != next {
				t.Errorf("phrase %q has Index %d, want %d", p.Content, p.Index, next)
			}
			if p.Sentence != si {
				t.Errorf("phrase %q has Sentence %d, want %d", p.Content, p.Sentence, si)
			}
			if strings.TrimSpace(p.Content) == "" {
				t.Errorf("empty phrase in sentence %d", si)
			}
			words = append(words, p.Content)
			next++
		}
		if got := strings.Join(words, " "); got != s.Text {
			t.Errorf("rejoined phrases = %q, want %q", got, s.Text)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("One.  Two  words! Three? ")
	want := []string{"One", "Two words", "Three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSentences() = %q, want %q", got, want)
	}
}
