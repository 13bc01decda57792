package tts

import (
	"strings"
	"testing"
)

func TestChunkSimple(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "comma rejoined",
			input:    "hello, world",
			expected: []string{"hello,world"},
		},
		{
			name:     "short input unchanged",
			input:    "hello",
			expected: []string{"hello"},
		},
		{
			name:     "sentences coalesce",
			input:    "one. two. three",
			expected: []string{"one,two,three"},
		},
		{
			name:     "fragments trimmed",
			input:    "  spaced out ,  more text  ",
			expected: []string{"spaced out,more text"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "   \t  ",
			expected: nil,
		},
		{
			name:     "punctuation only",
			input:    ",,..,.",
			expected: nil,
		},
		{
			name:     "punctuation and whitespace",
			input:    " , . , ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("Chunk(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Chunk(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestChunkUnbreakableRun(t *testing.T) {
	if got := Chunk(strings.Repeat("x", 250)); got != nil {
		t.Errorf("Chunk(250 x's) = %q, want nil", got)
	}

	// One unbreakable fragment fails the whole request, even alongside
	// splittable text.
	if got := Chunk("hello " + strings.Repeat("x", 250)); got != nil {
		t.Errorf("Chunk(word + unbreakable run) = %q, want nil", got)
	}
}

func TestChunkHardSplit(t *testing.T) {
	w := strings.Repeat("a", 60)
	input := w + " " + w + " " + w + " " + w // 243 chars, no punctuation

	got := Chunk(input)
	want := []string{w + " " + w + " " + w, w}
	if len(got) != len(want) {
		t.Fatalf("Chunk returned %d utterances, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("utterance %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunkLimitNotCoalescedPast(t *testing.T) {
	a := strings.Repeat("a", 100)
	b := strings.Repeat("b", 100)

	// 100+100 is not under the limit, so the fragments stay separate.
	got := Chunk(a + ". " + b)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("Chunk = %q, want [%q %q]", got, a, b)
	}

	// 50+50 fits and is rejoined with a comma.
	short := strings.Repeat("c", 50)
	got = Chunk(short + ". " + short)
	if len(got) != 1 || got[0] != short+","+short {
		t.Fatalf("Chunk = %q, want [%q]", got, short+","+short)
	}
}

func TestChunkBoundAndOrder(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog, again and again. And again.",
		strings.Repeat("some words here ", 100),
		strings.Repeat(strings.Repeat("y", 40)+" ", 20),
		"a. b. c. d. e. f",
	}

	for _, input := range inputs {
		got := Chunk(input)
		for i, u := range got {
			if u == "" {
				t.Errorf("Chunk(%.40q...) produced empty utterance at %d", input, i)
			}
			if len(u) > ChunkLimit {
				t.Errorf("Chunk(%.40q...) utterance %d has length %d > %d", input, i, len(u), ChunkLimit)
			}
		}

		// Word order survives chunking: rejoining on the separators the
		// chunker itself introduces must give back the input's words.
		var gotWords []string
		for _, u := range got {
			gotWords = append(gotWords, strings.FieldsFunc(u, func(r rune) bool {
				return r == ' ' || r == ','
			})...)
		}
		wantWords := strings.FieldsFunc(input, func(r rune) bool {
			return r == ' ' || r == ',' || r == '.'
		})
		if len(gotWords) != len(wantWords) {
			t.Fatalf("word count mismatch for %.40q...: got %d, want %d", input, len(gotWords), len(wantWords))
		}
		for i := range wantWords {
			if gotWords[i] != wantWords[i] {
				t.Errorf("word %d = %q, want %q", i, gotWords[i], wantWords[i])
			}
		}
	}
}
