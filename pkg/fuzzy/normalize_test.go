package fuzzy

import (
	"testing"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"feat in parens", "The Song (feat. B)", "The Song"},
		{"live in brackets", "The Song [Live]", "The Song"},
		{"both", "The Song (feat. B) [Remastered]", "The Song"},
		{"nothing to strip", "Plain Title", "Plain Title"},
		{"inner whitespace collapsed", "A  (x)  B", "A B"},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.CleanTitle(tt.title); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"diacritics folded", "Beyoncé Halo", "Beyonce Halo"},
		{"feat trimmed", "Song ft. Someone", "Song"},
		{"whitespace collapsed", "a    b", "a b"},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.NormalizeQuery(tt.query); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
