package analyses

import (
	"strings"
	"testing"
)

const plainFiller = "Lorem ipsum dolor sit amet consectetur adipiscing elit "

func TestDetectSignals(t *testing.T) {
	text := "Jane Doe jane.doe@example.com 555-123-4567\nSkills: Go, Postgres\nExperience at Acme"
	s := DetectSignals(text)
	if !s.HasEmail || !s.HasPhone || !s.HasSkills || !s.HasExperience {
		t.Fatalf("expected all signals, got %+v", s)
	}
	if s.WordCount != 10 {
		t.Fatalf("expected 10 words, got %d", s.WordCount)
	}

	none := DetectSignals(strings.Repeat(plainFiller, 3))
	if none.HasEmail || none.HasPhone || none.HasSkills || none.HasExperience {
		t.Fatalf("expected no signals, got %+v", none)
	}
}

func TestAnalyzeHeuristicScores(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		overall int
		cats    [6]int // grammar, ats, formatting, content, skills, experience
	}{
		{
			name:    "no signals",
			text:    strings.Repeat(plainFiller, 4),
			overall: 60,
			cats:    [6]int{70, 65, 68, 63, 60, 67},
		},
		{
			name:    "contact skills experience",
			text:    "Jane Doe jane@example.com 555-123-4567 Skills: Go. Experience at Acme Corp.",
			overall: 85,
			cats:    [6]int{95, 88, 90, 87, 85, 89},
		},
		{
			name:    "long résumé hits every cap",
			text:    "jane@example.com 555.123.4567 skills experience " + strings.Repeat(plainFiller, 60),
			overall: 92,
			cats:    [6]int{95, 88, 90, 87, 85, 89},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := AnalyzeHeuristic(tt.text)
			if res.OverallScore != tt.overall {
				t.Fatalf("overall = %d, want %d", res.OverallScore, tt.overall)
			}
			fb := res.Feedback
			got := [6]int{fb.Grammar.Score, fb.ATS.Score, fb.Formatting.Score, fb.Content.Score, fb.Skills.Score, fb.Experience.Score}
			if got != tt.cats {
				t.Fatalf("category scores = %v, want %v", got, tt.cats)
			}
		})
	}
}

func TestAnalyzeHeuristicWordThresholds(t *testing.T) {
	words := func(n int) string { return strings.Repeat("lorem ", n) }
	if got := DetectSignals(words(200)).BaseScore(); got != 60 {
		t.Fatalf("200 words: base = %d, want 60", got)
	}
	if got := DetectSignals(words(201)).BaseScore(); got != 70 {
		t.Fatalf("201 words: base = %d, want 70", got)
	}
	if got := DetectSignals(words(401)).BaseScore(); got != 75 {
		t.Fatalf("401 words: base = %d, want 75", got)
	}
}

func TestAnalyzeHeuristicIsDeterministic(t *testing.T) {
	text := "Jane Doe jane@example.com Software engineer with experience " + strings.Repeat(plainFiller, 10)
	a := AnalyzeHeuristic(text)
	b := AnalyzeHeuristic(text)
	if a.OverallScore != b.OverallScore || a.Feedback.Content.Score != b.Feedback.Content.Score {
		t.Fatalf("expected identical results")
	}
	if len(a.Feedback.Improvements) != 5 || len(a.Feedback.TrendingSkills) != 8 {
		t.Fatalf("unexpected catalog sizes: %d improvements, %d skills", len(a.Feedback.Improvements), len(a.Feedback.TrendingSkills))
	}
	for _, imp := range a.Feedback.Improvements {
		if !imp.Category.Valid() {
			t.Fatalf("improvement %q has invalid category %q", imp.Title, imp.Category)
		}
	}
	for _, ts := range a.Feedback.TrendingSkills {
		if !ts.Category.Valid() || ts.Relevance < 0 || ts.Relevance > 100 {
			t.Fatalf("bad trending skill %+v", ts)
		}
	}

	// Mutating one result must not leak into the next.
	a.Feedback.Improvements[0].Title = "changed"
	*a.Feedback.Improvements[0].Before = "changed"
	c := AnalyzeHeuristic(text)
	if c.Feedback.Improvements[0].Title == "changed" || *c.Feedback.Improvements[0].Before == "changed" {
		t.Fatalf("heuristic catalog was shared between calls")
	}
}
