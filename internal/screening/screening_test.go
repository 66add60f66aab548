package screening_test

import (
	"strings"
	"testing"

	"getready/ats-service/internal/screening"
)

// ── AnalyzeResume — full and empty matches ─────────────────────────────────

func TestAnalyzeResume_AllSkillsMatch(t *testing.T) {
	res := screening.AnalyzeResume(
		"Seasoned engineer: Java, Spring Boot and SQL in production.",
		"Java, Spring, SQL",
	)
	if res.Score != 100.0 {
		t.Errorf("Score = %v, want 100.0", res.Score)
	}
	if res.TotalSkills != 3 || res.MatchedCount != 3 {
		t.Errorf("TotalSkills/MatchedCount = %d/%d, want 3/3", res.TotalSkills, res.MatchedCount)
	}
}

func TestAnalyzeResume_EmptySkills(t *testing.T) {
	for _, skills := range []string{"", "   ", ",", " , ,"} {
		res := screening.AnalyzeResume("a resume full of java and go", skills)
		if res.Score != 0.0 {
			t.Errorf("AnalyzeResume(_, %q).Score = %v, want 0.0", skills, res.Score)
		}
		if len(res.MatchedSkills) != 0 {
			t.Errorf("AnalyzeResume(_, %q).MatchedSkills = %v, want empty", skills, res.MatchedSkills)
		}
		if res.TotalSkills != 0 {
			t.Errorf("AnalyzeResume(_, %q).TotalSkills = %d, want 0", skills, res.TotalSkills)
		}
	}
}

func TestAnalyzeResume_NoMatches(t *testing.T) {
	res := screening.AnalyzeResume("a", "kubernetes, terraform")
	if res.Score != 0.0 {
		t.Errorf("Score = %v, want 0.0", res.Score)
	}
	if res.MatchedCount != 0 {
		t.Errorf("MatchedCount = %d, want 0", res.MatchedCount)
	}
}

// ── AnalyzeResume — matching semantics ─────────────────────────────────────

func TestAnalyzeResume_CaseInsensitive(t *testing.T) {
	res := screening.AnalyzeResume("Java Developer", "java")
	if res.Score != 100.0 {
		t.Errorf("Score = %v, want 100.0", res.Score)
	}
}

func TestAnalyzeResume_SubstringNotWordBounded(t *testing.T) {
	// "java" inside "javascript" counts — documented imprecision, kept on purpose.
	res := screening.AnalyzeResume("javascript expert", "java")
	if res.Score != 100.0 {
		t.Errorf("Score = %v, want 100.0", res.Score)
	}
}

func TestAnalyzeResume_PartialMatchWorkedExample(t *testing.T) {
	res := screening.AnalyzeResume(
		"5 years experience with Java and SQL databases",
		"Java, Spring, SQL",
	)
	if res.MatchedCount != 2 {
		t.Errorf("MatchedCount = %d, want 2", res.MatchedCount)
	}
	if res.Score != 66.67 {
		t.Errorf("Score = %v, want 66.67", res.Score)
	}
	want := []string{"java", "sql"}
	if len(res.MatchedSkills) != len(want) {
		t.Fatalf("MatchedSkills = %v, want %v", res.MatchedSkills, want)
	}
	for i := range want {
		if res.MatchedSkills[i] != want[i] {
			t.Errorf("MatchedSkills[%d] = %q, want %q", i, res.MatchedSkills[i], want[i])
		}
	}
}

func TestAnalyzeResume_DuplicateSkillsKept(t *testing.T) {
	res := screening.AnalyzeResume("go everywhere", "go, go")
	if res.MatchedCount != 2 {
		t.Errorf("MatchedCount = %d, want 2 (duplicates are not collapsed)", res.MatchedCount)
	}
	if res.Score != 100.0 {
		t.Errorf("Score = %v, want 100.0", res.Score)
	}
}

func TestAnalyzeResume_SkillsTrimmed(t *testing.T) {
	res := screening.AnalyzeResume("python and rust", "  python ,   rust  ")
	if res.Score != 100.0 {
		t.Errorf("Score = %v, want 100.0", res.Score)
	}
	for _, s := range res.MatchedSkills {
		if s != strings.TrimSpace(s) {
			t.Errorf("MatchedSkills contains untrimmed token %q", s)
		}
	}
}

// ── ExtractKeywords ────────────────────────────────────────────────────────

func TestExtractKeywords_DropsShortTokensAndStopWords(t *testing.T) {
	got := screening.ExtractKeywords("the cat is at which point for an API and golang")
	for _, tok := range strings.Split(got, ", ") {
		if tok == "" {
			continue
		}
		if len(tok) <= 3 {
			t.Errorf("keyword %q has length ≤ 3", tok)
		}
		if tok == "the" || tok == "which" || tok == "for" {
			t.Errorf("stop word %q leaked into keywords", tok)
		}
	}
	if !strings.Contains(got, "golang") {
		t.Errorf("ExtractKeywords = %q, want it to contain %q", got, "golang")
	}
	if !strings.Contains(got, "point") {
		t.Errorf("ExtractKeywords = %q, want it to contain %q", got, "point")
	}
}

func TestExtractKeywords_CapAt20(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("keyword")
		b.WriteByte(byte('a' + i%26))
		b.WriteString("unique ")
	}
	got := screening.ExtractKeywords(b.String())
	if n := len(strings.Split(got, ", ")); n > 20 {
		t.Errorf("ExtractKeywords returned %d tokens, want at most 20", n)
	}
}

func TestExtractKeywords_DedupesPreservingOrder(t *testing.T) {
	got := screening.ExtractKeywords("golang postgres golang redis postgres")
	want := "golang, postgres, redis"
	if got != want {
		t.Errorf("ExtractKeywords = %q, want %q", got, want)
	}
}

func TestExtractKeywords_Empty(t *testing.T) {
	if got := screening.ExtractKeywords(""); got != "" {
		t.Errorf("ExtractKeywords(\"\") = %q, want \"\"", got)
	}
}

// ── ExperienceScore ────────────────────────────────────────────────────────

func TestExperienceScore_ClampedAt50(t *testing.T) {
	// All four signals present: 20+15+10+10 = 55 → clamped to 50.
	text := "10 years experience, developed projects, team lead, managed delivery"
	if got := screening.ExperienceScore(text); got != 50 {
		t.Errorf("ExperienceScore = %d, want 50", got)
	}
}

func TestExperienceScore_Additive(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"fresh graduate", 0},
		{"5 years in retail", 20},
		{"developed a compiler", 15},
		{"team player", 10},
		{"coordinated releases", 10},
		{"experienced and developed", 35},
		{"years of team work, managed budgets", 40},
	}
	for _, c := range cases {
		if got := screening.ExperienceScore(c.text); got != c.want {
			t.Errorf("ExperienceScore(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestExperienceScore_Range(t *testing.T) {
	for _, text := range []string{"", "years experience project team lead managed", "x"} {
		got := screening.ExperienceScore(text)
		if got < 0 || got > 50 {
			t.Errorf("ExperienceScore(%q) = %d, out of [0,50]", text, got)
		}
	}
}
