// Package screening implements the resume-to-job matching engine.
//
// Scoring is a keyword-overlap heuristic: each required skill is matched as a
// case-insensitive substring of the resume text. Matching is deliberately not
// word-boundary-aware — "java" matches "javascript" — and downstream consumers
// rely on that historical behaviour, so do not tighten it here.
package screening

import (
	"math"
	"regexp"
	"strings"
)

// Result holds the outcome of a single resume-to-skills analysis.
type Result struct {
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matchedSkills"`
	TotalSkills   int      `json:"totalSkills"`
	MatchedCount  int      `json:"matchedCount"`
}

// stopWords are excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "a": {}, "an": {},
	"and": {}, "or": {}, "but": {}, "in": {}, "with": {}, "to": {}, "for": {},
	"of": {}, "as": {}, "by": {},
}

var nonWord = regexp.MustCompile(`\W+`)

// AnalyzeResume scores resumeText against a comma-delimited requiredSkills
// string. Score = matchedCount / totalSkills × 100, rounded to two decimals
// and clamped to [0,100]. Blank skill tokens are ignored; an empty skills
// list yields a zero score rather than an error. Matched skills are returned
// lowercased and trimmed, in input order, duplicates kept.
func AnalyzeResume(resumeText, requiredSkills string) Result {
	resumeLower := strings.ToLower(resumeText)

	matched := make([]string, 0)
	total := 0
	for _, raw := range strings.Split(strings.ToLower(requiredSkills), ",") {
		skill := strings.TrimSpace(raw)
		if skill == "" {
			continue
		}
		total++
		if strings.Contains(resumeLower, skill) {
			matched = append(matched, skill)
		}
	}

	var score float64
	if total > 0 {
		score = float64(len(matched)) * 100.0 / float64(total)
	}
	score = math.Round(score*100) / 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Score:         score,
		MatchedSkills: matched,
		TotalSkills:   total,
		MatchedCount:  len(matched),
	}
}

// ExtractKeywords returns up to 20 distinct keywords from text, joined with
// ", ". Tokens are lowercased, split on non-word runs, and kept in first-seen
// order; stop words and tokens of three characters or fewer are dropped.
func ExtractKeywords(text string) string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, 20)
	for _, tok := range nonWord.Split(strings.ToLower(text), -1) {
		if len(tok) <= 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
		if len(keywords) == 20 {
			break
		}
	}
	return strings.Join(keywords, ", ")
}

// ExperienceScore is an additive heuristic over experience-related phrases,
// clamped to [0,50]. It is reported for operator visibility only and is
// never folded into the match score.
func ExperienceScore(resumeText string) int {
	lower := strings.ToLower(resumeText)

	score := 0
	if strings.Contains(lower, "years") || strings.Contains(lower, "experience") {
		score += 20
	}
	if strings.Contains(lower, "project") || strings.Contains(lower, "developed") {
		score += 15
	}
	if strings.Contains(lower, "team") || strings.Contains(lower, "lead") {
		score += 10
	}
	if strings.Contains(lower, "managed") || strings.Contains(lower, "coordinated") {
		score += 10
	}
	if score > 50 {
		score = 50
	}
	return score
}
