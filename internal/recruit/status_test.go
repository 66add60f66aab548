package recruit_test

import (
	"testing"

	"getready/ats-service/internal/recruit"
)

// ── NormalizeStatus — known values ─────────────────────────────────────────

func TestNormalizeStatus_CanonicalisesKnownValues(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Submitted", recruit.StatusSubmitted},
		{"submitted", recruit.StatusSubmitted},
		{"SUBMITTED", recruit.StatusSubmitted},
		{"interview", recruit.StatusInterview},
		{"hired", recruit.StatusHired},
		{"REJECTED", recruit.StatusRejected},
		{"  Hired  ", recruit.StatusHired},
	}
	for _, c := range cases {
		got, err := recruit.NormalizeStatus(c.in)
		if err != nil {
			t.Errorf("NormalizeStatus(%q) returned unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// ── NormalizeStatus — free-form values pass through ────────────────────────

func TestNormalizeStatus_FreeFormPassesThrough(t *testing.T) {
	for _, s := range []string{"On Hold", "Shortlisted", "Withdrawn by candidate"} {
		got, err := recruit.NormalizeStatus(s)
		if err != nil {
			t.Errorf("NormalizeStatus(%q) returned unexpected error: %v", s, err)
			continue
		}
		if got != s {
			t.Errorf("NormalizeStatus(%q) = %q, want the input verbatim", s, got)
		}
	}
}

func TestNormalizeStatus_TrimsFreeForm(t *testing.T) {
	got, err := recruit.NormalizeStatus("  On Hold ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "On Hold" {
		t.Errorf("NormalizeStatus = %q, want %q", got, "On Hold")
	}
}

// ── NormalizeStatus — empty is rejected ────────────────────────────────────

func TestNormalizeStatus_EmptyRejected(t *testing.T) {
	for _, s := range []string{"", "   "} {
		if _, err := recruit.NormalizeStatus(s); err == nil {
			t.Errorf("NormalizeStatus(%q) expected error, got nil", s)
		}
	}
}
