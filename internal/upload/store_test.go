package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ── storedFileName ─────────────────────────────────────────────────────────

func TestStoredFileName_KeepsExtension(t *testing.T) {
	cases := []struct {
		original string
		wantExt  string
	}{
		{"resume.pdf", ".pdf"},
		{"My Resume.TXT", ".txt"},
		{"cv.final.docx", ".docx"},
		{"noextension", ""},
	}
	for _, c := range cases {
		got := storedFileName(c.original)
		if !strings.HasSuffix(got, c.wantExt) {
			t.Errorf("storedFileName(%q) = %q, want suffix %q", c.original, got, c.wantExt)
		}
		if c.wantExt != "" && strings.Count(got, ".") != 1 {
			t.Errorf("storedFileName(%q) = %q, want a single extension", c.original, got)
		}
	}
}

func TestStoredFileName_Unique(t *testing.T) {
	a := storedFileName("resume.pdf")
	b := storedFileName("resume.pdf")
	if a == b {
		t.Errorf("two stored names for the same original collide: %q", a)
	}
}

// ── ReadText ───────────────────────────────────────────────────────────────

func TestReadText_PlainText(t *testing.T) {
	dir := t.TempDir()
	const content = "5 years experience with Java and SQL databases"
	if err := os.WriteFile(filepath.Join(dir, "abc.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &Store{dir: dir}
	got := s.ReadText(&UploadFile{FileName: "abc.txt"})
	if got != content {
		t.Errorf("ReadText = %q, want %q", got, content)
	}
}

func TestReadText_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "abc.docx"), []byte("binary-ish"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &Store{dir: dir}
	if got := s.ReadText(&UploadFile{FileName: "abc.docx"}); got != "" {
		t.Errorf("ReadText for unsupported format = %q, want \"\"", got)
	}
}

func TestReadText_MissingFile(t *testing.T) {
	s := &Store{dir: t.TempDir()}
	if got := s.ReadText(&UploadFile{FileName: "gone.txt"}); got != "" {
		t.Errorf("ReadText for missing file = %q, want \"\"", got)
	}
}

func TestReadText_CorruptPDF(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &Store{dir: dir}
	if got := s.ReadText(&UploadFile{FileName: "bad.pdf"}); got != "" {
		t.Errorf("ReadText for corrupt PDF = %q, want \"\"", got)
	}
}
