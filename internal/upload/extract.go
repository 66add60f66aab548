package upload

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// extractPDFText extracts the plain text of a PDF file. Any failure returns
// an empty string; resumes that cannot be parsed simply score zero.
func extractPDFText(path string) string {
	f, r, err := pdf.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return ""
	}
	return buf.String()
}
