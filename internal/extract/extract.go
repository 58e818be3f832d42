// Package extract adapts the PDF text extractor behind the single contract
// the pipeline consumes: PDF in, full reading-order text out.
package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsawler/tabula"

	appLog "vtcal/internal/log"
)

// Text extracts the complete text of the PDF at path, all pages joined in
// reading order. Extraction warnings are logged and otherwise ignored.
func Text(path string) (string, error) {
	text, warnings, err := tabula.Open(path).Text()
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", filepath.Base(path), err)
	}
	if len(warnings) > 0 {
		appLog.Warn("pdf extraction warnings",
			"file", filepath.Base(path),
			"detail", tabula.FormatWarnings(warnings),
		)
	}
	return text, nil
}

// TextFromBytes extracts text from a PDF byte stream. The underlying reader
// is file-backed, so the stream is spooled to a temporary file first; upload
// bodies take this path.
func TextFromBytes(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "vtcal-*.pdf")
	if err != nil {
		return "", fmt.Errorf("spool pdf: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("spool pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("spool pdf: %w", err)
	}

	return Text(name)
}
