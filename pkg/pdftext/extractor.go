// Package pdftext converts uploaded PDF bytes into plain text for the
// ingestion pipeline. Extraction is page-wise best-effort: a page that
// fails to yield text contributes an empty string rather than an error, so
// a single corrupt page never sinks the whole document.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/medanalyzer/platform/pkg/common/logger"
)

// Extract returns the concatenated text of every page plus the page count.
// An unparseable document returns an error; the caller maps an all-empty
// result to its empty-document failure.
func Extract(raw []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", 0, fmt.Errorf("opening pdf: %w", err)
	}

	var builder strings.Builder
	pageCount := reader.NumPage()

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Log.WithError(err).WithField("page", i).Warn("failed to extract text from page")
			continue
		}

		builder.WriteString(text)
	}

	return builder.String(), pageCount, nil
}

// IsEmpty reports whether extracted text carries no usable content.
func IsEmpty(text string) bool {
	return strings.TrimSpace(text) == ""
}
