package loader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is the text of one file together with the path it was read from.
type Document struct {
	Source  string
	Content string
}

// SupportedExtensions lists the file types LoadDir picks up.
var SupportedExtensions = []string{".txt", ".pdf"}

// Supported reports whether path has an extension LoadDir reads.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadDir reads every supported file directly under dir, ordered by file name.
// Files that fail to parse are skipped with a warning.
func LoadDir(ctx context.Context, dir string, log *slog.Logger) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read documents dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, name)
		content, err := LoadFile(path)
		if err != nil {
			if log != nil {
				log.Warn("skipping unreadable document", "path", path, "err", err)
			}
			continue
		}
		docs = append(docs, Document{Source: path, Content: content})
	}
	return docs, nil
}

// LoadFile returns the text of a single .txt or .pdf file.
func LoadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(raw)
	}
	return string(raw), nil
}

func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
