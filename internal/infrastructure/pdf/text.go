package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var (
	bracketCiteExpr = regexp.MustCompile(`\[[^\]]{0,30}\]`)
	multiSpaceExpr  = regexp.MustCompile(` {2,}`)
	glyphIDExpr     = regexp.MustCompile(`/gid(?:\s*\d)+`)
	paragraphExpr   = regexp.MustCompile(`\n\s*\n+`)
	sentenceEndExpr = regexp.MustCompile(`[.!?;:]\s*$`)
	spaceRunExpr    = regexp.MustCompile(`\s+`)
)

var (
	introMarkers = []string{"Introduction", "INTRODUCTION", "1 Introduction", "1. Introduction"}
	refMarkers   = []string{"References", "REFERENCES", "Bibliography"}
)

// ExtractText pulls the paper's body (Introduction through References) from
// the PDF and normalizes it for prompting: citations stripped, whitespace
// collapsed, paragraphs reflowed.
func ExtractText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	var parts []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("page %d text: %w", i, err)
		}
		parts = append(parts, text)
	}

	return cleanText(cutBody(strings.Join(parts, "\n"))), nil
}

// cutBody keeps the text between the first Introduction marker and the last
// References marker.
func cutBody(raw string) string {
	start := 0
	for _, marker := range introMarkers {
		if idx := strings.Index(raw, marker); idx != -1 {
			start = idx
			break
		}
	}

	end := len(raw)
	for _, marker := range refMarkers {
		if idx := strings.LastIndex(raw, marker); idx != -1 && idx > start {
			end = idx
			break
		}
	}

	return raw[start:end]
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = bracketCiteExpr.ReplaceAllString(text, "")
	text = multiSpaceExpr.ReplaceAllString(text, " ")
	text = glyphIDExpr.ReplaceAllString(text, "")

	var cleaned []string
	for _, para := range paragraphExpr.Split(text, -1) {
		para = strings.TrimSpace(para)
		if len(para) < 20 {
			continue
		}

		// Merge hard-wrapped lines back into sentences: a new line starts a
		// new fragment only after sentence-ending punctuation.
		var merged []string
		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if len(merged) == 0 || sentenceEndExpr.MatchString(merged[len(merged)-1]) {
				merged = append(merged, line)
			} else {
				merged[len(merged)-1] += " " + line
			}
		}

		full := spaceRunExpr.ReplaceAllString(strings.Join(merged, " "), " ")
		cleaned = append(cleaned, strings.TrimSpace(full))
	}

	return strings.Join(cleaned, "\n\n")
}
