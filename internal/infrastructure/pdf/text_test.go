package pdf

import (
	"strings"
	"testing"
)

func TestCutBody(t *testing.T) {
	t.Parallel()

	raw := "Title page\nAbstract blah\n1 Introduction\nThe actual body.\nReferences\n[1] Someone, 2020."
	got := cutBody(raw)

	if !strings.HasPrefix(got, "Introduction") {
		t.Fatalf("body must start at the introduction, got %q", got[:30])
	}
	if strings.Contains(got, "Abstract blah") {
		t.Fatal("front matter must be cut off")
	}
	if strings.Contains(got, "Someone, 2020") {
		t.Fatal("references must be cut off")
	}
	if !strings.Contains(got, "The actual body.") {
		t.Fatal("body content lost")
	}
}

func TestCutBodyWithoutMarkers(t *testing.T) {
	t.Parallel()

	raw := "Just some text without the usual paper structure."
	if got := cutBody(raw); got != raw {
		t.Fatalf("text without markers must pass through unchanged, got %q", got)
	}
}

func TestCleanTextStripsCitationsAndReflows(t *testing.T) {
	t.Parallel()

	raw := "Transformers [12, 14] changed the field.\nThis line continues the same sentence\nand so does this one.\n\nA second paragraph follows here, long enough to survive.\n\nok\n"
	got := cleanText(raw)

	if strings.Contains(got, "[12, 14]") {
		t.Fatal("bracket citations must be stripped")
	}
	if strings.Contains(got, "ok") {
		t.Fatal("tiny fragments must be dropped")
	}

	paras := strings.Split(got, "\n\n")
	if len(paras) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(paras), got)
	}
	if strings.Contains(paras[0], "\n") {
		t.Fatal("hard-wrapped lines must be merged into one paragraph")
	}
	if !strings.Contains(paras[0], "changed the field. This line continues") {
		t.Fatalf("sentence boundary lost: %q", paras[0])
	}
}

func TestCleanTextRemovesGlyphArtifacts(t *testing.T) {
	t.Parallel()

	raw := "Results show improvement /gid 1 2 3 over the established baseline approach."
	got := cleanText(raw)

	if strings.Contains(got, "/gid") {
		t.Fatalf("glyph id artifacts must be removed: %q", got)
	}
}
