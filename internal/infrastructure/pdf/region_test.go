package pdf

import "testing"

var letterPage = Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}

func block(x0, y0, x1, y1 float64, text string) TextBlock {
	return TextBlock{Rect: Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}, Text: text}
}

func bodyText() string {
	s := ""
	for i := 0; i < 10; i++ {
		s += "running body text "
	}
	return s
}

func TestFindFigureRegionAnchorsOnCaption(t *testing.T) {
	t.Parallel()

	blocks := []TextBlock{
		block(50, 50, 560, 120, bodyText()),                             // body paragraph above the figure
		block(50, 400, 560, 420, "Figure 1: Overview of the pipeline."), // caption below the figure
		block(50, 500, 560, 600, bodyText()),                            // body below the caption
	}

	region, ok := findFigureRegion(blocks, letterPage)
	if !ok {
		t.Fatal("expected a caption-anchored region")
	}

	// Region spans from the bottom of the paragraph above down to the caption.
	if region.Y0 != 120 {
		t.Fatalf("region top = %v, want 120", region.Y0)
	}
	if region.Y1 != 420 {
		t.Fatalf("region bottom = %v, want 420", region.Y1)
	}
	if region.X0 != 0 || region.X1 != 612 {
		t.Fatalf("region must span the full page width, got [%v, %v]", region.X0, region.X1)
	}
}

func TestFindFigureRegionAbsorbsWrappedCaption(t *testing.T) {
	t.Parallel()

	blocks := []TextBlock{
		block(50, 300, 560, 318, "Figure 2: A very long caption that wraps"),
		block(50, 320, 560, 338, "onto a second line of text."),
	}

	region, ok := findFigureRegion(blocks, letterPage)
	if !ok {
		t.Fatal("expected a region")
	}
	if region.Y1 != 338 {
		t.Fatalf("wrapped caption line not absorbed: bottom = %v, want 338", region.Y1)
	}
}

func TestFindFigureRegionPicksLargestCaption(t *testing.T) {
	t.Parallel()

	blocks := []TextBlock{
		block(50, 100, 560, 118, "Figure 1: small inset."),
		block(50, 130, 560, 230, bodyText()),
		block(50, 600, 560, 618, "Figure 2: the main architecture diagram."),
	}

	region, ok := findFigureRegion(blocks, letterPage)
	if !ok {
		t.Fatal("expected a region")
	}
	// Figure 2's region runs from the body paragraph at y=230 down to 618,
	// larger than Figure 1's 0..118.
	if region.Y0 != 230 || region.Y1 != 618 {
		t.Fatalf("wrong caption won: [%v, %v]", region.Y0, region.Y1)
	}
}

func TestFindFigureRegionIgnoresTinyRegions(t *testing.T) {
	t.Parallel()

	blocks := []TextBlock{
		block(50, 50, 560, 100, bodyText()),
		block(50, 110, 560, 128, "Figure 1: squeezed right under the text."),
	}

	if _, ok := findFigureRegion(blocks, letterPage); ok {
		t.Fatal("a region under the minimum height must be rejected")
	}
}

func TestFindLargestGap(t *testing.T) {
	t.Parallel()

	blocks := []TextBlock{
		block(50, 0, 560, 100, bodyText()),
		block(50, 400, 560, 792, bodyText()), // 300pt hole between the blocks
	}

	region, ok := findLargestGap(blocks, letterPage)
	if !ok {
		t.Fatal("expected a gap")
	}
	if region.Y0 != 100 || region.Y1 != 400 {
		t.Fatalf("gap = [%v, %v], want [100, 400]", region.Y0, region.Y1)
	}
}

func TestFindLargestGapIgnoresLineSpacing(t *testing.T) {
	t.Parallel()

	// Dense page: nothing but ordinary inter-paragraph gaps.
	var blocks []TextBlock
	for y := 0.0; y < 760; y += 40 {
		blocks = append(blocks, block(50, y, 560, y+30, bodyText()))
	}

	if _, ok := findLargestGap(blocks, letterPage); ok {
		t.Fatal("ordinary line spacing must not count as a figure gap")
	}
}

func TestFindLargestGapEmptyBlocks(t *testing.T) {
	t.Parallel()

	if _, ok := findLargestGap(nil, letterPage); ok {
		t.Fatal("no blocks means no information, not a full-page gap")
	}
}

func TestIsBodyParagraph(t *testing.T) {
	t.Parallel()

	if !isBodyParagraph(block(50, 0, 560, 20, bodyText()), letterPage.Width()) {
		t.Fatal("wide long text is a body paragraph")
	}
	if isBodyParagraph(block(50, 0, 200, 20, bodyText()), letterPage.Width()) {
		t.Fatal("a narrow column is not a body paragraph")
	}
	if isBodyParagraph(block(50, 0, 560, 20, "short label"), letterPage.Width()) {
		t.Fatal("short text is not a body paragraph")
	}
}
