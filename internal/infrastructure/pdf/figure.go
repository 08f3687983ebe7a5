package pdf

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gen2brain/go-fitz"
	lpdf "github.com/ledongthuc/pdf"
)

const pageSelectPrompt = `I'm showing you pages from a scientific paper (image 0 = page 0, image 1 = page 1, ...).

Pick the ONE page that contains the best visual FIGURE for a social media post about this paper. The figure should be a diagram, architecture overview, method pipeline, flowchart, chart, or visual illustration that explains the paper's core idea.

Rules:
- ONLY pick a page that has a prominent VISUAL element (not just text/equations).
- Prefer pages where the figure takes up a large portion of the page.
- Prefer pages 1-4 — they usually have the main method overview figure.
- If page 0 (title page) has a nice overview figure, that's fine too.

Respond ONLY with JSON: {"page_index": <0-based>, "reason": "<brief why>"}
If NO page has a good visual figure: {"page_index": -1, "reason": "no figure found"}`

const (
	previewDPI = 120
	cropDPI    = 200
	maxPages   = 8

	regionPadding = 5 // pts around the detected region
	trimMargin    = 8 // px kept around the trimmed content
)

// extractBestFigure picks the most promising page via the vision judge and
// crops the figure region out of it. The deterministic fallback when the
// judge fails or declines is the first non-title page, rendered whole.
func (p *Processor) extractBestFigure(ctx context.Context, pdfPath string) (string, error) {
	if err := os.MkdirAll(p.imageDir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	pageIdx := p.pickBestPage(ctx, pdfPath)
	if pageIdx < 0 {
		pageIdx = 1
	}

	return p.renderFigure(pdfPath, pageIdx)
}

// pickBestPage renders page previews and asks the vision judge which page
// holds the method figure. Returns -1 when the judge fails or declines.
func (p *Processor) pickBestPage(ctx context.Context, pdfPath string) int {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		p.logger.Warn("cannot open pdf for previews", "pdf", pdfPath, "error", err)
		return -1
	}
	defer doc.Close()

	n := doc.NumPage()
	if n > maxPages {
		n = maxPages
	}

	stem := strings.TrimSuffix(filepath.Base(pdfPath), ".pdf")
	var previews []string
	defer func() {
		for _, path := range previews {
			_ = os.Remove(path)
		}
	}()

	for i := 0; i < n; i++ {
		img, err := doc.ImageDPI(i, previewDPI)
		if err != nil {
			p.logger.Warn("preview render failed", "page", i, "error", err)
			return -1
		}
		path := filepath.Join(p.imageDir, fmt.Sprintf("_prev_%s_%d.png", stem, i))
		if err := savePNG(path, img); err != nil {
			p.logger.Warn("preview save failed", "page", i, "error", err)
			return -1
		}
		previews = append(previews, path)
	}

	if p.vision == nil || len(previews) == 0 {
		return -1
	}

	raw, err := p.vision.ChatWithImages(ctx, p.visionModel, pageSelectPrompt, previews)
	if err != nil {
		p.logger.Warn("page selection call failed", "pdf", pdfPath, "error", err)
		return -1
	}

	var choice struct {
		PageIndex int `json:"page_index"`
	}
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return -1
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &choice); err != nil {
		return -1
	}
	if choice.PageIndex < 0 || choice.PageIndex >= n {
		return -1
	}

	p.logger.Info("figure page selected", "pdf", filepath.Base(pdfPath), "page", choice.PageIndex)
	return choice.PageIndex
}

// renderFigure crops the figure region from the chosen page, or renders the
// whole page when no region can be detected from the text layout.
func (p *Processor) renderFigure(pdfPath string, pageIdx int) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", pdfPath, err)
	}
	defer doc.Close()

	if n := doc.NumPage(); pageIdx >= n {
		pageIdx = n - 1
		if pageIdx > 1 {
			pageIdx = 1
		}
	}

	rendered, err := doc.ImageDPI(pageIdx, cropDPI)
	if err != nil {
		return "", fmt.Errorf("render page %d: %w", pageIdx, err)
	}
	var img image.Image = rendered

	blocks, page, err := textBlocks(pdfPath, pageIdx)
	if err != nil {
		p.logger.Debug("text layout unavailable, using whole page", "page", pageIdx, "error", err)
	} else {
		region, ok := findFigureRegion(blocks, page)
		if !ok {
			region, ok = findLargestGap(blocks, page)
		}
		if ok {
			img = cropRegion(img, region, page)
		}
	}

	trimmed := trimWhiteMargins(img, trimMargin)

	stem := strings.TrimSuffix(filepath.Base(pdfPath), ".pdf")
	outPath := filepath.Join(p.imageDir, fmt.Sprintf("figure_%s.png", stem))
	if err := savePNG(outPath, trimmed); err != nil {
		return "", fmt.Errorf("save figure: %w", err)
	}

	bounds := trimmed.Bounds()
	p.logger.Info("figure extracted", "path", outPath, "width", bounds.Dx(), "height", bounds.Dy())
	return outPath, nil
}

// textBlocks reads the page's positioned text and groups it into layout
// blocks in top-down page coordinates.
func textBlocks(pdfPath string, pageIdx int) ([]TextBlock, Rect, error) {
	f, reader, err := lpdf.Open(pdfPath)
	if err != nil {
		return nil, Rect{}, fmt.Errorf("open %s: %w", pdfPath, err)
	}
	defer f.Close()

	pg := reader.Page(pageIdx + 1) // 1-based
	if pg.V.IsNull() {
		return nil, Rect{}, fmt.Errorf("page %d not found", pageIdx)
	}

	pageW, pageH := 612.0, 792.0 // US Letter default when MediaBox is absent
	if mb := pg.V.Key("MediaBox"); mb.Len() == 4 {
		pageW = mb.Index(2).Float64() - mb.Index(0).Float64()
		pageH = mb.Index(3).Float64() - mb.Index(1).Float64()
	}
	page := Rect{X0: 0, Y0: 0, X1: pageW, Y1: pageH}

	texts := pg.Content().Text
	if len(texts) == 0 {
		return nil, page, nil
	}

	// PDF coordinates grow bottom-up; flip to top-down and group glyph runs
	// into lines, then lines into blocks.
	type line struct {
		rect Rect
		text strings.Builder
		size float64
	}

	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var lines []*line
	for _, t := range texts {
		top := pageH - t.Y - t.FontSize
		bottom := pageH - t.Y
		var cur *line
		if len(lines) > 0 {
			last := lines[len(lines)-1]
			if top-last.rect.Y0 < last.size*0.6 && last.rect.Y0-top < last.size*0.6 {
				cur = last
			}
		}
		if cur == nil {
			cur = &line{rect: Rect{X0: t.X, Y0: top, X1: t.X + t.W, Y1: bottom}, size: t.FontSize}
			lines = append(lines, cur)
		}
		if t.X < cur.rect.X0 {
			cur.rect.X0 = t.X
		}
		if t.X+t.W > cur.rect.X1 {
			cur.rect.X1 = t.X + t.W
		}
		if top < cur.rect.Y0 {
			cur.rect.Y0 = top
		}
		if bottom > cur.rect.Y1 {
			cur.rect.Y1 = bottom
		}
		cur.text.WriteString(t.S)
	}

	var blocks []TextBlock
	for _, ln := range lines {
		text := strings.TrimSpace(ln.text.String())
		if text == "" {
			continue
		}
		if len(blocks) > 0 {
			last := &blocks[len(blocks)-1]
			if ln.rect.Y0-last.Y1 < ln.size*1.5 {
				if ln.rect.X0 < last.X0 {
					last.X0 = ln.rect.X0
				}
				if ln.rect.X1 > last.X1 {
					last.X1 = ln.rect.X1
				}
				last.Y1 = ln.rect.Y1
				last.Text += " " + text
				continue
			}
		}
		blocks = append(blocks, TextBlock{Rect: ln.rect, Text: text})
	}

	return blocks, page, nil
}

// cropRegion maps the page-space region (with padding) onto the rendered
// image and returns the sub-image.
func cropRegion(img image.Image, region, page Rect) image.Image {
	bounds := img.Bounds()
	scaleX := float64(bounds.Dx()) / page.Width()
	scaleY := float64(bounds.Dy()) / page.Height()

	clip := image.Rect(
		int((region.X0-regionPadding)*scaleX),
		int((region.Y0-regionPadding)*scaleY),
		int((region.X1+regionPadding)*scaleX),
		int((region.Y1+regionPadding)*scaleY),
	).Intersect(bounds)
	if clip.Empty() {
		return img
	}

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(clip)
	}
	return img
}

// trimWhiteMargins shrinks the image to its non-white content plus a margin.
func trimWhiteMargins(img image.Image, margin int) image.Image {
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X, bounds.Min.Y

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 248 {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if minX > maxX || minY > maxY {
		return img // blank page, nothing to trim
	}

	clip := image.Rect(minX-margin, minY-margin, maxX+margin+1, maxY+margin+1).Intersect(bounds)

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(clip)
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
