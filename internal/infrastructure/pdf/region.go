package pdf

import (
	"regexp"
	"sort"
)

// Rect is a page-space rectangle, origin top-left, units in points.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }
func (r Rect) Area() float64   { return r.Width() * r.Height() }

// TextBlock is one laid-out block of page text. The figure-region heuristics
// below operate on these alone, independent of the rendering backend.
type TextBlock struct {
	Rect
	Text string
}

var figCaptionExpr = regexp.MustCompile(`^(?i:Figure|Fig\.?)\s*\d+`)

const (
	captionJoinGap  = 8  // pts between a caption and its continuation lines
	bodyClearance   = 5  // pts a body paragraph must sit above the caption
	minRegionHeight = 40 // pts below which a caption-anchored region is noise
	minGapHeight    = 50 // pts below which a text gap is not worth cropping
)

// isBodyParagraph reports whether a block is running body text: wide (more
// than half the page) and long enough to not be a label or caption.
func isBodyParagraph(b TextBlock, pageWidth float64) bool {
	return b.Width() > pageWidth*0.5 && len(b.Text) > 80
}

// findFigureRegion locates a figure anchored by a "Figure N" caption: the
// region spans the full page width from the bottom of the nearest body
// paragraph above the caption down to the caption's end. When several
// captions exist, the largest region wins.
func findFigureRegion(blocks []TextBlock, page Rect) (Rect, bool) {
	var best Rect
	bestArea := 0.0
	found := false

	for capIdx, capBlock := range blocks {
		if !figCaptionExpr.MatchString(capBlock.Text) {
			continue
		}

		// Captions often wrap: absorb immediately-following non-caption
		// blocks into the caption's extent.
		capEnd := capBlock.Y1
		for j := capIdx + 1; j < len(blocks); j++ {
			next := blocks[j]
			if next.Y0-capEnd < captionJoinGap && !figCaptionExpr.MatchString(next.Text) {
				capEnd = next.Y1
			} else {
				break
			}
		}

		figTop := page.Y0
		for _, b := range blocks {
			if b.Y1 <= capBlock.Y0-bodyClearance && isBodyParagraph(b, page.Width()) {
				if b.Y1 > figTop {
					figTop = b.Y1
				}
			}
		}

		region := Rect{X0: page.X0, Y0: figTop, X1: page.X1, Y1: capEnd}
		if region.Height() > minRegionHeight && region.Area() > bestArea {
			bestArea = region.Area()
			best = region
			found = true
		}
	}

	return best, found
}

// findLargestGap falls back to the largest vertical stretch of the page not
// covered by any text block; on paper pages that is usually a figure.
func findLargestGap(blocks []TextBlock, page Rect) (Rect, bool) {
	if len(blocks) == 0 {
		return Rect{}, false
	}

	sorted := make([]TextBlock, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Y0 < sorted[j].Y0 })

	var best Rect
	bestHeight := float64(minGapHeight)
	found := false

	covered := page.Y0
	consider := func(top, bottom float64) {
		if bottom-top > bestHeight {
			bestHeight = bottom - top
			best = Rect{X0: page.X0, Y0: top, X1: page.X1, Y1: bottom}
			found = true
		}
	}

	for _, b := range sorted {
		if b.Y0 > covered {
			consider(covered, b.Y0)
		}
		if b.Y1 > covered {
			covered = b.Y1
		}
	}
	if page.Y1 > covered {
		consider(covered, page.Y1)
	}

	return best, found
}
