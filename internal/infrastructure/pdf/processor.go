// Package pdf enriches paper items: it downloads and caches the source PDF,
// extracts a cleaned body-text excerpt, and picks one representative figure
// by rendering candidate pages for a vision judge.
package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

var unsafeNameExpr = regexp.MustCompile(`[^\w.-]`)

// Processor implements ports.PaperEnricher.
type Processor struct {
	client      *http.Client
	vision      ports.ChatClient
	visionModel string
	pdfDir      string
	imageDir    string
	logger      *slog.Logger
}

var _ ports.PaperEnricher = (*Processor)(nil)

// NewProcessor wires the download client and the vision judge.
func NewProcessor(client *http.Client, vision ports.ChatClient, visionModel, pdfDir, imageDir string, logger *slog.Logger) *Processor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Processor{
		client:      client,
		vision:      vision,
		visionModel: visionModel,
		pdfDir:      pdfDir,
		imageDir:    imageDir,
		logger:      logger,
	}
}

// Enrich downloads the PDF (cached on disk, keyed by the paper id), extracts
// the body text, and attempts figure extraction. Figure failures degrade to
// an empty path; text failures abort the item.
func (p *Processor) Enrich(ctx context.Context, item domain.ContentItem) (domain.PaperContent, error) {
	path, err := p.download(ctx, item.ContentID, item.PDFURL)
	if err != nil {
		return domain.PaperContent{}, fmt.Errorf("download pdf: %w", err)
	}

	text, err := ExtractText(path)
	if err != nil {
		return domain.PaperContent{}, fmt.Errorf("extract text: %w", err)
	}

	figurePath, err := p.extractBestFigure(ctx, path)
	if err != nil {
		p.logger.Warn("figure extraction failed, posting text-only", "pdf", path, "error", err)
		figurePath = ""
	}

	return domain.PaperContent{Text: text, FigurePath: figurePath}, nil
}

// download fetches the PDF unless a cached copy already exists, so repeated
// runs never re-download the same paper.
func (p *Processor) download(ctx context.Context, paperID, pdfURL string) (string, error) {
	if err := os.MkdirAll(p.pdfDir, 0o755); err != nil {
		return "", fmt.Errorf("create pdf dir: %w", err)
	}

	safeName := unsafeNameExpr.ReplaceAllString(paperID, "_")
	path := filepath.Join(p.pdfDir, safeName+".pdf")

	if _, err := os.Stat(path); err == nil {
		p.logger.Debug("pdf already cached", "path", path)
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentCurator/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pdf server returned %s", resp.Status)
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close pdf: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("finalize pdf: %w", err)
	}

	p.logger.Info("pdf downloaded", "url", pdfURL, "path", path)
	return path, nil
}
