//go:build gosseract

package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/label-approvals/internal/media"
)

// GosseractEngine runs tesseract in-process through libtesseract.
// Build with -tags gosseract; it needs the tesseract and leptonica headers.
type GosseractEngine struct {
	cfg           Config
	logger        *slog.Logger
	clientFactory func() *gosseract.Client
}

func NewGosseractEngine(cfg Config, logger *slog.Logger) *GosseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &GosseractEngine{cfg: cfg, logger: logger, clientFactory: gosseract.NewClient}
}

func (g *GosseractEngine) ExtractText(ctx context.Context, img media.Payload) Result {
	start := time.Now()
	fail := func(msg string) Result {
		g.logger.Error("ocr.gosseract.failed", "error", msg)
		return Result{Success: false, ErrorMessage: msg, Engine: "gosseract", Duration: time.Since(start)}
	}
	if err := ctx.Err(); err != nil {
		return fail(err.Error())
	}
	info, err := media.Inspect(img.Data)
	if err != nil {
		return fail("Invalid image data: " + err.Error())
	}

	c := g.clientFactory()
	defer func() { _ = c.Close() }()

	if g.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(g.cfg.TessdataDir); err != nil {
			return fail("set tessdata: " + err.Error())
		}
	}
	if err := c.SetLanguage(g.cfg.Lang); err != nil {
		return fail("set language: " + err.Error())
	}
	if g.cfg.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(g.cfg.PSM)); err != nil {
			return fail("set psm: " + err.Error())
		}
	}
	if err := c.SetImageFromBytes(img.Data); err != nil {
		return fail("set image: " + err.Error())
	}
	text, err := c.Text()
	if err != nil {
		return fail("OCR extraction failed: " + err.Error())
	}

	res := Result{
		FullText: Normalize(text),
		Width:    info.Width,
		Height:   info.Height,
		Success:  true,
		Engine:   "gosseract",
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil {
		var sum float64
		var n int
		var line *Line
		for _, b := range boxes {
			w := Word{
				Text:       strings.TrimSpace(b.Word),
				Confidence: b.Confidence,
				Left:       b.Box.Min.X,
				Top:        b.Box.Min.Y,
				Width:      b.Box.Dx(),
				Height:     b.Box.Dy(),
				Block:      b.BlockNum,
				Line:       b.LineNum,
			}
			if w.Text == "" {
				continue
			}
			res.Words = append(res.Words, w)
			if b.Confidence >= 0 {
				sum += b.Confidence
				n++
			}
			if line == nil || line.Block != w.Block || line.Words[len(line.Words)-1].Line != w.Line {
				res.Lines = append(res.Lines, Line{Block: w.Block})
				line = &res.Lines[len(res.Lines)-1]
			}
			line.Words = append(line.Words, w)
			if line.Text == "" {
				line.Text = w.Text
			} else {
				line.Text += " " + w.Text
			}
		}
		if n > 0 {
			res.AverageConfidence = sum / float64(n)
		}
	} else {
		g.logger.Warn("ocr.gosseract.boxes_failed", "error", err)
	}
	res.Blocks = []Block{{Number: 0, Text: res.FullText}}

	res.Duration = time.Since(start)
	g.logger.Info("ocr.gosseract.ok", "chars", len(res.FullText), "words", len(res.Words), "elapsed_ms", res.Duration.Milliseconds())
	return res
}
