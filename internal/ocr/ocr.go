package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/media"
)

// MsgTesseractMissing is reported when the tesseract binary cannot be found.
const MsgTesseractMissing = "Tesseract OCR not installed or not found in PATH"

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // page segmentation mode; 0 leaves tesseract's default
	OEM         int // 1 = LSTM; leave 0 to use default
	TempDir     string
}

// Word is one recognized word with its tesseract confidence (0..100).
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Left       int     `json:"left"`
	Top        int     `json:"top"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Block      int     `json:"block"`
	Line       int     `json:"line"`
}

type Line struct {
	Text  string `json:"text"`
	Block int    `json:"block"`
	Words []Word `json:"words"`
}

type Block struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Result is the outcome of one OCR pass. Failures are reported in-band through
// Success and ErrorMessage so a caller can keep going with an empty text.
type Result struct {
	FullText          string        `json:"full_text"`
	Words             []Word        `json:"words"`
	Lines             []Line        `json:"lines"`
	Blocks            []Block       `json:"blocks"`
	AverageConfidence float64       `json:"average_confidence"`
	Width             int           `json:"width"`
	Height            int           `json:"height"`
	Success           bool          `json:"success"`
	ErrorMessage      string        `json:"error_message,omitempty"`
	Engine            string        `json:"engine"`
	Duration          time.Duration `json:"duration"`
}

// Err converts an unsuccessful result into a ProviderError.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &ProviderError{Provider: r.Engine, Message: r.ErrorMessage}
}

// ProviderError is an OCR engine failure.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ocr provider %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Is(target error) bool { return target == common.ErrProvider }

// Engine recognizes text in a label image.
type Engine interface {
	ExtractText(ctx context.Context, img media.Payload) Result
}

// Extractor runs the tesseract CLI.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// ExtractTextBase64 decodes a data URI or bare base64 payload and runs OCR on it.
func (e *Extractor) ExtractTextBase64(ctx context.Context, b64 string) Result {
	p, err := media.DecodeBase64(b64)
	if err != nil {
		return e.fail(time.Now(), fmt.Sprintf("Invalid image data: %v", err))
	}
	return e.ExtractText(ctx, p)
}

// ExtractText writes the payload to a temp file and runs two tesseract passes:
// plain text for FullText and TSV for words and confidence.
func (e *Extractor) ExtractText(ctx context.Context, img media.Payload) Result {
	start := time.Now()
	if len(img.Data) == 0 {
		return e.fail(start, "Invalid image data: "+media.ErrEmptyPayload.Error())
	}
	info, err := media.Inspect(img.Data)
	if err != nil {
		return e.fail(start, fmt.Sprintf("Invalid image data: %v", err))
	}

	path, cleanup, err := e.writeTemp(img.Data, info.Format)
	if err != nil {
		return e.fail(start, fmt.Sprintf("OCR extraction failed: %v", err))
	}
	defer cleanup()

	e.logger.Debug("ocr.tesseract.start", "format", info.Format, "width", info.Width, "height", info.Height, "bytes", len(img.Data))

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path)...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return e.fail(start, MsgTesseractMissing)
		}
		return e.fail(start, fmt.Sprintf("OCR extraction failed: %v: %s", err, common.Truncate(string(errb), 512, "...(truncated)")))
	}

	res := Result{
		FullText: Normalize(string(out)),
		Width:    info.Width,
		Height:   info.Height,
		Success:  true,
		Engine:   "tesseract",
	}

	tsv, _, err := e.runner.Run(ctx, e.cfg.Tesseract, append(e.args(path), "tsv")...)
	if err != nil {
		e.logger.Warn("ocr.tesseract.tsv_failed", "error", err)
	} else {
		res.Words, res.Lines, res.Blocks, res.AverageConfidence = parseTSV(string(tsv))
	}

	res.Duration = time.Since(start)
	e.logger.Info("ocr.tesseract.ok",
		"chars", len(res.FullText),
		"words", len(res.Words),
		"avg_conf", res.AverageConfidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res
}

// tesseract <file> stdout -l <lang> [--tessdata-dir d] [--psm n] [--oem n]
func (e *Extractor) args(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	return args
}

func (e *Extractor) writeTemp(data []byte, format string) (string, func(), error) {
	dir, err := os.MkdirTemp(e.cfg.TempDir, "label-ocr-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path := filepath.Join(dir, "label."+format)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (e *Extractor) fail(start time.Time, msg string) Result {
	e.logger.Error("ocr.tesseract.failed", "error", msg)
	return Result{Success: false, ErrorMessage: msg, Engine: "tesseract", Duration: time.Since(start)}
}
