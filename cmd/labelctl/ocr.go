package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/label-approvals/internal/extract"
	"github.com/joseph-ayodele/label-approvals/internal/media"
	"github.com/joseph-ayodele/label-approvals/internal/ocr"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Run local OCR on a label and print the fields it finds",
	Long: `Run tesseract on a label image and apply the label-text heuristics,
without contacting the server. Useful for checking what pytesseract mode will see.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)
	ocrCmd.Flags().String("tesseract", envOr("TESSERACT_BIN", "tesseract"), "tesseract binary")
	ocrCmd.Flags().String("lang", envOr("TESSERACT_LANG", "eng"), "tesseract language")
	ocrCmd.Flags().String("tessdata", os.Getenv("TESSDATA_PREFIX"), "tessdata directory")
	ocrCmd.Flags().Int("psm", 0, "page segmentation mode")
	ocrCmd.Flags().Bool("text", false, "also print the raw OCR text")
}

func runOCR(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	bin, _ := cmd.Flags().GetString("tesseract")
	lang, _ := cmd.Flags().GetString("lang")
	tessdata, _ := cmd.Flags().GetString("tessdata")
	psm, _ := cmd.Flags().GetInt("psm")
	showText, _ := cmd.Flags().GetBool("text")

	engine := ocr.NewEngine(ocr.Config{Tesseract: bin, Lang: lang, TessdataDir: tessdata, PSM: psm}, nil)
	res := engine.ExtractText(cmd.Context(), media.Payload{Data: data, ContentType: media.Sniff(data)})
	if err := res.Err(); err != nil {
		return err
	}

	out := map[string]any{
		"file":               filepath.Base(args[0]),
		"average_confidence": res.AverageConfidence,
		"width":              res.Width,
		"height":             res.Height,
		"extracted":          extract.ParseLabelText(res.FullText),
	}
	if showText {
		out["text"] = res.FullText
	}
	if err := printJSON(out); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
