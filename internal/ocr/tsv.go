package ocr

import (
	"strconv"
	"strings"
)

// tesseract TSV levels
const (
	levelWord = 5
)

type lineKey struct{ block, par, line int }

// parseTSV turns `tesseract ... tsv` output into words, lines and blocks.
// The mean confidence skips the -1 entries tesseract writes for non-word rows.
func parseTSV(out string) (words []Word, lines []Line, blocks []Block, avg float64) {
	var sum float64
	var n int

	lineIdx := map[lineKey]int{}
	blockIdx := map[int]int{}

	for i, ln := range strings.Split(out, "\n") {
		if i == 0 || strings.TrimSpace(ln) == "" {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 11 {
			continue
		}
		level, _ := strconv.Atoi(cols[0])
		conf, err := strconv.ParseFloat(strings.TrimSpace(cols[10]), 64)
		if err != nil {
			conf = -1
		}
		if conf >= 0 {
			sum += conf
			n++
		}
		if level != levelWord || len(cols) < 12 {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		block, _ := strconv.Atoi(cols[2])
		par, _ := strconv.Atoi(cols[3])
		line, _ := strconv.Atoi(cols[4])
		left, _ := strconv.Atoi(cols[6])
		top, _ := strconv.Atoi(cols[7])
		width, _ := strconv.Atoi(cols[8])
		height, _ := strconv.Atoi(cols[9])

		w := Word{
			Text:       text,
			Confidence: conf,
			Left:       left,
			Top:        top,
			Width:      width,
			Height:     height,
			Block:      block,
			Line:       line,
		}
		words = append(words, w)

		k := lineKey{block, par, line}
		li, ok := lineIdx[k]
		if !ok {
			li = len(lines)
			lineIdx[k] = li
			lines = append(lines, Line{Block: block})
		}
		lines[li].Words = append(lines[li].Words, w)

		if _, ok := blockIdx[block]; !ok {
			blockIdx[block] = len(blocks)
			blocks = append(blocks, Block{Number: block})
		}
	}

	for i := range lines {
		parts := make([]string, len(lines[i].Words))
		for j, w := range lines[i].Words {
			parts[j] = w.Text
		}
		lines[i].Text = strings.Join(parts, " ")
	}
	for i := range blocks {
		var bl []string
		for _, l := range lines {
			if l.Block == blocks[i].Number {
				bl = append(bl, l.Text)
			}
		}
		blocks[i].Text = strings.Join(bl, "\n")
	}

	if n > 0 {
		avg = sum / float64(n)
	}
	return words, lines, blocks, avg
}
