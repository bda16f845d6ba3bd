// Package tesseract runs the tesseract CLI over image uploads.
package tesseract

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"medscan/internal/domain"
	"medscan/internal/port"
)

// Config controls how the tesseract binary is invoked.
type Config struct {
	Binary      string
	Language    string
	PSM         int
	TessdataDir string
}

// Extractor recognises text in JPEG and PNG images.
type Extractor struct {
	cfg    Config
	runner Runner
}

// New creates an Extractor. A nil runner uses ExecRunner.
func New(cfg Config, runner Runner) *Extractor {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Extractor{cfg: cfg, runner: runner}
}

func (e *Extractor) Name() string { return "tesseract" }

func (e *Extractor) Supports(fileType domain.FileType) bool {
	return fileType.IsImage()
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (domain.RawDocument, error) {
	if len(input.Content) == 0 {
		return domain.RawDocument{}, domain.ErrEmptyFile
	}

	// tesseract stdin stdout -l <lang> [--psm N] [--tessdata-dir D] tsv
	args := []string{"stdin", "stdout", "-l", e.cfg.Language}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, _, err := e.runner.Run(ctx, input.Content, e.cfg.Binary, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.RawDocument{}, ctx.Err()
		}
		return domain.RawDocument{}, fmt.Errorf("tesseract.Extract: %v: %w", err, domain.ErrOCRFailed)
	}

	text, confidence := ParseTSV(string(out))
	return domain.RawDocument{Text: text, SourceConfidence: confidence, Backend: e.Name()}, nil
}

// TSV column positions as emitted by tesseract 4 and later.
const (
	colBlock = 2
	colPar   = 3
	colLine  = 4
	colConf  = 10
	colText  = 11
)

// ParseTSV rebuilds line-broken text from tesseract TSV output and returns
// the mean word confidence on a 0-100 scale.
func ParseTSV(tsv string) (string, float64) {
	var (
		b        strings.Builder
		lastLine string
		sum      float64
		words    int
	)

	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 || row == "" {
			continue
		}
		cols := strings.Split(strings.TrimRight(row, "\r"), "\t")
		if len(cols) <= colText {
			continue
		}
		word := strings.TrimSpace(cols[colText])
		conf, err := strconv.ParseFloat(cols[colConf], 64)
		if err != nil || conf < 0 || word == "" {
			continue
		}

		lineKey := cols[colBlock] + "." + cols[colPar] + "." + cols[colLine]
		switch {
		case b.Len() == 0:
		case lineKey != lastLine:
			b.WriteByte('\n')
		default:
			b.WriteByte(' ')
		}
		b.WriteString(word)
		lastLine = lineKey

		sum += conf
		words++
	}

	if words == 0 {
		return "", 0
	}
	return b.String(), sum / float64(words)
}
