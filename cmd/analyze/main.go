package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"medscan/internal/analyzer"
	"medscan/internal/domain"
	"medscan/internal/ocr"
	"medscan/internal/ocr/ocrspace"
	"medscan/internal/ocr/tesseract"
	"medscan/internal/port"
	"medscan/internal/resilience"
	"medscan/internal/service"
)

const usage = "Usage: analyze [-backend pdf_only|tesseract|ocrspace] <file> | analyze -text \"...\""

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	text := flag.String("text", "", "analyse this text instead of a file")
	backend := flag.String("backend", ocr.BackendPDFOnly, "image OCR backend: pdf_only, tesseract or ocrspace")
	tessBin := flag.String("tesseract-binary", "tesseract", "path to the tesseract executable")
	tessLang := flag.String("tesseract-language", "eng", "tesseract language")
	ocrKey := flag.String("ocrspace-key", os.Getenv("MEDSCAN_OCR_OCRSPACE_API_KEY"), "OCR.space API key")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	pipeline := analyzer.NewDefaultPipeline()

	var result domain.AnalysisResult
	switch {
	case *text != "":
		result = pipeline.Run(domain.RawDocument{Text: ocr.Normalize(*text), SourceConfidence: 100}, true)
	case flag.NArg() == 1:
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()

		extractor, err := ocr.NewRouterFromConfig(ocr.Config{
			Backend:   *backend,
			Tesseract: tesseract.Config{Binary: *tessBin, Language: *tessLang},
			OCRSpace:  ocrspace.Config{APIKey: *ocrKey},
		}, resilience.NewExecutor(resilience.DefaultConfig()))
		if err != nil {
			return err
		}

		result, err = analyzeFile(ctx, extractor, pipeline, flag.Arg(0))
		if err != nil {
			return err
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func analyzeFile(ctx context.Context, extractor port.TextExtractor, pipeline port.AnalysisPipeline, path string) (domain.AnalysisResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("reading %s: %w", path, err)
	}

	name := filepath.Base(path)
	fileType, _, supported := service.DetectFileType(name, content)
	if !supported {
		return pipeline.Run(domain.RawDocument{}, false), nil
	}

	doc, err := extractor.Extract(ctx, port.ExtractInput{Content: content, FileType: fileType, Filename: name})
	if errors.Is(err, domain.ErrOCRNotConfigured) {
		return domain.AnalysisResult{}, fmt.Errorf("%w: pass -backend tesseract or -backend ocrspace for images", err)
	}
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return pipeline.Run(doc, true), nil
}
