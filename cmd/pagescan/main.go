package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/pagescan/internal/config"
	"github.com/ivlev/pagescan/internal/extract"
	"github.com/ivlev/pagescan/internal/pipeline"
	"github.com/ivlev/pagescan/internal/source"
	"github.com/ivlev/pagescan/internal/system"
)

func main() {
	// Raise system limits (macOS/Linux) before the page workers start.
	system.InitResourceLimits()

	os.MkdirAll("input/pdf", 0755)

	defaults := config.Default()

	configPtr := flag.String("config", "", "Path to a YAML config file (flags override it)")
	inputPtr := flag.String("input", "", "PDF file or image/directory to process (default: newest PDF in input/pdf/)")
	outputPtr := flag.String("output", "", "Output directory (default: output/<input name>)")
	dpiPtr := flag.Int("dpi", defaults.DPI, "Rasterization DPI for PDF pages")
	maxAnglePtr := flag.Float64("max-angle", defaults.MaxSkewAngle, "Skew search half-range in degrees")
	dilationXPtr := flag.Int("dilation-x", defaults.DilationX, "Horizontal dilation kernel width (merges characters into lines)")
	dilationYPtr := flag.Int("dilation-y", defaults.DilationY, "Vertical dilation kernel height (merges lines into blocks)")
	minAreaPtr := flag.Int("min-area", defaults.MinContourArea, "Minimum text contour area in pixels")
	imageAreaPtr := flag.Float64("image-area", defaults.ImageAreaPercent, "Minimum image region area as percent of page area")
	minSidePtr := flag.Int("min-side", defaults.MinImageSide, "Minimum image region side length in pixels")
	debugPtr := flag.Bool("debug", defaults.SaveDebug, "Save annotated debug images")
	ocrPtr := flag.Bool("ocr", false, "Run OCR on text regions (requires tesseract)")
	langPtr := flag.String("lang", defaults.OCRLanguage, "OCR language (ISO 639-1: en, de, fr, es, tr)")
	workersPtr := flag.Int("workers", 0, "Page workers (0 = auto-sized from CPU and memory)")

	flag.Parse()

	cfg := defaults
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Could not load config %s: %v", *configPtr, err)
		}
		cfg = loaded
	}

	// Explicitly set flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "max-angle":
			cfg.MaxSkewAngle = *maxAnglePtr
		case "dilation-x":
			cfg.DilationX = *dilationXPtr
		case "dilation-y":
			cfg.DilationY = *dilationYPtr
		case "min-area":
			cfg.MinContourArea = *minAreaPtr
		case "image-area":
			cfg.ImageAreaPercent = *imageAreaPtr
		case "min-side":
			cfg.MinImageSide = *minSidePtr
		case "debug":
			cfg.SaveDebug = *debugPtr
		case "ocr":
			cfg.EnableOCR = *ocrPtr
		case "lang":
			cfg.OCRLanguage = *langPtr
		case "workers":
			cfg.Workers = *workersPtr
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Invalid parameters: %v", err)
	}

	if cfg.InputPath == "" {
		latest, err := system.FindLatestPDF("input/pdf")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a PDF into input/pdf/ or pass -input", err)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Selected input: %s\n", cfg.InputPath)
	}

	if cfg.OutputDir == "" {
		base := filepath.Base(cfg.InputPath)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		cfg.OutputDir = filepath.Join("output", strings.ReplaceAll(stem, " ", "_"))
	}

	var src source.Source
	var err error
	if strings.HasSuffix(strings.ToLower(cfg.InputPath), ".pdf") {
		src, err = source.NewFitzPDFSource(cfg.InputPath)
	} else {
		src, err = source.NewImageSource(cfg.InputPath)
	}
	if err != nil {
		log.Fatalf("[-] Could not open source: %v", err)
	}
	defer src.Close()

	fmt.Printf("[*] Source: %s | Pages: %d | DPI: %d\n", cfg.InputPath, src.PageCount(), cfg.DPI)
	fmt.Printf("[*] Detection: dilation (%d, %d), min area %d, image area %.1f%%\n",
		cfg.DilationX, cfg.DilationY, cfg.MinContourArea, cfg.ImageAreaPercent)

	layout, err := pipeline.New(cfg, src).ProcessDocument()
	if err != nil {
		log.Fatalf("[-] Pipeline failed: %v", err)
	}

	var ocr extract.Recognizer
	if cfg.EnableOCR {
		tess, err := extract.NewTesseract(cfg.OCRLanguage)
		if err != nil {
			log.Fatalf("[-] Could not initialize OCR: %v", err)
		}
		defer tess.Close()
		ocr = tess
	}

	doc, err := extract.NewExtractor(ocr, cfg.OutputDir).ExtractDocument(layout)
	if err != nil {
		log.Fatalf("[-] Extraction failed: %v", err)
	}

	jsonPath := filepath.Join(cfg.OutputDir, "extracted_content.json")
	if err := extract.WriteDocument(doc, jsonPath); err != nil {
		log.Fatalf("[-] Could not write document record: %v", err)
	}

	fmt.Printf("[+++] Done: %s\n", jsonPath)
}
