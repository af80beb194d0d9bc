package extract

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ivlev/pagescan/internal/pipeline"
	"github.com/ivlev/pagescan/internal/segment"
)

// stubRecognizer returns a fixed string, or an error when text is empty.
type stubRecognizer struct {
	text  string
	calls int
}

func (s *stubRecognizer) Recognize(img image.Image) (string, error) {
	s.calls++
	if s.text == "" {
		return "", fmt.Errorf("recognizer unavailable")
	}
	return s.text, nil
}

func (s *stubRecognizer) Close() error { return nil }

func writeTestPage(t *testing.T, dir string) string {
	t.Helper()
	page := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for i := range page.Pix {
		page.Pix[i] = 255
	}
	for y := 40; y < 100; y++ {
		for x := 40; x < 120; x++ {
			i := page.PixOffset(x, y)
			page.Pix[i], page.Pix[i+1], page.Pix[i+2] = 0, 0, 0
		}
	}

	path := filepath.Join(dir, "page_001.png")
	if err := imaging.Save(page, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func testLayout(pagePath string) *pipeline.DocumentLayout {
	return &pipeline.DocumentLayout{Pages: []pipeline.PageLayout{
		{
			PagePath: pagePath,
			Regions: []segment.Region{
				{ID: "text_1", Kind: segment.KindText, BBox: segment.BBox{X: 150, Y: 20, W: 100, H: 30}},
				{ID: "image_1", Kind: segment.KindImage, BBox: segment.BBox{X: 40, Y: 40, W: 80, H: 60}},
			},
		},
	}}
}

func TestExtractDocument(t *testing.T) {
	dir := t.TempDir()
	pagePath := writeTestPage(t, dir)

	ocr := &stubRecognizer{text: "hello world"}
	doc, err := NewExtractor(ocr, dir).ExtractDocument(testLayout(pagePath))
	if err != nil {
		t.Fatalf("ExtractDocument failed: %v", err)
	}

	if len(doc.Pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(doc.Pages))
	}
	page := doc.Pages[0]
	if page.Page != 1 || page.Path != pagePath {
		t.Errorf("Unexpected page record: %+v", page)
	}
	if len(page.Regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(page.Regions))
	}

	if page.Regions[0].Content != "hello world" {
		t.Errorf("Text region content: expected %q, got %q", "hello world", page.Regions[0].Content)
	}
	if ocr.calls != 1 {
		t.Errorf("Expected one OCR call, got %d", ocr.calls)
	}

	cropPath := page.Regions[1].Content
	if cropPath == "" {
		t.Fatal("Image region content should hold the crop path")
	}
	if _, err := os.Stat(cropPath); err != nil {
		t.Errorf("Image crop not written: %v", err)
	}
	crop, err := imaging.Open(cropPath)
	if err != nil {
		t.Fatalf("Could not read crop: %v", err)
	}
	// 80x60 box plus 5px padding on every side.
	if crop.Bounds().Dx() != 90 || crop.Bounds().Dy() != 70 {
		t.Errorf("Unexpected crop size %v", crop.Bounds())
	}
}

func TestExtractWithoutRecognizer(t *testing.T) {
	dir := t.TempDir()
	pagePath := writeTestPage(t, dir)

	doc, err := NewExtractor(nil, dir).ExtractDocument(testLayout(pagePath))
	if err != nil {
		t.Fatalf("ExtractDocument failed: %v", err)
	}
	if doc.Pages[0].Regions[0].Content != "" {
		t.Error("Text content should stay empty without a recognizer")
	}
}

func TestExtractRecognizerFailureLeavesContentEmpty(t *testing.T) {
	dir := t.TempDir()
	pagePath := writeTestPage(t, dir)

	doc, err := NewExtractor(&stubRecognizer{}, dir).ExtractDocument(testLayout(pagePath))
	if err != nil {
		t.Fatalf("ExtractDocument failed: %v", err)
	}
	if doc.Pages[0].Regions[0].Content != "" {
		t.Error("OCR failure should leave the region content empty")
	}
}

func TestExtractSkipsUnreadablePage(t *testing.T) {
	dir := t.TempDir()
	layout := testLayout(filepath.Join(dir, "missing.png"))

	doc, err := NewExtractor(nil, dir).ExtractDocument(layout)
	if err != nil {
		t.Fatalf("ExtractDocument failed: %v", err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("Unreadable pages should be skipped, got %d entries", len(doc.Pages))
	}
}

func TestWriteDocumentRecordShape(t *testing.T) {
	dir := t.TempDir()
	pagePath := writeTestPage(t, dir)

	doc, err := NewExtractor(&stubRecognizer{text: "ok"}, dir).ExtractDocument(testLayout(pagePath))
	if err != nil {
		t.Fatalf("ExtractDocument failed: %v", err)
	}

	jsonPath := filepath.Join(dir, "extracted_content.json")
	if err := WriteDocument(doc, jsonPath); err != nil {
		t.Fatalf("WriteDocument failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}

	var record struct {
		Pages []struct {
			Page    int    `json:"page"`
			Path    string `json:"path"`
			Regions []struct {
				ID      string `json:"id"`
				Type    string `json:"type"`
				BBox    [4]int `json:"bbox"`
				Content string `json:"content"`
			} `json:"regions"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Record does not parse: %v", err)
	}

	regions := record.Pages[0].Regions
	if regions[0].Type != "text" || regions[1].Type != "image" {
		t.Errorf("Unexpected region types: %s, %s", regions[0].Type, regions[1].Type)
	}
	if regions[1].BBox != [4]int{40, 40, 80, 60} {
		t.Errorf("BBox should serialize as [x,y,w,h], got %v", regions[1].BBox)
	}
}
