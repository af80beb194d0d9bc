// Package extract is the extraction collaborator: it crops every detected
// region out of the deskewed page images, runs OCR on text regions, saves
// image regions as crop files, and persists the document record JSON. The
// geometry core never touches this package's outputs.
package extract

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ivlev/pagescan/internal/pipeline"
	"github.com/ivlev/pagescan/internal/raster"
	"github.com/ivlev/pagescan/internal/segment"
)

// Document is the persisted record of a processed document.
type Document struct {
	Pages []Page `json:"pages"`
}

// Page mirrors one page of the document layout, with contents filled in.
type Page struct {
	Page    int            `json:"page"`
	Path    string         `json:"path"`
	Regions []RegionRecord `json:"regions"`
}

// RegionRecord is the serialized form of a region: type as "text"/"image",
// bbox as [x, y, w, h], content as recognized text or a crop file path.
type RegionRecord struct {
	ID      string       `json:"id"`
	Type    segment.Kind `json:"type"`
	BBox    segment.BBox `json:"bbox"`
	Content string       `json:"content"`
}

// Extractor fills region contents from the deskewed page images on disk.
type Extractor struct {
	// OCR recognizes text regions; when nil, text contents stay empty.
	OCR Recognizer
	// OutputDir receives the cropped_images/ tree for image regions.
	OutputDir string
	// Padding is added around each bounding box before cropping, clamped
	// to the page bounds.
	Padding int
}

func NewExtractor(ocr Recognizer, outputDir string) *Extractor {
	return &Extractor{OCR: ocr, OutputDir: outputDir, Padding: 5}
}

// ExtractDocument enriches a document layout into the persisted record.
// Pages whose deskewed image cannot be read back are skipped with a log
// line; region-level OCR or save failures leave that region's content empty.
func (e *Extractor) ExtractDocument(layout *pipeline.DocumentLayout) (*Document, error) {
	doc := &Document{Pages: []Page{}}

	for i, pl := range layout.Pages {
		pageNum := i + 1

		img, err := imaging.Open(pl.PagePath)
		if err != nil {
			log.Printf("[!] page %d: could not read %s: %v", pageNum, pl.PagePath, err)
			continue
		}

		page := Page{Page: pageNum, Path: pl.PagePath, Regions: []RegionRecord{}}
		cropDir := filepath.Join(e.OutputDir, "cropped_images", fmt.Sprintf("page_%03d", pageNum))

		for _, r := range pl.Regions {
			rec := RegionRecord{ID: r.ID, Type: r.Kind, BBox: r.BBox}
			crop := imaging.Crop(img, e.cropRect(r.BBox, img.Bounds()))

			switch r.Kind {
			case segment.KindText:
				rec.Content = e.recognize(crop, pageNum, r.ID)
			case segment.KindImage:
				if err := os.MkdirAll(cropDir, 0755); err != nil {
					log.Printf("[!] page %d: %v", pageNum, err)
					break
				}
				cropPath := filepath.Join(cropDir, fmt.Sprintf("region_%s_image.png", r.ID))
				if err := imaging.Save(crop, cropPath); err != nil {
					log.Printf("[!] page %d: could not save crop for %s: %v", pageNum, r.ID, err)
					break
				}
				rec.Content = cropPath
			}

			page.Regions = append(page.Regions, rec)
		}

		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}

// recognize binarizes a text crop the same way the detector binarizes pages
// (Otsu, dark ink on white) and hands it to the OCR engine.
func (e *Extractor) recognize(crop image.Image, pageNum int, id string) string {
	if e.OCR == nil {
		return ""
	}
	gray := raster.ToGray(crop)
	binary := raster.Binarize(gray, raster.Otsu(gray), false)
	text, err := e.OCR.Recognize(binary)
	if err != nil {
		log.Printf("[!] page %d: OCR failed on %s: %v", pageNum, id, err)
		return ""
	}
	return text
}

func (e *Extractor) cropRect(b segment.BBox, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(b.X-e.Padding, b.Y-e.Padding, b.X+b.W+e.Padding, b.Y+b.H+e.Padding)
	return r.Intersect(bounds)
}

// WriteDocument persists the record as indented JSON.
func WriteDocument(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
