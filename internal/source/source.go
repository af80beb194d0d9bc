// Package source supplies page rasters to the pipeline. The renderer behind
// a Source (MuPDF for PDFs, plain image decoding for scans already on disk)
// is an external collaborator: a page that cannot be rendered or decoded is
// reported as an error for that page only.
package source

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Source is an ordered set of document pages that can be rasterized.
type Source interface {
	// PageCount returns the number of pages in the document.
	PageCount() int
	// PagePath returns a stable identifier for a page, used to key the
	// document layout. For file-backed sources this is the file path.
	PagePath(index int) string
	// RenderPage rasterizes a page at the given DPI (color, 8-bit).
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// FitzPDFSource renders PDF pages through go-fitz (MuPDF).
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) PagePath(index int) string {
	return fmt.Sprintf("%s#page=%d", f.path, index+1)
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	// fitz.Document is not safe for concurrent use; page workers each
	// render through their own handle.
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
