// Package pipeline sequences skew correction, region detection and the
// optional debug render across every page of a document. Pages are
// independent units of work: nothing mutable is shared between them, and a
// page that fails anywhere contributes an empty region list instead of
// aborting the document.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ivlev/pagescan/internal/annotate"
	"github.com/ivlev/pagescan/internal/config"
	"github.com/ivlev/pagescan/internal/deskew"
	"github.com/ivlev/pagescan/internal/segment"
	"github.com/ivlev/pagescan/internal/source"
	"github.com/ivlev/pagescan/internal/system"
)

// PageLayout is the ordered region sequence of one processed page, keyed by
// the path of the deskewed page image on disk.
type PageLayout struct {
	PagePath string
	Regions  []segment.Region
}

// DocumentLayout holds one PageLayout per processed page, in page order.
// A slice of pairs rather than a map: Go maps do not keep insertion order,
// and page order is part of the contract.
type DocumentLayout struct {
	Pages []PageLayout
}

// Pipeline drives a Source through the per-page processing stages.
type Pipeline struct {
	cfg *config.Config
	src source.Source
}

func New(cfg *config.Config, src source.Source) *Pipeline {
	return &Pipeline{cfg: cfg, src: src}
}

// ProcessDocument runs every page of the source through deskew and region
// detection and returns the aggregated layout. The only error it returns is
// a parameter contract violation, checked up front; per-page failures are
// logged and isolated.
func (p *Pipeline) ProcessDocument() (*DocumentLayout, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	pageCount := p.src.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("source contains no pages")
	}

	if err := os.MkdirAll(filepath.Join(p.cfg.OutputDir, "preprocessed"), 0755); err != nil {
		return nil, err
	}
	if p.cfg.SaveDebug {
		if err := os.MkdirAll(filepath.Join(p.cfg.OutputDir, "debug"), 0755); err != nil {
			return nil, err
		}
	}

	workers := p.cfg.Workers
	if workers == 0 {
		workers = system.SuggestWorkers(p.cfg.DPI, pageCount)
	}
	if workers > pageCount {
		workers = pageCount
	}

	// Workers pull page indices; results land in an index-addressed slice
	// so document order stays deterministic.
	jobs := make(chan int, pageCount)
	results := make([]PageLayout, pageCount)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.processPage(i, pageCount)
			}
		}()
	}

	for i := 0; i < pageCount; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return &DocumentLayout{Pages: results}, nil
}

// processPage runs one page through the full chain. Every failure path
// degrades to an empty region list for this page only.
func (p *Pipeline) processPage(i, pageCount int) PageLayout {
	failed := PageLayout{PagePath: p.src.PagePath(i)}

	img, err := p.src.RenderPage(i, p.cfg.DPI)
	if err != nil {
		log.Printf("[!] page %d/%d: render failed: %v", i+1, pageCount, err)
		return failed
	}

	corrected, angle, err := deskew.CorrectSkew(img, p.cfg.MaxSkewAngle)
	if err != nil {
		log.Printf("[!] page %d/%d: skew correction failed: %v", i+1, pageCount, err)
		return failed
	}

	// The deskewed page goes to disk: it is the raster the extraction
	// collaborator crops from, and its path keys the document layout.
	pagePath := filepath.Join(p.cfg.OutputDir, "preprocessed", fmt.Sprintf("page_%03d.png", i+1))
	if err := imaging.Save(corrected, pagePath); err != nil {
		log.Printf("[!] page %d/%d: could not save deskewed page: %v", i+1, pageCount, err)
		pagePath = p.src.PagePath(i)
	}

	regions, err := segment.DetectRegions(corrected, segment.Params{
		DilationX:        p.cfg.DilationX,
		DilationY:        p.cfg.DilationY,
		MinContourArea:   p.cfg.MinContourArea,
		ImageAreaPercent: p.cfg.ImageAreaPercent,
		MinImageSide:     p.cfg.MinImageSide,
	})
	if err != nil {
		log.Printf("[!] page %d/%d: region detection failed: %v", i+1, pageCount, err)
		return PageLayout{PagePath: pagePath}
	}

	if p.cfg.SaveDebug {
		debugPath := filepath.Join(p.cfg.OutputDir, "debug", fmt.Sprintf("page_%03d.png", i+1))
		if err := imaging.Save(annotate.Render(corrected, regions), debugPath); err != nil {
			log.Printf("[!] page %d/%d: could not save debug image: %v", i+1, pageCount, err)
		}
	}

	images, texts := 0, 0
	for _, r := range regions {
		if r.Kind == segment.KindImage {
			images++
		} else {
			texts++
		}
	}
	fmt.Printf("[*] page %d/%d: angle %.2f°, %d image(s), %d text block(s)\n",
		i+1, pageCount, angle, images, texts)

	return PageLayout{PagePath: pagePath, Regions: regions}
}
