package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so that many page images and
// crops can be written concurrently (macOS defaults are very low).
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read the open-file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise the open-file limit: %v", err)
	}
}

// FindLatestPDF returns the most recently modified PDF in a directory.
func FindLatestPDF(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(strings.ToLower(f.Name()), ".pdf") {
			info, err := f.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(latestTime) {
				latestTime = info.ModTime()
				latestFile = filepath.Join(dir, f.Name())
			}
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no PDF files found in %s", dir)
	}

	return latestFile, nil
}

// SuggestWorkers picks a page-worker count for the given render DPI: one
// worker per logical CPU, reduced so that the RGBA rasters held in flight
// stay within half of the currently available memory.
func SuggestWorkers(dpi, pageCount int) int {
	workers := runtime.NumCPU()
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		workers = n
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		// A4 at the given DPI, 4 bytes per pixel. A worker holds the original
		// and the deskewed raster at the same time, hence the factor 2.
		pageBytes := uint64(8.27*float64(dpi)) * uint64(11.69*float64(dpi)) * 4 * 2
		if pageBytes > 0 {
			if byMem := int((vm.Available / 2) / pageBytes); byMem < workers {
				workers = byMem
			}
		}
	}

	if pageCount > 0 && workers > pageCount {
		workers = pageCount
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
