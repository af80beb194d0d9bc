package segment

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a detected region.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "text"
}

// MarshalJSON writes the kind in the persisted record form ("text"/"image").
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// BBox is an axis-aligned bounding box in pixel coordinates of the corrected
// page image. Width and Height are always positive for emitted regions.
type BBox struct {
	X, Y, W, H int
}

// MarshalJSON writes the box as the [x, y, w, h] array of the document record.
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X, b.Y, b.W, b.H})
}

// Region is one detected content region of a page. ID is "<kind>_<n>" with n
// counting per kind from 1 in contour-discovery order. Content stays empty
// until the extraction collaborator fills it (recognized text for text
// regions, a crop file path for image regions).
type Region struct {
	ID      string
	Kind    Kind
	BBox    BBox
	Content string
}

func regionID(kind Kind, n int) string {
	return fmt.Sprintf("%s_%d", kind, n)
}
