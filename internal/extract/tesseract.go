package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer turns a pixel region into a string. The production
// implementation wraps Tesseract; tests substitute a stub.
type Recognizer interface {
	Recognize(img image.Image) (string, error)
	Close() error
}

// Tesseract expects ISO 639-2 codes.
var tesseractLangs = map[string]string{
	"en": "eng",
	"de": "deu",
	"fr": "fra",
	"es": "spa",
	"tr": "tur",
}

// TesseractRecognizer runs OCR through a gosseract client. Not safe for
// concurrent use; hold one per goroutine or serialize calls.
type TesseractRecognizer struct {
	client *gosseract.Client
}

// NewTesseract creates a Tesseract-backed recognizer for the given ISO 639-1
// language code (unknown codes fall back to English).
func NewTesseract(lang string) (*TesseractRecognizer, error) {
	client := gosseract.NewClient()

	tessLang, ok := tesseractLangs[lang]
	if !ok {
		tessLang = "eng"
	}
	if err := client.SetLanguage(tessLang); err != nil {
		client.Close()
		return nil, fmt.Errorf("set OCR language %q: %w", tessLang, err)
	}

	return &TesseractRecognizer{client: client}, nil
}

func (t *TesseractRecognizer) Recognize(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode region for OCR: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set OCR image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (t *TesseractRecognizer) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
