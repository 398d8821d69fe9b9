// Package render turns a composed document.Document into bytes: PDF, XLSX,
// JSON, or coloured terminal text.
package render

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/festsched/internal/document"
	"github.com/pkordes/festsched/internal/domain"
)

// Output formats accepted by New.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// Formats lists the file formats in display order.
var Formats = []string{FormatPDF, FormatXLSX, FormatJSON}

// ErrUnsupportedImage is returned for image payloads that are not PNG, JPEG or GIF.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Renderer writes a document in one output format.
type Renderer interface {
	Render(w io.Writer, doc document.Document) error
	// Ext is the file extension without the leading dot.
	Ext() string
}

// Options configures the file renderers.
type Options struct {
	// Now stamps the "generated on" footer. Defaults to time.Now.
	Now func() time.Time
}

// New returns the renderer for format.
func New(format string, opts Options) (Renderer, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	switch strings.ToLower(format) {
	case FormatPDF, "":
		return &PDF{Now: opts.Now}, nil
	case FormatXLSX:
		return &XLSX{}, nil
	case FormatJSON:
		return JSON{}, nil
	}
	return nil, fmt.Errorf("render.New: unknown format %q: %w", format, domain.ErrValidation)
}

// Filename is the document's base name with the renderer's extension.
func Filename(doc document.Document, r Renderer) string {
	return doc.BaseName() + "." + r.Ext()
}

// decodeImage accepts raw base64 or a data URL and returns the bytes and
// the image type ("PNG", "JPG" or "GIF").
func decodeImage(data string) ([]byte, string, error) {
	if strings.HasPrefix(data, "data:") {
		i := strings.Index(data, ",")
		if i < 0 {
			return nil, "", fmt.Errorf("malformed data URL: %w", ErrUnsupportedImage)
		}
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	switch http.DetectContentType(raw) {
	case "image/png":
		return raw, "PNG", nil
	case "image/jpeg":
		return raw, "JPG", nil
	case "image/gif":
		return raw, "GIF", nil
	}
	return nil, "", ErrUnsupportedImage
}

type rgb struct{ r, g, b int }

// parseHex reads "#rrggbb". Anything else is black.
func parseHex(s string) rgb {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return rgb{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}
