// Package extract turns uploaded files and web pages into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat means the bytes could not be decoded as any
	// supported document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// FromFile extracts plain text from uploaded file bytes, dispatching on the
// filename extension. PDF pages are concatenated; everything else is
// decoded as UTF-8 with a Latin-1 fallback.
func FromFile(content []byte, filename string) (string, error) {
	if strings.ToLower(filepath.Ext(filename)) == ".pdf" {
		return fromPDF(content)
	}
	return decodeText(content)
}

func fromPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page without extractable text contributes nothing.
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	return decodeLatin1(content)
}

func decodeLatin1(content []byte) (string, error) {
	runes := make([]rune, 0, len(content))
	for _, b := range content {
		runes = append(runes, rune(b))
	}
	decoded := string(runes)
	if !utf8.ValidString(decoded) {
		return "", fmt.Errorf("%w: undecodable text", ErrUnsupportedFormat)
	}
	return decoded, nil
}
