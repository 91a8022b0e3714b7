package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ordercheck/internal/domain"
)

var (
	magicPDF = []byte("%PDF-")
	magicZip = []byte("PK\x03\x04")
)

// DetectFormat resolves the container format of a document. A declared format wins,
// then the file extension, then the leading bytes of the content.
func DetectFormat(name string, declared domain.Format, data []byte) (domain.Format, error) {
	if declared != "" {
		for _, f := range domain.AllowedExtensions {
			if f == declared {
				return declared, nil
			}
		}
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, declared)
	}

	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."); ext != "" {
		if f, ok := domain.AllowedExtensions[ext]; ok {
			return f, nil
		}
		return "", fmt.Errorf("%w: .%s", domain.ErrUnsupportedFormat, ext)
	}

	switch {
	case bytes.HasPrefix(data, magicPDF):
		return domain.FormatPDF, nil
	case bytes.HasPrefix(data, magicZip):
		return domain.FormatXLSX, nil
	case utf8.Valid(data) && bytes.IndexByte(data, 0) < 0:
		return domain.FormatText, nil
	}
	return "", fmt.Errorf("%w: unrecognized content", domain.ErrUnsupportedFormat)
}

// allowedFor reports whether role may be supplied in format.
func allowedFor(role domain.DocumentRole, format domain.Format) bool {
	allowed, ok := domain.AllowedFormats[role]
	if !ok {
		return false
	}
	for _, f := range allowed {
		if f == format {
			return true
		}
	}
	return false
}
