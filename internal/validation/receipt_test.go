package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}
	pdfHeader  = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	zipHeader  = []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00, 0x00, 0x00}
)

func TestValidateReceipt(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		header   []byte
		wantMIME string
		wantErr  bool
	}{
		{"png", "check.png", pngHeader, "image/png", false},
		{"jpg как jpeg", "check.JPG", jpegHeader, "image/jpeg", false},
		{"pdf", "receipt.pdf", pdfHeader, "application/pdf", false},
		{"без расширения", "receipt", pngHeader, "image/png", false},
		{"расширение не совпадает", "check.pdf", pngHeader, "", true},
		{"архив", "check.zip", zipHeader, "", true},
		{"пустой", "check.png", nil, "", true},
		{"текст", "check.txt", []byte("hello world"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := ValidateReceipt(tt.filename, tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, mime)
		})
	}
}
