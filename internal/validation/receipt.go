package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Квитанции о переводе принимаются как изображения или PDF.
var allowedReceiptMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// ReceiptHeaderSize - сколько первых байт нужно для определения типа файла.
const ReceiptHeaderSize = 512

// ValidateReceipt проверяет квитанцию по магическим байтам и расширению имени.
// Возвращает MIME-тип.
func ValidateReceipt(filename string, header []byte) (string, error) {
	if len(header) == 0 {
		return "", fmt.Errorf("файл не может быть пустым")
	}

	kind, err := filetype.Match(header)
	if err != nil || kind == filetype.Unknown {
		return "", fmt.Errorf("не удалось определить тип файла")
	}
	if !allowedReceiptMimeTypes[kind.MIME.Value] {
		return "", fmt.Errorf("неподдерживаемый тип файла (%s)", kind.MIME.Value)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "jpg" {
		ext = "jpeg"
	}
	expected := kind.Extension
	if expected == "jpg" {
		expected = "jpeg"
	}
	if ext != "" && ext != expected {
		return "", fmt.Errorf("расширение файла (.%s) не соответствует типу (%s)", ext, kind.MIME.Value)
	}
	return kind.MIME.Value, nil
}
