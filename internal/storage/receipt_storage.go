package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrReceiptTooLarge - квитанция больше допустимого размера.
var ErrReceiptTooLarge = errors.New("storage: квитанция превышает допустимый размер")

// ReceiptStorage хранит квитанции о переводах на диске, по каталогу на пользователя.
// Все операции идут через os.Root, поэтому путь не может выйти за корень хранилища.
type ReceiptStorage struct {
	root     *os.Root
	maxBytes int64
}

// NewReceiptStorage открывает (и при необходимости создаёт) корень хранилища.
func NewReceiptStorage(rootPath string, maxUploadMB int64) (*ReceiptStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}
	root, err := os.OpenRoot(rootPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось открыть каталог %s: %w", rootPath, err)
	}
	return &ReceiptStorage{root: root, maxBytes: maxUploadMB << 20}, nil
}

// Close освобождает дескриптор корня.
func (s *ReceiptStorage) Close() error {
	return s.root.Close()
}

// Save сохраняет квитанцию и возвращает путь относительно корня и размер.
// Запись идёт во временный файл, который переименовывается только после успешного копирования.
func (s *ReceiptStorage) Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	dir := userID.String()
	if err := s.root.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	name := path.Join(dir, "receipt_"+uuid.NewString()+receiptExt(originalName))
	tmp := name + ".tmp"

	written, err := s.write(tmp, r)
	if err != nil {
		_ = s.root.Remove(tmp)
		return "", 0, err
	}
	if err := s.root.Rename(tmp, name); err != nil {
		_ = s.root.Remove(tmp)
		return "", 0, fmt.Errorf("storage: не удалось сохранить файл: %w", err)
	}
	return name, written, nil
}

func (s *ReceiptStorage) write(name string, r io.Reader) (int64, error) {
	f, err := s.root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		return 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	case written > s.maxBytes:
		return 0, ErrReceiptTooLarge
	case closeErr != nil:
		return 0, fmt.Errorf("storage: ошибка закрытия файла: %w", closeErr)
	}
	return written, nil
}

// Delete удаляет квитанцию. Отсутствующий файл не считается ошибкой.
func (s *ReceiptStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.root.Remove(filepath.ToSlash(relativePath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// receiptExt возвращает расширение исходного имени в нижнем регистре, без путей.
func receiptExt(originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	if len(ext) > 8 || strings.ContainsAny(ext, " \x00") {
		return ""
	}
	return ext
}
