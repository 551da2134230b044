package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DocumentFileName - имя файла документа внутри STORAGE_DIR.
const DocumentFileName = "config.json"

// FileBackend хранит документ в JSON-файле на диске.
type FileBackend struct {
	path string
}

// NewFileBackend создает каталог (если его нет) и возвращает бэкенд для <dir>/config.json.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("каталог хранилища не указан")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог хранилища %s: %w", dir, err)
	}
	return &FileBackend{path: filepath.Join(dir, DocumentFileName)}, nil
}

// Path возвращает путь к файлу документа.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", b.path, err)
	}
	return data, nil
}

// Write пишет во временный файл в том же каталоге и переименовывает его поверх документа,
// поэтому читатель видит либо старую, либо новую версию целиком.
func (b *FileBackend) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, ".config-*.json.tmp")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// После успешного Rename файла уже нет, ошибка игнорируется.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("запись временного файла: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync временного файла: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("закрытие временного файла: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod временного файла: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("переименование %s -> %s: %w", tmpName, b.path, err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
