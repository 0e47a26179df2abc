// Package storage implementa el blob store sobre el filesystem local. Las
// rutas relativas que recibe son las mismas que el servidor expone como
// estáticos (/uploads/..., /completed_files/...).
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/makerforge/quote3d-api/internal/application/upload"
)

var _ upload.FileStore = (*LocalStore)(nil)

// LocalStore guarda archivos bajo un directorio raíz.
type LocalStore struct {
	baseDir string
}

// NewLocalStore construye el store y garantiza que exista la raíz.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolver raíz de almacenamiento: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("crear raíz de almacenamiento: %w", err)
	}
	return &LocalStore{baseDir: abs}, nil
}

// BaseDir devuelve la raíz absoluta (para montar los estáticos).
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// Save escribe el contenido en la ruta relativa, creando los directorios
// intermedios (partición por fecha).
func (s *LocalStore) Save(relPath string, r io.Reader) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("crear directorio: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("crear archivo: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("escribir archivo: %w", err)
	}
	return nil
}

// Remove borra un archivo previamente guardado. Borrar algo que ya no
// existe no es error.
func (s *LocalStore) Remove(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("borrar archivo: %w", err)
	}
	return nil
}

// resolve une la ruta relativa a la raíz y rechaza cualquier intento de
// escapar de ella.
func (s *LocalStore) resolve(relPath string) (string, error) {
	clean := filepath.Clean("/" + relPath)
	full := filepath.Join(s.baseDir, clean)
	if !strings.HasPrefix(full, s.baseDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("ruta fuera de la raíz de almacenamiento: %s", relPath)
	}
	return full, nil
}
