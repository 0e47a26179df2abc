// Package upload implementa el contrato común de ingesta de archivos:
// validación de extensión/MIME/tamaño, nombre saneado y ruta particionada
// por fecha (year/month/day/nombre_timestamp.ext). El movimiento físico se
// delega en un FileStore (el filesystem local en producción).
package upload

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

// File archivo recibido en la petición multipart, aún sin almacenar.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Policy reglas de validación y destino para un sitio de subida.
type Policy struct {
	Prefix     string   // directorio raíz relativo, ej. "uploads"
	NamePrefix string   // prefijo del nombre final, ej. "completed_"
	MaxSize    int64    // bytes
	Extensions []string // con punto, en minúsculas
	MIMETypes  []string // vacío = no se valida MIME
}

// Umbrales de tamaño.
const (
	MaxModelSize    = 1 << 30  // 1 GiB
	MaxDocumentSize = 10 << 20 // 10 MiB
)

// Políticas de los tres sitios de subida del sistema.
var (
	// ModelFile archivo 3D adjunto a la solicitud de cotización.
	ModelFile = Policy{
		Prefix:     "uploads",
		MaxSize:    MaxModelSize,
		Extensions: []string{".stl", ".obj", ".ply", ".3mf"},
	}

	// CompletedFile entregable final; admite también archivos comprimidos.
	CompletedFile = Policy{
		Prefix:     "completed_files",
		NamePrefix: "completed_",
		MaxSize:    MaxModelSize,
		Extensions: []string{".stl", ".obj", ".ply", ".3mf", ".zip", ".rar"},
	}

	// PurchaseOrderDocument documento de orden de compra.
	PurchaseOrderDocument = Policy{
		Prefix:     "uploads/purchase_orders",
		MaxSize:    MaxDocumentSize,
		Extensions: []string{".pdf", ".doc", ".docx", ".jpeg", ".jpg", ".png"},
		MIMETypes: []string{
			"application/pdf",
			"image/jpeg",
			"image/png",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
	}
)

// FileStore puerto del blob store. Save escribe el contenido en la ruta
// relativa indicada; Remove borra un archivo previamente guardado.
type FileStore interface {
	Save(relPath string, r io.Reader) error
	Remove(relPath string) error
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Validate aplica la política sin tocar el almacenamiento. Devuelve la
// extensión (en minúsculas) si el archivo es aceptable.
func Validate(f File, p Policy) (string, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !contains(p.Extensions, ext) {
		return "", fmt.Errorf("%w: tipo de archivo inválido, permitidos: %s",
			domain.ErrInvalidInput, strings.Join(p.Extensions, ", "))
	}
	if f.Size > p.MaxSize {
		return "", fmt.Errorf("%w: el archivo excede el límite de %dMB",
			domain.ErrInvalidInput, p.MaxSize/(1<<20))
	}
	if len(p.MIMETypes) > 0 && !contains(p.MIMETypes, f.ContentType) {
		return "", fmt.Errorf("%w: tipo de archivo inválido, permitidos: %s",
			domain.ErrInvalidInput, strings.Join(p.Extensions, ", "))
	}
	return ext, nil
}

// Store valida y escribe el archivo. La ruta devuelta es relativa y apta
// para servirse como estático (/uploads/2026/8/28/pieza_1756375000000.stl).
// Ante cualquier fallo posterior el llamador debe invocar store.Remove.
func Store(store FileStore, f File, p Policy, now time.Time) (entity.StoredFile, error) {
	ext, err := Validate(f, p)
	if err != nil {
		return entity.StoredFile{}, err
	}

	base := strings.TrimSuffix(filepath.Base(f.Name), filepath.Ext(f.Name))
	name := strings.ToLower(nonAlnum.ReplaceAllString(base, "_"))
	fileName := fmt.Sprintf("%s%s_%d%s", p.NamePrefix, name, now.UnixMilli(), ext)
	relPath := fmt.Sprintf("/%s/%d/%d/%d/%s",
		p.Prefix, now.Year(), int(now.Month()), now.Day(), fileName)

	src, err := f.Open()
	if err != nil {
		return entity.StoredFile{}, fmt.Errorf("abrir archivo subido: %w", err)
	}
	defer src.Close()

	if err := store.Save(relPath, src); err != nil {
		return entity.StoredFile{}, fmt.Errorf("guardar archivo: %w", err)
	}

	return entity.StoredFile{
		Path: relPath,
		Type: strings.ToUpper(strings.TrimPrefix(ext, ".")),
		Size: f.Size,
	}, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
