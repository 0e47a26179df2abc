package upload

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerforge/quote3d-api/internal/domain"
)

type recordingStore struct {
	saved map[string]string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{saved: map[string]string{}}
}

func (s *recordingStore) Save(relPath string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.saved[relPath] = string(b)
	return nil
}

func (s *recordingStore) Remove(relPath string) error {
	delete(s.saved, relPath)
	return nil
}

func file(name string, size int64, contentType string) File {
	return File{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("contenido")), nil
		},
	}
}

func TestValidate_ExtensionesDeModelo(t *testing.T) {
	for _, name := range []string{"pieza.stl", "pieza.OBJ", "pieza.ply", "pieza.3mf"} {
		_, err := Validate(file(name, 100, ""), ModelFile)
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"pieza.exe", "pieza.stl.sh", "pieza", "pieza.zip"} {
		_, err := Validate(file(name, 100, ""), ModelFile)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestValidate_LimiteDeTamano(t *testing.T) {
	_, err := Validate(file("pieza.stl", MaxModelSize, ""), ModelFile)
	assert.NoError(t, err, "exactamente en el límite se acepta")

	_, err = Validate(file("pieza.stl", MaxModelSize+1, ""), ModelFile)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate_MIMEDeOrdenDeCompra(t *testing.T) {
	_, err := Validate(file("po.pdf", 100, "application/pdf"), PurchaseOrderDocument)
	assert.NoError(t, err)

	// extensión válida pero MIME falsificado
	_, err = Validate(file("po.pdf", 100, "application/x-msdownload"), PurchaseOrderDocument)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate_ComprimidosSoloParaEntregables(t *testing.T) {
	_, err := Validate(file("final.zip", 100, ""), CompletedFile)
	assert.NoError(t, err)
	_, err = Validate(file("final.rar", 100, ""), CompletedFile)
	assert.NoError(t, err)
}

func TestStore_RutaParticionadaPorFecha(t *testing.T) {
	store := newRecordingStore()
	now := time.Date(2026, time.March, 7, 10, 30, 0, 0, time.UTC)

	stored, err := Store(store, file("Mi Pieza (v2).stl", 9, ""), ModelFile, now)

	require.NoError(t, err)
	want := fmt.Sprintf("/uploads/2026/3/7/mi_pieza__v2__%d.stl", now.UnixMilli())
	assert.Equal(t, want, stored.Path)
	assert.Equal(t, "STL", stored.Type)
	assert.Equal(t, int64(9), stored.Size)
	assert.Equal(t, "contenido", store.saved[stored.Path])
}

func TestStore_PrefijoDeEntregable(t *testing.T) {
	store := newRecordingStore()
	now := time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)

	stored, err := Store(store, file("resultado.zip", 9, ""), CompletedFile, now)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Path, "/completed_files/2026/12/25/completed_resultado_"))
	assert.Equal(t, "ZIP", stored.Type)
}

func TestStore_ValidacionAntesDeEscribir(t *testing.T) {
	store := newRecordingStore()

	_, err := Store(store, file("malware.exe", 9, ""), ModelFile, time.Now())

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.saved)
}
