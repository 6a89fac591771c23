package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticServesFilesUnderPrefix(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "products"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "products", "ribeye.jpg"), []byte("jpeg-bytes"), 0o644))

	r := New()
	r.Static("/storage", root)

	req := httptest.NewRequest(http.MethodGet, "/storage/products/ribeye.jpg", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestStaticMissingFile(t *testing.T) {
	r := New()
	r.Static("/storage", t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/storage/products/nope.jpg", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestURLSubstitutesParams(t *testing.T) {
	r := New()
	r.Get("/api/products/{id}", "products.show", func(http.ResponseWriter, *http.Request) {})

	url, err := r.URL("products.show", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/7", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err, "missing params must not build a half-filled path")
}
