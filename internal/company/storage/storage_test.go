package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	disk := NewDiskFs(fs)

	p, err := disk.Save(context.Background(), "verification/12", "NPWP Scan.PDF", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "verification/12/"), p)
	assert.True(t, strings.HasSuffix(p, ".pdf"), p)

	content, err := afero.ReadFile(fs, "/"+p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))
}

func TestDiskSaveStaysInsideRoot(t *testing.T) {
	disk := NewDiskFs(afero.NewMemMapFs())

	p, err := disk.Save(context.Background(), "../../etc", "x.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "etc/"), p)
}

func TestDiskFileServer(t *testing.T) {
	disk := NewDiskFs(afero.NewMemMapFs())
	p, err := disk.Save(context.Background(), "logos", "logo.png", strings.NewReader("logo-bytes"))
	require.NoError(t, err)

	srv := http.StripPrefix("/storage", disk.FileServer())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/"+p, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "logo-bytes", string(body))
}

func TestDiskDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	disk := NewDiskFs(fs)

	p, err := disk.Save(context.Background(), "company-logos", "logo.png", strings.NewReader("png"))
	require.NoError(t, err)

	require.NoError(t, disk.Delete(context.Background(), p))
	exists, err := afero.Exists(fs, "/"+p)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, disk.Delete(context.Background(), p), "deleting twice is not an error")
}

func TestParseAssetURL(t *testing.T) {
	tests := []struct {
		url          string
		resourceType string
		publicID     string
		ok           bool
	}{
		{
			url:          "https://res.cloudinary.com/demo/image/upload/v1712345678/karirconnect/company-logos/3f2a.png",
			resourceType: "image",
			publicID:     "karirconnect/company-logos/3f2a",
			ok:           true,
		},
		{
			url:          "https://res.cloudinary.com/demo/raw/upload/v1/karirconnect/verification-documents/4/9c1d.docx",
			resourceType: "raw",
			publicID:     "karirconnect/verification-documents/4/9c1d.docx",
			ok:           true,
		},
		{url: "company-logos/3f2a.png"},
		{url: "https://res.cloudinary.com/demo/image/upload/"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			resourceType, publicID, ok := parseAssetURL(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.resourceType, resourceType)
			assert.Equal(t, tt.publicID, publicID)
		})
	}
}
