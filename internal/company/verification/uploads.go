package verification

import (
	"fmt"
	"path/filepath"
	"strings"

	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/models"
)

const (
	// MaxDocumentSize bounds every verification upload.
	MaxDocumentSize = 10 << 20
	// MaxLogoSize bounds company logos.
	MaxLogoSize = 2 << 20

	// LogoField is the form field carrying a company logo.
	LogoField = "logo"
)

// UploadRule limits one kind of uploaded file.
type UploadRule struct {
	MaxBytes   int64
	Extensions []string
}

var (
	documentRule = UploadRule{MaxBytes: MaxDocumentSize, Extensions: []string{".pdf", ".jpg", ".jpeg", ".png"}}
	photoRule    = UploadRule{MaxBytes: MaxDocumentSize, Extensions: []string{".jpg", ".jpeg", ".png", ".webp"}}
	logoRule     = UploadRule{MaxBytes: MaxLogoSize, Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".svg"}}
)

// Uploads maps every accepted upload field to its rule.
var Uploads = map[string]UploadRule{
	models.DocNPWP:                  documentRule,
	models.DocNIB:                   documentRule,
	models.DocNPWPPribadi:           documentRule,
	models.DocKTPPribadi:            documentRule,
	models.DocOnlineBusinessPhotos:  photoRule,
	models.DocOfflineBusinessPhotos: photoRule,
	LogoField:                       logoRule,
}

// DocumentFields lists the verification upload fields in display order.
var DocumentFields = []string{
	models.DocNPWP,
	models.DocNIB,
	models.DocNPWPPribadi,
	models.DocKTPPribadi,
	models.DocOnlineBusinessPhotos,
	models.DocOfflineBusinessPhotos,
}

// CheckUpload verifies that a file uploaded under field respects its rule.
func CheckUpload(field, filename string, size int64) error {
	rule, ok := Uploads[field]
	if !ok {
		return e.NewValidationError(field, fmt.Sprintf("Berkas %s tidak dikenali", field))
	}
	if size > rule.MaxBytes {
		return e.NewValidationError(field, fmt.Sprintf("Ukuran berkas %s melebihi %dMB", filename, rule.MaxBytes>>20))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range rule.Extensions {
		if ext == allowed {
			return nil
		}
	}
	return e.NewValidationError(field, fmt.Sprintf("Format berkas %s tidak didukung", filename))
}
