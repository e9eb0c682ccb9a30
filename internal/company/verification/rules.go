// Package verification holds the completeness rules a verification submission
// must pass before it is stored, and the limits on uploaded files.
package verification

import (
	"strings"

	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/models"
)

// User-facing messages, one per rule.
const (
	MsgAgreement         = "Persetujuan belum lengkap"
	MsgCompanyName       = "Nama perusahaan wajib diisi"
	MsgOfficeAddress     = "Alamat kantor wajib diisi"
	MsgWorkEmail         = "Email kerja wajib diisi"
	MsgVerificationType  = "Jenis verifikasi tidak valid"
	MsgEntityType        = "Jenis badan usaha wajib dipilih"
	MsgPIC               = "Data PIC tidak lengkap"
	MsgNPWPNumber        = "Nomor NPWP wajib diisi"
	MsgLegalDocuments    = "Dokumen legal tidak lengkap"
	MsgIdentityType      = "Jenis dokumen identitas wajib dipilih"
	MsgIdentityDocuments = "Dokumen identitas tidak lengkap"
	MsgActivityType      = "Jenis aktivitas bisnis wajib dipilih"
	MsgBusinessPhotos    = "Foto bisnis tidak lengkap"
)

// MinBusinessPhotos is the number of activity photos an individual submits.
const MinBusinessPhotos = 2

// Validate runs every rule against p in order. All failures are collected;
// the returned *errors.ValidationError reports the first one as its message.
func Validate(p *models.VerificationPayload) error {
	verr := &e.ValidationError{}

	if !p.AgreeTerms || !p.AgreeDataProcessing {
		verr.Add("agreement", MsgAgreement)
	}

	if p.Data == nil {
		verr.Add("verification_type", MsgVerificationType)
		return verr.Err()
	}

	h := p.Data.Header()
	if blank(h.LegalCompanyName) {
		verr.Add("legal_company_name", MsgCompanyName)
	}
	if blank(h.OfficeAddress) {
		verr.Add("office_address", MsgOfficeAddress)
	}
	if blank(h.WorkEmail) {
		verr.Add("work_email", MsgWorkEmail)
	}

	switch d := p.Data.(type) {
	case *models.LegalVerificationData:
		validateLegal(verr, d, p)
	case *models.IndividualVerificationData:
		validateIndividual(verr, d, p)
	default:
		verr.Add("verification_type", MsgVerificationType)
	}

	return verr.Err()
}

func validateLegal(verr *e.ValidationError, d *models.LegalVerificationData, p *models.VerificationPayload) {
	if !d.BusinessEntityType.Valid() {
		verr.Add("business_entity_type", MsgEntityType)
	}
	if blank(d.PICName) || blank(d.PICPosition) || blank(d.PICEmail) || blank(d.PICPhone) {
		verr.Add("pic", MsgPIC)
	}
	if blank(d.NPWPNumber) {
		verr.Add("npwp_number", MsgNPWPNumber)
	}
	if p.DocumentCount(models.DocNPWP) == 0 {
		verr.Add(models.DocNPWP, MsgLegalDocuments)
	}
}

func validateIndividual(verr *e.ValidationError, d *models.IndividualVerificationData, p *models.VerificationPayload) {
	switch d.IdentityDocumentType {
	case models.IdentityNPWP:
		if blank(d.NPWPPribadiNumber) || p.DocumentCount(models.DocNPWPPribadi) == 0 {
			verr.Add(models.DocNPWPPribadi, MsgIdentityDocuments)
		}
	case models.IdentityKTP:
		if p.DocumentCount(models.DocKTPPribadi) == 0 {
			verr.Add(models.DocKTPPribadi, MsgIdentityDocuments)
		}
	default:
		verr.Add("identity_document_type", MsgIdentityType)
	}

	switch d.BusinessActivityType {
	case models.ActivityOnline:
		if p.DocumentCount(models.DocOnlineBusinessPhotos) < MinBusinessPhotos {
			verr.Add(models.DocOnlineBusinessPhotos, MsgBusinessPhotos)
		}
	case models.ActivityOffline:
		if p.DocumentCount(models.DocOfflineBusinessPhotos) < MinBusinessPhotos {
			verr.Add(models.DocOfflineBusinessPhotos, MsgBusinessPhotos)
		}
	default:
		verr.Add("business_activity_type", MsgActivityType)
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
