package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
	"github.com/karirconnect/backoffice/internal/company/controller"
	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/company/verification"
)

// maxFormMemory is kept in memory; larger parts spill to temp files.
const maxFormMemory = 32 << 20

// maxBodySize covers every verification upload at its size limit.
var maxBodySize = int64(len(verification.DocumentFields)*4)*verification.MaxDocumentSize + 1<<20

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(false, func(s string) reflect.Value {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes":
			return reflect.ValueOf(true)
		case "off", "no":
			return reflect.ValueOf(false)
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(b)
	})
	return d
}

// parseForm reads urlencoded and multipart bodies alike.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func decodeForm(dst interface{}, r *http.Request) error {
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		verr := &e.ValidationError{}
		if multi, ok := err.(schema.MultiError); ok {
			for field := range multi {
				verr.Add(field, field+" is invalid")
			}
		} else {
			verr.Add("form", err.Error())
		}
		return verr
	}
	return nil
}

// uploadsOf collects the files sent under fields. PHP-style "name[]" keys are
// accepted for multi-file fields.
func uploadsOf(r *http.Request, fields ...string) []controller.Upload {
	if r.MultipartForm == nil {
		return nil
	}
	var uploads []controller.Upload
	for _, field := range fields {
		for _, key := range []string{field, field + "[]"} {
			for _, fh := range r.MultipartForm.File[key] {
				uploads = append(uploads, fileUpload(field, fh))
			}
		}
	}
	return uploads
}

func fileUpload(field string, fh *multipart.FileHeader) controller.Upload {
	return controller.Upload{
		Field:    field,
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// verificationForm is the flat submission form; which fields matter depends
// on verification_type.
type verificationForm struct {
	VerificationType string `schema:"verification_type"`

	LegalCompanyName string `schema:"legal_company_name"`
	OfficeAddress    string `schema:"office_address"`
	WorkEmail        string `schema:"work_email"`

	BusinessEntityType string `schema:"business_entity_type"`
	NPWPNumber         string `schema:"npwp_number"`
	NIBNumber          string `schema:"nib_number"`
	PICName            string `schema:"pic_name"`
	PICPosition        string `schema:"pic_position"`
	PICEmail           string `schema:"pic_email"`
	PICPhone           string `schema:"pic_phone"`

	IdentityDocumentType string `schema:"identity_document_type"`
	NPWPPribadiNumber    string `schema:"npwp_pribadi_number"`
	KTPNumber            string `schema:"ktp_number"`
	BusinessActivityType string `schema:"business_activity_type"`
	OnlinePlatform       string `schema:"online_platform"`
	OnlineStoreURL       string `schema:"online_store_url"`
	BusinessLocation     string `schema:"business_location"`

	AgreeTerms          bool `schema:"agree_terms"`
	AgreeDataProcessing bool `schema:"agree_data_processing"`
}

func (f *verificationForm) payload() *models.VerificationPayload {
	header := models.VerificationHeader{
		LegalCompanyName: strings.TrimSpace(f.LegalCompanyName),
		OfficeAddress:    strings.TrimSpace(f.OfficeAddress),
		WorkEmail:        strings.TrimSpace(f.WorkEmail),
	}

	p := &models.VerificationPayload{
		AgreeTerms:          f.AgreeTerms,
		AgreeDataProcessing: f.AgreeDataProcessing,
	}
	switch models.VerificationType(f.VerificationType) {
	case models.VerificationLegal:
		p.Data = &models.LegalVerificationData{
			VerificationHeader: header,
			BusinessEntityType: models.BusinessEntityType(f.BusinessEntityType),
			NPWPNumber:         strings.TrimSpace(f.NPWPNumber),
			NIBNumber:          strings.TrimSpace(f.NIBNumber),
			PICName:            strings.TrimSpace(f.PICName),
			PICPosition:        strings.TrimSpace(f.PICPosition),
			PICEmail:           strings.TrimSpace(f.PICEmail),
			PICPhone:           strings.TrimSpace(f.PICPhone),
		}
	case models.VerificationIndividual:
		p.Data = &models.IndividualVerificationData{
			VerificationHeader:   header,
			IdentityDocumentType: models.IdentityDocumentType(f.IdentityDocumentType),
			NPWPPribadiNumber:    strings.TrimSpace(f.NPWPPribadiNumber),
			KTPNumber:            strings.TrimSpace(f.KTPNumber),
			BusinessActivityType: models.BusinessActivityType(f.BusinessActivityType),
			OnlinePlatform:       strings.TrimSpace(f.OnlinePlatform),
			OnlineStoreURL:       strings.TrimSpace(f.OnlineStoreURL),
			BusinessLocation:     strings.TrimSpace(f.BusinessLocation),
		}
	}
	return p
}

// companyForm backs both create and edit. After normalize, an absent field
// is nil so an edit leaves it alone, and a text field sent empty clears it.
type companyForm struct {
	Name          *string `schema:"name"`
	Description   *string `schema:"description"`
	Website       *string `schema:"website"`
	Email         *string `schema:"email"`
	Phone         *string `schema:"phone"`
	Address       *string `schema:"address"`
	Industry      *string `schema:"industry"`
	CompanySize   *string `schema:"company_size"`
	IsActive      *bool   `schema:"is_active"`
	AdminUserID   *uint   `schema:"admin_user_id"`
	MaxActiveJobs *int    `schema:"max_active_jobs"`
}

// normalize pins down what an empty value means. Text fields sent empty
// become "" so an edit clears them; an empty number, flag or size stays nil
// instead of decoding to its zero value.
func (f *companyForm) normalize(sent url.Values) {
	sentEmpty := func(key string) bool {
		vs, ok := sent[key]
		return ok && len(vs) > 0 && strings.TrimSpace(vs[len(vs)-1]) == ""
	}
	text := map[string]**string{
		"name":        &f.Name,
		"description": &f.Description,
		"website":     &f.Website,
		"email":       &f.Email,
		"phone":       &f.Phone,
		"address":     &f.Address,
		"industry":    &f.Industry,
	}
	for key, dst := range text {
		if sentEmpty(key) {
			*dst = new(string)
		}
	}
	if sentEmpty("company_size") {
		f.CompanySize = nil
	}
	if sentEmpty("is_active") {
		f.IsActive = nil
	}
	if sentEmpty("admin_user_id") {
		f.AdminUserID = nil
	}
	if sentEmpty("max_active_jobs") {
		f.MaxActiveJobs = nil
	}
}

func (f *companyForm) company() *models.Company {
	c := &models.Company{
		Name:        deref(f.Name),
		Description: deref(f.Description),
		Website:     deref(f.Website),
		Email:       deref(f.Email),
		Phone:       deref(f.Phone),
		Address:     deref(f.Address),
		Industry:    deref(f.Industry),
		Size:        models.CompanySize(deref(f.CompanySize)),
		IsActive:    true,
		AdminUserID: f.AdminUserID,
	}
	if f.IsActive != nil {
		c.IsActive = *f.IsActive
	}
	if f.MaxActiveJobs != nil {
		c.Quota.MaxActiveJobs = *f.MaxActiveJobs
	}
	return c
}

func (f *companyForm) update(id uint) *models.CompanyUpdate {
	u := &models.CompanyUpdate{
		ID:            id,
		Name:          f.Name,
		Description:   f.Description,
		Website:       f.Website,
		Email:         f.Email,
		Phone:         f.Phone,
		Address:       f.Address,
		Industry:      f.Industry,
		IsActive:      f.IsActive,
		AdminUserID:   f.AdminUserID,
		MaxActiveJobs: f.MaxActiveJobs,
	}
	if f.CompanySize != nil {
		size := models.CompanySize(*f.CompanySize)
		u.Size = &size
	}
	return u
}

type reviewForm struct {
	Status     string `schema:"status"`
	AdminNotes string `schema:"admin_notes"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// logoOf returns the uploaded logo, or nil when none was sent.
func logoOf(r *http.Request) *controller.Upload {
	uploads := uploadsOf(r, verification.LogoField)
	if len(uploads) == 0 {
		return nil
	}
	return &uploads[0]
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func parseID(params map[string]string) (uint, error) {
	id, err := strconv.ParseUint(params["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, e.NewValidationError("id", "invalid company ID")
	}
	return uint(id), nil
}
