package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// VerificationType selects which evidence a company submits.
type VerificationType string

const (
	VerificationLegal      VerificationType = "legal"
	VerificationIndividual VerificationType = "individual"
)

// BusinessEntityType is the registered form of a legal entity.
type BusinessEntityType string

const (
	EntityPT       BusinessEntityType = "pt"
	EntityCV       BusinessEntityType = "cv"
	EntityFirma    BusinessEntityType = "firma"
	EntityKoperasi BusinessEntityType = "koperasi"
	EntityYayasan  BusinessEntityType = "yayasan"
	EntityOther    BusinessEntityType = "other"
)

// Valid reports whether t is a known entity type.
func (t BusinessEntityType) Valid() bool {
	switch t {
	case EntityPT, EntityCV, EntityFirma, EntityKoperasi, EntityYayasan, EntityOther:
		return true
	}
	return false
}

// IdentityDocumentType is the personal document an individual submits.
type IdentityDocumentType string

const (
	IdentityNPWP IdentityDocumentType = "npwp"
	IdentityKTP  IdentityDocumentType = "ktp"
)

// BusinessActivityType says where an individual's business operates.
type BusinessActivityType string

const (
	ActivityOnline  BusinessActivityType = "online"
	ActivityOffline BusinessActivityType = "offline"
)

// Document names, matching the upload fields they come from.
const (
	DocNPWP                  = "npwp_document"
	DocNIB                   = "nib_document"
	DocNPWPPribadi           = "npwp_pribadi_document"
	DocKTPPribadi            = "ktp_pribadi_document"
	DocOnlineBusinessPhotos  = "online_business_photos"
	DocOfflineBusinessPhotos = "offline_business_photos"
)

// StoragePrefix is the public URL prefix for locally stored files.
const StoragePrefix = "/storage/"

// Document is one uploaded verification file.
type Document struct {
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// URL resolves the public location of the document.
func (d Document) URL() string {
	if strings.HasPrefix(d.Path, "http://") || strings.HasPrefix(d.Path, "https://") {
		return d.Path
	}
	return StoragePrefix + strings.TrimPrefix(d.Path, "/")
}

// VerificationHeader carries the fields both verification paths share.
type VerificationHeader struct {
	LegalCompanyName string    `json:"legal_company_name"`
	OfficeAddress    string    `json:"office_address"`
	WorkEmail        string    `json:"work_email"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// Header returns the shared fields.
func (h *VerificationHeader) Header() *VerificationHeader {
	return h
}

// VerificationData is either *LegalVerificationData or
// *IndividualVerificationData.
type VerificationData interface {
	Type() VerificationType
	Header() *VerificationHeader
	isVerificationData()
}

// LegalVerificationData is the evidence of a registered business entity.
type LegalVerificationData struct {
	VerificationHeader
	BusinessEntityType BusinessEntityType `json:"business_entity_type"`
	NPWPNumber         string             `json:"npwp_number"`
	NIBNumber          string             `json:"nib_number,omitempty"`
	PICName            string             `json:"pic_name"`
	PICPosition        string             `json:"pic_position"`
	PICEmail           string             `json:"pic_email"`
	PICPhone           string             `json:"pic_phone"`
}

func (*LegalVerificationData) Type() VerificationType { return VerificationLegal }
func (*LegalVerificationData) isVerificationData() {}

// IndividualVerificationData is the evidence of a sole proprietor.
type IndividualVerificationData struct {
	VerificationHeader
	IdentityDocumentType IdentityDocumentType `json:"identity_document_type"`
	NPWPPribadiNumber    string               `json:"npwp_pribadi_number,omitempty"`
	KTPNumber            string               `json:"ktp_number,omitempty"`
	BusinessActivityType BusinessActivityType `json:"business_activity_type"`
	OnlinePlatform       string               `json:"online_platform,omitempty"`
	OnlineStoreURL       string               `json:"online_store_url,omitempty"`
	BusinessLocation     string               `json:"business_location,omitempty"`
}

func (*IndividualVerificationData) Type() VerificationType { return VerificationIndividual }
func (*IndividualVerificationData) isVerificationData() {}

// MarshalVerificationData encodes data as a flat JSON object tagged with
// verification_type.
func MarshalVerificationData(data VerificationData) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(data.Type())
	if err != nil {
		return nil, err
	}
	fields["verification_type"] = tag
	return json.Marshal(fields)
}

// UnmarshalVerificationData decodes the tagged JSON written by
// MarshalVerificationData.
func UnmarshalVerificationData(b []byte) (VerificationData, error) {
	var tag struct {
		Type VerificationType `json:"verification_type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return nil, err
	}
	var data VerificationData
	switch tag.Type {
	case VerificationLegal:
		data = &LegalVerificationData{}
	case VerificationIndividual:
		data = &IndividualVerificationData{}
	default:
		return nil, fmt.Errorf("unknown verification type %q", tag.Type)
	}
	if err := json.Unmarshal(b, data); err != nil {
		return nil, err
	}
	return data, nil
}

// VerificationPayload is everything a company admin submits for review.
type VerificationPayload struct {
	Data                VerificationData
	Documents           []Document
	AgreeTerms          bool
	AgreeDataProcessing bool
}

// DocumentCount returns how many documents were attached under name.
func (p *VerificationPayload) DocumentCount(name string) int {
	n := 0
	for _, d := range p.Documents {
		if d.Name == name {
			n++
		}
	}
	return n
}
