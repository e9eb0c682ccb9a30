package handlers

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/karirconnect/backoffice/internal/company/controller"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/pkg/utils"
)

type companyView struct {
	ID                      uint            `json:"id"`
	Name                    string          `json:"name"`
	Slug                    string          `json:"slug"`
	Description             string          `json:"description,omitempty"`
	Website                 string          `json:"website,omitempty"`
	Email                   string          `json:"email,omitempty"`
	Phone                   string          `json:"phone,omitempty"`
	Address                 string          `json:"address,omitempty"`
	Industry                string          `json:"industry,omitempty"`
	CompanySize             string          `json:"company_size,omitempty"`
	LogoURL                 string          `json:"logo_url,omitempty"`
	IsActive                bool            `json:"is_active"`
	AdminUserID             *uint           `json:"admin_user_id,omitempty"`
	VerificationStatus      string          `json:"verification_status"`
	IsVerified              bool            `json:"is_verified"`
	VerificationSubmittedAt *time.Time      `json:"verification_submitted_at,omitempty"`
	VerificationReviewedAt  *time.Time      `json:"verification_reviewed_at,omitempty"`
	Quota                   models.JobQuota `json:"quota"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

func toCompanyView(c *models.Company) companyView {
	v := companyView{
		ID:                      c.ID,
		Name:                    c.Name,
		Slug:                    c.Slug,
		Description:             c.Description,
		Website:                 c.Website,
		Email:                   c.Email,
		Phone:                   c.Phone,
		Address:                 c.Address,
		Industry:                c.Industry,
		CompanySize:             string(c.Size),
		IsActive:                c.IsActive,
		AdminUserID:             c.AdminUserID,
		VerificationStatus:      string(c.VerificationStatus),
		IsVerified:              c.IsVerified,
		VerificationSubmittedAt: c.VerificationSubmittedAt,
		VerificationReviewedAt:  c.VerificationReviewedAt,
		Quota:                   c.Quota,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
	if c.LogoPath != "" {
		v.LogoURL = models.Document{Path: c.LogoPath}.URL()
	}
	return v
}

func toCompanyViews(companies []models.Company) []companyView {
	views := make([]companyView, 0, len(companies))
	for i := range companies {
		views = append(views, toCompanyView(&companies[i]))
	}
	return views
}

// publicCompanyView is what the public directory shows.
type publicCompanyView struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Industry    string `json:"industry,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
	Address     string `json:"address,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	IsVerified  bool   `json:"is_verified"`
}

func toPublicView(c *models.Company) publicCompanyView {
	v := toCompanyView(c)
	return publicCompanyView{
		Name:        v.Name,
		Slug:        v.Slug,
		Description: v.Description,
		Website:     v.Website,
		Industry:    v.Industry,
		CompanySize: v.CompanySize,
		Address:     v.Address,
		LogoURL:     v.LogoURL,
		IsVerified:  v.IsVerified,
	}
}

type listResponse struct {
	Data       interface{}      `json:"data"`
	Pagination utils.Pagination `json:"pagination"`
}

// viewerDescriptor configures the full-screen document viewer.
type viewerDescriptor struct {
	Kind         string            `json:"kind"`
	MinZoom      float64           `json:"min_zoom"`
	MaxZoom      float64           `json:"max_zoom"`
	ZoomStep     float64           `json:"zoom_step"`
	RotationStep int               `json:"rotation_step"`
	Keys         map[string]string `json:"keys"`
}

var viewerKeys = map[string]string{
	"Escape":     "close",
	"ArrowLeft":  "previous",
	"ArrowRight": "next",
	"+":          "zoom_in",
	"-":          "zoom_out",
}

func viewerFor(path string) viewerDescriptor {
	kind := "image"
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		kind = "pdf"
	}
	return viewerDescriptor{
		Kind:         kind,
		MinZoom:      0.25,
		MaxZoom:      3.0,
		ZoomStep:     0.25,
		RotationStep: 90,
		Keys:         viewerKeys,
	}
}

type documentView struct {
	Name         string           `json:"name"`
	OriginalName string           `json:"original_name"`
	URL          string           `json:"url"`
	UploadedAt   time.Time        `json:"uploaded_at"`
	Viewer       viewerDescriptor `json:"viewer"`
}

func toDocumentViews(docs []models.Document) []documentView {
	views := make([]documentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, documentView{
			Name:         d.Name,
			OriginalName: d.OriginalName,
			URL:          d.URL(),
			UploadedAt:   d.UploadedAt,
			Viewer:       viewerFor(d.Path),
		})
	}
	return views
}

// verificationDataView is the structured-data tab of the review detail.
type verificationDataView struct {
	Company          companyView     `json:"company"`
	VerificationType string          `json:"verification_type,omitempty"`
	Fields           json.RawMessage `json:"fields,omitempty"`
	SubmittedAt      *time.Time      `json:"submitted_at,omitempty"`
	ReviewedAt       *time.Time      `json:"reviewed_at,omitempty"`
	AdminNotes       string          `json:"admin_notes,omitempty"`
}

type verificationDetailView struct {
	Data      verificationDataView `json:"data"`
	Documents []documentView       `json:"documents"`
}

func toVerificationDetail(c *models.Company, notes string) (verificationDetailView, error) {
	data := verificationDataView{
		Company:     toCompanyView(c),
		SubmittedAt: c.VerificationSubmittedAt,
		ReviewedAt:  c.VerificationReviewedAt,
		AdminNotes:  notes,
	}
	if c.VerificationData != nil {
		raw, err := models.MarshalVerificationData(c.VerificationData)
		if err != nil {
			return verificationDetailView{}, err
		}
		data.VerificationType = string(c.VerificationData.Type())
		data.Fields = raw
	}
	return verificationDetailView{Data: data, Documents: toDocumentViews(c.VerificationDocuments)}, nil
}

type reviewListResponse struct {
	Status     string              `json:"status"`
	Data       []companyView       `json:"data"`
	Pagination utils.Pagination    `json:"pagination"`
	Counts     models.StatusCounts `json:"counts"`
}

type ownVerificationView struct {
	Status    string `json:"status"`
	CanSubmit bool   `json:"can_submit"`
	verificationDetailView
}

type submitResponse struct {
	Submitted       bool   `json:"submitted"`
	Redirect        string `json:"redirect"`
	RedirectAfterMS int    `json:"redirect_after_ms"`
}

type dashboardView struct {
	Role           string              `json:"role"`
	Counts         models.StatusCounts `json:"counts,omitempty"`
	TotalCompanies int64               `json:"total_companies,omitempty"`
	Company        *companyView        `json:"company,omitempty"`
	ActiveJobs     int64               `json:"active_jobs"`
	CanPostJobs    bool                `json:"can_post_jobs"`
}

func toDashboardView(d *controller.Dashboard) dashboardView {
	v := dashboardView{
		Role:           string(d.Role),
		Counts:         d.Counts,
		TotalCompanies: d.TotalCompanies,
		ActiveJobs:     d.ActiveJobs,
	}
	if d.Company != nil {
		cv := toCompanyView(d.Company)
		v.Company = &cv
		v.CanPostJobs = d.Company.IsVerified && d.Company.IsActive &&
			d.ActiveJobs < int64(d.Company.Quota.MaxActiveJobs)
	}
	return v
}
