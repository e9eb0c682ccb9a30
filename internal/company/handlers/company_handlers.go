package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/karirconnect/backoffice/internal/company/auth"
	"github.com/karirconnect/backoffice/internal/company/controller"
	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/company/notify"
	"github.com/karirconnect/backoffice/internal/pkg/utils"
	"go.uber.org/zap"
)

// CompanyController defines the business logic interface
// that the company handlers will invoke.
type CompanyController interface {
	CreateCompany(ctx context.Context, company *models.Company, logo *controller.Upload) (*models.Company, error)
	GetCompany(ctx context.Context, id uint) (*models.Company, error)
	GetPublicCompany(ctx context.Context, slug string) (*models.Company, error)
	ListCompanies(ctx context.Context, filter models.CompanyFilter) (*controller.CompanyPage, error)
	ListPublicCompanies(ctx context.Context, search string, page, perPage int) (*controller.CompanyPage, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate, logo *controller.Upload) (*models.Company, error)
	ToggleStatus(ctx context.Context, id uint) (*models.Company, error)
	ToggleVerification(ctx context.Context, id uint) (*models.Company, error)
	DeleteCompany(ctx context.Context, id uint) error
	Dashboard(ctx context.Context, user *models.User) (*controller.Dashboard, error)
}

// CompanyHandler serves the admin company CRUD, the public directory and the
// dashboards.
type CompanyHandler struct {
	service  CompanyController
	notifier notify.Dispatcher
	logger   *zap.Logger
}

// NewCompanyHandler constructs a new CompanyHandler with the given service,
// notifier and logger.
func NewCompanyHandler(service CompanyController, notifier notify.Dispatcher, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service:  service,
		notifier: notifier,
		logger:   logger.Named("company_handler"),
	}
}

// ListCompanies serves GET /admin/companies.
func (h *CompanyHandler) ListCompanies(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	filter := models.CompanyFilter{
		Search:  strings.TrimSpace(q.Get("search")),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}
	switch q.Get("status") {
	case "active":
		filter.Active = utils.Ptr(true)
	case "inactive":
		filter.Active = utils.Ptr(false)
	}
	if v := q.Get("verification"); v != "" {
		st, err := models.ParseVerificationStatus(v)
		if err != nil {
			writeError(w, r, e.NewValidationError("verification", err.Error()), h.logger, nil, "")
			return
		}
		filter.Verification = &st
	}

	page, err := h.service.ListCompanies(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse{Data: toCompanyViews(page.Companies), Pagination: page.Pagination})
}

// CreateCompany serves POST /admin/companies.
func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var form companyForm
	if err := h.decode(w, r, &form); err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}

	created, err := h.service.CreateCompany(r.Context(), form.company(), logoOf(r))
	if err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}
	h.notifier.Success(r.Context(), "Perusahaan berhasil dibuat.")
	writeJSON(w, r, http.StatusCreated, map[string]interface{}{"data": toCompanyView(created)})
}

// GetCompany serves GET /admin/companies/{id}.
func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params)
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	company, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"data": toCompanyView(company)})
}

// UpdateCompany serves POST and PUT /admin/companies/{id}.
func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params)
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	var form companyForm
	if err := h.decode(w, r, &form); err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}

	updated, err := h.service.UpdateCompany(r.Context(), form.update(id), logoOf(r))
	if err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}
	h.notifier.Success(r.Context(), "Perusahaan berhasil diperbarui.")
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"data": toCompanyView(updated)})
}

// ToggleStatus serves POST /admin/companies/{id}/toggle-status.
func (h *CompanyHandler) ToggleStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.toggle(w, r, params, h.service.ToggleStatus, func(c *models.Company) string {
		if c.IsActive {
			return "Perusahaan diaktifkan."
		}
		return "Perusahaan dinonaktifkan."
	})
}

// ToggleVerification serves POST /admin/companies/{id}/toggle-verification.
func (h *CompanyHandler) ToggleVerification(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.toggle(w, r, params, h.service.ToggleVerification, func(c *models.Company) string {
		if c.IsVerified {
			return "Perusahaan ditandai terverifikasi."
		}
		return "Verifikasi perusahaan dicabut."
	})
}

func (h *CompanyHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	params map[string]string,
	fn func(context.Context, uint) (*models.Company, error),
	message func(*models.Company) string,
) {
	id, err := parseID(params)
	if err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}
	company, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}
	h.notifier.Success(r.Context(), message(company))
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"data": toCompanyView(company)})
}

// DeleteCompany serves DELETE /admin/companies/{id}.
func (h *CompanyHandler) DeleteCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params)
	if err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}
	if err := h.service.DeleteCompany(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}
	h.notifier.Success(r.Context(), "Perusahaan berhasil dihapus.")
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"deleted": true})
}

// PublicList serves GET /companies.
func (h *CompanyHandler) PublicList(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	page, err := h.service.ListPublicCompanies(r.Context(),
		strings.TrimSpace(r.URL.Query().Get("search")),
		queryInt(r, "page"),
		queryInt(r, "per_page"),
	)
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	views := make([]publicCompanyView, 0, len(page.Companies))
	for i := range page.Companies {
		views = append(views, toPublicView(&page.Companies[i]))
	}
	writeJSON(w, r, http.StatusOK, listResponse{Data: views, Pagination: page.Pagination})
}

// PublicShow serves GET /companies/{slug}.
func (h *CompanyHandler) PublicShow(w http.ResponseWriter, r *http.Request, params map[string]string) {
	company, err := h.service.GetPublicCompany(r.Context(), params["slug"])
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"data": toPublicView(company)})
}

// Dashboard serves GET /admin/dashboard and GET /dashboard.
func (h *CompanyHandler) Dashboard(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	user := auth.PrincipalFromContext(r.Context())
	if user == nil {
		writeError(w, r, e.ErrUnauthenticated, h.logger, nil, "")
		return
	}
	d, err := h.service.Dashboard(r.Context(), user)
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	writeJSON(w, r, http.StatusOK, toDashboardView(d))
}

func (h *CompanyHandler) decode(w http.ResponseWriter, r *http.Request, form *companyForm) error {
	if err := parseForm(w, r); err != nil {
		return e.NewValidationError("form", "Form tidak dapat dibaca")
	}
	if err := decodeForm(form, r); err != nil {
		return err
	}
	form.normalize(r.PostForm)
	return nil
}
