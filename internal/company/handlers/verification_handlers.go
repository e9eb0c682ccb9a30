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
	"github.com/karirconnect/backoffice/internal/company/verification"
	"go.uber.org/zap"
)

const (
	// redirectAfterMS is how long the form shows its success state.
	redirectAfterMS = 3000

	msgSubmitted     = "Data verifikasi berhasil dikirim dan akan segera ditinjau."
	msgReviewed      = "Status verifikasi berhasil diperbarui."
	msgReviewFailed  = "Gagal memperbarui status verifikasi."
	msgSubmitBlocked = "Verifikasi gagal dikirim"
	msgAwaitReview   = "Data verifikasi Anda sedang ditinjau oleh tim kami."
)

// VerificationController is the verification workflow the handlers drive.
type VerificationController interface {
	Submit(ctx context.Context, companyID uint, payload *models.VerificationPayload, uploads []controller.Upload) (*models.Company, error)
	GetCompany(ctx context.Context, id uint) (*models.Company, error)
	ListForReview(ctx context.Context, filter controller.ReviewFilter) (*controller.ReviewPage, error)
	Review(ctx context.Context, id uint, status, notes string) (*models.Company, error)
}

// VerificationHandler serves the company admin's submission form and the
// super admin's review console.
type VerificationHandler struct {
	service  VerificationController
	notifier notify.Dispatcher
	logger   *zap.Logger
}

func NewVerificationHandler(service VerificationController, notifier notify.Dispatcher, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		service:  service,
		notifier: notifier,
		logger:   logger.Named("verification_handler"),
	}
}

// Submit serves POST /admin/company/verify/submit.
func (h *VerificationHandler) Submit(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	user := auth.PrincipalFromContext(r.Context())
	if user == nil || !user.HasCompany() {
		writeError(w, r, e.ErrForbidden, h.logger, nil, "")
		return
	}

	if err := parseForm(w, r); err != nil {
		writeError(w, r, e.NewValidationError("form", "Form tidak dapat dibaca"), h.logger, h.notifier, "")
		return
	}
	var form verificationForm
	if err := decodeForm(&form, r); err != nil {
		writeError(w, r, err, h.logger, h.notifier, "")
		return
	}

	uploads := uploadsOf(r, verification.DocumentFields...)
	_, err := h.service.Submit(r.Context(), *user.CompanyID, form.payload(), uploads)
	if err != nil {
		status, body := mapServiceError(err, h.logger)
		h.notifier.Error(r.Context(), msgSubmitBlocked+": "+body.Error)
		writeJSON(w, r, status, body)
		return
	}

	h.notifier.Success(r.Context(), msgSubmitted)
	writeJSON(w, r, http.StatusOK, submitResponse{
		Submitted:       true,
		Redirect:        auth.AdminDashboardPath,
		RedirectAfterMS: redirectAfterMS,
	})
}

// Own serves GET /admin/company/verify: the company admin's view of their
// own verification record.
func (h *VerificationHandler) Own(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	user := auth.PrincipalFromContext(r.Context())
	if user == nil || !user.HasCompany() {
		writeError(w, r, e.ErrForbidden, h.logger, nil, "")
		return
	}
	company, err := h.service.GetCompany(r.Context(), *user.CompanyID)
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	detail, err := toVerificationDetail(company, controller.VisibleNotes(company))
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	if company.VerificationStatus == models.StatusPending {
		h.notifier.Info(r.Context(), msgAwaitReview)
	}
	writeJSON(w, r, http.StatusOK, ownVerificationView{
		Status:                 string(company.VerificationStatus),
		CanSubmit:              company.VerificationStatus != models.StatusVerified,
		verificationDetailView: detail,
	})
}

// List serves GET /admin/companies/verification.
func (h *VerificationHandler) List(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	page, err := h.service.ListForReview(r.Context(), controller.ReviewFilter{
		Status:  q.Get("status"),
		Search:  strings.TrimSpace(q.Get("search")),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	})
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	writeJSON(w, r, http.StatusOK, reviewListResponse{
		Status:     page.Status,
		Data:       toCompanyViews(page.Companies),
		Pagination: page.Pagination,
		Counts:     page.Counts,
	})
}

// Show serves GET /admin/companies/verification/{id}.
func (h *VerificationHandler) Show(w http.ResponseWriter, r *http.Request, params map[string]string) {
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
	detail, err := toVerificationDetail(company, company.AdminNotes)
	if err != nil {
		writeError(w, r, err, h.logger, nil, "")
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

// Update serves POST /admin/companies/verification/{id}/update.
func (h *VerificationHandler) Update(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := parseID(params)
	if err != nil {
		writeError(w, r, err, h.logger, h.notifier, msgReviewFailed)
		return
	}
	if err := parseForm(w, r); err != nil {
		writeError(w, r, e.NewValidationError("form", "Form tidak dapat dibaca"), h.logger, h.notifier, msgReviewFailed)
		return
	}
	var form reviewForm
	if err := decodeForm(&form, r); err != nil {
		writeError(w, r, err, h.logger, h.notifier, msgReviewFailed)
		return
	}

	company, err := h.service.Review(r.Context(), id, form.Status, form.AdminNotes)
	if err != nil {
		h.logger.Warn("verification review failed", zap.Uint("company_id", id), zap.Error(err))
		writeError(w, r, err, h.logger, h.notifier, msgReviewFailed)
		return
	}
	h.notifier.Success(r.Context(), msgReviewed)
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"data": toCompanyView(company)})
}
