package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/events"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/company/storage"
	"github.com/karirconnect/backoffice/internal/company/verification"
	"github.com/karirconnect/backoffice/internal/pkg/utils"
	"go.uber.org/zap"
)

// StatusAll disables the status filter of the review queue.
const StatusAll = "all"

// MsgInvalidDecision is returned when a reviewer picks anything but
// verified or rejected.
const MsgInvalidDecision = "Status verifikasi tidak valid"

// ReviewFilter narrows the review queue. An empty Status means pending.
type ReviewFilter struct {
	Status  string
	Search  string
	Page    int
	PerPage int
}

// ReviewPage is one page of the review queue with the per-tab counters.
type ReviewPage struct {
	Status     string
	Companies  []models.Company
	Pagination utils.Pagination
	Counts     models.StatusCounts
}

// VerificationService runs the submission and review workflow.
type VerificationService struct {
	repo     Repository
	files    storage.Store
	producer EventProducer
	logger   *zap.Logger
	now      func() time.Time
}

func NewVerificationService(repo Repository, files storage.Store, producer EventProducer, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		repo:     repo,
		files:    files,
		producer: producer,
		logger:   logger.Named("verification_service"),
		now:      time.Now,
	}
}

// Submit validates a company's verification form together with its uploads,
// stores the files and records the submission as pending. Nothing is stored
// when any check fails.
func (s *VerificationService) Submit(ctx context.Context, companyID uint, payload *models.VerificationPayload, uploads []Upload) (*models.Company, error) {
	payload.Documents = payload.Documents[:0]
	for _, u := range uploads {
		payload.Documents = append(payload.Documents, models.Document{Name: u.Field, OriginalName: u.Filename})
	}

	verr := &e.ValidationError{}
	if err := verification.Validate(payload); err != nil {
		var ve *e.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		verr.Fields = append(verr.Fields, ve.Fields...)
	}
	for _, u := range uploads {
		if err := verification.CheckUpload(u.Field, u.Filename, u.Size); err != nil {
			var ve *e.ValidationError
			if errors.As(err, &ve) {
				verr.Fields = append(verr.Fields, ve.Fields...)
			}
		}
	}
	if err := verr.Err(); err != nil {
		s.logger.Info("verification submission rejected",
			zap.Uint("company_id", companyID),
			zap.String("reason", verr.First().Message),
		)
		return nil, err
	}

	current, err := s.getCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if current.VerificationStatus == models.StatusVerified {
		return nil, fmt.Errorf("%w: company is already verified", e.ErrConflict)
	}

	now := s.now()
	dir := fmt.Sprintf("verification-documents/%d", companyID)
	stored := make([]string, 0, len(uploads))
	for i, u := range uploads {
		path, err := store(ctx, s.files, dir, u)
		if err != nil {
			discard(ctx, s.files, s.logger, stored...)
			return nil, err
		}
		stored = append(stored, path)
		payload.Documents[i].Path = path
		payload.Documents[i].UploadedAt = now
	}
	payload.Data.Header().SubmittedAt = now

	if err := s.repo.SaveVerification(ctx, companyID, payload); err != nil {
		discard(ctx, s.files, s.logger, stored...)
		if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save verification: %w", err)
	}

	company, err := s.getCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("verification submitted",
		zap.Uint("company_id", companyID),
		zap.String("type", string(payload.Data.Type())),
		zap.Int("documents", len(payload.Documents)),
	)
	emit(s.producer, s.logger, events.VerificationSubmitted, company)
	return company, nil
}

// GetCompany returns the company with its verification record.
func (s *VerificationService) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	return s.getCompany(ctx, id)
}

// ListForReview returns one page of the review queue.
func (s *VerificationService) ListForReview(ctx context.Context, filter ReviewFilter) (*ReviewPage, error) {
	status := strings.TrimSpace(filter.Status)
	if status == "" {
		status = string(models.StatusPending)
	}

	query := models.CompanyFilter{Search: filter.Search}
	query.Page, query.PerPage = utils.NormalizePage(filter.Page, filter.PerPage)
	if status != StatusAll {
		st, err := models.ParseVerificationStatus(status)
		if err != nil {
			return nil, e.NewValidationError("status", MsgInvalidDecision)
		}
		query.Verification = &st
	}

	companies, total, err := s.repo.ListCompanies(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	counts, err := s.repo.CountByVerificationStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}

	return &ReviewPage{
		Status:     status,
		Companies:  companies,
		Pagination: utils.Paginate(query.Page, query.PerPage, total),
		Counts:     counts,
	}, nil
}

// Review applies a reviewer decision: "verified" approves and "rejected"
// rejects. Only a pending submission can be reviewed.
func (s *VerificationService) Review(ctx context.Context, id uint, status, notes string) (*models.Company, error) {
	switch models.VerificationStatus(status) {
	case models.StatusVerified:
		return s.Approve(ctx, id, notes)
	case models.StatusRejected:
		return s.Reject(ctx, id, notes)
	default:
		return nil, e.NewValidationError("status", MsgInvalidDecision)
	}
}

func (s *VerificationService) Approve(ctx context.Context, id uint, notes string) (*models.Company, error) {
	return s.decide(ctx, id, models.StatusVerified, notes, events.VerificationApproved)
}

func (s *VerificationService) Reject(ctx context.Context, id uint, notes string) (*models.Company, error) {
	return s.decide(ctx, id, models.StatusRejected, notes, events.VerificationRejected)
}

func (s *VerificationService) decide(ctx context.Context, id uint, status models.VerificationStatus, notes string, ev events.EventType) (*models.Company, error) {
	if err := s.repo.SetVerificationStatus(ctx, id, status, strings.TrimSpace(notes)); err != nil {
		if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrConflict) || errors.Is(err, e.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set verification status: %w", err)
	}

	company, err := s.getCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("verification reviewed",
		zap.Uint("company_id", id),
		zap.String("status", string(status)),
	)
	emit(s.producer, s.logger, ev, company)
	return company, nil
}

// VisibleNotes returns the reviewer notes a company admin may read: only
// once a decision exists.
func VisibleNotes(c *models.Company) string {
	switch c.VerificationStatus {
	case models.StatusVerified, models.StatusRejected:
		return c.AdminNotes
	default:
		return ""
	}
}

func (s *VerificationService) getCompany(ctx context.Context, id uint) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}
