// Package controller implements the core business logic (service layer)
// for managing companies and their verification, orchestrating repository
// operations, file storage and events.
package controller

import (
	"context"
	"fmt"
	"io"

	"github.com/karirconnect/backoffice/internal/company/events"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/company/storage"
	"github.com/karirconnect/backoffice/internal/pkg/utils"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, company *models.Company)
}

// Repository defines the storage interface for companies and their users.
type Repository interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id uint) (*models.Company, error)
	GetCompanyBySlug(ctx context.Context, slug string) (*models.Company, error)
	ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]models.Company, int64, error)
	CountByVerificationStatus(ctx context.Context) (models.StatusCounts, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	ToggleActive(ctx context.Context, id uint) error
	SetVerified(ctx context.Context, id uint, verified bool) error
	SaveVerification(ctx context.Context, id uint, payload *models.VerificationPayload) error
	SetVerificationStatus(ctx context.Context, id uint, status models.VerificationStatus, notes string) error
	DeleteCompany(ctx context.Context, id uint) error
	CompanyExistsByName(ctx context.Context, name string) (bool, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CountActiveJobListings(ctx context.Context, companyID uint) (int64, error)
}

// Upload is one file received with a form, not yet stored.
type Upload struct {
	Field    string
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// CompanyPage is one page of a company listing.
type CompanyPage struct {
	Companies  []models.Company
	Pagination utils.Pagination
}

// store saves u under dir and returns the stored path.
func store(ctx context.Context, files storage.Store, dir string, u Upload) (string, error) {
	rc, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", u.Field, err)
	}
	defer rc.Close()

	path, err := files.Save(ctx, dir, u.Filename, rc)
	if err != nil {
		return "", fmt.Errorf("failed to store upload %s: %w", u.Field, err)
	}
	return path, nil
}

// discard removes files stored for a request that failed afterwards.
func discard(ctx context.Context, files storage.Store, logger *zap.Logger, paths ...string) {
	for _, p := range paths {
		if err := files.Delete(ctx, p); err != nil {
			logger.Warn("failed to remove orphaned upload", zap.String("path", p), zap.Error(err))
		}
	}
}

func emit(producer EventProducer, logger *zap.Logger, eventType events.EventType, company *models.Company) {
	logger.Debug("emitting event", zap.String("event", string(eventType)), zap.Uint("company_id", company.ID))
	go producer.Produce(eventType, company)
}
