package controller

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/events"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/company/storage"
	"github.com/karirconnect/backoffice/internal/company/verification"
	"github.com/karirconnect/backoffice/internal/pkg/utils"
	"go.uber.org/zap"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 5000
	// DefaultMaxActiveJobs is the quota given to a new company.
	DefaultMaxActiveJobs = 3

	logoDir = "company-logos"
)

// CompanyService provides methods to manage companies via repository
// operations and event production.
type CompanyService struct {
	repo     Repository
	files    storage.Store
	producer EventProducer
	logger   *zap.Logger
}

// NewCompanyService constructs a CompanyService with a repository, a file
// store for logos, an event producer, and a logger.
func NewCompanyService(repo Repository, files storage.Store, producer EventProducer, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:     repo,
		files:    files,
		producer: producer,
		logger:   logger.Named("company_service"),
	}
}

// CreateCompany validates and stores a new company, associating the optional
// admin user, and triggers an event. logo may be nil.
func (s *CompanyService) CreateCompany(ctx context.Context, company *models.Company, logo *Upload) (*models.Company, error) {
	company.Name = strings.TrimSpace(company.Name)
	if err := validateProfile(company.Name, company.Description, company.Email, company.Size); err != nil {
		return nil, err
	}

	exists, err := s.repo.CompanyExistsByName(ctx, company.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check name existence: %w", err)
	}
	if exists {
		return nil, e.ErrDuplicateName
	}

	if company.Slug, err = s.uniqueSlug(ctx, company.Name); err != nil {
		return nil, err
	}
	if logo != nil {
		if company.LogoPath, err = s.storeLogo(ctx, *logo); err != nil {
			return nil, err
		}
	}

	company.VerificationStatus = models.StatusUnverified
	company.IsVerified = false
	if company.Quota.MaxActiveJobs == 0 {
		company.Quota.MaxActiveJobs = DefaultMaxActiveJobs
	}

	// the admin user is attached in the same transaction as the insert
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		if company.LogoPath != "" {
			discard(ctx, s.files, s.logger, company.LogoPath)
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.logger.Info("company created", zap.Uint("company_id", company.ID), zap.String("slug", company.Slug))
	emit(s.producer, s.logger, events.CompanyCreated, company)
	return company, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CompanyService) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// GetPublicCompany looks up an active company by slug for the public directory.
func (s *CompanyService) GetPublicCompany(ctx context.Context, slug string) (*models.Company, error) {
	company, err := s.repo.GetCompanyBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if !company.IsActive {
		return nil, e.ErrNotFound
	}
	return company, nil
}

// ListCompanies returns one page of companies matching filter.
func (s *CompanyService) ListCompanies(ctx context.Context, filter models.CompanyFilter) (*CompanyPage, error) {
	filter.Page, filter.PerPage = utils.NormalizePage(filter.Page, filter.PerPage)
	companies, total, err := s.repo.ListCompanies(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return &CompanyPage{
		Companies:  companies,
		Pagination: utils.Paginate(filter.Page, filter.PerPage, total),
	}, nil
}

// ListPublicCompanies lists active companies only.
func (s *CompanyService) ListPublicCompanies(ctx context.Context, search string, page, perPage int) (*CompanyPage, error) {
	return s.ListCompanies(ctx, models.CompanyFilter{
		Search:  search,
		Active:  utils.Ptr(true),
		Page:    page,
		PerPage: perPage,
	})
}

// UpdateCompany modifies the specified Company fields,
// then fetches the updated version for returning and event production.
func (s *CompanyService) UpdateCompany(ctx context.Context, update *models.CompanyUpdate, logo *Upload) (*models.Company, error) {
	if update.ID == 0 {
		return nil, fmt.Errorf("%w: invalid company ID", e.ErrInvalidInput)
	}

	current, err := s.GetCompany(ctx, update.ID)
	if err != nil {
		return nil, err
	}

	name, description, email := current.Name, current.Description, current.Email
	size := current.Size
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
		name = trimmed
	}
	if update.Description != nil {
		description = *update.Description
	}
	if update.Email != nil {
		email = *update.Email
	}
	if update.Size != nil {
		size = *update.Size
	}
	if update.MaxActiveJobs != nil && *update.MaxActiveJobs < 0 {
		return nil, e.NewValidationError("max_active_jobs", "max_active_jobs must not be negative")
	}
	if err := validateProfile(name, description, email, size); err != nil {
		return nil, err
	}

	if !strings.EqualFold(name, current.Name) {
		exists, err := s.repo.CompanyExistsByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check name existence: %w", err)
		}
		if exists {
			return nil, e.ErrDuplicateName
		}
	}

	var storedLogo string
	if logo != nil {
		if storedLogo, err = s.storeLogo(ctx, *logo); err != nil {
			return nil, err
		}
		update.LogoPath = &storedLogo
	}

	if err := s.repo.UpdateCompany(ctx, update); err != nil {
		if storedLogo != "" {
			discard(ctx, s.files, s.logger, storedLogo)
		}
		if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	updated, err := s.repo.GetCompany(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to get company for event",
			zap.Error(err),
			zap.Uint("company_id", update.ID),
		)
		return nil, err
	}
	emit(s.producer, s.logger, events.CompanyUpdated, updated)
	return updated, nil
}

// ToggleStatus flips is_active and returns the company as stored afterwards.
func (s *CompanyService) ToggleStatus(ctx context.Context, id uint) (*models.Company, error) {
	if err := s.repo.ToggleActive(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to toggle company status: %w", err)
	}
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	emit(s.producer, s.logger, events.CompanyStatusToggled, company)
	return company, nil
}

// ToggleVerification is the super admin shortcut outside the review queue:
// a verified company becomes unverified, any other becomes verified.
func (s *CompanyService) ToggleVerification(ctx context.Context, id uint) (*models.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	verify := company.VerificationStatus != models.StatusVerified
	if err := s.repo.SetVerified(ctx, id, verify); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to toggle verification: %w", err)
	}

	company, err = s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("verification overridden",
		zap.Uint("company_id", id),
		zap.String("status", string(company.VerificationStatus)),
	)
	emit(s.producer, s.logger, events.VerificationOverride, company)
	return company, nil
}

// DeleteCompany removes a Company by ID and fires a deletion event.
func (s *CompanyService) DeleteCompany(ctx context.Context, id uint) error {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get company for deletion: %w", err)
	}

	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	emit(s.producer, s.logger, events.CompanyDeleted, company)
	return nil
}

// Dashboard is what the admin landing page shows.
type Dashboard struct {
	Role models.Role
	// Counts and TotalCompanies are filled for super admins.
	Counts         models.StatusCounts
	TotalCompanies int64
	// Company and ActiveJobs are filled for company admins.
	Company    *models.Company
	ActiveJobs int64
}

// Dashboard builds the admin dashboard for user.
func (s *CompanyService) Dashboard(ctx context.Context, user *models.User) (*Dashboard, error) {
	d := &Dashboard{Role: user.Role}
	switch user.Role {
	case models.RoleSuperAdmin:
		counts, err := s.repo.CountByVerificationStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count companies: %w", err)
		}
		d.Counts = counts
		for _, n := range counts {
			d.TotalCompanies += n
		}
	case models.RoleCompanyAdmin:
		if !user.HasCompany() {
			return nil, e.ErrForbidden
		}
		company, err := s.GetCompany(ctx, *user.CompanyID)
		if err != nil {
			return nil, err
		}
		active, err := s.repo.CountActiveJobListings(ctx, company.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count job listings: %w", err)
		}
		d.Company = company
		d.ActiveJobs = active
	case models.RoleRegularUser:
	default:
		return nil, e.ErrForbidden
	}
	return d, nil
}

func (s *CompanyService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "company"
	}
	slug := base
	for i := 2; ; i++ {
		exists, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *CompanyService) storeLogo(ctx context.Context, logo Upload) (string, error) {
	if err := verification.CheckUpload(verification.LogoField, logo.Filename, logo.Size); err != nil {
		return "", err
	}
	return store(ctx, s.files, logoDir, logo)
}

func validateProfile(name, description, email string, size models.CompanySize) error {
	verr := &e.ValidationError{}
	switch {
	case name == "":
		verr.Add("name", "name is required")
	case len(name) > maxNameLength:
		verr.Add("name", fmt.Sprintf("name must not exceed %d characters", maxNameLength))
	}
	if len(description) > maxDescriptionLength {
		verr.Add("description", fmt.Sprintf("description must not exceed %d characters", maxDescriptionLength))
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			verr.Add("email", "email must be a valid address")
		}
	}
	if size != "" && !size.Valid() {
		verr.Add("company_size", "company_size is not a known size")
	}
	return verr.Err()
}
