package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dbmodels "github.com/karirconnect/backoffice/internal/company/db/models"
	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/pkg/utils"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the database file for the sqlite driver.
	Path string
}

// Dialector picks the gorm dialector for cfg.Driver; postgres is the default.
func Dialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		return mysql.Open(dsn), nil
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = "karirconnect.db"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewRepositoryFromDB(db)
}

// NewRepositoryFromDB wraps an open connection and migrates the schema.
func NewRepositoryFromDB(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&dbmodels.Company{}, &dbmodels.User{}, &dbmodels.JobListing{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

// CreateCompany inserts the company and, when AdminUserID is set, attaches
// that user in the same transaction. An unknown admin rolls the insert back.
func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	row, err := toRow(company)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return e.ErrDuplicateName
			}
			return err
		}
		if row.AdminUserID != nil {
			return attachUser(tx, row.ID, *row.AdminUserID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	company.ID = row.ID
	company.CreatedAt = row.CreatedAt
	company.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repository) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	return r.firstCompany(ctx, "id = ?", id)
}

func (r *Repository) GetCompanyBySlug(ctx context.Context, slug string) (*models.Company, error) {
	return r.firstCompany(ctx, "slug = ?", slug)
}

func (r *Repository) firstCompany(ctx context.Context, query string, args ...interface{}) (*models.Company, error) {
	var row dbmodels.Company
	result := r.db.WithContext(ctx).Where(query, args...).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return toDomain(&row)
}

// ListCompanies returns one page of companies matching filter, newest first,
// together with the total number of matches.
func (r *Repository) ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]models.Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&dbmodels.Company{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Verification != nil {
		query = query.Where("verification_status = ?", string(*filter.Verification))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage := utils.NormalizePage(filter.Page, filter.PerPage)
	var rows []dbmodels.Company
	err := query.
		Order("updated_at DESC").
		Order("id DESC").
		Limit(perPage).
		Offset(utils.Offset(page, perPage)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	companies := make([]models.Company, 0, len(rows))
	for i := range rows {
		c, err := toDomain(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, *c)
	}
	return companies, total, nil
}

// CountByVerificationStatus reports how many companies sit in each status.
func (r *Repository) CountByVerificationStatus(ctx context.Context) (models.StatusCounts, error) {
	var rows []struct {
		VerificationStatus string
		Total              int64
	}
	err := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Select("verification_status, COUNT(*) AS total").
		Group("verification_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(models.StatusCounts, len(models.VerificationStatuses))
	for _, st := range models.VerificationStatuses {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[models.VerificationStatus(row.VerificationStatus)] = row.Total
	}
	return counts, nil
}

// UpdateCompany writes the non-nil fields of update. A new AdminUserID is
// attached to the company in the same transaction.
func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	cols := updateColumns(update)
	if len(cols) == 0 {
		_, err := r.GetCompany(ctx, update.ID)
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&dbmodels.Company{}).
			Where("id = ?", update.ID).
			Updates(cols)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return e.ErrDuplicateName
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return e.ErrNotFound
		}
		if update.AdminUserID != nil {
			return attachUser(tx, update.ID, *update.AdminUserID)
		}
		return nil
	})
}

// ToggleActive flips is_active on one company.
func (r *Repository) ToggleActive(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("id = ?", id).
		Update("is_active", gorm.Expr("NOT is_active"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// SetVerified forces the verification outcome without the review workflow:
// verified or back to unverified. is_verified follows the status.
func (r *Repository) SetVerified(ctx context.Context, id uint, verified bool) error {
	status := models.StatusUnverified
	if verified {
		status = models.StatusVerified
	}
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification_status":      string(status),
			"is_verified":              verified,
			"verification_reviewed_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// SaveVerification stores a fresh submission and puts the company back in
// the pending queue with its previous review notes cleared. A verified
// company cannot resubmit.
func (r *Repository) SaveVerification(ctx context.Context, id uint, payload *models.VerificationPayload) error {
	data, err := models.MarshalVerificationData(payload.Data)
	if err != nil {
		return fmt.Errorf("failed to encode verification data: %w", err)
	}
	docs, err := encodeDocuments(payload.Documents)
	if err != nil {
		return err
	}

	submittedAt := payload.Data.Header().SubmittedAt
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&dbmodels.Company{}).
			Where("id = ? AND verification_status <> ?", id, string(models.StatusVerified)).
			Updates(map[string]interface{}{
				"verification_status":       string(models.StatusPending),
				"is_verified":               false,
				"verification_data":         datatypes.JSON(data),
				"verification_documents":    docs,
				"admin_notes":               "",
				"verification_submitted_at": submittedAt,
				"verification_reviewed_at":  nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOrConflict(tx, id)
		}
		return nil
	})
}

// SetVerificationStatus records a review decision. The update only applies
// while the company is pending, so a second decision on the same submission
// fails with ErrConflict.
func (r *Repository) SetVerificationStatus(ctx context.Context, id uint, status models.VerificationStatus, notes string) error {
	if status != models.StatusVerified && status != models.StatusRejected {
		return fmt.Errorf("%w: status %q is not a review decision", e.ErrInvalidInput, status)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&dbmodels.Company{}).
			Where("id = ? AND verification_status = ?", id, string(models.StatusPending)).
			Updates(map[string]interface{}{
				"verification_status":      string(status),
				"is_verified":              status == models.StatusVerified,
				"admin_notes":              notes,
				"verification_reviewed_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOrConflict(tx, id)
		}
		return nil
	})
}

func missingOrConflict(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&dbmodels.Company{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return e.ErrNotFound
	}
	return e.ErrConflict
}

// DeleteCompany detaches the company's users and job listings and deletes it,
// all in one transaction.
func (r *Repository) DeleteCompany(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&dbmodels.User{}).Where("company_id = ?", id).
			Update("company_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach users: %w", err)
		}
		if err := tx.Model(&dbmodels.JobListing{}).Where("company_id = ?", id).
			Update("company_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach job listings: %w", err)
		}

		result := tx.Delete(&dbmodels.Company{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return e.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) CompanyExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// SlugExists also sees soft-deleted rows, since the unique index does.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Unscoped().Model(&dbmodels.Company{}).
		Where("slug = ?", slug).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// attachUser points users.company_id at companyID. Existence is counted
// first since some drivers report zero affected rows for unchanged values.
func attachUser(tx *gorm.DB, companyID, userID uint) error {
	var count int64
	if err := tx.Model(&dbmodels.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: user %d", e.ErrNotFound, userID)
	}
	return tx.Model(&dbmodels.User{}).Where("id = ?", userID).
		Update("company_id", companyID).Error
}

func (r *Repository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var row dbmodels.User
	result := r.db.WithContext(ctx).First(&row, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return userToDomain(&row)
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	row := &dbmodels.User{
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CompanyID: user.CompanyID,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	user.ID = row.ID
	return nil
}

// CountActiveJobListings counts the open listings attached to a company.
func (r *Repository) CountActiveJobListings(ctx context.Context, companyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmodels.JobListing{}).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Count(&count).Error
	return count, err
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
