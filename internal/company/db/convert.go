package db

import (
	"encoding/json"
	"fmt"

	dbmodels "github.com/karirconnect/backoffice/internal/company/db/models"
	"github.com/karirconnect/backoffice/internal/company/models"
	"gorm.io/datatypes"
)

func toRow(c *models.Company) (*dbmodels.Company, error) {
	status := c.VerificationStatus
	if status == "" {
		status = models.StatusUnverified
	}
	row := &dbmodels.Company{
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
		Logo:                    c.LogoPath,
		IsActive:                c.IsActive,
		AdminUserID:             c.AdminUserID,
		VerificationStatus:      string(status),
		IsVerified:              status == models.StatusVerified,
		AdminNotes:              c.AdminNotes,
		VerificationSubmittedAt: c.VerificationSubmittedAt,
		VerificationReviewedAt:  c.VerificationReviewedAt,
		JobPostingPoints:        c.Quota.JobPostingPoints,
		TotalJobPosts:           c.Quota.TotalJobPosts,
		ActiveJobPosts:          c.Quota.ActiveJobPosts,
		MaxActiveJobs:           c.Quota.MaxActiveJobs,
		PointsLastUpdated:       c.Quota.PointsLastUpdated,
	}
	if c.VerificationData != nil {
		data, err := models.MarshalVerificationData(c.VerificationData)
		if err != nil {
			return nil, fmt.Errorf("failed to encode verification data: %w", err)
		}
		row.VerificationData = data
	}
	if len(c.VerificationDocuments) > 0 {
		docs, err := encodeDocuments(c.VerificationDocuments)
		if err != nil {
			return nil, err
		}
		row.VerificationDocuments = docs
	}
	return row, nil
}

func toDomain(row *dbmodels.Company) (*models.Company, error) {
	c := &models.Company{
		ID:                      row.ID,
		Name:                    row.Name,
		Slug:                    row.Slug,
		Description:             row.Description,
		Website:                 row.Website,
		Email:                   row.Email,
		Phone:                   row.Phone,
		Address:                 row.Address,
		Industry:                row.Industry,
		Size:                    models.CompanySize(row.CompanySize),
		LogoPath:                row.Logo,
		IsActive:                row.IsActive,
		AdminUserID:             row.AdminUserID,
		VerificationStatus:      models.VerificationStatus(row.VerificationStatus),
		IsVerified:              row.IsVerified,
		AdminNotes:              row.AdminNotes,
		VerificationSubmittedAt: row.VerificationSubmittedAt,
		VerificationReviewedAt:  row.VerificationReviewedAt,
		Quota: models.JobQuota{
			JobPostingPoints:  row.JobPostingPoints,
			TotalJobPosts:     row.TotalJobPosts,
			ActiveJobPosts:    row.ActiveJobPosts,
			MaxActiveJobs:     row.MaxActiveJobs,
			PointsLastUpdated: row.PointsLastUpdated,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.VerificationData) > 0 && string(row.VerificationData) != "null" {
		data, err := models.UnmarshalVerificationData(row.VerificationData)
		if err != nil {
			return nil, fmt.Errorf("company %d: failed to decode verification data: %w", row.ID, err)
		}
		c.VerificationData = data
	}
	if len(row.VerificationDocuments) > 0 && string(row.VerificationDocuments) != "null" {
		if err := json.Unmarshal(row.VerificationDocuments, &c.VerificationDocuments); err != nil {
			return nil, fmt.Errorf("company %d: failed to decode verification documents: %w", row.ID, err)
		}
	}
	return c, nil
}

func encodeDocuments(docs []models.Document) (datatypes.JSON, error) {
	if docs == nil {
		docs = []models.Document{}
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode verification documents: %w", err)
	}
	return datatypes.JSON(b), nil
}

func userToDomain(row *dbmodels.User) (*models.User, error) {
	role, err := models.ParseRole(row.Role)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", row.ID, err)
	}
	return &models.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Role:      role,
		CompanyID: row.CompanyID,
	}, nil
}

// updateColumns maps the set fields of update onto column names.
func updateColumns(update *models.CompanyUpdate) map[string]interface{} {
	cols := make(map[string]interface{})
	if update.Name != nil {
		cols["name"] = *update.Name
	}
	if update.Description != nil {
		cols["description"] = *update.Description
	}
	if update.Website != nil {
		cols["website"] = *update.Website
	}
	if update.Email != nil {
		cols["email"] = *update.Email
	}
	if update.Phone != nil {
		cols["phone"] = *update.Phone
	}
	if update.Address != nil {
		cols["address"] = *update.Address
	}
	if update.Industry != nil {
		cols["industry"] = *update.Industry
	}
	if update.Size != nil {
		cols["company_size"] = string(*update.Size)
	}
	if update.LogoPath != nil {
		cols["logo"] = *update.LogoPath
	}
	if update.IsActive != nil {
		cols["is_active"] = *update.IsActive
	}
	if update.AdminUserID != nil {
		cols["admin_user_id"] = *update.AdminUserID
	}
	if update.MaxActiveJobs != nil {
		cols["max_active_jobs"] = *update.MaxActiveJobs
	}
	return cols
}
