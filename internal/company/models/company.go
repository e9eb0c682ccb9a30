// Package models defines the core domain models of the back-office: companies,
// their verification evidence, and the users acting on them.
package models

import (
	"fmt"
	"time"
)

// CompanySize is the headcount bracket a company declares on its profile.
type CompanySize string

const (
	SizeStartup    CompanySize = "startup"
	SizeSmall      CompanySize = "small"
	SizeMedium     CompanySize = "medium"
	SizeLarge      CompanySize = "large"
	SizeEnterprise CompanySize = "enterprise"
)

// Valid reports whether s is one of the known brackets.
func (s CompanySize) Valid() bool {
	switch s {
	case SizeStartup, SizeSmall, SizeMedium, SizeLarge, SizeEnterprise:
		return true
	}
	return false
}

// VerificationStatus tracks where a company is in the verification workflow.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusPending    VerificationStatus = "pending"
	StatusVerified   VerificationStatus = "verified"
	StatusRejected   VerificationStatus = "rejected"
)

// VerificationStatuses lists every status in workflow order.
var VerificationStatuses = []VerificationStatus{StatusUnverified, StatusPending, StatusVerified, StatusRejected}

// ParseVerificationStatus converts s into a VerificationStatus.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch st := VerificationStatus(s); st {
	case StatusUnverified, StatusPending, StatusVerified, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown verification status %q", s)
}

// JobQuota holds the job-posting counters kept on a company.
type JobQuota struct {
	JobPostingPoints  int        `json:"job_posting_points"`
	TotalJobPosts     int        `json:"total_job_posts"`
	ActiveJobPosts    int        `json:"active_job_posts"`
	MaxActiveJobs     int        `json:"max_active_jobs"`
	PointsLastUpdated *time.Time `json:"points_last_updated,omitempty"`
}

// Company defines the domain model for a company entity.
type Company struct {
	// ID is the unique identifier for the company.
	ID uint
	// Name is the company's display name.
	Name string
	// Slug is the URL-safe unique handle derived from Name.
	Slug        string
	Description string
	Website     string
	Email       string
	Phone       string
	Address     string
	Industry    string
	Size        CompanySize
	// LogoPath is the storage path of the uploaded logo, empty when none.
	LogoPath string
	IsActive bool
	// AdminUserID designates the staff member acting as company admin.
	AdminUserID *uint

	// VerificationStatus and IsVerified always agree: IsVerified is true
	// exactly when the status is StatusVerified.
	VerificationStatus      VerificationStatus
	IsVerified              bool
	VerificationData        VerificationData
	VerificationDocuments   []Document
	AdminNotes              string
	VerificationSubmittedAt *time.Time
	VerificationReviewedAt  *time.Time

	Quota JobQuota

	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time
	// UpdatedAt records the timestamp when the company was last updated.
	UpdatedAt time.Time
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Pointer types are used to allow partial updates.
type CompanyUpdate struct {
	// ID is the unique identifier for the company to update.
	ID            uint
	Name          *string
	Description   *string
	Website       *string
	Email         *string
	Phone         *string
	Address       *string
	Industry      *string
	Size          *CompanySize
	LogoPath      *string
	IsActive      *bool
	AdminUserID   *uint
	MaxActiveJobs *int
}

// CompanyFilter narrows a company listing.
type CompanyFilter struct {
	// Search matches case-insensitively against the company name.
	Search string
	// Active restricts to active (true) or inactive (false) companies when set.
	Active *bool
	// Verification restricts to one verification status when set.
	Verification *VerificationStatus
	Page         int
	PerPage      int
}

// StatusCounts maps each verification status to its number of companies.
type StatusCounts map[VerificationStatus]int64
