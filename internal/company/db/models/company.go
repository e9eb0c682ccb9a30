// Package models contains the persistence rows of the back-office,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Company is the companies table. Verification evidence is kept in two JSON
// columns: the tagged data envelope and the ordered document list.
type Company struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null"`
	Slug        string `gorm:"size:255;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Website     string `gorm:"size:255"`
	Email       string `gorm:"size:255"`
	Phone       string `gorm:"size:50"`
	Address     string `gorm:"type:text"`
	Industry    string `gorm:"size:100"`
	CompanySize string `gorm:"size:20"`
	Logo        string `gorm:"size:500"`
	IsActive    bool   `gorm:"not null"`
	AdminUserID *uint  `gorm:"index"`

	VerificationStatus      string `gorm:"size:20;not null;default:'unverified';index"`
	IsVerified              bool   `gorm:"not null"`
	VerificationData        datatypes.JSON
	VerificationDocuments   datatypes.JSON
	AdminNotes              string `gorm:"type:text"`
	VerificationSubmittedAt *time.Time
	VerificationReviewedAt  *time.Time

	JobPostingPoints  int `gorm:"not null"`
	TotalJobPosts     int `gorm:"not null"`
	ActiveJobPosts    int `gorm:"not null"`
	MaxActiveJobs     int `gorm:"not null"`
	PointsLastUpdated *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// User is the users table; staff rows point at their company.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Role      string `gorm:"size:30;not null;default:'regular_user'"`
	CompanyID *uint  `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobListing is the job_listings table, reduced to what company deletion and
// dashboards touch.
type JobListing struct {
	ID        uint   `gorm:"primaryKey"`
	CompanyID *uint  `gorm:"index"`
	Title     string `gorm:"size:255;not null"`
	IsActive  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
