package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"

	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/events"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/company/verification"
	"github.com/karirconnect/backoffice/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCompanyService_CreateCompany(t *testing.T) {
	tests := []struct {
		name          string
		input         *models.Company
		logo          *Upload
		mockSetup     func(*MockRepository)
		expectedError error
		expectedSlug  string
		wantStored    int
	}{
		{
			name:  "successful creation",
			input: &models.Company{Name: "  PT Maju Jaya ", Size: models.SizeSmall, Email: "hr@majujaya.co.id", IsActive: true},
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByName = func(context.Context, string) (bool, error) { return false, nil }
				mr.slugExists = func(context.Context, string) (bool, error) { return false, nil }
				mr.createCompany = func(_ context.Context, c *models.Company) error {
					c.ID = 1
					return nil
				}
			},
			expectedSlug: "pt-maju-jaya",
		},
		{
			name:  "slug taken gets a suffix",
			input: &models.Company{Name: "Acme"},
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByName = func(context.Context, string) (bool, error) { return false, nil }
				mr.slugExists = func(_ context.Context, slug string) (bool, error) {
					return slug == "acme" || slug == "acme-2", nil
				}
				mr.createCompany = func(_ context.Context, c *models.Company) error {
					c.ID = 2
					return nil
				}
			},
			expectedSlug: "acme-3",
		},
		{
			name:  "with logo",
			input: &models.Company{Name: "Logo Co"},
			logo:  utils.Ptr(upload(verification.LogoField, "logo.png", 1024)),
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByName = func(context.Context, string) (bool, error) { return false, nil }
				mr.slugExists = func(context.Context, string) (bool, error) { return false, nil }
				mr.createCompany = func(_ context.Context, c *models.Company) error {
					c.ID = 3
					return nil
				}
			},
			expectedSlug: "logo-co",
			wantStored:   1,
		},
		{
			name:          "duplicate name",
			input:         &models.Company{Name: "Duplicate"},
			mockSetup:     func(mr *MockRepository) { mr.companyExistsByName = func(context.Context, string) (bool, error) { return true, nil } },
			expectedError: e.ErrDuplicateName,
		},
		{
			name:          "empty name",
			input:         &models.Company{Name: "   "},
			mockSetup:     func(*MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:          "invalid email",
			input:         &models.Company{Name: "Mail Co", Email: "not-an-email"},
			mockSetup:     func(*MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:          "unknown size",
			input:         &models.Company{Name: "Size Co", Size: models.CompanySize("gigantic")},
			mockSetup:     func(*MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:  "oversized logo is refused before storing",
			input: &models.Company{Name: "Big Logo"},
			logo:  utils.Ptr(upload(verification.LogoField, "logo.png", verification.MaxLogoSize+1)),
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByName = func(context.Context, string) (bool, error) { return false, nil }
				mr.slugExists = func(context.Context, string) (bool, error) { return false, nil }
			},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:  "repository failure",
			input: &models.Company{Name: "Broken"},
			mockSetup: func(mr *MockRepository) {
				mr.companyExistsByName = func(context.Context, string) (bool, error) { return false, nil }
				mr.slugExists = func(context.Context, string) (bool, error) { return false, nil }
				mr.createCompany = func(context.Context, *models.Company) error { return errors.New("db down") }
			},
			expectedError: errors.New("failed to create company: db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockRepository{}
			mockProducer := &MockProducer{}
			files := &MockStore{}
			tt.mockSetup(mockRepo)
			if tt.expectedError == nil {
				mockProducer.expect(1)
			}

			svc := NewCompanyService(mockRepo, files, mockProducer, zaptest.NewLogger(t))
			result, err := svc.CreateCompany(context.Background(), tt.input, tt.logo)

			if tt.expectedError != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedError, e.ErrDuplicateName) || errors.Is(tt.expectedError, e.ErrInvalidInput) {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.EqualError(t, err, tt.expectedError.Error())
				}
				assert.Zero(t, files.count())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSlug, result.Slug)
			assert.Equal(t, models.StatusUnverified, result.VerificationStatus)
			assert.False(t, result.IsVerified)
			assert.Equal(t, DefaultMaxActiveJobs, result.Quota.MaxActiveJobs)
			assert.Equal(t, tt.wantStored, files.count())
			if tt.logo != nil {
				assert.NotEmpty(t, result.LogoPath)
			}

			evs := mockProducer.events()
			require.Len(t, evs, 1)
			assert.Equal(t, events.CompanyCreated, evs[0].EventType)
		})
	}
}

func TestCompanyService_CreateCompanyUnknownAdmin(t *testing.T) {
	var passed *uint
	mockRepo := &MockRepository{
		companyExistsByName: func(context.Context, string) (bool, error) { return false, nil },
		slugExists:          func(context.Context, string) (bool, error) { return false, nil },
		createCompany: func(_ context.Context, c *models.Company) error {
			passed = c.AdminUserID
			return fmt.Errorf("%w: user %d", e.ErrNotFound, *c.AdminUserID)
		},
	}
	files := &MockStore{}

	svc := NewCompanyService(mockRepo, files, &MockProducer{}, zaptest.NewLogger(t))
	logo := upload(verification.LogoField, "logo.png", 1024)
	_, err := svc.CreateCompany(context.Background(), &models.Company{Name: "Ghost Corp", AdminUserID: utils.Ptr(uint(9999))}, &logo)
	require.ErrorIs(t, err, e.ErrNotFound)
	require.NotNil(t, passed)
	assert.Equal(t, uint(9999), *passed)
	assert.Equal(t, 1, files.count())
	assert.Empty(t, files.kept(), "the logo of a company that was never created is removed")
}

func TestCompanyService_UpdateCompanyRemovesLogoOnFailure(t *testing.T) {
	mockRepo := &MockRepository{
		getCompany: func(context.Context, uint) (*models.Company, error) {
			return companyFixture(1, models.StatusUnverified), nil
		},
		updateCompany: func(_ context.Context, u *models.CompanyUpdate) error {
			require.NotNil(t, u.AdminUserID, "the admin travels with the update")
			return e.ErrNotFound
		},
	}
	files := &MockStore{}

	svc := NewCompanyService(mockRepo, files, &MockProducer{}, zaptest.NewLogger(t))
	logo := upload(verification.LogoField, "logo.png", 1024)
	_, err := svc.UpdateCompany(context.Background(), &models.CompanyUpdate{ID: 1, AdminUserID: utils.Ptr(uint(9999))}, &logo)
	require.ErrorIs(t, err, e.ErrNotFound)
	assert.Equal(t, 1, files.count())
	assert.Empty(t, files.kept())
}

func TestCompanyService_UpdateCompany(t *testing.T) {
	tests := []struct {
		name          string
		update        *models.CompanyUpdate
		mockSetup     func(*MockRepository)
		expectedError error
	}{
		{
			name:   "successful update",
			update: &models.CompanyUpdate{ID: 1, Name: utils.Ptr("Acme Group"), MaxActiveJobs: utils.Ptr(5)},
			mockSetup: func(mr *MockRepository) {
				calls := 0
				mr.getCompany = func(context.Context, uint) (*models.Company, error) {
					calls++
					c := companyFixture(1, models.StatusUnverified)
					if calls > 1 {
						c.Name = "Acme Group"
					}
					return c, nil
				}
				mr.companyExistsByName = func(context.Context, string) (bool, error) { return false, nil }
				mr.updateCompany = func(context.Context, *models.CompanyUpdate) error { return nil }
			},
		},
		{
			name:   "same name in other case skips duplicate check",
			update: &models.CompanyUpdate{ID: 1, Name: utils.Ptr("ACME")},
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(context.Context, uint) (*models.Company, error) {
					return companyFixture(1, models.StatusUnverified), nil
				}
				mr.updateCompany = func(context.Context, *models.CompanyUpdate) error { return nil }
			},
		},
		{
			name:          "invalid ID",
			update:        &models.CompanyUpdate{ID: 0},
			mockSetup:     func(*MockRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:   "not found",
			update: &models.CompanyUpdate{ID: 7},
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(context.Context, uint) (*models.Company, error) { return nil, e.ErrNotFound }
			},
			expectedError: e.ErrNotFound,
		},
		{
			name:   "rename to an existing name",
			update: &models.CompanyUpdate{ID: 1, Name: utils.Ptr("Other")},
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(context.Context, uint) (*models.Company, error) {
					return companyFixture(1, models.StatusUnverified), nil
				}
				mr.companyExistsByName = func(context.Context, string) (bool, error) { return true, nil }
			},
			expectedError: e.ErrDuplicateName,
		},
		{
			name:   "negative quota",
			update: &models.CompanyUpdate{ID: 1, MaxActiveJobs: utils.Ptr(-1)},
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(context.Context, uint) (*models.Company, error) {
					return companyFixture(1, models.StatusUnverified), nil
				}
			},
			expectedError: e.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockRepository{}
			mockProducer := &MockProducer{}
			tt.mockSetup(mockRepo)
			if tt.expectedError == nil {
				mockProducer.expect(1)
			}

			svc := NewCompanyService(mockRepo, &MockStore{}, mockProducer, zaptest.NewLogger(t))
			result, err := svc.UpdateCompany(context.Background(), tt.update, nil)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(1), result.ID)

			evs := mockProducer.events()
			require.Len(t, evs, 1)
			assert.Equal(t, events.CompanyUpdated, evs[0].EventType)
		})
	}
}

func TestCompanyService_ToggleVerification(t *testing.T) {
	tests := []struct {
		name       string
		status     models.VerificationStatus
		wantVerify bool
		wantStatus models.VerificationStatus
	}{
		{"verified becomes unverified", models.StatusVerified, false, models.StatusUnverified},
		{"pending becomes verified", models.StatusPending, true, models.StatusVerified},
		{"rejected becomes verified", models.StatusRejected, true, models.StatusVerified},
		{"unverified becomes verified", models.StatusUnverified, true, models.StatusVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := companyFixture(1, tt.status)
			var got *bool
			mockRepo := &MockRepository{
				getCompany: func(context.Context, uint) (*models.Company, error) {
					c := *current
					return &c, nil
				},
				setVerified: func(_ context.Context, _ uint, verified bool) error {
					got = &verified
					current = companyFixture(1, tt.wantStatus)
					return nil
				},
			}
			mockProducer := &MockProducer{}
			mockProducer.expect(1)

			svc := NewCompanyService(mockRepo, &MockStore{}, mockProducer, zaptest.NewLogger(t))
			result, err := svc.ToggleVerification(context.Background(), 1)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantVerify, *got)
			assert.Equal(t, tt.wantStatus, result.VerificationStatus)
			assert.Equal(t, tt.wantStatus == models.StatusVerified, result.IsVerified)

			evs := mockProducer.events()
			require.Len(t, evs, 1)
			assert.Equal(t, events.VerificationOverride, evs[0].EventType)
		})
	}
}

func TestCompanyService_ToggleStatus(t *testing.T) {
	active := true
	mockRepo := &MockRepository{
		toggleActive: func(_ context.Context, id uint) error {
			if id != 1 {
				return e.ErrNotFound
			}
			active = !active
			return nil
		},
		getCompany: func(context.Context, uint) (*models.Company, error) {
			c := companyFixture(1, models.StatusUnverified)
			c.IsActive = active
			return c, nil
		},
	}
	mockProducer := &MockProducer{}
	mockProducer.expect(1)
	svc := NewCompanyService(mockRepo, &MockStore{}, mockProducer, zaptest.NewLogger(t))

	result, err := svc.ToggleStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, result.IsActive)
	assert.Equal(t, events.CompanyStatusToggled, mockProducer.events()[0].EventType)

	_, err = svc.ToggleStatus(context.Background(), 2)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestCompanyService_DeleteCompany(t *testing.T) {
	tests := []struct {
		name          string
		mockSetup     func(*MockRepository)
		expectedError error
	}{
		{
			name: "successful deletion",
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(context.Context, uint) (*models.Company, error) {
					return companyFixture(1, models.StatusVerified), nil
				}
				mr.deleteCompany = func(context.Context, uint) error { return nil }
			},
		},
		{
			name: "not found",
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(context.Context, uint) (*models.Company, error) { return nil, e.ErrNotFound }
			},
			expectedError: e.ErrNotFound,
		},
		{
			name: "delete failure",
			mockSetup: func(mr *MockRepository) {
				mr.getCompany = func(context.Context, uint) (*models.Company, error) {
					return companyFixture(1, models.StatusVerified), nil
				}
				mr.deleteCompany = func(context.Context, uint) error { return errors.New("locked") }
			},
			expectedError: errors.New("failed to delete company: locked"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockRepository{}
			mockProducer := &MockProducer{}
			tt.mockSetup(mockRepo)
			if tt.expectedError == nil {
				mockProducer.expect(1)
			}

			svc := NewCompanyService(mockRepo, &MockStore{}, mockProducer, zaptest.NewLogger(t))
			err := svc.DeleteCompany(context.Background(), 1)

			if tt.expectedError != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedError, e.ErrNotFound) {
					assert.ErrorIs(t, err, e.ErrNotFound)
				} else {
					assert.EqualError(t, err, tt.expectedError.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, events.CompanyDeleted, mockProducer.events()[0].EventType)
		})
	}
}

func TestCompanyService_GetPublicCompany(t *testing.T) {
	mockRepo := &MockRepository{
		getCompanyBySlug: func(_ context.Context, slug string) (*models.Company, error) {
			switch slug {
			case "acme":
				return companyFixture(1, models.StatusVerified), nil
			case "hidden":
				c := companyFixture(2, models.StatusVerified)
				c.IsActive = false
				return c, nil
			}
			return nil, e.ErrNotFound
		},
	}
	svc := NewCompanyService(mockRepo, &MockStore{}, &MockProducer{}, zaptest.NewLogger(t))

	c, err := svc.GetPublicCompany(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, c.IsVerified)

	_, err = svc.GetPublicCompany(context.Background(), "hidden")
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, err = svc.GetPublicCompany(context.Background(), "missing")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestCompanyService_ListPublicCompanies(t *testing.T) {
	var seen models.CompanyFilter
	mockRepo := &MockRepository{
		listCompanies: func(_ context.Context, f models.CompanyFilter) ([]models.Company, int64, error) {
			seen = f
			return []models.Company{*companyFixture(1, models.StatusVerified)}, 21, nil
		},
	}
	svc := NewCompanyService(mockRepo, &MockStore{}, &MockProducer{}, zaptest.NewLogger(t))

	page, err := svc.ListPublicCompanies(context.Background(), "ac", 3, 0)
	require.NoError(t, err)
	require.NotNil(t, seen.Active)
	assert.True(t, *seen.Active)
	assert.Equal(t, utils.DefaultPerPage, seen.PerPage)
	assert.Equal(t, int64(21), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.LastPage)
}

func TestCompanyService_Dashboard(t *testing.T) {
	mockRepo := &MockRepository{
		countByStatus: func(context.Context) (models.StatusCounts, error) {
			return models.StatusCounts{models.StatusPending: 2, models.StatusVerified: 5}, nil
		},
		getCompany: func(context.Context, uint) (*models.Company, error) {
			return companyFixture(10, models.StatusPending), nil
		},
		countActiveJobListings: func(context.Context, uint) (int64, error) { return 2, nil },
	}
	svc := NewCompanyService(mockRepo, &MockStore{}, &MockProducer{}, zaptest.NewLogger(t))
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, &models.User{Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.TotalCompanies)
	assert.Nil(t, d.Company)

	d, err = svc.Dashboard(ctx, &models.User{Role: models.RoleCompanyAdmin, CompanyID: utils.Ptr(uint(10))})
	require.NoError(t, err)
	require.NotNil(t, d.Company)
	assert.Equal(t, int64(2), d.ActiveJobs)

	_, err = svc.Dashboard(ctx, &models.User{Role: models.RoleCompanyAdmin})
	assert.ErrorIs(t, err, e.ErrForbidden)

	d, err = svc.Dashboard(ctx, &models.User{Role: models.RoleRegularUser})
	require.NoError(t, err)
	assert.Equal(t, models.RoleRegularUser, d.Role)
}
