package handlers

import (
	"context"

	"github.com/karirconnect/backoffice/internal/company/controller"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/stretchr/testify/mock"
)

type MockCompanyController struct {
	mock.Mock
}

func (m *MockCompanyController) company(args mock.Arguments) (*models.Company, error) {
	if c := args.Get(0); c != nil {
		return c.(*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompanyController) CreateCompany(ctx context.Context, c *models.Company, logo *controller.Upload) (*models.Company, error) {
	return m.company(m.Called(ctx, c, logo))
}

func (m *MockCompanyController) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	return m.company(m.Called(ctx, id))
}

func (m *MockCompanyController) GetPublicCompany(ctx context.Context, slug string) (*models.Company, error) {
	return m.company(m.Called(ctx, slug))
}

func (m *MockCompanyController) ListCompanies(ctx context.Context, f models.CompanyFilter) (*controller.CompanyPage, error) {
	args := m.Called(ctx, f)
	if p := args.Get(0); p != nil {
		return p.(*controller.CompanyPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompanyController) ListPublicCompanies(ctx context.Context, search string, page, perPage int) (*controller.CompanyPage, error) {
	args := m.Called(ctx, search, page, perPage)
	if p := args.Get(0); p != nil {
		return p.(*controller.CompanyPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompanyController) UpdateCompany(ctx context.Context, u *models.CompanyUpdate, logo *controller.Upload) (*models.Company, error) {
	return m.company(m.Called(ctx, u, logo))
}

func (m *MockCompanyController) ToggleStatus(ctx context.Context, id uint) (*models.Company, error) {
	return m.company(m.Called(ctx, id))
}

func (m *MockCompanyController) ToggleVerification(ctx context.Context, id uint) (*models.Company, error) {
	return m.company(m.Called(ctx, id))
}

func (m *MockCompanyController) DeleteCompany(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompanyController) Dashboard(ctx context.Context, user *models.User) (*controller.Dashboard, error) {
	args := m.Called(ctx, user)
	if d := args.Get(0); d != nil {
		return d.(*controller.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockVerificationController struct {
	mock.Mock
}

func (m *MockVerificationController) Submit(ctx context.Context, companyID uint, p *models.VerificationPayload, uploads []controller.Upload) (*models.Company, error) {
	args := m.Called(ctx, companyID, p, uploads)
	if c := args.Get(0); c != nil {
		return c.(*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationController) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationController) ListForReview(ctx context.Context, f controller.ReviewFilter) (*controller.ReviewPage, error) {
	args := m.Called(ctx, f)
	if p := args.Get(0); p != nil {
		return p.(*controller.ReviewPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationController) Review(ctx context.Context, id uint, status, notes string) (*models.Company, error) {
	args := m.Called(ctx, id, status, notes)
	if c := args.Get(0); c != nil {
		return c.(*models.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUsers struct {
	users map[uint]*models.User
}

func (m *MockUsers) GetUser(_ context.Context, id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errNoUser
}
