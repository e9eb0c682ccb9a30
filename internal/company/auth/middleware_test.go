package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetUser(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHTTPMiddleware(t *testing.T) {
	const secret = "test-secret"
	token, err := GenerateToken(7, secret, time.Hour)
	require.NoError(t, err)
	unknown, err := GenerateToken(8, secret, time.Hour)
	require.NoError(t, err)

	admin := &models.User{ID: 7, Role: models.RoleSuperAdmin}
	users := new(MockUsers)
	users.On("GetUser", mock.Anything, uint(7)).Return(admin, nil)
	users.On("GetUser", mock.Anything, uint(8)).Return(nil, apperrors.ErrNotFound)

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantUser *models.User
	}{
		{
			name:  "no credentials",
			setup: func(r *http.Request) {},
		},
		{
			name:     "bearer header",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantUser: admin,
		},
		{
			name:     "session cookie",
			setup:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) },
			wantUser: admin,
		},
		{
			name:  "malformed header",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Token "+token) },
		},
		{
			name:  "invalid token",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
		},
		{
			name:  "unknown user",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+unknown) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			HTTPMiddleware(next, secret, users, zaptest.NewLogger(t)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.wantUser, got)
		})
	}
}
