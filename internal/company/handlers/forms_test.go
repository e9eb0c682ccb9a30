package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/company/verification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDecodeVerificationForm(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantType  models.VerificationType
		wantAgree bool
	}{
		{
			name:      "legal with checkbox values",
			values:    url.Values{"verification_type": {"legal"}, "agree_terms": {"on"}, "agree_data_processing": {"true"}},
			wantType:  models.VerificationLegal,
			wantAgree: true,
		},
		{
			name:     "individual without agreement",
			values:   url.Values{"verification_type": {"individual"}, "agree_terms": {"off"}},
			wantType: models.VerificationIndividual,
		},
		{
			name:   "unknown type leaves data empty",
			values: url.Values{"verification_type": {"foundation"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := formRequest(http.MethodPost, "/", tt.values)
			require.NoError(t, parseForm(httptest.NewRecorder(), req))

			var form verificationForm
			require.NoError(t, decodeForm(&form, req))
			p := form.payload()

			if tt.wantType == "" {
				assert.Nil(t, p.Data)
			} else {
				require.NotNil(t, p.Data)
				assert.Equal(t, tt.wantType, p.Data.Type())
			}
			assert.Equal(t, tt.wantAgree, p.AgreeTerms && p.AgreeDataProcessing)
		})
	}
}

func TestDecodeFormRejectsBadValues(t *testing.T) {
	req := formRequest(http.MethodPost, "/", url.Values{"max_active_jobs": {"many"}})
	require.NoError(t, parseForm(httptest.NewRecorder(), req))

	var form companyForm
	err := decodeForm(&form, req)
	var verr *e.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "max_active_jobs", verr.First().Field)
}

func TestMaxBodySizeFitsEveryDocument(t *testing.T) {
	all := int64(len(verification.DocumentFields)) * verification.MaxDocumentSize
	assert.Greater(t, maxBodySize, all)
}

func TestCompanyFormEmptyValues(t *testing.T) {
	values := url.Values{
		"name":            {"Acme"},
		"website":         {""},
		"phone":           {""},
		"company_size":    {""},
		"admin_user_id":   {""},
		"max_active_jobs": {""},
		"is_active":       {""},
	}
	req := formRequest(http.MethodPost, "/", values)
	require.NoError(t, parseForm(httptest.NewRecorder(), req))

	var form companyForm
	require.NoError(t, decodeForm(&form, req))
	form.normalize(req.PostForm)

	u := form.update(4)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Acme", *u.Name)
	require.NotNil(t, u.Website, "a field sent empty clears it")
	assert.Empty(t, *u.Website)
	require.NotNil(t, u.Phone)
	assert.Empty(t, *u.Phone)
	assert.Nil(t, u.Address, "an absent field is left alone")
	assert.Nil(t, u.Size)
	assert.Nil(t, u.IsActive)
	assert.Nil(t, u.AdminUserID, "an empty admin is not user 0")
	assert.Nil(t, u.MaxActiveJobs)

	c := form.company()
	assert.Nil(t, c.AdminUserID)
	assert.True(t, c.IsActive)
	assert.Zero(t, c.Quota.MaxActiveJobs)
}

func TestMapServiceError(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tests := []struct {
		err  error
		want int
	}{
		{e.NewValidationError("name", "name is required"), http.StatusUnprocessableEntity},
		{e.ErrNotFound, http.StatusNotFound},
		{e.ErrDuplicateName, http.StatusConflict},
		{e.ErrConflict, http.StatusConflict},
		{e.ErrInvalidInput, http.StatusUnprocessableEntity},
		{e.ErrForbidden, http.StatusForbidden},
		{e.ErrUnauthenticated, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := mapServiceError(tt.err, logger)
		assert.Equal(t, tt.want, status, tt.err.Error())
	}
}
