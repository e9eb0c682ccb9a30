package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/karirconnect/backoffice/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	regularUser      = &models.User{ID: 1, Role: models.RoleRegularUser}
	superAdmin       = &models.User{ID: 2, Role: models.RoleSuperAdmin}
	boundAdmin       = &models.User{ID: 3, Role: models.RoleCompanyAdmin, CompanyID: utils.Ptr(uint(10))}
	unboundAdmin     = &models.User{ID: 4, Role: models.RoleCompanyAdmin}
	unrecognisedRole = &models.User{ID: 5, Role: models.Role("recruiter")}
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		user   *models.User
		policy Policy
		want   Decision
	}{
		{"anonymous is sent to login", nil, RegularUserOnly, Decision{Outcome: Redirect, Location: LoginPath}},
		{"anonymous on admin route", nil, SuperAdminOnly, Decision{Outcome: Redirect, Location: LoginPath}},

		{"regular user proceeds", regularUser, RegularUserOnly, Decision{Outcome: Proceed}},
		{"super admin leaves user area", superAdmin, RegularUserOnly, Decision{Outcome: Redirect, Location: AdminDashboardPath}},
		{"bound company admin leaves user area", boundAdmin, RegularUserOnly, Decision{Outcome: Redirect, Location: AdminDashboardPath}},
		{"unbound company admin is refused", unboundAdmin, RegularUserOnly, Decision{Outcome: Forbid, Message: MsgNoCompany}},
		{"other role goes home", unrecognisedRole, RegularUserOnly, Decision{Outcome: Redirect, Location: HomePath}},

		{"bound company admin proceeds", boundAdmin, CompanyAdminOnly, Decision{Outcome: Proceed}},
		{"unbound company admin forbidden", unboundAdmin, CompanyAdminOnly, Decision{Outcome: Forbid, Message: MsgNoCompany}},
		{"super admin is not a company admin", superAdmin, CompanyAdminOnly, Decision{Outcome: Forbid, Message: MsgNoCompany}},
		{"regular user is not a company admin", regularUser, CompanyAdminOnly, Decision{Outcome: Forbid, Message: MsgNoCompany}},

		{"super admin console", superAdmin, SuperAdminOnly, Decision{Outcome: Proceed}},
		{"company admin cannot review", boundAdmin, SuperAdminOnly, Decision{Outcome: Forbid, Message: MsgAccessDenied}},

		{"admin area super admin", superAdmin, AdminArea, Decision{Outcome: Proceed}},
		{"admin area bound admin", boundAdmin, AdminArea, Decision{Outcome: Proceed}},
		{"admin area unbound admin", unboundAdmin, AdminArea, Decision{Outcome: Forbid, Message: MsgNoCompany}},
		{"admin area regular user", regularUser, AdminArea, Decision{Outcome: Forbid, Message: MsgAccessDenied}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.user, tt.policy))
		})
	}
}

func TestGuard(t *testing.T) {
	called := false
	handler := Guard(CompanyAdminOnly, func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	serve := func(user *models.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/company/verify", nil)
		if user != nil {
			req = req.WithContext(WithPrincipal(context.Background(), user))
		}
		rec := httptest.NewRecorder()
		handler(rec, req, nil)
		return rec
	}

	t.Run("anonymous redirected", func(t *testing.T) {
		rec := serve(nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, LoginPath, rec.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("unbound admin sees fixed message", func(t *testing.T) {
		rec := serve(unboundAdmin)
		require.Equal(t, http.StatusForbidden, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, MsgNoCompany, body["error"])
		assert.False(t, called)
	})

	t.Run("bound admin proceeds", func(t *testing.T) {
		rec := serve(boundAdmin)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}
